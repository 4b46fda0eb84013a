package homie

import (
	"fmt"
	"strings"
)

// TopicKind classifies a parsed homie topic.
type TopicKind int

const (
	// KindDeviceAttribute is <base>/<device>/$attr (e.g. $state, $name).
	KindDeviceAttribute TopicKind = iota

	// KindNodeAttribute is <base>/<device>/<node>/$attr.
	KindNodeAttribute

	// KindPropertyValue is <base>/<device>/<node>/<property>, the
	// property's current value topic.
	KindPropertyValue

	// KindPropertyAttribute is <base>/<device>/<node>/<property>/$attr.
	KindPropertyAttribute
)

// String returns the kind name for logging.
func (k TopicKind) String() string {
	switch k {
	case KindDeviceAttribute:
		return "device-attribute"
	case KindNodeAttribute:
		return "node-attribute"
	case KindPropertyValue:
		return "property-value"
	case KindPropertyAttribute:
		return "property-attribute"
	default:
		return "unknown"
	}
}

// Topic is a classified homie topic. Fields beyond the kind's scope are
// empty (a device attribute has no Node or Property).
type Topic struct {
	Kind     TopicKind
	Device   string
	Node     string
	Property string

	// Attr is the $-prefixed attribute name, including the $.
	// Device attribute subtrees fold into a compound name ("$fw/name").
	Attr string
}

// ParseTopic classifies an MQTT topic rooted at the given base prefix.
//
// Classification follows the homie v4 positional grammar: segment count
// plus the $ prefix convention make every valid topic unambiguous without
// lookahead. Topics outside the base prefix, with empty segments, or with
// an unexpected shape return ErrUnrecognizedTopic.
//
// Ids are not validated against the homie [a-z0-9-] charset; only the
// segment shape matters here (best-effort tolerance for loose publishers).
func ParseTopic(base, topic string) (Topic, error) {
	rest, ok := strings.CutPrefix(topic, base+"/")
	if !ok {
		return Topic{}, fmt.Errorf("%w: %q outside base %q", ErrUnrecognizedTopic, topic, base)
	}

	parts := strings.Split(rest, "/")
	for _, p := range parts {
		if p == "" {
			return Topic{}, fmt.Errorf("%w: empty segment in %q", ErrUnrecognizedTopic, topic)
		}
	}
	if isAttr(parts[0]) {
		// Broadcast and other $-rooted subtrees are not device topics.
		return Topic{}, fmt.Errorf("%w: %q", ErrUnrecognizedTopic, topic)
	}

	switch len(parts) {
	case 2:
		if !isAttr(parts[1]) {
			return Topic{}, fmt.Errorf("%w: %q", ErrUnrecognizedTopic, topic)
		}
		return Topic{Kind: KindDeviceAttribute, Device: parts[0], Attr: parts[1]}, nil

	case 3:
		if isAttr(parts[1]) {
			// Device attribute subtree, e.g. homie/dev/$fw/name or
			// homie/dev/$stats/uptime. Folded into a compound attribute
			// so the registry can ignore it uniformly.
			return Topic{
				Kind:   KindDeviceAttribute,
				Device: parts[0],
				Attr:   parts[1] + "/" + parts[2],
			}, nil
		}
		if isAttr(parts[2]) {
			return Topic{Kind: KindNodeAttribute, Device: parts[0], Node: parts[1], Attr: parts[2]}, nil
		}
		return Topic{Kind: KindPropertyValue, Device: parts[0], Node: parts[1], Property: parts[2]}, nil

	case 4:
		if isAttr(parts[1]) || isAttr(parts[2]) || !isAttr(parts[3]) {
			return Topic{}, fmt.Errorf("%w: %q", ErrUnrecognizedTopic, topic)
		}
		return Topic{
			Kind:     KindPropertyAttribute,
			Device:   parts[0],
			Node:     parts[1],
			Property: parts[2],
			Attr:     parts[3],
		}, nil

	default:
		return Topic{}, fmt.Errorf("%w: %d segments in %q", ErrUnrecognizedTopic, len(parts), topic)
	}
}

// isAttr reports whether a segment is a $-prefixed homie attribute.
func isAttr(s string) bool {
	return strings.HasPrefix(s, "$")
}
