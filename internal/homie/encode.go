package homie

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Encode renders one fact and its normalized value as an InfluxDB line
// protocol record:
//
//	measurement,device=therm1,node=main,property=setpoint value=21.5 <unix-nanos>
//
// Exactly one newline-terminated line per fact; facts are never combined.
// Tags are sorted and escaped per the line protocol spec; empty tag values
// are omitted entirely (the protocol forbids them; a device $state fact
// has no node tag). Records derived through an enum mapping carry the
// additional tag derived=enum.
//
// The timestamp is the receipt time: homie payloads carry no timestamp of
// their own.
func Encode(measurement string, fact *Fact, v Value, ts time.Time) string {
	tags := map[string]string{
		"device":   fact.DeviceID,
		"node":     fact.NodeID,
		"property": fact.PropertyID,
	}
	if v.FromEnum {
		tags["derived"] = "enum"
	}

	var b strings.Builder
	b.WriteString(escapeMeasurement(measurement))

	tagKeys := make([]string, 0, len(tags))
	for k := range tags {
		if tags[k] != "" {
			tagKeys = append(tagKeys, k)
		}
	}
	sort.Strings(tagKeys)
	for _, k := range tagKeys {
		b.WriteByte(',')
		b.WriteString(escapeTag(k))
		b.WriteByte('=')
		b.WriteString(escapeTag(tags[k]))
	}

	b.WriteString(" value=")
	b.WriteString(encodeField(v))

	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(ts.UnixNano(), 10))
	b.WriteByte('\n')

	return b.String()
}

// encodeField renders a normalized value per line-protocol field typing:
// integers carry the i suffix, floats always contain a decimal point or
// exponent (so the series stays float-typed), booleans are t/f, strings
// are double-quoted with backslash escaping.
func encodeField(v Value) string {
	switch v.Kind {
	case KindInteger:
		return strconv.FormatInt(v.Int, 10) + "i"
	case KindFloat:
		s := strconv.FormatFloat(v.Float, 'f', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s
	case KindBoolean:
		if v.Bool {
			return "t"
		}
		return "f"
	default:
		return strconv.Quote(v.Str)
	}
}

// escapeTag escapes commas, equals signs and spaces in tag keys and values.
// Newlines are stripped to prevent record injection through payloads.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}

// escapeMeasurement escapes commas and spaces in the measurement name.
func escapeMeasurement(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}
