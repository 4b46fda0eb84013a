package homie

import (
	"strings"
	"sync"
)

// nodeKey identifies a node within the registry arena.
type nodeKey struct {
	device string
	node   string
}

// propertyKey identifies a property within the registry arena.
type propertyKey struct {
	device   string
	node     string
	property string
}

// deviceEntry holds the mutable state of one homie device.
type deviceEntry struct {
	name  string
	state DeviceState
	nodes []string // node ids in announcement/first-reference order
}

// nodeEntry holds the mutable state of one homie node.
type nodeEntry struct {
	name       string
	nodeType   string
	properties []string // property ids in announcement/first-reference order
}

// propertyEntry holds the mutable state of one homie property.
// Every field is independently settable at any time; there is no
// required construction order.
type propertyEntry struct {
	value    string
	hasValue bool
	name     string
	datatype Datatype
	unit     string
	settable bool
	format   string
}

// Registry is the in-memory model of the homie device tree, rebuilt from
// retained-message replay on every session. Entries are created lazily on
// first reference and never deleted: a lost or disconnected device is a
// state change, not a removal (absence of a retained delete is not
// inferable within a single session).
//
// The tree is held as flat maps keyed by composite ids rather than nested
// structures with back-pointers, so lookups never traverse from the device
// root and parent/child relations stay implicit in the keys.
//
// Thread Safety: all methods are safe for concurrent use. Apply is the
// single serialization point for the pipeline; returned Facts are
// snapshots taken under the lock.
type Registry struct {
	mu         sync.Mutex
	devices    map[string]*deviceEntry
	nodes      map[nodeKey]*nodeEntry
	properties map[propertyKey]*propertyEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		devices:    make(map[string]*deviceEntry),
		nodes:      make(map[nodeKey]*nodeEntry),
		properties: make(map[propertyKey]*propertyEntry),
	}
}

// Apply mutates the device tree per the classified topic and payload,
// creating missing ancestors. It returns a non-nil Fact exactly when the
// update is emission-ready: a bare property value, or a device $state
// change. Metadata updates (datatype, unit, settable, format, names, child
// announcements) return nil; they mutate state silently and improve how
// the next value update is interpreted.
//
// Duplicate updates are applied last-write-wins on the attribute touched,
// never on the whole record, so replaying an identical retained-message
// sequence reproduces an identical registry (no duplication, no drift).
func (r *Registry) Apply(topic Topic, payload string) *Fact {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch topic.Kind {
	case KindDeviceAttribute:
		return r.applyDeviceAttribute(topic, payload)
	case KindNodeAttribute:
		r.applyNodeAttribute(topic, payload)
		return nil
	case KindPropertyAttribute:
		r.applyPropertyAttribute(topic, payload)
		return nil
	case KindPropertyValue:
		return r.applyPropertyValue(topic, payload)
	default:
		return nil
	}
}

// applyDeviceAttribute handles <base>/<device>/$attr.
// Only $state produces a Fact; unknown attributes are tolerated and ignored.
func (r *Registry) applyDeviceAttribute(topic Topic, payload string) *Fact {
	dev := r.ensureDevice(topic.Device)

	switch topic.Attr {
	case "$state":
		dev.state = ParseDeviceState(payload)
		return &Fact{
			Kind:       FactDeviceState,
			DeviceID:   topic.Device,
			PropertyID: "$state",
			Value:      payload,
			Datatype:   DatatypeState,
			State:      dev.state,
		}
	case "$name":
		dev.name = payload
	case "$nodes":
		for _, id := range splitIDList(payload) {
			r.ensureNode(topic.Device, id)
		}
	}
	return nil
}

// applyNodeAttribute handles <base>/<device>/<node>/$attr.
func (r *Registry) applyNodeAttribute(topic Topic, payload string) {
	node := r.ensureNode(topic.Device, topic.Node)

	switch topic.Attr {
	case "$name":
		node.name = payload
	case "$type":
		node.nodeType = payload
	case "$properties":
		for _, id := range splitIDList(payload) {
			r.ensureProperty(topic.Device, topic.Node, id)
		}
	}
}

// applyPropertyAttribute handles <base>/<device>/<node>/<property>/$attr.
// Metadata never discards an existing value, and a later bare value update
// never discards metadata: each attribute is written independently.
func (r *Registry) applyPropertyAttribute(topic Topic, payload string) {
	prop := r.ensureProperty(topic.Device, topic.Node, topic.Property)

	switch topic.Attr {
	case "$datatype":
		prop.datatype = ParseDatatype(payload)
	case "$unit":
		prop.unit = payload
	case "$settable":
		prop.settable = payload == "true"
	case "$format":
		prop.format = payload
	case "$name":
		prop.name = payload
	}
}

// applyPropertyValue handles the bare value topic. The raw value is stored
// unconditionally (even if it later fails normalization) and a Fact is
// returned carrying the property's current metadata.
func (r *Registry) applyPropertyValue(topic Topic, payload string) *Fact {
	prop := r.ensureProperty(topic.Device, topic.Node, topic.Property)
	prop.value = payload
	prop.hasValue = true

	return &Fact{
		Kind:       FactPropertyValue,
		DeviceID:   topic.Device,
		NodeID:     topic.Node,
		PropertyID: topic.Property,
		Value:      payload,
		Datatype:   prop.datatype,
		Unit:       prop.unit,
		Settable:   prop.settable,
		Format:     prop.format,
	}
}

// ensureDevice returns the device entry, creating it if absent.
// Caller must hold r.mu.
func (r *Registry) ensureDevice(device string) *deviceEntry {
	dev, ok := r.devices[device]
	if !ok {
		dev = &deviceEntry{state: StateUnknown}
		r.devices[device] = dev
	}
	return dev
}

// ensureNode returns the node entry, creating it and its parent device if
// absent. First reference fixes the node's position in the device's
// ordered id list. Caller must hold r.mu.
func (r *Registry) ensureNode(device, node string) *nodeEntry {
	key := nodeKey{device, node}
	n, ok := r.nodes[key]
	if !ok {
		n = &nodeEntry{}
		r.nodes[key] = n
		dev := r.ensureDevice(device)
		dev.nodes = append(dev.nodes, node)
	}
	return n
}

// ensureProperty returns the property entry, creating it and its ancestors
// if absent. A property created by a bare value update starts with
// DatatypeUnknown until $datatype arrives. Caller must hold r.mu.
func (r *Registry) ensureProperty(device, node, property string) *propertyEntry {
	key := propertyKey{device, node, property}
	p, ok := r.properties[key]
	if !ok {
		p = &propertyEntry{datatype: DatatypeUnknown}
		r.properties[key] = p
		n := r.ensureNode(device, node)
		n.properties = append(n.properties, property)
	}
	return p
}

// splitIDList splits a comma-separated homie id list ($nodes, $properties),
// dropping empty entries.
func splitIDList(payload string) []string {
	var ids []string
	for _, id := range strings.Split(payload, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// DeviceCount returns the number of known devices.
func (r *Registry) DeviceCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.devices)
}

// PropertyCount returns the number of known properties.
func (r *Registry) PropertyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.properties)
}

// DeviceSnapshot is a point-in-time copy of one device subtree.
type DeviceSnapshot struct {
	Name  string
	State DeviceState
	Nodes []NodeSnapshot
}

// NodeSnapshot is a point-in-time copy of one node and its properties.
type NodeSnapshot struct {
	ID         string
	Name       string
	Type       string
	Properties []PropertySnapshot
}

// PropertySnapshot is a point-in-time copy of one property's attributes.
type PropertySnapshot struct {
	ID       string
	Name     string
	Value    string
	HasValue bool
	Datatype Datatype
	Unit     string
	Settable bool
	Format   string
}

// Snapshot returns a deep copy of the whole registry keyed by device id.
// Used for inspection and for verifying replay idempotence; mutating the
// result does not affect the registry.
func (r *Registry) Snapshot() map[string]DeviceSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]DeviceSnapshot, len(r.devices))
	for id, dev := range r.devices {
		snap := DeviceSnapshot{Name: dev.name, State: dev.state}
		for _, nodeID := range dev.nodes {
			node := r.nodes[nodeKey{id, nodeID}]
			ns := NodeSnapshot{ID: nodeID, Name: node.name, Type: node.nodeType}
			for _, propID := range node.properties {
				p := r.properties[propertyKey{id, nodeID, propID}]
				ns.Properties = append(ns.Properties, PropertySnapshot{
					ID:       propID,
					Name:     p.name,
					Value:    p.value,
					HasValue: p.hasValue,
					Datatype: p.datatype,
					Unit:     p.unit,
					Settable: p.settable,
					Format:   p.format,
				})
			}
			snap.Nodes = append(snap.Nodes, ns)
		}
		out[id] = snap
	}
	return out
}
