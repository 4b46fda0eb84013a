// Package homie implements the core of the homie-to-metrics pipeline:
// parsing the homie v4 MQTT topic hierarchy, maintaining an in-memory
// device/node/property registry, normalizing raw payloads into typed
// values, and encoding property updates as InfluxDB line-protocol records.
//
// # Topic grammar
//
// homie v4 topics are positionally unambiguous given segment count and the
// $ attribute prefix:
//
//	homie/<device>/$state              device attribute
//	homie/<device>/<node>/$type        node attribute
//	homie/<device>/<node>/<property>   property value
//	homie/<device>/<node>/<property>/$datatype   property attribute
//
// # Ordering tolerance
//
// Metadata and values arrive asynchronously and in any order (retained
// message replay gives no ordering guarantees across topics). Every
// attribute is independently settable at any time: a value update for an
// unknown property creates it with datatype "unknown", and later metadata
// upgrades it in place. Nothing is ever deleted; a lost device is recorded
// as a state, not a removal.
//
// # Emission model
//
// Registry.Apply returns a Fact only for bare property values and device
// $state changes. Metadata updates mutate the tree silently and improve
// how the next value is interpreted. This keeps the output stream to one
// record per observed value, always with the best-known typing at that
// moment.
//
// # Thread Safety
//
// Registry is safe for concurrent use; all mutation is serialized behind a
// single mutex, and returned Facts are immutable snapshots. Normalize and
// Encode are pure functions.
package homie
