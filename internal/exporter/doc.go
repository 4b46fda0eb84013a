// Package exporter wires the homie pipeline together: MQTT messages from
// the homie topic tree go through topic classification, the device
// registry, value normalization, and line protocol encoding, and the
// resulting records are handed to a metrics writer.
//
// The exporter owns no transport. The MQTT client and the metrics writer
// (telegraf socket or InfluxDB) are injected as interfaces, so the
// pipeline is testable without a broker or a collector.
//
// # Emission Model
//
// Only two kinds of update produce a record: a bare property value and a
// device $state change. Everything else ($name, $datatype, $unit, child
// announcements) mutates the registry silently and improves how the next
// value update is interpreted.
package exporter
