// Package config provides configuration loading for homiegraf.
//
// Configuration is read from a YAML file, starting from hardcoded
// defaults, with environment variable overrides applied last
// (HOMIEGRAF_SECTION_KEY). Credentials (the MQTT password and the
// InfluxDB token) should always come from the environment rather than
// the file.
//
// The config surface covers the broker connection, the homie base topic
// and measurement name, the push method (telegraf socket or InfluxDB),
// and the enum-to-numeric mapping tables consumed by the homie
// normalizer.
package config
