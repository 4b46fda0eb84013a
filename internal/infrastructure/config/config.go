package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for homiegraf.
// All configuration is loaded from YAML and can be overridden by
// environment variables (HOMIEGRAF_SECTION_KEY).
type Config struct {
	MQTT     MQTTConfig      `yaml:"mqtt"`
	Homie    HomieConfig     `yaml:"homie"`
	Push     PushConfig      `yaml:"push"`
	Telegraf TelegrafConfig  `yaml:"telegraf"`
	InfluxDB InfluxDBConfig  `yaml:"influxdb"`
	Logging  LoggingConfig   `yaml:"logging"`
	Mappings []MappingConfig `yaml:"mappings"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
// Credentials normally come from HOMIEGRAF_MQTT_USERNAME / _PASSWORD
// rather than the config file.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings (seconds).
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// HomieConfig contains the homie topic tree settings.
type HomieConfig struct {
	// BaseTopic is the homie topic prefix without trailing slash.
	BaseTopic string `yaml:"base_topic"`

	// Measurement is the line-protocol measurement name for emitted records.
	Measurement string `yaml:"measurement"`
}

// Push method names accepted by PushConfig.Method.
const (
	PushTelegraf = "telegraf"
	PushInflux   = "influx"
)

// PushConfig selects where encoded records are sent.
type PushConfig struct {
	// Method is "telegraf" (line protocol over a UDP/TCP socket) or
	// "influx" (InfluxDB v2 HTTP API).
	Method string `yaml:"method"`
}

// TelegrafConfig contains the socket listener settings for the telegraf
// push method.
type TelegrafConfig struct {
	// Transport is "udp" or "tcp", matching telegraf's socket_listener.
	Transport string `yaml:"transport"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`

	// BatchSize and FlushInterval (seconds) control write batching.
	// Batching only applies to TCP; UDP sends one datagram per record.
	BatchSize     int `yaml:"batch_size"`
	FlushInterval int `yaml:"flush_interval"`
}

// InfluxDBConfig contains InfluxDB v2 connection settings for the influx
// push method. The token normally comes from HOMIEGRAF_INFLUXDB_TOKEN.
type InfluxDBConfig struct {
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MappingConfig declares one enum-to-numeric mapping table. Exactly one of
// Property ("device/node/property") or Datatype must be set; a property
// mapping wins over a datatype mapping for the same update.
type MappingConfig struct {
	// Property is an exact "device/node/property" path.
	Property string `yaml:"property,omitempty"`

	// Datatype applies the mapping to every property declaring this
	// homie datatype (usually "enum"). Device $state payloads are never
	// matched by datatype; remap those with a property entry using an
	// empty node segment ("therm1//$state").
	Datatype string `yaml:"datatype,omitempty"`

	// Values maps raw string payloads to their numeric substitutes.
	Values map[string]float64 `yaml:"values"`
}

// SplitProperty splits the "device/node/property" path into its parts.
// Returns ok=false if the path does not have exactly three segments.
// Device $state mappings use an empty node segment ("therm1//$state").
func (m MappingConfig) SplitProperty() (device, node, property string, ok bool) {
	parts := strings.Split(m.Property, "/")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: HOMIEGRAF_SECTION_KEY
// For example: HOMIEGRAF_MQTT_HOST, HOMIEGRAF_INFLUXDB_TOKEN
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults. The telegraf
// defaults match telegraf's stock socket_listener examples.
func defaultConfig() *Config {
	return &Config{
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: 1883,
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		Homie: HomieConfig{
			BaseTopic:   "homie",
			Measurement: "homie",
		},
		Push: PushConfig{
			Method: PushTelegraf,
		},
		Telegraf: TelegrafConfig{
			Transport:     "udp",
			Host:          "localhost",
			Port:          8094,
			BatchSize:     100,
			FlushInterval: 1,
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Credentials in particular should come from here rather
// than the config file.
func applyEnvOverrides(cfg *Config) {
	// MQTT
	if v := os.Getenv("HOMIEGRAF_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("HOMIEGRAF_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("HOMIEGRAF_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// Homie tree
	if v := os.Getenv("HOMIEGRAF_HOMIE_BASE_TOPIC"); v != "" {
		cfg.Homie.BaseTopic = v
	}

	// Push targets
	if v := os.Getenv("HOMIEGRAF_PUSH_METHOD"); v != "" {
		cfg.Push.Method = v
	}
	if v := os.Getenv("HOMIEGRAF_TELEGRAF_HOST"); v != "" {
		cfg.Telegraf.Host = v
	}
	if v := os.Getenv("HOMIEGRAF_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []string

	if c.MQTT.Broker.Host == "" {
		errs = append(errs, "mqtt.broker.host is required")
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Homie.BaseTopic == "" {
		errs = append(errs, "homie.base_topic is required")
	}
	if strings.ContainsAny(c.Homie.BaseTopic, "#+") || strings.HasSuffix(c.Homie.BaseTopic, "/") {
		errs = append(errs, "homie.base_topic must be a literal prefix without wildcards or trailing slash")
	}
	if c.Homie.Measurement == "" {
		errs = append(errs, "homie.measurement is required")
	}

	switch c.Push.Method {
	case PushTelegraf:
		if c.Telegraf.Transport != "udp" && c.Telegraf.Transport != "tcp" {
			errs = append(errs, "telegraf.transport must be udp or tcp")
		}
		if c.Telegraf.Port < 1 || c.Telegraf.Port > 65535 {
			errs = append(errs, "telegraf.port must be between 1 and 65535")
		}
	case PushInflux:
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required for the influx push method")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required (set HOMIEGRAF_INFLUXDB_TOKEN)")
		}
	default:
		errs = append(errs, "push.method must be telegraf or influx")
	}

	for i, m := range c.Mappings {
		if (m.Property == "") == (m.Datatype == "") {
			errs = append(errs, fmt.Sprintf("mappings[%d]: exactly one of property or datatype must be set", i))
			continue
		}
		if m.Property != "" {
			if _, _, _, ok := m.SplitProperty(); !ok {
				errs = append(errs, fmt.Sprintf("mappings[%d]: property must be device/node/property", i))
			}
		}
		if len(m.Values) == 0 {
			errs = append(errs, fmt.Sprintf("mappings[%d]: values must not be empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
