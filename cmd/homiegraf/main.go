// homiegraf - homie MQTT to metrics exporter
//
// homiegraf subscribes to a homie v4 topic tree, rebuilds the device
// model from retained messages, and writes every property value and
// device state change as an InfluxDB line protocol record, either to a
// telegraf socket_listener or directly to InfluxDB v2.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homiegraf/internal/exporter"
	"homiegraf/internal/homie"
	"homiegraf/internal/infrastructure/config"
	"homiegraf/internal/infrastructure/influxdb"
	"homiegraf/internal/infrastructure/logging"
	"homiegraf/internal/infrastructure/mqtt"
	"homiegraf/internal/infrastructure/telegraf"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// metricsInterval is how often pipeline counters are logged.
const metricsInterval = 5 * time.Minute

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting homiegraf",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected, retained replay will follow")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect the configured push target
	writer, err := connectWriter(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing metrics writer")
		if closeErr := writer.Close(); closeErr != nil {
			log.Error("error closing metrics writer", "error", closeErr)
		}
	}()
	writer.SetOnError(func(err error) {
		log.Error("metrics write error", "error", err)
	})

	// Build enum mapping tables from config
	mappings := buildMappings(cfg.Mappings)
	if mappings.Len() > 0 {
		log.Info("enum mappings loaded", "tables", mappings.Len())
	}

	// Start the exporter pipeline
	exp, err := exporter.New(exporter.Options{
		Config:     cfg,
		MQTTClient: mqttClient,
		Writer:     writer,
		Mappings:   mappings,
		Logger:     log,
	})
	if err != nil {
		return fmt.Errorf("creating exporter: %w", err)
	}
	if err := exp.Start(ctx); err != nil {
		return fmt.Errorf("starting exporter: %w", err)
	}
	defer func() {
		log.Info("stopping exporter")
		exp.Stop()
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, mqttClient, writer); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, exporting")

	// Log pipeline counters periodically until shutdown
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m := exp.GetMetrics()
			log.Info("pipeline metrics",
				"connected", m.Connected,
				"messages_seen", m.MessagesSeen,
				"records_written", m.RecordsWritten,
				"facts_dropped", m.FactsDropped,
				"devices", m.Devices,
				"properties", m.Properties,
			)
		case <-ctx.Done():
			log.Info("shutdown signal received, cleaning up")
			// Deferred Close() calls run in reverse order:
			// exporter, metrics writer, MQTT
			log.Info("homiegraf stopped")
			return nil
		}
	}
}

// metricsClient is the shared surface of the telegraf and InfluxDB
// clients that main manages: writing, lifecycle, and error reporting.
type metricsClient interface {
	WriteRecord(line string)
	SetOnError(callback func(err error))
	HealthCheck(ctx context.Context) error
	Close() error
}

// connectWriter connects the push target selected by push.method.
func connectWriter(ctx context.Context, cfg *config.Config, log *logging.Logger) (metricsClient, error) {
	switch cfg.Push.Method {
	case config.PushTelegraf:
		client, err := telegraf.Connect(cfg.Telegraf)
		if err != nil {
			return nil, fmt.Errorf("connecting to telegraf socket: %w", err)
		}
		log.Info("telegraf socket connected",
			"transport", cfg.Telegraf.Transport,
			"host", cfg.Telegraf.Host,
			"port", cfg.Telegraf.Port,
		)
		return client, nil

	case config.PushInflux:
		client, err := influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return nil, fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		return client, nil

	default:
		// Unreachable after config.Validate.
		return nil, fmt.Errorf("unknown push method %q", cfg.Push.Method)
	}
}

// buildMappings converts configured mapping declarations into the
// exporter's lookup table. Config validation already guarantees each
// entry has exactly one of property or datatype and non-empty values.
func buildMappings(configs []config.MappingConfig) *homie.MappingTable {
	table := homie.NewMappingTable()
	for _, m := range configs {
		values := homie.EnumMap(m.Values)
		if m.Property != "" {
			if device, node, property, ok := m.SplitProperty(); ok {
				table.AddPropertyMapping(device, node, property, values)
			}
			continue
		}
		table.AddDatatypeMapping(homie.ParseDatatype(m.Datatype), values)
	}
	return table
}

// getConfigPath returns the configuration file path.
// Uses HOMIEGRAF_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("HOMIEGRAF_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, writer metricsClient) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}
	if err := writer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("metrics writer: %w", err)
	}
	return nil
}
