package exporter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"homiegraf/internal/homie"
	"homiegraf/internal/infrastructure/config"
	"homiegraf/internal/infrastructure/logging"
	"homiegraf/internal/infrastructure/mqtt"
)

// MQTTClient is the interface for MQTT operations the exporter needs.
// This allows mocking in tests and flexibility in implementation.
type MQTTClient interface {
	// Subscribe registers a handler for a topic pattern.
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error

	// IsConnected returns true if connected to the broker.
	IsConnected() bool
}

// MetricsWriter receives encoded line protocol records. Satisfied by both
// the telegraf socket client and the InfluxDB client, so the push method
// is a wiring decision in main, not an exporter concern.
type MetricsWriter interface {
	// WriteRecord queues one newline-terminated line protocol record.
	WriteRecord(line string)
}

// Options holds configuration for creating an exporter.
type Options struct {
	// Config is the loaded configuration.
	Config *config.Config

	// MQTTClient is the MQTT client implementation.
	MQTTClient MQTTClient

	// Writer receives encoded records.
	Writer MetricsWriter

	// Mappings is the enum-to-numeric mapping table built from config.
	// May be nil when no mappings are configured.
	Mappings *homie.MappingTable

	// Logger is optional structured logger.
	Logger *logging.Logger
}

// Exporter runs the homie-to-metrics pipeline: it subscribes to the homie
// topic tree, feeds every message through the device registry, and writes
// an encoded record for each emission-ready update.
//
// The pipeline is stateful across messages but stateless across restarts;
// the retained-message replay after each (re)subscribe rebuilds the device
// tree from scratch.
//
// Thread Safety: all methods are safe for concurrent use.
type Exporter struct {
	cfg      *config.Config
	mqtt     MQTTClient
	writer   MetricsWriter
	registry *homie.Registry
	mappings *homie.MappingTable
	logger   *logging.Logger

	// now is swapped out in tests for deterministic timestamps.
	now func() time.Time

	// Shutdown coordination
	stopped  atomic.Bool
	stopOnce sync.Once

	// Counters for periodic health logging
	messagesSeen   atomic.Uint64
	recordsWritten atomic.Uint64
	factsDropped   atomic.Uint64
}

// New creates a new exporter instance.
// Call Start() to begin operation.
func New(opts Options) (*Exporter, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}
	if opts.Writer == nil {
		return nil, fmt.Errorf("metrics writer is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	return &Exporter{
		cfg:      opts.Config,
		mqtt:     opts.MQTTClient,
		writer:   opts.Writer,
		registry: homie.NewRegistry(),
		mappings: opts.Mappings,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Start subscribes to the homie topic tree and begins exporting.
//
// The broker immediately replays the retained backlog after the subscribe,
// which rebuilds the device tree and re-emits current values. Subscription
// restoration on reconnect repeats the replay; the registry absorbs it
// idempotently.
func (e *Exporter) Start(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	wildcard := mqtt.HomieWildcard(e.cfg.Homie.BaseTopic)
	// #nosec G115 -- qos validated to 0..2 by config.Validate
	if err := e.mqtt.Subscribe(wildcard, byte(e.cfg.MQTT.QoS), e.handleMessage); err != nil {
		return fmt.Errorf("subscribe to homie tree: %w", err)
	}

	e.logger.Info("exporter started",
		"topic", wildcard,
		"qos", e.cfg.MQTT.QoS,
		"measurement", e.cfg.Homie.Measurement,
		"mappings", e.mappings.Len())

	return nil
}

// Stop halts exporting. In-flight handler calls finish; subsequent
// messages are dropped. Safe to call multiple times.
func (e *Exporter) Stop() {
	e.stopOnce.Do(func() {
		e.stopped.Store(true)

		e.logger.Info("exporter stopped",
			"messages_seen", e.messagesSeen.Load(),
			"records_written", e.recordsWritten.Load(),
			"facts_dropped", e.factsDropped.Load())
	})
}

// handleMessage runs one MQTT message through the pipeline:
// classify the topic, apply it to the registry, and if the update is
// emission-ready, normalize, encode, and write the record.
//
// Per-message failures never propagate: a malformed topic or payload is
// logged and dropped, and the next message proceeds unaffected.
func (e *Exporter) handleMessage(topic string, payload []byte) error {
	if e.stopped.Load() {
		return nil
	}
	e.messagesSeen.Add(1)

	t, err := homie.ParseTopic(e.cfg.Homie.BaseTopic, topic)
	if err != nil {
		// Expected traffic: $broadcast, command topics, foreign trees.
		e.logger.Debug("ignoring unrecognized topic", "topic", topic)
		return nil
	}

	fact := e.registry.Apply(t, string(payload))
	if fact == nil {
		// Metadata update; it mutated the registry silently.
		return nil
	}

	if fact.Kind == homie.FactDeviceState {
		e.logger.Debug("device state changed",
			"device", fact.DeviceID,
			"state", string(fact.State))
	}

	mapping := e.mappings.Resolve(fact.DeviceID, fact.NodeID, fact.PropertyID, fact.Datatype)

	value, err := homie.Normalize(fact.Value, fact.Datatype, mapping)
	if err != nil {
		e.factsDropped.Add(1)
		if errors.Is(err, homie.ErrTypeMismatch) {
			e.logger.Warn("dropping fact: payload does not match declared datatype",
				"device", fact.DeviceID,
				"node", fact.NodeID,
				"property", fact.PropertyID,
				"datatype", string(fact.Datatype),
				"payload", fact.Value)
			return nil
		}
		return fmt.Errorf("normalize %s/%s/%s: %w", fact.DeviceID, fact.NodeID, fact.PropertyID, err)
	}

	line := homie.Encode(e.cfg.Homie.Measurement, fact, value, e.now())
	e.writer.WriteRecord(line)
	e.recordsWritten.Add(1)

	return nil
}

// Metrics contains counters for health logging and diagnostics.
type Metrics struct {
	Connected      bool
	MessagesSeen   uint64
	RecordsWritten uint64
	FactsDropped   uint64
	Devices        int
	Properties     int
}

// GetMetrics returns current pipeline counters and registry size.
func (e *Exporter) GetMetrics() Metrics {
	return Metrics{
		Connected:      e.mqtt.IsConnected(),
		MessagesSeen:   e.messagesSeen.Load(),
		RecordsWritten: e.recordsWritten.Load(),
		FactsDropped:   e.factsDropped.Load(),
		Devices:        e.registry.DeviceCount(),
		Properties:     e.registry.PropertyCount(),
	}
}
