package mqtt_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"homiegraf/internal/infrastructure/config"
	"homiegraf/internal/infrastructure/mqtt"
)

// testConfig returns a configuration for the local dev broker.
func testConfig() config.MQTTConfig {
	host := os.Getenv("MQTT_HOST")
	if host == "" {
		host = "127.0.0.1"
	}
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host: host,
			Port: 1883,
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// skipIfNoBroker skips the test if no local broker is reachable.
func skipIfNoBroker(t *testing.T) *mqtt.Client {
	t.Helper()
	client, err := mqtt.Connect(testConfig())
	if err != nil {
		t.Skip("MQTT broker not available, skipping integration test")
	}
	return client
}

func TestHomieWildcard(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"homie", "homie/#"},
		{"devices/homie", "devices/homie/#"},
	}
	for _, tt := range tests {
		if got := mqtt.HomieWildcard(tt.base); got != tt.want {
			t.Errorf("HomieWildcard(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestConnect(t *testing.T) {
	client := skipIfNoBroker(t)
	defer client.Close()

	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 59999 // nothing listens here

	if _, err := mqtt.Connect(cfg); !errors.Is(err, mqtt.ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestSubscribe_Validation(t *testing.T) {
	client := skipIfNoBroker(t)
	defer client.Close()

	handler := func(string, []byte) error { return nil }

	if err := client.Subscribe("", 1, handler); !errors.Is(err, mqtt.ErrInvalidTopic) {
		t.Errorf("Subscribe(empty topic) error = %v, want ErrInvalidTopic", err)
	}
	if err := client.Subscribe("homie/#", 3, handler); !errors.Is(err, mqtt.ErrInvalidQoS) {
		t.Errorf("Subscribe(qos 3) error = %v, want ErrInvalidQoS", err)
	}
	if err := client.Subscribe("homie/#", 1, nil); !errors.Is(err, mqtt.ErrSubscribeFailed) {
		t.Errorf("Subscribe(nil handler) error = %v, want ErrSubscribeFailed", err)
	}
}

func TestSubscribe_Tracking(t *testing.T) {
	client := skipIfNoBroker(t)
	defer client.Close()

	topic := mqtt.HomieWildcard("homiegraf-test")
	if err := client.Subscribe(topic, 1, func(string, []byte) error { return nil }); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if !client.HasSubscription(topic) {
		t.Error("HasSubscription() = false after Subscribe()")
	}
	if client.SubscriptionCount() != 1 {
		t.Errorf("SubscriptionCount() = %d, want 1", client.SubscriptionCount())
	}

	if err := client.Unsubscribe(topic); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if client.HasSubscription(topic) {
		t.Error("HasSubscription() = true after Unsubscribe()")
	}
}

func TestHealthCheck_Cancelled(t *testing.T) {
	client := skipIfNoBroker(t)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := client.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestHandlerErrorsIsolated(t *testing.T) {
	client := skipIfNoBroker(t)
	defer client.Close()

	var calls atomic.Int32
	err := client.Subscribe("homiegraf-test/errs/#", 1, func(string, []byte) error {
		calls.Add(1)
		return errors.New("handler failure")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// Publish through a second raw connection; the subscribing client has
	// no publish surface of its own.
	pub := pahomqtt.NewClient(pahomqtt.NewClientOptions().
		AddBroker("tcp://" + testConfig().Broker.Host + ":1883").
		SetClientID("homiegraf-test-pub"))
	if token := pub.Connect(); !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		t.Skip("cannot open publisher connection")
	}
	defer pub.Disconnect(100)

	for i := 0; i < 3; i++ {
		token := pub.Publish("homiegraf-test/errs/p", 1, false, "x")
		token.WaitTimeout(2 * time.Second)
	}

	deadline := time.Now().Add(3 * time.Second)
	for calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	// Every message was delivered despite the handler failing each time,
	// and the connection survived.
	if got := calls.Load(); got < 3 {
		t.Errorf("handler called %d times, want 3", got)
	}
	if !client.IsConnected() {
		t.Error("connection dropped after handler errors")
	}
}
