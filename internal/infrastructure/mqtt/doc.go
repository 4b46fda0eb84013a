// Package mqtt provides MQTT broker connectivity for homiegraf.
//
// It wraps eclipse/paho.mqtt.golang with connection management,
// subscription tracking, and automatic reconnection with exponential
// backoff. Reconnection restores all subscriptions, which re-delivers the
// retained homie tree and lets the registry rebuild itself; there is no
// persisted device state to fall back on.
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.HomieWildcard("homie"), 1,
//	    func(topic string, payload []byte) error {
//	        return pipeline.Handle(topic, payload)
//	    })
//
// # Thread Safety
//
// All methods are safe for concurrent use. Message handlers run on paho's
// dispatch goroutines; paho preserves arrival order (OrderMatters).
//
// # Status topic
//
// The client publishes retained online/offline JSON payloads to
// homiegraf/status, with a Last Will marking unexpected disconnects.
package mqtt
