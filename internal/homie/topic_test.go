package homie_test

import (
	"errors"
	"testing"

	"homiegraf/internal/homie"
)

func TestParseTopic(t *testing.T) {
	tests := []struct {
		name  string
		topic string
		want  homie.Topic
	}{
		{
			name:  "device attribute",
			topic: "homie/therm1/$state",
			want:  homie.Topic{Kind: homie.KindDeviceAttribute, Device: "therm1", Attr: "$state"},
		},
		{
			name:  "device name",
			topic: "homie/therm1/$name",
			want:  homie.Topic{Kind: homie.KindDeviceAttribute, Device: "therm1", Attr: "$name"},
		},
		{
			name:  "device attribute subtree",
			topic: "homie/therm1/$fw/name",
			want:  homie.Topic{Kind: homie.KindDeviceAttribute, Device: "therm1", Attr: "$fw/name"},
		},
		{
			name:  "device stats subtree",
			topic: "homie/therm1/$stats/uptime",
			want:  homie.Topic{Kind: homie.KindDeviceAttribute, Device: "therm1", Attr: "$stats/uptime"},
		},
		{
			name:  "node attribute",
			topic: "homie/therm1/main/$type",
			want:  homie.Topic{Kind: homie.KindNodeAttribute, Device: "therm1", Node: "main", Attr: "$type"},
		},
		{
			name:  "property value",
			topic: "homie/therm1/main/setpoint",
			want:  homie.Topic{Kind: homie.KindPropertyValue, Device: "therm1", Node: "main", Property: "setpoint"},
		},
		{
			name:  "property attribute",
			topic: "homie/therm1/main/setpoint/$datatype",
			want: homie.Topic{
				Kind: homie.KindPropertyAttribute,
				Device: "therm1", Node: "main", Property: "setpoint", Attr: "$datatype",
			},
		},
		{
			name:  "property unit attribute",
			topic: "homie/therm1/main/setpoint/$unit",
			want: homie.Topic{
				Kind: homie.KindPropertyAttribute,
				Device: "therm1", Node: "main", Property: "setpoint", Attr: "$unit",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := homie.ParseTopic("homie", tt.topic)
			if err != nil {
				t.Fatalf("ParseTopic(%q) error = %v", tt.topic, err)
			}
			if got != tt.want {
				t.Errorf("ParseTopic(%q) = %+v, want %+v", tt.topic, got, tt.want)
			}
		})
	}
}

func TestParseTopic_Unrecognized(t *testing.T) {
	tests := []struct {
		name  string
		topic string
	}{
		{"bare device", "homie/therm1"},
		{"base only", "homie"},
		{"outside base", "zigbee2mqtt/livingroom/state"},
		{"device level value", "homie/therm1/mode-is-not-an-attr/extra/deep"},
		{"five segments", "homie/d/n/p/$attr/extra"},
		{"set command topic", "homie/therm1/main/setpoint/set"},
		{"broadcast", "homie/$broadcast/alert"},
		{"empty segment", "homie/therm1//setpoint"},
		{"non attr after property", "homie/therm1/main/setpoint/other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := homie.ParseTopic("homie", tt.topic)
			if !errors.Is(err, homie.ErrUnrecognizedTopic) {
				t.Errorf("ParseTopic(%q) error = %v, want ErrUnrecognizedTopic", tt.topic, err)
			}
		})
	}
}

func TestParseTopic_CustomBase(t *testing.T) {
	got, err := homie.ParseTopic("devices/homie", "devices/homie/lamp/light/power")
	if err != nil {
		t.Fatalf("ParseTopic() error = %v", err)
	}
	if got.Kind != homie.KindPropertyValue || got.Device != "lamp" {
		t.Errorf("ParseTopic() = %+v, want property value for device lamp", got)
	}

	// The plain "homie" base must not match the longer one.
	if _, err := homie.ParseTopic("homie", "devices/homie/lamp/light/power"); !errors.Is(err, homie.ErrUnrecognizedTopic) {
		t.Errorf("ParseTopic() error = %v, want ErrUnrecognizedTopic", err)
	}
}
