package homie

// Datatype is a homie property datatype as announced via $datatype.
// A property created by a bare value update starts as DatatypeUnknown
// and is upgraded in place when metadata arrives.
type Datatype string

// homie v4 property datatypes.
const (
	DatatypeInteger Datatype = "integer"
	DatatypeFloat   Datatype = "float"
	DatatypeBoolean Datatype = "boolean"
	DatatypeString  Datatype = "string"
	DatatypeEnum    Datatype = "enum"
	DatatypeColor   Datatype = "color"
	DatatypeUnknown Datatype = "unknown"

	// DatatypeState marks device $state facts. It is never announced by
	// devices and ParseDatatype never produces it, so datatype-keyed
	// mappings cannot match $state payloads; only an exact property
	// mapping ("dev//$state") can remap them.
	DatatypeState Datatype = "$state"
)

// ParseDatatype converts a $datatype payload to a Datatype.
// Unrecognised payloads map to DatatypeUnknown rather than failing;
// unknown datatypes fall through to string handling during normalization.
func ParseDatatype(s string) Datatype {
	switch Datatype(s) {
	case DatatypeInteger, DatatypeFloat, DatatypeBoolean,
		DatatypeString, DatatypeEnum, DatatypeColor:
		return Datatype(s)
	default:
		return DatatypeUnknown
	}
}

// DeviceState is a homie device lifecycle state as announced via $state.
type DeviceState string

// homie v4 device states. StateUnknown is used until the first $state
// message arrives.
const (
	StateInit         DeviceState = "init"
	StateReady        DeviceState = "ready"
	StateDisconnected DeviceState = "disconnected"
	StateSleeping     DeviceState = "sleeping"
	StateLost         DeviceState = "lost"
	StateAlert        DeviceState = "alert"
	StateUnknown      DeviceState = "unknown"
)

// ParseDeviceState converts a $state payload to a DeviceState.
// Unrecognised payloads map to StateUnknown.
func ParseDeviceState(s string) DeviceState {
	switch DeviceState(s) {
	case StateInit, StateReady, StateDisconnected,
		StateSleeping, StateLost, StateAlert:
		return DeviceState(s)
	default:
		return StateUnknown
	}
}

// FactKind distinguishes the two emittable update kinds.
type FactKind int

const (
	// FactPropertyValue is a bare property value update.
	FactPropertyValue FactKind = iota

	// FactDeviceState is a device $state change.
	FactDeviceState
)

// Fact is an emittable update produced by Registry.Apply: a property value
// change or a device state change, together with the best-known metadata at
// the moment of arrival. Fields are a snapshot taken under the registry
// lock; a Fact never aliases live registry state.
type Fact struct {
	Kind FactKind

	DeviceID   string
	NodeID     string // empty for device state facts
	PropertyID string // "$state" for device state facts

	// Value is the raw payload that triggered emission.
	Value string

	// Property metadata as known when the value arrived.
	Datatype Datatype
	Unit     string
	Settable bool
	Format   string

	// State is set for FactDeviceState facts.
	State DeviceState
}
