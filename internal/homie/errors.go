package homie

import "errors"

// Sentinel errors for the homie core.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnrecognizedTopic indicates a topic that does not match any homie
	// v4 shape. Such messages are logged and dropped; they are never fatal.
	ErrUnrecognizedTopic = errors.New("homie: unrecognized topic shape")

	// ErrTypeMismatch indicates a payload that does not parse as the
	// property's declared datatype. The fact is dropped (not emitted);
	// the registry's stored raw value is still updated.
	ErrTypeMismatch = errors.New("homie: payload does not match datatype")
)
