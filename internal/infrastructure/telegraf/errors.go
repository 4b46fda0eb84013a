package telegraf

import "errors"

// Sentinel errors for telegraf socket operations.
var (
	// ErrNotConnected indicates the client has been closed.
	ErrNotConnected = errors.New("telegraf: not connected")

	// ErrConnectionFailed indicates a dial attempt failed.
	ErrConnectionFailed = errors.New("telegraf: connection failed")

	// ErrWriteFailed indicates a socket write failed.
	// Write errors are delivered asynchronously via the error callback.
	ErrWriteFailed = errors.New("telegraf: write failed")

	// ErrInvalidTransport indicates a transport other than udp or tcp.
	ErrInvalidTransport = errors.New("telegraf: transport must be udp or tcp")
)
