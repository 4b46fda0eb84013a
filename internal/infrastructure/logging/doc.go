// Package logging provides structured logging for homiegraf.
//
// It wraps log/slog with the configured level, format (JSON or text) and
// output destination, and stamps every record with the service name and
// version. Use Default() during early startup before the configuration is
// available, then replace it with New(cfg, version).
package logging
