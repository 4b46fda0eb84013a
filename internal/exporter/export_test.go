package exporter

import "time"

// SetNow overrides the timestamp source for deterministic test records.
func (e *Exporter) SetNow(now func() time.Time) {
	e.now = now
}
