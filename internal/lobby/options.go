package lobby

import (
	"go.uber.org/zap"

	"ciphera-lobby/internal/telemetry"
)

// DefaultCapacity bounds the directory when no capacity is configured.
const DefaultCapacity = 1024

// Option configures a Directory.
type Option func(*Directory)

// WithCapacity caps the number of distinct identities. Zero or less means
// unlimited.
func WithCapacity(n int) Option {
	return func(d *Directory) {
		if n < 0 {
			n = 0
		}
		d.capacity = n
	}
}

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l *zap.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.logger = l.Named("lobby")
		}
	}
}

// WithMetrics attaches Prometheus collectors.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(d *Directory) {
		d.metrics = m
	}
}
