package httpapi

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"llamalaunch/internal/settings"
)

// DefaultMaxBodyBytes is the request body limit used when none is configured.
const DefaultMaxBodyBytes int64 = 1 << 20

// Options configures the HTTP front. The zero value is usable: no CORS, no
// interruption, no pings, 1 MiB bodies and a disabled logger.
type Options struct {
	// Logger receives request logs. The zero Logger discards.
	Logger zerolog.Logger
	// LogLevel is the per-request log level when a request carries no override.
	LogLevel LogLevel
	// MaxBodyBytes limits proxied request bodies.
	MaxBodyBytes int64
	// CORSOrigins enables CORS for the listed origins ("*" allows any).
	CORSOrigins []string
	// InterruptRequests cancels an in-flight streaming completion when a new
	// completion for the same model arrives.
	InterruptRequests bool
	// PingEvents writes SSE comment pings on event streams idle for PingInterval.
	PingEvents   bool
	PingInterval time.Duration
	// BaseContext is canceled on shutdown; proxied requests are canceled with it.
	BaseContext context.Context
}

// WithServerSettings copies the interruption and ping behavior from s.
func (o Options) WithServerSettings(s settings.ServerSettings) Options {
	o.InterruptRequests = s.InterruptRequests
	o.PingEvents = s.PingEvents
	o.PingInterval = s.PingInterval
	return o
}

func (o Options) normalized() Options {
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if o.PingInterval <= 0 {
		o.PingInterval = settings.DefaultPingInterval
	}
	if o.BaseContext == nil {
		o.BaseContext = context.Background()
	}
	return o
}
