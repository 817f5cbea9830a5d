package settings

import (
	"net"
	"strconv"
	"time"
)

// Fixed HTTP front parameters.
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 12000
	DefaultPingInterval = 15 * time.Second
)

// ServerSettings describes how the HTTP front binds and behaves.
type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// InterruptRequests cancels an in-flight completion when a new one arrives.
	InterruptRequests bool `json:"interrupt_requests"`
	// PingEvents sends SSE comment pings on idle streams every PingInterval.
	PingEvents   bool          `json:"ping_events"`
	PingInterval time.Duration `json:"ping_interval"`
}

// DefaultServerSettings returns the fixed server settings.
func DefaultServerSettings() ServerSettings {
	return ServerSettings{
		Host:              DefaultHost,
		Port:              DefaultPort,
		InterruptRequests: true,
		PingEvents:        true,
		PingInterval:      DefaultPingInterval,
	}
}

// Addr returns the listen address in host:port form.
func (s ServerSettings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
