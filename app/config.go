package app

import (
	"log/slog"
	"time"
)

// Config is the badge's compiled-in configuration. The host binary
// overrides fields from flags; on device the defaults are the whole
// story apart from the persisted timezone key.
type Config struct {
	// ClientID identifies this badge to the broker.
	ClientID string
	// ServerAddr is the broker's "host:port" address.
	ServerAddr string
	// Topic carries plain-text alert payloads.
	Topic string
	// AlertWindow is how long a received alert stays on screen.
	AlertWindow time.Duration
	// Timezone is the POSIX TZ rule used when no timezone is persisted.
	Timezone string
	// LEDCount is the length of the GRBW strip.
	LEDCount int
	// Logger receives network session events. Nil discards them.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration the badge ships with.
func DefaultConfig() Config {
	return Config{
		ClientID:    "sha2017_badge",
		ServerAddr:  "catbus.eth.moe:1883",
		Topic:       "home/house/alert/info_string",
		AlertWindow: 10 * time.Second,
		Timezone:    "GMT+0BST-1,M3.5.0/01:00:00,M10.5.0/02:00:00",
		LEDCount:    6,
	}
}
