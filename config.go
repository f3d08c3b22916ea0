package twitter

import (
	"time"

	"github.com/anatolykoptev/go-stealth/ratelimit"
	"github.com/anatolykoptev/go-twitter-threads/timeline"
)

// ClientConfig holds all configuration for the Twitter client.
type ClientConfig struct {
	// Proxy is the proxy URL all requests go through. Empty means direct.
	Proxy string

	// Profile selects the built-in browser profile (TLS fingerprint and
	// User-Agent) the guest session impersonates, modulo the number of profiles.
	Profile int

	// UserAgent overrides the profile's User-Agent.
	UserAgent string

	// PageDelay is the pause before each continuation page fetch.
	// Default: 1s
	PageDelay time.Duration

	// MaxPages bounds the continuation pages followed for one thread.
	// Default: 50
	MaxPages int

	// RateLimit configures per-endpoint rate limiting of the guest session.
	RateLimit ratelimit.Config

	// RateLimitWait is the longest a request waits for a rate-limited
	// endpoint before failing with ErrRateLimited.
	// Default: 30s
	RateLimitWait time.Duration

	// GuestTokenAttempts is how many times token activation is tried.
	// Default: 3
	GuestTokenAttempts int

	// MetricsHook is called on each API request for external metrics collection.
	// endpoint is the operation name, success and rateLimited indicate the outcome.
	MetricsHook func(endpoint string, success, rateLimited bool)
}

// defaults fills in zero-value config fields with sensible defaults.
func (cfg *ClientConfig) defaults() {
	if cfg.PageDelay == 0 {
		cfg.PageDelay = timeline.DefaultPageDelay
	}
	if cfg.MaxPages == 0 {
		cfg.MaxPages = timeline.DefaultMaxPages
	}
	if cfg.RateLimit.RequestsPerWindow == 0 {
		cfg.RateLimit = ratelimit.DefaultConfig
	}
	if cfg.RateLimitWait == 0 {
		cfg.RateLimitWait = 30 * time.Second
	}
	if cfg.GuestTokenAttempts == 0 {
		cfg.GuestTokenAttempts = 3
	}
}
