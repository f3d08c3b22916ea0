package twitter

import (
	"sync"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-stealth/ratelimit"
)

// guestSession is the anonymous identity requests go out under: a browser
// profile, the current guest token and per-endpoint rate limits.
type guestSession struct {
	Profile   stealth.BrowserProfile
	UserAgent string

	mu           sync.Mutex
	token        string
	limitedUntil time.Time
	rateLimiter  *ratelimit.Limiter
}

func newGuestSession(cfg ClientConfig) *guestSession {
	p := stealth.BuiltinProfiles[cfg.Profile%len(stealth.BuiltinProfiles)]
	ua := p.UserAgent
	if cfg.UserAgent != "" {
		ua = cfg.UserAgent
	}
	return &guestSession{
		Profile:     p,
		UserAgent:   ua,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
	}
}

// Token returns the current guest token and whether it is usable.
func (s *guestSession) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" || time.Now().Before(s.limitedUntil) {
		return "", false
	}
	return s.token, true
}

// SetToken stores a fresh guest token.
func (s *guestSession) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.limitedUntil = time.Time{}
	s.mu.Unlock()
}

// MarkTokenRateLimited parks the token until the limit resets.
func (s *guestSession) MarkTokenRateLimited(until time.Time) {
	s.mu.Lock()
	s.limitedUntil = until
	s.mu.Unlock()
}

// AllowRequest checks if the session can make a request to the given endpoint.
func (s *guestSession) AllowRequest(endpoint string) bool {
	s.mu.Lock()
	if s.rateLimiter == nil {
		s.mu.Unlock()
		return true
	}
	rl := s.rateLimiter
	s.mu.Unlock()
	return rl.Allow(endpoint)
}

// MarkEndpointRateLimited marks an endpoint as rate-limited for this session.
func (s *guestSession) MarkEndpointRateLimited(endpoint string, until time.Time) {
	s.mu.Lock()
	if s.rateLimiter == nil {
		s.mu.Unlock()
		return
	}
	rl := s.rateLimiter
	s.mu.Unlock()
	rl.MarkRateLimited(endpoint, until)
}

// EndpointAvailableAt returns when the endpoint accepts requests again.
func (s *guestSession) EndpointAvailableAt(endpoint string) time.Time {
	s.mu.Lock()
	if s.rateLimiter == nil {
		s.mu.Unlock()
		return time.Time{}
	}
	rl := s.rateLimiter
	s.mu.Unlock()
	return rl.AvailableAt(endpoint)
}
