package twitter

import (
	"context"
	"fmt"
	"io"
	"sync"

	stealth "github.com/anatolykoptev/go-stealth"
	"github.com/anatolykoptev/go-twitter-threads/timeline"
)

// httpDoer is the transport surface of *stealth.BrowserClient the client uses.
type httpDoer interface {
	DoWithHeaderOrder(method, url string, headers map[string]string, body io.Reader, order []string) ([]byte, map[string]string, int, error)
}

// Client fetches tweet threads and search feeds through the guest API.
// It is safe for concurrent use.
type Client struct {
	http    httpDoer
	session *guestSession
	cfg     ClientConfig
	recon   *timeline.Reconstructor

	// refreshMu serializes guest token activation so concurrent callers
	// reuse a token another caller just obtained.
	refreshMu sync.Mutex

	jitter func(context.Context) error
}

var _ timeline.Fetcher = (*Client)(nil)

// NewClient creates a fully-wired Twitter client.
func NewClient(cfg ClientConfig) (*Client, error) {
	cfg.defaults()
	session := newGuestSession(cfg)

	opts := []stealth.ClientOption{
		stealth.WithProfile(session.Profile.TLSProfile),
		stealth.WithHeaderOrder(twitterHeaderOrder),
	}
	if cfg.Proxy != "" {
		opts = append(opts, stealth.WithProxy(cfg.Proxy))
	}
	bc, err := stealth.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("stealth client: %w", err)
	}

	return newClient(cfg, bc, session), nil
}

func newClient(cfg ClientConfig, doer httpDoer, session *guestSession) *Client {
	c := &Client{
		http:    doer,
		session: session,
		cfg:     cfg,
		jitter:  stealth.DefaultJitter.Sleep,
	}
	c.recon = timeline.New(c,
		timeline.WithPageDelay(cfg.PageDelay),
		timeline.WithMaxPages(cfg.MaxPages),
	)
	return c
}

// recordAPICall calls the metrics hook if configured.
func (c *Client) recordAPICall(endpoint string, success, rateLimited bool) {
	if c.cfg.MetricsHook != nil {
		c.cfg.MetricsHook(endpoint, success, rateLimited)
	}
}
