package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	stealth "github.com/anatolykoptev/go-stealth"
)

const guestActivateURL = twitterAPIURL + "/1.1/guest/activate.json"

// guestToken returns the cached guest token, activating one on first use.
func (c *Client) guestToken(ctx context.Context) (string, error) {
	if token, ok := c.session.Token(); ok {
		return token, nil
	}
	return c.refreshGuestToken(ctx, "")
}

// refreshGuestToken replaces stale with a fresh token. Callers that lost the
// race get the token the winner stored instead of activating another one.
func (c *Client) refreshGuestToken(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	if token, ok := c.session.Token(); ok && token != stale {
		return token, nil
	}
	token, err := c.acquireGuestToken(ctx)
	if err != nil {
		return "", err
	}
	c.session.SetToken(token)
	slog.Debug("guest token acquired")
	return token, nil
}

// getGuestToken fetches a Twitter guest token.
func (c *Client) getGuestToken() (string, error) {
	headers := map[string]string{
		"authorization": "Bearer " + BearerToken,
		"content-type":  "application/json",
		"user-agent":    c.session.UserAgent,
	}
	body, _, status, err := c.http.DoWithHeaderOrder("POST", guestActivateURL, headers, nil, twitterHeaderOrder)
	if err != nil {
		return "", err
	}
	if status != 200 {
		return "", fmt.Errorf("guest token: HTTP %d: %s", status, truncateBytes(body, 200))
	}
	var resp struct {
		GuestToken string `json:"guest_token"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("guest token: %w", err)
	}
	if resp.GuestToken == "" {
		return "", fmt.Errorf("empty guest token in response")
	}
	return resp.GuestToken, nil
}

// acquireGuestToken fetches a fresh guest token with exponential backoff.
func (c *Client) acquireGuestToken(ctx context.Context) (string, error) {
	backoff := stealth.BackoffConfig{
		InitialWait: 2 * time.Second,
		MaxWait:     60 * time.Second,
		Multiplier:  2.0,
		JitterPct:   0.3,
	}
	attempts := max(c.cfg.GuestTokenAttempts, 1)
	var lastErr error
	for attempt := range attempts {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff.Duration(attempt)):
			}
		}
		token, err := c.getGuestToken()
		if err == nil {
			return token, nil
		}
		lastErr = err
		slog.Warn("guest token acquisition failed", slog.Int("attempt", attempt+1), slog.Any("error", err))
	}
	return "", fmt.Errorf("acquire guest token after %d attempts: %w", attempts, lastErr)
}
