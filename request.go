package twitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// doGET executes a guest-token GET. An expired token is replaced and the
// request retried exactly once.
func (c *Client) doGET(ctx context.Context, endpoint, url string) ([]byte, error) {
	// Anti-fingerprint jitter
	if err := c.jitter(ctx); err != nil {
		return nil, err
	}
	if err := c.waitForEndpoint(ctx, endpoint); err != nil {
		return nil, err
	}

	token, err := c.guestToken(ctx)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("guest token unavailable: %w", err)}
	}

	body, err := c.attempt(endpoint, url, token)
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		return body, err
	}

	slog.Warn("guest token expired, reacquiring",
		slog.String("endpoint", endpoint),
		slog.Int("status", authErr.Status),
		slog.Int("code", authErr.Code))
	token, err = c.refreshGuestToken(ctx, token)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Status: authErr.Status, Err: fmt.Errorf("guest token reacquisition failed: %w", err)}
	}

	body, err = c.attempt(endpoint, url, token)
	if errors.As(err, &authErr) {
		return nil, &TransportError{Endpoint: endpoint, Status: authErr.Status, Err: authErr}
	}
	return body, err
}

// attempt performs one request and maps the outcome onto the error taxonomy.
func (c *Client) attempt(endpoint, url, token string) ([]byte, error) {
	body, respHdrs, status, err := c.http.DoWithHeaderOrder("GET", url, guestHeaders(token, c.session.UserAgent), nil, twitterHeaderOrder)
	if err != nil {
		c.recordAPICall(endpoint, false, false)
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}

	errClass, code := classifyError(body)
	switch {
	case status == 429 || errClass == errRateLimit:
		c.recordAPICall(endpoint, false, true)
		until := parseRateLimitReset(respHdrs["x-rate-limit-reset"])
		c.session.MarkEndpointRateLimited(endpoint, until)
		c.session.MarkTokenRateLimited(until)
		return nil, &TransportError{Endpoint: endpoint, Status: status, Err: ErrRateLimited}

	case status == 401 || status == 403 || errClass == errAuthExpired || errClass == errGuestExpired:
		c.recordAPICall(endpoint, false, false)
		return nil, &AuthError{Endpoint: endpoint, Status: status, Code: code}

	case status != 200:
		c.recordAPICall(endpoint, false, false)
		slog.Warn("doGET non-200", slog.String("endpoint", endpoint), slog.Int("status", status), slog.String("body", truncateBytes(body, 500)))
		return nil, &TransportError{Endpoint: endpoint, Status: status, Err: errors.New(truncateBytes(body, 200))}
	}

	if !json.Valid(body) {
		c.recordAPICall(endpoint, false, false)
		return nil, &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("body is not JSON: %s", truncateBytes(body, 100))}
	}

	switch errClass {
	case errNone:
	case errInternal:
		if !hasResponseData(body) {
			c.recordAPICall(endpoint, false, false)
			return nil, &TransportError{Endpoint: endpoint, Status: status, Err: fmt.Errorf("Twitter internal error (131)")}
		}
		slog.Debug("error 131 with usable data, treating as success", slog.String("endpoint", endpoint))
	default:
		if !hasResponseData(body) {
			c.recordAPICall(endpoint, false, false)
			return nil, &TransportError{Endpoint: endpoint, Status: status, Err: fmt.Errorf("api error %d: %s", code, apiErrorMessage(body))}
		}
	}

	c.recordAPICall(endpoint, true, false)
	return body, nil
}

// waitForEndpoint blocks until the session may call endpoint again, up to
// cfg.RateLimitWait.
func (c *Client) waitForEndpoint(ctx context.Context, endpoint string) error {
	if c.session.AllowRequest(endpoint) {
		return nil
	}
	wait := time.Until(c.session.EndpointAvailableAt(endpoint))
	if wait > c.cfg.RateLimitWait {
		c.recordAPICall(endpoint, false, true)
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("%w until %s", ErrRateLimited, time.Now().Add(wait).Format(time.TimeOnly))}
	}
	if wait > 0 {
		slog.Debug("endpoint rate-limited, waiting", slog.String("endpoint", endpoint), slog.Duration("wait", wait))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !c.session.AllowRequest(endpoint) {
		c.recordAPICall(endpoint, false, true)
		return &TransportError{Endpoint: endpoint, Err: ErrRateLimited}
	}
	return nil
}

func truncateBytes(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// hasResponseData returns true if the JSON body carries a payload next to its
// errors: a non-null "data" (GraphQL) or "globalObjects" (search).
func hasResponseData(body []byte) bool {
	var probe struct {
		Data          json.RawMessage `json:"data"`
		GlobalObjects json.RawMessage `json:"globalObjects"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return false
	}
	for _, v := range []json.RawMessage{probe.Data, probe.GlobalObjects} {
		if len(v) > 0 && string(v) != "null" {
			return true
		}
	}
	return false
}
