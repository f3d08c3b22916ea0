package twitter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	// ErrRateLimited is wrapped by TransportError when the endpoint or the
	// guest token is rate-limited.
	ErrRateLimited = errors.New("rate limited")

	// ErrInvalidURL is returned for links that are not tweet permalinks.
	ErrInvalidURL = errors.New("invalid tweet url")
)

// TransportError is a network failure or a non-success HTTP response.
type TransportError struct {
	Endpoint string
	Status   int // 0 when no response was received
	Err      error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: HTTP %d: %v", e.Endpoint, e.Status, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports a guest token the API no longer accepts. It is retried
// once with a fresh token and surfaces wrapped in a TransportError after that.
type AuthError struct {
	Endpoint string
	Status   int
	Code     int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: guest token rejected (HTTP %d, code %d)", e.Endpoint, e.Status, e.Code)
}

// DecodeError reports a response body that is not the JSON envelope expected.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// errorClass categorizes Twitter API error responses for targeted handling.
type errorClass int

const (
	errNone         errorClass = iota
	errRateLimit               // 88, rate limit exceeded
	errAuthExpired             // 32, could not authenticate
	errGuestExpired            // 200, 215, 239: guest token expired or invalid
	errNotFound                // 144, 8: no status with that id
	errInternal                // 131, Twitter internal error
	errOther
)

// classifyError inspects a response body for known Twitter error codes and
// returns the class together with the first code seen.
func classifyError(body []byte) (errorClass, int) {
	var errResp struct {
		Errors []struct {
			Code int `json:"code"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return errNone, 0
	}

	for _, e := range errResp.Errors {
		switch e.Code {
		case 88:
			return errRateLimit, e.Code
		case 32:
			return errAuthExpired, e.Code
		case 200, 215, 239:
			return errGuestExpired, e.Code
		case 144, 8:
			return errNotFound, e.Code
		case 131:
			return errInternal, e.Code
		}
	}
	return errOther, errResp.Errors[0].Code
}

// apiErrorMessage returns the first error message of a response body.
func apiErrorMessage(body []byte) string {
	var errResp struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if json.Unmarshal(body, &errResp) != nil || len(errResp.Errors) == 0 {
		return ""
	}
	return errResp.Errors[0].Message
}

// parseRateLimitReset parses the X-Rate-Limit-Reset unix timestamp header.
// Falls back to 15 minutes from now if missing or invalid.
func parseRateLimitReset(v string) time.Time {
	if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Unix(ts, 0)
	}
	return time.Now().Add(15 * time.Minute)
}
