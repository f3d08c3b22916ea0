package timeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/buger/jsonparser"
)

const (
	// DefaultMaxPages bounds one continuation chain.
	DefaultMaxPages = 50

	// DefaultPageDelay is the pause before each dependent page fetch.
	DefaultPageDelay = time.Second
)

// Fetcher is the transport the reconstructor pulls raw timeline JSON from.
type Fetcher interface {
	// FetchThread returns the raw entries array of a detail view, or of one
	// continuation page when cursor is set.
	FetchThread(ctx context.Context, focalID, cursor string, includeRecommended bool) ([]byte, error)
	// FetchSearch returns the raw search response object.
	FetchSearch(ctx context.Context, query string) ([]byte, error)
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithPacer replaces the delay run before every dependent fetch.
func WithPacer(pace func(context.Context) error) Option {
	return func(r *Reconstructor) {
		if pace != nil {
			r.pace = pace
		}
	}
}

// WithPageDelay sets a fixed delay between dependent fetches.
func WithPageDelay(d time.Duration) Option {
	return func(r *Reconstructor) { r.pace = sleeper(d) }
}

// WithMaxPages caps the number of continuation pages per call.
func WithMaxPages(n int) Option {
	return func(r *Reconstructor) {
		if n > 0 {
			r.maxPages = n
		}
	}
}

// Reconstructor turns fetched timelines into ordered tweet lists.
// It holds no per-call state and may be shared between goroutines.
type Reconstructor struct {
	fetcher  Fetcher
	pace     func(context.Context) error
	maxPages int
}

// New creates a Reconstructor reading from f.
func New(f Fetcher, opts ...Option) *Reconstructor {
	r := &Reconstructor{
		fetcher:  f,
		pace:     sleeper(DefaultPageDelay),
		maxPages: DefaultMaxPages,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func sleeper(d time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		if d <= 0 {
			return ctx.Err()
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Thread resolves the thread view around focalID and follows every
// continuation cursor it ends with.
func (r *Reconstructor) Thread(ctx context.Context, focalID string) ([]Tweet, error) {
	raw, err := r.fetcher.FetchThread(ctx, focalID, "", false)
	if err != nil {
		return nil, fmt.Errorf("fetch thread %s: %w", focalID, err)
	}
	tweets, err := ResolveThread(raw, focalID)
	if err != nil {
		return nil, fmt.Errorf("resolve thread %s: %w", focalID, err)
	}
	return r.paginate(ctx, focalID, false, tweets)
}

// Continue resumes a thread from an explicit cursor. An empty cursor starts
// from the detail view itself.
func (r *Reconstructor) Continue(ctx context.Context, focalID, cursor string, includeRecommended bool) ([]Tweet, error) {
	if cursor == "" {
		if includeRecommended {
			return r.Recommended(ctx, focalID)
		}
		return r.Thread(ctx, focalID)
	}
	return r.paginate(ctx, focalID, includeRecommended, []Tweet{sentinel(cursor)})
}

// Recommended returns every tweet of the detail view with recommendations
// injected, flattened in source order without duplicates.
func (r *Reconstructor) Recommended(ctx context.Context, focalID string) ([]Tweet, error) {
	raw, err := r.fetcher.FetchThread(ctx, focalID, "", true)
	if err != nil {
		return nil, fmt.Errorf("fetch recommended %s: %w", focalID, err)
	}
	page, err := flatten(raw, false)
	if err != nil {
		return nil, fmt.Errorf("flatten recommended %s: %w", focalID, err)
	}

	seen := make(map[string]struct{}, len(page))
	out := make([]Tweet, 0, len(page))
	for _, t := range page {
		if t.IsSentinel() {
			continue
		}
		if t.ID != "" {
			if _, dup := seen[t.ID]; dup {
				continue
			}
			seen[t.ID] = struct{}{}
		}
		out = append(out, t)
	}
	return out, nil
}

// paginate follows trailing sentinels until the list ends with a real tweet.
// Any failure discards everything accumulated so far.
func (r *Reconstructor) paginate(ctx context.Context, focalID string, includeRecommended bool, tweets []Tweet) ([]Tweet, error) {
	seen := make(map[string]struct{}, len(tweets))
	for _, t := range tweets {
		if t.ID != "" && !t.IsSentinel() {
			seen[t.ID] = struct{}{}
		}
	}
	used := make(map[string]struct{})

	for page := 0; endsWithSentinel(tweets); page++ {
		cursor := tweets[len(tweets)-1].Cursor()
		tweets = tweets[:len(tweets)-1]

		if _, dup := used[cursor]; dup {
			slog.Debug("timeline: cursor repeated, stopping", slog.String("focal", focalID))
			break
		}
		if page >= r.maxPages {
			slog.Debug("timeline: page limit reached", slog.String("focal", focalID), slog.Int("pages", page))
			break
		}
		used[cursor] = struct{}{}

		if err := r.pace(ctx); err != nil {
			return nil, err
		}
		raw, err := r.fetcher.FetchThread(ctx, focalID, cursor, includeRecommended)
		if err != nil {
			return nil, fmt.Errorf("fetch continuation of %s: %w", focalID, err)
		}
		items, err := FlattenPage(raw)
		if err != nil {
			return nil, fmt.Errorf("parse continuation of %s: %w", focalID, err)
		}

		added := 0
		for _, t := range items {
			if !t.IsSentinel() && t.ID != "" {
				if _, dup := seen[t.ID]; dup {
					continue
				}
				seen[t.ID] = struct{}{}
			}
			tweets = append(tweets, t)
			added++
		}
		slog.Debug("timeline: continuation page",
			slog.String("focal", focalID),
			slog.Int("page", page+1),
			slog.Int("items", len(items)),
			slog.Int("added", added))
	}
	return tweets, nil
}

// FlattenPage normalizes a continuation page as a straight line. Pages are
// already linear, so no topology is applied; a cursor ends the page with a
// sentinel record.
func FlattenPage(raw []byte) ([]Tweet, error) {
	return flatten(raw, true)
}

func flatten(raw []byte, stopAtCursor bool) ([]Tweet, error) {
	entries, err := splitEntries(raw)
	if err != nil {
		return nil, err
	}

	var out []Tweet
	for _, entry := range entries {
		var tweets []Tweet
		if _, _, _, err := jsonparser.Get(entry, "content"); err == nil {
			tweets, err = expandGroup(entry)
			if err != nil {
				return nil, err
			}
		} else {
			t, err := NormalizeNode(itemNode(entry))
			if err != nil {
				return nil, err
			}
			tweets = []Tweet{t}
		}

		for _, t := range tweets {
			if t.IsSentinel() && stopAtCursor {
				return append(out, t), nil
			}
			out = append(out, t)
		}
	}
	return out, nil
}
