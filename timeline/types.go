package timeline

import "time"

const (
	// SentinelID marks the synthetic record that carries a continuation cursor.
	SentinelID = "more_tweets_in_thread"

	// TombstoneAuthor is the author placeholder for unavailable tweets.
	TombstoneAuthor = "unknown"
)

// MediaKind is the media entity type reported by the platform.
type MediaKind string

const (
	MediaPhoto       MediaKind = "photo"
	MediaVideo       MediaKind = "video"
	MediaAnimatedGIF MediaKind = "animated_gif"
)

// MediaItem is one attached photo, video or gif.
type MediaItem struct {
	ShortURL string    `json:"shortened_url" yaml:"shortened_url"`
	FullURL  string    `json:"full_url" yaml:"full_url"`
	Kind     MediaKind `json:"kind" yaml:"kind"`
	VideoURL string    `json:"video_url,omitempty" yaml:"video_url,omitempty"`
}

// URLItem is a shortened link and its expansion.
type URLItem struct {
	ShortURL string `json:"shortened_url" yaml:"shortened_url"`
	FullURL  string `json:"full_url" yaml:"full_url"`
}

// Extra holds metadata only the search path supplies.
type Extra struct {
	CreatedAt   time.Time `json:"date" yaml:"date"`
	Favorites   int       `json:"faves" yaml:"faves"`
	RetweetedBy []string  `json:"retweeted_by,omitempty" yaml:"retweeted_by,omitempty"`
}

// Tweet is the canonical record produced by normalization.
type Tweet struct {
	ID       string      `json:"id" yaml:"id"`
	Author   string      `json:"user" yaml:"user"`
	Text     string      `json:"text" yaml:"text"`
	Media    []MediaItem `json:"media,omitempty" yaml:"media,omitempty"`
	URLs     []URLItem   `json:"urls,omitempty" yaml:"urls,omitempty"`
	Quote    *Tweet      `json:"quote,omitempty" yaml:"quote,omitempty"`
	ThreadID string      `json:"thread_id,omitempty" yaml:"thread_id,omitempty"`
	Extra    *Extra      `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// IsSentinel reports whether t is a continuation marker rather than a tweet.
func (t Tweet) IsSentinel() bool {
	return t.ID == SentinelID
}

// IsTombstone reports whether t is a placeholder for an unavailable tweet.
func (t Tweet) IsTombstone() bool {
	return t.ID == "" && t.Author == TombstoneAuthor
}

// Cursor returns the continuation token of a sentinel record.
func (t Tweet) Cursor() string {
	if !t.IsSentinel() {
		return ""
	}
	return t.Text
}

func sentinel(cursor string) Tweet {
	return Tweet{ID: SentinelID, Text: cursor}
}

// clone returns a deep copy so records handed out by the assembler never share slices.
func (t Tweet) clone() Tweet {
	c := t
	if t.Media != nil {
		c.Media = append([]MediaItem(nil), t.Media...)
	}
	if t.URLs != nil {
		c.URLs = append([]URLItem(nil), t.URLs...)
	}
	if t.Quote != nil {
		q := t.Quote.clone()
		c.Quote = &q
	}
	if t.Extra != nil {
		e := *t.Extra
		if e.RetweetedBy != nil {
			e.RetweetedBy = append([]string(nil), e.RetweetedBy...)
		}
		c.Extra = &e
	}
	return c
}
