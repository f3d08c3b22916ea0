package twitter

import "github.com/anatolykoptev/go-twitter-threads/timeline"

// Re-exported so callers of the client need not import timeline.
type (
	Tweet     = timeline.Tweet
	MediaItem = timeline.MediaItem
	URLItem   = timeline.URLItem
	Extra     = timeline.Extra
)
