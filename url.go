package twitter

import (
	"fmt"
	"regexp"
)

var tweetURLRe = regexp.MustCompile(`^https?://(?:www\.|mobile\.)?(?:twitter\.com|x\.com)/(\w+)/status(?:es)?/(\d+)`)

// ParseTweetURL extracts the author handle and tweet ID from a permalink.
func ParseTweetURL(permalink string) (handle, id string, err error) {
	m := tweetURLRe.FindStringSubmatch(permalink)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidURL, permalink)
	}
	return m[1], m[2], nil
}
