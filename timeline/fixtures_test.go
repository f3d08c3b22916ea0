package timeline

import (
	"context"
	"fmt"
	"strings"
)

func tweetResult(id, author, text string) string {
	return fmt.Sprintf(`{"__typename":"Tweet","rest_id":%q,`+
		`"core":{"user_results":{"result":{"__typename":"User","legacy":{"screen_name":%q}}}},`+
		`"legacy":{"id_str":%q,"full_text":%q,"entities":{"urls":[]}}}`, id, author, id, text)
}

func tweetContent(result string) string {
	return `{"itemType":"TimelineTweet","__typename":"TimelineTweet","tweet_results":{"result":` + result + `}}`
}

func tw(id, author string) string {
	return tweetContent(tweetResult(id, author, "text "+id))
}

func cursorContent(value string) string {
	return fmt.Sprintf(`{"itemType":"TimelineTimelineCursor","__typename":"TimelineTimelineCursor","value":%q,"cursorType":"ShowMoreThreads"}`, value)
}

func tombstoneContent(text string) string {
	return fmt.Sprintf(`{"itemType":"TimelineTweet","tweet_results":{"result":{"__typename":"TweetTombstone","tombstone":{"text":{"text":%q}}}}}`, text)
}

// singleGroup is a top-level tweet-<id> entry.
func singleGroup(id, author string) string {
	return fmt.Sprintf(`{"entryId":"tweet-%s","content":{"entryType":"TimelineTimelineItem","itemContent":%s}}`, id, tw(id, author))
}

// moduleGroup is a conversationthread-<id> entry holding the given item contents.
func moduleGroup(id string, contents ...string) string {
	items := make([]string, len(contents))
	for i, c := range contents {
		items[i] = fmt.Sprintf(`{"entryId":"conversationthread-%s-%d","item":{"itemContent":%s}}`, id, i, c)
	}
	return fmt.Sprintf(`{"entryId":"conversationthread-%s","content":{"entryType":"TimelineTimelineModule","items":[%s]}}`,
		id, strings.Join(items, ","))
}

func cursorGroup(value string) string {
	return fmt.Sprintf(`{"entryId":"cursor-bottom-%s","content":{"entryType":"TimelineTimelineItem","itemContent":%s}}`, value, cursorContent(value))
}

// pageItem and pageCursor are moduleItems elements of a continuation page.
func pageItem(id, author string) string {
	return fmt.Sprintf(`{"entryId":"conversationthread-x-tweet-%s","item":{"itemContent":%s}}`, id, tw(id, author))
}

func pageCursor(value string) string {
	return fmt.Sprintf(`{"entryId":"conversationthread-x-cursor-%s","item":{"itemContent":%s}}`, value, cursorContent(value))
}

func entries(elems ...string) []byte {
	return []byte("[" + strings.Join(elems, ",") + "]")
}

func ids(tweets []Tweet) []string {
	out := make([]string, len(tweets))
	for i, t := range tweets {
		out[i] = t.ID
	}
	return out
}

type fetchCall struct {
	focalID            string
	cursor             string
	includeRecommended bool
}

// fakeFetcher serves detail views keyed by cursor ("" is the first page).
type fakeFetcher struct {
	pages  map[string][]byte
	search []byte
	err    map[string]error
	calls  []fetchCall
}

func (f *fakeFetcher) FetchThread(_ context.Context, focalID, cursor string, includeRecommended bool) ([]byte, error) {
	f.calls = append(f.calls, fetchCall{focalID, cursor, includeRecommended})
	if err := f.err[cursor]; err != nil {
		return nil, err
	}
	page, ok := f.pages[cursor]
	if !ok {
		return []byte("[]"), nil
	}
	return page, nil
}

func (f *fakeFetcher) FetchSearch(context.Context, string) ([]byte, error) {
	return f.search, nil
}

func noPace(context.Context) error { return nil }
