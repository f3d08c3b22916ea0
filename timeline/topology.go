package timeline

import (
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

var groupPrefixes = []string{"tweet-", "conversationthread-"}

// groupID returns the representative tweet id encoded in a group's entryId.
func groupID(group []byte) string {
	entryID, err := jsonparser.GetString(group, "entryId")
	if err != nil {
		return ""
	}
	for _, p := range groupPrefixes {
		if id, ok := strings.CutPrefix(entryID, p); ok {
			return id
		}
	}
	return ""
}

// splitEntries returns the elements of a raw entries array.
func splitEntries(raw []byte) ([][]byte, error) {
	var entries [][]byte
	_, err := jsonparser.ArrayEach(raw, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		entries = append(entries, value)
	})
	if err != nil {
		return nil, schemaErr("entries", err)
	}
	return entries, nil
}

// expandGroup turns one timeline entry into its tweets in source order. A
// module (content.items) expands to one tweet per item, an ordinary entry to
// exactly one. A cursor ends the expansion with a sentinel record.
func expandGroup(group []byte) ([]Tweet, error) {
	content, dt, _, err := jsonparser.Get(group, "content")
	if err != nil {
		return nil, schemaErr("content", err)
	}
	if dt != jsonparser.Object {
		return nil, schemaErr("content", errNotObject)
	}

	if items, dt, _, err := jsonparser.Get(content, "items"); err == nil && dt == jsonparser.Array {
		return expandItems(items)
	}

	node := content
	if ic, dt, _, err := jsonparser.Get(content, "itemContent"); err == nil && dt == jsonparser.Object {
		node = ic
	}
	t, err := NormalizeNode(node)
	if err != nil {
		return nil, err
	}
	return []Tweet{t}, nil
}

func expandItems(items []byte) ([]Tweet, error) {
	var out []Tweet
	var firstErr error
	done := false
	_, err := jsonparser.ArrayEach(items, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		if done || firstErr != nil {
			return
		}
		t, err := NormalizeNode(itemNode(value))
		if err != nil {
			firstErr = err
			return
		}
		out = append(out, t)
		done = t.IsSentinel()
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, schemaErr("content.items", err)
	}
	return out, nil
}

// itemNode unwraps the module item envelope down to the node the classifier reads.
func itemNode(value []byte) []byte {
	for _, path := range [][]string{{"item", "itemContent"}, {"itemContent"}, {"item"}} {
		if n, dt, _, err := jsonparser.Get(value, path...); err == nil && dt == jsonparser.Object {
			return n
		}
	}
	return value
}

// firstAuthor is the author of the first real tweet of an expansion.
func firstAuthor(tweets []Tweet) string {
	for _, t := range tweets {
		if !t.IsSentinel() {
			return t.Author
		}
	}
	return ""
}

func endsWithSentinel(tweets []Tweet) bool {
	return len(tweets) > 0 && tweets[len(tweets)-1].IsSentinel()
}

// ResolveThread selects the tweets of a detail view that belong with the
// focal tweet. groups is the raw entries array of the first fetch.
//
// The view is flat: ancestors come before the focal group and replies after
// it. Authorship of the neighbouring groups decides whether the focal tweet
// opens a thread (take the following same-author group too) or sits inside
// one (take only its own group).
func ResolveThread(groups []byte, focalID string) ([]Tweet, error) {
	entries, err := splitEntries(groups)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, g := range entries {
		if groupID(g) == focalID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrFocalNotFound, focalID)
	}

	target, err := expandGroup(entries[idx])
	if err != nil {
		return nil, fmt.Errorf("expand focal group: %w", err)
	}
	// a truncated focal group is completed by pagination before anything else
	if endsWithSentinel(target) {
		return target, nil
	}
	author := firstAuthor(target)

	if idx > 0 {
		prev, err := expandGroup(entries[idx-1])
		if err != nil {
			return nil, fmt.Errorf("expand preceding group: %w", err)
		}
		if firstAuthor(prev) == author {
			return target, nil
		}
	}

	next, err := successor(entries, idx)
	if err != nil {
		return nil, err
	}
	if len(next) > 0 && firstAuthor(next) == author {
		target = append(target, next...)
	}
	return target, nil
}

// successor expands the group after idx, skipping continuation markers that
// carry no tweets of their own.
func successor(entries [][]byte, idx int) ([]Tweet, error) {
	if idx+1 >= len(entries) {
		return nil, nil
	}
	next, err := expandGroup(entries[idx+1])
	if err != nil {
		return nil, fmt.Errorf("expand following group: %w", err)
	}
	if len(next) == 0 || next[0].IsSentinel() {
		return nil, nil
	}
	return next, nil
}
