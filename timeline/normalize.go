package timeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/buger/jsonparser"
)

const (
	tombstoneSuffix      = "Learn more"
	defaultTombstoneText = "This Tweet is unavailable."
)

// NormalizeNode classifies raw and converts it into a Tweet.
func NormalizeNode(raw []byte) (Tweet, error) {
	n, err := Classify(raw)
	if err != nil {
		return Tweet{}, err
	}
	return Normalize(n)
}

// Normalize converts a classified node into a Tweet. Tombstones become
// placeholders and cursors become sentinel records; neither is an error.
func Normalize(n Node) (Tweet, error) {
	switch n.Kind {
	case KindTweet:
		return normalizeTweet(n.Raw)
	case KindTombstone:
		return tombstone(n.Raw), nil
	case KindCursor:
		return sentinel(n.Cursor), nil
	}
	return Tweet{}, fmt.Errorf("normalize: node of kind %s", n.Kind)
}

func tombstone(raw []byte) Tweet {
	text, err := jsonparser.GetString(raw, "tombstone", "text", "text")
	if err != nil || text == "" {
		text = defaultTombstoneText
	}
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), tombstoneSuffix))
	return Tweet{Author: TombstoneAuthor, Text: text}
}

func normalizeTweet(raw []byte) (Tweet, error) {
	legacy, dt, _, err := jsonparser.Get(raw, "legacy")
	if err != nil {
		return Tweet{}, schemaErr("legacy", err)
	}
	if dt != jsonparser.Object {
		return Tweet{}, schemaErr("legacy", errNotObject)
	}

	var t Tweet
	if t.ID, err = firstString(raw, []string{"rest_id"}, []string{"legacy", "id_str"}); err != nil {
		return Tweet{}, schemaErr("rest_id", err)
	}
	if t.Author, err = firstString(raw,
		[]string{"core", "user_results", "result", "legacy", "screen_name"},
		[]string{"core", "user_results", "result", "core", "screen_name"},
	); err != nil {
		return Tweet{}, schemaErr("core.user_results.result.legacy.screen_name", err)
	}

	// long-form posts keep the untruncated body in note_tweet
	if note, err := jsonparser.GetString(raw, "note_tweet", "note_tweet_results", "result", "text"); err == nil && note != "" {
		t.Text = note
	} else if t.Text, err = jsonparser.GetString(legacy, "full_text"); err != nil {
		return Tweet{}, schemaErr("legacy.full_text", err)
	}

	if t.ThreadID, err = optionalString(legacy, "self_thread", "id_str"); err != nil {
		return Tweet{}, schemaErr("legacy.self_thread.id_str", err)
	}
	if t.Media, err = ExtractMedia(legacy); err != nil {
		return Tweet{}, err
	}
	if t.URLs, err = ExtractURLs(legacy); err != nil {
		return Tweet{}, err
	}

	quote, err := normalizeQuote(raw)
	if err != nil {
		return Tweet{}, err
	}
	t.Quote = quote
	return t, nil
}

func normalizeQuote(raw []byte) (*Tweet, error) {
	q, dt, _, err := jsonparser.Get(raw, "quoted_status_result")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, schemaErr("quoted_status_result", err)
	}
	if dt != jsonparser.Object {
		return nil, schemaErr("quoted_status_result", errNotObject)
	}
	// the platform sends an empty object when the quoted tweet was deleted
	if isEmptyObject(q) {
		return nil, nil
	}

	n, err := Classify(q)
	if err != nil {
		return nil, fmt.Errorf("quoted_status_result: %w", err)
	}
	if n.Kind == KindCursor {
		return nil, schemaErr("quoted_status_result", errors.New("cursor in quote position"))
	}
	quote, err := Normalize(n)
	if err != nil {
		return nil, fmt.Errorf("quoted_status_result: %w", err)
	}
	return &quote, nil
}

func firstString(data []byte, paths ...[]string) (string, error) {
	var lastErr error
	for _, p := range paths {
		s, err := jsonparser.GetString(data, p...)
		if err == nil {
			return s, nil
		}
		lastErr = err
	}
	return "", lastErr
}

// optionalString returns "" for a missing key but an error for a present
// value of the wrong type.
func optionalString(data []byte, keys ...string) (string, error) {
	_, _, _, err := jsonparser.Get(data, keys...)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return "", nil
	}
	return jsonparser.GetString(data, keys...)
}

func isEmptyObject(obj []byte) bool {
	empty := true
	_ = jsonparser.ObjectEach(obj, func(_, _ []byte, _ jsonparser.ValueType, _ int) error {
		empty = false
		return nil
	})
	return empty
}
