package timeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/buger/jsonparser"
)

// createdAtLayout is the timestamp format of v1.1 tweet objects.
const createdAtLayout = time.RubyDate

var searchEntryPrefixes = []string{"sq-I-t-", "tweet-"}

// searchRecord is one normalized entry of the search tweet map.
type searchRecord struct {
	tweet       Tweet
	quotedID    string
	retweetedID string
}

// Search runs query and assembles its result feed.
func (r *Reconstructor) Search(ctx context.Context, query string) ([]Tweet, error) {
	raw, err := r.fetcher.FetchSearch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("fetch search %q: %w", query, err)
	}
	tweets, err := AssembleSearch(raw, query)
	if err != nil {
		return nil, fmt.Errorf("assemble search %q: %w", query, err)
	}
	return tweets, nil
}

// AssembleSearch builds the ordered result list of a search response.
//
// Retweets are folded into their originals, quoted tweets are attached to the
// tweets quoting them, and quoted tweets that only appear because someone
// quoted them are dropped unless the query asked for their author.
func AssembleSearch(raw []byte, query string) ([]Tweet, error) {
	users, err := searchUsers(raw)
	if err != nil {
		return nil, err
	}
	if users == nil {
		return []Tweet{}, nil
	}

	records, err := searchRecords(raw, users)
	if err != nil {
		return nil, err
	}
	order, err := canonicalIDs(raw)
	if err != nil {
		return nil, err
	}

	out := make([]Tweet, 0, len(order))
	index := make(map[string]int, len(order))

	for _, id := range order {
		rec, ok := records[id]
		if !ok {
			slog.Debug("search: timeline entry without tweet object", slog.String("id", id))
			continue
		}

		if rec.retweetedID != "" {
			retweeter := rec.tweet.Author
			if i, ok := index[rec.retweetedID]; ok {
				out[i].Extra.RetweetedBy = appendUnique(out[i].Extra.RetweetedBy, retweeter)
				continue
			}
			orig, ok := records[rec.retweetedID]
			if !ok {
				slog.Debug("search: retweeted original missing", slog.String("id", id), slog.String("original", rec.retweetedID))
				continue
			}
			rec = orig
			rec.tweet = orig.tweet.clone()
			rec.tweet.Extra.RetweetedBy = []string{retweeter}
		} else {
			if _, ok := index[id]; ok {
				continue
			}
			rec.tweet = rec.tweet.clone()
		}

		if rec.quotedID != "" {
			rec.tweet.Quote = resolveQuote(records, rec.quotedID, map[string]bool{rec.tweet.ID: true})
		}
		index[rec.tweet.ID] = len(out)
		out = append(out, rec.tweet)
	}

	return elideQuoted(out, newHandleSet(FromAuthors(query))), nil
}

// resolveQuote copies the quoted record, following its own quote forward.
func resolveQuote(records map[string]searchRecord, id string, visiting map[string]bool) *Tweet {
	if visiting[id] {
		return nil
	}
	rec, ok := records[id]
	if !ok {
		slog.Debug("search: quoted tweet missing", slog.String("id", id))
		return nil
	}
	q := rec.tweet.clone()
	if rec.quotedID != "" {
		visiting[id] = true
		q.Quote = resolveQuote(records, rec.quotedID, visiting)
	}
	return &q
}

// elideQuoted drops tweets that are the quote of another result, unless the
// query named their author or they are in the feed as a retweet.
func elideQuoted(tweets []Tweet, fromAuthors handleSet) []Tweet {
	quoted := make(map[string]struct{})
	for _, t := range tweets {
		if t.Quote != nil && !fromAuthors.has(t.Quote.Author) {
			quoted[t.Quote.ID] = struct{}{}
		}
	}
	if len(quoted) == 0 {
		return tweets
	}

	out := tweets[:0]
	for _, t := range tweets {
		if _, ok := quoted[t.ID]; ok && !isRetweeted(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isRetweeted(t Tweet) bool {
	return t.Extra != nil && len(t.Extra.RetweetedBy) > 0
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

// searchUsers maps user id to screen name. A nil map means the response
// carried no user objects at all.
func searchUsers(raw []byte) (map[string]string, error) {
	obj, _, _, err := jsonparser.Get(raw, "globalObjects", "users")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, schemaErr("globalObjects.users", err)
	}

	users := make(map[string]string)
	err = jsonparser.ObjectEach(obj, func(_, value []byte, _ jsonparser.ValueType, _ int) error {
		id, err := jsonparser.GetString(value, "id_str")
		if err != nil {
			return schemaErr("globalObjects.users.id_str", err)
		}
		name, err := jsonparser.GetString(value, "screen_name")
		if err != nil {
			return schemaErr("globalObjects.users.screen_name", err)
		}
		users[id] = name
		return nil
	})
	if err != nil {
		return nil, wrapSchema("globalObjects.users", err)
	}
	return users, nil
}

func searchRecords(raw []byte, users map[string]string) (map[string]searchRecord, error) {
	records := make(map[string]searchRecord)
	obj, _, _, err := jsonparser.Get(raw, "globalObjects", "tweets")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return records, nil
	}
	if err != nil {
		return nil, schemaErr("globalObjects.tweets", err)
	}

	err = jsonparser.ObjectEach(obj, func(_, value []byte, _ jsonparser.ValueType, _ int) error {
		rec, err := normalizeSearchTweet(value, users)
		if err != nil {
			return err
		}
		records[rec.tweet.ID] = rec
		return nil
	})
	if err != nil {
		return nil, wrapSchema("globalObjects.tweets", err)
	}
	return records, nil
}

// normalizeSearchTweet reads a v1.1 tweet object. Unlike the GraphQL shape it
// names its author by id only.
func normalizeSearchTweet(value []byte, users map[string]string) (searchRecord, error) {
	var rec searchRecord
	t := &rec.tweet

	var err error
	if t.ID, err = jsonparser.GetString(value, "id_str"); err != nil {
		return rec, schemaErr("id_str", err)
	}
	userID, err := jsonparser.GetString(value, "user_id_str")
	if err != nil {
		return rec, schemaErr("user_id_str", err)
	}
	author, ok := users[userID]
	if !ok {
		return rec, schemaErr("user_id_str", fmt.Errorf("unknown user %s", userID))
	}
	t.Author = author

	if t.Text, err = jsonparser.GetString(value, "full_text"); err != nil {
		return rec, schemaErr("full_text", err)
	}
	if t.ThreadID, err = optionalString(value, "self_thread", "id_str"); err != nil {
		return rec, schemaErr("self_thread.id_str", err)
	}
	if t.Media, err = ExtractMedia(value); err != nil {
		return rec, err
	}
	if t.URLs, err = ExtractURLs(value); err != nil {
		return rec, err
	}

	created, err := jsonparser.GetString(value, "created_at")
	if err != nil {
		return rec, schemaErr("created_at", err)
	}
	createdAt, err := time.Parse(createdAtLayout, created)
	if err != nil {
		return rec, schemaErr("created_at", err)
	}
	faves, err := jsonparser.GetInt(value, "favorite_count")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return rec, schemaErr("favorite_count", err)
	}
	t.Extra = &Extra{CreatedAt: createdAt, Favorites: int(faves)}

	if rec.quotedID, err = optionalString(value, "quoted_status_id_str"); err != nil {
		return rec, schemaErr("quoted_status_id_str", err)
	}
	if rec.retweetedID, err = optionalString(value, "retweeted_status_id_str"); err != nil {
		return rec, schemaErr("retweeted_status_id_str", err)
	}
	return rec, nil
}

// canonicalIDs lists the tweet ids of the search timeline in display order.
// Tweets outside this list are only reachable as quote or retweet targets.
func canonicalIDs(raw []byte) ([]string, error) {
	instructions, _, _, err := jsonparser.Get(raw, "timeline", "instructions")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, schemaErr("timeline.instructions", err)
	}

	var ids []string
	_, err = jsonparser.ArrayEach(instructions, func(instr []byte, _ jsonparser.ValueType, _ int, _ error) {
		_, _ = jsonparser.ArrayEach(instr, func(entry []byte, _ jsonparser.ValueType, _ int, _ error) {
			entryID, err := jsonparser.GetString(entry, "entryId")
			if err != nil {
				return
			}
			for _, p := range searchEntryPrefixes {
				if id, ok := strings.CutPrefix(entryID, p); ok {
					ids = append(ids, id)
					return
				}
			}
		}, "addEntries", "entries")
	})
	if err != nil {
		return nil, schemaErr("timeline.instructions", err)
	}
	return ids, nil
}

// wrapSchema keeps SchemaErrors raised inside callbacks intact and wraps
// parser failures.
func wrapSchema(path string, err error) error {
	var se *SchemaError
	if errors.As(err, &se) {
		return err
	}
	return schemaErr(path, err)
}
