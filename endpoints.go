package twitter

import (
	"encoding/json"
	"fmt"
	"net/url"
)

const (
	twitterBase   = "https://x.com/i/api/graphql"
	twitterAPIURL = "https://api.twitter.com"

	opTweetDetail    = "TweetDetail"
	opSearchAdaptive = "SearchAdaptive"
)

// bearerTokens is the list of known Twitter web-app bearer tokens.
var bearerTokens = []string{
	"AAAAAAAAAAAAAAAAAAAAANRILgAAAAAAnNwIzUejRCOuH5E6I8xnZz4puTs%3D1Zv7ttfk8LF81IUq16cHjhLTvJu4FA33AGWWjCpTnA",
	"AAAAAAAAAAAAAAAAAAAAAFQODgEAAAAAVHTp76lzh3rFzcHbmHVvQxYYpTw%3DckAlMINMjmCwxUcaXbAN4XqJVdgMJaHqNOFgPMK0zN1qLqLQCF",
}

// BearerToken is the active bearer token (first in list).
var BearerToken = bearerTokens[0]

// Endpoint holds the operation ID, name, and per-operation feature flags.
type Endpoint struct {
	ID       string
	Name     string
	Features map[string]any
}

// URL returns the full URL for this endpoint.
func (e Endpoint) URL() string {
	return fmt.Sprintf("%s/%s/%s", twitterBase, e.ID, e.Name)
}

// Endpoints maps GraphQL operation names to their current IDs and feature flags.
var Endpoints = map[string]Endpoint{
	opTweetDetail: {ID: "_8aYOgEDz35BrBcBal1-_w", Name: opTweetDetail, Features: gqlFeatures()},
}

// searchAdaptiveURL is the v2 search endpoint that still answers guest tokens
// with the flat globalObjects payload.
const searchAdaptiveURL = twitterAPIURL + "/2/search/adaptive.json"

// searchParams returns the query string of an adaptive search. Only the
// fields the assembler reads are switched on.
func searchParams(query string) url.Values {
	return url.Values{
		"q":                     {query},
		"tweet_search_mode":     {"live"},
		"query_source":          {"typed_query"},
		"count":                 {"20"},
		"tweet_mode":            {"extended"},
		"include_entities":      {"true"},
		"include_user_entities": {"false"},
		"include_quote_count":   {"false"},
		"include_reply_count":   {"0"},
		"simple_quoted_tweet":   {"true"},
		"cards_platform":        {"Web-12"},
		"include_cards":         {"0"},
		"send_error_codes":      {"true"},
		"spelling_corrections":  {"0"},
		"pc":                    {"0"},
	}
}

// addGraphQLParams builds the full URL with variables, features and optional
// fieldToggles, each JSON-encoded into its own query parameter.
func addGraphQLParams(base string, variables, features, fieldToggles map[string]any) (string, error) {
	q := url.Values{}
	for name, v := range map[string]map[string]any{
		"variables":    variables,
		"features":     features,
		"fieldToggles": fieldToggles,
	} {
		if v == nil {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode %s: %w", name, err)
		}
		q.Set(name, string(b))
	}
	return base + "?" + q.Encode(), nil
}

// gqlFeatures returns the Twitter GraphQL feature flags TweetDetail expects.
func gqlFeatures() map[string]any {
	return map[string]any{
		"articles_preview_enabled":                                                true,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"longform_notetweets_consumption_enabled":                                 true,
		"longform_notetweets_inline_media_enabled":                                true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"rweb_tipjar_consumption_enabled":                                         true,
		"rweb_video_timestamps_enabled":                                           true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"verified_phone_label_enabled":                                            false,
		"view_counts_everywhere_api_enabled":                                      true,
	}
}
