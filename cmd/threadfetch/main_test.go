package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	twitter "github.com/anatolykoptev/go-twitter-threads"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeClient struct {
	calls []string
	err   error
}

func (f *fakeClient) result(call string) ([]twitter.Tweet, error) {
	f.calls = append(f.calls, call)
	if f.err != nil {
		return nil, f.err
	}
	return []twitter.Tweet{{ID: "1", Author: "alice", Text: "hi"}}, nil
}

func (f *fakeClient) URLToTweets(_ context.Context, permalink string) ([]twitter.Tweet, error) {
	return f.result("url " + permalink)
}

func (f *fakeClient) IDToTweets(_ context.Context, id string) ([]twitter.Tweet, error) {
	return f.result("id " + id)
}

func (f *fakeClient) ContinueThread(_ context.Context, id, cursor string, rec bool) ([]twitter.Tweet, error) {
	if rec {
		return f.result("continue-rec " + id + " " + cursor)
	}
	return f.result("continue " + id + " " + cursor)
}

func (f *fakeClient) RecommendedTweets(_ context.Context, id string) ([]twitter.Tweet, error) {
	return f.result("recommended " + id)
}

func (f *fakeClient) QueryToTweets(_ context.Context, q string) ([]twitter.Tweet, error) {
	return f.result("query " + q)
}

func TestRequestValidate(t *testing.T) {
	tests := []struct {
		name string
		req  request
		ok   bool
	}{
		{"permalink", request{Permalink: "https://x.com/a/status/1"}, true},
		{"query", request{Query: "from:a"}, true},
		{"id with cursor", request{FocalID: "1", Cursor: "c"}, true},
		{"nothing", request{}, false},
		{"two modes", request{Query: "from:a", FocalID: "1"}, false},
		{"cursor without id", request{Permalink: "https://x.com/a/status/1", Cursor: "c"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestDispatch(t *testing.T) {
	tests := []struct {
		req  request
		want string
	}{
		{request{Permalink: "https://x.com/a/status/7"}, "url https://x.com/a/status/7"},
		{request{Permalink: "https://x.com/a/status/7", Recommended: true}, "recommended 7"},
		{request{Query: "from:a"}, "query from:a"},
		{request{FocalID: "7"}, "id 7"},
		{request{FocalID: "7", Recommended: true}, "recommended 7"},
		{request{FocalID: "7", Cursor: "c"}, "continue 7 c"},
		{request{FocalID: "7", Cursor: "c", Recommended: true}, "continue-rec 7 c"},
	}
	for _, tt := range tests {
		f := &fakeClient{}
		_, err := dispatch(context.Background(), f, tt.req)
		require.NoError(t, err)
		assert.Equal(t, []string{tt.want}, f.calls)
	}
}

func TestDispatch_RecommendedBadPermalink(t *testing.T) {
	f := &fakeClient{}
	_, err := dispatch(context.Background(), f, request{Permalink: "nope", Recommended: true})
	require.ErrorIs(t, err, twitter.ErrInvalidURL)
	assert.Empty(t, f.calls)
}

func TestRun_Formats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), &fakeClient{}, request{FocalID: "1"}, "json", &buf))
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "alice", decoded[0]["user"])
	assert.NotContains(t, decoded[0], "extra")

	buf.Reset()
	require.NoError(t, run(context.Background(), &fakeClient{}, request{FocalID: "1"}, "yaml", &buf))
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, "hi", fromYAML[0]["text"])
}

func TestRun_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	var buf bytes.Buffer
	err := run(context.Background(), &fakeClient{err: boom}, request{Query: "x"}, "json", &buf)
	require.ErrorIs(t, err, boom)
	assert.Zero(t, buf.Len())
}

func TestWriteTweets_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTweets(&buf, "json", nil))
	assert.JSONEq(t, `[]`, buf.String())
}

func TestProvideConfig(t *testing.T) {
	t.Setenv(ENV_TWITTER_PROXY, "socks5://127.0.0.1:1080")
	t.Setenv(ENV_TWITTER_USER_AGENT, "")
	t.Setenv(ENV_TWITTER_PROFILE, "2")
	t.Setenv(ENV_PAGE_DELAY, "250ms")
	t.Setenv(ENV_MAX_PAGES, "5")
	t.Setenv(ENV_GUEST_TOKEN_ATTEMPTS, "")

	cfg, err := ProvideConfig()
	require.NoError(t, err)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.Proxy)
	assert.Equal(t, 2, cfg.Profile)
	assert.Equal(t, 250*time.Millisecond, cfg.PageDelay)
	assert.Equal(t, 5, cfg.MaxPages)
	assert.Zero(t, cfg.GuestTokenAttempts)
}

func TestProvideConfig_Invalid(t *testing.T) {
	for key, value := range map[string]string{
		ENV_MAX_PAGES:  "many",
		ENV_PAGE_DELAY: "soon",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(ENV_MAX_PAGES, "")
			t.Setenv(ENV_PAGE_DELAY, "")
			t.Setenv(key, value)
			_, err := ProvideConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}

	t.Run("negative", func(t *testing.T) {
		t.Setenv(ENV_MAX_PAGES, "-1")
		_, err := ProvideConfig()
		require.Error(t, err)
	})
}

func TestProvideLogger(t *testing.T) {
	t.Setenv(ENV_LOG_LEVEL, "debug")
	logger, err := ProvideLogger()
	require.NoError(t, err)
	assert.True(t, logger.Enabled(context.Background(), -4))

	t.Setenv(ENV_LOG_LEVEL, "loud")
	_, err = ProvideLogger()
	require.Error(t, err)
}

func TestBuildContainer(t *testing.T) {
	t.Setenv(ENV_MAX_PAGES, "")
	t.Setenv(ENV_PAGE_DELAY, "")
	container, err := BuildContainer()
	require.NoError(t, err)
	require.NoError(t, container.Invoke(func(cfg twitter.ClientConfig) {
		assert.Zero(t, cfg.MaxPages)
	}))
}
