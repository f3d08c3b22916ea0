package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	twitter "github.com/anatolykoptev/go-twitter-threads"
)

const ENV_TWITTER_PROXY = "twitter_proxy"
const ENV_TWITTER_USER_AGENT = "twitter_user_agent"
const ENV_TWITTER_PROFILE = "twitter_profile"
const ENV_PAGE_DELAY = "page_delay"                   // Go duration, e.g. "1500ms"
const ENV_MAX_PAGES = "max_pages"                     // continuation pages per thread
const ENV_GUEST_TOKEN_ATTEMPTS = "guest_token_attempts"
const ENV_LOG_LEVEL = "log_level" // debug, info, warn, error

// ProvideConfig builds the client configuration from the environment. Unset
// values are left zero so the client applies its own defaults.
func ProvideConfig() (twitter.ClientConfig, error) {
	cfg := twitter.ClientConfig{
		Proxy:     os.Getenv(ENV_TWITTER_PROXY),
		UserAgent: os.Getenv(ENV_TWITTER_USER_AGENT),
	}

	var err error
	if cfg.Profile, err = envInt(ENV_TWITTER_PROFILE); err != nil {
		return cfg, err
	}
	if cfg.MaxPages, err = envInt(ENV_MAX_PAGES); err != nil {
		return cfg, err
	}
	if cfg.GuestTokenAttempts, err = envInt(ENV_GUEST_TOKEN_ATTEMPTS); err != nil {
		return cfg, err
	}
	if v := os.Getenv(ENV_PAGE_DELAY); v != "" {
		if cfg.PageDelay, err = time.ParseDuration(v); err != nil {
			return cfg, fmt.Errorf("%s: %w", ENV_PAGE_DELAY, err)
		}
	}
	if cfg.Profile < 0 || cfg.MaxPages < 0 || cfg.GuestTokenAttempts < 0 || cfg.PageDelay < 0 {
		return cfg, fmt.Errorf("negative values are not allowed in %s, %s, %s or %s",
			ENV_TWITTER_PROFILE, ENV_MAX_PAGES, ENV_GUEST_TOKEN_ATTEMPTS, ENV_PAGE_DELAY)
	}
	return cfg, nil
}

// ProvideLogger returns the stderr logger at the level named by ENV_LOG_LEVEL.
func ProvideLogger() (*slog.Logger, error) {
	var level slog.Level
	if v := os.Getenv(ENV_LOG_LEVEL); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("%s: %w", ENV_LOG_LEVEL, err)
		}
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
