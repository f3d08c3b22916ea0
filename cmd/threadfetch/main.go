package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	twitter "github.com/anatolykoptev/go-twitter-threads"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// request is one invocation decoded from the command line.
type request struct {
	Permalink   string
	Query       string
	FocalID     string
	Cursor      string
	Recommended bool
}

func main() {
	configFile := flag.String("config", ".env", "Configuration file to load (e.g., .env, .dev.env)")
	format := flag.String("format", "json", "Output format: json or yaml")
	query := flag.String("q", "", "Search query instead of a thread, e.g. \"from:user -filter:replies\"")
	focalID := flag.String("id", "", "Focal tweet ID instead of a permalink")
	cursor := flag.String("cursor", "", "Continue a thread from this cursor (requires -id)")
	recommended := flag.Bool("recommended", false, "Include recommended tweets of the detail view")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options] <permalink>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s [options] -q \"from:user -filter:replies\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s [options] -id <focal> [-cursor <cursor>]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment variables override config file values\n")
	}
	flag.Parse()

	req := request{
		Permalink:   flag.Arg(0),
		Query:       *query,
		FocalID:     *focalID,
		Cursor:      *cursor,
		Recommended: *recommended,
	}
	if err := req.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\n", err)
		flag.Usage()
		os.Exit(2)
	}
	if *format != "json" && *format != "yaml" {
		fmt.Fprintf(os.Stderr, "unknown format %q\n", *format)
		os.Exit(2)
	}

	if *configFile != "" {
		if err := godotenv.Load(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load config file %s: %v, continuing with environment variables\n", *configFile, err)
		}
	}

	container, err := BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build container: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = container.Invoke(func(client *twitter.Client, logger *slog.Logger) error {
		slog.SetDefault(logger)
		return run(ctx, client, req, *format, os.Stdout)
	})
	if err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (r request) validate() error {
	modes := 0
	for _, set := range []bool{r.Permalink != "", r.Query != "", r.FocalID != ""} {
		if set {
			modes++
		}
	}
	switch {
	case modes == 0:
		return fmt.Errorf("a permalink, -q or -id is required")
	case modes > 1:
		return fmt.Errorf("permalink, -q and -id are mutually exclusive")
	case r.Cursor != "" && r.FocalID == "":
		return fmt.Errorf("-cursor requires -id")
	}
	return nil
}

// threadClient is the part of *twitter.Client the CLI drives.
type threadClient interface {
	URLToTweets(ctx context.Context, permalink string) ([]twitter.Tweet, error)
	IDToTweets(ctx context.Context, focalID string) ([]twitter.Tweet, error)
	ContinueThread(ctx context.Context, focalID, cursor string, includeRecommended bool) ([]twitter.Tweet, error)
	RecommendedTweets(ctx context.Context, focalID string) ([]twitter.Tweet, error)
	QueryToTweets(ctx context.Context, query string) ([]twitter.Tweet, error)
}

func run(ctx context.Context, client threadClient, req request, format string, w io.Writer) error {
	callID := uuid.New().String()
	log := slog.With(slog.String("call_id", callID))
	start := time.Now()

	tweets, err := dispatch(ctx, client, req)
	if err != nil {
		log.Error("fetch failed", slog.Any("error", err), slog.Duration("elapsed", time.Since(start)))
		return err
	}
	log.Info("fetched", slog.Int("tweets", len(tweets)), slog.Duration("elapsed", time.Since(start)))

	return writeTweets(w, format, tweets)
}

func dispatch(ctx context.Context, client threadClient, req request) ([]twitter.Tweet, error) {
	switch {
	case req.Query != "":
		return client.QueryToTweets(ctx, req.Query)
	case req.FocalID != "" && req.Cursor != "":
		return client.ContinueThread(ctx, req.FocalID, req.Cursor, req.Recommended)
	case req.FocalID != "" && req.Recommended:
		return client.RecommendedTweets(ctx, req.FocalID)
	case req.FocalID != "":
		return client.IDToTweets(ctx, req.FocalID)
	case req.Recommended:
		_, id, err := twitter.ParseTweetURL(req.Permalink)
		if err != nil {
			return nil, err
		}
		return client.RecommendedTweets(ctx, id)
	default:
		return client.URLToTweets(ctx, req.Permalink)
	}
}

func writeTweets(w io.Writer, format string, tweets []twitter.Tweet) error {
	if tweets == nil {
		tweets = []twitter.Tweet{}
	}
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tweets); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(tweets); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}
