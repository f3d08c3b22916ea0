package timeline

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

// ExtractMedia reads the media entities of a tweet's legacy object.
// extended_entities is preferred since entities.media only lists the first item.
// Returns nil when the tweet carries no media.
func ExtractMedia(legacy []byte) ([]MediaItem, error) {
	list, dt, _, err := jsonparser.Get(legacy, "extended_entities", "media")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		list, dt, _, err = jsonparser.Get(legacy, "entities", "media")
	}
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, schemaErr("media", err)
	}
	if dt != jsonparser.Array {
		return nil, schemaErr("media", errNotArray)
	}

	var items []MediaItem
	var firstErr error
	_, err = jsonparser.ArrayEach(list, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		if firstErr != nil {
			return
		}
		item, err := parseMediaItem(value)
		if err != nil {
			firstErr = err
			return
		}
		items = append(items, item)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, schemaErr("media", err)
	}
	return items, nil
}

func parseMediaItem(value []byte) (MediaItem, error) {
	shortURL, err := jsonparser.GetString(value, "url")
	if err != nil {
		return MediaItem{}, schemaErr("media.url", err)
	}
	fullURL, err := jsonparser.GetString(value, "media_url_https")
	if err != nil {
		return MediaItem{}, schemaErr("media.media_url_https", err)
	}
	kind, err := jsonparser.GetString(value, "type")
	if err != nil {
		return MediaItem{}, schemaErr("media.type", err)
	}

	item := MediaItem{ShortURL: shortURL, FullURL: fullURL, Kind: MediaKind(kind)}
	switch item.Kind {
	case MediaPhoto:
	case MediaVideo:
		item.VideoURL, err = highestBitrateURL(value)
		if err != nil {
			return MediaItem{}, err
		}
	case MediaAnimatedGIF:
		// gifs carry exactly one variant
		item.VideoURL, err = jsonparser.GetString(value, "video_info", "variants", "[0]", "url")
		if err != nil {
			return MediaItem{}, schemaErr("media.video_info.variants[0].url", err)
		}
	default:
		return MediaItem{}, schemaErr("media.type", fmt.Errorf("unknown media kind %q", kind))
	}
	return item, nil
}

// highestBitrateURL picks the variant with the largest bitrate. Variants
// without a bitrate (HLS playlists) count as 0; ties keep the first seen.
func highestBitrateURL(media []byte) (string, error) {
	variants, dt, _, err := jsonparser.Get(media, "video_info", "variants")
	if err != nil {
		return "", schemaErr("media.video_info.variants", err)
	}
	if dt != jsonparser.Array {
		return "", schemaErr("media.video_info.variants", errNotArray)
	}

	best := int64(-1)
	bestURL := ""
	var firstErr error
	_, err = jsonparser.ArrayEach(variants, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		if firstErr != nil {
			return
		}
		u, err := jsonparser.GetString(value, "url")
		if err != nil {
			firstErr = schemaErr("media.video_info.variants.url", err)
			return
		}
		bitrate, err := jsonparser.GetInt(value, "bitrate")
		if err != nil {
			bitrate = 0
		}
		if bitrate > best {
			best = bitrate
			bestURL = u
		}
	})
	if firstErr != nil {
		return "", firstErr
	}
	if err != nil {
		return "", schemaErr("media.video_info.variants", err)
	}
	if best < 0 {
		return "", schemaErr("media.video_info.variants", errors.New("no variants"))
	}
	return bestURL, nil
}

// ExtractURLs reads entities.urls. An absent or empty list yields nil.
func ExtractURLs(legacy []byte) ([]URLItem, error) {
	list, dt, _, err := jsonparser.Get(legacy, "entities", "urls")
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, schemaErr("entities.urls", err)
	}
	if dt != jsonparser.Array {
		return nil, schemaErr("entities.urls", errNotArray)
	}

	var urls []URLItem
	var firstErr error
	_, err = jsonparser.ArrayEach(list, func(value []byte, _ jsonparser.ValueType, _ int, _ error) {
		if firstErr != nil {
			return
		}
		short, err := jsonparser.GetString(value, "url")
		if err != nil {
			firstErr = schemaErr("entities.urls.url", err)
			return
		}
		full, err := jsonparser.GetString(value, "expanded_url")
		if err != nil {
			firstErr = schemaErr("entities.urls.expanded_url", err)
			return
		}
		urls = append(urls, URLItem{ShortURL: short, FullURL: full})
	})
	if firstErr != nil {
		return nil, firstErr
	}
	if err != nil {
		return nil, schemaErr("entities.urls", err)
	}
	return urls, nil
}
