package timeline

import (
	"errors"

	"github.com/buger/jsonparser"
)

// Kind is the shape of a classified timeline node.
type Kind int

const (
	KindUnknown Kind = iota
	KindTweet
	KindTombstone
	KindCursor
)

func (k Kind) String() string {
	switch k {
	case KindTweet:
		return "tweet"
	case KindTombstone:
		return "tombstone"
	case KindCursor:
		return "cursor"
	}
	return "unknown"
}

const (
	typeTweet           = "Tweet"
	typeTweetVisibility = "TweetWithVisibilityResults"
	typeTombstone       = "TweetTombstone"
	typeCursor          = "TimelineTimelineCursor"
)

// Node is a classified timeline node. Raw points at the object the shape's
// fields are read from: the tweet itself for KindTweet (visibility wrappers
// already removed), the tombstone object for KindTombstone.
type Node struct {
	Kind       Kind
	Raw        []byte
	Cursor     string
	CursorType string
}

// The platform fills different discriminant fields depending on where the node
// sits, so they are tried in this order.
var discriminants = []string{"__typename", "itemType", "entryType"}

// Classify determines the shape of one raw timeline node or nested result.
func Classify(raw []byte) (Node, error) {
	node := resultSubtree(raw)
	tag := typeTag(node)

	switch tag {
	case typeTweet:
		return Node{Kind: KindTweet, Raw: node}, nil

	case typeTweetVisibility:
		inner, dt, _, err := jsonparser.Get(node, "tweet")
		if err != nil {
			return Node{}, schemaErr("tweet", err)
		}
		if dt != jsonparser.Object {
			return Node{}, schemaErr("tweet", errNotObject)
		}
		return Node{Kind: KindTweet, Raw: inner}, nil

	case typeTombstone:
		return Node{Kind: KindTombstone, Raw: node}, nil

	case typeCursor:
		value, err := jsonparser.GetString(node, "value")
		if err != nil {
			return Node{}, schemaErr("value", err)
		}
		cursorType, _ := jsonparser.GetString(node, "cursorType")
		return Node{Kind: KindCursor, Raw: node, Cursor: value, CursorType: cursorType}, nil
	}

	return Node{}, &ClassificationError{Tag: tag}
}

func resultSubtree(raw []byte) []byte {
	if v, dt, _, err := jsonparser.Get(raw, "tweet_results", "result"); err == nil && dt == jsonparser.Object {
		return v
	}
	if v, dt, _, err := jsonparser.Get(raw, "result"); err == nil && dt == jsonparser.Object {
		return v
	}
	return raw
}

func typeTag(node []byte) string {
	for _, field := range discriminants {
		if tag, err := jsonparser.GetString(node, field); err == nil && tag != "" {
			return tag
		}
	}
	return ""
}

var (
	errNotObject = errors.New("not an object")
	errNotArray  = errors.New("not an array")
)
