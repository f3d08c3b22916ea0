package twitter

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
)

var threadInstructionsPath = []string{"data", "threaded_conversation_with_injections_v2", "instructions"}

// parseThreadEntries extracts the entries array from a TweetDetail response.
// The first page carries it in a TimelineAddEntries instruction; cursor pages
// answer with a TimelineAddToModule instruction holding moduleItems.
func parseThreadEntries(body []byte) ([]byte, error) {
	instructions, dt, _, err := jsonparser.Get(body, threadInstructionsPath...)
	if err != nil || dt != jsonparser.Array {
		if msg := apiErrorMessage(body); msg != "" {
			return nil, fmt.Errorf("no thread instructions: %s", msg)
		}
		return nil, errors.New("no thread instructions in response")
	}

	var entries []byte
	_, err = jsonparser.ArrayEach(instructions, func(inst []byte, _ jsonparser.ValueType, _ int, _ error) {
		if entries != nil {
			return
		}
		for _, key := range []string{"entries", "moduleItems"} {
			v, t, _, e := jsonparser.Get(inst, key)
			if e == nil && t == jsonparser.Array {
				entries = v
				return
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("walk thread instructions: %w", err)
	}
	if entries == nil {
		return []byte("[]"), nil
	}
	return entries, nil
}
