package timeline

import (
	"regexp"
	"strings"
)

var fromOperatorRe = regexp.MustCompile(`from:([A-Za-z0-9_]+)`)

// FromAuthors returns the handles named by from: operators in a search
// query, in order of first appearance.
func FromAuthors(query string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, m := range fromOperatorRe.FindAllStringSubmatch(query, -1) {
		key := strings.ToLower(m[1])
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// handleSet matches screen names case-insensitively, as the platform does.
type handleSet map[string]struct{}

func newHandleSet(handles []string) handleSet {
	s := make(handleSet, len(handles))
	for _, h := range handles {
		s[strings.ToLower(h)] = struct{}{}
	}
	return s
}

func (s handleSet) has(handle string) bool {
	_, ok := s[strings.ToLower(handle)]
	return ok
}
