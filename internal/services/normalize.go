package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/truevow/truevow/internal/catalog"
)

// NormalizeResponse converts a selected option into the numeric value a
// question earns.
//
//   - Multiple choice: (option index) + 1, so later options carry more weight
//     without per-option point tables. Matching is by position, not label, to
//     stay resilient to minor label edits.
//   - Declaration: the antithesis option earns 0, any other listed option
//     earns the full question weight.
//   - Input: never scored; always 0.
//
// An option missing from the question's catalog entry is an invalid response;
// the caller decides whether to skip (recalculation) or reject (submission).
func NormalizeResponse(q *catalog.Question, selectedOption string) (int, error) {
	if q == nil {
		return 0, NewInvalidResponseError("response references unknown question")
	}
	switch q.Type {
	case catalog.TypeInput:
		return 0, nil
	case catalog.TypeDeclaration:
		if strings.TrimSpace(selectedOption) == catalog.AntithesisMarker {
			return 0, nil
		}
		if q.OptionIndex(selectedOption) < 0 {
			return 0, NewInvalidResponseError(fmt.Sprintf("question %d: option %q not in catalog", q.ID, selectedOption))
		}
		return q.Weight, nil
	case catalog.TypeMultipleChoice:
		idx := q.OptionIndex(selectedOption)
		if idx < 0 {
			return 0, NewInvalidResponseError(fmt.Sprintf("question %d: option %q not in catalog", q.ID, selectedOption))
		}
		return idx + 1, nil
	default:
		return 0, NewInvalidResponseError(fmt.Sprintf("question %d: unscorable type %q", q.ID, q.Type))
	}
}

// ParseQuestionKey accepts the historical response-key shapes ("12", "Q12",
// or a bare number serialized as a string) and returns the numeric question
// id. Shape normalization happens here, at the boundary, so the engine never
// branches on key format.
func ParseQuestionKey(key string) (int, error) {
	k := strings.TrimSpace(key)
	k = strings.TrimPrefix(strings.TrimPrefix(k, "Q"), "q")
	id, err := strconv.Atoi(k)
	if err != nil || id <= 0 {
		return 0, NewInvalidResponseError(fmt.Sprintf("malformed question key %q", key))
	}
	return id, nil
}

// NormalizeGender lowercases and trims a declared gender for profile lookup.
func NormalizeGender(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}
