// Package encoder turns the operator's raw text into a structured request
// payload for the selected algorithm.
//
// ENCODING RULES:
// The rule is picked by the algorithm's InputShape, never by looking at the
// text itself:
//
//	array        "5,2,8,1"          → ArrayPayload{Values: [5 2 8 1]}
//	arraySearch  "1,2,3,4\n3"       → SearchPayload{Array: [1 2 3 4], Target: 3}
//
// PURE FUNCTION:
// Encode has no state. The same arguments always give a structurally
// identical payload, so it can be called from the UI on every keystroke for
// live validation without side effects.
//
// STRICT PARSING:
// Every comma-separated token must be a base-10 integer after trimming. One
// bad token rejects the whole input — we never send a placeholder value in
// place of something we could not parse.
package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sakif/algotest/internal/apperror"
	"github.com/sakif/algotest/internal/model"
)

// Encode validates raw against the algorithm's input shape and builds the
// payload. All failures are *apperror.AppError wrapping apperror.ErrValidation.
func Encode(alg *model.Algorithm, raw string) (model.Payload, error) {
	if alg == nil || strings.TrimSpace(raw) == "" {
		return nil, apperror.ValidationFailed("input", apperror.MsgMissingSelectionOrInput)
	}

	switch shape := alg.Shape(); shape {
	case model.ShapeArray:
		values, err := parseList(raw)
		if err != nil {
			return nil, err
		}
		return model.ArrayPayload{AlgorithmID: alg.ID, Values: values}, nil

	case model.ShapeArraySearch:
		return encodeSearch(alg.ID, raw)

	default:
		return nil, apperror.ValidationFailed("inputShape",
			fmt.Sprintf("unsupported input shape %q for %s", shape, alg.Name))
	}
}

// encodeSearch reads the list from the first non-blank line and the target
// from the second. Anything after the second line is ignored.
func encodeSearch(algorithmID int, raw string) (model.Payload, error) {
	lines := make([]string, 0, 2)
	for _, line := range strings.Split(raw, "\n") {
		// TrimSpace also drops the '\r' of Windows line endings.
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		return nil, apperror.ValidationFailed("input", apperror.MsgInsufficientLines)
	}

	array, err := parseList(lines[0])
	if err != nil {
		return nil, err
	}

	target, err := strconv.Atoi(lines[1])
	if err != nil {
		return nil, apperror.ValidationFailed("target",
			fmt.Sprintf("invalid target %q: must be a single integer", lines[1]))
	}

	return model.SearchPayload{AlgorithmID: algorithmID, Array: array, Target: target}, nil
}

// parseList parses "5, 2 ,8" into [5 2 8]. Positions in error messages are
// 1-based, the way an operator counts.
func parseList(s string) ([]int, error) {
	tokens := strings.Split(s, ",")
	values := make([]int, 0, len(tokens))

	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		n, err := strconv.Atoi(tok)
		if err != nil {
			if tok == "" {
				return nil, apperror.ValidationFailed("input",
					fmt.Sprintf("empty value at position %d", i+1))
			}
			return nil, apperror.ValidationFailed("input",
				fmt.Sprintf("invalid integer %q at position %d", tok, i+1))
		}
		values = append(values, n)
	}

	return values, nil
}
