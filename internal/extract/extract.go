// Package extract recovers a structured decision from raw model output.
//
// Models instructed to emit strict JSON still wrap it in commentary,
// markdown fences, or malformed syntax often enough that a single
// json.Unmarshal is not acceptable. Extraction runs a fixed cascade of
// strategies from strict to permissive and stops at the first success.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/aegisops/aegis/internal/model"
)

// ErrUnparsable is returned when every extraction strategy fails.
var ErrUnparsable = errors.New("unable to parse model response as JSON")

var (
	codeBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

	analysisRe    = regexp.MustCompile(`"analysis"\s*:\s*"([^"]+)"`)
	actionRe      = regexp.MustCompile(`"recommended_action"\s*:\s*"([^"]+)"`)
	confidenceRe  = regexp.MustCompile(`"confidence_score"\s*:\s*(\d+)`)
	explanationRe = regexp.MustCompile(`"explanation"\s*:\s*"([^"]+)"`)
)

// rawDecision mirrors the wire format with a lenient confidence field:
// some models quote the number.
type rawDecision struct {
	Analysis          *string         `json:"analysis"`
	RecommendedAction *string         `json:"recommended_action"`
	ConfidenceScore   json.RawMessage `json:"confidence_score"`
	Explanation       *string         `json:"explanation"`
}

// Decision extracts a decision from raw model output.
//
// Strategies, in order:
//  1. direct JSON parse of the trimmed input
//  2. first fenced code block containing a JSON object
//  3. substring between the first '{' and the last '}'
//  4. JSON repair of that substring
//  5. field-by-field regex extraction
//
// All strategies failing returns ErrUnparsable. The function is pure:
// identical input yields identical output.
func Decision(raw string) (model.Decision, error) {
	// Strategy 1: direct parse
	if d, err := decodeObject(strings.TrimSpace(raw)); err == nil {
		return d, nil
	}

	// Strategy 2: fenced code block
	if m := codeBlockRe.FindStringSubmatch(raw); m != nil {
		if d, err := decodeObject(m[1]); err == nil {
			return d, nil
		}
	}

	// Strategy 3: object boundaries
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		candidate := raw[start : end+1]
		if d, err := decodeObject(candidate); err == nil {
			return d, nil
		}

		// Strategy 4: repair the boundary substring
		if repaired, err := jsonrepair.JSONRepair(candidate); err == nil {
			if d, err := decodeObject(repaired); err == nil {
				return d, nil
			}
		}
	}

	// Strategy 5: regex field extraction
	if d, err := extractFields(raw); err == nil {
		return d, nil
	}

	return model.Decision{}, ErrUnparsable
}

// decodeObject parses one JSON object and validates that all four fields
// are present. The recommended action is kept as-is even when unknown;
// the policy validator handles invalid actions.
func decodeObject(s string) (model.Decision, error) {
	var rd rawDecision
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&rd); err != nil {
		return model.Decision{}, err
	}

	if rd.Analysis == nil || rd.RecommendedAction == nil || rd.ConfidenceScore == nil || rd.Explanation == nil {
		return model.Decision{}, fmt.Errorf("missing required field")
	}

	confidence, err := coerceConfidence(rd.ConfidenceScore)
	if err != nil {
		return model.Decision{}, err
	}

	return model.Decision{
		Analysis:          *rd.Analysis,
		RecommendedAction: model.Action(*rd.RecommendedAction),
		ConfidenceScore:   confidence,
		Explanation:       *rd.Explanation,
	}, nil
}

// coerceConfidence accepts either a JSON number or a quoted integer.
func coerceConfidence(raw json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.Atoi(strings.TrimSpace(s))
	}
	return 0, fmt.Errorf("confidence_score is neither integer nor string: %s", raw)
}

// extractFields pulls each field out independently. All four must match.
func extractFields(text string) (model.Decision, error) {
	analysis := analysisRe.FindStringSubmatch(text)
	action := actionRe.FindStringSubmatch(text)
	confidence := confidenceRe.FindStringSubmatch(text)
	explanation := explanationRe.FindStringSubmatch(text)

	if analysis == nil || action == nil || confidence == nil || explanation == nil {
		return model.Decision{}, fmt.Errorf("could not extract required fields")
	}

	n, err := strconv.Atoi(confidence[1])
	if err != nil {
		return model.Decision{}, fmt.Errorf("invalid confidence_score %q: %w", confidence[1], err)
	}

	return model.Decision{
		Analysis:          analysis[1],
		RecommendedAction: model.Action(action[1]),
		ConfidenceScore:   n,
		Explanation:       explanation[1],
	}, nil
}
