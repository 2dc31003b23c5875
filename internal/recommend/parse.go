package recommend

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/abhisek/examprep/internal/llm"
)

var (
	jsonFence    = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	genericFence = regexp.MustCompile("(?s)```\\s*(.*?)\\s*```")
)

// replySchema gates what the model sent before it is shown.
var replySchema = &llm.Schema{
	Name: "recommendations",
	Definition: map[string]any{
		"type":     "array",
		"minItems": 1,
		"items": map[string]any{
			"type":     "object",
			"required": []string{"title", "description", "priority"},
			"properties": map[string]any{
				"title":           map[string]any{"type": "string", "minLength": 1},
				"description":     map[string]any{"type": "string", "minLength": 1},
				"priority":        map[string]any{"type": "string", "minLength": 1},
				"actionable":      map[string]any{"type": "string"},
				"estimatedImpact": map[string]any{"type": "string"},
			},
		},
	},
}

// candidates lists the ways a reply may carry the array, most literal
// first.
func candidates(text string) []string {
	text = strings.TrimSpace(text)
	out := []string{text}
	if m := jsonFence.FindStringSubmatch(text); m != nil {
		out = append(out, m[1])
	}
	if m := genericFence.FindStringSubmatch(text); m != nil {
		out = append(out, m[1])
	}
	return append(out, embeddedArrays(text)...)
}

// embeddedArrays returns each JSON array of objects that appears in
// text, in order. Every '[' is tried as the start of a value and the
// decoder decides where that value ends, so brackets in surrounding prose
// or in a later array do not widen the match.
func embeddedArrays(text string) []string {
	var out []string
	for i := 0; i < len(text); {
		j := strings.IndexByte(text[i:], '[')
		if j < 0 {
			break
		}
		start := i + j
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		var items []json.RawMessage
		if dec.Decode(&items) == nil && len(items) > 0 && bytes.HasPrefix(bytes.TrimSpace(items[0]), []byte("{")) {
			end := start + int(dec.InputOffset())
			out = append(out, text[start:end])
			i = end
			continue
		}
		i = start + 1
	}
	return out
}

// ParseReply extracts recommendations from a model reply. The array may
// be the whole reply, inside a ```json fence, inside a plain fence, or
// embedded in prose. Candidates that decode as a JSON array are validated
// in turn and the first valid one wins; when none is valid the first
// validation error is returned.
func ParseReply(text string) ([]Recommendation, error) {
	var firstErr error
	for _, c := range candidates(text) {
		var items []json.RawMessage
		if json.Unmarshal([]byte(c), &items) != nil {
			continue
		}
		if err := llm.ValidateJSON(replySchema, []byte(c)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		var recs []Recommendation
		if err := json.Unmarshal([]byte(c), &recs); err != nil {
			return nil, &llm.ErrInvalidResponse{Content: c, Err: err}
		}
		for i := range recs {
			recs[i].Priority = normalizePriority(recs[i].Priority)
		}
		if len(recs) > MaxRecommendations {
			recs = recs[:MaxRecommendations]
		}
		return recs, nil
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return nil, &llm.ErrInvalidResponse{
		Content: text,
		Err:     errors.New("no JSON array found in reply"),
	}
}

func normalizePriority(p Priority) Priority {
	switch strings.ToLower(strings.TrimSpace(string(p))) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}
