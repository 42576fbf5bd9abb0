package question

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// StripCodeFence removes a surrounding markdown fence (```json ... ``` or ``` ... ```).
func StripCodeFence(content string) string {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParsePairs decodes a generator completion into normalized pairs. Items may use either
// pergunta/resposta or question/answer; items missing either field are skipped.
func ParsePairs(content string) ([]Pair, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFence(content)), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty array", ErrInvalidFormat)
	}

	pairs := make([]Pair, 0, len(items))
	for _, raw := range items {
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			continue
		}
		q := firstString(fields, "pergunta", "question")
		a := firstString(fields, "resposta", "answer")
		if q == "" || a == "" {
			continue
		}
		pairs = append(pairs, Pair{Question: q, Answer: a})
	}
	return pairs, nil
}

// Dedupe drops later pairs whose normalized question matches an earlier one.
func Dedupe(pairs []Pair) []Pair {
	seen := make(map[string]struct{}, len(pairs))
	out := make([]Pair, 0, len(pairs))
	for _, p := range pairs {
		key := normalizeQuestion(p.Question)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := fields[k]
		if !ok || v == nil {
			continue
		}
		var s string
		switch t := v.(type) {
		case string:
			s = t
		case float64:
			s = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			s = strconv.FormatBool(t)
		default:
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}
