package plan

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sonoralabs/sonora/pkg/errorsx"
)

// Extract locates the first well-formed top-level JSON object embedded in
// free text. Model responses routinely wrap the object in prose, markdown
// fences, or trailing explanation; none of that is assumed absent.
func Extract(text string) (string, bool) {
	text = stripFences(text)
	for start := strings.IndexByte(text, '{'); start >= 0; {
		end, ok := matchObject(text, start)
		if ok {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return candidate, true
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			return "", false
		}
		start += 1 + next
	}
	return "", false
}

// Decode parses a JSON object into a Plan, preserving source key order and
// repeated keys. Top-level values that are not JSON objects are dropped;
// the executor would only skip them anyway.
func Decode(raw string) (Plan, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return Plan{}, errorsx.Wrap(fmt.Errorf("decode plan: %w", err), errorsx.ReasonPlanDecode)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Plan{}, errorsx.Wrap(fmt.Errorf("decode plan: expected object, got %v", tok), errorsx.ReasonPlanDecode)
	}
	var p Plan
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return Plan{}, errorsx.Wrap(fmt.Errorf("decode plan key: %w", err), errorsx.ReasonPlanDecode)
		}
		key, ok := keyTok.(string)
		if !ok {
			return Plan{}, errorsx.Wrap(fmt.Errorf("decode plan: non-string key %v", keyTok), errorsx.ReasonPlanDecode)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return Plan{}, errorsx.Wrap(fmt.Errorf("decode plan value for %q: %w", key, err), errorsx.ReasonPlanDecode)
		}
		params, ok := value.(map[string]any)
		if !ok {
			continue
		}
		p.Steps = append(p.Steps, Step{Tool: key, Params: params})
	}
	if _, err := dec.Token(); err != nil {
		return Plan{}, errorsx.Wrap(fmt.Errorf("decode plan: %w", err), errorsx.ReasonPlanDecode)
	}
	return p, nil
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		if end := strings.Index(rest, "```"); end >= 0 {
			text = rest[:end]
		}
	}
	return text
}

// matchObject walks from an opening brace to its matching close, skipping
// string literals and escapes.
func matchObject(text string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
