package oracle

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// The oracle CLI wraps its answer in a JSON envelope whose exact shape has
// drifted across versions. EnvelopeText pulls the answer text out of any of
// the known shapes; the layered Decode* helpers then dig the expected JSON
// payload out of that text.

var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\n?\\s*```")

// EnvelopeText extracts the response text from the CLI's outer JSON wrapper,
// trying the known envelope fields in order: result, content (block list or
// string), then text, message, output.
func EnvelopeText(stdout []byte) (string, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(stdout, &envelope); err != nil {
		return "", fmt.Errorf("%w: outer envelope: %v (snippet: %s)", ErrParse, err, Snippet(string(stdout)))
	}

	if raw, ok := envelope["result"]; ok {
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && text != "" {
			return strings.TrimSpace(text), nil
		}
	}
	if raw, ok := envelope["content"]; ok {
		if text := contentText(raw); text != "" {
			return strings.TrimSpace(text), nil
		}
	}
	for _, key := range []string{"text", "message", "output"} {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && text != "" {
			return strings.TrimSpace(text), nil
		}
	}
	return "", fmt.Errorf("%w: no extractable text in envelope (snippet: %s)", ErrParse, Snippet(string(stdout)))
}

// contentText handles the block-list content shape: a list of typed blocks
// whose text blocks are joined, or a plain string.
func contentText(raw json.RawMessage) string {
	var blocks []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &blocks); err == nil {
		parts := make([]string, 0, len(blocks))
		for _, block := range blocks {
			if block.Type == "text" && block.Text != "" {
				parts = append(parts, block.Text)
			}
		}
		return strings.Join(parts, " ")
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	return ""
}

// DecodeArray extracts a JSON array from answer text, trying a direct parse,
// then the contents of a markdown code fence, then the widest bracketed
// substring. Elements come back raw so callers can decode them tolerantly.
func DecodeArray(text string) ([]json.RawMessage, error) {
	text = strings.TrimSpace(text)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err == nil {
		return items, nil
	}

	if strings.Contains(text, "```") {
		if m := codeFenceRe.FindStringSubmatch(text); m != nil {
			if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), &items); err == nil {
				return items, nil
			}
		}
	}

	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), &items); err == nil {
				return items, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: no JSON array in answer (snippet: %s)", ErrParse, Snippet(text))
}

// DecodeObject applies the same layered strategy for answers expected to be
// a single JSON object.
func DecodeObject(text string, target any) error {
	text = strings.TrimSpace(text)

	if err := json.Unmarshal([]byte(text), target); err == nil {
		return nil
	}

	if strings.Contains(text, "```") {
		if m := codeFenceRe.FindStringSubmatch(text); m != nil {
			if err := json.Unmarshal([]byte(strings.TrimSpace(m[1])), target); err == nil {
				return nil
			}
		}
	}

	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			if err := json.Unmarshal([]byte(text[start:end+1]), target); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("%w: no JSON object in answer (snippet: %s)", ErrParse, Snippet(text))
}

// Snippet condenses raw response text to a single short line for logs.
func Snippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 200
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
