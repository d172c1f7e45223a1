package llm

import (
	"encoding/json"
	"strings"
)

// CleanJSONBlock pulls the JSON payload out of a model reply. Search-grounded
// replies come back as free text: fenced, led by prose, or both.
// Text with no valid JSON value is returned trimmed for the caller to reject.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	if json.Valid([]byte(text)) {
		return text
	}

	if body, ok := fencedBlock(text); ok {
		if json.Valid([]byte(body)) {
			return body
		}
		text = body
	}

	if payload, ok := firstJSONValue(text); ok {
		return payload
	}
	return text
}

// fencedBlock returns the body of the first ``` fence, without its language tag
func fencedBlock(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}

	body := text[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(body[:nl]); !strings.ContainsAny(tag, " {[") {
			body = body[nl+1:]
		}
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), true
}

// firstJSONValue returns the first balanced object in text that parses, or
// failing that the first such array. Bracketed prose and citation markers
// like "[2 leads]" or "[1]" never shadow an object payload.
func firstJSONValue(text string) (string, bool) {
	if payload, ok := firstBalanced(text, '{', '}'); ok {
		return payload, true
	}
	return firstBalanced(text, '[', ']')
}

func firstBalanced(text string, open, close byte) (string, bool) {
	for i := 0; i < len(text); i++ {
		if text[i] != open {
			continue
		}
		if candidate := extractBalanced(text[i:], open, close); candidate != "" && json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

func extractBalanced(s string, open, close byte) string {
	if s == "" || s[0] != open {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
