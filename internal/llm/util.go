package llm

import "strings"

// StripCodeFence removes a markdown code fence wrapping the whole response,
// including an optional language tag on the opening line. Text that is not
// entirely fenced is returned trimmed but otherwise unchanged.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}

	body := strings.TrimPrefix(text, "```")
	body = strings.TrimSuffix(body, "```")
	if strings.Contains(body, "```") {
		return text
	}

	if idx := strings.Index(body, "\n"); idx >= 0 {
		first := body[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {[") {
			body = body[idx+1:]
		}
	}
	return strings.TrimSpace(body)
}
