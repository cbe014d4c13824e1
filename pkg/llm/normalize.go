package llm

import "strings"

// StripFence removes a single surrounding markdown code fence from model
// output: a leading ```json or ``` (with the newline right after it) and a
// trailing ```. Anything else is returned trimmed but untouched. Модели
// просят вернуть JSON без markdown, но слушаются не всегда.
func StripFence(s string) string {
	clean := strings.TrimSpace(s)

	// Хвостовой ``` снимается только в паре с открывающим: текст, который
	// просто заканчивается бэктиками, фенсом не является.
	switch {
	case strings.HasPrefix(clean, "```json"):
		clean = strings.TrimPrefix(clean, "```json")
	case strings.HasPrefix(clean, "```"):
		clean = strings.TrimPrefix(clean, "```")
	default:
		return clean
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
