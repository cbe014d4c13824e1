package nlp

import (
	"strings"
)

// TermVariants returns normalized variants for matching (synonyms/aliases).
// It is intentionally small; extend as needed.
func TermVariants(term string) []string {
	base := Normalize(term)
	if base == "" {
		return []string{}
	}
	var out []string
	seen := map[string]struct{}{}
	add := func(s string) {
		s = Normalize(s)
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	add(base)

	// Phrase-level aliases
	switch base {
	case "postgres":
		add("postgresql")
	case "postgresql":
		add("postgres")
	case "k8s":
		add("kubernetes")
	case "kubernetes":
		add("k8s")
	case "golang":
		add("go")
	case "go":
		add("golang")
	case "js":
		add("javascript")
	case "javascript":
		add("js")
	case "ts":
		add("typescript")
	case "typescript":
		add("ts")
	case "rest":
		add("rest api")
	case "rest api":
		add("rest")
	case "ci cd":
		add("cicd")
		add("ci/cd")
	case "cicd":
		add("ci cd")
		add("ci/cd")
	}

	// Token-level expansions (for multi-word terms):
	// "golang developer" также ищется как "go developer".
	parts := strings.Split(base, " ")
	if len(parts) > 1 {
		var expanded []string
		for _, p := range parts {
			variants := tokenVariants(p)
			expanded = append(expanded, variants[len(variants)-1])
		}
		add(strings.Join(expanded, " "))
	}

	return out
}

// ContainsTerm проверяет присутствие термина в нормализованном тексте
// с учётом синонимов/алиасов.
func ContainsTerm(normalizedText, term string) bool {
	for _, v := range TermVariants(term) {
		if ContainsPhrase(normalizedText, v) {
			return true
		}
	}
	return false
}

// TermCount суммирует вхождения всех вариантов термина.
func TermCount(normalizedText, term string) int {
	total := 0
	for _, v := range TermVariants(term) {
		total += PhraseCount(normalizedText, v)
	}
	return total
}

func tokenVariants(token string) []string {
	t := Normalize(token)
	if t == "" {
		return []string{""}
	}
	switch t {
	case "postgres":
		return []string{"postgres", "postgresql"}
	case "postgresql":
		return []string{"postgresql", "postgres"}
	case "k8s":
		return []string{"k8s", "kubernetes"}
	case "kubernetes":
		return []string{"kubernetes", "k8s"}
	case "golang":
		return []string{"golang", "go"}
	case "go":
		return []string{"go", "golang"}
	case "js":
		return []string{"js", "javascript"}
	case "javascript":
		return []string{"javascript", "js"}
	case "ts":
		return []string{"ts", "typescript"}
	case "typescript":
		return []string{"typescript", "ts"}
	default:
		return []string{t}
	}
}
