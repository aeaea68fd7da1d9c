package prompt

import "github.com/sahilm/fuzzy"

// Suggest returns up to limit candidates that fuzzy-match input, best
// match first. Matching is case-insensitive.
func Suggest(input string, candidates []string, limit int) []string {
	if input == "" || limit <= 0 {
		return nil
	}
	matches := fuzzy.Find(input, candidates)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}
