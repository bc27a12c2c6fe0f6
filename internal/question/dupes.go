package question

import (
	"fmt"
	"strings"
)

// dupePrefixRunes bounds how much normalized text participates in
// near-duplicate comparison. Long enough to separate genuinely different
// questions, short enough to catch copy-paste repeats with divergent tails.
const dupePrefixRunes = 80

// nearDuplicateWarnings flags questions whose normalized text collides with
// an earlier question under a different id. Collisions are warnings only:
// the source data repeats some questions on purpose and some by accident,
// and the engine cannot tell which.
func nearDuplicateWarnings(questions []Question) []string {
	seen := make(map[string]string, len(questions)) // normalized text -> first id
	var warnings []string
	for _, q := range questions {
		key := normalizeText(q.Text)
		if key == "" {
			continue
		}
		if first, ok := seen[key]; ok {
			warnings = append(warnings, fmt.Sprintf(
				"question %q has near-duplicate text of question %q", q.ID, first))
			continue
		}
		seen[key] = q.ID
	}
	return warnings
}

// normalizeText lowercases, collapses whitespace, and truncates to the
// comparison prefix.
func normalizeText(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	joined := strings.Join(fields, " ")
	runes := []rune(joined)
	if len(runes) > dupePrefixRunes {
		runes = runes[:dupePrefixRunes]
	}
	return string(runes)
}
