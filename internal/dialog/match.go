package dialog

import "strings"

// The two matching tiers are deliberately different and must stay that way:
// flow entry is detected by substring ("quero consultar processo" triggers on
// "processo"), while yes/no confirmation only accepts the exact vocabulary
// ("sim, claro que sim" is NOT an affirmative).

// TriggerSet matches when any phrase occurs as a substring of the
// lowercased input. Phrases must be stored lowercased.
type TriggerSet []string

// Matches reports whether the text contains any trigger phrase.
func (t TriggerSet) Matches(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range t {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ExactSet matches only when the trimmed, lowercased input equals one of the
// entries. Used for confirmation vocabularies.
type ExactSet []string

// Matches reports whether the text is exactly one of the entries.
func (e ExactSet) Matches(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, entry := range e {
		if lower == entry {
			return true
		}
	}
	return false
}
