package service

import (
	"math"
	"strings"

	"lusolingo/internal/models"
)

// CalculateAccuracy returns correct/attempts as a rounded percentage. Zero
// attempts is 0; contrast with LessonAccuracy's 100 default for a live
// session with no attempts yet.
func CalculateAccuracy(attempts, correct int) int {
	if attempts == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(attempts) * 100))
}

// XP formula pieces. A completed lesson is worth the base plus per-word
// credit, with bonuses for high accuracy and a flawless run.
const (
	xpBase          = 10
	xpPerWord       = 2
	xpAccuracyBonus = 5
	xpFlawlessBonus = 10

	xpAccuracyThreshold = 90
)

// CalculateLessonXP computes the experience reward for a completion record.
func CalculateLessonXP(record models.CompletionRecord) int {
	xp := xpBase + xpPerWord*record.WordCount
	if record.Accuracy >= xpAccuracyThreshold {
		xp += xpAccuracyBonus
	}
	if record.Mistakes == 0 {
		xp += xpFlawlessBonus
	}
	return xp
}

// Speaker genders for word-form resolution.
const (
	GenderMale    = "male"
	GenderFemale  = "female"
	GenderNeutral = "neutral"
)

// NormalizeGender maps arbitrary input onto a known speaker gender. Unknown
// or unset input defaults to female.
func NormalizeGender(gender string) string {
	switch strings.ToLower(strings.TrimSpace(gender)) {
	case GenderMale:
		return GenderMale
	case GenderNeutral:
		return GenderNeutral
	default:
		return GenderFemale
	}
}

// genderFormRule rewrites a word's surface form for a speaker gender.
// Rules run in order; the first match wins.
type genderFormRule struct {
	matches func(models.Word) bool
	resolve func(models.Word, string) string
}

var genderFormRules = []genderFormRule{
	{
		// obrigado/obrigada agrees with the speaker, not the listener.
		matches: func(w models.Word) bool {
			return strings.HasSuffix(strings.ToLower(strings.TrimSpace(w.PT)), "obrigado")
		},
		resolve: func(w models.Word, gender string) string {
			pt := strings.TrimSpace(w.PT)
			if gender == GenderFemale {
				return pt[:len(pt)-1] + "a"
			}
			return pt
		},
	},
	{
		// Regular adjectives swap the -o/-a ending.
		matches: func(w models.Word) bool {
			if !w.IsAdjective {
				return false
			}
			pt := strings.ToLower(strings.TrimSpace(w.PT))
			return strings.HasSuffix(pt, "o") || strings.HasSuffix(pt, "a")
		},
		resolve: func(w models.Word, gender string) string {
			pt := strings.TrimSpace(w.PT)
			stem := pt[:len(pt)-1]
			if gender == GenderFemale {
				return stem + "a"
			}
			return stem + "o"
		},
	},
}

// ResolveWordForm returns the surface form of a word for the given speaker
// gender. An explicit genderForms table wins, falling back to the neutral
// entry and then the raw text; otherwise the heuristic rules apply. Gender
// should already be normalized (see NormalizeGender).
func ResolveWordForm(word models.Word, gender string) string {
	gender = NormalizeGender(gender)

	if len(word.GenderForms) > 0 {
		if form, ok := word.GenderForms[gender]; ok && form != "" {
			return form
		}
		if form, ok := word.GenderForms[GenderNeutral]; ok && form != "" {
			return form
		}
		return word.PT
	}

	for _, rule := range genderFormRules {
		if rule.matches(word) {
			return rule.resolve(word, gender)
		}
	}
	return word.PT
}
