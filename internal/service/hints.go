package service

import (
	"regexp"
	"sort"
	"strings"

	"lusolingo/internal/models"
)

// hintRule pairs a pattern with a study tip. The rule table is evaluated in
// order and the first match wins.
type hintRule struct {
	pattern *regexp.Regexp
	tip     string
}

var hintRules = []hintRule{
	{
		pattern: regexp.MustCompile(`ão|õe|ã`),
		tip:     "The squiggle marks a nasal vowel: let the sound escape through your nose, as in 'pão' or 'não'.",
	},
	{
		pattern: regexp.MustCompile(`(?i)^obrigad[oa]$`),
		tip:     "'Obrigado' agrees with the speaker: men say obrigado, women say obrigada — whoever you are thanking doesn't matter.",
	},
	{
		pattern: regexp.MustCompile(`(?i)por favor`),
		tip:     "'Por favor' pairs with almost any request. Tack it onto the end: 'Um café, por favor.'",
	},
	{
		pattern: regexp.MustCompile(`(?i)comboio|autocarro|metro|avião|bicicleta`),
		tip:     "Transport nouns carry their article: o comboio, o autocarro, but a bicicleta. Learn the article with the noun.",
	},
	{
		pattern: regexp.MustCompile(`(?i)^(ser|estar|ter|sou|estou)$`),
		tip:     "Ser is what something is, estar is how it is right now, ter is what it has. Three verbs, three jobs.",
	},
}

const genericHintTip = "Say it out loud three times, slowly. Portuguese rhythm lives in the vowels — drill the sound, not the spelling."

const foundationHintTip = "No trouble spots yet. Keep drilling the foundation sounds: nasal vowels and the open/closed 'o' carry most of Portuguese pronunciation."

// BuildHintForWord returns the study tip for a word: the first matching rule,
// or a generic pronunciation drill when nothing applies.
func BuildHintForWord(word models.Word) string {
	pt := strings.TrimSpace(word.PT)
	for _, rule := range hintRules {
		if rule.pattern.MatchString(pt) {
			return rule.tip
		}
	}
	return genericHintTip
}

// GenerateHints attaches tips to the learner's worst words: most repeated
// first, ties broken by most recent. An empty mistake list still yields one
// synthetic foundation hint so callers always have something to show.
func GenerateHints(mistakes []models.MistakeStat, limit int) []models.Hint {
	if limit <= 0 {
		limit = 5
	}
	if len(mistakes) == 0 {
		return []models.Hint{{Tip: foundationHintTip}}
	}

	ranked := make([]models.MistakeStat, len(mistakes))
	copy(ranked, mistakes)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].LastSeen.After(ranked[j].LastSeen)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	hints := make([]models.Hint, 0, len(ranked))
	for i := range ranked {
		word := ranked[i].Word
		hints = append(hints, models.Hint{
			Word: &word,
			Tip:  BuildHintForWord(word),
		})
	}
	return hints
}

// mnemonics is a static dictionary keyed by lowercased Portuguese text.
var mnemonics = map[string]string{
	"obrigado":  "You feel obliged to say thanks: obrigado.",
	"olá":       "Olá sounds like 'oh la!' — wave as you say it.",
	"adeus":     "Adeus literally commends someone 'to God' — a real farewell, not a 'see you later'.",
	"água":      "Água starts like 'aqua' — same Latin water.",
	"pão":       "Pão is bread with a nasal twang — think 'pow' through the nose.",
	"comboio":   "A comboio is a convoy of carriages — the train.",
	"autocarro": "An autocarro is an auto-car for everyone — the bus.",
	"ser":       "Ser is what you ARE for good — 'sou inglês'.",
	"estar":     "Estar is your current STATE — 'estou cansado'.",
	"ter":       "Ter is to hold — 'tenho' sounds like you're clutching something.",
	"por favor": "Por favor: 'for a favor' — you're asking one.",
}

// Mnemonic looks up a memory aid for a word by its Portuguese text,
// case-insensitively. The second return is false on a miss.
func Mnemonic(word models.Word) (string, bool) {
	m, ok := mnemonics[strings.ToLower(strings.TrimSpace(word.PT))]
	return m, ok
}
