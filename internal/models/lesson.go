package models

import "strings"

// Topic groups lessons that teach one theme (greetings, food, travel...)
type Topic struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tier        int      `json:"tier"`
	Lessons     []Lesson `json:"lessons"`
}

// Lesson is a single unit of static content. Lessons are immutable once
// loaded; identity lookups on ID are case-insensitive.
type Lesson struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	TopicID       string      `json:"topicId"`
	Tier          int         `json:"tier"`
	Words         []Word      `json:"words"`
	Sentences     []Sentence  `json:"sentences,omitempty"`
	Prerequisites []string    `json:"prerequisites,omitempty"`
	Challenges    []Challenge `json:"challenges,omitempty"`
}

// Word is one vocabulary item: Portuguese text plus its English gloss.
type Word struct {
	PT            string            `json:"pt"`
	EN            string            `json:"en"`
	GenderForms   map[string]string `json:"genderForms,omitempty"`
	IsAdjective   bool              `json:"isAdjective,omitempty"`
	Audio         string            `json:"audio,omitempty"`
	Pronunciation string            `json:"pronunciation,omitempty"`
}

// Key returns the deduplication identity for a word. Two words with the same
// normalized pt+en are the same learning item even across lessons.
func (w Word) Key() string {
	return strings.ToLower(strings.TrimSpace(w.PT)) + "|" + strings.ToLower(strings.TrimSpace(w.EN))
}

// Sentence is an authored example sentence pair.
type Sentence struct {
	PT string `json:"pt"`
	EN string `json:"en"`
}
