package models

import "time"

// LearnedWord is a word snapshot taken at lesson completion, with the
// gender-appropriate surface form baked in.
type LearnedWord struct {
	PT           string    `json:"pt"`
	EN           string    `json:"en"`
	ResolvedFrom string    `json:"resolvedFrom"`
	GenderUsed   string    `json:"genderUsed"`
	SRSLevel     int       `json:"srsLevel"`
	LastReviewed time.Time `json:"lastReviewed"`
}

// CompletionRecord is the immutable summary produced when a session ends. It
// is a pure function of session + lesson + speaker gender; building one does
// not mutate the session.
type CompletionRecord struct {
	LessonID     string        `json:"lessonId"`
	LearnedWords []LearnedWord `json:"learnedWords"`
	WordCount    int           `json:"wordCount"`
	Duration     int           `json:"duration"` // seconds, minimum 1
	Accuracy     int           `json:"accuracy"` // 0-100
	Correct      int           `json:"correct"`
	Mistakes     int           `json:"mistakes"`
	WrongAnswers []Word        `json:"wrongAnswers"`
	Timestamp    time.Time     `json:"timestamp"`
}

// TierStats is the completion rollup for one tier.
type TierStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Percentage int `json:"percentage"`
}

// ProgressStats summarizes catalog completion per tier plus a total rollup.
type ProgressStats struct {
	Tiers map[int]TierStats `json:"tiers"`
	Total TierStats         `json:"total"`
}

// BuildingBlocksProgress reports progress through the fixed tier-1 curriculum.
type BuildingBlocksProgress struct {
	Total      int  `json:"total"`
	Completed  int  `json:"completed"`
	Remaining  int  `json:"remaining"`
	Percentage int  `json:"percentage"`
	IsComplete bool `json:"isComplete"`
}

// LessonAvailability is the result of a prerequisite check.
type LessonAvailability struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}
