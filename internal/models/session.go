package models

import "time"

// LessonSession is the mutable state of one in-progress lesson attempt. It is
// an explicit object owned by the caller; the mutating operations live on
// service.LessonService and take the session by reference.
type LessonSession struct {
	Lesson       *Lesson     `json:"lesson"`
	Challenges   []Challenge `json:"challenges"`
	CurrentIndex int         `json:"currentIndex"`
	Correct      int         `json:"correct"`
	Mistakes     int         `json:"mistakes"`
	WrongAnswers []Word      `json:"wrongAnswers"`
	StartedAt    time.Time   `json:"startedAt"`
}

// SessionState is the derived read model of a session. It is recomputed from
// the live fields on every call, never cached.
type SessionState struct {
	Lesson           *Lesson     `json:"lesson"`
	Challenges       []Challenge `json:"challenges"`
	CurrentIndex     int         `json:"currentIndex"`
	Correct          int         `json:"correct"`
	Mistakes         int         `json:"mistakes"`
	WrongAnswers     []Word      `json:"wrongAnswers"`
	Progress         float64     `json:"progress"`
	IsComplete       bool        `json:"isComplete"`
	CurrentChallenge *Challenge  `json:"currentChallenge"`
}

// MistakeStat aggregates repeated misses of one word across sessions. Used to
// rank which words deserve hints.
type MistakeStat struct {
	Word     Word      `json:"word"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"lastSeen"`
}

// Hint pairs a word with a study tip.
type Hint struct {
	Word *Word  `json:"word,omitempty"`
	Tip  string `json:"tip"`
}
