package models

// ChallengeKind discriminates the challenge union. The set is closed: every
// consumer switches over these constants.
type ChallengeKind string

const (
	KindLearnWord      ChallengeKind = "learn-word"
	KindPronunciation  ChallengeKind = "pronunciation"
	KindMultipleChoice ChallengeKind = "mcq"
	KindTypeAnswer     ChallengeKind = "type-answer"
	KindListenType     ChallengeKind = "listen-type"
	KindSentence       ChallengeKind = "sentence"

	// Rescue kinds are pre-authored remedial drills for words a learner keeps
	// missing. They are never synthesized by the builder; they arrive on
	// rescue lessons via Lesson.Challenges.
	KindRescueEcho   ChallengeKind = "rescue-echo"
	KindRescueChoice ChallengeKind = "rescue-choice"
	KindRescueRecall ChallengeKind = "rescue-recall"
)

// Phase is the broad stage a challenge belongs to within a lesson run.
type Phase string

const (
	PhaseLearn     Phase = "learn"
	PhasePronounce Phase = "pronounce"
	PhasePractice  Phase = "practice"
	PhaseApply     Phase = "apply"
)

// Challenge is one discrete practice prompt. Kind decides which of the
// optional fields are meaningful.
type Challenge struct {
	Kind  ChallengeKind `json:"kind"`
	Phase Phase         `json:"phase"`
	Index int           `json:"index"`

	// Word is the vocabulary item being drilled. Pre-authored challenges may
	// instead carry WordIndex into the owning lesson's word list; the builder
	// resolves it.
	Word      *Word `json:"word,omitempty"`
	WordIndex *int  `json:"wordIndex,omitempty"`

	// Sentence is set for sentence-application challenges.
	Sentence *Sentence `json:"sentence,omitempty"`

	// Options holds the shuffled answer choices for multiple-choice kinds.
	Options []string `json:"options,omitempty"`

	// MaxAttempts caps pronunciation retries. Zero means unlimited.
	MaxAttempts int `json:"maxAttempts,omitempty"`
}
