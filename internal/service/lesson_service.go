package service

import (
	"math/rand"
	"strings"
	"time"

	"lusolingo/internal/models"
)

// Difficulty selects which practice phases a lesson run includes.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// NormalizeDifficulty maps arbitrary input onto a known difficulty. Unknown
// or unset input defaults to beginner.
func NormalizeDifficulty(difficulty string) Difficulty {
	switch Difficulty(strings.ToLower(strings.TrimSpace(difficulty))) {
	case DifficultyIntermediate:
		return DifficultyIntermediate
	case DifficultyAdvanced:
		return DifficultyAdvanced
	default:
		return DifficultyBeginner
	}
}

// DifficultyConfig holds the per-phase caps and the intermediate unlock
// thresholds. Thresholds are configuration, not constants: the three-tier
// behavior (beginner: learn+quiz only, advanced: everything) is the contract.
type DifficultyConfig struct {
	PronunciationWords       int // words drilled in the pronunciation phase
	TypeAnswerWords          int // words drilled in the typing phase
	ListenTypeWords          int // words drilled in the listening phase
	QuizOptionCount          int // options per multiple-choice question
	PronunciationMaxAttempts int // retry cap per pronunciation challenge

	// Intermediate learners unlock the harder phases gradually based on
	// prior lesson results.
	PronunciationMinAccuracy int
	ListeningMinAccuracy     int
	ListeningMinCompletions  int
}

// DefaultDifficultyConfig returns the standard phase caps.
func DefaultDifficultyConfig() DifficultyConfig {
	return DifficultyConfig{
		PronunciationWords:       4,
		TypeAnswerWords:          5,
		ListenTypeWords:          3,
		QuizOptionCount:          4,
		PronunciationMaxAttempts: 3,
		PronunciationMinAccuracy: 85,
		ListeningMinAccuracy:     80,
		ListeningMinCompletions:  3,
	}
}

// BuildOptions carries the difficulty setting and the learner's prior results
// into challenge generation.
type BuildOptions struct {
	Difficulty       Difficulty
	PriorAccuracy    int // average accuracy over completed lessons, 0-100
	PriorCompletions int
}

// quizDistractors pads multiple-choice options when a lesson has too few
// distinct glosses of its own.
var quizDistractors = []string{
	"Hello", "Goodbye", "Yes", "No", "Please", "Thank you", "Water", "Food",
}

// LessonService turns lessons into challenge sequences and owns the session
// state machine operations. Sessions are explicit objects passed in by the
// caller; the service keeps no per-learner state of its own.
type LessonService struct {
	cfg DifficultyConfig
	rng *rand.Rand
}

// NewLessonService creates a lesson service with the given difficulty
// configuration.
func NewLessonService(cfg DifficultyConfig) *LessonService {
	return &LessonService{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// BuildLessonChallenges expands one lesson into an ordered challenge
// sequence. Pre-authored challenges pass through verbatim (with compact
// wordIndex references resolved); otherwise challenges are synthesized in
// fixed phase order: learn-word per word, then the difficulty-gated practice
// phases, then one sentence challenge per authored example.
func (s *LessonService) BuildLessonChallenges(lesson *models.Lesson, opts *BuildOptions) []models.Challenge {
	if lesson == nil {
		return []models.Challenge{}
	}
	if len(lesson.Challenges) > 0 {
		return s.resolveAuthoredChallenges(lesson)
	}

	if opts == nil {
		opts = &BuildOptions{Difficulty: DifficultyBeginner}
	}

	challenges := make([]models.Challenge, 0, len(lesson.Words)*2+len(lesson.Sentences))

	for i := range lesson.Words {
		challenges = append(challenges, models.Challenge{
			Kind:  models.KindLearnWord,
			Phase: models.PhaseLearn,
			Word:  &lesson.Words[i],
		})
	}

	if len(lesson.Words) > 0 {
		if s.phaseEnabled(models.KindPronunciation, opts) {
			for _, w := range s.pickWords(lesson.Words, s.cfg.PronunciationWords) {
				word := w
				challenges = append(challenges, models.Challenge{
					Kind:        models.KindPronunciation,
					Phase:       models.PhasePronounce,
					Word:        &word,
					MaxAttempts: s.cfg.PronunciationMaxAttempts,
				})
			}
		}

		// Multiple choice covers every word.
		for i := range lesson.Words {
			challenges = append(challenges, models.Challenge{
				Kind:    models.KindMultipleChoice,
				Phase:   models.PhasePractice,
				Word:    &lesson.Words[i],
				Options: s.BuildQuizOptions(lesson.Words[i], lesson.Words),
			})
		}

		if s.phaseEnabled(models.KindTypeAnswer, opts) {
			for _, w := range s.pickWords(lesson.Words, s.cfg.TypeAnswerWords) {
				word := w
				challenges = append(challenges, models.Challenge{
					Kind:  models.KindTypeAnswer,
					Phase: models.PhasePractice,
					Word:  &word,
				})
			}
		}

		if s.phaseEnabled(models.KindListenType, opts) {
			for _, w := range s.pickWords(lesson.Words, s.cfg.ListenTypeWords) {
				word := w
				challenges = append(challenges, models.Challenge{
					Kind:  models.KindListenType,
					Phase: models.PhasePractice,
					Word:  &word,
				})
			}
		}
	}

	for i := range lesson.Sentences {
		challenges = append(challenges, models.Challenge{
			Kind:     models.KindSentence,
			Phase:    models.PhaseApply,
			Sentence: &lesson.Sentences[i],
		})
	}

	for i := range challenges {
		challenges[i].Index = i
	}
	return challenges
}

// resolveAuthoredChallenges returns a lesson's pre-authored challenges with
// wordIndex references resolved and indexes normalized. No phase or kind
// filtering applies to authored content.
func (s *LessonService) resolveAuthoredChallenges(lesson *models.Lesson) []models.Challenge {
	challenges := make([]models.Challenge, len(lesson.Challenges))
	copy(challenges, lesson.Challenges)
	for i := range challenges {
		ch := &challenges[i]
		if ch.Word == nil && ch.WordIndex != nil {
			if idx := *ch.WordIndex; idx >= 0 && idx < len(lesson.Words) {
				word := lesson.Words[idx]
				ch.Word = &word
			}
		}
		ch.Index = i
	}
	return challenges
}

// phaseEnabled decides whether a difficulty-gated phase is part of this run.
// Beginners get learn + quiz only; advanced learners get everything;
// intermediate learners unlock typing immediately and the audio phases once
// their prior results clear the configured thresholds.
func (s *LessonService) phaseEnabled(kind models.ChallengeKind, opts *BuildOptions) bool {
	switch opts.Difficulty {
	case DifficultyAdvanced:
		return true
	case DifficultyIntermediate:
		switch kind {
		case models.KindTypeAnswer:
			return true
		case models.KindPronunciation:
			return opts.PriorAccuracy >= s.cfg.PronunciationMinAccuracy
		case models.KindListenType:
			return opts.PriorAccuracy >= s.cfg.ListeningMinAccuracy &&
				opts.PriorCompletions >= s.cfg.ListeningMinCompletions
		}
		return false
	default:
		return false
	}
}

// BuildQuizOptions assembles the answer choices for a multiple-choice
// challenge: the target's gloss exactly once, distinct glosses drawn at
// random from the other lesson words, generic distractors as padding, the
// whole set shuffled.
func (s *LessonService) BuildQuizOptions(target models.Word, allWords []models.Word) []string {
	count := s.cfg.QuizOptionCount
	if count <= 0 {
		count = 4
	}

	seen := map[string]bool{strings.ToLower(target.EN): true}
	candidates := make([]string, 0, len(allWords))
	for _, word := range allWords {
		gloss := strings.TrimSpace(word.EN)
		key := strings.ToLower(gloss)
		if gloss == "" || seen[key] {
			continue
		}
		seen[key] = true
		candidates = append(candidates, gloss)
	}
	Shuffle(s.rng, candidates)

	options := []string{target.EN}
	for _, gloss := range candidates {
		if len(options) == count {
			break
		}
		options = append(options, gloss)
	}
	for _, filler := range quizDistractors {
		if len(options) == count {
			break
		}
		if seen[strings.ToLower(filler)] {
			continue
		}
		seen[strings.ToLower(filler)] = true
		options = append(options, filler)
	}

	Shuffle(s.rng, options)
	return options
}

// pickWords selects up to n words uniformly at random without replacement.
func (s *LessonService) pickWords(words []models.Word, n int) []models.Word {
	if n <= 0 {
		return nil
	}
	picked := make([]models.Word, len(words))
	copy(picked, words)
	Shuffle(s.rng, picked)
	if n < len(picked) {
		picked = picked[:n]
	}
	return picked
}

// InitLessonSession replaces the session contents unconditionally with a
// fresh run over the given lesson. Counters reset to zero and the clock
// starts now. An empty challenge list lands the session immediately
// complete.
func (s *LessonService) InitLessonSession(sess *models.LessonSession, lesson *models.Lesson, opts *BuildOptions) {
	*sess = models.LessonSession{
		Lesson:       lesson,
		Challenges:   s.BuildLessonChallenges(lesson, opts),
		WrongAnswers: []models.Word{},
		StartedAt:    time.Now(),
	}
}

// NextChallenge advances the cursor by exactly one, whether or not the
// previous challenge was answered correctly. Advancing past the end is
// allowed; the current challenge simply becomes nil.
func (s *LessonService) NextChallenge(sess *models.LessonSession) {
	sess.CurrentIndex++
}

// RecordCorrect bumps the correct counter. It does not move the cursor;
// advancing is a separate caller action.
func (s *LessonService) RecordCorrect(sess *models.LessonSession) {
	sess.Correct++
}

// RecordMistake bumps the mistake counter and, when a word is supplied, logs
// it in the session's wrong-answer list.
func (s *LessonService) RecordMistake(sess *models.LessonSession, word *models.Word) {
	sess.Mistakes++
	if word != nil {
		sess.WrongAnswers = append(sess.WrongAnswers, *word)
	}
}

// ResetLessonSession returns the session to its uninitialized state,
// discarding all run data. The catalog is untouched.
func (s *LessonService) ResetLessonSession(sess *models.LessonSession) {
	*sess = models.LessonSession{
		Challenges:   []models.Challenge{},
		WrongAnswers: []models.Word{},
	}
}

// CurrentChallenge returns the challenge under the cursor, or nil when the
// session is uninitialized or past the end.
func (s *LessonService) CurrentChallenge(sess *models.LessonSession) *models.Challenge {
	if sess.CurrentIndex < 0 || sess.CurrentIndex >= len(sess.Challenges) {
		return nil
	}
	return &sess.Challenges[sess.CurrentIndex]
}

// IsComplete reports whether the run has passed its last challenge. An
// uninitialized session is not complete.
func (s *LessonService) IsComplete(sess *models.LessonSession) bool {
	return sess.Lesson != nil && sess.CurrentIndex >= len(sess.Challenges)
}

// Progress returns cursor position as a percentage, 0 for an empty run.
func (s *LessonService) Progress(sess *models.LessonSession) float64 {
	if len(sess.Challenges) == 0 {
		return 0
	}
	return float64(sess.CurrentIndex) / float64(len(sess.Challenges)) * 100
}

// SessionState derives the full read model from the live session fields.
// Nothing here is cached.
func (s *LessonService) SessionState(sess *models.LessonSession) models.SessionState {
	challenges := sess.Challenges
	if challenges == nil {
		challenges = []models.Challenge{}
	}
	wrong := sess.WrongAnswers
	if wrong == nil {
		wrong = []models.Word{}
	}
	return models.SessionState{
		Lesson:           sess.Lesson,
		Challenges:       challenges,
		CurrentIndex:     sess.CurrentIndex,
		Correct:          sess.Correct,
		Mistakes:         sess.Mistakes,
		WrongAnswers:     wrong,
		Progress:         s.Progress(sess),
		IsComplete:       s.IsComplete(sess),
		CurrentChallenge: s.CurrentChallenge(sess),
	}
}

// LessonAccuracy returns the live session accuracy. A session with no
// recorded attempts reads 100, not 0; the zero-attempt default of
// CalculateAccuracy is deliberately different.
func (s *LessonService) LessonAccuracy(sess *models.LessonSession) int {
	attempts := sess.Correct + sess.Mistakes
	if attempts == 0 {
		return 100
	}
	return CalculateAccuracy(attempts, sess.Correct)
}

// BuildLessonCompletionData snapshots the finished run into an immutable
// completion record: every lesson word resolved through the speaker's gender,
// fresh SRS bookkeeping, and the session's counters and timing merged in. The
// session itself is not mutated or cleared.
func (s *LessonService) BuildLessonCompletionData(sess *models.LessonSession, gender string) models.CompletionRecord {
	now := time.Now()
	record := models.CompletionRecord{
		Accuracy:     s.LessonAccuracy(sess),
		Correct:      sess.Correct,
		Mistakes:     sess.Mistakes,
		WrongAnswers: append([]models.Word{}, sess.WrongAnswers...),
		Timestamp:    now,
	}
	if sess.Lesson == nil {
		record.LearnedWords = []models.LearnedWord{}
		record.Duration = 1
		return record
	}

	record.LessonID = sess.Lesson.ID
	record.WordCount = len(sess.Lesson.Words)

	duration := int(now.Sub(sess.StartedAt).Seconds())
	if duration < 1 {
		duration = 1
	}
	record.Duration = duration

	record.LearnedWords = make([]models.LearnedWord, 0, len(sess.Lesson.Words))
	genderUsed := NormalizeGender(gender)
	for _, word := range sess.Lesson.Words {
		resolved := ResolveWordForm(word, genderUsed)
		record.LearnedWords = append(record.LearnedWords, models.LearnedWord{
			PT:           resolved,
			EN:           word.EN,
			ResolvedFrom: word.PT,
			GenderUsed:   genderUsed,
			SRSLevel:     1,
			LastReviewed: now,
		})
	}
	return record
}
