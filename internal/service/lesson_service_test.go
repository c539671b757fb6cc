package service

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"lusolingo/internal/models"
)

func fourWordLesson() *models.Lesson {
	return &models.Lesson{
		ID:      "test-001",
		Title:   "Test Lesson",
		TopicID: "testing",
		Tier:    1,
		Words: []models.Word{
			{PT: "olá", EN: "Hello"},
			{PT: "adeus", EN: "Goodbye"},
			{PT: "água", EN: "Water"},
			{PT: "pão", EN: "Bread"},
		},
	}
}

func newTestService() *LessonService {
	svc := NewLessonService(DefaultDifficultyConfig())
	svc.rng = rand.New(rand.NewSource(42))
	return svc
}

func countKinds(challenges []models.Challenge) map[models.ChallengeKind]int {
	counts := make(map[models.ChallengeKind]int)
	for _, ch := range challenges {
		counts[ch.Kind]++
	}
	return counts
}

func TestBuildLessonChallengesBeginner(t *testing.T) {
	svc := newTestService()
	lesson := fourWordLesson()
	lesson.Sentences = []models.Sentence{{PT: "Olá!", EN: "Hello!"}}

	challenges := svc.BuildLessonChallenges(lesson, &BuildOptions{Difficulty: DifficultyBeginner})
	counts := countKinds(challenges)

	if counts[models.KindLearnWord] != 4 {
		t.Errorf("learn-word count = %d, want 4", counts[models.KindLearnWord])
	}
	if counts[models.KindMultipleChoice] != 4 {
		t.Errorf("mcq count = %d, want 4 (covers all words)", counts[models.KindMultipleChoice])
	}
	if counts[models.KindSentence] != 1 {
		t.Errorf("sentence count = %d, want 1", counts[models.KindSentence])
	}
	for _, kind := range []models.ChallengeKind{models.KindPronunciation, models.KindTypeAnswer, models.KindListenType} {
		if counts[kind] != 0 {
			t.Errorf("beginner run includes %s, want none", kind)
		}
	}

	// Phase order: learn challenges first, sentence challenges last.
	if challenges[0].Kind != models.KindLearnWord {
		t.Errorf("first challenge kind = %s, want learn-word", challenges[0].Kind)
	}
	if challenges[len(challenges)-1].Kind != models.KindSentence {
		t.Errorf("last challenge kind = %s, want sentence", challenges[len(challenges)-1].Kind)
	}

	// Indexes are sequential.
	for i, ch := range challenges {
		if ch.Index != i {
			t.Errorf("challenge %d has index %d", i, ch.Index)
		}
	}
}

func TestBuildLessonChallengesAdvanced(t *testing.T) {
	svc := newTestService()
	lesson := fourWordLesson()

	challenges := svc.BuildLessonChallenges(lesson, &BuildOptions{Difficulty: DifficultyAdvanced})
	counts := countKinds(challenges)

	if counts[models.KindPronunciation] != 4 {
		t.Errorf("pronunciation count = %d, want 4 (capped at config)", counts[models.KindPronunciation])
	}
	if counts[models.KindTypeAnswer] != 4 {
		t.Errorf("type-answer count = %d, want 4 (all words, under the cap of 5)", counts[models.KindTypeAnswer])
	}
	if counts[models.KindListenType] != 3 {
		t.Errorf("listen-type count = %d, want 3", counts[models.KindListenType])
	}

	for _, ch := range challenges {
		if ch.Kind == models.KindPronunciation && ch.MaxAttempts != 3 {
			t.Errorf("pronunciation max attempts = %d, want 3", ch.MaxAttempts)
		}
	}
}

func TestNormalizeDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
	}{
		{"beginner", DifficultyBeginner},
		{"advanced", DifficultyAdvanced},
		{"Advanced", DifficultyAdvanced},
		{" INTERMEDIATE ", DifficultyIntermediate},
		{"", DifficultyBeginner},
		{"expert", DifficultyBeginner},
	}
	for _, tt := range tests {
		if got := NormalizeDifficulty(tt.in); got != tt.want {
			t.Errorf("NormalizeDifficulty(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMixedCaseDifficultyBuildsSameRun(t *testing.T) {
	svc := newTestService()

	lower := countKinds(svc.BuildLessonChallenges(fourWordLesson(), &BuildOptions{Difficulty: DifficultyAdvanced}))
	mixed := countKinds(svc.BuildLessonChallenges(fourWordLesson(), &BuildOptions{Difficulty: NormalizeDifficulty("Advanced")}))

	for kind, want := range lower {
		if mixed[kind] != want {
			t.Errorf("%s count with mixed-case input = %d, want %d", kind, mixed[kind], want)
		}
	}
	if mixed[models.KindPronunciation] == 0 {
		t.Error("mixed-case advanced run has no pronunciation phase, degraded to beginner")
	}
}

func TestBuildLessonChallengesIntermediateUnlocks(t *testing.T) {
	svc := newTestService()
	lesson := fourWordLesson()

	tests := []struct {
		name      string
		opts      BuildOptions
		wantKinds []models.ChallengeKind
		skipKinds []models.ChallengeKind
	}{
		{
			name:      "fresh intermediate gets typing only",
			opts:      BuildOptions{Difficulty: DifficultyIntermediate},
			wantKinds: []models.ChallengeKind{models.KindTypeAnswer},
			skipKinds: []models.ChallengeKind{models.KindPronunciation, models.KindListenType},
		},
		{
			name:      "high accuracy unlocks pronunciation",
			opts:      BuildOptions{Difficulty: DifficultyIntermediate, PriorAccuracy: 90},
			wantKinds: []models.ChallengeKind{models.KindTypeAnswer, models.KindPronunciation},
			skipKinds: []models.ChallengeKind{models.KindListenType},
		},
		{
			name:      "accuracy plus completions unlocks listening",
			opts:      BuildOptions{Difficulty: DifficultyIntermediate, PriorAccuracy: 90, PriorCompletions: 3},
			wantKinds: []models.ChallengeKind{models.KindTypeAnswer, models.KindPronunciation, models.KindListenType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counts := countKinds(svc.BuildLessonChallenges(lesson, &tt.opts))
			for _, kind := range tt.wantKinds {
				if counts[kind] == 0 {
					t.Errorf("expected %s challenges, got none", kind)
				}
			}
			for _, kind := range tt.skipKinds {
				if counts[kind] != 0 {
					t.Errorf("expected no %s challenges, got %d", kind, counts[kind])
				}
			}
		})
	}
}

func TestBuildLessonChallengesEmptyLesson(t *testing.T) {
	svc := newTestService()
	lesson := &models.Lesson{
		ID:        "empty-001",
		Sentences: []models.Sentence{{PT: "Olá!", EN: "Hello!"}, {PT: "Adeus.", EN: "Goodbye."}},
	}

	challenges := svc.BuildLessonChallenges(lesson, &BuildOptions{Difficulty: DifficultyAdvanced})
	if len(challenges) != 2 {
		t.Fatalf("zero-word lesson produced %d challenges, want 2 sentence challenges", len(challenges))
	}
	for _, ch := range challenges {
		if ch.Kind != models.KindSentence {
			t.Errorf("unexpected challenge kind %s for zero-word lesson", ch.Kind)
		}
	}

	if got := svc.BuildLessonChallenges(nil, nil); len(got) != 0 {
		t.Errorf("nil lesson produced %d challenges, want 0", len(got))
	}
}

func TestPreAuthoredChallengesPassThrough(t *testing.T) {
	svc := newTestService()
	idx0, idx1 := 0, 1
	lesson := &models.Lesson{
		ID: "rescue-001",
		Words: []models.Word{
			{PT: "obrigado", EN: "Thank you"},
			{PT: "por favor", EN: "Please"},
		},
		Challenges: []models.Challenge{
			{Kind: models.KindRescueEcho, Phase: models.PhasePronounce, WordIndex: &idx0, MaxAttempts: 3},
			{Kind: models.KindRescueRecall, Phase: models.PhasePractice, WordIndex: &idx1},
		},
	}

	challenges := svc.BuildLessonChallenges(lesson, &BuildOptions{Difficulty: DifficultyBeginner})
	if len(challenges) != 2 {
		t.Fatalf("pass-through produced %d challenges, want 2", len(challenges))
	}
	if challenges[0].Kind != models.KindRescueEcho {
		t.Errorf("kind = %s, want rescue-echo (no filtering on authored content)", challenges[0].Kind)
	}
	if challenges[0].Word == nil || challenges[0].Word.PT != "obrigado" {
		t.Errorf("wordIndex 0 not resolved: %+v", challenges[0].Word)
	}
	if challenges[1].Word == nil || challenges[1].Word.PT != "por favor" {
		t.Errorf("wordIndex 1 not resolved: %+v", challenges[1].Word)
	}
	if challenges[0].Index != 0 || challenges[1].Index != 1 {
		t.Errorf("indexes = %d,%d, want 0,1", challenges[0].Index, challenges[1].Index)
	}
}

func TestBuildQuizOptionsContract(t *testing.T) {
	svc := newTestService()
	words := fourWordLesson().Words

	for run := 0; run < 50; run++ {
		options := svc.BuildQuizOptions(words[0], words)

		if len(options) != 4 {
			t.Fatalf("option count = %d, want 4", len(options))
		}
		seen := make(map[string]int)
		for _, opt := range options {
			seen[strings.ToLower(opt)]++
		}
		if seen["hello"] != 1 {
			t.Fatalf("target gloss appears %d times, want exactly 1: %v", seen["hello"], options)
		}
		for opt, n := range seen {
			if n > 1 {
				t.Fatalf("duplicate option %q: %v", opt, options)
			}
		}
	}
}

func TestBuildQuizOptionsPadsFromDistractorPool(t *testing.T) {
	svc := newTestService()
	words := []models.Word{
		{PT: "sim", EN: "Yes"},
		{PT: "não", EN: "No"},
	}

	options := svc.BuildQuizOptions(words[0], words)
	if len(options) != 4 {
		t.Fatalf("option count = %d, want 4 (padded from pool)", len(options))
	}
	seen := make(map[string]bool)
	for _, opt := range options {
		key := strings.ToLower(opt)
		if seen[key] {
			t.Fatalf("duplicate option %q even with pool padding: %v", opt, options)
		}
		seen[key] = true
	}
	if !seen["yes"] {
		t.Errorf("target gloss missing from options: %v", options)
	}
}

func TestShuffleFairness(t *testing.T) {
	// Every permutation of a 3-element slice should come up roughly equally
	// often. With 6000 trials the expected count per permutation is 1000;
	// a 20% band is far outside normal fluctuation.
	const trials = 6000
	r := rand.New(rand.NewSource(7))
	counts := make(map[string]int)

	for i := 0; i < trials; i++ {
		items := []string{"a", "b", "c"}
		Shuffle(r, items)
		counts[strings.Join(items, "")]++
	}

	if len(counts) != 6 {
		t.Fatalf("saw %d distinct permutations, want 6: %v", len(counts), counts)
	}
	expected := trials / 6
	for perm, n := range counts {
		if n < expected*8/10 || n > expected*12/10 {
			t.Errorf("permutation %s frequency %d outside [%d, %d]", perm, n, expected*8/10, expected*12/10)
		}
	}
}

func TestShuffleDegenerateInputs(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	var empty []int
	Shuffle(r, empty) // must not panic

	single := []int{42}
	Shuffle(r, single)
	if single[0] != 42 {
		t.Errorf("single-element shuffle changed contents: %v", single)
	}
}

func TestSessionLifecycle(t *testing.T) {
	svc := newTestService()
	lesson := fourWordLesson()

	var sess models.LessonSession
	svc.InitLessonSession(&sess, lesson, &BuildOptions{Difficulty: DifficultyBeginner})

	if svc.IsComplete(&sess) {
		t.Error("fresh session should not be complete")
	}
	if got := svc.LessonAccuracy(&sess); got != 100 {
		t.Errorf("fresh session accuracy = %d, want 100", got)
	}
	if svc.CurrentChallenge(&sess) == nil {
		t.Fatal("fresh session should have a current challenge")
	}

	svc.RecordCorrect(&sess)
	svc.RecordCorrect(&sess)
	svc.RecordMistake(&sess, &models.Word{PT: "erro"})

	if sess.Correct != 2 || sess.Mistakes != 1 {
		t.Errorf("counters = %d correct / %d mistakes, want 2/1", sess.Correct, sess.Mistakes)
	}
	if len(sess.WrongAnswers) != 1 || sess.WrongAnswers[0].PT != "erro" {
		t.Errorf("wrongAnswers = %v, want one entry for 'erro'", sess.WrongAnswers)
	}
	if got := svc.LessonAccuracy(&sess); got != 67 {
		t.Errorf("accuracy after 2/3 = %d, want 67", got)
	}

	// Mistake without a word bumps the counter but logs nothing.
	svc.RecordMistake(&sess, nil)
	if sess.Mistakes != 2 || len(sess.WrongAnswers) != 1 {
		t.Errorf("after nil-word mistake: mistakes=%d wrongAnswers=%d, want 2/1", sess.Mistakes, len(sess.WrongAnswers))
	}
}

func TestNextChallengeAdvancesWithoutClamping(t *testing.T) {
	svc := newTestService()
	lesson := fourWordLesson()

	var sess models.LessonSession
	svc.InitLessonSession(&sess, lesson, &BuildOptions{Difficulty: DifficultyBeginner})
	total := len(sess.Challenges)

	for i := 0; i < total; i++ {
		if svc.CurrentChallenge(&sess) == nil {
			t.Fatalf("challenge %d missing", i)
		}
		svc.NextChallenge(&sess)
	}

	if !svc.IsComplete(&sess) {
		t.Error("session should be complete after advancing past the last challenge")
	}
	if svc.CurrentChallenge(&sess) != nil {
		t.Error("current challenge past the end should be nil, not a panic")
	}

	// Further advances keep incrementing; completion holds.
	svc.NextChallenge(&sess)
	svc.NextChallenge(&sess)
	if sess.CurrentIndex != total+2 {
		t.Errorf("index after over-advancing = %d, want %d", sess.CurrentIndex, total+2)
	}
	if !svc.IsComplete(&sess) {
		t.Error("over-advanced session should stay complete")
	}
}

func TestInitReplacesSessionUnconditionally(t *testing.T) {
	svc := newTestService()
	lesson := fourWordLesson()

	var sess models.LessonSession
	svc.InitLessonSession(&sess, lesson, nil)
	svc.RecordCorrect(&sess)
	svc.NextChallenge(&sess)

	svc.InitLessonSession(&sess, lesson, nil)
	if sess.Correct != 0 || sess.Mistakes != 0 || sess.CurrentIndex != 0 {
		t.Errorf("re-init did not reset run state: %+v", sess)
	}
	if sess.StartedAt.IsZero() {
		t.Error("re-init should restart the clock")
	}
}

func TestEmptyLessonIsImmediatelyComplete(t *testing.T) {
	svc := newTestService()
	lesson := &models.Lesson{ID: "empty-002"}

	var sess models.LessonSession
	svc.InitLessonSession(&sess, lesson, nil)

	if !svc.IsComplete(&sess) {
		t.Error("session over an empty challenge list should be complete at init")
	}
	if got := svc.Progress(&sess); got != 0 {
		t.Errorf("progress of empty run = %v, want 0", got)
	}
}

func TestResetLessonSession(t *testing.T) {
	svc := newTestService()
	lesson := fourWordLesson()

	var sess models.LessonSession
	svc.InitLessonSession(&sess, lesson, nil)
	svc.RecordCorrect(&sess)
	svc.RecordMistake(&sess, &models.Word{PT: "erro"})
	svc.NextChallenge(&sess)

	svc.ResetLessonSession(&sess)

	state := svc.SessionState(&sess)
	if state.Lesson != nil {
		t.Error("reset state should have nil lesson")
	}
	if len(state.Challenges) != 0 {
		t.Errorf("reset state has %d challenges, want 0", len(state.Challenges))
	}
	if state.CurrentIndex != 0 || state.Correct != 0 || state.Mistakes != 0 {
		t.Errorf("reset state kept counters: %+v", state)
	}
	if state.IsComplete {
		t.Error("uninitialized session should not read as complete")
	}

	// Reset is idempotent.
	svc.ResetLessonSession(&sess)
	again := svc.SessionState(&sess)
	if again.Lesson != nil || len(again.Challenges) != 0 || again.CurrentIndex != 0 {
		t.Errorf("double reset changed state: %+v", again)
	}
}

func TestSessionStateIsDerived(t *testing.T) {
	svc := newTestService()
	lesson := fourWordLesson()

	var sess models.LessonSession
	svc.InitLessonSession(&sess, lesson, &BuildOptions{Difficulty: DifficultyBeginner})
	total := len(sess.Challenges)

	for i := 0; i <= total; i++ {
		state := svc.SessionState(&sess)
		wantProgress := float64(i) / float64(total) * 100
		if state.Progress != wantProgress {
			t.Errorf("progress at %d/%d = %v, want %v", i, total, state.Progress, wantProgress)
		}
		wantComplete := i >= total
		if state.IsComplete != wantComplete {
			t.Errorf("isComplete at %d/%d = %v, want %v", i, total, state.IsComplete, wantComplete)
		}
		svc.NextChallenge(&sess)
	}
}

func TestBuildLessonCompletionData(t *testing.T) {
	svc := newTestService()
	lesson := &models.Lesson{
		ID: "bb-002",
		Words: []models.Word{
			{PT: "obrigado", EN: "Thank you", GenderForms: map[string]string{"male": "obrigado", "female": "obrigada", "neutral": "obrigado"}},
			{PT: "por favor", EN: "Please"},
		},
	}

	var sess models.LessonSession
	svc.InitLessonSession(&sess, lesson, nil)
	sess.StartedAt = time.Now().Add(-90 * time.Second)
	svc.RecordCorrect(&sess)
	svc.RecordCorrect(&sess)
	svc.RecordCorrect(&sess)
	svc.RecordMistake(&sess, &lesson.Words[1])

	record := svc.BuildLessonCompletionData(&sess, "female")

	if record.LessonID != "bb-002" {
		t.Errorf("lessonId = %s, want bb-002", record.LessonID)
	}
	if record.WordCount != 2 {
		t.Errorf("wordCount = %d, want 2", record.WordCount)
	}
	if record.Duration < 89 || record.Duration > 91 {
		t.Errorf("duration = %d, want ~90", record.Duration)
	}
	if record.Accuracy != 75 {
		t.Errorf("accuracy = %d, want 75", record.Accuracy)
	}
	if len(record.LearnedWords) != 2 {
		t.Fatalf("learnedWords = %d, want 2", len(record.LearnedWords))
	}
	first := record.LearnedWords[0]
	if first.PT != "obrigada" || first.ResolvedFrom != "obrigado" || first.GenderUsed != "female" {
		t.Errorf("resolved word = %+v, want obrigada resolved from obrigado for female", first)
	}
	if first.SRSLevel != 1 || first.LastReviewed.IsZero() {
		t.Errorf("SRS bookkeeping = %+v, want level 1 and fresh timestamp", first)
	}
	if len(record.WrongAnswers) != 1 {
		t.Errorf("wrongAnswers = %d, want 1", len(record.WrongAnswers))
	}

	// Building the record must not touch the session.
	if sess.Correct != 3 || sess.Mistakes != 1 {
		t.Errorf("session mutated by completion build: %+v", sess)
	}
}

func TestCompletionDurationMinimumOneSecond(t *testing.T) {
	svc := newTestService()

	var sess models.LessonSession
	svc.InitLessonSession(&sess, fourWordLesson(), nil)

	record := svc.BuildLessonCompletionData(&sess, "")
	if record.Duration < 1 {
		t.Errorf("duration = %d, want at least 1", record.Duration)
	}
}

func TestPickWordsBounds(t *testing.T) {
	svc := newTestService()
	words := fourWordLesson().Words

	tests := []struct {
		n    int
		want int
	}{
		{n: 0, want: 0},
		{n: 2, want: 2},
		{n: 4, want: 4},
		{n: 99, want: 4},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			if got := len(svc.pickWords(words, tt.n)); got != tt.want {
				t.Errorf("pickWords(%d) returned %d words, want %d", tt.n, got, tt.want)
			}
		})
	}
}
