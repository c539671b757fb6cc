package service

import (
	"testing"

	"lusolingo/internal/models"
)

func TestCalculateAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		attempts int
		correct  int
		want     int
	}{
		{"zero attempts", 0, 0, 0},
		{"all correct", 4, 4, 100},
		{"two of three rounds up", 3, 2, 67},
		{"one of three rounds down", 3, 1, 33},
		{"half", 4, 2, 50},
		{"none correct", 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateAccuracy(tt.attempts, tt.correct); got != tt.want {
				t.Errorf("CalculateAccuracy(%d, %d) = %d, want %d", tt.attempts, tt.correct, got, tt.want)
			}
		})
	}
}

// The two accuracy readings disagree on purpose at zero attempts: a live
// session that hasn't been answered yet reads 100, a stored record with no
// attempts reads 0.
func TestAccuracyZeroAttemptAsymmetry(t *testing.T) {
	svc := newTestService()
	var sess models.LessonSession
	svc.InitLessonSession(&sess, fourWordLesson(), nil)

	if got := svc.LessonAccuracy(&sess); got != 100 {
		t.Errorf("live session with no attempts = %d, want 100", got)
	}
	if got := CalculateAccuracy(0, 0); got != 0 {
		t.Errorf("stored zero-attempt accuracy = %d, want 0", got)
	}
}

func TestCalculateLessonXP(t *testing.T) {
	tests := []struct {
		name   string
		record models.CompletionRecord
		want   int
	}{
		{
			name:   "five words with mistakes and low accuracy",
			record: models.CompletionRecord{WordCount: 5, Accuracy: 70, Mistakes: 3},
			want:   20,
		},
		{
			name:   "five words high accuracy but not flawless",
			record: models.CompletionRecord{WordCount: 5, Accuracy: 92, Mistakes: 1},
			want:   25,
		},
		{
			name:   "five words flawless",
			record: models.CompletionRecord{WordCount: 5, Accuracy: 100, Mistakes: 0},
			want:   35,
		},
		{
			name:   "accuracy bonus at exactly 90",
			record: models.CompletionRecord{WordCount: 0, Accuracy: 90, Mistakes: 1},
			want:   15,
		},
		{
			name:   "zero words flawless",
			record: models.CompletionRecord{WordCount: 0, Accuracy: 100, Mistakes: 0},
			want:   25,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateLessonXP(tt.record); got != tt.want {
				t.Errorf("CalculateLessonXP(%+v) = %d, want %d", tt.record, got, tt.want)
			}
		})
	}
}

func TestNormalizeGender(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"male", GenderMale},
		{"MALE", GenderMale},
		{"  neutral ", GenderNeutral},
		{"female", GenderFemale},
		{"", GenderFemale},
		{"banana", GenderFemale},
	}
	for _, tt := range tests {
		if got := NormalizeGender(tt.in); got != tt.want {
			t.Errorf("NormalizeGender(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveWordForm(t *testing.T) {
	obrigadoForms := map[string]string{
		"male": "obrigado", "female": "obrigada", "neutral": "obrigado",
	}

	tests := []struct {
		name   string
		word   models.Word
		gender string
		want   string
	}{
		{
			name:   "explicit forms win for female",
			word:   models.Word{PT: "obrigado", GenderForms: obrigadoForms},
			gender: "female",
			want:   "obrigada",
		},
		{
			name:   "explicit forms win for male",
			word:   models.Word{PT: "obrigado", GenderForms: obrigadoForms},
			gender: "male",
			want:   "obrigado",
		},
		{
			name:   "missing entry falls back to neutral",
			word:   models.Word{PT: "obrigado", GenderForms: map[string]string{"neutral": "obrigado/a"}},
			gender: "female",
			want:   "obrigado/a",
		},
		{
			name:   "empty table falls back to raw text",
			word:   models.Word{PT: "olá", GenderForms: map[string]string{"male": ""}},
			gender: "male",
			want:   "olá",
		},
		{
			name:   "obrigado heuristic without forms",
			word:   models.Word{PT: "obrigado"},
			gender: "female",
			want:   "obrigada",
		},
		{
			name:   "muito obrigado keeps the suffix rule",
			word:   models.Word{PT: "muito obrigado"},
			gender: "female",
			want:   "muito obrigada",
		},
		{
			name:   "adjective swaps to feminine",
			word:   models.Word{PT: "cansado", IsAdjective: true},
			gender: "female",
			want:   "cansada",
		},
		{
			name:   "adjective swaps to masculine",
			word:   models.Word{PT: "perdida", IsAdjective: true},
			gender: "male",
			want:   "perdido",
		},
		{
			name:   "neutral leaves obrigado alone",
			word:   models.Word{PT: "obrigado"},
			gender: "neutral",
			want:   "obrigado",
		},
		{
			name:   "non-adjective noun untouched",
			word:   models.Word{PT: "comboio"},
			gender: "female",
			want:   "comboio",
		},
		{
			name:   "unknown gender defaults to female",
			word:   models.Word{PT: "obrigado"},
			gender: "",
			want:   "obrigada",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveWordForm(tt.word, tt.gender); got != tt.want {
				t.Errorf("ResolveWordForm(%q, %q) = %q, want %q", tt.word.PT, tt.gender, got, tt.want)
			}
		})
	}
}

// Round trip: a word resolved for one gender keeps its original text in
// ResolvedFrom, so switching speaker gender later can re-resolve it.
func TestCompletionKeepsResolutionSource(t *testing.T) {
	svc := newTestService()
	lesson := &models.Lesson{
		ID:    "bb-002",
		Words: []models.Word{{PT: "obrigado", EN: "Thank you"}},
	}

	var sess models.LessonSession
	svc.InitLessonSession(&sess, lesson, nil)

	female := svc.BuildLessonCompletionData(&sess, "female")
	male := svc.BuildLessonCompletionData(&sess, "male")

	if female.LearnedWords[0].PT != "obrigada" || male.LearnedWords[0].PT != "obrigado" {
		t.Errorf("resolved forms = %q / %q, want obrigada / obrigado",
			female.LearnedWords[0].PT, male.LearnedWords[0].PT)
	}
	if female.LearnedWords[0].ResolvedFrom != "obrigado" || male.LearnedWords[0].ResolvedFrom != "obrigado" {
		t.Error("ResolvedFrom should keep the dictionary form for both genders")
	}
}
