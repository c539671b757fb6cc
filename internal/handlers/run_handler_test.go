package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lusolingo/internal/catalog"
	"lusolingo/internal/database"
	"lusolingo/internal/models"
	"lusolingo/internal/repository"
	"lusolingo/internal/service"
	"lusolingo/internal/sessionstore"
)

func newRunTestEnv(t *testing.T) (*RunHandler, *models.User) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations/sqlite"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	user, err := userRepo.CreateUser("runner@example.com", "hash", "Runner")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	loader := service.NewLessonLoader(catalog.Load)
	if err := loader.Warm(); err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}

	lessonService := service.NewLessonService(service.DefaultDifficultyConfig())
	progressService := service.NewProgressService(lessonService, loader, repository.NewProgressRepository(db))

	store, err := sessionstore.New("", time.Hour)
	if err != nil {
		t.Fatalf("failed to create run store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return NewRunHandler(store, lessonService, loader, progressService), user
}

func authedRequest(user *models.User, method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	return req.WithContext(context.WithValue(req.Context(), UserContextKey, user))
}

func decodeState(t *testing.T, recorder *httptest.ResponseRecorder) models.SessionState {
	t.Helper()
	var state models.SessionState
	if err := json.Unmarshal(recorder.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode session state: %v", err)
	}
	return state
}

func TestRunLifecycle(t *testing.T) {
	h, user := newRunTestEnv(t)

	// No run yet
	recorder := httptest.NewRecorder()
	h.State(recorder, authedRequest(user, "GET", "/api/run", ""))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before start, got %d", recorder.Code)
	}

	// Start
	recorder = httptest.NewRecorder()
	h.Start(recorder, authedRequest(user, "POST", "/api/run/start", `{"lessonId":"bb-001","difficulty":"beginner"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", recorder.Code, recorder.Body.String())
	}
	state := decodeState(t, recorder)
	if len(state.Challenges) == 0 {
		t.Fatal("expected challenges to be generated")
	}
	if state.CurrentIndex != 0 || state.IsComplete {
		t.Fatalf("fresh run should start at 0, got index %d complete %v", state.CurrentIndex, state.IsComplete)
	}

	// Answer the first challenge correctly, then miss one
	recorder = httptest.NewRecorder()
	h.Answer(recorder, authedRequest(user, "POST", "/api/run/answer", `{"correct":true}`))
	state = decodeState(t, recorder)
	if state.Correct != 1 {
		t.Fatalf("expected 1 correct, got %d", state.Correct)
	}

	recorder = httptest.NewRecorder()
	h.Answer(recorder, authedRequest(user, "POST", "/api/run/answer", `{"correct":false,"word":{"pt":"olá","en":"Hello"}}`))
	state = decodeState(t, recorder)
	if state.Mistakes != 1 || len(state.WrongAnswers) != 1 {
		t.Fatalf("expected recorded mistake, got mistakes %d wrong %d", state.Mistakes, len(state.WrongAnswers))
	}

	// Advance through every challenge
	total := len(state.Challenges)
	for i := 0; i < total; i++ {
		recorder = httptest.NewRecorder()
		h.Advance(recorder, authedRequest(user, "POST", "/api/run/advance", ""))
		if recorder.Code != http.StatusOK {
			t.Fatalf("advance %d failed with %d", i, recorder.Code)
		}
	}
	state = decodeState(t, recorder)
	if !state.IsComplete {
		t.Fatal("expected run to be complete")
	}
	if state.CurrentChallenge != nil {
		t.Fatal("expected no current challenge after the end")
	}

	// Complete persists and clears the run
	recorder = httptest.NewRecorder()
	h.Complete(recorder, authedRequest(user, "POST", "/api/run/complete", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", recorder.Code, recorder.Body.String())
	}
	var result struct {
		Completion models.CompletionRecord `json:"completion"`
		XP         int                     `json:"xp"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode completion: %v", err)
	}
	if result.Completion.LessonID != "bb-001" {
		t.Errorf("expected lesson bb-001, got %s", result.Completion.LessonID)
	}
	if result.XP <= 0 {
		t.Errorf("expected positive xp, got %d", result.XP)
	}

	recorder = httptest.NewRecorder()
	h.State(recorder, authedRequest(user, "GET", "/api/run", ""))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after completion, got %d", recorder.Code)
	}
}

func TestRunStartRejectsGatedLesson(t *testing.T) {
	h, user := newRunTestEnv(t)

	recorder := httptest.NewRecorder()
	h.Start(recorder, authedRequest(user, "POST", "/api/run/start", `{"lessonId":"fd-001","difficulty":"beginner"}`))
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for gated lesson, got %d", recorder.Code)
	}
}

func TestRunStartNormalizesDifficulty(t *testing.T) {
	h, user := newRunTestEnv(t)

	recorder := httptest.NewRecorder()
	h.Start(recorder, authedRequest(user, "POST", "/api/run/start", `{"lessonId":"bb-001","difficulty":"beginner"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("beginner start failed with %d", recorder.Code)
	}
	beginnerTotal := len(decodeState(t, recorder).Challenges)

	// Mixed-case input must build the full advanced run, not fall through
	// to the beginner phase set.
	recorder = httptest.NewRecorder()
	h.Start(recorder, authedRequest(user, "POST", "/api/run/start", `{"lessonId":"bb-001","difficulty":"Advanced"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("mixed-case start failed with %d: %s", recorder.Code, recorder.Body.String())
	}
	state := decodeState(t, recorder)
	if len(state.Challenges) <= beginnerTotal {
		t.Fatalf("mixed-case advanced run has %d challenges, beginner has %d; want more", len(state.Challenges), beginnerTotal)
	}
	hasPronunciation := false
	for _, ch := range state.Challenges {
		if ch.Kind == models.KindPronunciation {
			hasPronunciation = true
			break
		}
	}
	if !hasPronunciation {
		t.Fatal("mixed-case advanced run is missing the pronunciation phase")
	}
}

func TestRunStartReplacesActiveRun(t *testing.T) {
	h, user := newRunTestEnv(t)

	recorder := httptest.NewRecorder()
	h.Start(recorder, authedRequest(user, "POST", "/api/run/start", `{"lessonId":"bb-001","difficulty":"beginner"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("first start failed with %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	h.Answer(recorder, authedRequest(user, "POST", "/api/run/answer", `{"correct":true}`))
	if decodeState(t, recorder).Correct != 1 {
		t.Fatal("expected counter bump")
	}

	recorder = httptest.NewRecorder()
	h.Start(recorder, authedRequest(user, "POST", "/api/run/start", `{"lessonId":"bb-001","difficulty":"beginner"}`))
	state := decodeState(t, recorder)
	if state.Correct != 0 || state.CurrentIndex != 0 {
		t.Fatalf("restart should discard the previous run, got correct %d index %d", state.Correct, state.CurrentIndex)
	}
}

func TestRunResetClearsRun(t *testing.T) {
	h, user := newRunTestEnv(t)

	recorder := httptest.NewRecorder()
	h.Start(recorder, authedRequest(user, "POST", "/api/run/start", `{"lessonId":"bb-001","difficulty":"beginner"}`))
	if recorder.Code != http.StatusCreated {
		t.Fatalf("start failed with %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	h.Reset(recorder, authedRequest(user, "POST", "/api/run/reset", ""))
	if recorder.Code != http.StatusOK {
		t.Fatalf("reset failed with %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	h.State(recorder, authedRequest(user, "GET", "/api/run", ""))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after reset, got %d", recorder.Code)
	}
}

func TestRunStartUnknownLesson(t *testing.T) {
	h, user := newRunTestEnv(t)

	recorder := httptest.NewRecorder()
	h.Start(recorder, authedRequest(user, "POST", "/api/run/start", `{"lessonId":"nope","difficulty":"beginner"}`))
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", recorder.Code)
	}
}
