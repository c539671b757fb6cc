package handlers

import (
	"net/http"
	"strconv"

	"lusolingo/internal/models"
	"lusolingo/internal/service"
	"lusolingo/internal/sessionstore"
	"lusolingo/internal/validation"
)

// RunHandler drives a learner's live lesson run. The mutable session lives in
// the run store keyed by user id, so one run is active per learner at a time
// and starting a new lesson replaces the previous run.
type RunHandler struct {
	store           sessionstore.Store
	lessonService   *service.LessonService
	loader          *service.LessonLoader
	progressService *service.ProgressService
}

// NewRunHandler creates a new run handler
func NewRunHandler(store sessionstore.Store, lessonService *service.LessonService, loader *service.LessonLoader, progressService *service.ProgressService) *RunHandler {
	return &RunHandler{
		store:           store,
		lessonService:   lessonService,
		loader:          loader,
		progressService: progressService,
	}
}

func runKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (h *RunHandler) activeRun(w http.ResponseWriter, r *http.Request) (*models.User, *models.LessonSession, bool) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return nil, nil, false
	}

	sess, err := h.store.Get(r.Context(), runKey(user.ID))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load lesson run", err)
		return nil, nil, false
	}
	if sess == nil {
		respondWithError(w, http.StatusNotFound, "No active lesson run", "", nil)
		return nil, nil, false
	}
	return user, sess, true
}

// Start begins a lesson run, replacing any run already in progress
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	var req struct {
		LessonID   string `json:"lessonId"`
		Difficulty string `json:"difficulty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if err := validation.ValidateDifficulty(req.Difficulty); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error(), "", nil)
		return
	}

	lesson := h.loader.LessonByID(req.LessonID)
	if lesson == nil {
		respondWithError(w, http.StatusNotFound, "Lesson not found", "", nil)
		return
	}

	availability, err := h.progressService.CheckAvailability(user.ID, lesson.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Availability check failed", err)
		return
	}
	if !availability.Available {
		respondWithError(w, http.StatusForbidden, availability.Reason, "", nil)
		return
	}

	opts, err := h.progressService.BuildOptionsFor(user.ID, lesson.ID, service.NormalizeDifficulty(req.Difficulty))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to load lesson history", err)
		return
	}

	sess := &models.LessonSession{}
	h.lessonService.InitLessonSession(sess, lesson, opts)

	if err := h.store.Save(r.Context(), runKey(user.ID), sess); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to store lesson run", err)
		return
	}

	respondJSON(w, http.StatusCreated, h.lessonService.SessionState(sess))
}

// State returns the full derived state of the active run
func (h *RunHandler) State(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.activeRun(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, h.lessonService.SessionState(sess))
}

// Current returns the challenge under the cursor, null once the run is done
func (h *RunHandler) Current(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.activeRun(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, map[string]*models.Challenge{
		"challenge": h.lessonService.CurrentChallenge(sess),
	})
}

// Answer records the outcome of the current challenge without advancing
func (h *RunHandler) Answer(w http.ResponseWriter, r *http.Request) {
	user, sess, ok := h.activeRun(w, r)
	if !ok {
		return
	}

	var req struct {
		Correct bool         `json:"correct"`
		Word    *models.Word `json:"word,omitempty"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", nil)
		return
	}

	if req.Correct {
		h.lessonService.RecordCorrect(sess)
	} else {
		h.lessonService.RecordMistake(sess, req.Word)
	}

	if err := h.store.Save(r.Context(), runKey(user.ID), sess); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to store lesson run", err)
		return
	}

	respondJSON(w, http.StatusOK, h.lessonService.SessionState(sess))
}

// Advance moves the cursor to the next challenge
func (h *RunHandler) Advance(w http.ResponseWriter, r *http.Request) {
	user, sess, ok := h.activeRun(w, r)
	if !ok {
		return
	}

	h.lessonService.NextChallenge(sess)

	if err := h.store.Save(r.Context(), runKey(user.ID), sess); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to store lesson run", err)
		return
	}

	respondJSON(w, http.StatusOK, h.lessonService.SessionState(sess))
}

// Reset abandons the active run
func (h *RunHandler) Reset(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	if err := h.store.Delete(r.Context(), runKey(user.ID)); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to reset lesson run", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Complete finalizes the run into a completion record and persists it
func (h *RunHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user, sess, ok := h.activeRun(w, r)
	if !ok {
		return
	}

	record, xp, err := h.progressService.CompleteLesson(user.ID, sess, user.SpeakerGender)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to save lesson completion", err)
		return
	}

	if err := h.store.Delete(r.Context(), runKey(user.ID)); err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to clear lesson run", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"completion": record,
		"xp":         xp,
	})
}
