package handlers

import (
	"net/http"
	"strconv"

	"lusolingo/internal/service"
)

// LessonHandler serves the lesson catalog
type LessonHandler struct {
	loader *service.LessonLoader
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(loader *service.LessonLoader) *LessonHandler {
	return &LessonHandler{loader: loader}
}

// Topics lists all topics in catalog order
func (h *LessonHandler) Topics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.loader.AllTopics())
}

// Topic returns one topic by id
func (h *LessonHandler) Topic(w http.ResponseWriter, r *http.Request) {
	topic := h.loader.TopicByID(r.PathValue("id"))
	if topic == nil {
		respondWithError(w, http.StatusNotFound, "Topic not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, topic)
}

// TopicLessons lists the lessons under a topic
func (h *LessonHandler) TopicLessons(w http.ResponseWriter, r *http.Request) {
	topicID := r.PathValue("id")
	if h.loader.TopicByID(topicID) == nil {
		respondWithError(w, http.StatusNotFound, "Topic not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, h.loader.LessonsByTopic(topicID))
}

// Lessons lists all lessons, optionally filtered by tier
func (h *LessonHandler) Lessons(w http.ResponseWriter, r *http.Request) {
	if tierStr := r.URL.Query().Get("tier"); tierStr != "" {
		tier, err := strconv.Atoi(tierStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid tier", "", nil)
			return
		}
		respondJSON(w, http.StatusOK, h.loader.LessonsByTier(tier))
		return
	}
	respondJSON(w, http.StatusOK, h.loader.AllLessons())
}

// Lesson returns one lesson by id or numeric index
func (h *LessonHandler) Lesson(w http.ResponseWriter, r *http.Request) {
	lesson := h.loader.LessonByID(r.PathValue("id"))
	if lesson == nil {
		respondWithError(w, http.StatusNotFound, "Lesson not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, lesson)
}

// LessonImage returns the image search query for a lesson's illustration
func (h *LessonHandler) LessonImage(w http.ResponseWriter, r *http.Request) {
	lesson := h.loader.LessonByID(r.PathValue("id"))
	if lesson == nil {
		respondWithError(w, http.StatusNotFound, "Lesson not found", "", nil)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"query": h.loader.LessonImageQuery(lesson)})
}

// InvalidateCatalog drops the memoized catalog so the next read reloads it
func (h *LessonHandler) InvalidateCatalog(w http.ResponseWriter, r *http.Request) {
	h.loader.Invalidate()
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
