package handlers

import (
	"net/http"
	"strconv"

	"lusolingo/internal/service"
)

// ProgressHandler serves per-learner progress and study endpoints
type ProgressHandler struct {
	progressService *service.ProgressService
	reportService   *service.ReportService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService, reportService *service.ReportService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
		reportService:   reportService,
	}
}

// Overview returns the learner's progress dashboard
func (h *ProgressHandler) Overview(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	overview, err := h.progressService.Overview(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to build progress overview", err)
		return
	}

	respondJSON(w, http.StatusOK, overview)
}

// BuildingBlocks reports progress through the tier-1 curriculum
func (h *ProgressHandler) BuildingBlocks(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	overview, err := h.progressService.Overview(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to build progress overview", err)
		return
	}

	respondJSON(w, http.StatusOK, overview.BuildingBlocks)
}

// Availability runs the prerequisite check for one lesson
func (h *ProgressHandler) Availability(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	availability, err := h.progressService.CheckAvailability(user.ID, r.PathValue("id"))
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Availability check failed", err)
		return
	}

	respondJSON(w, http.StatusOK, availability)
}

// AvailableLessons lists lessons the learner can start right now
func (h *ProgressHandler) AvailableLessons(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	lessons, err := h.progressService.AvailableLessons(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to list available lessons", err)
		return
	}

	respondJSON(w, http.StatusOK, lessons)
}

// Hints ranks the learner's repeated mistakes into study tips
func (h *ProgressHandler) Hints(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid limit", "", nil)
			return
		}
		limit = parsed
	}

	hints, err := h.progressService.Hints(user.ID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate hints", err)
		return
	}

	respondJSON(w, http.StatusOK, hints)
}

// SendReport emails the learner their progress summary
func (h *ProgressHandler) SendReport(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	if !h.reportService.IsEnabled() {
		respondWithError(w, http.StatusServiceUnavailable, "Progress reports are not configured", "", nil)
		return
	}

	overview, err := h.progressService.Overview(user.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to build progress overview", err)
		return
	}
	hints, err := h.progressService.Hints(user.ID, 0)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "Failed to generate hints", err)
		return
	}

	if err := h.reportService.SendProgressReport(r.Context(), user, overview, hints); err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to send report", "Progress report send failed", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"sent": true})
}
