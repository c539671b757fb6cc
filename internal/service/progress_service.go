package service

import (
	"fmt"

	"lusolingo/internal/models"
	"lusolingo/internal/repository"
)

// ProgressService joins the lesson engine to stored learner history: it
// finalizes runs into completion records, answers availability questions,
// and feeds prior results back into challenge generation.
type ProgressService struct {
	lessons      *LessonService
	loader       *LessonLoader
	progressRepo *repository.ProgressRepository
}

// NewProgressService creates a new progress service.
func NewProgressService(lessons *LessonService, loader *LessonLoader, progressRepo *repository.ProgressRepository) *ProgressService {
	return &ProgressService{
		lessons:      lessons,
		loader:       loader,
		progressRepo: progressRepo,
	}
}

// ProgressOverview is the learner's dashboard payload.
type ProgressOverview struct {
	Stats          models.ProgressStats          `json:"stats"`
	BuildingBlocks models.BuildingBlocksProgress `json:"buildingBlocks"`
	TotalXP        int                           `json:"totalXp"`
	NextLesson     *models.Lesson                `json:"nextLesson,omitempty"`
}

// CompleteLesson finalizes a finished run: snapshots it into a completion
// record using the learner's speaker gender, scores the XP, and persists
// everything. The record and earned XP come back for the response payload.
func (s *ProgressService) CompleteLesson(userID int64, sess *models.LessonSession, speakerGender string) (models.CompletionRecord, int, error) {
	record := s.lessons.BuildLessonCompletionData(sess, speakerGender)
	xp := CalculateLessonXP(record)

	if err := s.progressRepo.SaveCompletion(userID, record, xp); err != nil {
		return models.CompletionRecord{}, 0, fmt.Errorf("failed to save completion: %w", err)
	}
	return record, xp, nil
}

// BuildOptionsFor assembles challenge-generation options from the learner's
// history with this lesson.
func (s *ProgressService) BuildOptionsFor(userID int64, lessonID string, difficulty Difficulty) (*BuildOptions, error) {
	accuracy, completions, err := s.progressRepo.LessonHistory(userID, lessonID)
	if err != nil {
		return nil, err
	}
	return &BuildOptions{
		Difficulty:       difficulty,
		PriorAccuracy:    accuracy,
		PriorCompletions: completions,
	}, nil
}

// CheckAvailability runs the prerequisite check against the learner's stored
// completions.
func (s *ProgressService) CheckAvailability(userID int64, lessonID string) (models.LessonAvailability, error) {
	completed, err := s.progressRepo.CompletedLessonIDs(userID)
	if err != nil {
		return models.LessonAvailability{}, err
	}
	return s.loader.CheckLessonAvailability(lessonID, completed), nil
}

// AvailableLessons lists the lessons the learner can start right now.
func (s *ProgressService) AvailableLessons(userID int64) ([]models.Lesson, error) {
	completed, err := s.progressRepo.CompletedLessonIDs(userID)
	if err != nil {
		return nil, err
	}
	return s.loader.AvailableLessons(completed), nil
}

// Overview builds the learner's progress dashboard.
func (s *ProgressService) Overview(userID int64) (*ProgressOverview, error) {
	completed, err := s.progressRepo.CompletedLessonIDs(userID)
	if err != nil {
		return nil, err
	}
	xp, err := s.progressRepo.TotalXP(userID)
	if err != nil {
		return nil, err
	}

	return &ProgressOverview{
		Stats:          s.loader.ProgressStats(completed),
		BuildingBlocks: s.loader.BuildingBlocksProgress(completed),
		TotalXP:        xp,
		NextLesson:     s.loader.NextRecommendedLesson(completed),
	}, nil
}

// Hints ranks the learner's stored mistakes and returns study tips.
func (s *ProgressService) Hints(userID int64, limit int) ([]models.Hint, error) {
	stats, err := s.progressRepo.MistakeStats(userID)
	if err != nil {
		return nil, err
	}
	return GenerateHints(stats, limit), nil
}
