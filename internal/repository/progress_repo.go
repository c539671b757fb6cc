package repository

import (
	"database/sql"
	"fmt"
	"math"

	"lusolingo/internal/database"
	"lusolingo/internal/models"
)

// ProgressRepository persists lesson completions, learned words, and the
// per-word mistake history the hint engine ranks.
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository.
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// SaveCompletion stores one completion record atomically: the completion row,
// its learned-word snapshots, and the mistake tallies for every wrong answer.
func (r *ProgressRepository) SaveCompletion(userID int64, record models.CompletionRecord, xp int) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	completionID, err := tx.ExecReturningID(`
		INSERT INTO completions (user_id, lesson_id, word_count, duration_seconds, accuracy, correct, mistakes, xp, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, userID, record.LessonID, record.WordCount, record.Duration, record.Accuracy, record.Correct, record.Mistakes, xp, record.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert completion: %w", err)
	}

	for _, word := range record.LearnedWords {
		_, err := tx.Exec(`
			INSERT INTO learned_words (completion_id, user_id, pt, en, resolved_from, gender_used, srs_level, last_reviewed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, completionID, userID, word.PT, word.EN, word.ResolvedFrom, word.GenderUsed, word.SRSLevel, word.LastReviewed)
		if err != nil {
			return fmt.Errorf("failed to insert learned word: %w", err)
		}
	}

	for _, word := range record.WrongAnswers {
		if err := bumpMistake(tx, userID, word, record.Timestamp); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completion: %w", err)
	}
	return nil
}

// bumpMistake increments the tally for one wrong answer. Select-then-write
// keeps the upsert portable across all three dialects.
func bumpMistake(tx *database.Tx, userID int64, word models.Word, seenAt interface{}) error {
	var count int
	err := tx.QueryRow(
		"SELECT count FROM mistakes WHERE user_id = ? AND pt = ? AND en = ?",
		userID, word.PT, word.EN,
	).Scan(&count)

	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(
			"INSERT INTO mistakes (user_id, pt, en, count, last_seen) VALUES (?, ?, ?, 1, ?)",
			userID, word.PT, word.EN, seenAt,
		)
	case err == nil:
		_, err = tx.Exec(
			"UPDATE mistakes SET count = count + 1, last_seen = ? WHERE user_id = ? AND pt = ? AND en = ?",
			seenAt, userID, word.PT, word.EN,
		)
	}
	if err != nil {
		return fmt.Errorf("failed to record mistake: %w", err)
	}
	return nil
}

// CompletedLessonIDs returns the distinct lesson ids the user has finished.
// The lesson loader feeds these into prerequisite checks.
func (r *ProgressRepository) CompletedLessonIDs(userID int64) ([]string, error) {
	rows, err := r.db.Query("SELECT DISTINCT lesson_id FROM completions WHERE user_id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed lessons: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan lesson id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// RecentCompletions returns the user's latest completion rows, newest first.
// Learned-word snapshots are not joined in; use LearnedWords for review data.
func (r *ProgressRepository) RecentCompletions(userID int64, limit int) ([]models.CompletionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`
		SELECT lesson_id, word_count, duration_seconds, accuracy, correct, mistakes, completed_at
		FROM completions
		WHERE user_id = ?
		ORDER BY completed_at DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query completions: %w", err)
	}
	defer rows.Close()

	var records []models.CompletionRecord
	for rows.Next() {
		var rec models.CompletionRecord
		if err := rows.Scan(&rec.LessonID, &rec.WordCount, &rec.Duration, &rec.Accuracy, &rec.Correct, &rec.Mistakes, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LearnedWords returns every word the user has learned, most recently
// reviewed first.
func (r *ProgressRepository) LearnedWords(userID int64) ([]models.LearnedWord, error) {
	rows, err := r.db.Query(`
		SELECT pt, en, resolved_from, gender_used, srs_level, last_reviewed
		FROM learned_words
		WHERE user_id = ?
		ORDER BY last_reviewed DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query learned words: %w", err)
	}
	defer rows.Close()

	var words []models.LearnedWord
	for rows.Next() {
		var w models.LearnedWord
		if err := rows.Scan(&w.PT, &w.EN, &w.ResolvedFrom, &w.GenderUsed, &w.SRSLevel, &w.LastReviewed); err != nil {
			return nil, fmt.Errorf("failed to scan learned word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// MistakeStats returns the user's wrong-answer tallies for hint generation.
func (r *ProgressRepository) MistakeStats(userID int64) ([]models.MistakeStat, error) {
	rows, err := r.db.Query(`
		SELECT pt, en, count, last_seen
		FROM mistakes
		WHERE user_id = ?
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mistakes: %w", err)
	}
	defer rows.Close()

	var stats []models.MistakeStat
	for rows.Next() {
		var stat models.MistakeStat
		if err := rows.Scan(&stat.Word.PT, &stat.Word.EN, &stat.Count, &stat.LastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan mistake: %w", err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// TotalXP sums the experience the user has earned across all completions.
func (r *ProgressRepository) TotalXP(userID int64) (int, error) {
	var xp int
	err := r.db.QueryRow("SELECT COALESCE(SUM(xp), 0) FROM completions WHERE user_id = ?", userID).Scan(&xp)
	if err != nil {
		return 0, fmt.Errorf("failed to sum xp: %w", err)
	}
	return xp, nil
}

// LessonHistory returns the user's average accuracy and completion count for
// one lesson. Zero attempts reads as 0 accuracy; the challenge builder treats
// that as "nothing unlocked yet".
func (r *ProgressRepository) LessonHistory(userID int64, lessonID string) (accuracy, completions int, err error) {
	var avg sql.NullFloat64
	err = r.db.QueryRow(`
		SELECT AVG(accuracy), COUNT(*)
		FROM completions
		WHERE user_id = ? AND lesson_id = ?
	`, userID, lessonID).Scan(&avg, &completions)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to query lesson history: %w", err)
	}
	if avg.Valid {
		accuracy = int(math.Round(avg.Float64))
	}
	return accuracy, completions, nil
}
