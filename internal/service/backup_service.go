package service

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"lusolingo/internal/database"
)

// BackupData is the complete portable export: accounts plus the full
// progress history. The format is dialect-neutral, so a SQLite export can
// be imported into Postgres.
type BackupData struct {
	Version      string             `json:"version"`
	ExportedAt   time.Time          `json:"exported_at"`
	Users        []UserBackup       `json:"users"`
	Completions  []CompletionBackup `json:"completions"`
	LearnedWords []LearnedWordBackup `json:"learned_words"`
	Mistakes     []MistakeBackup    `json:"mistakes"`
}

// UserBackup is one account row.
type UserBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	SpeakerGender string    `json:"speaker_gender"`
	Premium       bool      `json:"premium"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// CompletionBackup is one lesson completion row.
type CompletionBackup struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	LessonID        string    `json:"lesson_id"`
	WordCount       int       `json:"word_count"`
	DurationSeconds int       `json:"duration_seconds"`
	Accuracy        int       `json:"accuracy"`
	Correct         int       `json:"correct"`
	Mistakes        int       `json:"mistakes"`
	XP              int       `json:"xp"`
	CompletedAt     time.Time `json:"completed_at"`
}

// LearnedWordBackup is one learned-word snapshot row.
type LearnedWordBackup struct {
	CompletionID int64     `json:"completion_id"`
	UserID       int64     `json:"user_id"`
	PT           string    `json:"pt"`
	EN           string    `json:"en"`
	ResolvedFrom string    `json:"resolved_from"`
	GenderUsed   string    `json:"gender_used"`
	SRSLevel     int       `json:"srs_level"`
	LastReviewed time.Time `json:"last_reviewed"`
}

// MistakeBackup is one mistake tally row.
type MistakeBackup struct {
	UserID   int64     `json:"user_id"`
	PT       string    `json:"pt"`
	EN       string    `json:"en"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// BackupService handles progress export and restore.
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service.
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export writes a complete backup to a file.
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}
	log.Printf("Progress exported to %s", outputPath)
	return nil
}

// ExportToWriter exports the full backup as indented JSON.
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportUsers(backup); err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	if err := s.exportCompletions(backup); err != nil {
		return fmt.Errorf("failed to export completions: %w", err)
	}
	if err := s.exportLearnedWords(backup); err != nil {
		return fmt.Errorf("failed to export learned words: %w", err)
	}
	if err := s.exportMistakes(backup); err != nil {
		return fmt.Errorf("failed to export mistakes: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(backup)
}

// Import restores a backup from a file. The target database should be empty.
func (s *BackupService) Import(inputPath string) error {
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFromReader(file)
}

// ImportFromReader restores a backup from a stream.
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	if err := json.NewDecoder(reader).Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Dependency order: users first, then completions, then their children.
	if err := s.importUsers(backup.Users); err != nil {
		return fmt.Errorf("failed to import users: %w", err)
	}
	if err := s.importCompletions(backup.Completions); err != nil {
		return fmt.Errorf("failed to import completions: %w", err)
	}
	if err := s.importLearnedWords(backup.LearnedWords); err != nil {
		return fmt.Errorf("failed to import learned words: %w", err)
	}
	if err := s.importMistakes(backup.Mistakes); err != nil {
		return fmt.Errorf("failed to import mistakes: %w", err)
	}

	log.Println("Progress import completed")
	return nil
}

func (s *BackupService) exportUsers(backup *BackupData) error {
	query := `SELECT id, email, password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
		speaker_gender, premium, created_at, updated_at FROM users ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var u UserBackup
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.OAuthProvider, &u.OAuthSubject,
			&u.SpeakerGender, &u.Premium, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return err
		}
		backup.Users = append(backup.Users, u)
	}
	return rows.Err()
}

func (s *BackupService) exportCompletions(backup *BackupData) error {
	query := `SELECT id, user_id, lesson_id, word_count, duration_seconds, accuracy, correct, mistakes, xp, completed_at
		FROM completions ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var c CompletionBackup
		if err := rows.Scan(&c.ID, &c.UserID, &c.LessonID, &c.WordCount, &c.DurationSeconds,
			&c.Accuracy, &c.Correct, &c.Mistakes, &c.XP, &c.CompletedAt); err != nil {
			return err
		}
		backup.Completions = append(backup.Completions, c)
	}
	return rows.Err()
}

func (s *BackupService) exportLearnedWords(backup *BackupData) error {
	query := `SELECT completion_id, user_id, pt, en, resolved_from, gender_used, srs_level, last_reviewed
		FROM learned_words ORDER BY id`
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var w LearnedWordBackup
		if err := rows.Scan(&w.CompletionID, &w.UserID, &w.PT, &w.EN, &w.ResolvedFrom,
			&w.GenderUsed, &w.SRSLevel, &w.LastReviewed); err != nil {
			return err
		}
		backup.LearnedWords = append(backup.LearnedWords, w)
	}
	return rows.Err()
}

func (s *BackupService) exportMistakes(backup *BackupData) error {
	query := "SELECT user_id, pt, en, count, last_seen FROM mistakes ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m MistakeBackup
		if err := rows.Scan(&m.UserID, &m.PT, &m.EN, &m.Count, &m.LastSeen); err != nil {
			return err
		}
		backup.Mistakes = append(backup.Mistakes, m)
	}
	return rows.Err()
}

func (s *BackupService) importUsers(users []UserBackup) error {
	log.Printf("Importing %d users...", len(users))
	for _, u := range users {
		query := `INSERT INTO users (id, email, password_hash, name, oauth_provider, oauth_subject, speaker_gender, premium, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, u.ID, u.Email, u.PasswordHash, u.Name,
			nullIfEmpty(u.OAuthProvider), nullIfEmpty(u.OAuthSubject), u.SpeakerGender, u.Premium, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import user %d: %w", u.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importCompletions(completions []CompletionBackup) error {
	log.Printf("Importing %d completions...", len(completions))
	for _, c := range completions {
		query := `INSERT INTO completions (id, user_id, lesson_id, word_count, duration_seconds, accuracy, correct, mistakes, xp, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, c.ID, c.UserID, c.LessonID, c.WordCount, c.DurationSeconds,
			c.Accuracy, c.Correct, c.Mistakes, c.XP, c.CompletedAt)
		if err != nil {
			return fmt.Errorf("failed to import completion %d: %w", c.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importLearnedWords(words []LearnedWordBackup) error {
	log.Printf("Importing %d learned words...", len(words))
	for _, w := range words {
		query := `INSERT INTO learned_words (completion_id, user_id, pt, en, resolved_from, gender_used, srs_level, last_reviewed)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := s.db.Exec(query, w.CompletionID, w.UserID, w.PT, w.EN, w.ResolvedFrom, w.GenderUsed, w.SRSLevel, w.LastReviewed)
		if err != nil {
			return fmt.Errorf("failed to import learned word %s: %w", w.PT, err)
		}
	}
	return nil
}

func (s *BackupService) importMistakes(mistakes []MistakeBackup) error {
	log.Printf("Importing %d mistakes...", len(mistakes))
	for _, m := range mistakes {
		query := "INSERT INTO mistakes (user_id, pt, en, count, last_seen) VALUES (?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, m.UserID, m.PT, m.EN, m.Count, m.LastSeen)
		if err != nil {
			return fmt.Errorf("failed to import mistake %s: %w", m.PT, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
