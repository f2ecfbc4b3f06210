package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"steam4all/internal/database"
	"steam4all/internal/logger"
	"steam4all/internal/models"
	"steam4all/internal/repository"
)

// BackupVersion is written into every export
const BackupVersion = "1.0"

// BackupData is the JSON document produced by Export
type BackupData struct {
	Version      string           `json:"version"`
	ExportedAt   time.Time        `json:"exported_at"`
	DatabaseType string           `json:"database_type"`
	Progress     []ProgressBackup `json:"progress"`
	Attempts     []AttemptBackup  `json:"attempts"`
}

// ProgressBackup is one learner's stored lesson index
type ProgressBackup struct {
	LearnerID   string    `json:"learner_id"`
	LessonIndex string    `json:"lesson_index"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AttemptBackup is one logged run
type AttemptBackup struct {
	LearnerID   string    `json:"learner_id"`
	LessonID    string    `json:"lesson_id"`
	Succeeded   bool      `json:"succeeded"`
	IsError     bool      `json:"is_error"`
	AttemptedAt time.Time `json:"attempted_at"`
}

// ImportStats reports what an import wrote
type ImportStats struct {
	Progress int
	Attempts int
}

// BackupService exports and restores learner progress and run history
type BackupService struct {
	db  *database.DB
	log *logger.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, log *logger.Logger) *BackupService {
	return &BackupService{db: db, log: log.With("service", "BackupService")}
}

// Export writes every progress row and run attempt to w as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup := &BackupData{
		Version:      BackupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.db.Dialect.DriverName(),
	}

	progress, err := repository.NewProgressRepository(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export progress: %w", err)
	}
	for _, p := range progress {
		backup.Progress = append(backup.Progress, ProgressBackup{
			LearnerID:   p.LearnerID,
			LessonIndex: p.LessonIndex,
			UpdatedAt:   p.UpdatedAt,
		})
	}

	attempts, err := repository.NewAttemptRepository(s.db).ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to export attempts: %w", err)
	}
	for _, a := range attempts {
		backup.Attempts = append(backup.Attempts, AttemptBackup{
			LearnerID:   a.LearnerID,
			LessonID:    a.LessonID,
			Succeeded:   a.Succeeded,
			IsError:     a.IsError,
			AttemptedAt: a.AttemptedAt,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}

	s.log.Info("export complete", "progress", len(backup.Progress), "attempts", len(backup.Attempts))
	return backup, nil
}

// Import restores a backup read from r in a single transaction. Progress
// rows replace existing ones for the same learner; the attempt history of
// every learner in the backup is replaced by the backup's.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return ImportStats{}, fmt.Errorf("failed to decode backup: %w", err)
	}
	if backup.Version != BackupVersion {
		return ImportStats{}, fmt.Errorf("unsupported backup version %q", backup.Version)
	}
	s.log.Info("importing backup", "exported_at", backup.ExportedAt, "source", backup.DatabaseType)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	progressRepo := repository.NewProgressRepository(tx)
	attemptRepo := repository.NewAttemptRepository(tx)

	var stats ImportStats
	for _, p := range backup.Progress {
		if p.LearnerID == "" {
			continue
		}
		if err := progressRepo.SaveIndex(ctx, p.LearnerID, p.LessonIndex); err != nil {
			return ImportStats{}, err
		}
		stats.Progress++
	}

	cleared := make(map[string]bool)
	for _, a := range backup.Attempts {
		if a.LearnerID == "" {
			continue
		}
		if !cleared[a.LearnerID] {
			if err := attemptRepo.DeleteByLearner(ctx, a.LearnerID); err != nil {
				return ImportStats{}, err
			}
			cleared[a.LearnerID] = true
		}
		_, err := attemptRepo.Record(ctx, models.RunAttempt{
			LearnerID:   a.LearnerID,
			LessonID:    a.LessonID,
			Succeeded:   a.Succeeded,
			IsError:     a.IsError,
			AttemptedAt: a.AttemptedAt,
		})
		if err != nil {
			return ImportStats{}, err
		}
		stats.Attempts++
	}

	if err := tx.Commit(); err != nil {
		return ImportStats{}, fmt.Errorf("failed to commit import: %w", err)
	}
	s.log.Info("import complete", "progress", stats.Progress, "attempts", stats.Attempts)
	return stats, nil
}

// Stats returns attempt and success counts per lesson
func (s *BackupService) Stats(ctx context.Context) ([]models.LessonStats, error) {
	return repository.NewAttemptRepository(s.db).StatsByLesson(ctx)
}
