package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"steam4all/internal/database"
	"steam4all/internal/models"
)

// ProgressRepository stores each learner's lesson index in SQL
type ProgressRepository struct {
	db database.DBTX
}

func NewProgressRepository(db database.DBTX) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// LoadIndex returns the stored index text, or "" when the learner has none
func (r *ProgressRepository) LoadIndex(ctx context.Context, learnerID string) (string, error) {
	var index string
	err := r.db.QueryRowContext(ctx,
		`SELECT lesson_index FROM learner_progress WHERE learner_id = ?`, learnerID,
	).Scan(&index)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load progress for %s: %w", learnerID, err)
	}
	return index, nil
}

// SaveIndex writes the learner's index, replacing any earlier value
func (r *ProgressRepository) SaveIndex(ctx context.Context, learnerID, index string) error {
	if _, err := r.db.ExecContext(ctx, r.db.GetDialect().UpsertProgress(), learnerID, index); err != nil {
		return fmt.Errorf("save progress for %s: %w", learnerID, err)
	}
	return nil
}

// Delete forgets a learner's progress
func (r *ProgressRepository) Delete(ctx context.Context, learnerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM learner_progress WHERE learner_id = ?`, learnerID)
	return err
}

// List returns every stored progress row ordered by learner
func (r *ProgressRepository) List(ctx context.Context) ([]models.LearnerProgress, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT learner_id, lesson_index, updated_at FROM learner_progress ORDER BY learner_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LearnerProgress
	for rows.Next() {
		var p models.LearnerProgress
		if err := rows.Scan(&p.LearnerID, &p.LessonIndex, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
