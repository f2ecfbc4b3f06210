package repository

import (
	"context"
	"fmt"

	"steam4all/internal/database"
	"steam4all/internal/models"
)

// AttemptRepository logs completed simulated runs
type AttemptRepository struct {
	db database.DBTX
}

func NewAttemptRepository(db database.DBTX) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Record inserts a run attempt and returns its id. A zero AttemptedAt uses
// the database clock.
func (r *AttemptRepository) Record(ctx context.Context, a models.RunAttempt) (int64, error) {
	var (
		id  int64
		err error
	)
	if a.AttemptedAt.IsZero() {
		id, err = r.db.ExecReturningID(ctx,
			`INSERT INTO run_attempts (learner_id, lesson_id, succeeded, is_error) VALUES (?, ?, ?, ?)`,
			a.LearnerID, a.LessonID, a.Succeeded, a.IsError)
	} else {
		id, err = r.db.ExecReturningID(ctx,
			`INSERT INTO run_attempts (learner_id, lesson_id, succeeded, is_error, attempted_at) VALUES (?, ?, ?, ?, ?)`,
			a.LearnerID, a.LessonID, a.Succeeded, a.IsError, a.AttemptedAt.UTC())
	}
	if err != nil {
		return 0, fmt.Errorf("record run attempt: %w", err)
	}
	return id, nil
}

// ListByLearner returns a learner's attempts, oldest first
func (r *AttemptRepository) ListByLearner(ctx context.Context, learnerID string) ([]models.RunAttempt, error) {
	return r.list(ctx, `
		SELECT id, learner_id, lesson_id, succeeded, is_error, attempted_at
		FROM run_attempts WHERE learner_id = ? ORDER BY id`, learnerID)
}

// ListAll returns every attempt, oldest first
func (r *AttemptRepository) ListAll(ctx context.Context) ([]models.RunAttempt, error) {
	return r.list(ctx, `
		SELECT id, learner_id, lesson_id, succeeded, is_error, attempted_at
		FROM run_attempts ORDER BY id`)
}

func (r *AttemptRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.RunAttempt, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RunAttempt
	for rows.Next() {
		var a models.RunAttempt
		if err := rows.Scan(&a.ID, &a.LearnerID, &a.LessonID, &a.Succeeded, &a.IsError, &a.AttemptedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// StatsByLesson counts attempts and successes per lesson id
func (r *AttemptRepository) StatsByLesson(ctx context.Context) ([]models.LessonStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT lesson_id, COUNT(*), SUM(CASE WHEN succeeded THEN 1 ELSE 0 END)
		FROM run_attempts GROUP BY lesson_id ORDER BY lesson_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.LessonStats
	for rows.Next() {
		var s models.LessonStats
		if err := rows.Scan(&s.LessonID, &s.Attempts, &s.Successes); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteByLearner removes a learner's attempt history
func (r *AttemptRepository) DeleteByLearner(ctx context.Context, learnerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM run_attempts WHERE learner_id = ?`, learnerID)
	return err
}
