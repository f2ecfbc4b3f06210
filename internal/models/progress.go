package models

import "time"

// LearnerProgress is the persisted lesson index for one learner.
// LessonIndex is kept as text: it is parsed and clamped when a player is created.
type LearnerProgress struct {
	LearnerID   string
	LessonIndex string
	UpdatedAt   time.Time
}

// RunAttempt records one completed simulated run
type RunAttempt struct {
	ID          int64
	LearnerID   string
	LessonID    string
	Succeeded   bool
	IsError     bool
	AttemptedAt time.Time
}

// LessonStats aggregates run attempts for a lesson
type LessonStats struct {
	LessonID  string
	Attempts  int
	Successes int
}
