package service

import (
	"context"
	"strconv"

	"steam4all/internal/editor"
	"steam4all/internal/logger"
	"steam4all/internal/models"
	"steam4all/internal/player"
)

// ProgressStore persists the current lesson index per learner. Values are
// kept as text and validated when read back.
type ProgressStore interface {
	LoadIndex(ctx context.Context, learnerID string) (string, error)
	SaveIndex(ctx context.Context, learnerID, index string) error
}

// AttemptRecorder logs completed runs
type AttemptRecorder interface {
	Record(ctx context.Context, a models.RunAttempt) (int64, error)
}

// Executor simulates running learner code. It must not fail; transport
// problems come back as an error result.
type Executor interface {
	Execute(ctx context.Context, source string) models.ExecutionResult
}

// Tutor answers a learner question about their code. It always returns text.
type Tutor interface {
	Explain(ctx context.Context, source, question string) string
}

// CourseService drives the per-learner players
type CourseService struct {
	registry *player.Registry
	progress ProgressStore
	attempts AttemptRecorder
	executor Executor
	tutor    Tutor
	log      *logger.Logger
}

// NewCourseService wires the course service. attempts may be nil.
func NewCourseService(registry *player.Registry, progress ProgressStore, attempts AttemptRecorder, executor Executor, tutor Tutor, log *logger.Logger) *CourseService {
	return &CourseService{
		registry: registry,
		progress: progress,
		attempts: attempts,
		executor: executor,
		tutor:    tutor,
		log:      log.With("service", "CourseService"),
	}
}

// Course returns the course being served
func (s *CourseService) Course() *models.Course {
	return s.registry.Course()
}

// player returns the learner's player, mounting one at the stored index if
// needed. A stored index that needed normalising is written back; a learner
// with nothing stored gets no row until they change lessons.
func (s *CourseService) player(ctx context.Context, learnerID string) *player.Player {
	var stored string
	p, mounted := s.registry.GetOrMount(learnerID, func() int {
		raw, err := s.progress.LoadIndex(ctx, learnerID)
		if err != nil {
			s.log.Warn("failed to load progress, starting at first lesson", "learner", learnerID, "error", err)
			return 0
		}
		stored = raw
		return player.RestoreIndex(raw, s.registry.Course().LessonCount())
	})
	if mounted {
		index := p.Index()
		s.log.Debug("player mounted", "learner", learnerID, "index", index)
		if stored == "" || stored == strconv.Itoa(index) {
			p.MarkSaved()
		} else {
			s.persist(ctx, learnerID, p)
		}
	}
	return p
}

// persist is best effort: the lesson change already happened on screen
func (s *CourseService) persist(ctx context.Context, learnerID string, p *player.Player) {
	err := p.SyncIndex(func(index int) error {
		return s.progress.SaveIndex(ctx, learnerID, strconv.Itoa(index))
	})
	if err != nil {
		s.log.Error("failed to save progress", "learner", learnerID, "error", err)
	}
}

// Open mounts the learner's player if needed and returns its state
func (s *CourseService) Open(ctx context.Context, learnerID string) player.Snapshot {
	return s.player(ctx, learnerID).Snapshot()
}

// Leave destroys the learner's player. Stored progress is kept.
func (s *CourseService) Leave(learnerID string) {
	s.registry.Unmount(learnerID)
}

// SelectLesson jumps to lesson index. closeSidebar hides the lesson list
// afterwards, as narrow screens do.
func (s *CourseService) SelectLesson(ctx context.Context, learnerID string, index int, closeSidebar bool) (player.Snapshot, error) {
	p := s.player(ctx, learnerID)
	if err := p.SelectLesson(index); err != nil {
		return p.Snapshot(), err
	}
	if closeSidebar {
		p.CloseSidebar()
	}
	s.persist(ctx, learnerID, p)
	return p.Snapshot(), nil
}

// Next advances or, from the last lesson, completes the course
func (s *CourseService) Next(ctx context.Context, learnerID string) (player.Snapshot, error) {
	p := s.player(ctx, learnerID)
	changed, err := p.Next()
	if err != nil {
		return p.Snapshot(), err
	}
	if changed {
		s.persist(ctx, learnerID, p)
	} else {
		s.log.Info("course completed", "learner", learnerID)
	}
	return p.Snapshot(), nil
}

// Prev goes back one lesson
func (s *CourseService) Prev(ctx context.Context, learnerID string) (player.Snapshot, error) {
	p := s.player(ctx, learnerID)
	if err := p.Prev(); err != nil {
		return p.Snapshot(), err
	}
	s.persist(ctx, learnerID, p)
	return p.Snapshot(), nil
}

// Restart reopens the first lesson after completion
func (s *CourseService) Restart(ctx context.Context, learnerID string) (player.Snapshot, error) {
	p := s.player(ctx, learnerID)
	if err := p.Restart(); err != nil {
		return p.Snapshot(), err
	}
	s.persist(ctx, learnerID, p)
	return p.Snapshot(), nil
}

// UpdateCode replaces the editor buffer
func (s *CourseService) UpdateCode(ctx context.Context, learnerID, code string) player.Snapshot {
	p := s.player(ctx, learnerID)
	p.SetCode(code)
	return p.Snapshot()
}

// InsertTab stores code with four spaces inserted over [selStart, selEnd)
// and returns the caret position after them.
func (s *CourseService) InsertTab(ctx context.Context, learnerID, code string, selStart, selEnd int) (player.Snapshot, int) {
	text, caret := editor.InsertTab(code, selStart, selEnd)
	p := s.player(ctx, learnerID)
	p.SetCode(text)
	return p.Snapshot(), caret
}

// ResetCode restores the starter code of the current lesson
func (s *CourseService) ResetCode(ctx context.Context, learnerID string) player.Snapshot {
	p := s.player(ctx, learnerID)
	p.ResetCode()
	return p.Snapshot()
}

// Run sends the editor buffer to the executor and stores the result. The
// call to the executor happens without holding the player lock.
func (s *CourseService) Run(ctx context.Context, learnerID string) (player.Snapshot, error) {
	p := s.player(ctx, learnerID)
	ticket, err := p.BeginRun()
	if err != nil {
		return p.Snapshot(), err
	}

	result := s.executor.Execute(ctx, ticket.Source)
	if !p.CompleteRun(ticket, result) {
		s.log.Debug("dropped stale run result", "learner", learnerID, "lesson", ticket.Lesson.ID)
		return p.Snapshot(), nil
	}

	s.recordAttempt(ctx, models.RunAttempt{
		LearnerID: learnerID,
		LessonID:  ticket.Lesson.ID,
		Succeeded: ticket.Lesson.SatisfiedBy(result),
		IsError:   result.IsError,
	})
	return p.Snapshot(), nil
}

func (s *CourseService) recordAttempt(ctx context.Context, a models.RunAttempt) {
	if s.attempts == nil {
		return
	}
	if _, err := s.attempts.Record(ctx, a); err != nil {
		s.log.Warn("failed to record run attempt", "learner", a.LearnerID, "lesson", a.LessonID, "error", err)
	}
}

// Ask appends the question to the transcript, asks the tutor about the
// current code and appends the answer.
func (s *CourseService) Ask(ctx context.Context, learnerID, question string) (player.Snapshot, error) {
	p := s.player(ctx, learnerID)
	ticket, err := p.BeginChat(question)
	if err != nil {
		return p.Snapshot(), err
	}

	reply := s.tutor.Explain(ctx, ticket.Source, ticket.Question)
	if !p.CompleteChat(ticket, reply) {
		s.log.Debug("dropped stale tutor reply", "learner", learnerID)
	}
	return p.Snapshot(), nil
}

// ToggleChat opens or closes the tutor panel
func (s *CourseService) ToggleChat(ctx context.Context, learnerID string) player.Snapshot {
	p := s.player(ctx, learnerID)
	p.ToggleChat()
	return p.Snapshot()
}

// ToggleSidebar opens or closes the lesson list
func (s *CourseService) ToggleSidebar(ctx context.Context, learnerID string) player.Snapshot {
	p := s.player(ctx, learnerID)
	p.ToggleSidebar()
	return p.Snapshot()
}
