package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"steam4all/internal/catalog"
	"steam4all/internal/gemini"
	"steam4all/internal/logger"
	"steam4all/internal/models"
	"steam4all/internal/player"
)

type memoryProgress struct {
	mu      sync.Mutex
	values  map[string]string
	saves   int
	loadErr error
	// gate, when set, holds the next SaveIndex until it is closed
	gate chan struct{}
}

func newMemoryProgress() *memoryProgress {
	return &memoryProgress{values: make(map[string]string)}
}

func (m *memoryProgress) LoadIndex(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.values[id], nil
}

func (m *memoryProgress) SaveIndex(_ context.Context, id, index string) error {
	m.mu.Lock()
	gate := m.gate
	m.gate = nil
	m.mu.Unlock()
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[id] = index
	m.saves++
	return nil
}

func (m *memoryProgress) get(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[id]
}

type memoryAttempts struct {
	mu       sync.Mutex
	attempts []models.RunAttempt
}

func (m *memoryAttempts) Record(_ context.Context, a models.RunAttempt) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	return int64(len(m.attempts)), nil
}

type fakeExecutor struct {
	result models.ExecutionResult
	// gate, when set, blocks Execute until it is closed
	gate    chan struct{}
	started chan struct{}
	sources []string
	mu      sync.Mutex
}

func (f *fakeExecutor) Execute(_ context.Context, source string) models.ExecutionResult {
	f.mu.Lock()
	f.sources = append(f.sources, source)
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.result
}

type fakeTutor struct {
	reply    string
	question string
	source   string
}

func (f *fakeTutor) Explain(_ context.Context, source, question string) string {
	f.source, f.question = source, question
	return f.reply
}

type fixture struct {
	svc      *CourseService
	progress *memoryProgress
	attempts *memoryAttempts
	exec     *fakeExecutor
	tutor    *fakeTutor
	course   *models.Course
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	course, err := catalog.Default()
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{
		progress: newMemoryProgress(),
		attempts: &memoryAttempts{},
		exec:     &fakeExecutor{},
		tutor:    &fakeTutor{reply: "Check your quotes."},
		course:   course,
	}
	f.svc = NewCourseService(player.NewRegistry(course, 0), f.progress, f.attempts, f.exec, f.tutor, logger.Nop())
	return f
}

func TestOpenRestoresAndClampsIndex(t *testing.T) {
	tests := []struct {
		stored    string
		want      int
		wantSaves int
	}{
		{"", 0, 0},
		{"3", 3, 0},
		{"-3", 0, 1},
		{"abc", 0, 1},
		{"99", 5, 1},
		{"2abc", 2, 1},
	}
	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			f := newFixture(t)
			f.progress.values["learner"] = tt.stored

			snap := f.svc.Open(context.Background(), "learner")
			if snap.Index != tt.want {
				t.Errorf("Index = %d, want %d", snap.Index, tt.want)
			}
			if snap.Code != f.course.Lessons[tt.want].InitialCode {
				t.Errorf("mounted lesson should show its starter code")
			}
			// mounting writes back an index that needed normalising, and nothing else
			want := tt.stored
			if tt.wantSaves > 0 {
				want = strconv.Itoa(tt.want)
			}
			if got := f.progress.get("learner"); got != want {
				t.Errorf("stored index = %q, want %q", got, want)
			}
			if f.progress.saves != tt.wantSaves {
				t.Errorf("saves = %d, want %d", f.progress.saves, tt.wantSaves)
			}
		})
	}
}

func TestOpenWithoutProgressStoresNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for i := 0; i < 50; i++ {
		f.svc.Open(ctx, "visitor-"+strconv.Itoa(i))
	}
	if f.progress.saves != 0 || len(f.progress.values) != 0 {
		t.Errorf("fresh learners wrote %d saves, %d rows", f.progress.saves, len(f.progress.values))
	}

	// the first real lesson change is still saved
	if _, err := f.svc.SelectLesson(ctx, "visitor-0", 2, false); err != nil {
		t.Fatal(err)
	}
	if got := f.progress.get("visitor-0"); got != "2" {
		t.Errorf("stored index = %q, want 2", got)
	}
}

func TestConcurrentSelectionsStoreLatestIndex(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.Open(ctx, "l")

	gate := make(chan struct{})
	f.progress.mu.Lock()
	f.progress.gate = gate
	f.progress.mu.Unlock()

	waitForIndex := func(want int) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for f.svc.Open(ctx, "l").Index != want {
			if time.Now().After(deadline) {
				t.Fatalf("player never reached lesson %d", want)
			}
			time.Sleep(time.Millisecond)
		}
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		f.svc.SelectLesson(ctx, "l", 1, false)
	}()
	waitForIndex(1)
	go func() {
		defer wg.Done()
		f.svc.SelectLesson(ctx, "l", 2, false)
	}()
	waitForIndex(2)
	close(gate)
	wg.Wait()

	if got := f.progress.get("l"); got != "2" {
		t.Errorf("stored index = %q, want 2 (the player's index)", got)
	}
}

func TestOpenSurvivesStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.progress.loadErr = errors.New("disk on fire")
	if snap := f.svc.Open(context.Background(), "learner"); snap.Index != 0 {
		t.Errorf("Index = %d, want 0", snap.Index)
	}
}

func TestNavigationPersistsIndex(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.SelectLesson(ctx, "l", 4, true); err != nil {
		t.Fatalf("SelectLesson() error = %v", err)
	}
	if got := f.progress.get("l"); got != "4" {
		t.Errorf("stored index = %q, want 4", got)
	}

	if _, err := f.svc.Prev(ctx, "l"); err != nil {
		t.Fatalf("Prev() error = %v", err)
	}
	if got := f.progress.get("l"); got != "3" {
		t.Errorf("stored index = %q, want 3", got)
	}

	if _, err := f.svc.Next(ctx, "l"); !errors.Is(err, player.ErrCannotProceed) {
		t.Fatalf("Next() error = %v, want ErrCannotProceed", err)
	}
	if got := f.progress.get("l"); got != "3" {
		t.Errorf("blocked Next changed stored index to %q", got)
	}
}

func TestSelectLessonClosesSidebar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.ToggleSidebar(ctx, "l")

	snap, err := f.svc.SelectLesson(ctx, "l", 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if !snap.SidebarOpen {
		t.Error("sidebar should stay open on wide screens")
	}
	snap, _ = f.svc.SelectLesson(ctx, "l", 2, true)
	if snap.SidebarOpen {
		t.Error("sidebar should close when asked")
	}
}

func TestRunSuccessUnlocksNext(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.exec.result = models.ExecutionResult{Output: "Equality for all!"}

	f.svc.UpdateCode(ctx, "l", `print("Equality for all!")`)
	snap, err := f.svc.Run(ctx, "l")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !snap.TaskSucceeded || !snap.CanProceed {
		t.Errorf("snapshot after run = %+v", snap)
	}
	if f.exec.sources[0] != `print("Equality for all!")` {
		t.Errorf("executor got %q", f.exec.sources[0])
	}
	if len(f.attempts.attempts) != 1 || !f.attempts.attempts[0].Succeeded || f.attempts.attempts[0].LessonID != "step-1" {
		t.Errorf("attempts = %+v", f.attempts.attempts)
	}

	snap, err = f.svc.Next(ctx, "l")
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if snap.Index != 1 || f.progress.get("l") != "1" {
		t.Errorf("Index = %d stored = %q", snap.Index, f.progress.get("l"))
	}
}

func TestRunTransportFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.exec.result = models.ExecutionResult{Output: gemini.ConnectionErrorOutput, IsError: true}

	snap, err := f.svc.Run(ctx, "l")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !snap.IsError || snap.Output != gemini.ConnectionErrorOutput || snap.Running {
		t.Errorf("snapshot = %+v", snap)
	}
	if f.attempts.attempts[0].Succeeded || !f.attempts.attempts[0].IsError {
		t.Errorf("attempt = %+v", f.attempts.attempts[0])
	}
}

func TestRunRejectsDuplicateAndDropsStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.exec.gate = make(chan struct{})
	f.exec.started = make(chan struct{}, 1)
	f.exec.result = models.ExecutionResult{Output: "late"}

	done := make(chan player.Snapshot)
	go func() {
		snap, _ := f.svc.Run(ctx, "l")
		done <- snap
	}()
	<-f.exec.started

	if snap := f.svc.Open(ctx, "l"); !snap.Running {
		t.Error("player should report a run in flight")
	}
	if _, err := f.svc.Run(ctx, "l"); !errors.Is(err, player.ErrRunInFlight) {
		t.Errorf("second Run() error = %v, want ErrRunInFlight", err)
	}

	if _, err := f.svc.SelectLesson(ctx, "l", 2, false); err != nil {
		t.Fatal(err)
	}
	close(f.exec.gate)
	snap := <-done

	if snap.Output != "" || snap.Running {
		t.Errorf("stale result applied: %+v", snap)
	}
	if len(f.attempts.attempts) != 0 {
		t.Errorf("stale run recorded: %+v", f.attempts.attempts)
	}
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.svc.UpdateCode(ctx, "l", "print(x)")

	if _, err := f.svc.Ask(ctx, "l", "  "); !errors.Is(err, player.ErrEmptyQuestion) {
		t.Errorf("Ask(blank) error = %v", err)
	}

	snap, err := f.svc.Ask(ctx, "l", "Why the NameError?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if f.tutor.source != "print(x)" || f.tutor.question != "Why the NameError?" {
		t.Errorf("tutor got source=%q question=%q", f.tutor.source, f.tutor.question)
	}
	if len(snap.Transcript) != 3 {
		t.Fatalf("transcript = %+v", snap.Transcript)
	}
	if snap.Transcript[1].Role != models.RoleUser || snap.Transcript[2].Text != "Check your quotes." {
		t.Errorf("transcript = %+v", snap.Transcript)
	}
	if snap.ChatLoading {
		t.Error("loading flag should be cleared")
	}
}

func TestInsertTabAndReset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	snap, caret := f.svc.InsertTab(ctx, "l", "abcde", 5, 5)
	if snap.Code != "abcde    " || caret != 9 {
		t.Errorf("InsertTab() = %q, %d", snap.Code, caret)
	}

	snap = f.svc.ResetCode(ctx, "l")
	if snap.Code != f.course.Lessons[0].InitialCode {
		t.Errorf("ResetCode() code = %q", snap.Code)
	}
}

func TestCompleteRestartAndLeave(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	last := f.course.LastIndex()

	if _, err := f.svc.SelectLesson(ctx, "l", last, false); err != nil {
		t.Fatal(err)
	}
	f.exec.result = models.ExecutionResult{Output: f.course.Lessons[last].ExpectedOutputKeyword}
	if _, err := f.svc.Run(ctx, "l"); err != nil {
		t.Fatal(err)
	}
	snap, err := f.svc.Next(ctx, "l")
	if err != nil {
		t.Fatal(err)
	}
	if !snap.Completed {
		t.Fatal("course should be completed")
	}

	snap, err = f.svc.Restart(ctx, "l")
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if snap.Index != 0 || snap.Completed || f.progress.get("l") != "0" {
		t.Errorf("after restart index=%d completed=%v stored=%q", snap.Index, snap.Completed, f.progress.get("l"))
	}

	f.svc.ToggleChat(ctx, "l")
	f.svc.Leave("l")
	if snap := f.svc.Open(ctx, "l"); snap.ChatOpen {
		t.Error("leaving the player should discard session state")
	}
}
