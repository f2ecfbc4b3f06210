// Package player holds the per-learner course player: which lesson is open,
// the editor buffer, the last simulated run and the tutor transcript.
//
// Remote calls are split in two phases. Begin* captures what the call needs
// and marks the action in flight; Complete* applies the answer. The lock is
// never held while the remote collaborator works.
package player

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"steam4all/internal/models"
)

var (
	ErrLessonOutOfRange = errors.New("lesson index out of range")
	ErrCannotProceed    = errors.New("complete the task to proceed")
	ErrAtFirstLesson    = errors.New("already at the first lesson")
	ErrNotCompleted     = errors.New("course is not completed")
	ErrCourseCompleted  = errors.New("course is completed")
	ErrRunInFlight      = errors.New("code is already running")
	ErrChatInFlight     = errors.New("tutor is already answering")
	ErrEmptyQuestion    = errors.New("question is empty")
)

// State is the coarse state of the player
type State int

const (
	StateInLesson State = iota
	StateCompleted
)

func (s State) String() string {
	if s == StateCompleted {
		return "completed"
	}
	return "in_lesson"
}

// Player is safe for concurrent use.
type Player struct {
	mu     sync.Mutex
	course *models.Course

	index     int
	completed bool

	code    string
	output  string
	isError bool
	running bool

	transcript  []models.ChatMessage
	chatLoading bool

	sidebarOpen bool
	chatOpen    bool

	// epoch changes every time the lesson state is reset; tickets issued
	// under an older epoch are discarded on completion.
	epoch uint64

	// saveMu serialises SyncIndex; savedEpoch is the epoch last handed to a save.
	saveMu     sync.Mutex
	savedEpoch uint64
}

// RunTicket carries what an in-flight run needs and the epoch it belongs to
type RunTicket struct {
	Lesson models.Lesson
	Source string
	Epoch  uint64
}

// ChatTicket carries what an in-flight tutor request needs
type ChatTicket struct {
	Source   string
	Question string
	Epoch    uint64
}

// New mounts a player on course at index, clamped into range.
func New(course *models.Course, index int) *Player {
	p := &Player{course: course}
	p.index = clamp(index, course.LessonCount())
	p.resetLesson()
	return p
}

// RestoreIndex parses a persisted lesson index. The leading integer is used
// ("2abc" is 2, "1.5" is 1); text with no leading integer becomes 0. The
// result is clamped into [0, n-1].
func RestoreIndex(raw string, n int) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '-' || raw[end] == '+') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}
	i, err := strconv.Atoi(raw[:end])
	if err != nil {
		// overflow: far past the last lesson or before the first
		if raw[0] == '-' {
			return 0
		}
		return clamp(n, n)
	}
	return clamp(i, n)
}

func clamp(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}

// Greeting is the tutor's opening line for a lesson
func Greeting(lesson models.Lesson) string {
	return fmt.Sprintf("Hi! I'm your AI tutor. Ask me anything about this lesson on \"%s\".", lesson.Title)
}

// resetLesson must be called with mu held (or before p is shared).
func (p *Player) resetLesson() {
	lesson := p.course.Lessons[p.index]
	p.code = lesson.InitialCode
	p.output = ""
	p.isError = false
	p.transcript = []models.ChatMessage{{Role: models.RoleModel, Text: Greeting(lesson)}}
	p.epoch++
}

func (p *Player) lesson() models.Lesson {
	return p.course.Lessons[p.index]
}

func (p *Player) taskSucceeded() bool {
	return p.lesson().SatisfiedBy(models.ExecutionResult{Output: p.output, IsError: p.isError})
}

func (p *Player) canProceed() bool {
	return !p.lesson().HasSuccessCriterion() || p.taskSucceeded()
}

// Index returns the current lesson index
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// State reports whether the learner is in a lesson or has finished the course
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed {
		return StateCompleted
	}
	return StateInLesson
}

// TaskSucceeded reports whether the last run satisfied the current lesson
func (p *Player) TaskSucceeded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.taskSucceeded()
}

// CanProceed reports whether Next is allowed
func (p *Player) CanProceed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.canProceed()
}

// SelectLesson jumps straight to lesson i. Not gated on task success.
// Selecting the lesson already open keeps its editor, output and chat.
func (p *Player) SelectLesson(i int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed {
		return ErrCourseCompleted
	}
	if i < 0 || i >= p.course.LessonCount() {
		return fmt.Errorf("%w: %d", ErrLessonOutOfRange, i)
	}
	if i == p.index {
		return nil
	}
	p.index = i
	p.resetLesson()
	return nil
}

// Next advances one lesson, or completes the course from the last lesson.
// It reports whether the index changed.
func (p *Player) Next() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed {
		return false, ErrCourseCompleted
	}
	if !p.canProceed() {
		return false, ErrCannotProceed
	}
	if p.index < p.course.LastIndex() {
		p.index++
		p.resetLesson()
		return true, nil
	}
	p.completed = true
	return false, nil
}

// Prev goes back one lesson. Review is never gated on task status.
func (p *Player) Prev() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed {
		return ErrCourseCompleted
	}
	if p.index == 0 {
		return ErrAtFirstLesson
	}
	p.index--
	p.resetLesson()
	return nil
}

// Restart leaves the completed state and reopens the first lesson
func (p *Player) Restart() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.completed {
		return ErrNotCompleted
	}
	p.completed = false
	p.index = 0
	p.resetLesson()
	return nil
}

// SyncIndex hands the current lesson index to save unless it was already
// saved. Calls are serialised and each reads the index under the lock, so
// the last save to finish always carries the newest index.
func (p *Player) SyncIndex(save func(index int) error) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	index, epoch := p.index, p.epoch
	p.mu.Unlock()
	if epoch == p.savedEpoch {
		return nil
	}
	if err := save(index); err != nil {
		return err
	}
	p.savedEpoch = epoch
	return nil
}

// MarkSaved records the current index as already persisted
func (p *Player) MarkSaved() {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.savedEpoch = p.epoch
}

// SetCode replaces the editor buffer
func (p *Player) SetCode(code string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.code = code
}

// ResetCode restores the current lesson's starter code. Output and
// transcript are left alone.
func (p *Player) ResetCode() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.code = p.lesson().InitialCode
}

// BeginRun marks a run in flight and clears the displayed output.
func (p *Player) BeginRun() (RunTicket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed {
		return RunTicket{}, ErrCourseCompleted
	}
	if p.running {
		return RunTicket{}, ErrRunInFlight
	}
	p.running = true
	p.output = ""
	p.isError = false
	return RunTicket{Lesson: p.lesson(), Source: p.code, Epoch: p.epoch}, nil
}

// CompleteRun stores the result of a run. The running flag is always
// cleared; the result is dropped when the lesson changed since BeginRun.
// It reports whether the result was applied.
func (p *Player) CompleteRun(t RunTicket, result models.ExecutionResult) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	if t.Epoch != p.epoch {
		return false
	}
	p.output = result.Output
	p.isError = result.IsError
	return true
}

// BeginChat appends the learner's question to the transcript and marks the
// tutor as answering.
func (p *Player) BeginChat(question string) (ChatTicket, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.completed {
		return ChatTicket{}, ErrCourseCompleted
	}
	if strings.TrimSpace(question) == "" {
		return ChatTicket{}, ErrEmptyQuestion
	}
	if p.chatLoading {
		return ChatTicket{}, ErrChatInFlight
	}
	p.transcript = append(p.transcript, models.ChatMessage{Role: models.RoleUser, Text: question})
	p.chatLoading = true
	return ChatTicket{Source: p.code, Question: question, Epoch: p.epoch}, nil
}

// CompleteChat appends the tutor's reply unless the lesson changed in the
// meantime. The loading flag is always cleared.
func (p *Player) CompleteChat(t ChatTicket, reply string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chatLoading = false
	if t.Epoch != p.epoch {
		return false
	}
	p.transcript = append(p.transcript, models.ChatMessage{Role: models.RoleModel, Text: reply})
	return true
}

// ToggleSidebar flips the sidebar and returns the new state
func (p *Player) ToggleSidebar() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sidebarOpen = !p.sidebarOpen
	return p.sidebarOpen
}

// CloseSidebar hides the sidebar, used after a lesson is picked from it
func (p *Player) CloseSidebar() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sidebarOpen = false
}

// ToggleChat flips the chat panel and returns the new state
func (p *Player) ToggleChat() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.chatOpen = !p.chatOpen
	return p.chatOpen
}

// Snapshot is a consistent copy of the player for rendering
type Snapshot struct {
	State           string               `json:"state"`
	Index           int                  `json:"index"`
	Total           int                  `json:"total"`
	Lesson          models.Lesson        `json:"lesson"`
	IsLastLesson    bool                 `json:"isLastLesson"`
	Code            string               `json:"code"`
	Output          string               `json:"output"`
	IsError         bool                 `json:"isError"`
	Running         bool                 `json:"running"`
	Completed       bool                 `json:"completed"`
	TaskSucceeded   bool                 `json:"taskSucceeded"`
	CanProceed      bool                 `json:"canProceed"`
	CanGoBack       bool                 `json:"canGoBack"`
	ProgressPercent float64              `json:"progressPercent"`
	Transcript      []models.ChatMessage `json:"transcript"`
	ChatLoading     bool                 `json:"chatLoading"`
	SidebarOpen     bool                 `json:"sidebarOpen"`
	ChatOpen        bool                 `json:"chatOpen"`
}

// Snapshot returns a copy of the player state with derived fields filled in
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := StateInLesson
	if p.completed {
		state = StateCompleted
	}
	transcript := make([]models.ChatMessage, len(p.transcript))
	copy(transcript, p.transcript)

	success := p.taskSucceeded()
	return Snapshot{
		State:           state.String(),
		Index:           p.index,
		Total:           p.course.LessonCount(),
		Lesson:          p.lesson(),
		IsLastLesson:    p.index == p.course.LastIndex(),
		Code:            p.code,
		Output:          p.output,
		IsError:         p.isError,
		Running:         p.running,
		Completed:       p.completed,
		TaskSucceeded:   success,
		CanProceed:      p.canProceed(),
		CanGoBack:       p.index > 0,
		ProgressPercent: ProgressPercent(p.index, success, p.course.LessonCount()),
		Transcript:      transcript,
		ChatLoading:     p.chatLoading,
		SidebarOpen:     p.sidebarOpen,
		ChatOpen:        p.chatOpen,
	}
}

// ProgressPercent is (index + 1 if the task succeeded) / total, capped at 100.
func ProgressPercent(index int, succeeded bool, total int) float64 {
	if total <= 0 {
		return 0
	}
	done := index
	if succeeded {
		done++
	}
	return math.Min(100, float64(done)/float64(total)*100)
}
