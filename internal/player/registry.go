package player

import (
	"context"
	"sync"
	"time"

	"steam4all/internal/models"
)

// DefaultIdleTimeout is how long an untouched player stays mounted
const DefaultIdleTimeout = 30 * time.Minute

type mounted struct {
	player   *Player
	lastUsed time.Time
}

// Registry keeps one mounted player per learner. Players that go unused for
// longer than the idle timeout are dropped by Cleanup; stored progress is
// untouched, so the learner resumes at the saved lesson.
type Registry struct {
	mu      sync.Mutex
	course  *models.Course
	idle    time.Duration
	players map[string]*mounted
	now     func() time.Time
}

// NewRegistry creates an empty registry for course. A non-positive idle
// timeout uses DefaultIdleTimeout.
func NewRegistry(course *models.Course, idle time.Duration) *Registry {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Registry{
		course:  course,
		idle:    idle,
		players: make(map[string]*mounted),
		now:     time.Now,
	}
}

// Course returns the course every player in the registry runs
func (r *Registry) Course() *models.Course {
	return r.course
}

// Get returns the learner's mounted player, if any, and marks it used
func (r *Registry) Get(learnerID string) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.players[learnerID]
	if !ok {
		return nil, false
	}
	m.lastUsed = r.now()
	return m.player, true
}

// GetOrMount returns the learner's player, mounting a new one with restore
// when none exists. restore is called without the registry lock held and
// reports the index to mount at. The second result is true when a new
// player was mounted.
func (r *Registry) GetOrMount(learnerID string, restore func() int) (*Player, bool) {
	if p, ok := r.Get(learnerID); ok {
		return p, false
	}
	fresh := New(r.course, restore())

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.players[learnerID]; ok {
		m.lastUsed = r.now()
		return m.player, false
	}
	r.players[learnerID] = &mounted{player: fresh, lastUsed: r.now()}
	return fresh, true
}

// Unmount destroys the learner's player state
func (r *Registry) Unmount(learnerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.players, learnerID)
}

// Len returns the number of mounted players
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Cleanup evicts idle players every interval until ctx is done
func (r *Registry) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.prune()
		}
	}
}

// prune drops players idle for longer than the timeout and reports how many went
func (r *Registry) prune() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	evicted := 0
	for id, m := range r.players {
		if now.Sub(m.lastUsed) > r.idle {
			delete(r.players, id)
			evicted++
		}
	}
	return evicted
}
