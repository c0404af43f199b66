package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Fazalwahab12/shift-backend-sub001/internal/hiring"
)

// Stub collaborators for tests and local development.

// JobDirectory serves jobs from a fixed map.
type JobDirectory struct {
	mu   sync.Mutex
	jobs map[string]hiring.Job
}

// NewJobDirectory returns a directory preloaded with the given jobs.
func NewJobDirectory(jobs ...hiring.Job) *JobDirectory {
	d := &JobDirectory{jobs: make(map[string]hiring.Job)}
	for _, j := range jobs {
		d.jobs[j.ID] = j
	}
	return d
}

// Put adds or replaces a job.
func (d *JobDirectory) Put(j hiring.Job) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jobs[j.ID] = j
}

func (d *JobDirectory) FindJob(_ context.Context, jobID string) (*hiring.Job, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	j, ok := d.jobs[jobID]
	if !ok {
		return nil, hiring.NewError(hiring.CodeNotFound, "job not found", map[string]string{"jobId": jobID})
	}
	return &j, nil
}

// Gate answers plan-limit checks from a deny list; an empty gate allows
// everything.
type Gate struct {
	mu     sync.Mutex
	denied map[string]bool // companyID+":"+action
}

func NewGate() *Gate { return &Gate{denied: make(map[string]bool)} }

// Deny blocks one (company, action) pair.
func (g *Gate) Deny(companyID, action string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.denied[companyID+":"+action] = true
}

func (g *Gate) CanPerformAction(_ context.Context, companyID, action string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.denied[companyID+":"+action], nil
}

// ChatService mints sequential chat ids and counts create calls.
type ChatService struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func NewChatService() *ChatService { return &ChatService{} }

// Fail makes every subsequent CreateChat return an error.
func (c *ChatService) Fail(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = fail
}

// Calls reports how many creates were attempted.
func (c *ChatService) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func (c *ChatService) CreateChat(_ context.Context, companyID, seekerID, applicationID string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.fail {
		return "", fmt.Errorf("chat service unavailable")
	}
	return fmt.Sprintf("chat-%s-%d", applicationID, c.calls), nil
}

// Notifier collects emitted events in order.
type Notifier struct {
	mu     sync.Mutex
	events []hiring.Event
}

func NewNotifier() *Notifier { return &Notifier{} }

func (n *Notifier) Emit(_ context.Context, ev hiring.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

// Events returns a snapshot of everything emitted so far.
func (n *Notifier) Events() []hiring.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]hiring.Event(nil), n.events...)
}

// Types returns the emitted event types in order.
func (n *Notifier) Types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}

// Lease is a process-local lease, sufficient for single-process tests.
type Lease struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewLease() *Lease { return &Lease{held: make(map[string]time.Time)} }

func (l *Lease) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if until, ok := l.held[key]; ok && time.Now().Before(until) {
		return false, nil
	}
	l.held[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *Lease) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
