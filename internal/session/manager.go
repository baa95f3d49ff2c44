// Package session feeds utterances into the router one session at a time.
//
// Every session ID gets its own worker goroutine with a FIFO queue, so the
// utterances of one session are answered strictly in arrival order while
// different sessions run concurrently. The worker owns the session's
// conversation; nothing else touches it.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"voxroute/internal/history"
	"voxroute/internal/nlu"
	"voxroute/internal/tts"
)

var (
	ErrEmptyUtterance = errors.New("empty utterance")
	ErrSessionBusy    = errors.New("session queue full")
	ErrClosed         = errors.New("session manager closed")
)

// Utterance is one finalized transcript.
type Utterance struct {
	Session string
	Origin  string // who delivered it: a bus shard or the control socket
	Text    string
}

type Router interface {
	Route(ctx context.Context, message string, conv *history.Conversation) nlu.Result
}

type Config struct {
	Window         int           // turns kept per live conversation
	IdleTimeout    time.Duration // workers without traffic for this long are dropped
	BackendTimeout time.Duration // bound on one utterance's backend round-trips
	QueueSize      int
}

func DefaultConfig() Config {
	return Config{
		Window:         history.DefaultWindow,
		IdleTimeout:    30 * time.Minute,
		BackendTimeout: 60 * time.Second,
		QueueSize:      16,
	}
}

type Manager struct {
	router  Router
	rec     *history.Recorder
	speaker tts.Speaker
	cfg     Config

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*worker
	draining map[string]*worker // dropped workers still finishing their queue
	closed   bool
	wg       sync.WaitGroup
}

func NewManager(router Router, rec *history.Recorder, speaker tts.Speaker, cfg Config) *Manager {
	def := DefaultConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = def.IdleTimeout
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = def.BackendTimeout
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		router:   router,
		rec:      rec,
		speaker:  speaker,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*worker),
		draining: make(map[string]*worker),
	}
}

// Submit queues u behind the session's earlier utterances and returns at once.
// The result is delivered on the returned channel.
func (m *Manager) Submit(u Utterance) (<-chan nlu.Result, error) {
	u.Text = strings.TrimSpace(u.Text)
	if u.Text == "" {
		return nil, ErrEmptyUtterance
	}
	if u.Session == "" {
		return nil, errors.New("missing session id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrClosed
	}

	w, ok := m.sessions[u.Session]
	if !ok {
		// a replacement for a dropped worker starts only once the old one exits
		w = newWorker(m, u.Session, m.draining[u.Session])
		delete(m.draining, u.Session)
		m.sessions[u.Session] = w
		m.wg.Add(1)
		go w.run()
	}

	j := job{u: u, done: make(chan nlu.Result, 1)}
	select {
	case w.queue <- j:
	default:
		return nil, fmt.Errorf("%w: %s", ErrSessionBusy, u.Session)
	}

	return j.done, nil
}

// Handle processes u and waits for its answer.
func (m *Manager) Handle(ctx context.Context, u Utterance) (nlu.Result, error) {
	done, err := m.Submit(u)
	if err != nil {
		return nlu.Result{}, err
	}

	select {
	case res, ok := <-done:
		if !ok {
			return nlu.Result{}, ErrClosed
		}
		return res, nil
	case <-ctx.Done():
		return nlu.Result{}, ctx.Err()
	}
}

// Drop forgets the live conversation of a session. The stored log is kept and
// is loaded again on the next utterance. Utterances already queued are still
// answered; later ones wait for them.
func (m *Manager) Drop(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.sessions[sessionID]
	if !ok {
		return false
	}
	delete(m.sessions, sessionID)
	close(w.queue)
	m.draining[sessionID] = w
	return true
}

// Sessions returns the IDs with a live worker.
func (m *Manager) Sessions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Close stops accepting utterances, lets queued ones finish and waits for
// all workers.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for id, w := range m.sessions {
		delete(m.sessions, id)
		close(w.queue)
	}
	m.mu.Unlock()

	m.wg.Wait()
	m.cancel()
}

func (m *Manager) retire(w *worker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.draining[w.id] == w {
		delete(m.draining, w.id)
	}
}

// evict removes w if it is still the registered worker and has nothing queued.
func (m *Manager) evict(w *worker) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessions[w.id] != w || len(w.queue) > 0 {
		return false
	}
	delete(m.sessions, w.id)
	return true
}
