package session

import (
	"context"
	log "log/slog"
	"time"

	"voxroute/internal/history"
	"voxroute/internal/nlu"
	"voxroute/internal/tts"
)

const persistTimeout = 5 * time.Second

type job struct {
	u    Utterance
	done chan nlu.Result
}

type worker struct {
	m      *Manager
	id     string
	queue  chan job
	prev   *worker // dropped predecessor, nil once it has exited
	exited chan struct{}

	conv    *history.Conversation
	origins map[string]struct{}
}

func newWorker(m *Manager, id string, prev *worker) *worker {
	return &worker{
		m:       m,
		id:      id,
		queue:   make(chan job, m.cfg.QueueSize),
		prev:    prev,
		exited:  make(chan struct{}),
		origins: make(map[string]struct{}),
	}
}

func (w *worker) run() {
	defer w.m.wg.Done()
	defer close(w.exited)
	defer w.m.retire(w)

	if w.prev != nil {
		<-w.prev.exited
		w.prev = nil
	}

	idle := time.NewTimer(w.m.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case j, ok := <-w.queue:
			if !ok {
				log.Debug("Session worker stopped", "session", w.id)
				return
			}
			j.done <- w.process(j.u)

			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(w.m.cfg.IdleTimeout)

		case <-idle.C:
			if w.m.evict(w) {
				log.Info("Session idle, dropped", "session", w.id)
				return
			}
			idle.Reset(w.m.cfg.IdleTimeout)
		}
	}
}

func (w *worker) process(u Utterance) nlu.Result {
	ctx, cancel := context.WithTimeout(w.m.ctx, w.m.cfg.BackendTimeout)
	defer cancel()

	w.checkOrigin(u.Origin)

	if w.conv == nil {
		w.conv = history.NewConversation(w.m.cfg.Window, w.m.rec.Load(ctx, w.id)...)
	}

	log.Info("Utterance", "session", w.id, "origin", u.Origin, "text", u.Text)

	res := w.m.router.Route(ctx, u.Text, w.conv)
	w.conv.Append(history.AssistantTurn(res.Response))

	// the backend may have used up ctx; the turn is still recorded and voiced
	after, cancelAfter := context.WithTimeout(w.m.ctx, persistTimeout)
	defer cancelAfter()

	w.m.rec.Save(after, w.id, history.UserTurn(u.Text, res.Intent))
	w.m.rec.Save(after, w.id, history.AssistantTurn(res.Response))

	w.voice(after, u.Origin, res.Response)

	log.Info("Answered", "session", w.id, "intent", res.Intent, "query", res.Query)
	return res
}

func (w *worker) voice(ctx context.Context, origin, text string) {
	// control socket callers get the answer in the reply
	if origin == ControlOrigin {
		return
	}

	err := w.m.speaker.Say(ctx, tts.Speech{
		Session:            w.id,
		To:                 origin,
		Text:               text,
		AllowInterruptions: true,
	})
	if err != nil {
		log.Error("Failed to voice out", "session", w.id, "err", err)
	}
}

// checkOrigin flags a session ID that is fed from more than one place, which
// usually means two conversations share a misconfigured ID and will see each
// other's history.
func (w *worker) checkOrigin(origin string) {
	if _, seen := w.origins[origin]; seen {
		return
	}
	w.origins[origin] = struct{}{}

	if len(w.origins) > 1 {
		others := make([]string, 0, len(w.origins))
		for o := range w.origins {
			others = append(others, o)
		}
		log.Warn("Session fed by multiple origins, histories will merge", "session", w.id, "origins", others)
	}
}
