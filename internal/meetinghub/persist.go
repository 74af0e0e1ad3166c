package meetinghub

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
)

type persistJob struct {
	op string
	fn func(ctx context.Context) error
}

// persister runs best-effort side effects (storage writes, tap publishes) off
// the relay path. Jobs of one meeting run one at a time in the order they were
// scheduled; different meetings proceed in parallel. Each job gets its own
// timeout and failures are logged and dropped.
type persister struct {
	wg      conc.WaitGroup
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	// lanes holds the pending jobs per meeting. A key is present exactly while
	// a drain goroutine owns that meeting.
	lanes map[string][]persistJob
}

func (p *persister) Go(op, meetingID string, fn func(ctx context.Context) error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		log.Debug().Str("module", "meetinghub.persist").Str("op", op).Str("meeting_id", meetingID).Msg("dropped after close")
		return
	}
	if p.lanes == nil {
		p.lanes = make(map[string][]persistJob)
	}

	queue, draining := p.lanes[meetingID]
	p.lanes[meetingID] = append(queue, persistJob{op: op, fn: fn})
	if draining {
		return
	}
	p.wg.Go(func() { p.drain(meetingID) })
}

func (p *persister) drain(meetingID string) {
	for {
		p.mu.Lock()
		queue := p.lanes[meetingID]
		if len(queue) == 0 {
			delete(p.lanes, meetingID)
			p.mu.Unlock()
			return
		}
		next := queue[0]
		p.lanes[meetingID] = queue[1:]
		p.mu.Unlock()

		p.run(meetingID, next)
	}
}

// run executes one job. A panic is logged so the lane keeps draining.
func (p *persister) run(meetingID string, job persistJob) {
	recovered := panics.Try(func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		defer cancel()

		if err := job.fn(ctx); err != nil {
			log.Error().Err(err).
				Str("module", "meetinghub.persist").
				Str("op", job.op).
				Str("meeting_id", meetingID).
				Msg("best-effort write failed")
		}
	})
	if recovered != nil {
		log.Error().Str("module", "meetinghub.persist").
			Str("op", job.op).
			Str("meeting_id", meetingID).
			Str("panic", recovered.String()).
			Msg("write panicked")
	}
}

// Wait blocks until every scheduled job has finished.
func (p *persister) Wait() {
	if r := p.wg.WaitAndRecover(); r != nil {
		log.Error().Str("module", "meetinghub.persist").Str("panic", r.String()).Msg("drain panicked")
	}
}

// Close refuses new work and waits for what is queued.
func (p *persister) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.Wait()
}
