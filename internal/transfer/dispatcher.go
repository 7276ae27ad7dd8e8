package transfer

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/metrics"
)

type request struct {
	ctx context.Context
	job Job
}

// Dispatcher runs jobs on one background goroutine and relays their events
// through Events. At most one job is accepted at a time. Event delivery never
// blocks the engine: events queue in an unbounded mailbox until the caller
// reads them, in emission order.
type Dispatcher struct {
	engine *Engine
	logger zerolog.Logger

	ctx   context.Context
	stop  context.CancelFunc
	group *errgroup.Group

	jobs   chan request
	inbox  chan Event
	events chan Event

	startOnce sync.Once
	mu        sync.Mutex
	busy      bool
	cancelJob context.CancelFunc
}

// NewDispatcher creates a dispatcher for jobs against remote. Call Start
// before submitting.
func NewDispatcher(remote Remote, opts Options, logger zerolog.Logger, m *metrics.Collector) *Dispatcher {
	ctx, stop := context.WithCancel(context.Background())
	return &Dispatcher{
		engine: NewEngine(remote, opts, logger, m),
		logger: logger.With().Str("component", "dispatcher").Logger(),
		ctx:    ctx,
		stop:   stop,
		group:  &errgroup.Group{},
		jobs:   make(chan request, 1),
		inbox:  make(chan Event),
		events: make(chan Event),
	}
}

// Start launches the worker and the mailbox. It is safe to call more than once.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		d.group.Go(func() error {
			d.deliver()
			return nil
		})
		d.group.Go(func() error {
			d.work()
			return nil
		})
	})
}

// Events returns the ordered stream of job events. It is closed by Close.
func (d *Dispatcher) Events() <-chan Event {
	return d.events
}

// Submit hands job to the worker. It returns ErrJobInFlight while a previous
// job has not emitted its finished event.
func (d *Dispatcher) Submit(job Job) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx.Err() != nil {
		return ErrDispatcherClosed
	}
	if d.busy {
		return ErrJobInFlight
	}

	ctx, cancel := context.WithCancel(d.ctx)
	d.busy = true
	d.cancelJob = cancel
	d.jobs <- request{ctx: ctx, job: job}

	d.logger.Debug().Str("job", job.ID.String()).Str("kind", job.Kind.String()).Msg("job submitted")
	return nil
}

// Cancel requests cancellation of the running job. It reports whether a job
// was running.
func (d *Dispatcher) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelJob == nil {
		return false
	}
	d.cancelJob()
	return true
}

// Busy reports whether a job is in flight.
func (d *Dispatcher) Busy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// Close cancels any running job and stops both goroutines. Events still
// queued may be dropped.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	d.stop()
	d.mu.Unlock()

	d.Start()
	return d.group.Wait()
}

func (d *Dispatcher) work() {
	defer close(d.inbox)
	for {
		select {
		case <-d.ctx.Done():
			return
		case req := <-d.jobs:
			d.engine.Run(req.ctx, req.job, d.post)
		}
	}
}

// post is the engine's emit callback. The job is released before its
// finished event is queued, so a caller reacting to that event may submit
// the next job immediately.
func (d *Dispatcher) post(ev Event) {
	if ev.Type == EventFinished {
		d.mu.Lock()
		if d.cancelJob != nil {
			d.cancelJob()
		}
		d.cancelJob = nil
		d.busy = false
		d.mu.Unlock()
	}
	d.inbox <- ev
}

func (d *Dispatcher) deliver() {
	defer close(d.events)

	var queue []Event
	in := d.inbox
	for {
		if in == nil && len(queue) == 0 {
			return
		}

		var out chan Event
		var next Event
		if len(queue) > 0 {
			out = d.events
			next = queue[0]
		}
		var done <-chan struct{}
		if in == nil {
			done = d.ctx.Done()
		}

		select {
		case ev, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			queue = append(queue, ev)
		case out <- next:
			queue = queue[1:]
		case <-done:
			return
		}
	}
}
