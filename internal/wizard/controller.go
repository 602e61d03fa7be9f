package wizard

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"autoposter/internal/apistatus"
	"autoposter/internal/form"
	"autoposter/internal/generation"
	"autoposter/internal/logging"
	"autoposter/internal/present"
	"autoposter/internal/progress"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("wizard closed")

// Analyzer turns a raw competitor URL into a reference.
type Analyzer interface {
	Analyze(ctx context.Context, raw string) (form.CompetitorRef, error)
}

// Invoker performs a generation run.
type Invoker interface {
	Invoke(ctx context.Context, flow generation.Flow, req form.Request) (generation.Run, error)
}

// ProgressSource starts the cosmetic progress ticker for a run.
type ProgressSource interface {
	Start(ctx context.Context) <-chan progress.Update
}

// Actions are the result actions over an artifact.
type Actions interface {
	Copy(artifact *generation.Artifact) present.Feedback
	Download(artifact *generation.Artifact, format present.Format) present.Feedback
	Publish(ctx context.Context, artifact *generation.Artifact) present.Feedback
}

// Deps bundles the collaborators a Controller drives. Status is optional.
type Deps struct {
	Analyzer Analyzer
	Invoker  Invoker
	Progress ProgressSource
	Actions  Actions
	Status   *apistatus.Service
	Defaults form.Defaults
	Logger   *slog.Logger
}

// Controller serializes every change to one wizard session.
type Controller struct {
	analyzer Analyzer
	invoker  Invoker
	ticker   ProgressSource
	actions  Actions
	logger   *slog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	ops     chan func()
	quit    chan struct{}
	stopped chan struct{}
	closing sync.Once
	wg      sync.WaitGroup

	// Owned by the loop goroutine.
	state        *form.State
	inputs       Inputs
	epoch        uint64
	pending      int
	generating   bool
	runToken     uint64
	flow         generation.Flow
	progress     progress.Update
	stopProgress context.CancelFunc
	artifact     *generation.Artifact
	fallback     bool
	runErr       error
	feedback     *present.Feedback
	api          apistatus.Status
	subs         map[int]chan Event
	nextSub      int
}

// New starts a session with an empty form seeded from deps.Defaults.
func New(deps Deps) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	c := &Controller{
		analyzer: deps.Analyzer,
		invoker:  deps.Invoker,
		ticker:   deps.Progress,
		actions:  deps.Actions,
		logger:   logging.NewComponentLogger(logger, "wizard"),
		ctx:      ctx,
		cancel:   cancel,
		ops:      make(chan func()),
		quit:     make(chan struct{}),
		stopped:  make(chan struct{}),
		state:    form.New(deps.Defaults),
		subs:     make(map[int]chan Event),
	}
	go c.loop()
	if deps.Status != nil {
		c.watchStatus(deps.Status)
	}
	return c
}

func (c *Controller) loop() {
	defer close(c.stopped)
	for {
		select {
		case fn := <-c.ops:
			fn()
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the loop and waits for it to finish.
func (c *Controller) do(fn func()) error {
	done := make(chan struct{})
	select {
	case c.ops <- func() { fn(); close(done) }:
	case <-c.quit:
		return ErrClosed
	}
	<-done
	return nil
}

// post hands fn to the loop without waiting for it to run. It is dropped once
// the controller is closed.
func (c *Controller) post(fn func()) {
	select {
	case c.ops <- fn:
	case <-c.quit:
	}
}

// Close cancels all background work, waits for it to exit, and closes every
// subscription. It is safe to call more than once.
func (c *Controller) Close() {
	c.closing.Do(func() {
		c.cancel()
		close(c.quit)
		<-c.stopped
		c.wg.Wait()
		for id, ch := range c.subs {
			close(ch)
			delete(c.subs, id)
		}
	})
}

// Subscribe returns a channel that first carries the current snapshot and
// then one event per change. Slow readers skip intermediate events rather
// than block the session. The channel closes on cancel or Close.
func (c *Controller) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)
	var id int
	if err := c.do(func() {
		id = c.nextSub
		c.nextSub++
		c.subs[id] = ch
		deliver(ch, Event{Kind: EventSnapshot, Snapshot: c.snapshot()})
	}); err != nil {
		close(ch)
		return ch, func() {}
	}
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			_ = c.do(func() {
				if sub, ok := c.subs[id]; ok {
					delete(c.subs, id)
					close(sub)
				}
			})
		})
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := c.do(func() { snap = c.snapshot() })
	return snap, err
}

func (c *Controller) emit(kind EventKind, input string) {
	if len(c.subs) == 0 {
		return
	}
	ev := Event{Kind: kind, Input: input, Snapshot: c.snapshot()}
	for _, ch := range c.subs {
		deliver(ch, ev)
	}
}

// deliver drops the oldest queued event when ch is full. Only the loop
// sends, so this always terminates.
func deliver(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (c *Controller) watchStatus(svc *apistatus.Service) {
	updates, cancel := svc.Subscribe()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		for {
			select {
			case <-c.ctx.Done():
				return
			case status, ok := <-updates:
				if !ok {
					return
				}
				c.post(func() {
					c.api = status
					c.emit(EventAPIStatus, "")
				})
			}
		}
	}()
}
