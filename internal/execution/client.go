package execution

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sakif/algotest/internal/encoder"
	"github.com/sakif/algotest/internal/model"
)

// Runner sends one encoded payload to the execution service.
// *apiclient.Client implements it.
type Runner interface {
	RunAlgorithm(ctx context.Context, p model.Payload) (*model.ExecutionResult, error)
}

// Client owns the single live State.
//
// All transitions go through apply, under one mutex, so each is atomic and
// observers see them in the order they happened. The network call itself
// runs outside the lock; that is the only place a submission waits.
type Client struct {
	runner Runner
	logger *slog.Logger
	encode func(*model.Algorithm, string) (model.Payload, error)

	mu        sync.Mutex
	state     State
	lastGen   uint64
	cancel    context.CancelFunc // cancels the in-flight request, if any
	observers []func(State)
}

// NewClient creates a Client in the Idle state.
func NewClient(runner Runner, logger *slog.Logger) *Client {
	return &Client{
		runner: runner,
		logger: logger,
		encode: encoder.Encode,
	}
}

// State returns the current snapshot.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers fn to be called with every new state.
//
// fn runs while the client's lock is held, which is what keeps
// notifications in order. It must not call back into the Client; it gets
// the new State as its argument. Hand the state off (a channel send,
// tea.Program.Send) and return.
func (c *Client) Subscribe(fn func(State)) {
	c.mu.Lock()
	c.observers = append(c.observers, fn)
	c.mu.Unlock()
}

// Submit runs one submission to completion and returns its final state.
//
// applied is false when a newer Submit superseded this one before it
// resolved; the returned state is then this submission's own outcome, which
// was discarded and never became visible.
//
// A nil algorithm or blank input fails straight away without touching the
// network, whatever state the client was in.
func (c *Client) Submit(ctx context.Context, alg *model.Algorithm, raw string) (final State, applied bool) {
	var algCopy *model.Algorithm
	if alg != nil {
		a := *alg
		algCopy = &a
	}

	c.mu.Lock()
	c.lastGen++
	gen := c.lastGen
	if c.cancel != nil {
		// The superseded request's response would be discarded anyway;
		// cancelling just frees the connection sooner.
		c.cancel()
		c.cancel = nil
	}
	c.applyLocked(Submitted{Gen: gen, Algorithm: algCopy, RawInput: raw})
	c.mu.Unlock()

	payload, err := c.encode(algCopy, raw)
	if err != nil {
		c.logger.Debug("submission rejected",
			slog.Uint64("generation", gen),
			slog.String("error", err.Error()),
		)
		if final, applied = c.apply(Rejected{Gen: gen, Err: err}); !applied {
			final = State{Status: Failed, Generation: gen, Algorithm: algCopy, RawInput: raw, Err: err}
		}
		return final, applied
	}

	reqCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	_, ok := c.applyLocked(Encoded{Gen: gen, Payload: payload})
	if ok {
		c.cancel = cancel
	}
	c.mu.Unlock()
	if !ok {
		// Superseded between encoding and sending; don't send.
		return State{Status: Failed, Generation: gen, Algorithm: algCopy, RawInput: raw, Payload: payload, Err: context.Canceled}, false
	}

	c.logger.Info("submitting algorithm run",
		slog.Uint64("generation", gen),
		slog.Int("algorithm_id", algCopy.ID),
		slog.String("algorithm", algCopy.Name),
	)

	result, err := c.runner.RunAlgorithm(reqCtx, payload)

	var ev Event = Responded{Gen: gen, Result: result}
	if err != nil {
		ev = Errored{Gen: gen, Err: err}
	}

	final, applied = c.apply(ev)
	if !applied {
		c.logger.Debug("discarding superseded response", slog.Uint64("generation", gen))
		final = ownOutcome(gen, algCopy, raw, payload, result, err)
		return final, false
	}

	if err != nil {
		c.logger.Warn("algorithm run failed",
			slog.Uint64("generation", gen),
			slog.String("error", err.Error()),
		)
	} else {
		c.logger.Info("algorithm run succeeded", slog.Uint64("generation", gen))
	}
	return final, true
}

// Reset returns the client to Idle, discarding any result or error. An
// in-flight request is abandoned.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.lastGen++
	c.state = State{Status: Idle, Generation: c.lastGen}
	c.notifyLocked()
}

func (c *Client) apply(e Event) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyLocked(e)
}

func (c *Client) applyLocked(e Event) (State, bool) {
	next, ok := Transition(c.state, e)
	if !ok {
		return next, false
	}
	c.state = next
	if next.Status.Resolved() {
		c.cancel = nil
	}
	c.notifyLocked()
	return next, true
}

func (c *Client) notifyLocked() {
	for _, fn := range c.observers {
		fn(c.state)
	}
}

// ownOutcome is the state a discarded submission would have reached.
func ownOutcome(gen uint64, alg *model.Algorithm, raw string, p model.Payload, res *model.ExecutionResult, err error) State {
	s := State{Generation: gen, Algorithm: alg, RawInput: raw, Payload: p}
	if err != nil {
		s.Status, s.Err = Failed, err
	} else {
		s.Status, s.Result = Succeeded, res
	}
	return s
}
