// Package execution drives one algorithm submission at a time through its
// lifecycle and decides which outcome the operator gets to see.
//
// STATE MACHINE:
//
//	Idle ──submit──▶ Validating ──ok──▶ Pending ──response ok──▶ Succeeded
//	                     │                  │
//	                     └──fail──▶ Failed ◀┘ response error / network failure
//
// Succeeded and Failed accept a new submit, which starts over at Validating.
// There is no terminal state.
//
// GENERATIONS:
// Every submit gets the next generation number. Events carry the generation
// of the submission that produced them, and Transition ignores any event
// whose generation is not the current one. That single rule is what stops a
// slow, superseded response from overwriting a newer result.
//
// Transition is a pure function so the rules can be tested without HTTP,
// goroutines or a terminal; Client is the thin stateful shell around it.
package execution

import (
	"github.com/sakif/algotest/internal/apperror"
	"github.com/sakif/algotest/internal/model"
)

// Status is the lifecycle position.
type Status int

const (
	Idle Status = iota
	Validating
	Pending
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolved reports whether the submission has an outcome.
func (s Status) Resolved() bool {
	return s == Succeeded || s == Failed
}

// State is an immutable snapshot. Transitions build a new State rather than
// editing fields of the old one, so a snapshot handed to the UI never
// changes underneath it.
type State struct {
	Status     Status
	Generation uint64

	// Algorithm is the descriptor the submission targeted; nil when the
	// submission had no selection.
	Algorithm *model.Algorithm
	RawInput  string

	Payload model.Payload          // set from Pending on
	Result  *model.ExecutionResult // set in Succeeded
	Err     error                  // set in Failed
}

// Reason is the operator-facing failure text, "" unless Failed.
func (s State) Reason() string {
	if s.Status != Failed {
		return ""
	}
	return apperror.Message(s.Err)
}

// Event is something that happened to a submission.
type Event interface {
	generation() uint64
}

// Submitted starts a new submission.
type Submitted struct {
	Gen       uint64
	Algorithm *model.Algorithm
	RawInput  string
}

// Encoded means the input validated into Payload and the request is about to go out.
type Encoded struct {
	Gen     uint64
	Payload model.Payload
}

// Rejected means validation failed; no request was sent.
type Rejected struct {
	Gen uint64
	Err error
}

// Responded carries a successful result.
type Responded struct {
	Gen    uint64
	Result *model.ExecutionResult
}

// Errored carries a request or response failure.
type Errored struct {
	Gen uint64
	Err error
}

func (e Submitted) generation() uint64 { return e.Gen }
func (e Encoded) generation() uint64   { return e.Gen }
func (e Rejected) generation() uint64  { return e.Gen }
func (e Responded) generation() uint64 { return e.Gen }
func (e Errored) generation() uint64   { return e.Gen }

// Transition applies e to s. It returns the next state and true when the
// event was accepted, or s unchanged and false when the event does not apply
// — stale generation, or wrong source status.
func Transition(s State, e Event) (State, bool) {
	if sub, ok := e.(Submitted); ok {
		// A new submission supersedes whatever is in progress, from any status.
		if sub.Gen <= s.Generation {
			return s, false
		}
		return State{
			Status:     Validating,
			Generation: sub.Gen,
			Algorithm:  sub.Algorithm,
			RawInput:   sub.RawInput,
		}, true
	}

	if e.generation() != s.Generation {
		return s, false
	}

	next := State{
		Generation: s.Generation,
		Algorithm:  s.Algorithm,
		RawInput:   s.RawInput,
		Payload:    s.Payload,
	}

	switch ev := e.(type) {
	case Encoded:
		if s.Status != Validating {
			return s, false
		}
		next.Status = Pending
		next.Payload = ev.Payload

	case Rejected:
		if s.Status != Validating {
			return s, false
		}
		next.Status = Failed
		next.Err = ev.Err

	case Responded:
		if s.Status != Pending {
			return s, false
		}
		next.Status = Succeeded
		next.Result = ev.Result

	case Errored:
		if s.Status != Pending {
			return s, false
		}
		next.Status = Failed
		next.Err = ev.Err

	default:
		return s, false
	}

	return next, true
}
