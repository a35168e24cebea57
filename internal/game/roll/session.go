package roll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
)

// Roll lifecycle states.
const (
	StateDraft        = "draft"
	StateSubmitted    = "submitted"
	StateResolved     = "resolved"
	StateMaterialized = "materialized"
	StateCancelled    = "cancelled"
	StateFailed       = "failed"
)

const (
	eventSubmit      = "submit"
	eventResolve     = "resolve"
	eventFail        = "fail"
	eventMaterialize = "materialize"
	eventCancel      = "cancel"
)

// Session is one roll moving through draft, submitted, resolved and
// materialized. A draft may be cancelled without side effects; after
// submission the roll runs to completion or fails as a whole.
type Session struct {
	ID      string
	Request Request

	mu     sync.Mutex
	fsm    *fsm.FSM
	result *Resolution
	err    error
}

// NewSession creates a draft roll.
func NewSession(req Request) *Session {
	s := &Session{ID: uuid.NewString(), Request: req}
	s.fsm = fsm.NewFSM(
		StateDraft,
		fsm.Events{
			{Name: eventSubmit, Src: []string{StateDraft}, Dst: StateSubmitted},
			{Name: eventResolve, Src: []string{StateSubmitted}, Dst: StateResolved},
			{Name: eventFail, Src: []string{StateSubmitted}, Dst: StateFailed},
			{Name: eventMaterialize, Src: []string{StateResolved}, Dst: StateMaterialized},
			{Name: eventCancel, Src: []string{StateDraft}, Dst: StateCancelled},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				slog.Debug("roll state",
					"roll", s.ID,
					"actor", s.Request.ActorID,
					"from", e.Src,
					"to", e.Dst)
			},
		},
	)
	return s
}

// State returns the current lifecycle state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fsm.Current()
}

// Result returns the resolution once the roll is resolved.
func (s *Session) Result() (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

// Cancel abandons a draft roll.
func (s *Session) Cancel(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event(ctx, eventCancel)
}

// Submit resolves the roll with r. A cancelled draft fails with
// ErrRollCancelled. A dice failure aborts only this roll.
func (s *Session) Submit(ctx context.Context, r *Resolver) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fsm.Current() == StateCancelled {
		return nil, ErrRollCancelled
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("submit roll: %w", err)
	}
	if err := s.event(ctx, eventSubmit); err != nil {
		return nil, err
	}

	// Past this point the roll is committed and ignores cancellation.
	ctx = context.WithoutCancel(ctx)
	res, err := r.Resolve(ctx, s.Request)
	if err != nil {
		s.err = err
		if ferr := s.event(ctx, eventFail); ferr != nil {
			return nil, errors.Join(err, ferr)
		}
		return nil, err
	}
	s.result = res
	if err := s.event(ctx, eventResolve); err != nil {
		return nil, err
	}
	return res, nil
}

// MarkMaterialized records that every materialization was dispatched.
func (s *Session) MarkMaterialized(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.event(ctx, eventMaterialize)
}

func (s *Session) event(ctx context.Context, name string) error {
	if !s.fsm.Can(name) {
		return fmt.Errorf("%w: %s from %s", ErrRollState, name, s.fsm.Current())
	}
	if err := s.fsm.Event(ctx, name); err != nil {
		return fmt.Errorf("%w: %v", ErrRollState, err)
	}
	return nil
}
