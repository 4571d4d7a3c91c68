package match

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ethanwaldo/checkers/internal/advisor"
	"github.com/ethanwaldo/checkers/internal/engine"
	"github.com/ethanwaldo/checkers/internal/obslog"
)

var (
	ErrHintPending  = errors.New("a suggestion request is already in flight")
	ErrHintNotReady = errors.New("suggestion not ready yet")
	ErrHintFailed   = errors.New("advisor produced no usable move")
	ErrHintRejected = errors.New("advisor suggested an illegal move")
)

// hintSlot pairs the single-request gate with the side that asked, so a
// suggestion arriving after the turn changed is thrown away instead of
// applied for the wrong side.
type hintSlot struct {
	slot advisor.Slot
	side engine.Side
}

// RequestHint starts an asynchronous advisory call for the side to move.
// At most one request per session may be outstanding; a second request while
// one is pending fails with ErrHintPending and changes nothing.
func (m *Manager) RequestHint(ctx context.Context, id string, sg advisor.Suggester) error {
	s, g, err := m.Load(ctx, id)
	if err != nil {
		return err
	}
	if s.Finished() {
		return ErrSessionFinished
	}

	m.mu.Lock()
	hs, ok := m.slots[id]
	if !ok {
		hs = &hintSlot{}
		m.slots[id] = hs
	}
	position := g.PositionString()
	side := g.SideToMove()
	// The in-flight flag and the requesting side become visible together:
	// both writes happen under the lock the readers take.
	if !hs.slot.Request(ctx, sg, position) {
		m.mu.Unlock()
		return ErrHintPending
	}
	hs.side = side
	m.mu.Unlock()

	obslog.L().Info("hint_request",
		zap.String("session_id", id),
		zap.String("side", side.String()),
		zap.String("position", position),
	)
	return nil
}

// ResolveHint polls the pending advisory call. While the worker is running it
// returns ErrHintNotReady. On completion the reply is parsed, checked against
// the legal-move set, and applied at most once; any failure clears the slot,
// leaves the game untouched, and reports why. The applied move's notation is
// returned on success.
func (m *Manager) ResolveHint(ctx context.Context, id string) (*Session, string, error) {
	m.mu.Lock()
	hs, ok := m.slots[id]
	m.mu.Unlock()
	if !ok || !hs.slot.InFlight() {
		return nil, "", ErrHintNotReady
	}

	result, done := hs.slot.Take()
	if !done {
		return nil, "", ErrHintNotReady
	}
	if result.Err != nil {
		obslog.L().Warn("hint_transport_error", zap.String("session_id", id), zap.Error(result.Err))
		return nil, "", fmt.Errorf("%w: %v", ErrHintFailed, result.Err)
	}

	from, to, err := engine.ParseAdvice(result.Reply)
	if err != nil {
		obslog.L().Warn("hint_parse_error",
			zap.String("session_id", id),
			zap.String("reply", result.Reply),
			zap.Error(err),
		)
		return nil, "", fmt.Errorf("%w: %v", ErrHintFailed, err)
	}

	_, g, err := m.Load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	m.mu.Lock()
	stale := g.SideToMove() != hs.side
	m.mu.Unlock()
	if stale {
		obslog.L().Warn("hint_stale", zap.String("session_id", id), zap.String("reply", result.Reply))
		return nil, "", ErrHintRejected
	}

	s, err := m.PlayMove(ctx, id, from, to)
	if err != nil {
		if errors.Is(err, ErrIllegalMove) {
			obslog.L().Warn("hint_illegal",
				zap.String("session_id", id),
				zap.String("reply", result.Reply),
			)
			return nil, "", ErrHintRejected
		}
		return nil, "", err
	}

	notation := ""
	if n := len(s.Notation); n > 0 {
		notation = s.Notation[n-1]
	}
	obslog.L().Info("hint_applied",
		zap.String("session_id", id),
		zap.String("notation", notation),
		zap.String("status", s.Status),
	)
	return s, notation, nil
}

// HintInFlight reports whether the session has an outstanding advisory call.
func (m *Manager) HintInFlight(id string) bool {
	m.mu.Lock()
	hs, ok := m.slots[id]
	m.mu.Unlock()
	return ok && hs.slot.InFlight()
}
