package match

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/ethanwaldo/checkers/internal/engine"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	m, err := NewManager(fmt.Sprintf("redis://%s/0", mr.Addr()), time.Hour)
	if err != nil {
		t.Fatalf("match.NewManager: %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

type suggestFunc func(ctx context.Context, position string) (string, error)

func (f suggestFunc) Suggest(ctx context.Context, position string) (string, error) {
	return f(ctx, position)
}

func resolveHint(t *testing.T, m *Manager, id string) (*Session, string, error) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s, notation, err := m.ResolveHint(context.Background(), id)
		if !errors.Is(err, ErrHintNotReady) {
			return s, notation, err
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("hint never resolved")
	return nil, "", nil
}

func TestCreateAndPlayMove(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, "Alice", "Bob")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.RedName != "Alice" || s.BlackName != "Bob" || s.Status != "active" {
		t.Fatalf("unexpected session: %+v", s)
	}

	s, err = m.PlayMove(ctx, s.ID, engine.Coord{Row: 5, Col: 2}, engine.Coord{Row: 4, Col: 3})
	if err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	if len(s.Moves) != 1 || s.Moves[0] != (MoveStep{From: 22, To: 18}) {
		t.Fatalf("unexpected move list: %v", s.Moves)
	}
	if len(s.Notation) != 1 || s.Notation[0] != "c3-d4" {
		t.Fatalf("unexpected notation: %v", s.Notation)
	}

	// Illegal: red just moved, the same piece cannot move again.
	if _, err := m.PlayMove(ctx, s.ID, engine.Coord{Row: 4, Col: 3}, engine.Coord{Row: 3, Col: 2}); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("expected ErrIllegalMove, got %v", err)
	}
}

func TestPlayMoveUnknownSession(t *testing.T) {
	m := newTestManager(t)
	_, err := m.PlayMove(context.Background(), "missing", engine.Coord{Row: 5, Col: 2}, engine.Coord{Row: 4, Col: 3})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestReplayFromStore(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, err := m.Create(ctx, "", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := m.PlayMove(ctx, s.ID, engine.Coord{Row: 5, Col: 2}, engine.Coord{Row: 4, Col: 3}); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}

	// Drop the cached game to force a rebuild from the stored move list.
	m.mu.Lock()
	delete(m.games, s.ID)
	m.mu.Unlock()

	_, g, err := m.Load(ctx, s.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if g.SideToMove() != engine.SideBlack {
		t.Fatalf("replayed game should have black to move, got %v", g.SideToMove())
	}
	if _, ok := g.PieceAt(engine.Coord{Row: 4, Col: 3}); !ok {
		t.Fatal("replayed board missing the moved piece")
	}
}

func TestUndo(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, "", "")
	if _, err := m.Undo(ctx, s.ID); !errors.Is(err, ErrNothingToUndo) {
		t.Fatalf("expected ErrNothingToUndo, got %v", err)
	}

	if _, err := m.PlayMove(ctx, s.ID, engine.Coord{Row: 5, Col: 2}, engine.Coord{Row: 4, Col: 3}); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	s, err := m.Undo(ctx, s.ID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(s.Moves) != 0 || len(s.Notation) != 0 {
		t.Fatalf("undo should pop the stored move: %+v", s)
	}

	_, g, _ := m.Load(ctx, s.ID)
	if g.SideToMove() != engine.SideRed {
		t.Fatal("undo should give the turn back to red")
	}
}

func TestUndoWritesThroughStore(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, "", "")
	if _, err := m.PlayMove(ctx, s.ID, engine.Coord{Row: 5, Col: 2}, engine.Coord{Row: 4, Col: 3}); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}
	if _, err := m.PlayMove(ctx, s.ID, engine.Coord{Row: 2, Col: 5}, engine.Coord{Row: 3, Col: 4}); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}

	s, err := m.Undo(ctx, s.ID)
	if err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if len(s.Moves) != 1 || s.Moves[0] != (MoveStep{From: 22, To: 18}) {
		t.Fatalf("undo should pop only the last move: %v", s.Moves)
	}

	// The durable copy went through the same transactional update as a
	// played move; a replay from the store must agree with it.
	m.mu.Lock()
	delete(m.games, s.ID)
	m.mu.Unlock()
	s2, g, err := m.Load(ctx, s.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s2.Moves) != 1 || len(s2.Notation) != 1 {
		t.Fatalf("stored session out of step: %+v", s2)
	}
	if g.SideToMove() != engine.SideBlack {
		t.Fatalf("replayed game should have black to move, got %v", g.SideToMove())
	}
}

func TestResignArchivesResult(t *testing.T) {
	m := newTestManager(t)
	repo := NewMemoryRepository()
	m.AttachRepository(repo)
	ctx := context.Background()

	s, _ := m.Create(ctx, "Alice", "Bob")
	s, err := m.Resign(ctx, s.ID)
	if err != nil {
		t.Fatalf("Resign: %v", err)
	}
	if s.Status != "black_wins" || s.Reason != "resignation" || s.Winner != "Black" {
		t.Fatalf("unexpected resignation result: %+v", s)
	}

	game, err := repo.GetGame(ctx, s.ID)
	if err != nil || game == nil {
		t.Fatalf("archived game missing: %v %v", game, err)
	}
	if game.Result != "black_wins" || game.RedName != "Alice" {
		t.Fatalf("unexpected archive row: %+v", game)
	}

	// Finished sessions refuse further moves.
	if _, err := m.PlayMove(ctx, s.ID, engine.Coord{Row: 5, Col: 2}, engine.Coord{Row: 4, Col: 3}); !errors.Is(err, ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
}

func TestOfferDraw(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, "", "")
	s, err := m.OfferDraw(ctx, s.ID)
	if err != nil {
		t.Fatalf("OfferDraw: %v", err)
	}
	if s.Status != "draw_agreement" {
		t.Fatalf("unexpected status: %q", s.Status)
	}
}

func TestHintAppliedWhenLegal(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, "", "")
	// Red opening so "11-15" is legal for black next.
	if _, err := m.PlayMove(ctx, s.ID, engine.Coord{Row: 5, Col: 2}, engine.Coord{Row: 4, Col: 3}); err != nil {
		t.Fatalf("PlayMove: %v", err)
	}

	var seenPosition string
	err := m.RequestHint(ctx, s.ID, suggestFunc(func(ctx context.Context, position string) (string, error) {
		seenPosition = position
		return "11-15", nil
	}))
	if err != nil {
		t.Fatalf("RequestHint: %v", err)
	}

	s, notation, err := resolveHint(t, m, s.ID)
	if err != nil {
		t.Fatalf("ResolveHint: %v", err)
	}
	if notation != "f6-e5" {
		t.Fatalf("unexpected notation %q", notation)
	}
	if len(s.Moves) != 2 || s.Moves[1] != (MoveStep{From: 11, To: 15}) {
		t.Fatalf("hint not applied: %v", s.Moves)
	}
	if seenPosition == "" || seenPosition[0] != '[' {
		t.Fatalf("suggester should receive the position string, got %q", seenPosition)
	}
}

func TestHintGatesMoveSubmission(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, "", "")
	release := make(chan struct{})
	err := m.RequestHint(ctx, s.ID, suggestFunc(func(ctx context.Context, position string) (string, error) {
		<-release
		return "22-18", nil
	}))
	if err != nil {
		t.Fatalf("RequestHint: %v", err)
	}

	// A second request and a human move for the same side are both refused.
	if err := m.RequestHint(ctx, s.ID, suggestFunc(func(ctx context.Context, position string) (string, error) {
		return "ignored", nil
	})); !errors.Is(err, ErrHintPending) {
		t.Fatalf("expected ErrHintPending, got %v", err)
	}
	if _, err := m.PlayMove(ctx, s.ID, engine.Coord{Row: 5, Col: 2}, engine.Coord{Row: 4, Col: 3}); !errors.Is(err, ErrHintPending) {
		t.Fatalf("move for the requesting side must be gated, got %v", err)
	}
	if !m.HintInFlight(s.ID) {
		t.Fatal("hint should be in flight")
	}

	close(release)
	if _, _, err := resolveHint(t, m, s.ID); err != nil {
		t.Fatalf("ResolveHint: %v", err)
	}
	if m.HintInFlight(s.ID) {
		t.Fatal("slot should be clear after resolution")
	}
}

func TestHintRejectedLeavesStateUntouched(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, "", "")
	// Square 11 holds a black man; it is red's turn, so this is illegal.
	if err := m.RequestHint(ctx, s.ID, suggestFunc(func(ctx context.Context, position string) (string, error) {
		return "11-15", nil
	})); err != nil {
		t.Fatalf("RequestHint: %v", err)
	}
	if _, _, err := resolveHint(t, m, s.ID); !errors.Is(err, ErrHintRejected) {
		t.Fatalf("expected ErrHintRejected, got %v", err)
	}

	s2, g, err := m.Load(ctx, s.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(s2.Moves) != 0 || g.SideToMove() != engine.SideRed {
		t.Fatal("rejected hint must not mutate the game")
	}

	// The slot is open again for a valid retry.
	if err := m.RequestHint(ctx, s.ID, suggestFunc(func(ctx context.Context, position string) (string, error) {
		return "22-18", nil
	})); err != nil {
		t.Fatalf("retry RequestHint: %v", err)
	}
	if s3, _, err := resolveHint(t, m, s.ID); err != nil || len(s3.Moves) != 1 {
		t.Fatalf("retry should apply: %v %+v", err, s3)
	}
}

func TestHintRecordsRequestingSide(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, "", "")
	release := make(chan struct{})
	if err := m.RequestHint(ctx, s.ID, suggestFunc(func(ctx context.Context, position string) (string, error) {
		<-release
		return "22-18", nil
	})); err != nil {
		t.Fatalf("RequestHint: %v", err)
	}

	// The requesting side is readable the moment the in-flight flag is,
	// never a leftover from an earlier request.
	m.mu.Lock()
	hs := m.slots[s.ID]
	inFlight, side := hs.slot.InFlight(), hs.side
	m.mu.Unlock()
	if !inFlight || side != engine.SideRed {
		t.Fatalf("slot should carry red in flight, got %v %v", inFlight, side)
	}
	close(release)
	if _, _, err := resolveHint(t, m, s.ID); err != nil {
		t.Fatalf("ResolveHint: %v", err)
	}

	// Reusing the slot for the other side must update the recorded side,
	// or the staleness check would wrongly reject black's request.
	if err := m.RequestHint(ctx, s.ID, suggestFunc(func(ctx context.Context, position string) (string, error) {
		return "11-15", nil
	})); err != nil {
		t.Fatalf("second RequestHint: %v", err)
	}
	s2, notation, err := resolveHint(t, m, s.ID)
	if err != nil {
		t.Fatalf("second hint should apply, got %v", err)
	}
	if notation != "f6-e5" || len(s2.Moves) != 2 {
		t.Fatalf("second hint result: %q %v", notation, s2.Moves)
	}
}

func TestHintParseFailure(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	s, _ := m.Create(ctx, "", "")
	if err := m.RequestHint(ctx, s.ID, suggestFunc(func(ctx context.Context, position string) (string, error) {
		return "the best move is probably e4", nil
	})); err != nil {
		t.Fatalf("RequestHint: %v", err)
	}
	if _, _, err := resolveHint(t, m, s.ID); !errors.Is(err, ErrHintFailed) {
		t.Fatalf("expected ErrHintFailed, got %v", err)
	}
	if m.HintInFlight(s.ID) {
		t.Fatal("parse failure must clear the in-flight flag")
	}
}
