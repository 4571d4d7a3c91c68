package presenter

import (
	"strings"
	"testing"

	"github.com/ethanwaldo/checkers/internal/engine"
	"github.com/ethanwaldo/checkers/internal/match"
	"github.com/ethanwaldo/checkers/internal/msgcat"
	"github.com/ethanwaldo/checkers/pkg/checkersdto"
)

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	return NewFormatter(cat)
}

func TestFormatterTurn(t *testing.T) {
	f := newFormatter(t)

	active := &checkersdto.SessionState{Status: "active", Turn: "Red"}
	if got := f.Turn(active); got != "Red to move." {
		t.Fatalf("active: %q", got)
	}

	won := &checkersdto.SessionState{Status: "black_wins", Winner: "Black", Reason: "resignation"}
	if got := f.Turn(won); !strings.Contains(got, "Black wins") {
		t.Fatalf("win: %q", got)
	}

	draw := &checkersdto.SessionState{Status: "draw_repetition"}
	if got := f.Turn(draw); !strings.Contains(got, "repetition") {
		t.Fatalf("draw: %q", got)
	}
}

func TestFormatterFallsBackWithoutCatalog(t *testing.T) {
	f := NewFormatter(nil)
	if got := f.MovePlayed("Red", "c3-d4"); got != "Red played c3-d4." {
		t.Fatalf("fallback: %q", got)
	}
	if got := f.MoveRejected(); got == "" {
		t.Fatal("fallback must not be empty")
	}
}

func TestToState(t *testing.T) {
	g := engine.NewGame("Alice", "Bob")
	s := &match.Session{
		ID:        "abc",
		RedName:   "Alice",
		BlackName: "Bob",
		Moves:     []match.MoveStep{{From: 22, To: 18}},
		Notation:  []string{"c3-d4"},
		Status:    "active",
	}

	state := ToState(s, g, []byte{0x89})
	if state.Moves[0] != "22-18" || state.MoveCount != 1 {
		t.Fatalf("unexpected moves: %+v", state)
	}
	if state.Turn != "Red" {
		t.Fatalf("unexpected turn %q", state.Turn)
	}
	if state.Position == "" || state.Position[0] != '[' {
		t.Fatalf("missing position string: %q", state.Position)
	}
	if len(state.BoardImage) != 1 {
		t.Fatal("board image not carried over")
	}

	summary := ToMoveSummary(state)
	if summary.Notation != "c3-d4" || summary.Finished {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
