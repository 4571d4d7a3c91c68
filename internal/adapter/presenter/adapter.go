package presenter

import (
	"fmt"
	"strings"

	"github.com/ethanwaldo/checkers/internal/engine"
	"github.com/ethanwaldo/checkers/internal/match"
	"github.com/ethanwaldo/checkers/pkg/checkersdto"
)

// ToState flattens a session and its live game into the boundary state.
// boardImage may be nil when the caller did not render one.
func ToState(s *match.Session, g *engine.Game, boardImage []byte) *checkersdto.SessionState {
	if s == nil {
		return nil
	}
	state := &checkersdto.SessionState{
		SessionID: s.ID,
		RedName:   s.RedName,
		BlackName: s.BlackName,
		Moves:     moveTokens(s.Moves),
		Notation:  append([]string(nil), s.Notation...),
		MoveCount: len(s.Moves),
		Status:    s.Status,
		Reason:    s.Reason,
		Winner:    s.Winner,
	}
	if g != nil {
		state.Position = g.PositionString()
		state.Turn = g.SideToMove().String()
		state.Captured = checkersdto.CapturedPieces{
			Red:   pieceTokens(g.CapturedFrom(engine.SideRed)),
			Black: pieceTokens(g.CapturedFrom(engine.SideBlack)),
		}
		state.RedTimeMS = g.TurnTime(engine.SideRed).Milliseconds()
		state.BlackTimeMS = g.TurnTime(engine.SideBlack).Milliseconds()
	}
	if len(boardImage) > 0 {
		state.BoardImage = append([]byte(nil), boardImage...)
	}
	return state
}

// ToMoveSummary pairs the refreshed state with the move that produced it.
func ToMoveSummary(state *checkersdto.SessionState) *checkersdto.MoveSummary {
	if state == nil {
		return nil
	}
	notation := ""
	if n := len(state.Notation); n > 0 {
		notation = state.Notation[n-1]
	}
	return &checkersdto.MoveSummary{
		State:    state,
		Notation: notation,
		Finished: state.Status != engine.StatusActive.String(),
	}
}

func ToGameRecord(g *match.ArchivedGame) *checkersdto.GameRecord {
	if g == nil {
		return nil
	}
	return &checkersdto.GameRecord{
		ID:          g.ID,
		SessionID:   g.SessionID,
		RedName:     g.RedName,
		BlackName:   g.BlackName,
		Result:      g.Result,
		Reason:      g.Reason,
		Winner:      g.Winner,
		Moves:       moveTokens(g.Moves),
		Notation:    append([]string(nil), g.Notation...),
		RedTimeMS:   g.RedTime.Milliseconds(),
		BlackTimeMS: g.BlackTime.Milliseconds(),
		StartedAt:   g.StartedAt,
		FinishedAt:  g.FinishedAt,
	}
}

func ToGameRecords(list []*match.ArchivedGame) []*checkersdto.GameRecord {
	out := make([]*checkersdto.GameRecord, 0, len(list))
	for _, g := range list {
		if g == nil {
			continue
		}
		out = append(out, ToGameRecord(g))
	}
	return out
}

func moveTokens(moves []match.MoveStep) []string {
	tokens := make([]string, 0, len(moves))
	for _, mv := range moves {
		tokens = append(tokens, fmt.Sprintf("%d-%d", mv.From, mv.To))
	}
	return tokens
}

func pieceTokens(list []engine.Piece) []string {
	tokens := make([]string, 0, len(list))
	for _, p := range list {
		tokens = append(tokens, strings.ToLower(p.Kind.String()))
	}
	return tokens
}
