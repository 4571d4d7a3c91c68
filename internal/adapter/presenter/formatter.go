package presenter

import (
	"github.com/ethanwaldo/checkers/internal/msgcat"
	"github.com/ethanwaldo/checkers/pkg/checkersdto"
)

// Formatter turns boundary states into user-facing text via the message
// catalog. Every method degrades to a fixed fallback when the catalog is
// missing a key, so presentation never fails a request.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

func (f *Formatter) render(key string, data any, fallback string) string {
	if f == nil || f.cat == nil {
		return fallback
	}
	out, err := f.cat.Render(key, data)
	if err != nil {
		return fallback
	}
	return out
}

func (f *Formatter) SessionCreated(state *checkersdto.SessionState) string {
	if state == nil {
		return ""
	}
	return f.render("session.created", map[string]string{
		"ID":    state.SessionID,
		"Red":   state.RedName,
		"Black": state.BlackName,
	}, "New game started.")
}

func (f *Formatter) SessionNotFound() string {
	return f.render("session.not_found", nil, "No such game.")
}

func (f *Formatter) SessionFinished() string {
	return f.render("session.finished", nil, "This game is already over.")
}

// Turn announces whose move it is, or the final outcome for finished games.
func (f *Formatter) Turn(state *checkersdto.SessionState) string {
	if state == nil {
		return ""
	}
	switch state.Status {
	case "red_wins", "black_wins":
		return f.render("game.win", map[string]string{
			"Winner": state.Winner,
			"Reason": state.Reason,
		}, state.Winner+" wins.")
	case "draw_agreement":
		return f.render("game.draw_agreement", nil, "Draw by agreement.")
	case "draw_repetition":
		return f.render("game.draw_repetition", nil, "Draw by threefold repetition.")
	default:
		return f.render("game.active", map[string]string{"Player": state.Turn}, state.Turn+" to move.")
	}
}

func (f *Formatter) MovePlayed(player, notation string) string {
	return f.render("game.move_played", map[string]string{
		"Player":   player,
		"Notation": notation,
	}, player+" played "+notation+".")
}

func (f *Formatter) MoveRejected() string {
	return f.render("game.move_rejected", nil, "That move is not legal.")
}

func (f *Formatter) UndoDone() string {
	return f.render("game.undo_done", nil, "Last move undone.")
}

func (f *Formatter) UndoEmpty() string {
	return f.render("game.undo_empty", nil, "Nothing to undo.")
}

func (f *Formatter) Resigned(player, winner string) string {
	return f.render("game.resigned", map[string]string{
		"Player": player,
		"Winner": winner,
	}, player+" resigned.")
}

func (f *Formatter) HintRequested() string {
	return f.render("hint.requested", nil, "Asking the advisor for a suggestion...")
}

func (f *Formatter) HintPending() string {
	return f.render("hint.pending", nil, "A suggestion is already being fetched.")
}

func (f *Formatter) HintApplied(notation string) string {
	return f.render("hint.applied", map[string]string{"Notation": notation}, "Advisor played "+notation+".")
}

func (f *Formatter) HintFailed() string {
	return f.render("hint.failed", nil, "The advisor did not produce a usable move.")
}

func (f *Formatter) HintIllegal() string {
	return f.render("hint.illegal", nil, "The advisor suggested an illegal move; ignored.")
}
