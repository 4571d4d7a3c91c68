package engine

import "time"

// Move is a historical record of one executed move. It is created by MakeMove,
// appended to the game history, and never mutated afterward; undo pops it.
type Move struct {
	Piece      Piece // as it was before the move
	From       Coord
	To         Coord
	Captured   *Piece // nil for simple moves
	CapturedAt Coord  // midpoint for jumps
	Promoted   bool
	Result     Piece // piece standing on To after the move
	Duration   time.Duration
}

// IsJump reports whether the move captured by jumping, i.e. spans two rows.
func (m Move) IsJump() bool {
	d := m.From.Row - m.To.Row
	if d < 0 {
		d = -d
	}
	return d == 2
}
