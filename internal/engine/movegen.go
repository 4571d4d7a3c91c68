package engine

// Jump is a (start, destination) pair for an available capture.
type Jump struct {
	From Coord
	To   Coord
}

// MovesFrom returns every destination reachable by the piece at from: adjacent
// empty squares, plus landing squares one step beyond an adjacent enemy piece.
// Generation is read-only; the caller classifies a destination as a jump iff
// its row distance from the start is 2.
func MovesFrom(b *Board, from Coord) []Coord {
	piece := b.pieceAt(from)
	if piece == nil {
		return nil
	}
	var out []Coord
	for _, dir := range piece.Directions() {
		step := from.add(dir)
		if !step.InBounds() {
			continue
		}
		target := b.pieceAt(step)
		if target == nil {
			out = append(out, step)
			continue
		}
		if target.Side == piece.Side {
			continue
		}
		landing := step.add(dir)
		if landing.InBounds() && b.pieceAt(landing) == nil {
			out = append(out, landing)
		}
	}
	return out
}

// AllJumps scans the whole board and collects every available capture for the
// given side. Used to enforce the forced-capture rule.
func AllJumps(b *Board, side Side) []Jump {
	var jumps []Jump
	for _, c := range squares() {
		piece := b.pieceAt(c)
		if piece == nil || piece.Side != side {
			continue
		}
		for _, dest := range MovesFrom(b, c) {
			if rowDistance(c, dest) == 2 {
				jumps = append(jumps, Jump{From: c, To: dest})
			}
		}
	}
	return jumps
}

// LegalMovesForPiece returns the legal destinations for the piece at from.
// The piece must belong to the side to move. If any capture exists anywhere
// on the board for that side, only captures are legal: a piece with no jump
// of its own gets an empty result even if it has simple moves.
func (g *Game) LegalMovesForPiece(from Coord) []Coord {
	piece := g.board.pieceAt(from)
	if piece == nil || piece.Side != g.SideToMove() {
		return nil
	}
	jumps := AllJumps(g.board, g.SideToMove())
	if len(jumps) > 0 {
		var out []Coord
		for _, j := range jumps {
			if j.From == from {
				out = append(out, j.To)
			}
		}
		return out
	}
	return MovesFrom(g.board, from)
}

func rowDistance(a, b Coord) int {
	d := a.Row - b.Row
	if d < 0 {
		d = -d
	}
	return d
}
