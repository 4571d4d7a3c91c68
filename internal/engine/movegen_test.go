package engine

import "testing"

// emptyGame clears the initial placement so tests can stage positions.
func emptyGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("", "")
	for _, c := range squares() {
		g.board.setPiece(c, nil)
	}
	return g
}

func place(g *Game, c Coord, p Piece) {
	piece := p
	g.board.setPiece(c, &piece)
}

func hasCoord(list []Coord, c Coord) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func TestMovesFromInitialPosition(t *testing.T) {
	g := NewGame("", "")

	// Red man on square 22 (row 5, col 2) has two open forward diagonals.
	moves := MovesFrom(g.board, Coord{Row: 5, Col: 2})
	if len(moves) != 2 {
		t.Fatalf("expected 2 moves, got %v", moves)
	}
	for _, want := range []Coord{{4, 1}, {4, 3}} {
		if !hasCoord(moves, want) {
			t.Fatalf("missing destination %v in %v", want, moves)
		}
	}

	// Pieces on the back rows are blocked by their own men.
	if moves := MovesFrom(g.board, Coord{Row: 7, Col: 0}); len(moves) != 0 {
		t.Fatalf("blocked piece should have no moves, got %v", moves)
	}

	// No piece, no moves.
	if moves := MovesFrom(g.board, Coord{Row: 4, Col: 1}); moves != nil {
		t.Fatalf("empty square should yield nil, got %v", moves)
	}
}

func TestMovesFromIncludesJumpOverEnemy(t *testing.T) {
	g := emptyGame(t)
	place(g, Coord{5, 2}, Piece{Kind: Man, Side: SideRed})
	place(g, Coord{4, 3}, Piece{Kind: Man, Side: SideBlack})

	moves := MovesFrom(g.board, Coord{5, 2})
	if !hasCoord(moves, Coord{3, 4}) {
		t.Fatalf("expected jump landing (3,4), got %v", moves)
	}
	if !hasCoord(moves, Coord{4, 1}) {
		t.Fatalf("expected open simple move (4,1), got %v", moves)
	}
	// The enemy square itself is never a destination.
	if hasCoord(moves, Coord{4, 3}) {
		t.Fatalf("occupied square must not be a destination: %v", moves)
	}
}

func TestMovesFromNoJumpWhenLandingBlocked(t *testing.T) {
	g := emptyGame(t)
	place(g, Coord{5, 2}, Piece{Kind: Man, Side: SideRed})
	place(g, Coord{4, 3}, Piece{Kind: Man, Side: SideBlack})
	place(g, Coord{3, 4}, Piece{Kind: Man, Side: SideBlack})

	moves := MovesFrom(g.board, Coord{5, 2})
	if hasCoord(moves, Coord{3, 4}) {
		t.Fatalf("landing square occupied, jump must not appear: %v", moves)
	}
}

func TestManMovesForwardOnly(t *testing.T) {
	g := emptyGame(t)
	place(g, Coord{4, 3}, Piece{Kind: Man, Side: SideRed})

	moves := MovesFrom(g.board, Coord{4, 3})
	for _, m := range moves {
		if m.Row >= 4 {
			t.Fatalf("red man must move toward row 0, got %v", moves)
		}
	}
	if len(moves) != 2 {
		t.Fatalf("expected 2 forward diagonals, got %v", moves)
	}
}

func TestKingMovesAllFourDiagonals(t *testing.T) {
	g := emptyGame(t)
	place(g, Coord{4, 3}, Piece{Kind: King, Side: SideRed})

	moves := MovesFrom(g.board, Coord{4, 3})
	if len(moves) != 4 {
		t.Fatalf("king in the open should have 4 moves, got %v", moves)
	}
	for _, want := range []Coord{{3, 2}, {3, 4}, {5, 2}, {5, 4}} {
		if !hasCoord(moves, want) {
			t.Fatalf("missing king destination %v in %v", want, moves)
		}
	}
}

func TestAllJumpsScansWholeSide(t *testing.T) {
	g := emptyGame(t)
	place(g, Coord{5, 2}, Piece{Kind: Man, Side: SideRed})
	place(g, Coord{4, 3}, Piece{Kind: Man, Side: SideBlack})
	place(g, Coord{5, 6}, Piece{Kind: Man, Side: SideRed})
	place(g, Coord{4, 5}, Piece{Kind: Man, Side: SideBlack})

	jumps := AllJumps(g.board, SideRed)
	if len(jumps) != 2 {
		t.Fatalf("expected 2 red jumps, got %v", jumps)
	}
	seen := map[Jump]bool{}
	for _, j := range jumps {
		seen[j] = true
	}
	if !seen[Jump{Coord{5, 2}, Coord{3, 4}}] {
		t.Fatalf("missing jump from (5,2): %v", jumps)
	}
	if !seen[Jump{Coord{5, 6}, Coord{3, 4}}] {
		t.Fatalf("missing jump from (5,6): %v", jumps)
	}

	// Black men jump downward over the red men into the empty row 6.
	if jumps := AllJumps(g.board, SideBlack); len(jumps) != 2 {
		t.Fatalf("expected 2 black jumps, got %v", jumps)
	}
}

// Forced capture: with any jump available to the side, a piece without jumps
// of its own has no legal moves, and a piece with jumps gets exactly those.
func TestForcedCapturePrecedence(t *testing.T) {
	g := emptyGame(t)
	place(g, Coord{5, 2}, Piece{Kind: Man, Side: SideRed}) // has a jump
	place(g, Coord{4, 3}, Piece{Kind: Man, Side: SideBlack})
	place(g, Coord{6, 5}, Piece{Kind: Man, Side: SideRed}) // only simple moves

	withJump := g.LegalMovesForPiece(Coord{5, 2})
	if len(withJump) != 1 || withJump[0] != (Coord{3, 4}) {
		t.Fatalf("expected only the jump destination, got %v", withJump)
	}

	withoutJump := g.LegalMovesForPiece(Coord{6, 5})
	if len(withoutJump) != 0 {
		t.Fatalf("piece without a capture must be immobile while a capture exists, got %v", withoutJump)
	}
}

func TestLegalMovesAllSimpleWhenNoJumps(t *testing.T) {
	g := emptyGame(t)
	place(g, Coord{5, 2}, Piece{Kind: Man, Side: SideRed})

	moves := g.LegalMovesForPiece(Coord{5, 2})
	if len(moves) != 2 {
		t.Fatalf("expected both simple moves, got %v", moves)
	}
}

func TestLegalMovesRejectsWrongSide(t *testing.T) {
	g := NewGame("", "")

	// Red to move; black pieces report no legal moves.
	if moves := g.LegalMovesForPiece(Coord{2, 1}); len(moves) != 0 {
		t.Fatalf("opponent piece must have no legal moves, got %v", moves)
	}
	if moves := g.LegalMovesForPiece(Coord{4, 1}); len(moves) != 0 {
		t.Fatalf("empty square must have no legal moves, got %v", moves)
	}
}
