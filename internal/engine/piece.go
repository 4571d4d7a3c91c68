package engine

// Side identifies one of the two players. Red sits at the bottom of the board
// and advances toward row 0; Black sits at the top and advances toward row 7.
type Side int

const (
	SideRed Side = iota
	SideBlack
)

func (s Side) Opponent() Side {
	if s == SideRed {
		return SideBlack
	}
	return SideRed
}

func (s Side) String() string {
	if s == SideRed {
		return "Red"
	}
	return "Black"
}

// forward is the row delta a Man of this side moves in.
func (s Side) forward() int {
	if s == SideRed {
		return -1
	}
	return 1
}

// Kind is the piece variant. A Man becomes a King by substitution when it
// reaches the far row; the two differ only in movement capability.
type Kind int

const (
	Man Kind = iota
	King
)

func (k Kind) String() string {
	if k == King {
		return "King"
	}
	return "Man"
}

type Piece struct {
	Kind Kind
	Side Side
}

// Directions returns the diagonal step deltas the piece may attempt.
// Men get the two forward diagonals of their side, Kings all four.
func (p Piece) Directions() []Coord {
	if p.Kind == King {
		return []Coord{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	}
	f := p.Side.forward()
	return []Coord{{f, -1}, {f, 1}}
}
