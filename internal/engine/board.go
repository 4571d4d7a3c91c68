package engine

// Dimension is the board edge length. Only the 32 dark squares, those where
// row+col is odd, are playable.
const Dimension = 8

type Coord struct {
	Row int
	Col int
}

func (c Coord) InBounds() bool {
	return c.Row >= 0 && c.Row < Dimension && c.Col >= 0 && c.Col < Dimension
}

func (c Coord) Playable() bool {
	return c.InBounds() && (c.Row+c.Col)%2 == 1
}

func (c Coord) add(d Coord) Coord {
	return Coord{Row: c.Row + d.Row, Col: c.Col + d.Col}
}

// midpoint is the square jumped over when moving from c to other.
func (c Coord) midpoint(other Coord) Coord {
	return Coord{Row: (c.Row + other.Row) / 2, Col: (c.Col + other.Col) / 2}
}

// Board is an 8x8 grid of optional pieces. It is owned by a Game; nothing
// outside the engine holds a reference into the grid.
type Board struct {
	cells [Dimension][Dimension]*Piece
}

// NewBoard returns a board with the standard initial placement: Black men on
// the dark squares of rows 0-2, Red men on the dark squares of rows 5-7.
func NewBoard() *Board {
	b := &Board{}
	for row := 0; row < 3; row++ {
		for col := 0; col < Dimension; col++ {
			if (row+col)%2 == 1 {
				b.cells[row][col] = &Piece{Kind: Man, Side: SideBlack}
			}
		}
	}
	for row := 5; row < Dimension; row++ {
		for col := 0; col < Dimension; col++ {
			if (row+col)%2 == 1 {
				b.cells[row][col] = &Piece{Kind: Man, Side: SideRed}
			}
		}
	}
	return b
}

// PieceAt returns the piece occupying c, or false for an empty square.
func (b *Board) PieceAt(c Coord) (Piece, bool) {
	if !c.InBounds() {
		return Piece{}, false
	}
	p := b.cells[c.Row][c.Col]
	if p == nil {
		return Piece{}, false
	}
	return *p, true
}

func (b *Board) pieceAt(c Coord) *Piece {
	if !c.InBounds() {
		return nil
	}
	return b.cells[c.Row][c.Col]
}

func (b *Board) setPiece(c Coord, p *Piece) {
	b.cells[c.Row][c.Col] = p
}

// Count returns the number of pieces a side has on the board.
func (b *Board) Count(side Side) int {
	n := 0
	for row := 0; row < Dimension; row++ {
		for col := 0; col < Dimension; col++ {
			if p := b.cells[row][col]; p != nil && p.Side == side {
				n++
			}
		}
	}
	return n
}

// squares yields every coordinate in row-major order.
func squares() []Coord {
	out := make([]Coord, 0, Dimension*Dimension)
	for row := 0; row < Dimension; row++ {
		for col := 0; col < Dimension; col++ {
			out = append(out, Coord{Row: row, Col: col})
		}
	}
	return out
}
