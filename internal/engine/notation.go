package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Notation renders the move as <file><rank><sep><file><rank>, with 'x' as the
// separator for captures and '-' otherwise, and "=K" appended on promotion.
// Files map a-h to columns 0-7; ranks count 8 down to 1 from row 0.
func (m Move) Notation() string {
	sep := byte('-')
	if m.Captured != nil {
		sep = 'x'
	}
	out := fmt.Sprintf("%s%c%s", squareName(m.From), sep, squareName(m.To))
	if m.Promoted {
		out += "=K"
	}
	return out
}

func squareName(c Coord) string {
	return fmt.Sprintf("%c%d", 'a'+byte(c.Col), Dimension-c.Row)
}

// SquareOf numbers the playable squares 1-32 in row-major order.
func SquareOf(c Coord) int {
	return c.Row*4 + c.Col/2 + 1
}

// CoordOfSquare is the inverse of SquareOf. It fails for numbers outside 1-32.
func CoordOfSquare(n int) (Coord, error) {
	if n < 1 || n > 32 {
		return Coord{}, fmt.Errorf("square %d out of range 1-32", n)
	}
	row := (n - 1) / 4
	offset := (n - 1) % 4
	col := offset * 2
	if row%2 == 0 {
		col++
	}
	return Coord{Row: row, Col: col}, nil
}

// PositionString encodes the position in the compact bracketed form consumed
// by the advisory service: [<turn>:<red squares>:<black squares>], one-letter
// turn code, each occupied square listed by number with a K prefix for kings.
func (g *Game) PositionString() string {
	turn := "B"
	if g.SideToMove() == SideRed {
		turn = "R"
	}

	var red, black []string
	for _, c := range squares() {
		if !c.Playable() {
			continue
		}
		piece := g.board.pieceAt(c)
		if piece == nil {
			continue
		}
		entry := strconv.Itoa(SquareOf(c))
		if piece.Kind == King {
			entry = "K" + entry
		}
		if piece.Side == SideRed {
			red = append(red, entry)
		} else {
			black = append(black, entry)
		}
	}
	return fmt.Sprintf("[%s:%s:%s]", turn, strings.Join(red, ","), strings.Join(black, ","))
}

// ParseAdvice parses an advisory reply of the exact form "<start>-<end>" with
// both sides square numbers 1-32. Anything else is a parse failure.
func ParseAdvice(reply string) (from, to Coord, err error) {
	parts := strings.Split(strings.TrimSpace(reply), "-")
	if len(parts) != 2 {
		return Coord{}, Coord{}, fmt.Errorf("malformed advice %q", reply)
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return Coord{}, Coord{}, fmt.Errorf("malformed advice %q", reply)
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return Coord{}, Coord{}, fmt.Errorf("malformed advice %q", reply)
	}
	if from, err = CoordOfSquare(a); err != nil {
		return Coord{}, Coord{}, err
	}
	if to, err = CoordOfSquare(b); err != nil {
		return Coord{}, Coord{}, err
	}
	return from, to, nil
}
