package engine

import (
	"strings"
	"time"
)

// Status is the game-level outcome. Draw and win statuses are terminal only by
// convention at the boundary; the engine keeps recomputing after every change.
type Status int

const (
	StatusActive Status = iota
	StatusRedWins
	StatusBlackWins
	StatusDrawAgreement
	StatusDrawRepetition
)

func (s Status) String() string {
	switch s {
	case StatusRedWins:
		return "red_wins"
	case StatusBlackWins:
		return "black_wins"
	case StatusDrawAgreement:
		return "draw_agreement"
	case StatusDrawRepetition:
		return "draw_repetition"
	default:
		return "active"
	}
}

// Reason qualifies a terminal status.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonAllCaptured
	ReasonNoMoves
	ReasonResignation
	ReasonAgreement
	ReasonRepetition
)

func (r Reason) String() string {
	switch r {
	case ReasonAllCaptured:
		return "all_captured"
	case ReasonNoMoves:
		return "no_legal_moves"
	case ReasonResignation:
		return "resignation"
	case ReasonAgreement:
		return "agreement"
	case ReasonRepetition:
		return "threefold_repetition"
	default:
		return ""
	}
}

type Player struct {
	Name string
	Side Side
}

// Game owns the board and all mutable state of one checkers game: players,
// turn, history, captured pieces, per-side clocks, and the position occurrence
// map used for threefold-repetition detection. It is not safe for concurrent
// use; callers serialize access.
type Game struct {
	board     *Board
	players   [2]Player
	current   int
	status    Status
	reason    Reason
	history   []Move
	captured  [2][]Piece // indexed by the side that lost the piece
	turnTime  [2]time.Duration
	turnStart time.Time
	positions map[string]int
}

func NewGame(redName, blackName string) *Game {
	if strings.TrimSpace(redName) == "" {
		redName = "Red"
	}
	if strings.TrimSpace(blackName) == "" {
		blackName = "Black"
	}
	g := &Game{
		board: NewBoard(),
		players: [2]Player{
			{Name: redName, Side: SideRed},
			{Name: blackName, Side: SideBlack},
		},
		turnStart: time.Now(),
		positions: make(map[string]int),
	}
	g.recordPosition()
	return g
}

func (g *Game) SideToMove() Side      { return g.players[g.current].Side }
func (g *Game) CurrentPlayer() Player { return g.players[g.current] }

// Player returns the player record for a side.
func (g *Game) Player(side Side) Player { return g.players[playerIndex(side)] }
func (g *Game) Status() Status          { return g.status }
func (g *Game) Reason() Reason          { return g.reason }

// Winner returns the winning side for a win status.
func (g *Game) Winner() (Side, bool) {
	switch g.status {
	case StatusRedWins:
		return SideRed, true
	case StatusBlackWins:
		return SideBlack, true
	}
	return 0, false
}

// PieceAt is the external read access to the board; the grid itself is never
// shared outside the game.
func (g *Game) PieceAt(c Coord) (Piece, bool) {
	return g.board.PieceAt(c)
}

// History returns a copy of the move history, oldest first.
func (g *Game) History() []Move {
	return append([]Move(nil), g.history...)
}

// CapturedFrom returns the pieces side has lost, in capture order.
func (g *Game) CapturedFrom(side Side) []Piece {
	return append([]Piece(nil), g.captured[side]...)
}

// TurnTime returns the cumulative time side has spent on its completed turns.
func (g *Game) TurnTime(side Side) time.Duration {
	return g.turnTime[playerIndex(side)]
}

// MakeMove executes a move that the caller has already validated against
// LegalMovesForPiece. It returns false, changing nothing, when there is no
// piece at from or the piece does not belong to the side to move; it does not
// re-check legality beyond that.
func (g *Game) MakeMove(from, to Coord) bool {
	piece := g.board.pieceAt(from)
	if piece == nil || piece.Side != g.SideToMove() {
		return false
	}

	elapsed := time.Since(g.turnStart)
	move := g.executeBoardMove(from, to, elapsed)

	g.history = append(g.history, move)
	g.turnTime[g.current] += move.Duration
	g.turnStart = time.Now()
	g.current = 1 - g.current
	g.recordPosition()
	g.updateStatus()
	return true
}

func (g *Game) executeBoardMove(from, to Coord, elapsed time.Duration) Move {
	piece := *g.board.pieceAt(from)
	move := Move{
		Piece:    piece,
		From:     from,
		To:       to,
		Result:   piece,
		Duration: elapsed,
	}

	if rowDistance(from, to) == 2 {
		mid := from.midpoint(to)
		if victim := g.board.pieceAt(mid); victim != nil {
			captured := *victim
			move.Captured = &captured
			move.CapturedAt = mid
			g.board.setPiece(mid, nil)
			g.captured[captured.Side] = append(g.captured[captured.Side], captured)
		}
	}

	if piece.Kind == Man && to.Row == promotionRow(piece.Side) {
		move.Promoted = true
		move.Result = Piece{Kind: King, Side: piece.Side}
	}
	result := move.Result
	g.board.setPiece(to, &result)
	g.board.setPiece(from, nil)
	return move
}

func promotionRow(side Side) int {
	if side == SideRed {
		return 0
	}
	return Dimension - 1
}

// UndoLastMove reverses the most recent move: the moved piece returns to its
// start square (demoted back to Man if the move promoted), a captured piece is
// restored at its recorded square and popped from the capture list, the
// mover's clock gives back the recorded duration, and the turn flips back.
// The occurrence count recorded for the undone position is intentionally left
// in place, matching the original engine's behavior; repeated undo/redo can
// therefore inflate a position's count. No-op when the history is empty.
func (g *Game) UndoLastMove() {
	if len(g.history) == 0 {
		return
	}
	move := g.history[len(g.history)-1]
	g.history = g.history[:len(g.history)-1]

	restored := move.Piece
	g.board.setPiece(move.From, &restored)
	g.board.setPiece(move.To, nil)

	if move.Captured != nil {
		captured := *move.Captured
		g.board.setPiece(move.CapturedAt, &captured)
		list := g.captured[captured.Side]
		g.captured[captured.Side] = list[:len(list)-1]
	}

	mover := playerIndex(move.Piece.Side)
	g.turnTime[mover] -= move.Duration
	g.current = 1 - g.current
	g.turnStart = time.Now()
	g.updateStatus()
}

// Resign ends the game in favor of the side not to move, regardless of the
// board state.
func (g *Game) Resign() {
	if g.SideToMove() == SideRed {
		g.status = StatusBlackWins
	} else {
		g.status = StatusRedWins
	}
	g.reason = ReasonResignation
}

// OfferDraw ends the game as a draw by agreement, unconditionally.
func (g *Game) OfferDraw() {
	g.status = StatusDrawAgreement
	g.reason = ReasonAgreement
}

// updateStatus recomputes the game status after every move and undo. Checks
// run in a fixed order: threefold repetition, then all opponent pieces
// captured, then no legal moves for the side to move.
func (g *Game) updateStatus() {
	if g.positions[g.positionKey()] >= 3 {
		g.status = StatusDrawRepetition
		g.reason = ReasonRepetition
		return
	}

	mover := g.SideToMove()
	if g.board.Count(mover.Opponent()) == 0 {
		g.setWin(mover, ReasonAllCaptured)
		return
	}

	for _, c := range squares() {
		piece := g.board.pieceAt(c)
		if piece == nil || piece.Side != mover {
			continue
		}
		if len(g.LegalMovesForPiece(c)) > 0 {
			g.status = StatusActive
			g.reason = ReasonNone
			return
		}
	}
	g.setWin(mover.Opponent(), ReasonNoMoves)
}

func (g *Game) setWin(winner Side, reason Reason) {
	if winner == SideRed {
		g.status = StatusRedWins
	} else {
		g.status = StatusBlackWins
	}
	g.reason = reason
}

// positionKey encodes the full board plus the side to move; equal keys mean
// repetition-equal positions.
func (g *Game) positionKey() string {
	var sb strings.Builder
	sb.Grow(Dimension*Dimension + 1)
	for _, c := range squares() {
		piece := g.board.pieceAt(c)
		switch {
		case piece == nil:
			sb.WriteByte(' ')
		case piece.Kind == King:
			sb.WriteByte(kindSideByte('K', piece.Side))
		default:
			sb.WriteByte(kindSideByte('M', piece.Side))
		}
	}
	if g.current == 0 {
		sb.WriteByte('0')
	} else {
		sb.WriteByte('1')
	}
	return sb.String()
}

func kindSideByte(kind byte, side Side) byte {
	if side == SideBlack {
		return kind | 0x20 // lowercase for black
	}
	return kind
}

func (g *Game) recordPosition() {
	g.positions[g.positionKey()]++
}

// RepetitionCount reports how many times the current position has occurred.
func (g *Game) RepetitionCount() int {
	return g.positions[g.positionKey()]
}

func playerIndex(side Side) int {
	if side == SideRed {
		return 0
	}
	return 1
}
