package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"

	"github.com/ethanwaldo/checkers/internal/engine"
)

// MoveHighlight marks the last executed move on the rendered board.
type MoveHighlight struct {
	From engine.Coord
	To   engine.Coord
}

type RenderOptions struct {
	Highlight *MoveHighlight
}

type BoardRenderer interface {
	RenderPNG(ctx context.Context, g *engine.Game, opts RenderOptions) ([]byte, error)
}

type svgBoardRenderer struct {
}

func NewSVGBoardRenderer() BoardRenderer {
	return &svgBoardRenderer{}
}

const (
	squareSize   = 72
	boardSquares = engine.Dimension
	boardSize    = squareSize * boardSquares
	margin       = 24
)

var (
	lightSquare      = color.RGBA{233, 207, 163, 255}
	darkSquare       = color.RGBA{139, 95, 60, 255}
	backgroundColor  = color.RGBA{46, 38, 30, 255}
	fromOverlayColor = color.NRGBA{R: 255, G: 228, B: 120, A: 110}
	toOverlayColor   = color.NRGBA{R: 255, G: 228, B: 120, A: 160}
)

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, g *engine.Game, opts RenderOptions) ([]byte, error) {
	if g == nil {
		return nil, fmt.Errorf("game is nil")
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	total := boardSize + margin*2
	origin := image.Point{X: margin, Y: margin}
	img := image.NewRGBA(image.Rect(0, 0, total, total))

	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)
	drawSquares(img, origin)
	drawHighlight(img, opts.Highlight, origin)
	if err := drawPieces(img, g, origin); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return pngBuf.Bytes(), nil
}

func drawSquares(dst imagedraw.Image, origin image.Point) {
	for row := 0; row < boardSquares; row++ {
		for col := 0; col < boardSquares; col++ {
			clr := lightSquare
			if (engine.Coord{Row: row, Col: col}).Playable() {
				clr = darkSquare
			}
			rect := squareRect(engine.Coord{Row: row, Col: col}, origin)
			imagedraw.Draw(dst, rect, image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawHighlight(img *image.RGBA, highlight *MoveHighlight, origin image.Point) {
	if img == nil || highlight == nil {
		return
	}
	drawSquareOverlay(img, highlight.From, origin, fromOverlayColor)
	drawSquareOverlay(img, highlight.To, origin, toOverlayColor)
}

func drawSquareOverlay(img *image.RGBA, c engine.Coord, origin image.Point, clr color.Color) {
	if !c.InBounds() {
		return
	}
	rect := squareRect(c, origin)
	imagedraw.Draw(img, rect, image.NewUniform(clr), image.Point{}, imagedraw.Over)
}

func drawPieces(dst imagedraw.Image, g *engine.Game, origin image.Point) error {
	for row := 0; row < boardSquares; row++ {
		for col := 0; col < boardSquares; col++ {
			c := engine.Coord{Row: row, Col: col}
			piece, ok := g.PieceAt(c)
			if !ok {
				continue
			}
			img, err := renderPieceImage(piece, squareSize)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, squareRect(c, origin), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

func squareRect(c engine.Coord, origin image.Point) image.Rectangle {
	x := origin.X + c.Col*squareSize
	y := origin.Y + c.Row*squareSize
	return image.Rect(x, y, x+squareSize, y+squareSize)
}
