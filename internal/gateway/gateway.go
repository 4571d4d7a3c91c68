// Package gateway exposes the match service over a websocket JSON protocol.
// Each client connection carries Command envelopes in and Event envelopes out.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/ethanwaldo/checkers/internal/adapter/presenter"
	"github.com/ethanwaldo/checkers/internal/advisor"
	"github.com/ethanwaldo/checkers/internal/engine"
	"github.com/ethanwaldo/checkers/internal/match"
	"github.com/ethanwaldo/checkers/internal/obslog"
	"github.com/ethanwaldo/checkers/internal/render"
	"github.com/ethanwaldo/checkers/pkg/checkersdto"
)

const readTimeout = 10 * time.Minute

type Server struct {
	manager   *match.Manager
	suggester advisor.Suggester
	renderer  render.BoardRenderer
	formatter *presenter.Formatter
	repo      match.Repository

	redName      string
	blackName    string
	historyLimit int

	httpSrv *http.Server
}

type Options struct {
	Manager    *match.Manager
	Suggester  advisor.Suggester
	Renderer   render.BoardRenderer
	Formatter  *presenter.Formatter
	Repository match.Repository

	// RedName and BlackName seed new sessions when the client does not
	// name the players itself.
	RedName      string
	BlackName    string
	HistoryLimit int
}

func NewServer(opts Options) *Server {
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = 10
	}
	return &Server{
		manager:      opts.Manager,
		suggester:    opts.Suggester,
		renderer:     opts.Renderer,
		formatter:    opts.Formatter,
		repo:         opts.Repository,
		redName:      opts.RedName,
		blackName:    opts.BlackName,
		historyLimit: limit,
	}
}

func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// ListenAndServe blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe(addr string) error {
	s.httpSrv = &http.Server{Addr: addr, Handler: s.handler()}
	obslog.L().Info("gateway_listen", zap.String("addr", addr))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		obslog.L().Warn("ws_accept_failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusInternalError, "closing")

	obslog.L().Info("ws_connected", zap.String("remote", r.RemoteAddr))

	// Board replies go out through a presenter bound to this connection:
	// a text frame first, then the rendered image as its own frame.
	pres := presenter.NewPresenter(
		func(message string) error {
			return wsjson.Write(r.Context(), conn, &checkersdto.Event{Op: "message", Message: message})
		},
		func(imageBase64 string) error {
			return wsjson.Write(r.Context(), conn, &checkersdto.Event{Op: "board_image", Message: imageBase64})
		},
	)

	for {
		readCtx, cancel := context.WithTimeout(r.Context(), readTimeout)
		var cmd checkersdto.Command
		err := wsjson.Read(readCtx, conn, &cmd)
		cancel()
		if err != nil {
			obslog.L().Info("ws_closed", zap.String("remote", r.RemoteAddr), zap.Error(err))
			return
		}

		event := s.dispatch(r.Context(), &cmd, pres)
		if event == nil {
			continue
		}
		if err := wsjson.Write(r.Context(), conn, event); err != nil {
			obslog.L().Warn("ws_write_failed", zap.Error(err))
			return
		}
	}
}

// dispatch routes one command. A nil return means the handler already
// delivered its reply through the presenter.
func (s *Server) dispatch(ctx context.Context, cmd *checkersdto.Command, pres *presenter.Presenter) *checkersdto.Event {
	var (
		event *checkersdto.Event
		err   error
	)
	switch cmd.Op {
	case "new":
		event, err = s.handleNew(ctx, cmd)
	case "state":
		event, err = s.handleState(ctx, cmd)
	case "position":
		event, err = s.handlePosition(ctx, cmd)
	case "board":
		event, err = s.handleBoard(ctx, cmd, pres)
	case "legal":
		event, err = s.handleLegal(ctx, cmd)
	case "move":
		event, err = s.handleMove(ctx, cmd)
	case "undo":
		event, err = s.handleUndo(ctx, cmd)
	case "resign":
		event, err = s.handleResign(ctx, cmd)
	case "draw":
		event, err = s.handleDraw(ctx, cmd)
	case "hint":
		event, err = s.handleHint(ctx, cmd)
	case "hint_result":
		event, err = s.handleHintResult(ctx, cmd)
	case "history":
		event, err = s.handleHistory(ctx, cmd)
	default:
		err = &checkersdto.DomainError{Code: "unknown_op", Message: fmt.Sprintf("unknown op %q", cmd.Op)}
	}
	if err != nil {
		return s.errorEvent(cmd.Op, err)
	}
	return event
}

func (s *Server) handleNew(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	red := cmd.RedName
	if red == "" {
		red = s.redName
	}
	black := cmd.BlackName
	if black == "" {
		black = s.blackName
	}
	sess, err := s.manager.Create(ctx, red, black)
	if err != nil {
		return nil, err
	}
	_, g, err := s.manager.Load(ctx, sess.ID)
	if err != nil {
		return nil, err
	}
	state := presenter.ToState(sess, g, nil)
	return &checkersdto.Event{
		Op:      cmd.Op,
		Message: s.formatter.SessionCreated(state),
		State:   state,
	}, nil
}

func (s *Server) handleState(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	sess, g, err := s.manager.Load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	state := presenter.ToState(sess, g, nil)
	return &checkersdto.Event{
		Op:      cmd.Op,
		Message: s.formatter.Turn(state),
		State:   state,
	}, nil
}

func (s *Server) handlePosition(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	_, g, err := s.manager.Load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	return &checkersdto.Event{Op: cmd.Op, Message: g.PositionString()}, nil
}

func (s *Server) handleBoard(ctx context.Context, cmd *checkersdto.Command, pres *presenter.Presenter) (*checkersdto.Event, error) {
	sess, g, err := s.manager.Load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	var opts render.RenderOptions
	if hist := g.History(); len(hist) > 0 {
		last := hist[len(hist)-1]
		opts.Highlight = &render.MoveHighlight{From: last.From, To: last.To}
	}
	img, err := s.renderer.RenderPNG(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	state := presenter.ToState(sess, g, img)
	if err := pres.Board(s.formatter.Turn(state), state); err != nil {
		obslog.L().Warn("board_delivery_failed", zap.Error(err))
	}
	return nil, nil
}

func (s *Server) handleLegal(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	from, err := engine.CoordOfSquare(cmd.From)
	if err != nil {
		return nil, &checkersdto.DomainError{Code: "bad_square", Message: err.Error()}
	}
	targets, err := s.manager.LegalMoves(ctx, cmd.SessionID, from)
	if err != nil {
		return nil, err
	}
	moves := make([]string, 0, len(targets))
	for _, to := range targets {
		moves = append(moves, fmt.Sprintf("%d-%d", cmd.From, engine.SquareOf(to)))
	}
	return &checkersdto.Event{Op: cmd.Op, LegalMoves: moves}, nil
}

func (s *Server) handleMove(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	from, err := engine.CoordOfSquare(cmd.From)
	if err != nil {
		return nil, &checkersdto.DomainError{Code: "bad_square", Message: err.Error()}
	}
	to, err := engine.CoordOfSquare(cmd.To)
	if err != nil {
		return nil, &checkersdto.DomainError{Code: "bad_square", Message: err.Error()}
	}
	mover := ""
	if _, g, err := s.manager.Load(ctx, cmd.SessionID); err == nil {
		mover = g.CurrentPlayer().Name
	}
	sess, err := s.manager.PlayMove(ctx, cmd.SessionID, from, to)
	if err != nil {
		return nil, err
	}
	_, g, err := s.manager.Load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	state := presenter.ToState(sess, g, nil)
	summary := presenter.ToMoveSummary(state)
	msg := s.formatter.MovePlayed(mover, summary.Notation)
	if summary.Finished {
		msg = s.formatter.Turn(state)
	}
	return &checkersdto.Event{Op: cmd.Op, Message: msg, Summary: summary}, nil
}

func (s *Server) handleUndo(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	sess, err := s.manager.Undo(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	_, g, err := s.manager.Load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	state := presenter.ToState(sess, g, nil)
	return &checkersdto.Event{Op: cmd.Op, Message: s.formatter.UndoDone(), State: state}, nil
}

func (s *Server) handleResign(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	mover := ""
	if _, g, err := s.manager.Load(ctx, cmd.SessionID); err == nil {
		mover = g.CurrentPlayer().Name
	}
	sess, err := s.manager.Resign(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	_, g, err := s.manager.Load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	state := presenter.ToState(sess, g, nil)
	return &checkersdto.Event{
		Op:      cmd.Op,
		Message: s.formatter.Resigned(mover, state.Winner),
		State:   state,
	}, nil
}

func (s *Server) handleDraw(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	sess, err := s.manager.OfferDraw(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	_, g, err := s.manager.Load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	state := presenter.ToState(sess, g, nil)
	return &checkersdto.Event{Op: cmd.Op, Message: s.formatter.Turn(state), State: state}, nil
}

func (s *Server) handleHint(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	if s.suggester == nil {
		return nil, &checkersdto.DomainError{Code: "hints_disabled", Message: "no advisor is configured"}
	}
	if err := s.manager.RequestHint(ctx, cmd.SessionID, s.suggester); err != nil {
		return nil, err
	}
	return &checkersdto.Event{Op: cmd.Op, Message: s.formatter.HintRequested()}, nil
}

func (s *Server) handleHintResult(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	sess, notation, err := s.manager.ResolveHint(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	_, g, err := s.manager.Load(ctx, cmd.SessionID)
	if err != nil {
		return nil, err
	}
	state := presenter.ToState(sess, g, nil)
	move := ""
	if n := len(state.Moves); n > 0 {
		move = state.Moves[n-1]
	}
	return &checkersdto.Event{
		Op:         cmd.Op,
		Message:    s.formatter.HintApplied(notation),
		State:      state,
		Suggestion: &checkersdto.HintSuggestion{Move: move, Notation: notation},
	}, nil
}

func (s *Server) handleHistory(ctx context.Context, cmd *checkersdto.Command) (*checkersdto.Event, error) {
	if s.repo == nil {
		return nil, &checkersdto.DomainError{Code: "no_archive", Message: "game archive is not configured"}
	}
	limit := cmd.Limit
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	games, err := s.repo.GetRecentGames(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &checkersdto.Event{Op: cmd.Op, Games: presenter.ToGameRecords(games)}, nil
}

func (s *Server) errorEvent(op string, err error) *checkersdto.Event {
	var de *checkersdto.DomainError
	if errors.As(err, &de) {
		return &checkersdto.Event{Op: op, Error: de}
	}
	code, retryable := classify(err)
	message := s.humanize(code)
	if message == "" {
		message = err.Error()
	}
	return &checkersdto.Event{Op: op, Error: &checkersdto.DomainError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}}
}

// humanize returns user-facing text for a wire code when the catalog has one.
func (s *Server) humanize(code string) string {
	switch code {
	case "not_found":
		return s.formatter.SessionNotFound()
	case "finished":
		return s.formatter.SessionFinished()
	case "illegal_move":
		return s.formatter.MoveRejected()
	case "nothing_to_undo":
		return s.formatter.UndoEmpty()
	case "hint_pending":
		return s.formatter.HintPending()
	case "hint_failed":
		return s.formatter.HintFailed()
	case "hint_rejected":
		return s.formatter.HintIllegal()
	}
	return ""
}

// classify maps service errors to stable wire codes.
func classify(err error) (code string, retryable bool) {
	switch {
	case errors.Is(err, match.ErrSessionNotFound):
		return "not_found", false
	case errors.Is(err, match.ErrSessionFinished):
		return "finished", false
	case errors.Is(err, match.ErrIllegalMove):
		return "illegal_move", false
	case errors.Is(err, match.ErrNothingToUndo):
		return "nothing_to_undo", false
	case errors.Is(err, match.ErrConcurrentWrite):
		return "conflict", true
	case errors.Is(err, match.ErrHintPending):
		return "hint_pending", true
	case errors.Is(err, match.ErrHintNotReady):
		return "hint_not_ready", true
	case errors.Is(err, match.ErrHintFailed):
		return "hint_failed", false
	case errors.Is(err, match.ErrHintRejected):
		return "hint_rejected", false
	}
	return "internal", false
}
