package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ethanwaldo/checkers/internal/engine"
	"github.com/ethanwaldo/checkers/internal/obslog"
)

var (
	ErrSessionNotFound = errors.New("game session not found")
	ErrSessionFinished = errors.New("game session already finished")
	ErrIllegalMove     = errors.New("illegal move")
	ErrNothingToUndo   = errors.New("no moves to undo")
	ErrConcurrentWrite = errors.New("concurrent update detected")
)

// Manager owns the active game sessions. The durable copy of each session
// lives in redis as a replayable move list; the live engine Game is cached in
// memory so clocks and repetition counts survive between calls on the same
// process. All mutations go through the manager mutex, and writes to redis
// use WATCH so a session modified elsewhere is never silently overwritten.
type Manager struct {
	rdb  *redis.Client
	ttl  time.Duration
	repo Repository

	mu    sync.Mutex
	games map[string]*engine.Game
	slots map[string]*hintSlot
}

func NewManager(redisURL string, ttl time.Duration) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for match manager")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{
		rdb:   rdb,
		ttl:   ttl,
		games: make(map[string]*engine.Game),
		slots: make(map[string]*hintSlot),
	}, nil
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// AttachRepository wires an archive for finished games.
func (m *Manager) AttachRepository(r Repository) {
	if m != nil {
		m.repo = r
	}
}

// Create starts a new session with the standard initial position.
func (m *Manager) Create(ctx context.Context, redName, blackName string) (*Session, error) {
	g := engine.NewGame(redName, blackName)
	s := &Session{
		ID:        uuid.NewString(),
		RedName:   g.Player(engine.SideRed).Name,
		BlackName: g.Player(engine.SideBlack).Name,
		Moves:     []MoveStep{},
		Notation:  []string{},
		Status:    g.Status().String(),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.games[s.ID] = g
	m.mu.Unlock()

	obslog.L().Info("session_create",
		zap.String("session_id", s.ID),
		zap.String("red", s.RedName),
		zap.String("black", s.BlackName),
	)
	return s, nil
}

// Load returns the stored session together with its live engine game,
// rebuilding the game from the move list when this process has no cached
// copy.
func (m *Manager) Load(ctx context.Context, id string) (*Session, *engine.Game, error) {
	s, err := m.get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if s == nil {
		return nil, nil, ErrSessionNotFound
	}
	g, err := m.liveGame(s)
	if err != nil {
		return nil, nil, err
	}
	return s, g, nil
}

// LegalMoves returns the legal destinations for the piece at from.
func (m *Manager) LegalMoves(ctx context.Context, id string, from engine.Coord) ([]engine.Coord, error) {
	_, g, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return g.LegalMovesForPiece(from), nil
}

// PlayMove validates the move against the legal-move set and executes it.
// The stored session is updated under WATCH so a concurrent writer loses
// cleanly instead of corrupting the move list.
func (m *Manager) PlayMove(ctx context.Context, id string, from, to engine.Coord) (*Session, error) {
	s, g, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Finished() {
		return s, ErrSessionFinished
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// While a suggestion is outstanding for the side to move, no other move
	// may be submitted for that side.
	if hs, ok := m.slots[id]; ok && hs.slot.InFlight() && hs.side == g.SideToMove() {
		return s, ErrHintPending
	}

	legal := false
	for _, dest := range g.LegalMovesForPiece(from) {
		if dest == to {
			legal = true
			break
		}
	}
	if !legal {
		return s, ErrIllegalMove
	}
	if !g.MakeMove(from, to) {
		return s, ErrIllegalMove
	}

	hist := g.History()
	last := hist[len(hist)-1]
	step := MoveStep{From: engine.SquareOf(from), To: engine.SquareOf(to)}

	oldLen := len(s.Moves)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := m.getTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(cur.Moves) != oldLen {
			return redis.TxFailedErr
		}
		cur.Moves = append(cur.Moves, step)
		cur.Notation = append(cur.Notation, last.Notation())
		cur.syncFromGame(g)

		pipe := tx.TxPipeline()
		raw, _ := json.Marshal(cur)
		pipe.Set(ctx, sessionKey(id), raw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		s = cur
		return nil
	}, sessionKey(id))
	if err != nil {
		// The engine already moved; roll it back so cache and store agree.
		g.UndoLastMove()
		if errors.Is(err, redis.TxFailedErr) {
			return nil, ErrConcurrentWrite
		}
		return nil, err
	}

	obslog.L().Info("move_played",
		zap.String("session_id", id),
		zap.String("notation", last.Notation()),
		zap.String("status", s.Status),
		zap.Bool("capture", last.Captured != nil),
		zap.Bool("promotion", last.Promoted),
	)
	m.archiveIfFinal(ctx, s, g)
	return s, nil
}

// Undo reverses the last move of the session.
func (m *Manager) Undo(ctx context.Context, id string) (*Session, error) {
	s, g, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(s.Moves) == 0 {
		return s, ErrNothingToUndo
	}
	g.UndoLastMove()

	oldLen := len(s.Moves)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := m.getTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(cur.Moves) != oldLen {
			return redis.TxFailedErr
		}
		cur.Moves = cur.Moves[:len(cur.Moves)-1]
		cur.Notation = cur.Notation[:len(cur.Notation)-1]
		cur.syncFromGame(g)

		pipe := tx.TxPipeline()
		raw, _ := json.Marshal(cur)
		pipe.Set(ctx, sessionKey(id), raw, m.ttl)
		if _, err := pipe.Exec(ctx); err != nil {
			return err
		}
		s = cur
		return nil
	}, sessionKey(id))
	if err != nil {
		// The engine already popped the move; drop the cached game so the
		// next load replays it from the durable copy.
		delete(m.games, id)
		if errors.Is(err, redis.TxFailedErr) {
			return nil, ErrConcurrentWrite
		}
		return nil, err
	}
	obslog.L().Info("move_undone", zap.String("session_id", id), zap.String("status", s.Status))
	return s, nil
}

// Resign ends the session in favor of the side not to move.
func (m *Manager) Resign(ctx context.Context, id string) (*Session, error) {
	s, g, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Finished() {
		return s, ErrSessionFinished
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	resigner := g.CurrentPlayer().Name
	g.Resign()
	s.syncFromGame(g)
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	obslog.L().Info("session_resign",
		zap.String("session_id", id),
		zap.String("resigner", resigner),
		zap.String("winner", s.Winner),
	)
	m.archiveIfFinal(ctx, s, g)
	return s, nil
}

// OfferDraw ends the session as a draw by agreement.
func (m *Manager) OfferDraw(ctx context.Context, id string) (*Session, error) {
	s, g, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.Finished() {
		return s, ErrSessionFinished
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	g.OfferDraw()
	s.syncFromGame(g)
	if err := m.save(ctx, s); err != nil {
		return nil, err
	}
	obslog.L().Info("session_draw", zap.String("session_id", id))
	m.archiveIfFinal(ctx, s, g)
	return s, nil
}

// liveGame returns the cached engine game, replaying the stored move list on
// a cache miss. Replayed games lose wall-clock turn durations; that is the
// price of rebuilding from the durable copy.
func (m *Manager) liveGame(s *Session) (*engine.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.games[s.ID]; ok {
		return g, nil
	}
	g := engine.NewGame(s.RedName, s.BlackName)
	for i, step := range s.Moves {
		from, err := engine.CoordOfSquare(step.From)
		if err != nil {
			return nil, fmt.Errorf("replay move %d: %w", i, err)
		}
		to, err := engine.CoordOfSquare(step.To)
		if err != nil {
			return nil, fmt.Errorf("replay move %d: %w", i, err)
		}
		if !g.MakeMove(from, to) {
			return nil, fmt.Errorf("replay move %d: %d-%d rejected", i, step.From, step.To)
		}
	}
	m.games[s.ID] = g
	return g, nil
}

func (m *Manager) archiveIfFinal(ctx context.Context, s *Session, g *engine.Game) {
	if m.repo == nil || !s.Finished() {
		return
	}
	if err := m.repo.SaveResult(ctx, s, g); err != nil {
		obslog.L().Error("session_archive_error", zap.String("session_id", s.ID), zap.Error(err))
		return
	}
	obslog.L().Info("session_archive",
		zap.String("session_id", s.ID),
		zap.String("status", s.Status),
		zap.String("reason", s.Reason),
	)
}

func (m *Manager) save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, sessionKey(s.ID), raw, m.ttl).Err()
}

func (m *Manager) get(ctx context.Context, id string) (*Session, error) {
	raw, err := m.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *Manager) getTx(ctx context.Context, tx *redis.Tx, id string) (*Session, error) {
	raw, err := tx.Get(ctx, sessionKey(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func sessionKey(id string) string { return "checkers:session:" + strings.TrimSpace(id) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
