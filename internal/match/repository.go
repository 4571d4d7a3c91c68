package match

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/ethanwaldo/checkers/internal/engine"
)

var ErrDuplicateGame = errors.New("game already archived")

// ArchivedGame is the durable record of a finished game.
type ArchivedGame struct {
	ID         int64
	SessionID  string
	RedName    string
	BlackName  string
	Result     string
	Reason     string
	Winner     string
	Moves      []MoveStep
	Notation   []string
	RedTime    time.Duration
	BlackTime  time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}

// Repository archives finished games. Live session state stays in redis; the
// archive only ever sees terminal results.
type Repository interface {
	SaveResult(ctx context.Context, s *Session, g *engine.Game) error
	GetGame(ctx context.Context, sessionID string) (*ArchivedGame, error)
	GetRecentGames(ctx context.Context, limit int) ([]*ArchivedGame, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// OpenRepository connects to postgres and prepares the schema.
func OpenRepository(ctx context.Context, databaseURL string) (Repository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping: %w", err)
	}
	const schema = `
		CREATE TABLE IF NOT EXISTS checkers_games (
			id           BIGSERIAL PRIMARY KEY,
			session_uuid TEXT NOT NULL UNIQUE,
			red_name     TEXT NOT NULL,
			black_name   TEXT NOT NULL,
			result       TEXT NOT NULL,
			reason       TEXT NOT NULL DEFAULT '',
			winner       TEXT NOT NULL DEFAULT '',
			moves        JSONB NOT NULL,
			notation     JSONB NOT NULL,
			red_time_ms  BIGINT NOT NULL DEFAULT 0,
			black_time_ms BIGINT NOT NULL DEFAULT 0,
			started_at   TIMESTAMPTZ NOT NULL,
			finished_at  TIMESTAMPTZ NOT NULL
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return NewRepository(db), nil
}

func (r *repository) SaveResult(ctx context.Context, s *Session, g *engine.Game) error {
	if s == nil {
		return fmt.Errorf("nil session payload")
	}
	moves, err := json.Marshal(s.Moves)
	if err != nil {
		return fmt.Errorf("marshal moves: %w", err)
	}
	notation, err := json.Marshal(s.Notation)
	if err != nil {
		return fmt.Errorf("marshal notation: %w", err)
	}

	var redMs, blackMs int64
	if g != nil {
		redMs = g.TurnTime(engine.SideRed).Milliseconds()
		blackMs = g.TurnTime(engine.SideBlack).Milliseconds()
	}

	const query = `
		INSERT INTO checkers_games (
			session_uuid, red_name, black_name,
			result, reason, winner,
			moves, notation,
			red_time_ms, black_time_ms,
			started_at, finished_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (session_uuid) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query,
		s.ID, s.RedName, s.BlackName,
		s.Status, s.Reason, s.Winner,
		moves, notation,
		redMs, blackMs,
		s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDuplicateGame
	}
	return nil
}

func (r *repository) GetGame(ctx context.Context, sessionID string) (*ArchivedGame, error) {
	const query = `
		SELECT id, session_uuid, red_name, black_name,
		       result, reason, winner, moves, notation,
		       red_time_ms, black_time_ms, started_at, finished_at
		FROM checkers_games
		WHERE session_uuid = $1`
	row := r.db.QueryRowContext(ctx, query, sessionID)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return game, err
}

func (r *repository) GetRecentGames(ctx context.Context, limit int) ([]*ArchivedGame, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
		SELECT id, session_uuid, red_name, black_name,
		       result, reason, winner, moves, notation,
		       red_time_ms, black_time_ms, started_at, finished_at
		FROM checkers_games
		ORDER BY finished_at DESC, id DESC
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent games: %w", err)
	}
	defer rows.Close()

	var out []*ArchivedGame
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, game)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*ArchivedGame, error) {
	var (
		game            ArchivedGame
		moves, notation []byte
		redMs, blackMs  int64
	)
	if err := row.Scan(
		&game.ID, &game.SessionID, &game.RedName, &game.BlackName,
		&game.Result, &game.Reason, &game.Winner, &moves, &notation,
		&redMs, &blackMs, &game.StartedAt, &game.FinishedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(moves, &game.Moves); err != nil {
		return nil, fmt.Errorf("unmarshal moves: %w", err)
	}
	if err := json.Unmarshal(notation, &game.Notation); err != nil {
		return nil, fmt.Errorf("unmarshal notation: %w", err)
	}
	game.RedTime = time.Duration(redMs) * time.Millisecond
	game.BlackTime = time.Duration(blackMs) * time.Millisecond
	return &game, nil
}
