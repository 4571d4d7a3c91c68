package match

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ethanwaldo/checkers/internal/engine"
)

// memrepo is an in-memory archive used when no database is configured, and
// by tests.
type memrepo struct {
	mu sync.RWMutex

	nextID int64
	byID   map[string]*ArchivedGame
	order  []*ArchivedGame
}

func NewMemoryRepository() Repository {
	return &memrepo{byID: make(map[string]*ArchivedGame)}
}

func (m *memrepo) SaveResult(ctx context.Context, s *Session, g *engine.Game) error {
	if s == nil {
		return ErrDuplicateGame
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[s.ID]; exists {
		return ErrDuplicateGame
	}
	m.nextID++
	game := &ArchivedGame{
		ID:         m.nextID,
		SessionID:  s.ID,
		RedName:    s.RedName,
		BlackName:  s.BlackName,
		Result:     s.Status,
		Reason:     s.Reason,
		Winner:     s.Winner,
		Moves:      append([]MoveStep(nil), s.Moves...),
		Notation:   append([]string(nil), s.Notation...),
		StartedAt:  s.CreatedAt,
		FinishedAt: s.UpdatedAt,
	}
	if g != nil {
		game.RedTime = g.TurnTime(engine.SideRed)
		game.BlackTime = g.TurnTime(engine.SideBlack)
	}
	if game.FinishedAt.IsZero() {
		game.FinishedAt = time.Now()
	}
	m.byID[s.ID] = game
	m.order = append(m.order, game)
	return nil
}

func (m *memrepo) GetGame(ctx context.Context, sessionID string) (*ArchivedGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	game, ok := m.byID[sessionID]
	if !ok {
		return nil, nil
	}
	copied := *game
	return &copied, nil
}

func (m *memrepo) GetRecentGames(ctx context.Context, limit int) ([]*ArchivedGame, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	items := append([]*ArchivedGame(nil), m.order...)
	sort.Slice(items, func(i, j int) bool {
		if !items[i].FinishedAt.Equal(items[j].FinishedAt) {
			return items[i].FinishedAt.After(items[j].FinishedAt)
		}
		return items[i].ID > items[j].ID
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	out := make([]*ArchivedGame, len(items))
	for i, g := range items {
		copied := *g
		out[i] = &copied
	}
	return out, nil
}
