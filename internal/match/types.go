package match

import (
	"time"

	"github.com/ethanwaldo/checkers/internal/engine"
)

// MoveStep is one executed move in advisory square numbering (1-32).
type MoveStep struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Session is the durable record of one game: enough to rebuild the engine
// state by replaying the move list from the initial position.
type Session struct {
	ID        string     `json:"id"`
	RedName   string     `json:"red_name"`
	BlackName string     `json:"black_name"`
	Moves     []MoveStep `json:"moves"`
	Notation  []string   `json:"notation"`
	Status    string     `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	Winner    string     `json:"winner,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (s *Session) Finished() bool {
	return s.Status != engine.StatusActive.String()
}

// syncFromGame copies the engine's verdict onto the stored session.
func (s *Session) syncFromGame(g *engine.Game) {
	s.Status = g.Status().String()
	s.Reason = g.Reason().String()
	s.Winner = ""
	if winner, ok := g.Winner(); ok {
		s.Winner = winner.String()
	}
	s.UpdatedAt = time.Now()
}
