package checkersdto

import "time"

type GameRecord struct {
	ID          int64     `json:"id"`
	SessionID   string    `json:"session_id"`
	RedName     string    `json:"red_name"`
	BlackName   string    `json:"black_name"`
	Result      string    `json:"result"`
	Reason      string    `json:"reason,omitempty"`
	Winner      string    `json:"winner,omitempty"`
	Moves       []string  `json:"moves"`
	Notation    []string  `json:"notation"`
	RedTimeMS   int64     `json:"red_time_ms"`
	BlackTimeMS int64     `json:"black_time_ms"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}
