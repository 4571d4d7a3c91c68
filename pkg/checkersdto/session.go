package checkersdto

// CapturedPieces lists piece tokens each side has lost, in capture order.
type CapturedPieces struct {
	Red   []string `json:"red"`
	Black []string `json:"black"`
}

type SessionState struct {
	SessionID   string         `json:"session_id"`
	RedName     string         `json:"red_name"`
	BlackName   string         `json:"black_name"`
	Moves       []string       `json:"moves"`
	Notation    []string       `json:"notation"`
	Position    string         `json:"position"`
	Turn        string         `json:"turn"`
	MoveCount   int            `json:"move_count"`
	Status      string         `json:"status"`
	Reason      string         `json:"reason,omitempty"`
	Winner      string         `json:"winner,omitempty"`
	Captured    CapturedPieces `json:"captured"`
	RedTimeMS   int64          `json:"red_time_ms"`
	BlackTimeMS int64          `json:"black_time_ms"`
	BoardImage  []byte         `json:"board_image,omitempty"`
}
