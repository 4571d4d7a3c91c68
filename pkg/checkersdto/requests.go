package checkersdto

// Command is the client-to-server envelope on the gateway socket. Op selects
// the operation; the remaining fields are read per-op.
type Command struct {
	Op        string `json:"op"`
	SessionID string `json:"session_id,omitempty"`
	RedName   string `json:"red_name,omitempty"`
	BlackName string `json:"black_name,omitempty"`
	From      int    `json:"from,omitempty"`
	To        int    `json:"to,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// Event is the server-to-client envelope. Exactly one payload field is set
// besides Op and Message.
type Event struct {
	Op         string          `json:"op"`
	Message    string          `json:"message,omitempty"`
	State      *SessionState   `json:"state,omitempty"`
	Summary    *MoveSummary    `json:"summary,omitempty"`
	Suggestion *HintSuggestion `json:"suggestion,omitempty"`
	LegalMoves []string        `json:"legal_moves,omitempty"`
	Games      []*GameRecord   `json:"games,omitempty"`
	Error      *DomainError    `json:"error,omitempty"`
}
