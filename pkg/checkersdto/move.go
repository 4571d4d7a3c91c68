package checkersdto

// MoveSummary is returned after a single executed turn.
type MoveSummary struct {
	State    *SessionState `json:"state"`
	Notation string        `json:"notation"`
	Finished bool          `json:"finished"`
}

// HintSuggestion is an advisory move applied on the requester's behalf.
type HintSuggestion struct {
	Move     string `json:"move"`
	Notation string `json:"notation"`
}
