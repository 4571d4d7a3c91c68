package advisor

// SuggestRequest carries the compact position string defined by the engine
// encoding, e.g. "[R:21,22:1,2]".
type SuggestRequest struct {
	Position string `json:"position"`
}

// SuggestResponse is expected to hold a move of the form "<start>-<end>"
// with square numbers 1-32. The engine validates it before use; nothing in
// this package trusts the content.
type SuggestResponse struct {
	Move string `json:"move"`
}
