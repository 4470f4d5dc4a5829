package calculator

import "go-chi-calculator/internal/tape"

// CalcRequest is the JSON body for binary operations (add, subtract, multiply, divide).
type CalcRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// CalcResponse is the JSON response for the binary endpoints. Display is the
// result as the calculator screen would show it.
type CalcResponse struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Result    float64 `json:"result"`
	Display   string  `json:"display"`
}

// ChainStep describes a single step in a chained calculation.
type ChainStep struct {
	Op    string  `json:"op"`    // "add", "subtract", "multiply", "divide" or a symbol
	Value float64 `json:"value"` // the operand applied with the running total
}

// ChainRequest is the JSON body for POST /calculator/chain.
type ChainRequest struct {
	Initial float64     `json:"initial"` // starting value
	Steps   []ChainStep `json:"steps"`
}

// ChainResponse is the JSON response for POST /calculator/chain.
type ChainResponse struct {
	Initial float64       `json:"initial"`
	Steps   []ChainResult `json:"steps"`
	Result  float64       `json:"result"`
	Display string        `json:"display"`
}

// ChainResult records one executed step.
type ChainResult struct {
	Op     string  `json:"op"`
	Value  float64 `json:"value"`
	Result float64 `json:"result"`
}

// KeysRequest is the JSON body for POST /calculator/sessions/{id}/keys.
type KeysRequest struct {
	Keys []string `json:"keys"`
}

// Snapshot is a session's engine state plus the presentation hints derived
// from it.
type Snapshot struct {
	ID              string `json:"id"`
	Display         string `json:"display"`
	CurrentInput    string `json:"current_input"`
	PendingOperator string `json:"pending_operator"`
	StoredOperand   string `json:"stored_operand"`
	ResetNext       bool   `json:"reset_next"`
	Phase           string `json:"phase"`
	ClearLabel      string `json:"clear_label"`
	ActiveOperator  string `json:"active_operator"`
}

// TapeResponse lists tape entries, newest first.
type TapeResponse struct {
	Entries []tape.Entry `json:"entries"`
}
