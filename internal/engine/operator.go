// Package engine holds the calculator state machine: digit entry, pending
// operator, stored operand and the display formatting rules.
package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidOperator is returned for operator names the engine does not know.
var ErrInvalidOperator = errors.New("invalid operator")

// Operator is a pending binary operation. The zero value means none.
type Operator int

const (
	OpNone Operator = iota
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
)

// String returns the operation name used on the wire and in metrics.
func (o Operator) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	default:
		return ""
	}
}

// Symbol returns the keypad glyph for the operator.
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSubtract:
		return "−"
	case OpMultiply:
		return "×"
	case OpDivide:
		return "÷"
	default:
		return ""
	}
}

// Valid reports whether o is one of the four binary operations.
func (o Operator) Valid() bool {
	return o >= OpAdd && o <= OpDivide
}

// ParseOperator accepts an operation name ("add") or its symbol ("+").
func ParseOperator(s string) (Operator, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "+":
		return OpAdd, nil
	case "subtract", "-", "−":
		return OpSubtract, nil
	case "multiply", "*", "x", "×":
		return OpMultiply, nil
	case "divide", "/", "÷":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("%w: %q", ErrInvalidOperator, s)
}
