package engine

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrArithmetic is the error sentinel for any operation that cannot produce a
// finite number: unparsable operands, division by zero and overflow.
var ErrArithmetic = errors.New("arithmetic error")

// Apply parses both operands and combines them with op.
func Apply(op Operator, a, b string) (float64, error) {
	x, err := parseOperand(a)
	if err != nil {
		return 0, err
	}
	y, err := parseOperand(b)
	if err != nil {
		return 0, err
	}
	return ApplyValues(op, x, y)
}

// ApplyValues combines two already-parsed operands with IEEE-754 semantics.
func ApplyValues(op Operator, a, b float64) (float64, error) {
	if !isFinite(a) || !isFinite(b) {
		return 0, fmt.Errorf("%w: operand is not finite", ErrArithmetic)
	}

	var result float64
	switch op {
	case OpAdd:
		result = a + b
	case OpSubtract:
		result = a - b
	case OpMultiply:
		result = a * b
	case OpDivide:
		if b == 0 {
			return 0, fmt.Errorf("%w: division by zero: %g / %g", ErrArithmetic, a, b)
		}
		result = a / b
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidOperator, op)
	}

	if !isFinite(result) {
		return 0, fmt.Errorf("%w: result overflow", ErrArithmetic)
	}
	return result, nil
}

func parseOperand(s string) (float64, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, fmt.Errorf("%w: operand %q is not a number", ErrArithmetic, s)
	}
	if !isFinite(v) {
		return 0, fmt.Errorf("%w: operand %q is not finite", ErrArithmetic, s)
	}
	return v, nil
}

// parseNumber accepts plain decimal text, including a trailing "." as typed
// mid-entry ("5."). Hex floats, underscores and inf/nan spellings are refused.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseFloat(s, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
