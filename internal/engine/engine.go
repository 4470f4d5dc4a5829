package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDigit is returned by SubmitDigit for anything but 0-9 and ".".
var ErrInvalidDigit = errors.New("invalid digit")

const maxInputLen = 12

// State is the calculator's arithmetic state. Empty strings mean "none".
type State struct {
	CurrentInput    string
	PendingOperator Operator
	StoredOperand   string
	ResetNext       bool
}

// Phase is the coarse state-machine position derived from State and display.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseOperandEntered
	PhaseOperatorPending
	PhaseResultShown
	PhaseErrorShown
)

func (p Phase) String() string {
	switch p {
	case PhaseOperandEntered:
		return "operand_entered"
	case PhaseOperatorPending:
		return "operator_pending"
	case PhaseResultShown:
		return "result_shown"
	case PhaseErrorShown:
		return "error_shown"
	default:
		return "idle"
	}
}

// Renderer receives every formatted display value.
type Renderer interface {
	Render(text string)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(text string)

func (f RenderFunc) Render(text string) { f(text) }

// Calculation describes one resolved application of a pending operator.
type Calculation struct {
	Operator Operator
	Left     string
	Right    string
	Result   string
	Err      error
}

// Failed reports whether the calculation produced the error sentinel.
func (c Calculation) Failed() bool { return c.Err != nil }

// Option configures a Calculator.
type Option func(*Calculator)

// WithRenderer sends each rendered value to r.
func WithRenderer(r Renderer) Option {
	return func(e *Calculator) { e.renderer = r }
}

// WithObserver calls fn after every apply, successful or not.
func WithObserver(fn func(Calculation)) Option {
	return func(e *Calculator) { e.observer = fn }
}

// Calculator is a four-function calculator with left-to-right chaining.
// It is not safe for concurrent use.
type Calculator struct {
	state    State
	display  string
	renderer Renderer
	observer func(Calculation)
}

func New(opts ...Option) *Calculator {
	e := &Calculator{display: "0"}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns a copy of the current state.
func (e *Calculator) State() State { return e.state }

// Display returns the last rendered text.
func (e *Calculator) Display() string { return e.display }

func (e *Calculator) Phase() Phase {
	s := e.state
	switch {
	case e.display == ErrorText:
		return PhaseErrorShown
	case s.ResetNext:
		return PhaseResultShown
	case s.PendingOperator != OpNone && s.CurrentInput == "":
		return PhaseOperatorPending
	case s.CurrentInput != "":
		return PhaseOperandEntered
	default:
		return PhaseIdle
	}
}

// SubmitDigit appends a digit or decimal point to the current entry.
// A second "." or a thirteenth character is ignored.
func (e *Calculator) SubmitDigit(token string) error {
	if !isDigitToken(token) {
		return fmt.Errorf("%w: %q", ErrInvalidDigit, token)
	}
	s := &e.state
	if s.ResetNext {
		s.CurrentInput = ""
		s.ResetNext = false
	}
	if token == "." && strings.Contains(s.CurrentInput, ".") {
		return nil
	}
	if len(s.CurrentInput) >= maxInputLen {
		return nil
	}
	s.CurrentInput += token
	e.render(orZero(s.CurrentInput))
	return nil
}

// SubmitOperator sets the pending operator, first resolving any complete
// pending computation so chains evaluate strictly left to right.
func (e *Calculator) SubmitOperator(op Operator) error {
	if !op.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidOperator, op)
	}
	s := &e.state
	if s.CurrentInput == "" && s.StoredOperand == "" {
		return nil
	}

	if s.StoredOperand != "" && s.PendingOperator != OpNone && s.CurrentInput != "" {
		result, err := e.apply(s.PendingOperator, s.StoredOperand, s.CurrentInput)
		if err != nil {
			e.Clear()
			e.render(ErrorText)
			return nil
		}
		s.StoredOperand = result
		e.render(result)
	} else if s.CurrentInput != "" {
		s.StoredOperand = s.CurrentInput
	}

	s.PendingOperator = op
	s.CurrentInput = ""
	return nil
}

// SubmitEquals resolves the pending computation. Without an operator, a
// stored operand and a current entry it does nothing.
func (e *Calculator) SubmitEquals() {
	s := &e.state
	if s.PendingOperator == OpNone || s.StoredOperand == "" || s.CurrentInput == "" {
		return
	}

	result, err := e.apply(s.PendingOperator, s.StoredOperand, s.CurrentInput)
	if err != nil {
		e.render(ErrorText)
		s.StoredOperand = ""
	} else {
		e.render(result)
		s.StoredOperand = result
	}
	s.CurrentInput = ""
	s.PendingOperator = OpNone
	s.ResetNext = true
}

// Clear returns the engine to Idle.
func (e *Calculator) Clear() {
	e.state = State{}
	e.render("0")
}

// Backspace drops the last typed character. Ignored right after a result.
func (e *Calculator) Backspace() {
	s := &e.state
	if s.ResetNext {
		return
	}
	if s.CurrentInput != "" {
		s.CurrentInput = s.CurrentInput[:len(s.CurrentInput)-1]
	}
	e.render(orZero(s.CurrentInput))
}

// Negate flips the sign of the current entry, or of the stored operand when
// nothing has been typed.
func (e *Calculator) Negate() {
	s := &e.state
	s.CurrentInput = NumberString(-e.workingValue())
	e.render(s.CurrentInput)
	s.ResetNext = false
}

// Percent divides the working value by 100. The next digit starts a fresh
// entry.
func (e *Calculator) Percent() {
	s := &e.state
	s.CurrentInput = NumberString(e.workingValue() / 100)
	e.render(s.CurrentInput)
	s.ResetNext = true
}

// workingValue is the current entry, falling back to the stored operand
// (which holds the last result after "="). Unparsable text counts as zero.
func (e *Calculator) workingValue() float64 {
	src := e.state.CurrentInput
	if src == "" {
		src = e.state.StoredOperand
	}
	v, err := parseNumber(src)
	if err != nil || !isFinite(v) {
		return 0
	}
	return v
}

func (e *Calculator) apply(op Operator, left, right string) (string, error) {
	calc := Calculation{Operator: op, Left: left, Right: right}
	v, err := Apply(op, left, right)
	if err != nil {
		calc.Err = err
	} else {
		calc.Result = NumberString(v)
	}
	if e.observer != nil {
		e.observer(calc)
	}
	return calc.Result, calc.Err
}

func (e *Calculator) render(text string) {
	e.display = Format(text)
	if e.renderer != nil {
		e.renderer.Render(e.display)
	}
}

func isDigitToken(token string) bool {
	if len(token) != 1 {
		return false
	}
	c := token[0]
	return c == '.' || (c >= '0' && c <= '9')
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
