// Package keypad maps key presses and button names onto calculator engine
// operations, and derives the presentation hints the engine does not own.
package keypad

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"go-chi-calculator/internal/engine"
)

// ErrUnknownKey is returned for keys with no calculator binding.
var ErrUnknownKey = errors.New("unknown key")

// Kind identifies which engine operation a key triggers.
type Kind int

const (
	KindDigit Kind = iota + 1
	KindOperator
	KindEquals
	KindClear
	KindBackspace
	KindNegate
	KindPercent
)

func (k Kind) String() string {
	switch k {
	case KindDigit:
		return "digit"
	case KindOperator:
		return "operator"
	case KindEquals:
		return "equals"
	case KindClear:
		return "clear"
	case KindBackspace:
		return "backspace"
	case KindNegate:
		return "negate"
	case KindPercent:
		return "percent"
	default:
		return "unknown"
	}
}

// Action is a resolved key.
type Action struct {
	Kind     Kind
	Digit    string
	Operator engine.Operator
}

var bindings = map[string]Action{
	"+": {Kind: KindOperator, Operator: engine.OpAdd},
	"-": {Kind: KindOperator, Operator: engine.OpSubtract},
	"*": {Kind: KindOperator, Operator: engine.OpMultiply},
	"x": {Kind: KindOperator, Operator: engine.OpMultiply},
	"/": {Kind: KindOperator, Operator: engine.OpDivide},
	"÷": {Kind: KindOperator, Operator: engine.OpDivide},

	"enter":     {Kind: KindEquals},
	"=":         {Kind: KindEquals},
	"esc":       {Kind: KindClear},
	"escape":    {Kind: KindClear},
	"c":         {Kind: KindClear},
	"backspace": {Kind: KindBackspace},
	"%":         {Kind: KindPercent},
	"n":         {Kind: KindNegate},
	"±":         {Kind: KindNegate},

	// button names
	"add":        {Kind: KindOperator, Operator: engine.OpAdd},
	"subtract":   {Kind: KindOperator, Operator: engine.OpSubtract},
	"multiply":   {Kind: KindOperator, Operator: engine.OpMultiply},
	"divide":     {Kind: KindOperator, Operator: engine.OpDivide},
	"equals":     {Kind: KindEquals},
	"clear":      {Kind: KindClear},
	"plus-minus": {Kind: KindNegate},
	"percent":    {Kind: KindPercent},
}

const maxSuggestDistance = 2

// Resolve maps a key token to an Action. Single characters are matched as
// typed except for "C"; longer names are case-insensitive.
func Resolve(key string) (Action, error) {
	if (len(key) == 1 && key[0] >= '0' && key[0] <= '9') || key == "." {
		return Action{Kind: KindDigit, Digit: key}, nil
	}
	k := key
	if k == "C" || len(k) > 1 {
		k = strings.ToLower(strings.TrimSpace(k))
	}
	if a, ok := bindings[k]; ok {
		return a, nil
	}
	if s := Suggest(key); s != "" {
		return Action{}, fmt.Errorf("%w %q (did you mean %q?)", ErrUnknownKey, key, s)
	}
	return Action{}, fmt.Errorf("%w %q", ErrUnknownKey, key)
}

// Suggest returns the closest named key within a small edit distance, or "".
// Single-character keys are never suggested.
func Suggest(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	if len(key) < 2 {
		return ""
	}
	best, bestDist := "", maxSuggestDistance+1
	for _, name := range Names() {
		if len(name) < 2 {
			continue
		}
		if d := levenshtein.ComputeDistance(key, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

// Names lists every bound key token except digits, sorted.
func Names() []string {
	out := make([]string, 0, len(bindings))
	for k := range bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Apply runs the action against e.
func (a Action) Apply(e *engine.Calculator) error {
	switch a.Kind {
	case KindDigit:
		return e.SubmitDigit(a.Digit)
	case KindOperator:
		return e.SubmitOperator(a.Operator)
	case KindEquals:
		e.SubmitEquals()
	case KindClear:
		e.Clear()
	case KindBackspace:
		e.Backspace()
	case KindNegate:
		e.Negate()
	case KindPercent:
		e.Percent()
	default:
		return fmt.Errorf("%w: action kind %d", ErrUnknownKey, a.Kind)
	}
	return nil
}

// Press resolves key and applies it to e.
func Press(e *engine.Calculator, key string) error {
	a, err := Resolve(key)
	if err != nil {
		return err
	}
	return a.Apply(e)
}

// PressAll presses keys in order and stops at the first failure. Keys before
// the failing one stay applied.
func PressAll(e *engine.Calculator, keys []string) error {
	for i, k := range keys {
		if err := Press(e, k); err != nil {
			return fmt.Errorf("key %d: %w", i, err)
		}
	}
	return nil
}

// ClearLabel is "C" while there is something to clear, else "AC".
func ClearLabel(s engine.State) string {
	if s.CurrentInput != "" || s.StoredOperand != "" {
		return "C"
	}
	return "AC"
}

// ActiveOperator is the operator key to highlight, or OpNone.
func ActiveOperator(s engine.State) engine.Operator {
	return s.PendingOperator
}
