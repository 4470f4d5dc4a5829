package engine

import (
	"errors"
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "5", want: "5"},
		{in: "Error", want: "Error"},
		{in: "", want: "0"},
		{in: ".", want: "0"},
		{in: "-", want: "0"},
		{in: "abc", want: "0"},
		{in: "NaN", want: "0"},
		{in: "5.", want: "5"},
		{in: "0.5", want: "0.5"},
		{in: "1234567890", want: "1.23e+9"},
		{in: "-1500000000", want: "-1.50e+9"},
		{in: "123456789", want: "123456789"},
		{in: "-123456789", want: "-1.23e+8"},
		{in: "0.1234567", want: "0.123457"},
		{in: "12345.6789", want: "12345.7"},
		{in: "0.30000000000000004", want: "0.300000"},
		{in: "1e-7", want: "1e-7"},
		{in: "0.00000123456", want: "0.00000123456"},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if got := Format(tc.in); got != tc.want {
				t.Fatalf("Format(%q): expected %q, got %q", tc.in, tc.want, got)
			}
		})
	}
}

func TestNumberString(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0"},
		{in: math.Copysign(0, -1), want: "0"},
		{in: 8, want: "8"},
		{in: -2.5, want: "-2.5"},
		{in: 0.1 + 0.2, want: "0.30000000000000004"},
		{in: 1e-7, want: "1e-7"},
		{in: 1.5e21, want: "1.5e+21"},
		{in: 123456789012, want: "123456789012"},
	}

	for _, tc := range tests {
		if got := NumberString(tc.in); got != tc.want {
			t.Fatalf("NumberString(%g): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestApplyDivideByZeroIsAlwaysAnError(t *testing.T) {
	for _, a := range []string{"0", "1", "-3.5", "999999999999", "1e-7"} {
		if _, err := Apply(OpDivide, a, "0"); !errors.Is(err, ErrArithmetic) {
			t.Fatalf("Apply(divide, %q, 0): expected ErrArithmetic, got %v", a, err)
		}
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		op      Operator
		a, b    string
		want    float64
		wantErr bool
	}{
		{name: "add", op: OpAdd, a: "2", b: "3", want: 5},
		{name: "subtract", op: OpSubtract, a: "2", b: "3", want: -1},
		{name: "multiply", op: OpMultiply, a: "2.5", b: "4", want: 10},
		{name: "divide", op: OpDivide, a: "1", b: "4", want: 0.25},
		{name: "trailing point", op: OpAdd, a: "5.", b: "1", want: 6},
		{name: "exponent operand", op: OpMultiply, a: "1.5e+21", b: "2", want: 3e21},
		{name: "unparsable left", op: OpAdd, a: "abc", b: "1", wantErr: true},
		{name: "unparsable right", op: OpAdd, a: "1", b: ".", wantErr: true},
		{name: "empty", op: OpAdd, a: "", b: "1", wantErr: true},
		{name: "overflow", op: OpMultiply, a: "1e308", b: "10", wantErr: true},
		{name: "infinite operand", op: OpAdd, a: "1e400", b: "1", wantErr: true},
		{name: "inf spelling", op: OpAdd, a: "Inf", b: "1", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Apply(tc.op, tc.a, tc.b)
			if tc.wantErr {
				if !errors.Is(err, ErrArithmetic) {
					t.Fatalf("expected ErrArithmetic, got %v (result %g)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %g, got %g", tc.want, got)
			}
		})
	}
}

func TestApplyValuesUnknownOperator(t *testing.T) {
	if _, err := ApplyValues(OpNone, 1, 2); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}
}

func TestParseOperator(t *testing.T) {
	tests := map[string]Operator{
		"add": OpAdd, "+": OpAdd,
		"subtract": OpSubtract, "-": OpSubtract,
		"multiply": OpMultiply, "x": OpMultiply, "*": OpMultiply,
		"divide": OpDivide, "÷": OpDivide, "/": OpDivide,
	}
	for in, want := range tests {
		got, err := ParseOperator(in)
		if err != nil {
			t.Fatalf("ParseOperator(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseOperator(%q): expected %s, got %s", in, want, got)
		}
	}

	if _, err := ParseOperator("modulo"); !errors.Is(err, ErrInvalidOperator) {
		t.Fatalf("expected ErrInvalidOperator, got %v", err)
	}
}
