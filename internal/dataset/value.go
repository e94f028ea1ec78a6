package dataset

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind is the inferred type of a cell.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindBool
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "null"
	}
}

// Value is an immutable typed scalar produced by inferring raw cell text.
type Value struct {
	Kind Kind
	Num  float64
	Bool bool
	Str  string
}

// Null is the value of an empty or absent cell.
var Null = Value{}

// Number wraps a float as a numeric value. Negative zero is stored as 0 so
// "-0" and "0" are the same class label.
func Number(f float64) Value {
	if f == 0 {
		f = 0
	}
	return Value{Kind: KindNumber, Num: f}
}

// Bool wraps a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// String wraps text that did not look like a number or boolean.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Float returns the numeric payload and whether the value is a number.
func (v Value) Float() (float64, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// IsNull reports whether the cell was empty.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// String renders the literal value. Numbers use their shortest form, so a
// class label of 1 renders as "1", and null renders as "null".
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return v.Str
	default:
		return "null"
	}
}

// Any returns the payload as a plain Go value (float64, bool, string or nil).
func (v Value) Any() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindString:
		return v.Str
	default:
		return nil
	}
}

// Label is the canonical binary class label.
type Label int

const (
	LabelLegit Label = 0
	LabelFraud Label = 1
)

func (l Label) String() string {
	if l == LabelFraud {
		return "Fraudulent"
	}
	return "Non-Fraudulent"
}

// LabelOf converts a class cell to a binary label. Only numeric cells equal to
// exactly 0 or 1 qualify; strings and booleans are never coerced.
func LabelOf(v Value) (Label, bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	switch v.Num {
	case 0:
		return LabelLegit, true
	case 1:
		return LabelFraud, true
	}
	return 0, false
}

var numericToken = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?$`)

// InferOptions controls locale-aware number parsing during inference.
type InferOptions struct {
	// DecimalSeparator, if set, is replaced by '.' before parsing.
	DecimalSeparator rune
	// ThousandsSeparator, if set, is stripped before parsing.
	ThousandsSeparator rune
}

// Infer converts raw cell text to a typed value.
func Infer(raw string, opt InferOptions) Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Null
	}
	switch strings.ToLower(s) {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if f, ok := parseNumeric(s, opt); ok {
		return Number(f)
	}
	return String(s)
}

func parseNumeric(s string, opt InferOptions) (float64, bool) {
	raw := strings.ReplaceAll(s, "\u00A0", " ")
	if opt.ThousandsSeparator != 0 && opt.ThousandsSeparator != opt.DecimalSeparator {
		raw = strings.ReplaceAll(raw, string(opt.ThousandsSeparator), "")
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator != '.' {
		raw = strings.ReplaceAll(raw, string(opt.DecimalSeparator), ".")
	}
	// ParseFloat alone would accept "NaN", "Inf" and hex floats.
	if !numericToken.MatchString(raw) {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
