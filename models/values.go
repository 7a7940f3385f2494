package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	MinValues = 2
	MaxValues = 5
)

var (
	ErrTooManyValues   = errors.New("value list is full")
	ErrTooFewValues    = errors.New("value list is at its minimum length")
	ErrIndexOutOfRange = errors.New("value index out of range")
	ErrBadLength       = errors.New("value list must hold between 2 and 5 numbers")
)

// PlaintextVector holds the numbers entered by the user. Its length stays in
// [MinValues, MaxValues].
type PlaintextVector struct {
	values []float64
}

// DefaultValues are the numbers a fresh demo starts with
func DefaultValues() []float64 {
	return []float64{42, 17}
}

func NewPlaintextVector(values []float64) (*PlaintextVector, error) {
	if len(values) < MinValues || len(values) > MaxValues {
		return nil, ErrBadLength
	}
	v := &PlaintextVector{values: make([]float64, len(values))}
	copy(v.values, values)
	return v, nil
}

func (v *PlaintextVector) Len() int {
	return len(v.values)
}

// Values returns a copy of the current numbers
func (v *PlaintextVector) Values() []float64 {
	out := make([]float64, len(v.values))
	copy(out, v.values)
	return out
}

func (v *PlaintextVector) Sum() float64 {
	var sum float64
	for _, x := range v.values {
		sum += x
	}
	return sum
}

func (v *PlaintextVector) CanAppend() bool { return len(v.values) < MaxValues }
func (v *PlaintextVector) CanRemove() bool { return len(v.values) > MinValues }

// Append adds a zero entry
func (v *PlaintextVector) Append() error {
	if !v.CanAppend() {
		return ErrTooManyValues
	}
	v.values = append(v.values, 0)
	return nil
}

func (v *PlaintextVector) Remove(index int) error {
	if !v.CanRemove() {
		return ErrTooFewValues
	}
	if index < 0 || index >= len(v.values) {
		return ErrIndexOutOfRange
	}
	v.values = append(v.values[:index], v.values[index+1:]...)
	return nil
}

// Update sets entry index from user text. Text that does not start with a
// number sets the entry to 0.
func (v *PlaintextVector) Update(index int, text string) error {
	if index < 0 || index >= len(v.values) {
		return ErrIndexOutOfRange
	}
	v.values[index] = ParseNumber(text)
	return nil
}

// ParseNumber reads the longest numeric prefix of text, ignoring leading
// whitespace. It returns 0 when no number can be read.
func ParseNumber(text string) float64 {
	prefix := numericPrefix(strings.TrimSpace(text))
	if prefix == "" {
		return 0
	}
	f, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// numericPrefix scans s once for [sign] digits [. digits] [e [sign] digits]
// and returns the matched prefix. An exponent without digits is not part of it.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			end = j
		}
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
