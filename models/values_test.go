package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaintextVectorBounds(t *testing.T) {
	v, err := NewPlaintextVector(DefaultValues())
	require.NoError(t, err)

	assert.ErrorIs(t, v.Remove(0), ErrTooFewValues)
	assert.Equal(t, []float64{42, 17}, v.Values())

	for v.Len() < MaxValues {
		require.NoError(t, v.Append())
	}
	assert.ErrorIs(t, v.Append(), ErrTooManyValues)
	assert.Equal(t, []float64{42, 17, 0, 0, 0}, v.Values())

	require.NoError(t, v.Remove(1))
	assert.Equal(t, []float64{42, 0, 0, 0}, v.Values())
	assert.ErrorIs(t, v.Remove(9), ErrIndexOutOfRange)
}

func TestPlaintextVectorRejectsBadLength(t *testing.T) {
	_, err := NewPlaintextVector([]float64{1})
	assert.ErrorIs(t, err, ErrBadLength)
	_, err = NewPlaintextVector(make([]float64, 6))
	assert.ErrorIs(t, err, ErrBadLength)
}

func TestPlaintextVectorUpdateCoerces(t *testing.T) {
	v, err := NewPlaintextVector([]float64{1, 2})
	require.NoError(t, err)

	require.NoError(t, v.Update(0, "12.5"))
	require.NoError(t, v.Update(1, "not a number"))
	assert.Equal(t, []float64{12.5, 0}, v.Values())
	assert.Equal(t, 12.5, v.Sum())

	assert.ErrorIs(t, v.Update(2, "1"), ErrIndexOutOfRange)
}

func TestParseNumber(t *testing.T) {
	tests := map[string]float64{
		"":      0,
		"-":     0,
		"abc":   0,
		"42":    42,
		"  7  ": 7,
		"-3.25": -3.25,
		"+5":    5,
		"12abc": 12,
		".5":    0.5,
		"5.":    5,
		"1e3":   1000,
		"2E-2x": 0.02,
		"1e":    1,
		"1e+":   1,
		"0x10":  0,
		"NaN":   0,
		"Inf":   0,
		"1e999": 0,
		"3.0.1": 3,
		"-.":    0,
		"1_000": 1,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseNumber(in), "input %q", in)
	}
}

func TestParseNumberLongInput(t *testing.T) {
	inputs := []string{
		strings.Repeat("a", 100_000),
		"1" + strings.Repeat("x", 100_000),
		strings.Repeat("9", 100_000),
	}

	start := time.Now()
	for _, in := range inputs {
		ParseNumber(in)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	assert.Equal(t, 0.0, ParseNumber(inputs[0]))
	assert.Equal(t, 1.0, ParseNumber(inputs[1]))
	assert.Equal(t, 0.0, ParseNumber(inputs[2]))
}

func TestValuesReturnsCopy(t *testing.T) {
	v, err := NewPlaintextVector([]float64{1, 2})
	require.NoError(t, err)

	out := v.Values()
	out[0] = 99
	assert.Equal(t, 1.0, v.Values()[0])
}

func TestPanelState(t *testing.T) {
	var p DecryptionPanel

	st := p.State(true)
	assert.False(t, st.CanDecrypt)

	p.SetKey("demo")
	st = p.State(true)
	assert.True(t, st.CanDecrypt)
	assert.Equal(t, "••••", st.CandidateKey)
	assert.False(t, p.State(false).CanDecrypt)

	p.Toggle()
	assert.Equal(t, "demo", p.State(true).CandidateKey)

	p.Succeed(59)
	require.NotNil(t, p.State(true).Result)
	assert.Equal(t, 59.0, *p.State(true).Result)

	p.SetKey("abc")
	assert.Nil(t, p.State(true).Result)

	p.Fail(InvalidKeyMessage)
	assert.Equal(t, InvalidKeyMessage, p.State(true).Error)
	assert.Nil(t, p.State(true).Result)
}

func TestStepInFlight(t *testing.T) {
	assert.False(t, StepInput.InFlight())
	assert.True(t, StepEncrypting.InFlight())
	assert.True(t, StepSending.InFlight())
	assert.True(t, StepComputing.InFlight())
	assert.False(t, StepComplete.InFlight())
}
