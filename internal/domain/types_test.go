package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackRoundTripCoversStateSpace(t *testing.T) {
	for code := 0; code < StateCount; code++ {
		v := Unpack(code)
		require.Equal(t, code, v.Pack())
	}
	assert.Equal(t, 0, AllOff.Pack())
	assert.Equal(t, StateCount-1, Vector{White, White, White, White, White, White}.Pack())
}

func TestParseVector(t *testing.T) {
	want := Vector{White, Purple, Green, White, Purple, Green}

	cases := []string{
		"WHITE,PURPLE,GREEN,WHITE,PURPLE,GREEN",
		"white | purple | green | white | purple | green",
		"5 4 1 5 4 1",
		"5,4,1,5,4,1",
	}
	for _, raw := range cases {
		got, err := ParseVector(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseVectorErrors(t *testing.T) {
	_, err := ParseVector("1,2,3")
	assert.ErrorContains(t, err, "expected 6 values, got 3")

	_, err = ParseVector("1,2,3,4,5,6")
	assert.ErrorContains(t, err, "invalid color")

	_, err = ParseVector("OFF,OFF,OFF,OFF,OFF,ORANGE")
	assert.ErrorContains(t, err, "ORANGE")
}

func TestColorAddWraps(t *testing.T) {
	assert.Equal(t, Off, White.Add(1))
	assert.Equal(t, Blue, Green.Add(1))
	assert.Equal(t, Purple, Red.Add(1))
	assert.Equal(t, White, Off.Add(5))
	assert.Equal(t, "Color(9)", Color(9).String())
}

func TestVectorStrings(t *testing.T) {
	v := Vector{White, Purple, Green, White, Purple, Green}
	assert.Equal(t, "WHITE | PURPLE | GREEN | WHITE | PURPLE | GREEN", v.String())
	assert.Equal(t, "5, 4, 1, 5, 4, 1", v.Ordinals())
	assert.Equal(t, "3", ButtonID(2).Label())
}

func TestPhaseTransitions(t *testing.T) {
	assert.True(t, PhaseSplash.CanTransitionTo(PhasePuzzle))
	assert.True(t, PhasePuzzle.CanTransitionTo(PhaseEmail))
	assert.True(t, PhaseEmail.CanTransitionTo(PhaseSubmitted))
	assert.True(t, PhaseEmail.CanTransitionTo(PhasePuzzle))

	assert.False(t, PhaseSplash.CanTransitionTo(PhaseEmail))
	assert.False(t, PhasePuzzle.CanTransitionTo(PhaseSubmitted))
	assert.False(t, PhaseSubmitted.CanTransitionTo(PhasePuzzle))
}
