package service

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundHalfEven2(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"no rounding needed", 88.0, 88.0},
		{"half rounds to even down", 85.125, 85.12},
		{"half rounds to even up", 85.135, 85.14},
		{"ordinary round up", 72.336, 72.34},
		{"ordinary round down", 72.334, 72.33},
		{"zero", 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.InDelta(t, tc.want, roundHalfEven2(tc.in), 1e-9)
		})
	}
}

func TestWeightedDocumentScore(t *testing.T) {
	// 80 * 20% + 90 * 80% = 88.00
	require.InDelta(t, 88.0, weightedDocumentScore(80, 20, 90, 80), 1e-9)

	// 70 * 50% + 80 * 50% = 75.00
	require.InDelta(t, 75.0, weightedDocumentScore(70, 50, 80, 50), 1e-9)

	// zero weights yield zero contribution
	require.InDelta(t, 0.0, weightedDocumentScore(100, 0, 100, 0), 1e-9)
}

func TestValidScore(t *testing.T) {
	require.True(t, validScore(0))
	require.True(t, validScore(100))
	require.True(t, validScore(85.25))
	require.False(t, validScore(-0.01))
	require.False(t, validScore(100.01))
	require.False(t, validScore(85.255))
}
