package logic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareSameRatiosDifferentTempo(t *testing.T) {
	c := Compare(PatternOf(200, 400, 200), PatternOf(100, 200, 100), DefaultTolerance)

	assert.True(t, c.Match)
	assert.Equal(t, ReasonMatch, c.Reason)
	assert.InDelta(t, 0, c.Score, 1e-9)
	assert.InDelta(t, 100, c.Percent, 1e-9)
	require.Len(t, c.Rows, 3)
	assert.InDelta(t, 0.25, c.Rows[0].ReferenceRatio, 1e-9)
	assert.InDelta(t, 0.5, c.Rows[1].CandidateRatio, 1e-9)
}

func TestCompareEvenRhythmAgainstDefault(t *testing.T) {
	c := Compare(PatternOf(200, 400, 200), PatternOf(200, 200, 200), DefaultTolerance)

	assert.False(t, c.Match)
	assert.Equal(t, ReasonBelowTolerance, c.Reason)
	assert.InDelta(t, 1.0/3, c.Score, 1e-9)
	assert.InDelta(t, 66.667, c.Percent, 1e-3)
}

func TestCompareLengthMismatch(t *testing.T) {
	tests := []struct {
		name      string
		reference Pattern
		candidate Pattern
	}{
		{"shorter candidate", PatternOf(200, 400, 200), PatternOf(200, 400)},
		{"longer candidate", PatternOf(200, 400), PatternOf(200, 400, 200)},
		{"empty candidate", PatternOf(200, 400, 200), NewPattern(MaxKnocks)},
		{"identical prefix", PatternOf(100, 100, 100, 100), PatternOf(100, 100, 100)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Compare(tt.reference, tt.candidate, 100)
			assert.False(t, c.Match)
			assert.Equal(t, ReasonLengthMismatch, c.Reason)
			assert.Empty(t, c.Rows)
		})
	}
}

func TestCompareZeroTotal(t *testing.T) {
	tests := []struct {
		name      string
		reference Pattern
		candidate Pattern
	}{
		{"both empty", NewPattern(MaxKnocks), NewPattern(MaxKnocks)},
		{"zero candidate", PatternOf(200, 400), PatternOf(0, 0)},
		{"zero reference", PatternOf(0, 0), PatternOf(200, 400)},
		{"both zero", PatternOf(0), PatternOf(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Comparison
			require.NotPanics(t, func() {
				c = Compare(tt.reference, tt.candidate, 100)
			})
			assert.False(t, c.Match)
			assert.Equal(t, ReasonZeroTotal, c.Reason)
		})
	}
}

func TestCompareSelfMatch(t *testing.T) {
	patterns := []Pattern{
		PatternOf(1),
		PatternOf(200, 400, 200),
		PatternOf(0, 300, 0, 50),
		PatternOf(120, 130, 140, 150, 160, 170, 180, 190, 200, 210),
	}
	for _, p := range patterns {
		for _, tol := range []float64{0, 5, 10, 50} {
			assert.True(t, Matches(p, p, tol), "pattern %v tolerance %v", p, tol)
		}
	}
}

func TestCompareTempoInvariance(t *testing.T) {
	reference := PatternOf(200, 400, 200)
	candidates := []Pattern{
		PatternOf(210, 390, 200),
		PatternOf(150, 500, 150),
		PatternOf(300, 300, 300),
		PatternOf(250, 400, 180),
	}
	for _, c := range candidates {
		base := Compare(reference, c, DefaultTolerance)
		for _, k := range []int{2, 3, 7} {
			scaled := NewPattern(MaxKnocks)
			for _, v := range c.Intervals() {
				scaled.Append(v * k)
			}
			got := Compare(reference, scaled, DefaultTolerance)
			assert.Equal(t, base.Match, got.Match, "candidate %v scaled by %d", c, k)
			assert.InDelta(t, base.Percent, got.Percent, 1e-9)
		}
	}
}

func TestCompareToleranceBoundary(t *testing.T) {
	// ratios [0.2 0.8] vs [0.25 0.75]: score 0.1 -> 90%
	reference := PatternOf(100, 400)
	candidate := PatternOf(100, 300)

	c := Compare(reference, candidate, 10)
	assert.Equal(t, 90.0, c.Percent)
	assert.True(t, c.Match)
	assert.Equal(t, ReasonMatch, c.Reason)

	assert.True(t, Matches(reference, candidate, 10))
	assert.True(t, Matches(reference, candidate, 10.5))
	assert.False(t, Matches(reference, candidate, 9.999))
	assert.False(t, Matches(reference, candidate, 9.5))
}

func TestCompareToleranceBoundaryThreeKnocks(t *testing.T) {
	// ratios [0.25 0.5 0.25] vs [0.3 0.4 0.3]: score 0.2 -> 80%
	reference := DefaultPattern()
	candidate := PatternOf(300, 400, 300)

	assert.True(t, Matches(reference, candidate, 20))
	assert.False(t, Matches(reference, candidate, 19.99))
	assert.Equal(t, 80.0, Compare(reference, candidate, 20).Percent)
}

func TestCompareSmallDeviationMatches(t *testing.T) {
	c := Compare(PatternOf(200, 400, 200), PatternOf(210, 390, 205), DefaultTolerance)
	assert.True(t, c.Match)
	assert.Greater(t, c.Percent, 95.0)
	assert.Less(t, c.Percent, 100.0)
}
