package logic

import "math"

// DefaultTolerance is the default accepted deviation, in percentage points.
const DefaultTolerance = 10.0

// Reason explains a comparison outcome.
type Reason string

const (
	ReasonMatch          Reason = "MATCH"
	ReasonLengthMismatch Reason = "LENGTH_MISMATCH"
	ReasonZeroTotal      Reason = "ZERO_TOTAL"
	ReasonBelowTolerance Reason = "BELOW_TOLERANCE"
)

// RatioRow is one line of the ratio comparison table.
type RatioRow struct {
	Reference      int
	Candidate      int
	ReferenceRatio float64
	CandidateRatio float64
	Diff           float64
}

// Comparison is the full result of comparing a candidate to a reference.
type Comparison struct {
	Match   bool
	Reason  Reason
	Score   float64 // L1 distance between ratio vectors
	Percent float64 // 0 unless both lengths match and totals are non-zero
	Rows    []RatioRow
}

// Compare normalizes both patterns into ratios of their totals and scores the
// L1 distance between them. Overall tempo does not affect the result.
// Differing lengths and zero totals never match.
func Compare(reference, candidate Pattern, tolerance float64) Comparison {
	if reference.Len() != candidate.Len() {
		return Comparison{Reason: ReasonLengthMismatch}
	}

	refTotal := reference.Total()
	candTotal := candidate.Total()
	if refTotal == 0 || candTotal == 0 {
		return Comparison{Reason: ReasonZeroTotal}
	}

	// The decision is taken on integers: with ratios r/R and c/C the
	// distance is sum|r*C - c*R| / (R*C), so the tolerance test needs no
	// division and a score exactly on the boundary still matches.
	scale := int64(refTotal) * int64(candTotal)
	var dist int64
	c := Comparison{Rows: make([]RatioRow, candidate.Len())}
	for i := 0; i < candidate.Len(); i++ {
		r, k := reference.At(i), candidate.At(i)
		d := int64(r)*int64(candTotal) - int64(k)*int64(refTotal)
		if d < 0 {
			d = -d
		}
		dist += d

		refRatio := float64(r) / float64(refTotal)
		candRatio := float64(k) / float64(candTotal)
		c.Rows[i] = RatioRow{
			Reference:      r,
			Candidate:      k,
			ReferenceRatio: refRatio,
			CandidateRatio: candRatio,
			Diff:           math.Abs(refRatio - candRatio),
		}
	}

	c.Score = float64(dist) / float64(scale)
	c.Percent = 100 - 100*float64(dist)/float64(scale)
	c.Match = 100*float64(dist) <= tolerance*float64(scale)
	if c.Match {
		c.Reason = ReasonMatch
	} else {
		c.Reason = ReasonBelowTolerance
	}
	return c
}

// Matches reports whether candidate matches reference within tolerance
// percentage points.
func Matches(reference, candidate Pattern, tolerance float64) bool {
	return Compare(reference, candidate, tolerance).Match
}
