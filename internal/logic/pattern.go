package logic

import (
	"fmt"
	"strings"
)

// MaxKnocks is the hard ceiling on the number of intervals a pattern can hold.
const MaxKnocks = 10

// Pattern is an ordered sequence of inter-knock intervals in milliseconds.
// Element i is the time between knock i and the knock (or start marker)
// before it. It is a value type: assigning a Pattern copies it wholesale.
type Pattern struct {
	intervals [MaxKnocks]int
	n         int
	capacity  int
}

// NewPattern returns an empty pattern that accepts at most capacity intervals.
// Capacity is clamped to [0, MaxKnocks].
func NewPattern(capacity int) Pattern {
	if capacity < 0 {
		capacity = 0
	}
	if capacity > MaxKnocks {
		capacity = MaxKnocks
	}
	return Pattern{capacity: capacity}
}

// PatternOf builds a full-capacity pattern from the given intervals.
// Intervals beyond MaxKnocks are dropped.
func PatternOf(ms ...int) Pattern {
	p := NewPattern(MaxKnocks)
	for _, v := range ms {
		if !p.Append(v) {
			break
		}
	}
	return p
}

// DefaultPattern is the factory reference rhythm.
func DefaultPattern() Pattern {
	return PatternOf(200, 400, 200)
}

// Append adds an interval. Negative values are stored as 0.
// Returns false if the pattern is already full.
func (p *Pattern) Append(ms int) bool {
	if p.n >= p.capacity {
		return false
	}
	if ms < 0 {
		ms = 0
	}
	p.intervals[p.n] = ms
	p.n++
	return true
}

// Reset empties the pattern and zeroes its storage.
func (p *Pattern) Reset() {
	p.intervals = [MaxKnocks]int{}
	p.n = 0
}

// Len returns the number of recorded intervals.
func (p Pattern) Len() int { return p.n }

// Cap returns the maximum number of intervals.
func (p Pattern) Cap() int { return p.capacity }

// Full reports whether no more intervals can be appended.
func (p Pattern) Full() bool { return p.n >= p.capacity }

// At returns interval i. It panics if i is out of range, like a slice index.
func (p Pattern) At(i int) int {
	if i < 0 || i >= p.n {
		panic(fmt.Sprintf("logic: pattern index %d out of range [0:%d]", i, p.n))
	}
	return p.intervals[i]
}

// Intervals returns a copy of the recorded intervals.
func (p Pattern) Intervals() []int {
	out := make([]int, p.n)
	copy(out, p.intervals[:p.n])
	return out
}

// Total returns the sum of all intervals.
func (p Pattern) Total() int {
	total := 0
	for i := 0; i < p.n; i++ {
		total += p.intervals[i]
	}
	return total
}

// Equal reports whether both patterns hold the same intervals.
// Capacity is not compared.
func (p Pattern) Equal(o Pattern) bool {
	if p.n != o.n {
		return false
	}
	for i := 0; i < p.n; i++ {
		if p.intervals[i] != o.intervals[i] {
			return false
		}
	}
	return true
}

func (p Pattern) String() string {
	parts := make([]string, p.n)
	for i := 0; i < p.n; i++ {
		parts[i] = fmt.Sprintf("%dms", p.intervals[i])
	}
	return "[" + strings.Join(parts, " ") + "]"
}
