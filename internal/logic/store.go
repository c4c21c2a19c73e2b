package logic

// Store holds the single reference pattern. Patterns are values, so the
// reference never aliases a caller's buffer and every write replaces it whole.
type Store struct {
	reference Pattern
}

// NewStore creates a store seeded with initial.
func NewStore(initial Pattern) *Store {
	return &Store{reference: initial}
}

// SetReference replaces the reference pattern.
func (s *Store) SetReference(p Pattern) {
	s.reference = p
}

// Reference returns a copy of the reference pattern.
func (s *Store) Reference() Pattern {
	return s.reference
}
