package rng

// Scripted replays fixed values. It is meant for tests that need to steer
// individual random decisions. When a queue runs out the zero-ish default
// is returned: 0 for IntN and Fallback for Float64.
type Scripted struct {
	Ints     []int
	Floats   []float64
	Fallback float64
}

// IntN returns the next scripted int reduced modulo n.
func (s *Scripted) IntN(n int) int {
	if len(s.Ints) == 0 {
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v < 0 {
		v = -v
	}
	return v % n
}

// Float64 returns the next scripted float.
func (s *Scripted) Float64() float64 {
	if len(s.Floats) == 0 {
		return s.Fallback
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}
