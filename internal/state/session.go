package state

// Session is the transient state of one continuous gesture.
type Session struct {
	Drawing bool
	Last    Point
}

// Begin starts a gesture at p.
func (s *Session) Begin(p Point) {
	s.Drawing = true
	s.Last = p
}

// Advance moves the gesture to p and returns the previous position.
func (s *Session) Advance(p Point) Point {
	from := s.Last
	s.Last = p
	return from
}

// End stops the gesture. It reports whether one was active.
func (s *Session) End() bool {
	was := s.Drawing
	s.Drawing = false
	return was
}
