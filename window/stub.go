package window

// Stub is a fake window that stays alive for a fixed number of Exists
// checks and then reports closed forever. It drives render loop tests
// without a display server.
type Stub struct {
	width, height uint32
	remaining     int
	pumped        int
	released      bool
}

// NewStub creates a stub window that answers Exists true exactly
// frames times.
func NewStub(width, height uint32, frames int) *Stub {
	return &Stub{width: width, height: height, remaining: frames}
}

// PumpEvents counts the pump calls; there are no real events.
func (s *Stub) PumpEvents() { s.pumped++ }

// Exists reports true for the configured number of checks, then false
// forever.
func (s *Stub) Exists() bool {
	if s.released || s.remaining <= 0 {
		return false
	}
	s.remaining--
	return true
}

// Size returns the configured size.
func (s *Stub) Size() (uint32, uint32) { return s.width, s.height }

// Release marks the window closed.
func (s *Stub) Release() { s.released = true }

// Pumped returns how many times PumpEvents was called.
func (s *Stub) Pumped() int { return s.pumped }
