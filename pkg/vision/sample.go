package vision

import (
	"fmt"
	"sync"
	"time"
)

// VisionSample is the most recent lookahead report from the vision subsystem.
// The zero value has never been received and is never fresh.
type VisionSample struct {
	LkNorm     float64
	Valid      bool
	ReceivedAt time.Time
}

func (s VisionSample) String() string {
	if s.ReceivedAt.IsZero() {
		return "<no sample>"
	}
	return fmt.Sprintf("lk=%.3f valid=%v at=%s", s.LkNorm, s.Valid, s.ReceivedAt.Format("15:04:05.000"))
}

// Store hands the latest sample from the serial reader to the control tick.
// Both sides see whole samples only.
type Store struct {
	lock   sync.Mutex
	latest VisionSample
}

func (s *Store) Update(sample VisionSample) {
	s.lock.Lock()
	s.latest = sample
	s.lock.Unlock()
}

func (s *Store) Latest() VisionSample {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.latest
}
