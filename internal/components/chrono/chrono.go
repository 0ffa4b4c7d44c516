package chrono

import (
	"sync"
	"time"
)

// API is the clock everything that compares against "now" (cookie expiry,
// deadlines) should depend on.
//
// note: fault injection point
type API interface {
	Now() time.Time
}

// StandardImpl reads the system clock.
type StandardImpl struct{}

func (StandardImpl) Now() time.Time {
	return time.Now()
}

// ManualImpl is a clock that only moves when told to.
type ManualImpl struct {
	mutex sync.Mutex
	now   time.Time
}

func NewManualImpl(now time.Time) *ManualImpl {
	return &ManualImpl{now: now}
}

func (m *ManualImpl) Now() time.Time {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.now
}

func (m *ManualImpl) Advance(d time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.now = m.now.Add(d)
}
