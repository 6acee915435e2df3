package booking

import "sync"

// reservationLocks serializes lifecycle transitions per reservation id
// so that two concurrent cancels cannot both reach the refund step.
// Entries are never evicted; the map grows with the number of distinct
// reservations touched by this process, which is acceptable for the
// request volumes this service sees.
type reservationLocks struct {
	mu sync.Mutex
	m  map[uint64]*sync.Mutex
}

func newReservationLocks() *reservationLocks {
	return &reservationLocks{m: make(map[uint64]*sync.Mutex)}
}

// lock acquires the mutex for the given reservation id, creating it on
// first use.  The returned function releases it.
func (l *reservationLocks) lock(id uint64) func() {
	l.mu.Lock()
	entry, ok := l.m[id]
	if !ok {
		entry = &sync.Mutex{}
		l.m[id] = entry
	}
	l.mu.Unlock()
	entry.Lock()
	return entry.Unlock
}
