package dispatch

import "sync"

// senderLocks hands out one mutex per sender, dropping it once unused
type senderLocks struct {
	mu    sync.Mutex
	locks map[string]*senderLock
}

type senderLock struct {
	mu   sync.Mutex
	refs int
}

func newSenderLocks() *senderLocks {
	return &senderLocks{locks: make(map[string]*senderLock)}
}

// lock blocks until the sender's mutex is held and returns its release func
func (l *senderLocks) lock(sender string) func() {
	l.mu.Lock()
	sl, ok := l.locks[sender]
	if !ok {
		sl = &senderLock{}
		l.locks[sender] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sender)
		}
		l.mu.Unlock()
	}
}

func (l *senderLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
