package queue

// Subscription delivers queue replacements. Only the latest change is kept
// when the subscriber falls behind.
type Subscription struct {
	Changed <-chan Change
	Done    <-chan struct{}

	changeCh chan Change
	doneCh   chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		changeCh: make(chan Change, 1),
		doneCh:   make(chan struct{}),
	}
	s.Changed = s.changeCh
	s.Done = s.doneCh
	return s
}

// send replaces any pending change with c. Callers hold the manager's
// subscription lock, so there is a single producer.
func (s *Subscription) send(c Change) {
	select {
	case s.changeCh <- c:
		return
	default:
	}
	select {
	case <-s.changeCh:
	default:
	}
	select {
	case s.changeCh <- c:
	default:
	}
}

func (s *Subscription) close() {
	close(s.doneCh)
}

// Subscribe returns a subscription to queue changes.
func (m *Manager) Subscribe() *Subscription {
	s := newSubscription()
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	if m.closed {
		s.close()
		return s
	}
	m.subs = append(m.subs, s)
	return s
}

// Unsubscribe stops delivery to s.
func (m *Manager) Unsubscribe(s *Subscription) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for i, sub := range m.subs {
		if sub == s {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			s.close()
			return
		}
	}
}

// Close ends all subscriptions.
func (m *Manager) Close() {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, s := range m.subs {
		s.close()
	}
	m.subs = nil
}

func (m *Manager) broadcast(c Change) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	for _, s := range m.subs {
		s.send(c)
	}
}
