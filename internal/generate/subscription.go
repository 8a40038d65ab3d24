package generate

const eventBufferSize = 8

// Phase is the step of a request an Event reports.
type Phase int

const (
	PhaseStarted Phase = iota
	PhaseSucceeded
	PhaseFailed
	// PhaseRejected is reported for requests refused before being sent.
	PhaseRejected
)

func (p Phase) String() string {
	switch p {
	case PhaseStarted:
		return "started"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	case PhaseRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Event reports a workflow transition with the status that followed it.
type Event struct {
	Kind   Kind
	Phase  Phase
	Status Status
	Err    error
}

// Subscription delivers workflow events.
type Subscription struct {
	Events <-chan Event
	Done   <-chan struct{}

	eventCh chan Event
	doneCh  chan struct{}
}

func newSubscription() *Subscription {
	s := &Subscription{
		eventCh: make(chan Event, eventBufferSize),
		doneCh:  make(chan struct{}),
	}
	s.Events = s.eventCh
	s.Done = s.doneCh
	return s
}

func (s *Subscription) send(e Event) {
	select {
	case s.eventCh <- e:
	default:
	}
}

// Subscribe returns a subscription to workflow events.
func (w *Workflow) Subscribe() *Subscription {
	s := newSubscription()
	w.subsMu.Lock()
	w.subs = append(w.subs, s)
	w.subsMu.Unlock()
	return s
}

// Unsubscribe stops delivery to s.
func (w *Workflow) Unsubscribe(s *Subscription) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for i, sub := range w.subs {
		if sub == s {
			w.subs = append(w.subs[:i], w.subs[i+1:]...)
			close(s.doneCh)
			return
		}
	}
}

// Close ends all subscriptions.
func (w *Workflow) Close() {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, s := range w.subs {
		close(s.doneCh)
	}
	w.subs = nil
}

func (w *Workflow) broadcast(e Event) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for _, s := range w.subs {
		s.send(e)
	}
}
