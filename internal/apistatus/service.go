package apistatus

import (
	"strings"
	"sync"
	"time"
)

// Status is a point-in-time view of backend reachability. Known is false
// until the first report arrives.
type Status struct {
	Known     bool      `json:"known"`
	Connected bool      `json:"connected"`
	Detail    string    `json:"detail,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Label renders the status for compact displays.
func (s Status) Label() string {
	switch {
	case !s.Known:
		return "unknown"
	case s.Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Service owns the reachability flag and fans changes out to subscribers.
type Service struct {
	mu     sync.Mutex
	status Status
	subs   map[int]chan Status
	nextID int
	now    func() time.Time
}

// NewService constructs a Service in the unknown state.
func NewService() *Service {
	return &Service{subs: make(map[int]chan Status), now: time.Now}
}

// Set records a reachability observation. Subscribers are notified only when
// the connected flag changes or the first observation arrives.
func (s *Service) Set(connected bool, detail string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := !s.status.Known || s.status.Connected != connected
	s.status = Status{
		Known:     true,
		Connected: connected,
		Detail:    strings.TrimSpace(detail),
		CheckedAt: s.now().UTC(),
	}
	if !changed {
		return
	}
	for _, ch := range s.subs {
		deliverLatest(ch, s.status)
	}
}

// Connected reports the last observed reachability.
func (s *Service) Connected() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status.Connected
}

// Status returns the last observation.
func (s *Service) Status() Status {
	if s == nil {
		return Status{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Subscribe returns a channel that always holds the most recent change and a
// cancel function that closes it. Slow readers skip intermediate values.
func (s *Service) Subscribe() (<-chan Status, func()) {
	ch := make(chan Status, 1)
	if s == nil {
		close(ch)
		return ch, func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	if s.status.Known {
		ch <- s.status
	}
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func deliverLatest(ch chan Status, status Status) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- status:
	default:
	}
}
