package bus

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Memory fans envelopes out to per-subscriber buffers. Posting never
// blocks: a burst larger than a subscriber's buffer, such as a pending
// backlog replayed at attach time, spills into an ordered overflow list
// that is fed to the consumer as it catches up.
// All methods are safe for concurrent use.
type Memory struct {
	mu         sync.RWMutex
	channels   map[Channel]map[*subscriber]struct{}
	presence   []PresenceFunc
	bufferSize int
	closed     bool
	cleanupWg  sync.WaitGroup
}

// NewMemory creates an in-memory bus. The bufferSize parameter sets the
// per-subscriber channel buffer; a minimum of 1 is enforced so sends stay
// non-blocking.
func NewMemory(bufferSize int) *Memory {
	m := &Memory{
		channels:   make(map[Channel]map[*subscriber]struct{}),
		bufferSize: max(bufferSize, 1),
	}
	for _, ch := range Channels() {
		m.channels[ch] = make(map[*subscriber]struct{})
	}
	return m
}

func (m *Memory) Subscribe(ctx context.Context, channel Channel) (Subscriber, error) {
	if !channel.Valid() {
		return nil, ErrUnknownChannel
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}

	sub := newSubscriber(channel, m.bufferSize)
	sub.onClose = func() { m.unsubscribe(sub) }
	set := m.channels[channel]
	set[sub] = struct{}{}
	first := len(set) == 1
	callbacks := m.presenceCallbacks(first)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(channel, true)
	}

	if ctx.Done() != nil {
		m.cleanupWg.Add(1)
		go func() {
			defer m.cleanupWg.Done()
			select {
			case <-ctx.Done():
				m.unsubscribe(sub)
			case <-sub.done:
			}
		}()
	}

	return sub, nil
}

func (m *Memory) Post(ctx context.Context, channel Channel, payload map[string]any) error {
	if !channel.Valid() {
		return ErrUnknownChannel
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}

	env := Envelope{Channel: channel, Payload: payload}
	for sub := range m.channels[channel] {
		if !sub.send(env) {
			// send fails only once the subscriber is closed; detach it
			// asynchronously so posting never blocks.
			go m.unsubscribe(sub)
		}
	}
	return nil
}

func (m *Memory) Attached(channel Channel) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels[channel]) > 0
}

func (m *Memory) OnPresence(fn PresenceFunc) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.presence = append(m.presence, fn)
}

// Close shuts the bus down and closes all subscribers. Safe to call multiple
// times.
func (m *Memory) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for _, set := range m.channels {
		for sub := range set {
			sub.closeChan()
		}
		clear(set)
	}
	m.mu.Unlock()

	m.cleanupWg.Wait()
	return nil
}

func (m *Memory) unsubscribe(sub *subscriber) {
	m.mu.Lock()
	set := m.channels[sub.channel]
	if _, ok := set[sub]; !ok {
		m.mu.Unlock()
		sub.closeChan()
		return
	}
	delete(set, sub)
	last := len(set) == 0
	callbacks := m.presenceCallbacks(last)
	m.mu.Unlock()

	sub.closeChan()
	for _, fn := range callbacks {
		fn(sub.channel, false)
	}
}

// presenceCallbacks snapshots the registered callbacks when a presence flip
// occurred so they can run outside the lock. Callers must hold mu.
func (m *Memory) presenceCallbacks(flipped bool) []PresenceFunc {
	if !flipped || len(m.presence) == 0 {
		return nil
	}
	out := make([]PresenceFunc, len(m.presence))
	copy(out, m.presence)
	return out
}

type subscriber struct {
	id      string
	channel Channel
	ch      chan Envelope
	spill   []Envelope
	wake    chan struct{}
	done    chan struct{}
	onClose func()
	closed  bool
	mu      sync.Mutex
}

func newSubscriber(channel Channel, bufferSize int) *subscriber {
	s := &subscriber{
		id:      uuid.NewString(),
		channel: channel,
		ch:      make(chan Envelope, bufferSize),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *subscriber) ID() string { return s.id }

func (s *subscriber) Receive() <-chan Envelope {
	return s.ch
}

func (s *subscriber) Close() error {
	s.mu.Lock()
	onClose := s.onClose
	s.mu.Unlock()
	if onClose != nil {
		onClose()
	} else {
		s.closeChan()
	}
	return nil
}

func (s *subscriber) closeChan() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.done)
		s.closed = true
	}
}

// send enqueues the envelope for delivery. Envelopes beyond the buffered
// channel's capacity are spilled, keeping post order intact; send fails only
// once the subscriber is closed.
func (s *subscriber) send(env Envelope) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	if len(s.spill) == 0 {
		select {
		case s.ch <- env:
			return true
		default:
		}
	}
	s.spill = append(s.spill, env)
	select {
	case s.wake <- struct{}{}:
	default:
	}
	return true
}

// pump moves spilled envelopes into the delivery channel as the consumer
// frees buffer space. The pump owns the channel close so a send can never
// race it.
func (s *subscriber) pump() {
	defer close(s.ch)
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		for {
			s.mu.Lock()
			if len(s.spill) == 0 {
				s.mu.Unlock()
				break
			}
			// Popped only after the handoff succeeds so a concurrent send
			// keeps appending behind it.
			env := s.spill[0]
			s.mu.Unlock()

			select {
			case s.ch <- env:
				s.mu.Lock()
				s.spill = s.spill[1:]
				s.mu.Unlock()
			case <-s.done:
				return
			}
		}
	}
}
