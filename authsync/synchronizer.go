// Package authsync owns the authoritative answer to "is a user currently
// authenticated, and who are they". Three concurrent trigger sources feed
// it: the startup session check, the provider's auth event feed, and the
// direct results of explicit sign-in/sign-out calls. All three funnel
// through one serialized writer goroutine, so observers can never see a
// torn or interleaved update; updates are ordered by arrival at the
// writer, last writer wins.
package authsync

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/roadmapapp/go-auth-client/gateway"
	"github.com/roadmapapp/go-auth-client/session"
)

const defaultSubscriberBuffer = 16

type proposal struct {
	state State
	// forced bypasses duplicate suppression, used by explicit re-checks.
	forced bool
}

type subscription struct {
	id int
	ch chan State
}

type subRequest struct {
	reply chan subscription
}

// Synchronizer is the single writer of the process-wide auth state. It
// broadcasts every accepted transition to all subscribers, replaying the
// latest value to late subscribers. Construct with New, then call Start
// before any other method.
type Synchronizer struct {
	gw  gateway.AuthGateway
	log zerolog.Logger

	subscriberBuffer int

	proposals     chan proposal
	subscribeCh   chan subRequest
	unsubscribeCh chan int

	mu      sync.RWMutex
	current State

	subs   map[int]chan State
	nextID int

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	started   bool
	startOnce sync.Once
	closeOnce sync.Once
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithLogger sets the logger used for background sync activity.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Synchronizer) {
		s.log = log
	}
}

// WithSubscriberBuffer sets the per-subscriber channel capacity. A
// subscriber that falls further behind than this has updates dropped
// rather than stalling the writer.
func WithSubscriberBuffer(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.subscriberBuffer = n
		}
	}
}

// New creates a Synchronizer over the given auth gateway.
func New(gw gateway.AuthGateway, options ...Option) *Synchronizer {
	s := &Synchronizer{
		gw:               gw,
		log:              zerolog.Nop(),
		subscriberBuffer: defaultSubscriberBuffer,
		proposals:        make(chan proposal),
		subscribeCh:      make(chan subRequest),
		unsubscribeCh:    make(chan int),
		current:          Unknown(),
		subs:             make(map[int]chan State),
		done:             make(chan struct{}),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Start launches the writer goroutine, subscribes to the provider event
// feed, and kicks off the startup session check. Cancelling ctx stops the
// synchronizer as if Close had been called. Subsequent calls are no-ops.
func (s *Synchronizer) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.started = true
		go func() {
			select {
			case <-ctx.Done():
				s.cancel()
			case <-s.ctx.Done():
			}
		}()
		go s.run()
		go s.pumpEvents()
		s.check(false)
	})
}

// Close stops the writer and closes every subscriber channel. Safe to
// call multiple times.
func (s *Synchronizer) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		if s.started {
			<-s.done
		}
	})
}

// Current returns the latest accepted state.
func (s *Synchronizer) Current() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Subscribe registers a new observer. The returned channel immediately
// delivers the latest state, then every accepted transition in order.
// The cancel function releases the subscription; it is idempotent and
// safe to call at any point.
func (s *Synchronizer) Subscribe() (<-chan State, func()) {
	req := subRequest{reply: make(chan subscription, 1)}
	select {
	case s.subscribeCh <- req:
	case <-s.ctx.Done():
		ch := make(chan State)
		close(ch)
		return ch, func() {}
	}

	sub := <-req.reply
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			select {
			case s.unsubscribeCh <- sub.id:
			case <-s.ctx.Done():
			}
		})
	}
	return sub.ch, cancel
}

// ReportSignedIn records the result of an explicit sign-in so that the
// imperative path and the event feed converge on one state.
func (s *Synchronizer) ReportSignedIn(sess session.Session) {
	s.propose(SignedIn(sess), false)
}

// ReportSignedOut records the result of an explicit sign-out.
func (s *Synchronizer) ReportSignedOut() {
	s.propose(SignedOut(), false)
}

// Recheck re-runs the session check against the gateway and republishes
// the outcome even when it matches the current state.
func (s *Synchronizer) Recheck() {
	s.check(true)
}

// check asks the gateway for the current session in its own goroutine and
// proposes the outcome. A failed check degrades to signed-out: no session
// means logged out, never an error to subscribers.
func (s *Synchronizer) check(forced bool) {
	go func() {
		sess, err := s.gw.CurrentSession(s.ctx)
		switch {
		case err != nil:
			s.log.Debug().Err(err).Msg("session check failed, treating as signed out")
			s.propose(SignedOut(), forced)
		case sess == nil:
			s.propose(SignedOut(), forced)
		default:
			s.propose(SignedIn(*sess), forced)
		}
	}()
}

// pumpEvents translates the provider feed into state proposals. The feed
// channel closes when the synchronizer's context is cancelled.
func (s *Synchronizer) pumpEvents() {
	for ev := range s.gw.AuthEvents(s.ctx) {
		st, ok := stateForEvent(ev)
		if !ok {
			s.log.Debug().Str("kind", string(ev.Kind)).Msg("ignoring unrecognized auth event")
			continue
		}
		s.propose(st, false)
	}
}

func stateForEvent(ev gateway.Event) (State, bool) {
	switch ev.Kind {
	case gateway.EventInitial, gateway.EventSignedIn, gateway.EventTokenRefreshed, gateway.EventUserUpdated:
		if ev.Session != nil {
			return SignedIn(*ev.Session), true
		}
		return SignedOut(), true
	case gateway.EventSignedOut:
		return SignedOut(), true
	default:
		return State{}, false
	}
}

func (s *Synchronizer) propose(st State, forced bool) {
	select {
	case s.proposals <- proposal{state: st, forced: forced}:
	case <-s.ctx.Done():
	}
}

func (s *Synchronizer) setCurrent(st State) {
	s.mu.Lock()
	s.current = st
	s.mu.Unlock()
}

// run is the serialized writer. It alone mutates the current state and
// the subscriber set.
func (s *Synchronizer) run() {
	defer close(s.done)

	for {
		select {
		case <-s.ctx.Done():
			for id, ch := range s.subs {
				delete(s.subs, id)
				close(ch)
			}
			return

		case req := <-s.subscribeCh:
			id := s.nextID
			s.nextID++
			ch := make(chan State, s.subscriberBuffer)
			ch <- s.Current()
			s.subs[id] = ch
			req.reply <- subscription{id: id, ch: ch}

		case id := <-s.unsubscribeCh:
			if ch, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(ch)
			}

		case p := <-s.proposals:
			if !p.forced && p.state.Equal(s.Current()) {
				continue
			}
			s.setCurrent(p.state)
			s.log.Debug().Stringer("status", p.state.Status).Msg("auth state transition")
			for id, ch := range s.subs {
				select {
				case ch <- p.state:
				default:
					s.log.Warn().Int("subscriber", id).Msg("subscriber not keeping up, dropping auth state update")
				}
			}
		}
	}
}
