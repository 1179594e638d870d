// Package realtime keeps per-session state with an SSE broadcaster and an
// optional timing loop per entry.
package realtime

import (
	"context"
	"sync"
	"time"
)

// Room holds state and a broadcaster for one session.
type Room[T any] struct {
	ID    string
	State T
	hub   *Broadcaster
}

// RoomStore manages rooms and their broadcasters.
type RoomStore[T any] struct {
	mu     sync.RWMutex
	rooms  map[string]*Room[T]
	loops  map[string]context.CancelFunc
	wakes  map[string]chan struct{}
	noHubs bool
}

// Option configures a RoomStore.
type Option func(*storeOptions)

type storeOptions struct {
	noHubs bool
}

// WithoutBroadcast makes a store that only keeps state: rooms get no
// broadcaster, Publish is a no-op and Broadcaster reports false.
func WithoutBroadcast() Option {
	return func(o *storeOptions) { o.noHubs = true }
}

// NewRoomStore creates an empty room store.
func NewRoomStore[T any](opts ...Option) *RoomStore[T] {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &RoomStore[T]{
		rooms:  make(map[string]*Room[T]),
		loops:  make(map[string]context.CancelFunc),
		wakes:  make(map[string]chan struct{}),
		noHubs: o.noHubs,
	}
}

// Create adds a room, replacing any room with the same id. The room gets a
// fresh broadcaster unless the store was made WithoutBroadcast.
func (s *RoomStore[T]) Create(id string, state T) *Room[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Room[T]{ID: id, State: state}
	if !s.noHubs {
		r.hub = NewBroadcaster()
	}
	s.rooms[id] = r
	return r
}

// Get returns the room by ID if it exists.
func (s *RoomStore[T]) Get(id string) (*Room[T], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	return r, ok
}

// Publish sends an event to the room's subscribers. Unknown rooms are
// ignored.
func (s *RoomStore[T]) Publish(id string, e Event) {
	s.mu.RLock()
	r, ok := s.rooms[id]
	s.mu.RUnlock()
	if !ok || r.hub == nil {
		return
	}
	r.hub.Publish(e)
}

// Delete stops the room's loop, closes its subscriptions and forgets it.
func (s *RoomStore[T]) Delete(id string) {
	s.mu.Lock()
	r, ok := s.rooms[id]
	delete(s.rooms, id)
	if cancel, running := s.loops[id]; running {
		cancel()
	}
	s.mu.Unlock()
	if ok && r.hub != nil {
		r.hub.Close()
	}
}

// Len returns the number of rooms.
func (s *RoomStore[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Each calls fn for every room. fn must not call back into the store.
func (s *RoomStore[T]) Each(fn func(r *Room[T])) {
	s.mu.RLock()
	rooms := make([]*Room[T], 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.RUnlock()
	for _, r := range rooms {
		fn(r)
	}
}

// Broadcaster returns the room's broadcaster. ok is false for unknown rooms.
func (s *RoomStore[T]) Broadcaster(id string) (*Broadcaster, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[id]
	if !ok || s.noHubs {
		return nil, false
	}
	if r.hub == nil {
		r.hub = NewBroadcaster()
	}
	return r.hub, true
}

// TickFunc is called by RunLoop to pick the next wake time and the events
// to publish now. Events returned with stop true are still published.
type TickFunc[T any] func(state T, now time.Time) (next time.Time, events []Event, stop bool)

// RunLoop starts a timing loop for the room unless one is already running.
// The loop ends when tick says stop or the room is deleted.
func (s *RoomStore[T]) RunLoop(id string, getState func() T, tick TickFunc[T]) {
	s.mu.Lock()
	if _, ok := s.loops[id]; ok {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	wake := make(chan struct{}, 1)
	s.loops[id] = cancel
	s.wakes[id] = wake
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.loops, id)
			delete(s.wakes, id)
			s.mu.Unlock()
		}()

		for {
			state := getState()
			now := time.Now().UTC()
			next, events, stop := tick(state, now)
			for _, e := range events {
				s.Publish(id, e)
			}
			if stop {
				return
			}
			wait := time.Until(next)
			if wait < 0 {
				wait = 0
			}
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			case <-wake:
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				continue
			}
		}
	}()
}

// Wake unblocks the room's loop so it recomputes immediately.
func (s *RoomStore[T]) Wake(id string) {
	s.mu.RLock()
	wake, ok := s.wakes[id]
	s.mu.RUnlock()
	if !ok {
		return
	}
	select {
	case wake <- struct{}{}:
	default:
	}
}
