package game

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	mrand "math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"visionlab/internal/optics"
	"visionlab/pkg/realtime"
)

// SSE event names published for a round.
const (
	EventTimer    = "timer"
	EventExpired  = "expired"
	EventFinished = "finished"
)

const tickInterval = time.Second

// Store holds rounds and delegates to realtime.RoomStore for lookup,
// broadcast and the countdown loop.
type Store struct {
	r         *realtime.RoomStore[*Round]
	constants optics.Constants
	duration  time.Duration

	mu  sync.Mutex
	rng *mrand.Rand
}

// NewStore creates an in-memory round store. seed drives every patient
// drawn from it.
func NewStore(c optics.Constants, duration time.Duration, seed int64) *Store {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Store{
		r:         realtime.NewRoomStore[*Round](),
		constants: c,
		duration:  duration,
		rng:       mrand.New(mrand.NewSource(seed)),
	}
}

// Constants returns the optical constants rounds are played with.
func (s *Store) Constants() optics.Constants { return s.constants }

// Duration is the length of new rounds.
func (s *Store) Duration() time.Duration { return s.duration }

// CreateRound starts a new round at now.
func (s *Store) CreateRound(now time.Time) *Round {
	s.mu.Lock()
	rng := mrand.New(mrand.NewSource(s.rng.Int63()))
	s.mu.Unlock()
	round := NewRound(rng, now, s.duration, s.constants)
	s.r.Create(round.ID, round)
	return round
}

// GetRound returns a round by ID if it exists.
func (s *Store) GetRound(id string) (*Round, bool) {
	room, ok := s.r.Get(id)
	if !ok {
		return nil, false
	}
	return room.State, true
}

// Lookup is GetRound for callers that want an error.
func (s *Store) Lookup(id string) (*Round, error) {
	round, ok := s.GetRound(id)
	if !ok {
		return nil, fmt.Errorf("round %q: %w", id, ErrRoundNotFound)
	}
	return round, nil
}

// DeleteRound stops the round's countdown and drops it.
func (s *Store) DeleteRound(id string) {
	s.r.Delete(id)
}

// Broadcaster returns the SSE broadcaster of a round.
func (s *Store) Broadcaster(id string) (*realtime.Broadcaster, bool) {
	return s.r.Broadcaster(id)
}

// Publish notifies subscribers of a round.
func (s *Store) Publish(id string, e realtime.Event) {
	s.r.Publish(id, e)
}

// EnsureCountdown starts the once-a-second timer loop of a round. The loop
// publishes the remaining seconds, one expired event when time runs out,
// and stops when the round is over.
func (s *Store) EnsureCountdown(id string) {
	getState := func() *Round {
		round, ok := s.GetRound(id)
		if !ok {
			return nil
		}
		return round
	}
	s.r.RunLoop(id, getState, countdownTick)
}

// WakeCountdown makes the loop re-check the round immediately, e.g. right
// after a guess finished it.
func (s *Store) WakeCountdown(id string) {
	s.r.Wake(id)
}

func countdownTick(round *Round, now time.Time) (time.Time, []realtime.Event, bool) {
	if round == nil {
		return time.Time{}, nil, true
	}
	expired := round.Expire(now)
	snap := round.Snapshot(now)
	switch {
	case expired:
		return time.Time{}, []realtime.Event{{Name: EventTimer, Data: "0"}, {Name: EventExpired}}, true
	case snap.Status != StatusInProgress:
		return time.Time{}, nil, true
	}
	next := round.Countdown.NextTick(now, tickInterval)
	return next, []realtime.Event{{Name: EventTimer, Data: strconv.Itoa(snap.RemainingSeconds)}}, false
}

// Prune drops rounds created before cutoff.
func (s *Store) Prune(cutoff time.Time) int {
	var stale []string
	s.r.Each(func(room *realtime.Room[*Round]) {
		if room.State != nil && room.State.CreatedAt.Before(cutoff) {
			stale = append(stale, room.ID)
		}
	})
	for _, id := range stale {
		s.r.Delete(id)
	}
	return len(stale)
}

// Len returns the number of live rounds.
func (s *Store) Len() int { return s.r.Len() }

func newID() string {
	// 10 bytes -> 16 chars of base32, short and url-safe.
	buf := make([]byte, 10)
	_, _ = rand.Read(buf)
	encoder := base32.StdEncoding.WithPadding(base32.NoPadding)
	return strings.ToLower(encoder.EncodeToString(buf))
}
