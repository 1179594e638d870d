package realtime

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestRoomStore_Create_Get(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("room1", "state1")
	room, ok := s.Get("room1")
	if !ok {
		t.Fatal("Get returned false for existing room")
	}
	if room.ID != "room1" || room.State != "state1" {
		t.Errorf("room %+v, want room1/state1", room)
	}
	if _, ok := s.Get("nonexistent"); ok {
		t.Error("Get should return false for missing ID")
	}
	if s.Len() != 1 {
		t.Errorf("Len %d, want 1", s.Len())
	}
}

func TestRoomStore_Publish(t *testing.T) {
	s := NewRoomStore[string]()
	s.Create("r1", "x")
	hub, ok := s.Broadcaster("r1")
	if !ok {
		t.Fatal("Broadcaster returned false for existing room")
	}
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	s.Publish("r1", Event{Name: "event1"})
	if got := <-ch; got.Name != "event1" {
		t.Errorf("got %q, want event1", got.Name)
	}
	s.Publish("missing", Event{Name: "dropped"})
	if _, ok := s.Broadcaster("missing"); ok {
		t.Error("Broadcaster should not create rooms")
	}
}

func TestRoomStore_WithoutBroadcast(t *testing.T) {
	s := NewRoomStore[string](WithoutBroadcast())
	room := s.Create("r1", "x")
	if room.hub != nil {
		t.Fatal("room got a broadcaster")
	}
	if _, ok := s.Broadcaster("r1"); ok {
		t.Error("Broadcaster should report false")
	}
	s.Publish("r1", Event{Name: "ignored"})
	s.Delete("r1")
	if s.Len() != 0 {
		t.Errorf("Len %d, want 0", s.Len())
	}
}

func TestRoomStore_DeleteClosesSubscribers(t *testing.T) {
	s := NewRoomStore[int]()
	s.Create("r", 1)
	hub, _ := s.Broadcaster("r")
	ch := hub.Subscribe()
	s.Delete("r")
	if _, open := <-ch; open {
		t.Error("subscriber channel should be closed after Delete")
	}
	if _, ok := s.Get("r"); ok {
		t.Error("room still present after Delete")
	}
}

func TestRoomStore_RunLoopPublishesUntilStop(t *testing.T) {
	s := NewRoomStore[int]()
	s.Create("r", 0)
	hub, _ := s.Broadcaster("r")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	var calls atomic.Int32
	s.RunLoop("r", func() int { return 0 }, func(_ int, now time.Time) (time.Time, []Event, bool) {
		n := calls.Add(1)
		if n >= 3 {
			return time.Time{}, []Event{{Name: "done"}}, true
		}
		return now.Add(5 * time.Millisecond), []Event{{Name: "tick"}}, false
	})

	want := []string{"tick", "tick", "done"}
	for _, w := range want {
		select {
		case got := <-ch:
			if got.Name != w {
				t.Errorf("got %q, want %q", got.Name, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q", w)
		}
	}
}

func TestRoomStore_WakeRecomputesImmediately(t *testing.T) {
	s := NewRoomStore[int]()
	s.Create("r", 0)
	hub, _ := s.Broadcaster("r")
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	var woke atomic.Bool
	s.RunLoop("r", func() int { return 0 }, func(_ int, now time.Time) (time.Time, []Event, bool) {
		if woke.Load() {
			return time.Time{}, []Event{{Name: "woken"}}, true
		}
		return now.Add(time.Hour), nil, false
	})
	woke.Store(true)
	// The loop may not have registered its wake channel yet.
	deadline := time.After(2 * time.Second)
	for {
		s.Wake("r")
		select {
		case got := <-ch:
			if got.Name != "woken" {
				t.Errorf("got %q, want woken", got.Name)
			}
			return
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("loop was not woken")
		}
	}
}

func TestRoomStore_Wake_NoPanicWhenNoLoop(t *testing.T) {
	s := NewRoomStore[string]()
	s.Wake("nonexistent")
}
