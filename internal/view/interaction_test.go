package view

import (
	"sync"
	"testing"
)

func TestPanController_MovesOnlyWhilePressed(t *testing.T) {
	var p PanController
	if _, _, ok := p.Move(10, 10); ok {
		t.Fatal("move before press should not pan")
	}
	p.Press(10, 10)
	dx, dy, ok := p.Move(15, 7)
	if !ok || dx != 5 || dy != -3 {
		t.Errorf("Move = (%v, %v, %v), want (5, -3, true)", dx, dy, ok)
	}
	p.Release()
	if _, _, ok := p.Move(20, 20); ok {
		t.Error("move after release should not pan")
	}
}

func TestPanController_LeaveClearsPanning(t *testing.T) {
	var p PanController
	p.Press(0, 0)
	p.Leave()
	if p.Panning() {
		t.Fatal("still panning after leave")
	}
	if _, _, ok := p.Move(50, 50); ok {
		t.Error("move after leave should not pan")
	}
}

func TestSequencer_RejectsStaleTokens(t *testing.T) {
	var s Sequencer
	first := s.Next()
	second := s.Next()
	if s.IsLatest(first) {
		t.Error("first token should be stale")
	}
	if !s.IsLatest(second) {
		t.Error("second token should be latest")
	}
	if s.IsLatest(0) {
		t.Error("zero token is never latest")
	}
}

func TestSequencer_ConcurrentNext(t *testing.T) {
	var s Sequencer
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Next()
		}()
	}
	wg.Wait()
	if !s.IsLatest(50) {
		t.Error("token 50 should be latest after 50 calls")
	}
}
