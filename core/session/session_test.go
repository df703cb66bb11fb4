package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/krau/SaveLink-Bot/core/tasks/batch"
)

func tasks(urls ...string) []*batch.Task {
	out := make([]*batch.Task, 0, len(urls))
	for _, u := range urls {
		out = append(out, batch.NewTask(7, u, batch.Destination{ChatID: 7}, 0))
	}
	return out
}

func TestSessionFIFO(t *testing.T) {
	s := newSession(7, t.TempDir())
	in := tasks("https://a.example/1.mp4", "https://a.example/2.mp4", "https://a.example/3.mp4")
	if n, err := s.Enqueue(in...); err != nil || n != 3 {
		t.Fatalf("Enqueue() = %d, %v", n, err)
	}
	if s.Pending() != 3 {
		t.Fatalf("Pending() = %d", s.Pending())
	}
	for i := range in {
		got, ok := s.Next()
		if !ok || got.ID != in[i].ID {
			t.Fatalf("Next() #%d = %v, %v", i, got, ok)
		}
	}
	if _, ok := s.Next(); ok {
		t.Fatalf("Next() on empty queue should report false")
	}
}

func TestSessionCancel(t *testing.T) {
	s := newSession(7, t.TempDir())
	s.Enqueue(tasks("https://a.example/1.mp4", "https://a.example/2.mp4")...)
	if !s.TryBeginDrain() {
		t.Fatal("TryBeginDrain() should succeed once")
	}
	if s.TryBeginDrain() {
		t.Fatal("second TryBeginDrain() must fail")
	}
	dropped := s.Cancel()
	if len(dropped) != 2 || s.Pending() != 0 || !s.Token().Cancelled() {
		t.Fatalf("dropped = %d, pending = %d, cancelled = %v", len(dropped), s.Pending(), s.Token().Cancelled())
	}

	// a submission while the cancelled drain still runs keeps the flag
	s.Enqueue(tasks("https://a.example/3.mp4")...)
	if !s.Token().Cancelled() {
		t.Fatal("cancel flag cleared while draining")
	}
	if err := s.EndDrain(); err != nil {
		t.Fatal(err)
	}
	if s.Token().Cancelled() || s.Processing() {
		t.Fatal("EndDrain() should reset the flags")
	}
}

func TestEnqueueClearsStaleCancel(t *testing.T) {
	s := newSession(7, t.TempDir())
	s.Cancel()
	s.Enqueue(tasks("https://a.example/1.mp4")...)
	if s.Token().Cancelled() {
		t.Fatal("stale cancel flag should be cleared by an idle submission")
	}
}

func TestEndDrainRemovesScratchDir(t *testing.T) {
	root := t.TempDir()
	s := newSession(42, root)
	dir, err := s.Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join(root, "42") {
		t.Fatalf("dir = %q", dir)
	}
	os.WriteFile(filepath.Join(dir, "left.bin"), []byte("x"), 0o644)
	s.TryBeginDrain()
	if err := s.EndDrain(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("scratch dir should be removed")
	}
}

func TestRunningTaskCountsAsPending(t *testing.T) {
	s := newSession(7, t.TempDir())
	s.Enqueue(tasks("https://a.example/1.mp4", "https://a.example/2.mp4")...)
	task, _ := s.Next()
	if s.Pending() != 2 || s.Queued() != 1 {
		t.Fatalf("Pending() = %d, Queued() = %d; want 2, 1", s.Pending(), s.Queued())
	}
	s.Finish(task)
	if s.Pending() != 1 {
		t.Fatalf("Pending() after Finish = %d; want 1", s.Pending())
	}
}

func TestManagerRelease(t *testing.T) {
	m := NewManager(t.TempDir())
	s := m.Acquire(1)
	if m.Acquire(1) != s {
		t.Fatal("Acquire() must return the same session")
	}
	m.Release(1)
	s.SetAwaiting(AwaitCaption)
	if m.Release(1) {
		t.Fatal("session with a pending prompt must stay")
	}
	s.SetAwaiting(AwaitNone)
	s.Enqueue(tasks("https://a.example/1.mp4")...)
	if m.Release(1) {
		t.Fatal("session with pending tasks must stay")
	}
	task, _ := s.Next()
	s.TryBeginDrain()
	if m.Release(1) {
		t.Fatal("processing session must stay")
	}
	s.Finish(task)
	s.EndDrain()
	if !m.Release(1) || m.Len() != 0 {
		t.Fatal("idle session should be released")
	}
	if _, ok := m.Get(1); ok {
		t.Fatal("released session still present")
	}
}

func TestManagerKeepsPinnedSession(t *testing.T) {
	m := NewManager(t.TempDir())
	drain := m.Acquire(1)
	drain.TryBeginDrain()
	drain.EndDrain()

	// a submission pins the session, then the finishing drain lets go of it
	submit := m.Acquire(1)
	if m.Release(1) {
		t.Fatal("session dropped while a submission holds it")
	}
	submit.Enqueue(tasks("https://a.example/1.mp4")...)
	if !submit.TryBeginDrain() {
		t.Fatal("submission should start the next drain")
	}
	next := m.Acquire(1)
	if next != submit {
		t.Fatal("a later message must reach the same session")
	}
	if next.TryBeginDrain() {
		t.Fatal("two concurrent drains for one user")
	}
}
