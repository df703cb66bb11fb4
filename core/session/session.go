package session

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/krau/SaveLink-Bot/common/utils/fsutil"
	"github.com/krau/SaveLink-Bot/core/tasks/batch"
	"github.com/krau/SaveLink-Bot/pkg/queue"
)

// CancelToken is a cooperative stop flag checked between items.
type CancelToken struct {
	v atomic.Bool
}

func (t *CancelToken) Cancel()         { t.v.Store(true) }
func (t *CancelToken) Cancelled() bool { return t.v.Load() }
func (t *CancelToken) Reset()          { t.v.Store(false) }

// Awaiting is the pending answer of a settings prompt.
type Awaiting string

const (
	AwaitNone    Awaiting = ""
	AwaitChat    Awaiting = "chat"
	AwaitCaption Awaiting = "caption"
	AwaitThumb   Awaiting = "thumb"
)

type Session struct {
	UserID int64

	mu         sync.Mutex
	submitMu   sync.Mutex
	queue      *queue.TaskQueue[*batch.Task]
	processing bool
	awaiting   Awaiting
	token      CancelToken
	dir        string

	// holders of this session, guarded by the manager lock
	refs int
}

func newSession(userID int64, root string) *Session {
	return &Session{
		UserID: userID,
		queue:  queue.NewTaskQueue[*batch.Task](),
		dir:    filepath.Join(root, strconv.FormatInt(userID, 10)),
	}
}

func (s *Session) Token() *CancelToken {
	return &s.token
}

// Dir returns the scratch directory, creating it on first use.
func (s *Session) Dir() (string, error) {
	if err := os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return "", err
	}
	return s.dir, nil
}

// LockSubmit serializes quota gating and enqueueing of one user's messages.
func (s *Session) LockSubmit() (unlock func()) {
	s.submitMu.Lock()
	return s.submitMu.Unlock
}

func (s *Session) Enqueue(tasks ...*batch.Task) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.processing && s.queue.Length() == 0 {
		// a cancel issued while idle must not swallow the next batch
		s.token.Reset()
	}
	added := 0
	for _, t := range tasks {
		if err := s.queue.Add(queue.NewTask(context.Background(), t.ID, t)); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}

// Next pops the oldest pending task without blocking. The task keeps counting as
// pending until Finish is called for it.
func (s *Session) Next() (*batch.Task, bool) {
	qt, err := s.queue.TryGet()
	if err != nil {
		return nil, false
	}
	return qt.Data, true
}

func (s *Session) Finish(task *batch.Task) {
	s.queue.Done(task.ID)
}

// Cancel stops the drain after the running item and drops every pending task.
func (s *Session) Cancel() []*batch.Task {
	s.token.Cancel()
	dropped := s.queue.Clear()
	tasks := make([]*batch.Task, 0, len(dropped))
	for _, qt := range dropped {
		tasks = append(tasks, qt.Data)
	}
	return tasks
}

// Pending counts queued tasks plus the one being processed, since neither is
// charged yet.
func (s *Session) Pending() int {
	return s.queue.ActiveLength() + s.queue.RunningLength()
}

// Queued counts the tasks still waiting behind the running one.
func (s *Session) Queued() int {
	return s.queue.ActiveLength()
}

func (s *Session) Processing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processing
}

// TryBeginDrain takes the processing flag. Only one drain per user runs at a time.
func (s *Session) TryBeginDrain() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return false
	}
	s.processing = true
	return true
}

// EndDrain removes the scratch directory, then clears the processing and cancel
// flags. The directory is gone before the next drain can take the flag.
func (s *Session) EndDrain() error {
	var err error
	if _, statErr := os.Stat(s.dir); !os.IsNotExist(statErr) {
		err = fsutil.SafeRemoveAll(s.dir)
	}
	s.mu.Lock()
	s.processing = false
	s.token.Reset()
	s.mu.Unlock()
	return err
}

func (s *Session) Awaiting() Awaiting {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.awaiting
}

func (s *Session) SetAwaiting(a Awaiting) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awaiting = a
}

func (s *Session) idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.processing && s.awaiting == AwaitNone && s.queue.ActiveLength() == 0 && s.queue.RunningLength() == 0
}
