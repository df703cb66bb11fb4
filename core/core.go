// Package core runs the per-user link queues: it gates submissions, drains each
// user's FIFO in its own goroutine and reports progress back into the chat.
package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/config"
	"github.com/krau/SaveLink-Bot/core/delivery"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/core/retriever"
	"github.com/krau/SaveLink-Bot/core/session"
	"github.com/krau/SaveLink-Bot/core/tasks/batch"
	"github.com/krau/SaveLink-Bot/pkg/linkkind"
)

var (
	ErrNoLinks       = errors.New("no links in message")
	ErrNoSupported   = errors.New("no supported links in message")
	ErrQuotaExceeded = errors.New("daily quota exceeded")
)

type Retriever interface {
	Retrieve(ctx context.Context, req retriever.Request) (retriever.Outcome, error)
	FetchEntry(ctx context.Context, req retriever.Request, entry retriever.Entry) (retriever.SingleFile, error)
}

type Options struct {
	// how multi-entry folders are delivered
	FolderMode config.FolderMode
	// minimum gap between two status edits
	ProgressInterval time.Duration
	// pause between two queue items
	ItemDelay time.Duration
}

type Engine struct {
	sessions  *session.Manager
	policy    *quota.Policy
	retriever Retriever
	deliverer *delivery.Deliverer
	opts      Options

	mu     sync.Mutex
	drains map[int64]*drainState
	wg     sync.WaitGroup
	// drains outlive the update that started them
	baseCtx context.Context
}

func New(ctx context.Context, sessions *session.Manager, policy *quota.Policy, r Retriever, d *delivery.Deliverer, opts Options) *Engine {
	if opts.FolderMode == "" {
		opts.FolderMode = config.FolderModeEach
	}
	return &Engine{
		sessions:  sessions,
		policy:    policy,
		retriever: r,
		deliverer: d,
		opts:      opts,
		drains:    make(map[int64]*drainState),
		baseCtx:   ctx,
	}
}

func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

func (e *Engine) Policy() *quota.Policy {
	return e.policy
}

// Origin is the chat message a submission came from.
type Origin struct {
	UserID  int64
	ChatID  int64
	TopicID int
	MsgID   int
}

type SubmitResult struct {
	Total       int
	Supported   int
	Unsupported int
	Added       int
	Pending     int
	Status      quota.Status
}

// Remaining is what the daily quota still allows after the queued tasks.
func (r SubmitResult) Remaining() int {
	if r.Status.Premium() {
		return quota.Unlimited
	}
	return max(r.Status.Remaining-r.Pending, 0)
}

// Submit gates and enqueues every supported link of one message, then makes sure
// the user's drain is running.
func (e *Engine) Submit(ctx context.Context, origin Origin, links []string) (SubmitResult, error) {
	res := SubmitResult{Total: len(links)}
	if len(links) == 0 {
		return res, ErrNoLinks
	}
	supported, unsupported := linkkind.Partition(links)
	res.Supported, res.Unsupported = len(supported), len(unsupported)
	if len(supported) == 0 {
		return res, ErrNoSupported
	}

	sess := e.sessions.Acquire(origin.UserID)
	unlock := sess.LockSubmit()
	defer unlock()
	res.Pending = sess.Pending()
	ok, st, err := e.policy.CanSubmit(ctx, origin.UserID, len(supported), res.Pending)
	res.Status = st
	if err != nil {
		e.sessions.Release(origin.UserID)
		return res, err
	}
	if !ok {
		e.sessions.Release(origin.UserID)
		return res, fmt.Errorf("%w: %d links, %d remaining", ErrQuotaExceeded, len(supported), res.Remaining())
	}

	dest := batch.Destination{ChatID: origin.ChatID, TopicID: origin.TopicID}
	if st.Premium() {
		settings, err := e.policy.Store().GetSettings(ctx, origin.UserID)
		if err != nil && !errors.Is(err, quota.ErrNotFound) {
			log.FromContext(ctx).Warn("Failed to load settings", "user", origin.UserID, "err", err)
		}
		if settings.DestChatID != 0 {
			dest = batch.Destination{ChatID: settings.DestChatID}
		}
	}

	tasks := make([]*batch.Task, 0, len(supported))
	for _, link := range supported {
		replyTo := 0
		if dest.ChatID == origin.ChatID {
			replyTo = origin.MsgID
		}
		tasks = append(tasks, batch.NewTask(origin.UserID, link, dest, replyTo))
	}
	added, err := sess.Enqueue(tasks...)
	res.Added = added
	res.Pending = sess.Pending()
	if err != nil && added == 0 {
		e.sessions.Release(origin.UserID)
		return res, fmt.Errorf("failed to enqueue tasks: %w", err)
	}
	if sess.TryBeginDrain() {
		// the drain takes over this pin and releases it when done
		state := e.beginDrain(origin.UserID)
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.drain(log.WithContext(e.baseCtx, log.FromContext(ctx)), sess, state, origin)
		}()
	} else {
		e.sessions.Release(origin.UserID)
	}
	if err != nil {
		return res, fmt.Errorf("failed to enqueue tasks: %w", err)
	}
	return res, nil
}

// Cancel stops the user's queue after the running item. It returns how many pending
// tasks were dropped and whether there was anything to cancel.
func (e *Engine) Cancel(userID int64) (int, bool) {
	if _, ok := e.sessions.Get(userID); !ok {
		return 0, false
	}
	sess := e.sessions.Acquire(userID)
	defer e.sessions.Release(userID)
	processing := sess.Processing()
	dropped := sess.Cancel()
	if n := len(dropped); n > 0 {
		e.mu.Lock()
		if state, ok := e.drains[userID]; ok {
			state.summary.AddCancelled(n)
		}
		e.mu.Unlock()
	}
	return len(dropped), processing || len(dropped) > 0
}

// Wait blocks until every running drain has finished.
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) beginDrain(userID int64) *drainState {
	state := &drainState{summary: batch.NewSummary()}
	e.mu.Lock()
	e.drains[userID] = state
	e.mu.Unlock()
	return state
}

func (e *Engine) endDrain(userID int64) {
	e.mu.Lock()
	delete(e.drains, userID)
	e.mu.Unlock()
}
