package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/krau/SaveLink-Bot/config"
	"github.com/krau/SaveLink-Bot/core/delivery"
	"github.com/krau/SaveLink-Bot/core/quota"
	"github.com/krau/SaveLink-Bot/core/retriever"
	"github.com/krau/SaveLink-Bot/core/session"
	"github.com/krau/SaveLink-Bot/core/tasks/batch"
	"github.com/krau/SaveLink-Bot/pkg/enums/taskstatus"
	"github.com/krau/SaveLink-Bot/pkg/progress"
)

type drainState struct {
	summary *batch.Summary
	status  delivery.Handle
	index   int
}

func (e *Engine) drain(ctx context.Context, sess *session.Session, state *drainState, origin Origin) {
	logger := log.FromContext(ctx).WithPrefix(fmt.Sprintf("drain[%d]", sess.UserID))
	ctx = log.WithContext(ctx, logger)
	transport := e.deliverer.Transport()

	for {
		status, err := transport.SendText(ctx, origin.ChatID, origin.MsgID, e.queueText(state, sess))
		if err != nil {
			logger.Warn("Failed to send status message", "err", err)
		} else {
			state.status = status
			if err := transport.Pin(ctx, status); err != nil {
				logger.Debug("Failed to pin status message", "err", err)
			}
		}

		e.run(ctx, sess, state)

		if _, err := transport.SendText(ctx, origin.ChatID, origin.MsgID, state.summary.Text()); err != nil {
			logger.Warn("Failed to send summary", "err", err)
		}
		if state.status.MsgID != 0 {
			if err := transport.Unpin(ctx, state.status); err != nil {
				logger.Debug("Failed to unpin status message", "err", err)
			}
		}
		e.endDrain(sess.UserID)
		if err := sess.EndDrain(); err != nil {
			logger.Error("Failed to clean scratch directory", "err", err)
		}
		// a submission may have slipped in after the last pop
		if sess.Pending() == 0 || !sess.TryBeginDrain() {
			break
		}
		state = e.beginDrain(sess.UserID)
	}
	e.sessions.Release(sess.UserID)
	logger.Info("Queue drained")
}

func (e *Engine) run(ctx context.Context, sess *session.Session, state *drainState) {
	for {
		if sess.Token().Cancelled() {
			return
		}
		task, ok := sess.Next()
		if !ok {
			return
		}
		state.index++
		e.process(ctx, sess, state, task)
		sess.Finish(task)
		if sess.Queued() == 0 || e.opts.ItemDelay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(e.opts.ItemDelay):
		}
	}
}

// progressView renders throttled status edits for one task.
type progressView struct {
	e        *Engine
	ctx      context.Context
	state    *drainState
	total    int
	throttle *progress.Throttle
}

func (e *Engine) newProgressView(ctx context.Context, sess *session.Session, state *drainState) *progressView {
	return &progressView{
		e:        e,
		ctx:      ctx,
		state:    state,
		total:    state.index + sess.Queued(),
		throttle: progress.NewThrottle(e.opts.ProgressInterval),
	}
}

func (v *progressView) edit(text string) {
	if v.state.status.MsgID == 0 {
		return
	}
	if err := v.e.deliverer.Transport().EditStatus(v.ctx, v.state.status, text); err != nil {
		log.FromContext(v.ctx).Debug("Failed to edit status", "err", err)
	}
}

func (v *progressView) resolving(url string) {
	if v.throttle.ShouldEmit() {
		v.edit(resolvingText(v.state.index, v.total, url))
	}
}

func (v *progressView) downloading(tr retriever.Transfer) {
	if v.throttle.ShouldEmit() {
		v.edit(transferText(true, v.state.index, v.total, progress.Snap(tr.Name, tr.Done, tr.Total, time.Since(tr.Started))))
	}
}

func (v *progressView) uploading(name string, started time.Time) func(done, total int64) {
	return func(done, total int64) {
		if v.throttle.ShouldEmit() {
			v.edit(transferText(false, v.state.index, v.total, progress.Snap(name, done, total, time.Since(started))))
		}
	}
}

func (e *Engine) process(ctx context.Context, sess *session.Session, state *drainState, task *batch.Task) {
	logger := log.FromContext(ctx).With("task", task.ID)
	ctx = log.WithContext(ctx, logger)
	view := e.newProgressView(ctx, sess, state)
	view.resolving(task.URL)

	st, err := e.policy.Status(ctx, task.UserID)
	if err != nil {
		logger.Error("Failed to load quota status", "err", err)
		e.fail(ctx, state, task, retriever.AsFailure(err))
		return
	}
	var settings quota.Settings
	if st.Premium() {
		settings, err = e.policy.Store().GetSettings(ctx, task.UserID)
		if err != nil && !errors.Is(err, quota.ErrNotFound) {
			logger.Warn("Failed to load settings", "err", err)
		}
	}
	dir, err := sess.Dir()
	if err != nil {
		logger.Error("Failed to create scratch directory", "err", err)
		e.fail(ctx, state, task, retriever.AsFailure(err))
		return
	}

	task.Status = taskstatus.Downloading
	req := retriever.Request{
		URL:        task.URL,
		Kind:       task.Kind,
		Dir:        dir,
		MaxSize:    st.MaxSize,
		SpeedLimit: st.SpeedLimit,
		Cancel:     sess.Token(),
		OnProgress: view.downloading,
	}
	out, err := e.retriever.Retrieve(ctx, req)
	if err != nil {
		e.fail(ctx, state, task, retriever.AsFailure(err))
		return
	}

	var files []retriever.SingleFile
	cancelled := false
	switch o := out.(type) {
	case retriever.SingleFile:
		files = []retriever.SingleFile{o}
	case retriever.FolderListing:
		var failure *retriever.Failure
		files, cancelled, failure = e.fetchFolder(ctx, state, task, req, o)
		if failure != nil {
			e.fail(ctx, state, task, failure)
			return
		}
	default:
		e.fail(ctx, state, task, retriever.AsFailure(fmt.Errorf("unexpected outcome %T", out)))
		return
	}

	task.Status = taskstatus.Uploading
	delivered := 0
	lastReason := ""
	for i, f := range files {
		if i > 0 && sess.Token().Cancelled() {
			removeFiles(files[i:])
			cancelled = true
			break
		}
		res, err := e.deliverer.Deliver(ctx, delivery.Item{
			UserID:   task.UserID,
			URL:      task.URL,
			File:     f,
			ChatID:   task.Dest.ChatID,
			TopicID:  task.Dest.TopicID,
			ReplyTo:  task.ReplyTo,
			Settings: settings,
			Progress: view.uploading(f.Name, time.Now()),
		})
		if err != nil {
			logger.Error("Delivery failed", "file", f.Name, "err", err)
			lastReason = reasonText(nil)
			if len(files) > 1 {
				state.summary.AddFailureLine(task.URL+" "+f.Name, lastReason)
			}
			e.deliverer.LogFailure(ctx, task.UserID, task.URL, lastReason)
			continue
		}
		delivered++
		state.summary.AddFile(res.Kind)
		logger.Info("Delivered", "file", f.Name, "size", f.Size, "shape", res.Shape)
	}
	switch {
	case delivered > 0:
		task.Status = taskstatus.Done
		state.summary.AddSuccess()
		if err := e.policy.Charge(ctx, task.UserID); err != nil {
			logger.Error("Failed to charge usage", "err", err)
		}
	case cancelled:
		task.Status = taskstatus.Cancelled
		state.summary.AddCancelled(1)
	default:
		task.Status = taskstatus.Failed
		if lastReason == "" {
			lastReason = reasonText(&retriever.Failure{Reason: retriever.ReasonEmptyBody})
		}
		state.summary.AddFailure(task.URL, lastReason)
	}
}

// fetchFolder downloads the entries of a folder listing, zipped into one archive
// when configured so. A non-nil failure fails the whole task; failed entries of an
// each-mode folder are only listed.
func (e *Engine) fetchFolder(ctx context.Context, state *drainState, task *batch.Task, req retriever.Request, folder retriever.FolderListing) ([]retriever.SingleFile, bool, *retriever.Failure) {
	logger := log.FromContext(ctx)
	files := make([]retriever.SingleFile, 0, len(folder.Entries))
	cancelled := false
	var last *retriever.Failure
	for _, entry := range folder.Entries {
		f, err := e.retriever.FetchEntry(ctx, req, entry)
		if err != nil {
			failure := retriever.AsFailure(err)
			if failure.Reason == retriever.ReasonCancelled {
				cancelled = true
				break
			}
			logger.Warn("Folder entry failed", "entry", entry.Name, "err", err)
			if e.opts.FolderMode == config.FolderModeZip {
				removeFiles(files)
				return nil, false, failure
			}
			last = failure
			state.summary.AddFailureLine(task.URL+" "+entry.Name, reasonText(failure))
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		if cancelled {
			return nil, true, nil
		}
		if last == nil {
			last = &retriever.Failure{Reason: retriever.ReasonEmptyBody}
		}
		return nil, false, last
	}
	if e.opts.FolderMode != config.FolderModeZip {
		return files, cancelled, nil
	}
	if cancelled {
		removeFiles(files)
		return nil, true, nil
	}
	archive, err := retriever.ZipFiles(req.Dir, folder.Name, files)
	removeFiles(files)
	if err != nil {
		logger.Error("Failed to zip folder", "folder", folder.Name, "err", err)
		return nil, false, retriever.AsFailure(err)
	}
	if req.MaxSize > 0 && archive.Size > req.MaxSize {
		removeFiles([]retriever.SingleFile{archive})
		return nil, false, &retriever.Failure{Reason: retriever.ReasonTooLarge, Limit: req.MaxSize}
	}
	return []retriever.SingleFile{archive}, false, nil
}

func (e *Engine) fail(ctx context.Context, state *drainState, task *batch.Task, failure *retriever.Failure) {
	if failure.Reason == retriever.ReasonCancelled {
		task.Status = taskstatus.Cancelled
		state.summary.AddCancelled(1)
		return
	}
	task.Status = taskstatus.Failed
	log.FromContext(ctx).Warn("Task failed", "url", task.URL, "reason", failure.Reason, "err", failure)
	reason := reasonText(failure)
	state.summary.AddFailure(task.URL, reason)
	e.deliverer.LogFailure(ctx, task.UserID, task.URL, reason)
}
