// Package recovery retries RPCs that died with the connection instead of failing the caller.
package recovery

import (
	"context"
	"errors"
	"io"
	"net"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
)

type recovery struct {
	ctx        context.Context
	newBackoff func() backoff.BackOff
}

// New builds a recovery middleware. newBackoff is called once per RPC since
// backoff state is not safe to share.
func New(ctx context.Context, newBackoff func() backoff.BackOff) telegram.Middleware {
	return &recovery{ctx: ctx, newBackoff: newBackoff}
}

func (r *recovery) Handle(next tg.Invoker) telegram.InvokeFunc {
	return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		op := func() error {
			err := next.Invoke(ctx, input, output)
			if err == nil {
				return nil
			}
			if r.shouldRecover(ctx, err) {
				return err
			}
			return backoff.Permanent(err)
		}
		notify := func(err error, wait time.Duration) {
			log.FromContext(ctx).Debug("recovering rpc", "err", err, "wait", wait)
		}
		return backoff.RetryNotify(op, backoff.WithContext(r.newBackoff(), ctx), notify)
	}
}

func (r *recovery) shouldRecover(ctx context.Context, err error) bool {
	if r.ctx.Err() != nil || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
