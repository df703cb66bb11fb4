package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gotd/td/bin"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
)

// server side hiccups worth a second try
var internalErrors = []string{
	"Timedout",
	"No workers running",
	"RPC_CALL_FAIL",
	"RPC_MCGET_FAIL",
	"WORKER_BUSY_TOO_LONG_RETRY",
	"memory limit exit",
}

type retry struct {
	max    int
	delay  time.Duration
	errors []string
}

func (r retry) Handle(next tg.Invoker) telegram.InvokeFunc {
	return func(ctx context.Context, input bin.Encoder, output bin.Decoder) error {
		var err error
		for attempt := 0; attempt < r.max; attempt++ {
			err = next.Invoke(ctx, input, output)
			if err == nil || !tgerr.Is(err, r.errors...) {
				return err
			}
			log.FromContext(ctx).Debug("retry middleware", "attempt", attempt+1, "err", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(r.delay * time.Duration(attempt+1)):
			}
		}
		return fmt.Errorf("retry limit reached after %d attempts: %w", r.max, err)
	}
}

// New returns a middleware retrying requests that fail with one of errs or a known internal error.
func New(max int, errs ...string) telegram.Middleware {
	if max <= 0 {
		max = 1
	}
	return retry{
		max:    max,
		delay:  200 * time.Millisecond,
		errors: append(errs, internalErrors...),
	}
}
