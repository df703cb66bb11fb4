package middleware

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gotd/td/telegram"
	"github.com/krau/SaveLink-Bot/client/middleware/recovery"
	"github.com/krau/SaveLink-Bot/client/middleware/retry"
	"github.com/krau/SaveLink-Bot/config"
)

// https://github.com/iyear/tdl/blob/master/core/tclient/tclient.go
func NewDefaultMiddlewares(ctx context.Context, timeout time.Duration) []telegram.Middleware {
	mws := []telegram.Middleware{
		recovery.New(ctx, func() backoff.BackOff { return newBackoff(timeout) }),
		retry.New(config.C().Telegram.RpcRetry),
	}
	return append(mws, NewFloodWaitMiddlewares(uint(max(config.C().Telegram.FloodRetry, 1)))...)
}

func newBackoff(timeout time.Duration) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.Multiplier = 1.1
	b.MaxElapsedTime = timeout
	b.MaxInterval = 10 * time.Second
	return b
}
