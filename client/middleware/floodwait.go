package middleware

import (
	"time"

	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/telegram"
	"golang.org/x/time/rate"
)

// NewFloodWaitMiddlewares sleeps through FLOOD_WAIT errors and keeps the request
// rate under the bot limits, so progress edits cannot trigger long waits.
func NewFloodWaitMiddlewares(maxRetries uint) []telegram.Middleware {
	waiter := floodwait.NewSimpleWaiter().WithMaxRetries(maxRetries).WithMaxWait(5 * time.Minute)
	ratelimiter := ratelimit.New(rate.Every(100*time.Millisecond), 5)
	return []telegram.Middleware{
		waiter,
		ratelimiter,
	}
}
