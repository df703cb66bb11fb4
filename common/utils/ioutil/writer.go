package ioutil

import (
	"context"
	"errors"
	"io"

	"golang.org/x/time/rate"
)

type ProgressWriter struct {
	wr      io.Writer
	onWrite func(n int)
}

func (p *ProgressWriter) Write(buf []byte) (n int, err error) {
	n, err = p.wr.Write(buf)
	if n > 0 {
		p.onWrite(n)
	}
	return
}

func NewProgressWriter(
	wr io.Writer,
	onWrite func(n int),
) *ProgressWriter {
	return &ProgressWriter{
		wr:      wr,
		onWrite: onWrite,
	}
}

var ErrLimitExceeded = errors.New("write limit exceeded")

// LimitWriter fails with ErrLimitExceeded once more than max bytes would be written.
type LimitWriter struct {
	wr      io.Writer
	max     int64
	written int64
}

func NewLimitWriter(wr io.Writer, max int64) *LimitWriter {
	return &LimitWriter{wr: wr, max: max}
}

func (l *LimitWriter) Write(buf []byte) (int, error) {
	if l.max > 0 && l.written+int64(len(buf)) > l.max {
		return 0, ErrLimitExceeded
	}
	n, err := l.wr.Write(buf)
	l.written += int64(n)
	return n, err
}

func (l *LimitWriter) Written() int64 {
	return l.written
}

// RateWriter throttles writes to the limiter's rate.
type RateWriter struct {
	ctx     context.Context
	wr      io.Writer
	limiter *rate.Limiter
}

// NewRateWriter returns wr unchanged when bytesPerSec is not positive.
func NewRateWriter(ctx context.Context, wr io.Writer, bytesPerSec int64) io.Writer {
	if bytesPerSec <= 0 {
		return wr
	}
	return &RateWriter{
		ctx:     ctx,
		wr:      wr,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec)),
	}
}

func (r *RateWriter) Write(buf []byte) (int, error) {
	written := 0
	burst := r.limiter.Burst()
	for len(buf) > 0 {
		n := min(len(buf), burst)
		if err := r.limiter.WaitN(r.ctx, n); err != nil {
			return written, err
		}
		m, err := r.wr.Write(buf[:n])
		written += m
		if err != nil {
			return written, err
		}
		buf = buf[n:]
	}
	return written, nil
}
