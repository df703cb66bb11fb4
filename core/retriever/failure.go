package retriever

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

type Reason int

const (
	ReasonUnknown Reason = iota
	ReasonUnsupported
	ReasonHTTPStatus
	ReasonEmptyBody
	ReasonHTMLPage
	ReasonNoMatch
	ReasonTimeout
	ReasonTooLarge
	ReasonNetwork
	ReasonCancelled
)

var reasonNames = map[Reason]string{
	ReasonUnknown:     "unknown",
	ReasonUnsupported: "unsupported",
	ReasonHTTPStatus:  "http_status",
	ReasonEmptyBody:   "empty_body",
	ReasonHTMLPage:    "html_page",
	ReasonNoMatch:     "no_match",
	ReasonTimeout:     "timeout",
	ReasonTooLarge:    "too_large",
	ReasonNetwork:     "network",
	ReasonCancelled:   "cancelled",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return reasonNames[ReasonUnknown]
}

// ErrNotApplicable makes the chain skip a strategy without recording a failure.
var ErrNotApplicable = errors.New("strategy not applicable")

// Failure is the only error type Retrieve returns.
type Failure struct {
	Reason   Reason
	Strategy string
	// set for ReasonHTTPStatus
	Status int
	// set for ReasonTooLarge
	Limit int64
	Err   error
}

func (f *Failure) Error() string {
	var sb strings.Builder
	if f.Strategy != "" {
		sb.WriteString(f.Strategy)
		sb.WriteString(": ")
	}
	sb.WriteString(f.Reason.String())
	if f.Reason == ReasonHTTPStatus && f.Status != 0 {
		fmt.Fprintf(&sb, " %d", f.Status)
	}
	if f.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(f.Err.Error())
	}
	return sb.String()
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Permanent failures stop the fallback chain.
func (f *Failure) Permanent() bool {
	switch f.Reason {
	case ReasonTooLarge, ReasonCancelled, ReasonUnsupported:
		return true
	}
	return false
}

func newFailure(reason Reason, strategy string, err error) *Failure {
	return &Failure{Reason: reason, Strategy: strategy, Err: err}
}

// AsFailure unwraps err into a *Failure, wrapping foreign errors as network failures.
func AsFailure(err error) *Failure {
	if err == nil {
		return nil
	}
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	return transportFailure("", err)
}

func transportFailure(strategy string, err error) *Failure {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return newFailure(ReasonCancelled, strategy, err)
	case errors.Is(err, context.DeadlineExceeded):
		return newFailure(ReasonTimeout, strategy, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return newFailure(ReasonTimeout, strategy, err)
	}
	return newFailure(ReasonNetwork, strategy, err)
}
