package ai

import (
	"context"
	"errors"
	"time"
)

// Task names the kind of work a completion request performs. It is used in logs and metrics.
type Task string

const (
	TaskExtract   Task = "extract"
	TaskQuestions Task = "questions"
)

// Request is a single prompt sent to a completion service.
type Request struct {
	Task   Task
	System string
	Prompt string
}

// Completer is the black-box language model used by the interview.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var ErrUnavailable = errors.New("completion service is not configured")

// Unavailable is used when no provider is configured. Every call fails, so callers
// always go down their fallback path.
type Unavailable struct{}

func (Unavailable) Complete(context.Context, Request) (string, error) {
	return "", ErrUnavailable
}

type timeoutCompleter struct {
	next    Completer
	timeout time.Duration
}

// WithTimeout bounds every call of the completer. Non-positive timeouts leave it unchanged.
func WithTimeout(c Completer, timeout time.Duration) Completer {
	if timeout <= 0 {
		return c
	}
	return &timeoutCompleter{next: c, timeout: timeout}
}

func (t *timeoutCompleter) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Complete(ctx, req)
}

// Observer is notified after every completion call.
type Observer func(task Task, elapsed time.Duration, err error)

type observedCompleter struct {
	next    Completer
	observe Observer
	now     func() time.Time
}

// WithObserver reports the outcome and latency of every call.
func WithObserver(c Completer, observe Observer) Completer {
	if observe == nil {
		return c
	}
	return &observedCompleter{next: c, observe: observe, now: time.Now}
}

func (o *observedCompleter) Complete(ctx context.Context, req Request) (string, error) {
	started := o.now()
	out, err := o.next.Complete(ctx, req)
	o.observe(req.Task, o.now().Sub(started), err)
	return out, err
}
