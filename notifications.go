package auth

import (
	"context"
	"sync"
	"time"
)

// NotificationKind selects the message template a sink should render.
type NotificationKind string

const (
	NotificationVerification NotificationKind = "verification"
	NotificationReset        NotificationKind = "reset"
	NotificationTwoFactor    NotificationKind = "two-factor"
)

// Recipient identifies who a notification goes to.
type Recipient struct {
	Name  string
	Email string
}

// NotificationParams carries the token material for the message. Code is
// always the raw token value; URL, when set, overrides the sink's own link
// construction.
type NotificationParams struct {
	URL  string
	Code string
}

// NotificationSink delivers a notification. Implementations decide the
// channel and the rendering.
type NotificationSink interface {
	Send(ctx context.Context, kind NotificationKind, to Recipient, params NotificationParams) error
}

// NotificationSinkFunc adapts a function to the NotificationSink interface.
type NotificationSinkFunc func(ctx context.Context, kind NotificationKind, to Recipient, params NotificationParams) error

func (f NotificationSinkFunc) Send(ctx context.Context, kind NotificationKind, to Recipient, params NotificationParams) error {
	return f(ctx, kind, to, params)
}

type noopNotificationSink struct{}

func (noopNotificationSink) Send(context.Context, NotificationKind, Recipient, NotificationParams) error {
	return nil
}

func normalizeNotificationSink(sink NotificationSink) NotificationSink {
	if sink == nil {
		return noopNotificationSink{}
	}
	return sink
}

type queuedNotification struct {
	kind   NotificationKind
	to     Recipient
	params NotificationParams
}

var _ NotificationSink = (*Dispatcher)(nil)

// Dispatcher decouples sending from the signin path: Send enqueues and
// returns immediately while a worker drains the queue. Delivery failures
// are logged, never surfaced to the flows.
type Dispatcher struct {
	sink    NotificationSink
	queue   chan queuedNotification
	done    chan struct{}
	logger  Logger
	timeout time.Duration
	once    sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the delivery worker over the given sink.
func NewDispatcher(sink NotificationSink) *Dispatcher {
	d := &Dispatcher{
		sink:    normalizeNotificationSink(sink),
		queue:   make(chan queuedNotification, 64),
		done:    make(chan struct{}),
		logger:  defLogger{},
		timeout: 10 * time.Second,
	}
	go d.run()
	return d
}

// WithLogger sets the logger and returns the dispatcher for chaining.
func (d *Dispatcher) WithLogger(logger Logger) *Dispatcher {
	if logger != nil {
		d.logger = logger
	}
	return d
}

// Send enqueues a notification without blocking. When the queue is full or
// the dispatcher is closed the notification is dropped and logged; callers
// can always re-trigger a token email by retrying the flow.
func (d *Dispatcher) Send(ctx context.Context, kind NotificationKind, to Recipient, params NotificationParams) error {
	// The read lock is held across the enqueue so Close cannot close the
	// queue between the flag check and the send.
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, dropping %s notification for %s", kind, to.Email)
		return nil
	}

	select {
	case d.queue <- queuedNotification{kind: kind, to: to, params: params}:
	default:
		d.logger.Warn("notification queue full, dropping %s notification for %s", kind, to.Email)
	}
	return nil
}

// Close stops accepting notifications and waits for the queue to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()

		<-d.done
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for item := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.sink.Send(ctx, item.kind, item.to, item.params); err != nil {
			d.logger.Error("notification delivery failed for %s: %v", item.to.Email, err)
		}
		cancel()
	}
}
