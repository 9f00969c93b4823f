// Package mocks in-memory doubles for the order ports, used by service, API
// and command tests.
package mocks

import (
	"context"
	"sync"
	"time"

	"watchbox/domain/order"
)

// RecordingAppender remembers appended orders and hands out increasing row numbers.
type RecordingAppender struct {
	mu      sync.Mutex
	calls   int
	orders  []*order.Order
	nextRow int

	Err   error
	Delay time.Duration
	Panic bool
}

var _ order.RowAppender = (*RecordingAppender)(nil)

// NewRecordingAppender first row is 2, below the header row.
func NewRecordingAppender() *RecordingAppender {
	return &RecordingAppender{nextRow: 2}
}

func (a *RecordingAppender) AppendOrder(ctx context.Context, o *order.Order) (int, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()

	if a.Panic {
		panic("appender exploded")
	}
	if err := wait(ctx, a.Delay); err != nil {
		return 0, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return 0, a.Err
	}
	a.orders = append(a.orders, o)
	row := a.nextRow
	a.nextRow++
	return row, nil
}

// Calls counts AppendOrder invocations, failed ones included.
func (a *RecordingAppender) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// Orders successfully appended.
func (a *RecordingAppender) Orders() []*order.Order {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*order.Order(nil), a.orders...)
}

// RecordingNotifier remembers notified orders.
type RecordingNotifier struct {
	mu     sync.Mutex
	calls  int
	orders []*order.Order

	Err   error
	Delay time.Duration
	Panic bool
}

var _ order.Notifier = (*RecordingNotifier)(nil)

func (n *RecordingNotifier) NotifyOrder(ctx context.Context, o *order.Order) error {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()

	if n.Panic {
		panic("notifier exploded")
	}
	if err := wait(ctx, n.Delay); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.orders = append(n.orders, o)
	return nil
}

func (n *RecordingNotifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

func (n *RecordingNotifier) Orders() []*order.Order {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*order.Order(nil), n.orders...)
}

// Registry map-backed order.Registry with injectable failures.
type Registry struct {
	mu  sync.Mutex
	ids map[string]bool

	SeenErr     error
	RegisterErr error
	// RaceLost makes Register report that another request won.
	RaceLost bool
}

var _ order.Registry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{ids: make(map[string]bool)}
}

func (r *Registry) Seen(_ context.Context, id string) (bool, error) {
	if r.SeenErr != nil {
		return false, r.SeenErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[id], nil
}

func (r *Registry) Register(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.RegisterErr != nil {
		return false, r.RegisterErr
	}
	if r.RaceLost || r.ids[id] {
		return false, nil
	}
	r.ids[id] = true
	return true, nil
}

// Registered reports whether id was stored.
func (r *Registry) Registered(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[id]
}

// Len number of stored ids.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ids)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
