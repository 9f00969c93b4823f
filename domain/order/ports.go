package order

import "context"

// Registry remembers which client request ids have already been accepted.
// Implementations must make Register atomic: of two concurrent calls with the
// same id exactly one observes first == true.
type Registry interface {
	Seen(ctx context.Context, requestID string) (bool, error)
	Register(ctx context.Context, requestID string) (first bool, err error)
}

// RowAppender records an order as one spreadsheet row and returns the
// 1-based row number, or 0 when the backend did not report it.
type RowAppender interface {
	AppendOrder(ctx context.Context, o *Order) (int, error)
}

// Notifier tells the shop owner about a new order.
type Notifier interface {
	NotifyOrder(ctx context.Context, o *Order) error
}
