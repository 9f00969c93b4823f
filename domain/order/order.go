package order

import (
	"time"

	"watchbox/domain/shared"
)

// Order a validated, priced submission. It is never stored locally: the
// spreadsheet row and the notification email are its only durable traces.
type Order struct {
	requestID  string
	fullName   string
	phone      string
	wilaya     string
	baladiya   string
	product    Product
	delivery   DeliveryOption
	quote      Quote
	notes      string
	receivedAt time.Time
}

// New validates the draft and prices it from the server price table.
// The draft must already carry its ClientRequestID.
func New(d Draft, receivedAt time.Time) (*Order, error) {
	d = d.Normalized()
	if err := Validate(d); err != nil {
		return nil, err
	}
	product, _ := FindProduct(d.ProductID)

	return &Order{
		requestID:  d.ClientRequestID,
		fullName:   d.FullName,
		phone:      d.Phone,
		wilaya:     d.Wilaya,
		baladiya:   d.Baladiya,
		product:    product,
		delivery:   d.Delivery,
		quote:      QuoteFor(d.Delivery),
		notes:      d.Notes,
		receivedAt: receivedAt.UTC(),
	}, nil
}

// ============================================================================
// Getters
// ============================================================================

func (o *Order) RequestID() string          { return o.requestID }
func (o *Order) FullName() string           { return o.fullName }
func (o *Order) Phone() string              { return o.phone }
func (o *Order) Wilaya() string             { return o.wilaya }
func (o *Order) Baladiya() string           { return o.baladiya }
func (o *Order) Product() Product           { return o.product }
func (o *Order) Delivery() DeliveryOption   { return o.delivery }
func (o *Order) BoxPrice() shared.Money     { return o.quote.BoxPrice }
func (o *Order) DeliveryCost() shared.Money { return o.quote.DeliveryCost }
func (o *Order) Total() shared.Money        { return o.quote.Total }
func (o *Order) Notes() string              { return o.notes }
func (o *Order) ReceivedAt() time.Time      { return o.receivedAt }

// ShortRef the last six characters of the request id, used in mail subjects.
func (o *Order) ShortRef() string {
	if len(o.requestID) <= 6 {
		return o.requestID
	}
	return o.requestID[len(o.requestID)-6:]
}
