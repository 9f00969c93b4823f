package order

import "watchbox/domain/shared"

// DeliveryOption how the box reaches the buyer
type DeliveryOption string

const (
	DeliveryDesk DeliveryOption = "desk" // pickup at the carrier's stop desk
	DeliveryHome DeliveryOption = "home"
)

const (
	BoxPrice         int64 = 2500
	DeskDeliveryCost int64 = 500
	HomeDeliveryCost int64 = 800
)

// Valid reports whether the option is one of the known delivery modes.
func (d DeliveryOption) Valid() bool {
	return d == DeliveryDesk || d == DeliveryHome
}

// Cost returns the fixed delivery fee; zero for an unknown option.
func (d DeliveryOption) Cost() shared.Money {
	switch d {
	case DeliveryDesk:
		return shared.DZD(DeskDeliveryCost)
	case DeliveryHome:
		return shared.DZD(HomeDeliveryCost)
	default:
		return shared.DZD(0)
	}
}

// Quote is the server-side price breakdown of one box.
type Quote struct {
	BoxPrice     shared.Money
	DeliveryCost shared.Money
	Total        shared.Money
}

// QuoteFor prices a box for the delivery option. The product never affects the price.
func QuoteFor(d DeliveryOption) Quote {
	box := shared.DZD(BoxPrice)
	cost := d.Cost()
	total, _ := box.Add(cost)
	return Quote{BoxPrice: box, DeliveryCost: cost, Total: total}
}

// Matches reports whether caller-declared amounts agree with the quote.
func (q Quote) Matches(boxPrice, deliveryCost, total int64) bool {
	return q.BoxPrice.Amount() == boxPrice &&
		q.DeliveryCost.Amount() == deliveryCost &&
		q.Total.Amount() == total
}
