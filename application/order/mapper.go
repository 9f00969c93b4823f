package order

import "watchbox/domain/order"

func toDraft(req SubmitOrderRequest) order.Draft {
	return order.Draft{
		FullName:        req.FullName,
		Phone:           req.Phone,
		Wilaya:          req.Wilaya,
		Baladiya:        req.Baladiya,
		ProductID:       req.SelectedWatchID,
		Delivery:        order.DeliveryOption(req.DeliveryOption),
		Notes:           req.Notes,
		ClientRequestID: req.ClientRequestID,
	}
}

// FromDraft builds the wire request the storefront form sends, with server prices.
func FromDraft(d order.Draft) SubmitOrderRequest {
	d = d.Normalized()
	quote := order.QuoteFor(d.Delivery)
	return SubmitOrderRequest{
		FullName:        d.FullName,
		Phone:           d.Phone,
		Wilaya:          d.Wilaya,
		Baladiya:        d.Baladiya,
		SelectedWatchID: d.ProductID,
		BoxPrice:        DeclaredAmount(quote.BoxPrice.Amount()),
		DeliveryOption:  string(d.Delivery),
		DeliveryCost:    DeclaredAmount(quote.DeliveryCost.Amount()),
		Total:           DeclaredAmount(quote.Total.Amount()),
		Notes:           d.Notes,
		ClientRequestID: d.ClientRequestID,
	}
}

func declaresPrices(req SubmitOrderRequest) bool {
	return req.BoxPrice != 0 || req.DeliveryCost != 0 || req.Total != 0
}
