package order

import (
	"math"
	"strconv"
	"strings"
)

// SubmitOrderRequest 下单请求的线上格式
type SubmitOrderRequest struct {
	FullName        string         `json:"fullName"`
	Phone           string         `json:"phone"`
	Wilaya          string         `json:"wilaya"`
	Baladiya        string         `json:"baladiya"`
	SelectedWatchID string         `json:"selectedWatchId"`
	BoxPrice        DeclaredAmount `json:"boxPrice"`
	DeliveryOption  string         `json:"deliveryOption"`
	DeliveryCost    DeclaredAmount `json:"deliveryCost"`
	Total           DeclaredAmount `json:"total"`
	Notes           string         `json:"notes,omitempty"`
	ClientRequestID string         `json:"clientRequestId,omitempty"`
}

// SubmitOrderResult outcome of an accepted or deduplicated submission.
type SubmitOrderResult struct {
	ClientRequestID string
	// Row spreadsheet row of the order; 0 when unknown or not written.
	Row       int
	Duplicate bool
	Dispatch  DispatchReport
}

// DispatchReport per-sink errors; logged and counted, never shown to the buyer.
type DispatchReport struct {
	SheetErr error
	MailErr  error
}

// DeclaredAmount 客户端声明的价格，只用于和价格表比对。
// Numbers, numeric strings and fractions decode; anything else decodes as 0 (not declared).
type DeclaredAmount int64

func (a *DeclaredAmount) UnmarshalJSON(b []byte) error {
	*a = 0
	s := strings.TrimSpace(string(b))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unquoted)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*a = DeclaredAmount(n)
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt64/2 {
		return nil
	}
	*a = DeclaredAmount(math.Round(f))
	return nil
}
