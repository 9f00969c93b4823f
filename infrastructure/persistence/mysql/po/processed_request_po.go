package po

import "time"

// ProcessedRequestPO one accepted client request id.
// Only the id and its retention window are stored, never order data.
type ProcessedRequestPO struct {
	RequestID    string    `gorm:"primaryKey;size:128"`
	RegisteredAt time.Time `gorm:"not null"`
	ExpiresAt    time.Time `gorm:"not null;index"`
}

// TableName Specify table name
func (ProcessedRequestPO) TableName() string {
	return "processed_requests"
}

// NewProcessedRequest stamps a request id with its retention window.
func NewProcessedRequest(requestID string, now time.Time, retention time.Duration) *ProcessedRequestPO {
	now = now.UTC()
	return &ProcessedRequestPO{
		RequestID:    requestID,
		RegisteredAt: now,
		ExpiresAt:    now.Add(retention),
	}
}

// Expired reports whether the entry no longer deduplicates at t.
func (p *ProcessedRequestPO) Expired(t time.Time) bool {
	return !t.Before(p.ExpiresAt)
}
