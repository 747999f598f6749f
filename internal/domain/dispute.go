package domain

import "time"

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusResolved DisputeStatus = "resolved"
)

// Dispute records one participant contesting a wager's outcome. At most one
// dispute per wager may be open at a time.
type Dispute struct {
	ID         string
	WagerID    string
	RaisedBy   string
	Reason     string
	Status     DisputeStatus
	Resolution string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}
