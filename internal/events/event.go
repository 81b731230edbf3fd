// Package events publishes domain events to RabbitMQ. Publishing is best
// effort: failures are logged and returned, never allowed to fail the request
// that produced the event.
package events

import "time"

// RequestCreated is emitted after a service request is stored.
type RequestCreated struct {
	RequestID  string    `json:"request_id"`
	ClientID   string    `json:"client_id"`
	Title      string    `json:"title"`
	BudgetMin  float64   `json:"budget_min"`
	BudgetMax  float64   `json:"budget_max"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BidAccepted is emitted after the accept transaction commits.
type BidAccepted struct {
	RequestID    string    `json:"request_id"`
	BidID        string    `json:"bid_id"`
	ClientID     string    `json:"client_id"`
	FreelancerID string    `json:"freelancer_id"`
	Amount       float64   `json:"amount"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// Queue names. Durable queues, declared on every publish.
const (
	QueueRequestCreated = "request.created"
	QueueBidAccepted    = "bid.accepted"
)
