// Package model holds the domain records shared by the stores, the ledgers
// and the HTTP layer. JSON tags follow the wire format the frontend already
// speaks (camelCase).
package model

import "time"

// User roles.
const (
	RoleClient     = "client"
	RoleFreelancer = "freelancer"
)

// ServiceRequest statuses.
const (
	RequestOpen       = "open"
	RequestInProgress = "in_progress"
	RequestCompleted  = "completed"
	RequestCancelled  = "cancelled"
)

// Bid statuses. Accepted and rejected are terminal.
const (
	BidPending  = "pending"
	BidAccepted = "accepted"
	BidRejected = "rejected"
)

// RequestTTL is how long a service request stays advertised before its
// ExpiresAt stamp passes. Expiry is advisory: it is stamped at creation and
// returned to callers, never enforced by a sweep.
const RequestTTL = 7 * 24 * time.Hour

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"userType"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ClientProfile struct {
	CompanyName string `json:"companyName,omitempty"`
	Description string `json:"description,omitempty"`
}

type FreelancerProfile struct {
	Headline    string   `json:"headline"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	Skills      []string `json:"skills"`
}

type ServiceRequest struct {
	ID                  string    `json:"id"`
	ClientID            string    `json:"clientId"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	EnhancedDescription string    `json:"enhancedDescription"`
	CategoryID          string    `json:"categoryId"`
	SkillsRequired      []string  `json:"skillsRequired"`
	BudgetMin           float64   `json:"budgetMin"`
	BudgetMax           float64   `json:"budgetMax"`
	DeadlineDays        int       `json:"deadlineDays"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	ExpiresAt           time.Time `json:"expiresAt"`
}

// Expired reports whether the advisory expiry stamp has passed. Callers may
// surface this; nothing in the ledgers acts on it.
func (r *ServiceRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

type Bid struct {
	ID               string    `json:"id"`
	RequestID        string    `json:"serviceRequestId"`
	FreelancerID     string    `json:"freelancerId"`
	Amount           float64   `json:"amount"`
	DeliveryTimeDays int       `json:"deliveryTimeDays"`
	Proposal         string    `json:"proposal"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"createdAt"`
	Read       bool      `json:"read"`
}
