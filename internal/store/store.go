// Package store defines the repository boundary the ledgers and the message
// router depend on. Two implementations exist: Memory (the default backing)
// and Postgres (pgx). Implementations report missing entities with
// apperr.ErrNotFound and duplicate keys with apperr.ErrConflict so callers
// can branch with errors.Is.
package store

import (
	"context"

	"github.com/kenechi-dev/gighall/internal/model"
)

// UserStore holds identity records and their optional profiles.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	SaveClientProfile(ctx context.Context, userID string, p *model.ClientProfile) error
	SaveFreelancerProfile(ctx context.Context, userID string, p *model.FreelancerProfile) error
}

// RequestStore owns service-request records. Status legality is the request
// ledger's concern; the store only persists.
type RequestStore interface {
	CreateRequest(ctx context.Context, r *model.ServiceRequest) error
	GetRequest(ctx context.Context, id string) (*model.ServiceRequest, error)
	UpdateRequestStatus(ctx context.Context, id, status string) error
	ListRequestsByClient(ctx context.Context, clientID string) ([]model.ServiceRequest, error)
	ListOpenRequests(ctx context.Context) ([]model.ServiceRequest, error)
}

// BidStore owns bids. AcceptBid is the one composite operation: it must
// apply "accept one, reject the pending rest, move the request to
// in_progress" so that no reader of the store observes a partial state.
type BidStore interface {
	CreateBid(ctx context.Context, b *model.Bid) error
	GetBid(ctx context.Context, id string) (*model.Bid, error)
	ListBidsByRequest(ctx context.Context, requestID string) ([]model.Bid, error)
	ListBidsByFreelancer(ctx context.Context, freelancerID string) ([]model.Bid, error)
	AcceptBid(ctx context.Context, requestID, bidID string) error
}

// MessageStore persists the message log. Conversations are ordered by
// CreatedAt within the unordered (a, b) pair.
type MessageStore interface {
	AppendMessage(ctx context.Context, m *model.Message) error
	Conversation(ctx context.Context, a, b string) ([]model.Message, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID string) error
	HasConversation(ctx context.Context, a, b string) (bool, error)
}
