package marketplace

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/events"
	"github.com/kenechi-dev/gighall/internal/model"
	"github.com/kenechi-dev/gighall/internal/store"
)

// BidLedger owns bids and the accept-one-reject-rest transaction. Every
// write and every read that could observe a half-applied accept goes through
// the per-request lock it shares with the request ledger.
type BidLedger struct {
	bids     store.BidStore
	requests store.RequestStore
	events   events.Publisher
	locks    *keyedMutex
}

// BidInput carries the freelancer-supplied fields of a new bid.
type BidInput struct {
	RequestID        string  `json:"serviceRequestId"`
	Amount           float64 `json:"amount"`
	DeliveryTimeDays int     `json:"deliveryTimeDays"`
	Proposal         string  `json:"proposal"`
}

func (in *BidInput) validate() error {
	fields := map[string]string{}
	if in.RequestID == "" {
		fields["serviceRequestId"] = "is required"
	}
	if in.Amount <= 0 {
		fields["amount"] = "must be positive"
	}
	if in.DeliveryTimeDays <= 0 {
		fields["deliveryTimeDays"] = "must be positive"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// Create records a pending bid. The parent request must exist and still be
// open; the status is re-read under the request lock so a bid can never slip
// in behind a concurrent acceptance. Existence is checked before locking so
// bogus ids never claim a lock table entry.
func (l *BidLedger) Create(ctx context.Context, freelancerID string, in BidInput) (*model.Bid, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if _, err := l.requests.GetRequest(ctx, in.RequestID); err != nil {
		return nil, err
	}

	unlock := l.locks.lock(in.RequestID)
	defer unlock()

	r, err := l.requests.GetRequest(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if r.Status != model.RequestOpen {
		return nil, apperr.Conflictf("request %s is no longer accepting bids", in.RequestID)
	}

	b := &model.Bid{
		ID:               uuid.New().String(),
		RequestID:        in.RequestID,
		FreelancerID:     freelancerID,
		Amount:           in.Amount,
		DeliveryTimeDays: in.DeliveryTimeDays,
		Proposal:         in.Proposal,
		Status:           model.BidPending,
		CreatedAt:        time.Now().UTC(),
	}
	if err := l.bids.CreateBid(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// List scopes bids to the caller. A freelancer sees only their own bids; a
// client sees only bids on requests they own. When requestID narrows the
// listing, a caller who is neither the owning client nor a bidding
// freelancer is refused.
func (l *BidLedger) List(ctx context.Context, callerID, role, requestID string) ([]model.Bid, error) {
	if requestID != "" {
		return l.listForRequest(ctx, callerID, role, requestID)
	}
	if role == model.RoleFreelancer {
		return l.bids.ListBidsByFreelancer(ctx, callerID)
	}
	requests, err := l.requests.ListRequestsByClient(ctx, callerID)
	if err != nil {
		return nil, err
	}
	var out []model.Bid
	for _, r := range requests {
		bids, err := l.bids.ListBidsByRequest(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, bids...)
	}
	return out, nil
}

func (l *BidLedger) listForRequest(ctx context.Context, callerID, role, requestID string) ([]model.Bid, error) {
	if _, err := l.requests.GetRequest(ctx, requestID); err != nil {
		return nil, err
	}

	unlock := l.locks.lock(requestID)
	defer unlock()

	r, err := l.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	bids, err := l.bids.ListBidsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if role == model.RoleClient {
		if r.ClientID != callerID {
			return nil, apperr.Forbiddenf("request %s is not owned by caller", requestID)
		}
		return bids, nil
	}
	// Freelancers see only their own bids on the request, and only if they
	// actually are a party to it.
	var own []model.Bid
	for _, b := range bids {
		if b.FreelancerID == callerID {
			own = append(own, b)
		}
	}
	if len(own) == 0 {
		return nil, apperr.Forbiddenf("caller has no bids on request %s", requestID)
	}
	return own, nil
}

// Accept is the critical operation. Preconditions: the caller owns the bid's
// parent request, the request is open and the bid is pending. The effect —
// target accepted, pending siblings rejected, request moved to in_progress —
// is applied atomically by the store; the per-request lock guarantees exactly
// one of N concurrent callers passes the precondition check.
func (l *BidLedger) Accept(ctx context.Context, callerID, bidID string) (*model.Bid, error) {
	b, err := l.bids.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.lock(b.RequestID)
	defer unlock()

	// Re-read both records now that the lock is held; the pre-lock snapshot
	// may be stale.
	b, err = l.bids.GetBid(ctx, bidID)
	if err != nil {
		return nil, err
	}
	r, err := l.requests.GetRequest(ctx, b.RequestID)
	if err != nil {
		return nil, err
	}
	if r.ClientID != callerID {
		return nil, apperr.Forbiddenf("request %s is not owned by caller", r.ID)
	}
	if r.Status != model.RequestOpen {
		return nil, apperr.Conflictf("request %s is no longer open", r.ID)
	}
	if b.Status != model.BidPending {
		return nil, apperr.Conflictf("bid %s is not pending", b.ID)
	}
	if !legalTransition(r.Status, model.RequestInProgress) {
		return nil, apperr.Conflictf("invalid transition from %s to %s", r.Status, model.RequestInProgress)
	}

	if err := l.bids.AcceptBid(ctx, r.ID, b.ID); err != nil {
		return nil, err
	}
	b.Status = model.BidAccepted

	if l.events != nil {
		_ = l.events.PublishBidAccepted(ctx, events.BidAccepted{
			RequestID:    r.ID,
			BidID:        b.ID,
			ClientID:     r.ClientID,
			FreelancerID: b.FreelancerID,
			Amount:       b.Amount,
			OccurredAt:   time.Now().UTC(),
		})
	}
	return b, nil
}
