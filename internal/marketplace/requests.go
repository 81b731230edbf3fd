package marketplace

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/enhance"
	"github.com/kenechi-dev/gighall/internal/events"
	"github.com/kenechi-dev/gighall/internal/model"
	"github.com/kenechi-dev/gighall/internal/store"
)

// RequestLedger owns service-request records and their status machine. Legal
// transitions: open→in_progress (driven only by bid acceptance),
// in_progress→completed, open→cancelled, in_progress→cancelled.
type RequestLedger struct {
	requests store.RequestStore
	enhancer enhance.Enhancer
	events   events.Publisher
	locks    *keyedMutex
}

// NewLedgers builds the request and bid ledgers over shared stores. They
// share one lock table so a cancellation and a bid acceptance on the same
// request cannot interleave. The publisher may be nil.
func NewLedgers(rs store.RequestStore, bs store.BidStore, enh enhance.Enhancer, pub events.Publisher) (*RequestLedger, *BidLedger) {
	locks := newKeyedMutex()
	rl := &RequestLedger{requests: rs, enhancer: enh, events: pub, locks: locks}
	bl := &BidLedger{bids: bs, requests: rs, events: pub, locks: locks}
	return rl, bl
}

// RequestInput carries the client-supplied fields of a new service request.
type RequestInput struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	CategoryID     string   `json:"categoryId"`
	SkillsRequired []string `json:"skillsRequired"`
	BudgetMin      float64  `json:"budgetMin"`
	BudgetMax      float64  `json:"budgetMax"`
	DeadlineDays   int      `json:"deadlineDays"`
}

func (in *RequestInput) validate() error {
	fields := map[string]string{}
	if len(strings.TrimSpace(in.Title)) < 5 {
		fields["title"] = "must be at least 5 characters"
	}
	if len(strings.TrimSpace(in.Description)) < 20 {
		fields["description"] = "must be at least 20 characters"
	}
	if in.CategoryID == "" {
		fields["categoryId"] = "is required"
	}
	if len(in.SkillsRequired) == 0 {
		fields["skillsRequired"] = "must list at least one skill"
	}
	if in.BudgetMin <= 0 {
		fields["budgetMin"] = "must be positive"
	}
	if in.BudgetMax <= 0 {
		fields["budgetMax"] = "must be positive"
	} else if in.BudgetMin > in.BudgetMax {
		fields["budgetMax"] = "must be greater than or equal to budgetMin"
	}
	if in.DeadlineDays <= 0 {
		fields["deadlineDays"] = "must be positive"
	}
	if len(fields) > 0 {
		return apperr.Validation(fields)
	}
	return nil
}

// Create validates the input, stamps timestamps and the advisory expiry,
// runs the description through the enhancement collaborator and stores the
// request as open.
func (l *RequestLedger) Create(ctx context.Context, clientID string, in RequestInput) (*model.ServiceRequest, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	enhanced, err := l.enhancer.Enhance(ctx, in.Description, in.SkillsRequired)
	if err != nil {
		// The collaborator is best effort; a failed enhancement never blocks
		// posting the request.
		enhanced = in.Description
	}

	now := time.Now().UTC()
	r := &model.ServiceRequest{
		ID:                  uuid.New().String(),
		ClientID:            clientID,
		Title:               in.Title,
		Description:         in.Description,
		EnhancedDescription: enhanced,
		CategoryID:          in.CategoryID,
		SkillsRequired:      in.SkillsRequired,
		BudgetMin:           in.BudgetMin,
		BudgetMax:           in.BudgetMax,
		DeadlineDays:        in.DeadlineDays,
		Status:              model.RequestOpen,
		CreatedAt:           now,
		ExpiresAt:           now.Add(model.RequestTTL),
	}
	if err := l.requests.CreateRequest(ctx, r); err != nil {
		return nil, err
	}

	if l.events != nil {
		_ = l.events.PublishRequestCreated(ctx, events.RequestCreated{
			RequestID:  r.ID,
			ClientID:   r.ClientID,
			Title:      r.Title,
			BudgetMin:  r.BudgetMin,
			BudgetMax:  r.BudgetMax,
			OccurredAt: now,
		})
	}
	return r, nil
}

// List applies the visibility rule: clients see their own requests in every
// status, freelancers see only open requests. The caller has no say in the
// scoping.
func (l *RequestLedger) List(ctx context.Context, callerID, role string) ([]model.ServiceRequest, error) {
	if role == model.RoleClient {
		return l.requests.ListRequestsByClient(ctx, callerID)
	}
	return l.requests.ListOpenRequests(ctx)
}

// Get returns a single request without visibility scoping; callers that need
// scoping apply it themselves.
func (l *RequestLedger) Get(ctx context.Context, id string) (*model.ServiceRequest, error) {
	return l.requests.GetRequest(ctx, id)
}

// Cancel moves an open or in-progress request to cancelled. Only the owning
// client may cancel.
func (l *RequestLedger) Cancel(ctx context.Context, callerID, requestID string) (*model.ServiceRequest, error) {
	return l.ownerTransition(ctx, callerID, requestID, model.RequestCancelled)
}

// Complete moves an in-progress request to completed. Only the owning client
// may complete.
func (l *RequestLedger) Complete(ctx context.Context, callerID, requestID string) (*model.ServiceRequest, error) {
	return l.ownerTransition(ctx, callerID, requestID, model.RequestCompleted)
}

func (l *RequestLedger) ownerTransition(ctx context.Context, callerID, requestID, target string) (*model.ServiceRequest, error) {
	unlock := l.locks.lock(requestID)
	defer unlock()

	r, err := l.requests.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.ClientID != callerID {
		return nil, apperr.Forbiddenf("request %s is not owned by caller", requestID)
	}
	if !legalTransition(r.Status, target) {
		return nil, apperr.Conflictf("invalid transition from %s to %s", r.Status, target)
	}
	if err := l.requests.UpdateRequestStatus(ctx, requestID, target); err != nil {
		return nil, err
	}
	r.Status = target
	return r, nil
}

// legalTransition encodes the status machine edges. Everything not listed is
// rejected.
func legalTransition(from, to string) bool {
	switch from {
	case model.RequestOpen:
		return to == model.RequestInProgress || to == model.RequestCancelled
	case model.RequestInProgress:
		return to == model.RequestCompleted || to == model.RequestCancelled
	default:
		return false
	}
}
