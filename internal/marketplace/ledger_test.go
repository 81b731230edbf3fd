package marketplace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/enhance"
	"github.com/kenechi-dev/gighall/internal/model"
	"github.com/kenechi-dev/gighall/internal/store"
)

func newTestLedgers(t *testing.T) (*RequestLedger, *BidLedger) {
	t.Helper()
	mem := store.NewMemory()
	return NewLedgers(mem, mem, enhance.Static{}, nil)
}

func validInput() RequestInput {
	return RequestInput{
		Title:          "Build a landing page",
		Description:    "A responsive landing page with a contact form and analytics.",
		CategoryID:     "web-dev",
		SkillsRequired: []string{"html", "css"},
		BudgetMin:      100,
		BudgetMax:      500,
		DeadlineDays:   14,
	}
}

func mustCreateRequest(t *testing.T, rl *RequestLedger, clientID string) *model.ServiceRequest {
	t.Helper()
	r, err := rl.Create(context.Background(), clientID, validInput())
	if err != nil {
		t.Fatalf("create request failed: %v", err)
	}
	return r
}

func mustCreateBid(t *testing.T, bl *BidLedger, freelancerID, requestID string, amount float64) *model.Bid {
	t.Helper()
	b, err := bl.Create(context.Background(), freelancerID, BidInput{
		RequestID:        requestID,
		Amount:           amount,
		DeliveryTimeDays: 5,
		Proposal:         "I can do this",
	})
	if err != nil {
		t.Fatalf("create bid failed: %v", err)
	}
	return b
}

func TestCreateRequestReportsEveryViolation(t *testing.T) {
	rl, _ := newTestLedgers(t)

	_, err := rl.Create(context.Background(), "c1", RequestInput{
		Title:        "x",
		Description:  "too short",
		BudgetMin:    500,
		BudgetMax:    100,
		DeadlineDays: -1,
	})
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"title", "description", "categoryId", "skillsRequired", "budgetMax", "deadlineDays"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Fatalf("missing violation for %q in %v", field, ve.Fields)
		}
	}
}

func TestCreateRequestStampsDefaults(t *testing.T) {
	rl, _ := newTestLedgers(t)
	r := mustCreateRequest(t, rl, "c1")

	if r.Status != model.RequestOpen {
		t.Fatalf("status = %q, want open", r.Status)
	}
	if got := r.ExpiresAt.Sub(r.CreatedAt); got != model.RequestTTL {
		t.Fatalf("expiry window = %v, want %v", got, model.RequestTTL)
	}
	if r.EnhancedDescription == "" || r.EnhancedDescription == r.Description {
		t.Fatalf("description was not enhanced: %q", r.EnhancedDescription)
	}
}

func TestListRequestsVisibility(t *testing.T) {
	rl, bl := newTestLedgers(t)
	ctx := context.Background()

	open := mustCreateRequest(t, rl, "c1")
	taken := mustCreateRequest(t, rl, "c1")
	mustCreateRequest(t, rl, "c2")

	// Move one of c1's requests out of open via an accepted bid.
	b := mustCreateBid(t, bl, "f1", taken.ID, 300)
	if _, err := bl.Accept(ctx, "c1", b.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	// The bidding freelancer still only sees open requests, even for the
	// client they now work with.
	got, err := rl.List(ctx, "f1", model.RoleFreelancer)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, r := range got {
		if r.Status != model.RequestOpen {
			t.Fatalf("freelancer saw non-open request %s (%s)", r.ID, r.Status)
		}
	}
	if len(got) != 2 {
		t.Fatalf("freelancer sees %d requests, want 2 open", len(got))
	}

	// The client sees their own requests in every status, nobody else's.
	got, err = rl.List(ctx, "c1", model.RoleClient)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("client sees %d requests, want 2", len(got))
	}
	for _, r := range got {
		if r.ClientID != "c1" {
			t.Fatalf("client saw foreign request %s", r.ID)
		}
	}
	_ = open
}

func TestCancelAndCompleteTransitions(t *testing.T) {
	rl, bl := newTestLedgers(t)
	ctx := context.Background()

	r := mustCreateRequest(t, rl, "c1")

	if _, err := rl.Complete(ctx, "c1", r.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("completing an open request must conflict, got %v", err)
	}
	if _, err := rl.Cancel(ctx, "other", r.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("foreign cancel must be forbidden, got %v", err)
	}

	b := mustCreateBid(t, bl, "f1", r.ID, 200)
	if _, err := bl.Accept(ctx, "c1", b.ID); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	done, err := rl.Complete(ctx, "c1", r.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if done.Status != model.RequestCompleted {
		t.Fatalf("status = %q, want completed", done.Status)
	}
	if _, err := rl.Cancel(ctx, "c1", r.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("cancelling a completed request must conflict, got %v", err)
	}
}

func TestCreateBidOnUnknownRequest(t *testing.T) {
	_, bl := newTestLedgers(t)

	_, err := bl.Create(context.Background(), "f1", BidInput{
		RequestID: "nope", Amount: 100, DeliveryTimeDays: 3,
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestAcceptBidEndToEnd(t *testing.T) {
	rl, bl := newTestLedgers(t)
	ctx := context.Background()

	r := mustCreateRequest(t, rl, "c1")
	b1 := mustCreateBid(t, bl, "f1", r.ID, 300)
	b2 := mustCreateBid(t, bl, "f2", r.ID, 400)

	// Wrong client cannot accept.
	if _, err := bl.Accept(ctx, "c2", b1.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("foreign accept must be forbidden, got %v", err)
	}

	accepted, err := bl.Accept(ctx, "c1", b1.ID)
	if err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if accepted.Status != model.BidAccepted {
		t.Fatalf("bid status = %q, want accepted", accepted.Status)
	}

	bids, err := bl.List(ctx, "c1", model.RoleClient, r.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	for _, b := range bids {
		switch b.ID {
		case b1.ID:
			if b.Status != model.BidAccepted {
				t.Fatalf("winning bid status = %q", b.Status)
			}
		case b2.ID:
			if b.Status != model.BidRejected {
				t.Fatalf("sibling bid status = %q, want rejected", b.Status)
			}
		}
	}

	got, err := rl.Get(ctx, r.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != model.RequestInProgress {
		t.Fatalf("request status = %q, want in_progress", got.Status)
	}

	// A late bidder is turned away.
	_, err = bl.Create(ctx, "f3", BidInput{RequestID: r.ID, Amount: 250, DeliveryTimeDays: 2})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("bidding on a non-open request must conflict, got %v", err)
	}

	// Double accept conflicts: the request is no longer open.
	if _, err := bl.Accept(ctx, "c1", b2.ID); !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("second accept must conflict, got %v", err)
	}
}

func TestConcurrentAcceptExactlyOneWins(t *testing.T) {
	rl, bl := newTestLedgers(t)
	ctx := context.Background()

	r := mustCreateRequest(t, rl, "c1")

	const n = 8
	bidIDs := make([]string, n)
	for i := 0; i < n; i++ {
		b := mustCreateBid(t, bl, "f"+string(rune('a'+i)), r.ID, float64(100+i))
		bidIDs[i] = b.ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = bl.Accept(ctx, "c1", bidIDs[i])
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error class: %v", err)
		}
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("wins=%d conflicts=%d, want 1 and %d", wins, conflicts, n-1)
	}

	bids, err := bl.List(ctx, "c1", model.RoleClient, r.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var accepted, rejected int
	for _, b := range bids {
		switch b.Status {
		case model.BidAccepted:
			accepted++
		case model.BidRejected:
			rejected++
		}
	}
	if accepted != 1 || rejected != n-1 {
		t.Fatalf("accepted=%d rejected=%d, want 1 and %d", accepted, rejected, n-1)
	}
}

func TestBogusRequestIDsNeverClaimLocks(t *testing.T) {
	_, bl := newTestLedgers(t)
	ctx := context.Background()

	_, err := bl.Create(ctx, "f1", BidInput{RequestID: "ghost-1", Amount: 100, DeliveryTimeDays: 3})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := bl.List(ctx, "f1", model.RoleFreelancer, "ghost-2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	bl.locks.mu.Lock()
	n := len(bl.locks.locks)
	bl.locks.mu.Unlock()
	if n != 0 {
		t.Fatalf("lock table holds %d entries for ids that never existed", n)
	}
}

func TestListBidsScoping(t *testing.T) {
	rl, bl := newTestLedgers(t)
	ctx := context.Background()

	r1 := mustCreateRequest(t, rl, "c1")
	r2 := mustCreateRequest(t, rl, "c2")
	mustCreateBid(t, bl, "f1", r1.ID, 100)
	mustCreateBid(t, bl, "f1", r2.ID, 150)
	mustCreateBid(t, bl, "f2", r1.ID, 200)

	// Freelancer sees only their own bids.
	got, err := bl.List(ctx, "f1", model.RoleFreelancer, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("freelancer sees %d bids, want 2", len(got))
	}

	// Client sees all bids across their own requests.
	got, err = bl.List(ctx, "c1", model.RoleClient, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("client sees %d bids, want 2", len(got))
	}

	// A client who owns neither the request nor any bid on it is refused.
	if _, err := bl.List(ctx, "c2", model.RoleClient, r1.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	// So is a freelancer with no bids on the request.
	if _, err := bl.List(ctx, "f9", model.RoleFreelancer, r1.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	// A bidding freelancer sees only their own bid on the request.
	got, err = bl.List(ctx, "f2", model.RoleFreelancer, r1.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 1 || got[0].FreelancerID != "f2" {
		t.Fatalf("unexpected scoped bids: %#v", got)
	}
}
