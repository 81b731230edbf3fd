package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/model"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	u := &model.User{ID: "u1", Email: "a@example.com", Role: model.RoleClient}
	if err := s.CreateUser(ctx, u); err != nil {
		t.Fatalf("unexpected error creating user: %v", err)
	}
	dup := &model.User{ID: "u2", Email: "A@Example.com", Role: model.RoleFreelancer}
	err := s.CreateUser(ctx, dup)
	if !errors.Is(err, apperr.ErrConflict) {
		t.Fatalf("expected conflict for duplicate email, got %v", err)
	}
	if _, err := s.GetUser(ctx, "u2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("duplicate user must not be stored, got %v", err)
	}
}

func TestGetUserByEmailCaseInsensitive(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.CreateUser(ctx, &model.User{ID: "u1", Email: "Mixed@Case.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := s.GetUserByEmail(ctx, "mixed@case.com")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if u.ID != "u1" {
		t.Fatalf("unexpected user: %#v", u)
	}
}

func TestRequestCopySemantics(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	r := &model.ServiceRequest{ID: "r1", ClientID: "c1", SkillsRequired: []string{"go"}, Status: model.RequestOpen}
	if err := s.CreateRequest(ctx, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r.SkillsRequired[0] = "mutated"

	got, err := s.GetRequest(ctx, "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SkillsRequired[0] != "go" {
		t.Fatal("stored request must not alias caller-owned slices")
	}
}

func TestAcceptBidAppliesWholeTransaction(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.CreateRequest(ctx, &model.ServiceRequest{ID: "r1", ClientID: "c1", Status: model.RequestOpen}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, id := range []string{"b1", "b2", "b3"} {
		if err := s.CreateBid(ctx, &model.Bid{ID: id, RequestID: "r1", Status: model.BidPending}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if err := s.AcceptBid(ctx, "r1", "b2"); err != nil {
		t.Fatalf("accept failed: %v", err)
	}

	r, _ := s.GetRequest(ctx, "r1")
	if r.Status != model.RequestInProgress {
		t.Fatalf("request status = %q, want in_progress", r.Status)
	}
	var accepted, rejected int
	bids, _ := s.ListBidsByRequest(ctx, "r1")
	for _, b := range bids {
		switch b.Status {
		case model.BidAccepted:
			accepted++
			if b.ID != "b2" {
				t.Fatalf("wrong bid accepted: %s", b.ID)
			}
		case model.BidRejected:
			rejected++
		default:
			t.Fatalf("bid %s left in status %q", b.ID, b.Status)
		}
	}
	if accepted != 1 || rejected != 2 {
		t.Fatalf("accepted=%d rejected=%d, want 1/2", accepted, rejected)
	}
}

func TestAcceptBidUnknownBid(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.CreateRequest(ctx, &model.ServiceRequest{ID: "r1", Status: model.RequestOpen}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AcceptBid(ctx, "r1", "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConversationOrderingAndReadMarking(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()
	base := time.Now().UTC()

	msgs := []model.Message{
		{ID: "m1", SenderID: "a", ReceiverID: "b", Content: "first", CreatedAt: base},
		{ID: "m2", SenderID: "b", ReceiverID: "a", Content: "second", CreatedAt: base.Add(time.Second)},
		{ID: "m3", SenderID: "a", ReceiverID: "c", Content: "other pair", CreatedAt: base.Add(2 * time.Second)},
		{ID: "m4", SenderID: "a", ReceiverID: "b", Content: "third", CreatedAt: base.Add(3 * time.Second)},
	}
	for i := range msgs {
		if err := s.AppendMessage(ctx, &msgs[i]); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	conv, err := s.Conversation(ctx, "b", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(conv) != 3 {
		t.Fatalf("conversation length = %d, want 3", len(conv))
	}
	if conv[0].ID != "m1" || conv[1].ID != "m2" || conv[2].ID != "m4" {
		t.Fatalf("unexpected order: %s %s %s", conv[0].ID, conv[1].ID, conv[2].ID)
	}

	if err := s.MarkConversationRead(ctx, "b", "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	conv, _ = s.Conversation(ctx, "b", "a")
	for _, m := range conv {
		wantRead := m.ReceiverID == "b"
		if m.Read != wantRead {
			t.Fatalf("message %s read=%v, want %v", m.ID, m.Read, wantRead)
		}
	}

	ok, err := s.HasConversation(ctx, "c", "a")
	if err != nil || !ok {
		t.Fatalf("HasConversation(c,a) = %v, %v; want true", ok, err)
	}
	ok, _ = s.HasConversation(ctx, "b", "c")
	if ok {
		t.Fatal("HasConversation(b,c) must be false")
	}
}
