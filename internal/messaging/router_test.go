package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/store"
)

func newTestRouter() *Router {
	return NewRouter(store.NewMemory(), NewHub())
}

func TestSendValidatesInput(t *testing.T) {
	r := newTestRouter()

	_, err := r.Send(context.Background(), "a", "", "")
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["receiverId"]; !ok {
		t.Fatalf("missing receiverId violation: %v", ve.Fields)
	}
	if _, ok := ve.Fields["content"]; !ok {
		t.Fatalf("missing content violation: %v", ve.Fields)
	}
}

func TestSendPersistsForOfflineReceiver(t *testing.T) {
	r := newTestRouter()
	ctx := context.Background()

	m, err := r.Send(ctx, "a", "b", "hello")
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if m.ID == "" || m.Read {
		t.Fatalf("message not stamped correctly: %#v", m)
	}

	// The receiver was never connected; the message still shows up on pull.
	msgs, err := r.History(ctx, "b", "a")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "hello" {
		t.Fatalf("unexpected history: %#v", msgs)
	}
}

func TestHistoryMarksReceivedRead(t *testing.T) {
	r := newTestRouter()
	ctx := context.Background()

	if _, err := r.Send(ctx, "a", "b", "one"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := r.Send(ctx, "b", "a", "two"); err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if _, err := r.Send(ctx, "a", "b", "three"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	msgs, err := r.History(ctx, "b", "a")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("history length = %d, want 3", len(msgs))
	}
	for _, m := range msgs {
		if m.ReceiverID == "b" && !m.Read {
			t.Fatalf("received message %s not marked read", m.ID)
		}
		if m.ReceiverID == "a" && m.Read {
			t.Fatalf("message %s to the other side must stay unread", m.ID)
		}
	}

	// Reading again is idempotent.
	again, err := r.History(ctx, "b", "a")
	if err != nil {
		t.Fatalf("second history failed: %v", err)
	}
	if len(again) != 3 {
		t.Fatalf("second history length = %d, want 3", len(again))
	}
}

func TestHistoryRequiresExistingConversation(t *testing.T) {
	r := newTestRouter()
	ctx := context.Background()

	if _, err := r.Send(ctx, "a", "b", "hi"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	if _, err := r.History(ctx, "c", "a"); !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}

	// Reading your own id back is allowed and returns empty, not an error.
	msgs, err := r.History(ctx, "c", "c")
	if err != nil {
		t.Fatalf("self history failed: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("self history = %#v, want empty", msgs)
	}
}

func TestHubMembership(t *testing.T) {
	h := NewHub()

	if h.Connected("u1") {
		t.Fatal("fresh hub must report no connections")
	}
	c1 := h.Join("u1", nil)
	c2 := h.Join("u1", nil)
	if !h.Connected("u1") {
		t.Fatal("user must be connected after join")
	}
	h.Leave("u1", c1)
	if !h.Connected("u1") {
		t.Fatal("user with a remaining connection must stay connected")
	}
	h.Leave("u1", c2)
	if h.Connected("u1") {
		t.Fatal("user must be disconnected after last leave")
	}
	// Leaving twice is harmless.
	h.Leave("u1", c2)
}
