package auth

import (
	"context"
	"testing"
	"time"

	"github.com/kenechi-dev/gighall/internal/model"
	"github.com/kenechi-dev/gighall/internal/store"
)

func TestIssueAndIdentify(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	u := &model.User{ID: "u1", Email: "a@example.com", Role: model.RoleClient}
	if err := mem.CreateUser(ctx, u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := IssueToken("secret", u, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	v := &Verifier{Secret: "secret", Users: mem}
	got, err := v.Identify(ctx, raw)
	if err != nil {
		t.Fatalf("identify failed: %v", err)
	}
	if got.ID != "u1" || got.Role != model.RoleClient {
		t.Fatalf("unexpected identity: %#v", got)
	}
}

func TestIdentifyRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	u := &model.User{ID: "u1", Email: "a@example.com", Role: model.RoleClient}
	if err := mem.CreateUser(ctx, u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := &Verifier{Secret: "secret", Users: mem}

	if _, err := v.Identify(ctx, "not-a-token"); err != ErrInvalidToken {
		t.Fatalf("garbage token: got %v", err)
	}

	wrongKey, err := IssueToken("other-secret", u, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := v.Identify(ctx, wrongKey); err != ErrInvalidToken {
		t.Fatalf("wrong signing key: got %v", err)
	}

	expired, err := IssueToken("secret", u, -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := v.Identify(ctx, expired); err != ErrInvalidToken {
		t.Fatalf("expired token: got %v", err)
	}

	ghost, err := IssueToken("secret", &model.User{ID: "deleted"}, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if _, err := v.Identify(ctx, ghost); err != ErrInvalidToken {
		t.Fatalf("unknown subject: got %v", err)
	}
}

func TestIdentifyRoleComesFromStore(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	u := &model.User{ID: "u1", Email: "a@example.com", Role: model.RoleFreelancer}
	if err := mem.CreateUser(ctx, u); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Token minted with a stale role claim; the store record wins.
	stale := &model.User{ID: "u1", Role: model.RoleClient}
	raw, err := IssueToken("secret", stale, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	v := &Verifier{Secret: "secret", Users: mem}
	got, err := v.Identify(ctx, raw)
	if err != nil {
		t.Fatalf("identify failed: %v", err)
	}
	if got.Role != model.RoleFreelancer {
		t.Fatalf("role = %q, want the stored role", got.Role)
	}
}
