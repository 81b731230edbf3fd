package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kenechi-dev/gighall/internal/model"
	"github.com/kenechi-dev/gighall/internal/store"
)

// ErrInvalidToken is returned by Verifier.Identify for any credential that
// does not resolve to a known user.
var ErrInvalidToken = errors.New("invalid token")

// IssueToken signs an HS256 bearer token for a user. Claims carry the user id
// as subject plus the role for client-side display; the server never trusts
// the role claim (see Verifier).
func IssueToken(secret string, u *model.User, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  u.ID,
		"role": u.Role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// Verifier maps an opaque bearer credential to an identity record. The
// ledgers never see the raw credential; everything downstream works with the
// resolved user. The role is re-read from the identity store on every call so
// a stale or forged role claim has no effect.
type Verifier struct {
	Secret string
	Users  store.UserStore
}

func (v *Verifier) Identify(ctx context.Context, raw string) (*model.User, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.Secret), nil
	})
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}
	u, err := v.Users.GetUser(ctx, sub)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return u, nil
}
