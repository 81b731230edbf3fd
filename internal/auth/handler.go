package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/model"
	"github.com/kenechi-dev/gighall/internal/store"
)

// Handler bundles dependencies for the identity endpoints.
type Handler struct {
	Users      store.UserStore
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

type registerReq struct {
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
	Role     string `json:"userType"`
}

// Register creates a user record. Every violated field is reported, not just
// the first.
func (h *Handler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	fields := map[string]string{}
	if !strings.Contains(req.Email, "@") || len(req.Email) < 3 {
		fields["email"] = "must be a valid email address"
	}
	if len(strings.TrimSpace(req.FullName)) < 2 {
		fields["fullName"] = "must be at least 2 characters"
	}
	if len(req.Password) < 8 {
		fields["password"] = "must be at least 8 characters"
	}
	if req.Role != model.RoleClient && req.Role != model.RoleFreelancer {
		fields["userType"] = "must be client or freelancer"
	}
	if len(fields) > 0 {
		return writeError(c, apperr.Validation(fields))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "server error"})
	}

	u := &model.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         req.Role,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Users.CreateUser(c.Request().Context(), u); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns a bearer token. Invalid email and
// invalid password are indistinguishable to the caller.
func (h *Handler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	u, err := h.Users.GetUserByEmail(c.Request().Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	token, err := IssueToken(h.JWTSecret, u, h.TokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "token generation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"accessToken": token,
		"tokenType":   "bearer",
		"userId":      u.ID,
		"userType":    u.Role,
	})
}

// Me returns the authenticated user's record.
func (h *Handler) Me(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)
	u, err := h.Users.GetUser(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func writeError(c echo.Context, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "fields": ve.Fields})
	}
	return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
}
