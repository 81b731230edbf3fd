package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/model"
)

// CreateClientProfile stores the optional company details for a client
// account. Both fields may be empty; the route's role guard already ensured
// the caller is a client.
func (h *Handler) CreateClientProfile(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)

	var p model.ClientProfile
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Users.SaveClientProfile(c.Request().Context(), userID, &p); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// CreateFreelancerProfile stores a freelancer's public profile.
func (h *Handler) CreateFreelancerProfile(c echo.Context) error {
	userID, _ := c.Get("user_id").(string)

	var p model.FreelancerProfile
	if err := c.Bind(&p); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	fields := map[string]string{}
	if len(strings.TrimSpace(p.Headline)) < 5 {
		fields["headline"] = "must be at least 5 characters"
	}
	if len(strings.TrimSpace(p.Description)) < 20 {
		fields["description"] = "must be at least 20 characters"
	}
	if p.CategoryID == "" {
		fields["categoryId"] = "is required"
	}
	if len(p.Skills) == 0 {
		fields["skills"] = "must list at least one skill"
	}
	if len(fields) > 0 {
		return writeError(c, apperr.Validation(fields))
	}

	if err := h.Users.SaveFreelancerProfile(c.Request().Context(), userID, &p); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}
