package enhance

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handler exposes the enhancement collaborator over HTTP so the frontend can
// preview an enhanced description before posting a request.
type Handler struct {
	Enhancer Enhancer
}

func (h *Handler) EnhanceDescription(c echo.Context) error {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&body); err != nil || body.Text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "text field is required"})
	}

	enhanced, err := h.Enhancer.Enhance(c.Request().Context(), body.Text, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "enhancement failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"original": body.Text,
		"enhanced": enhanced,
	})
}
