package messaging

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kenechi-dev/gighall/internal/apperr"
)

// Handler exposes conversation read-back over HTTP.
type Handler struct {
	Router *Router
}

// GetConversation returns the ordered conversation between the caller and
// the peer in the path, marking the caller's received messages as read.
func (h *Handler) GetConversation(c echo.Context) error {
	callerID, _ := c.Get("user_id").(string)

	msgs, err := h.Router.History(c.Request().Context(), callerID, c.Param("userId"))
	if err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "fields": ve.Fields})
		}
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, msgs)
}
