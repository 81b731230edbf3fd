package marketplace

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/model"
)

// Handler translates gateway calls into ledger operations. Identity comes
// from the JWT middleware ("user_id"/"role" context keys); the role guards on
// the routes have already run.
type Handler struct {
	Requests *RequestLedger
	Bids     *BidLedger
}

// CreateRequest - client posts a new service request.
func (h *Handler) CreateRequest(c echo.Context) error {
	clientID, _ := c.Get("user_id").(string)

	var in RequestInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	r, err := h.Requests.Create(c.Request().Context(), clientID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// ListRequests - role-scoped listing.
func (h *Handler) ListRequests(c echo.Context) error {
	callerID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)

	list, err := h.Requests.List(c.Request().Context(), callerID, role)
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []model.ServiceRequest{}
	}
	return c.JSON(http.StatusOK, list)
}

// CancelRequest - owning client cancels an open or in-progress request.
func (h *Handler) CancelRequest(c echo.Context) error {
	callerID, _ := c.Get("user_id").(string)

	r, err := h.Requests.Cancel(c.Request().Context(), callerID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// CompleteRequest - owning client marks an in-progress request completed.
func (h *Handler) CompleteRequest(c echo.Context) error {
	callerID, _ := c.Get("user_id").(string)

	r, err := h.Requests.Complete(c.Request().Context(), callerID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// CreateBid - freelancer bids on an open request.
func (h *Handler) CreateBid(c echo.Context) error {
	freelancerID, _ := c.Get("user_id").(string)

	var in BidInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.Bids.Create(c.Request().Context(), freelancerID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// ListBids - scoped listing, optionally narrowed to one request via the
// serviceRequestId query parameter.
func (h *Handler) ListBids(c echo.Context) error {
	callerID, _ := c.Get("user_id").(string)
	role, _ := c.Get("role").(string)

	list, err := h.Bids.List(c.Request().Context(), callerID, role, c.QueryParam("serviceRequestId"))
	if err != nil {
		return writeError(c, err)
	}
	if list == nil {
		list = []model.Bid{}
	}
	return c.JSON(http.StatusOK, list)
}

// AcceptBid - owning client accepts a bid; siblings are rejected and the
// request moves to in_progress in the same transaction.
func (h *Handler) AcceptBid(c echo.Context) error {
	callerID, _ := c.Get("user_id").(string)

	b, err := h.Bids.Accept(c.Request().Context(), callerID, c.Param("bidId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Bid accepted successfully", "bid": b})
}

func writeError(c echo.Context, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Error(), "fields": ve.Fields})
	}
	return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
}
