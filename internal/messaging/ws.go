package messaging

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/kenechi-dev/gighall/internal/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WSHandler upgrades live connections. Identity comes from the handshake: a
// Bearer header or a token query parameter (browser WebSocket clients cannot
// set headers). Unknown identities never get a joined channel.
type WSHandler struct {
	Router   *Router
	Hub      *Hub
	Verifier *auth.Verifier
}

type inboundMessage struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type inboundEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Serve handles the whole connection lifetime: handshake auth, channel join,
// inbound read loop, channel leave.
func (h *WSHandler) Serve(c echo.Context) error {
	raw := c.QueryParam("token")
	if header := c.Request().Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		raw = strings.TrimPrefix(header, "Bearer ")
	}
	u, err := h.Verifier.Identify(c.Request().Context(), raw)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown identity"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	cl := h.Hub.Join(u.ID, ws)
	defer func() {
		h.Hub.Leave(u.ID, cl)
		_ = ws.Close()
	}()

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return nil
		}

		var evt inboundEvent
		if err := json.Unmarshal(payload, &evt); err != nil || evt.Type != "message" {
			h.sendError(cl, "invalid message format")
			continue
		}
		var in inboundMessage
		if err := json.Unmarshal(evt.Data, &in); err != nil {
			h.sendError(cl, "invalid message format")
			continue
		}

		if _, err := h.Router.Send(c.Request().Context(), u.ID, in.ReceiverID, in.Content); err != nil {
			h.sendError(cl, "failed to send message")
		}
	}
}

func (h *WSHandler) sendError(cl *Client, msg string) {
	payload, err := json.Marshal(Event{Type: "error", Data: echo.Map{"message": msg}})
	if err != nil {
		return
	}
	_ = cl.send(payload)
}
