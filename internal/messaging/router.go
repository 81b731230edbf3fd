package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/model"
	"github.com/kenechi-dev/gighall/internal/store"
)

// Router delivers point-to-point messages. Every accepted message is
// persisted first; live delivery to the receiver's channel is best effort
// and an offline receiver is an expected branch, not a fault.
type Router struct {
	messages store.MessageStore
	hub      *Hub
}

func NewRouter(messages store.MessageStore, hub *Hub) *Router {
	return &Router{messages: messages, hub: hub}
}

// Send validates, persists (read=false) and then broadcasts to the
// receiver's channel.
func (r *Router) Send(ctx context.Context, senderID, receiverID, content string) (*model.Message, error) {
	fields := map[string]string{}
	if receiverID == "" {
		fields["receiverId"] = "is required"
	}
	if content == "" {
		fields["content"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperr.Validation(fields)
	}

	m := &model.Message{
		ID:         uuid.New().String(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
		Read:       false,
	}
	if err := r.messages.AppendMessage(ctx, m); err != nil {
		return nil, err
	}
	r.hub.Broadcast(receiverID, Event{Type: "message", Data: m})
	return m, nil
}

// History returns the full ordered conversation between the caller and the
// other user and, as a side effect, marks every message the caller received
// in it as read. A caller with no conversation with the other user is
// refused; reading your own id back is always allowed.
func (r *Router) History(ctx context.Context, callerID, otherID string) ([]model.Message, error) {
	if callerID != otherID {
		ok, err := r.messages.HasConversation(ctx, callerID, otherID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Forbiddenf("no conversation with user %s", otherID)
		}
	}

	// Mark before fetching so the returned records already carry read=true.
	if err := r.messages.MarkConversationRead(ctx, callerID, otherID); err != nil {
		return nil, err
	}
	msgs, err := r.messages.Conversation(ctx, callerID, otherID)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	return msgs, nil
}
