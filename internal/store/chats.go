package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inventory-service/internal/docstore"
	"inventory-service/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSelfChat is returned when a chat would have a single participant
var ErrSelfChat = errors.New("chat participants must be distinct")

// FindOrCreateChat returns the id of the chat whose participants include both
// senderID and receiverID, creating it when none exists.
func (s *Store) FindOrCreateChat(ctx context.Context, senderID, receiverID string) (string, error) {
	if senderID == receiverID {
		return "", ErrSelfChat
	}

	existing := s.QueryDocuments(ctx, models.CollectionChats,
		docstore.Where("participants", docstore.OpArrayContains, senderID),
		docstore.Where("participants", docstore.OpArrayContains, receiverID),
	)
	if len(existing) > 0 {
		return existing[0].String("id"), nil
	}

	chat := models.Chat{
		ID:           uuid.New().String(),
		Participants: []string{senderID, receiverID},
		CreatedAt:    s.now().UTC().Format(time.RFC3339),
	}
	if !s.StoreDocument(ctx, chat, models.CollectionChats, chat.ID) {
		return "", fmt.Errorf("error in initiating chat between %s and %s", senderID, receiverID)
	}

	s.logger.Info("Chat created", zap.String("chat_id", chat.ID))
	return chat.ID, nil
}

// StoreMessage persists msg under a freshly generated message id
func (s *Store) StoreMessage(ctx context.Context, msg models.Message) bool {
	msg.MsgID = uuid.New().String()
	return s.StoreDocument(ctx, msg, models.CollectionMessages, msg.MsgID)
}
