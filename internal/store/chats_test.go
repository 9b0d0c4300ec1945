package store

import (
	"context"
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindOrCreateChatIsStable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }

	id, err := s.FindOrCreateChat(ctx, "alice", "bob")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	again, err := s.FindOrCreateChat(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	reversed, err := s.FindOrCreateChat(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, id, reversed)

	chat := s.GetDocument(ctx, models.CollectionChats, id)
	require.NotNil(t, chat)
	assert.Equal(t, []string{"alice", "bob"}, chat.Strings("participants"))
	assert.Equal(t, "2024-03-01T10:00:00Z", chat.String("createdAt"))
}

func TestFindOrCreateChatRequiresBothParticipants(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	withBob, err := s.FindOrCreateChat(ctx, "alice", "bob")
	require.NoError(t, err)

	withCarol, err := s.FindOrCreateChat(ctx, "alice", "carol")
	require.NoError(t, err)
	assert.NotEqual(t, withBob, withCarol)

	assert.Equal(t, int64(2), s.CountDocuments(ctx, models.CollectionChats))
}

func TestFindOrCreateChatRejectsSameUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.FindOrCreateChat(ctx, "alice", "bob")
	require.NoError(t, err)

	_, err = s.FindOrCreateChat(ctx, "alice", "alice")
	assert.ErrorIs(t, err, ErrSelfChat)
	assert.Equal(t, int64(1), s.CountDocuments(ctx, models.CollectionChats))
}

func TestStoreMessageGeneratesID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ok := s.StoreMessage(ctx, models.Message{Text: "hi", Time: "10:00", SenderID: "alice", ChatID: "c1"})
	require.True(t, ok)

	msgs := s.ListAllDocuments(ctx, models.CollectionMessages)
	require.Len(t, msgs, 1)

	var msg models.Message
	require.NoError(t, msgs[0].Decode(&msg))
	assert.NotEmpty(t, msg.MsgID)
	assert.Equal(t, "hi", msg.Text)
	assert.False(t, msg.Seen)
	assert.Equal(t, "c1", msg.ChatID)
	assert.NotNil(t, s.GetDocument(ctx, models.CollectionMessages, msg.MsgID))
}
