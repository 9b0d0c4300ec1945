package store

import (
	"context"
	"testing"

	"inventory-service/internal/docstore"
	"inventory-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, s *Store, collection, id string, doc interface{}) {
	t.Helper()
	require.True(t, s.StoreDocument(context.Background(), doc, collection, id))
}

func TestGetLikedMeProfiles(t *testing.T) {
	s := newTestStore(t)

	seed(t, s, models.CollectionUsers, "u1", docstore.Document{"id": "u1", "name": "Ann"})
	seed(t, s, models.CollectionUsers, "u3", docstore.Document{"id": "u3", "name": "Cid"})

	seed(t, s, models.CollectionFavorites, "u1", models.Favorites{User: "u1", FavoriteUsers: []string{"me", "u2"}})
	seed(t, s, models.CollectionFavorites, "u2", models.Favorites{User: "u2", FavoriteUsers: []string{"u3"}})
	seed(t, s, models.CollectionFavorites, "u3", models.Favorites{User: "u3", FavoriteUsers: []string{"me"}})
	seed(t, s, models.CollectionFavorites, "ghost", models.Favorites{User: "ghost", FavoriteUsers: []string{"me"}})
	seed(t, s, models.CollectionFavorites, "bad", docstore.Document{"user": "u1", "favoriteUsers": "me"})

	profiles := s.GetLikedMeProfiles(context.Background(), "me")
	require.Len(t, profiles, 2)
	assert.Equal(t, "Ann", profiles[0].String("name"))
	assert.Equal(t, "Cid", profiles[1].String("name"))

	none := s.GetLikedMeProfiles(context.Background(), "nobody")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGetBlockedProfileIDsUnion(t *testing.T) {
	s := newTestStore(t)

	seed(t, s, models.CollectionBlockLists, "me", models.BlockList{User: "me", BlockedUsers: []string{"u1", "u2"}})
	seed(t, s, models.CollectionBlockLists, "u2", models.BlockList{User: "u2", BlockedUsers: []string{"me"}})
	seed(t, s, models.CollectionBlockLists, "u4", models.BlockList{User: "u4", BlockedUsers: []string{"me"}})
	seed(t, s, models.CollectionBlockLists, "u5", models.BlockList{User: "u5", BlockedUsers: []string{"u1"}})
	seed(t, s, models.CollectionUsers, "u2", models.UserProfile{ID: "u2"})
	seed(t, s, models.CollectionUsers, "u4", models.UserProfile{ID: "u4"})
	seed(t, s, models.CollectionDeletedAccounts, "u1", models.DeletedAccount{User: "u1"})
	seed(t, s, models.CollectionDeletedAccounts, "u9", models.DeletedAccount{User: "u9"})
	seed(t, s, models.CollectionDeletedAccounts, "bad", docstore.Document{"note": "no user field"})

	ids := s.GetBlockedProfileIDs(context.Background(), "me")
	assert.Equal(t, []string{"u1", "u2", "u4", "u9"}, ids)
}

func TestGetBlockedProfileIDsEmpty(t *testing.T) {
	ids := newTestStore(t).GetBlockedProfileIDs(context.Background(), "me")
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestUnion(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, union([]string{"a", "b"}, nil, []string{"b", "", "c", "a"}))
}
