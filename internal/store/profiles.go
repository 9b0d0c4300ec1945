package store

import (
	"context"

	"inventory-service/internal/docstore"
	"inventory-service/internal/models"

	"go.uber.org/zap"
)

// GetLikedMeProfiles returns the profiles of users whose favorites include id.
// Favorites pointing at missing profiles are skipped.
func (s *Store) GetLikedMeProfiles(ctx context.Context, id string) []docstore.Document {
	profiles := []docstore.Document{}

	for _, doc := range s.ListAllDocuments(ctx, models.CollectionFavorites) {
		var fav models.Favorites
		if !s.decode(doc, &fav, models.CollectionFavorites) {
			continue
		}
		if fav.User == "" || !contains(fav.FavoriteUsers, id) {
			continue
		}
		if profile := s.GetDocument(ctx, models.CollectionUsers, fav.User); profile != nil {
			profiles = append(profiles, profile)
		}
	}
	return profiles
}

// GetBlockedProfileIDs returns the ids hidden from id: users id blocked, users
// who blocked id and deleted accounts. Ids are unique and keep first-seen
// order.
func (s *Store) GetBlockedProfileIDs(ctx context.Context, id string) []string {
	var blockedByMe []string
	if doc := s.GetDocument(ctx, models.CollectionBlockLists, id); doc != nil {
		var own models.BlockList
		if s.decode(doc, &own, models.CollectionBlockLists) {
			blockedByMe = own.BlockedUsers
		}
	}

	var blockedMe []string
	for _, doc := range s.ListAllDocuments(ctx, models.CollectionBlockLists) {
		var list models.BlockList
		if !s.decode(doc, &list, models.CollectionBlockLists) {
			continue
		}
		if list.User == "" || !contains(list.BlockedUsers, id) {
			continue
		}
		profileDoc := s.GetDocument(ctx, models.CollectionUsers, list.User)
		if profileDoc == nil {
			continue
		}
		var profile models.UserProfile
		if s.decode(profileDoc, &profile, models.CollectionUsers) {
			blockedMe = append(blockedMe, profile.ID)
		}
	}

	var deleted []string
	for _, doc := range s.ListAllDocuments(ctx, models.CollectionDeletedAccounts) {
		var acc models.DeletedAccount
		if s.decode(doc, &acc, models.CollectionDeletedAccounts) {
			deleted = append(deleted, acc.User)
		}
	}

	return union(blockedByMe, blockedMe, deleted)
}

func (s *Store) decode(doc docstore.Document, v interface{}, collection string) bool {
	if err := doc.Decode(v); err != nil {
		s.logger.Warn("Skipping malformed document",
			zap.String("collection", collection), zap.Error(err))
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, v := range list {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
