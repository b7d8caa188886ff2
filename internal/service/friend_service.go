package service

import (
	"context"
	"log/slog"

	"splitbook/internal/apperr"
	"splitbook/internal/models"
	"splitbook/internal/storage"
)

// FriendService maintains the symmetric friend relation. Friendship scopes
// which balances ever get computed or displayed: the balance aggregator
// iterates a user's friend set, nothing more.
type FriendService struct {
	store storage.Store
}

// NewFriendService creates a new FriendService with the given storage
// backend.
func NewFriendService(store storage.Store) *FriendService {
	return &FriendService{store: store}
}

// AddFriend establishes the mutual relation between two users. The edge is
// stored once, canonically ordered, so both directions appear atomically.
func (s *FriendService) AddFriend(ctx context.Context, selfID, otherID string) error {
	if selfID == otherID {
		return apperr.Validationf("cannot befriend yourself")
	}
	if err := s.ensureExists(ctx, selfID, otherID); err != nil {
		return err
	}
	if err := s.store.AddFriendship(ctx, selfID, otherID); err != nil {
		return err
	}
	slog.Info("Friendship added", "user_id", selfID, "friend_id", otherID)
	return nil
}

// RemoveFriend removes the mutual relation; both directions disappear
// atomically because only one edge exists.
func (s *FriendService) RemoveFriend(ctx context.Context, selfID, otherID string) error {
	if selfID == otherID {
		return apperr.Validationf("cannot unfriend yourself")
	}
	if err := s.store.RemoveFriendship(ctx, selfID, otherID); err != nil {
		return err
	}
	slog.Info("Friendship removed", "user_id", selfID, "friend_id", otherID)
	return nil
}

// AreFriends reports whether the two users are friends. Symmetric in its
// arguments.
func (s *FriendService) AreFriends(ctx context.Context, selfID, otherID string) (bool, error) {
	return s.store.AreFriends(ctx, selfID, otherID)
}

// Friends returns a user's friends sorted by ID.
func (s *FriendService) Friends(ctx context.Context, userID string) ([]*models.User, error) {
	ids, err := s.store.ListFriendIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	byID, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	friends := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := byID[id]; ok {
			friends = append(friends, user)
		}
	}
	return friends, nil
}

func (s *FriendService) ensureExists(ctx context.Context, ids ...string) error {
	users, err := s.store.GetUsersByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if _, ok := users[id]; !ok {
			return apperr.NotFoundf("user %s", id)
		}
	}
	return nil
}
