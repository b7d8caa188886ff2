package service

import (
	"context"
	"log/slog"
	"strings"

	"splitbook/internal/apperr"
	"splitbook/internal/models"
	"splitbook/internal/storage"
)

// GroupService manages groups and memberships. The creator is recorded at
// creation, immutable, and the only member authorized to add others; whether
// non-creators may ever manage membership is undefined upstream, so nothing
// of the sort is exposed.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group with the creator and the given members. The
// creator is always a member, whether listed or not. Group and memberships
// persist in one transaction.
func (s *GroupService) CreateGroup(ctx context.Context, creatorID, name string, memberIDs []string) (*models.Group, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperr.Validationf("group name must not be empty")
	}
	if _, err := s.store.GetUserByID(ctx, creatorID); err != nil {
		return nil, err
	}

	members := append([]string{creatorID}, dedupe(memberIDs, creatorID)...)
	if err := s.ensureExists(ctx, members); err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:      strings.TrimSpace(name),
		CreatedBy: creatorID,
	}
	if err := s.store.CreateGroupWithMembers(ctx, group, members); err != nil {
		slog.Error("CreateGroup failed", "creator_id", creatorID, "error", err)
		return nil, err
	}

	slog.Info("Group created", "group_id", group.ID, "creator_id", creatorID, "members", len(members))
	return group, nil
}

// AddMember adds a user to a group. Only the creator may do this; anyone
// else sees the group as not found.
func (s *GroupService) AddMember(ctx context.Context, groupID, actorID, userID string) error {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.CreatedBy != actorID {
		return apperr.NotFoundf("group %s", groupID)
	}
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return err
	}
	if err := s.store.AddGroupMember(ctx, groupID, userID); err != nil {
		return err
	}
	slog.Info("Group member added", "group_id", groupID, "user_id", userID)
	return nil
}

// GetGroup retrieves a group with its members. Members only.
func (s *GroupService) GetGroup(ctx context.Context, groupID, actorID string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !contains(group.MemberIDs, actorID) {
		return nil, apperr.NotFoundf("group %s", groupID)
	}
	return group, nil
}

// GroupsForUser returns the groups a user belongs to, newest first.
func (s *GroupService) GroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.store.ListGroupsForUser(ctx, userID)
}

// GroupExpenses returns a group's expenses, newest first. Members only.
func (s *GroupService) GroupExpenses(ctx context.Context, groupID, actorID string) ([]*models.Expense, error) {
	if _, err := s.GetGroup(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.store.ListExpensesByGroup(ctx, groupID)
}

func (s *GroupService) ensureExists(ctx context.Context, ids []string) error {
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

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
