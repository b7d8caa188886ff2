package models

// Group represents a named collection of users scoped around shared expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g. "Roommates").
	Name string

	// CreatedBy is the ID of the user who created the group. Recorded at
	// creation and immutable; only the creator may add members.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// MemberIDs is the list of member user IDs, sorted by ID.
	// Populated on reads that load the full group.
	MemberIDs []string
}

// Membership is the join record between a User and a Group.
// The (GroupID, UserID) pair is unique.
type Membership struct {
	GroupID  string
	UserID   string
	JoinedAt int64
}
