package models

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Username is the unique handle shown to other users.
	Username string

	// Email is the user's email address (unique). Used for login.
	Email string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized out of the process.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// Friendship represents the symmetric friend relation between two users.
//
// Exactly one edge is stored per unordered pair, with UserLo < UserHi
// (lexicographic on the UUID strings). Storing the canonical edge instead of
// two mirrored rows makes add/remove/lookup a single-row operation, so the
// relation can never be half-written.
type Friendship struct {
	// UserLo is the smaller of the two user IDs.
	UserLo string

	// UserHi is the larger of the two user IDs.
	UserHi string

	// CreatedAt is the Unix timestamp when the edge was created.
	CreatedAt int64
}

// CanonicalPair orders two user IDs into the (lo, hi) form used by the
// friendships table.
func CanonicalPair(a, b string) (lo, hi string) {
	if a < b {
		return a, b
	}
	return b, a
}
