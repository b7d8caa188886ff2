package sqlite

import (
	"context"
	"fmt"
	"time"

	"splitbook/internal/apperr"
	"splitbook/internal/models"
)

// AddFriendship inserts the canonical (lo, hi) edge for the pair. The edge is
// a single row, so the relation is either fully present or fully absent and
// concurrent add/remove on the same pair serialize on the row itself.
func (s *Store) AddFriendship(ctx context.Context, userA, userB string) error {
	lo, hi := models.CanonicalPair(userA, userB)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO friendships (user_lo, user_hi, created_at) VALUES (?, ?, ?)",
		lo, hi, time.Now().Unix(),
	)
	if isUniqueViolation(err) {
		return apperr.Conflictf("already friends")
	}
	if isForeignKeyViolation(err) {
		return apperr.Integrityf("friendship references missing user")
	}
	if err != nil {
		return fmt.Errorf("failed to add friendship: %w", err)
	}
	return nil
}

// RemoveFriendship deletes the canonical edge for the pair.
func (s *Store) RemoveFriendship(ctx context.Context, userA, userB string) error {
	lo, hi := models.CanonicalPair(userA, userB)
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM friendships WHERE user_lo = ? AND user_hi = ?",
		lo, hi,
	)
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFoundf("not friends")
	}
	return nil
}

// AreFriends reports whether the pair's edge exists. Symmetric by
// construction: both argument orders hit the same row.
func (s *Store) AreFriends(ctx context.Context, userA, userB string) (bool, error) {
	lo, hi := models.CanonicalPair(userA, userB)
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM friendships WHERE user_lo = ? AND user_hi = ?",
		lo, hi,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check friendship: %w", err)
	}
	return exists > 0, nil
}

// ListFriendIDs returns a user's friend IDs sorted ascending, reading both
// sides of the canonical edges.
func (s *Store) ListFriendIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_hi AS friend FROM friendships WHERE user_lo = ?
		 UNION
		 SELECT user_lo AS friend FROM friendships WHERE user_hi = ?
		 ORDER BY friend`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	var friends []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend ID: %w", err)
		}
		friends = append(friends, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friends: %w", err)
	}
	return friends, nil
}
