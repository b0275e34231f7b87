package domain

import "time"

// ResetToken is a single-use, time-limited password reset token bound
// to one user identity.
type ResetToken struct {
	ID        int64
	UserID    int64
	Email     string
	Token     string
	ExpiresAt time.Time
	IsUsed    bool
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry at the given time.
func (t ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
