package constants

// ContextKeyUserID is the key under which the authenticated user ID is stored
// in both the session and the gin request context.
const ContextKeyUserID = "user_id"

// MinPasswordLength is the minimum accepted password length on signup.
const MinPasswordLength = 8

// Pagination bounds for list endpoints.
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ResetTokenTTLHours is how long a password reset token stays valid.
const ResetTokenTTLHours = 24
