package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate reports a username/email uniqueness violation.
	ErrDuplicate = errors.New("username or email already taken")
)

// Repository is the credential store. Implementations MUST enforce
// uniqueness of username and of email at the storage layer (unique
// indexes); callers pre-check existence for a friendly error but rely on
// the store as the backstop against concurrent duplicate creation.
type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByIdentifier matches on username or email; empty arguments are
	// ignored. Returns ErrNotFound when nothing matches.
	FindByIdentifier(ctx context.Context, username, email string) (*User, error)

	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// UpdateRefreshToken replaces only the refresh token column.
	UpdateRefreshToken(ctx context.Context, id, token string) error

	// ClearRefreshToken empties the refresh token. Clearing an already
	// empty token is not an error.
	ClearRefreshToken(ctx context.Context, id string) error
}
