package user

import (
	"context"

	id "registrar/pkg/domain"
)

// Store persists accounts.
type Store interface {
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, userID id.UserID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}
