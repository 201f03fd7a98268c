// Package user holds requester and staff accounts. Staff review requests;
// a restricted account can no longer submit new ones.
package user

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	id "registrar/pkg/domain"
)

// Status is an account standing. Restricted accounts are set by a
// reject-with-prejudice resolution and never restored automatically.
type Status string

const (
	StatusActive     Status = "active"
	StatusRestricted Status = "restricted"
)

// User is one account, applicant or staff.
type User struct {
	ID           id.UserID
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	IsStaff      bool
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New creates an active account with a bcrypt password hash.
func New(email, firstName, lastName, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return &User{
		ID:           id.NewUserID(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		Status:       StatusActive,
	}, nil
}

// CheckPassword reports whether the password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// IsRestricted reports whether the account has been barred from new requests.
func (u *User) IsRestricted() bool { return u.Status == StatusRestricted }

// Restrict bars the account. Idempotent.
func (u *User) Restrict() { u.Status = StatusRestricted }

// FullName is the display name used in email greetings.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
