package domain

import (
	"context"
	"time"
)

// User represents a user entity in the system.
// A user can register, login, and author posts and comments.
type User struct {
	ID        int64     `json:"id"`                // Unique identifier
	Username  string    `json:"username"`          // Display/login name (unique)
	Email     string    `json:"email"`             // Contact email (unique)
	Avatar    string    `json:"avatar,omitempty"`  // Avatar URL
	Password  string    `json:"-"`                 // Bcrypt hashed password
	CreatedAt time.Time `json:"createdAt"`         // Account creation timestamp
	UpdatedAt time.Time `json:"updatedAt"`         // Last profile update timestamp
}

// Summary projects the fields embedded in comment and post responses so the
// consumer never needs a second lookup.
func (u *User) Summary() *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Avatar:   u.Avatar,
	}
}

// UserRepository defines the contract for user data persistence.
type UserRepository interface {
	// GetByID retrieves a user by their ID.
	// Returns ErrNotFound if the user doesn't exist.
	GetByID(ctx context.Context, id int64) (User, error)

	// GetByIDs retrieves users by given IDs. Missing IDs are simply absent
	// from the result, not an error.
	GetByIDs(ctx context.Context, userIDs []int64) ([]User, error)

	// GetByEmail retrieves a user by their email.
	// Used during login to verify credentials.
	GetByEmail(ctx context.Context, email string) (User, error)

	// Insert creates a new user account.
	// Backfills the ID in the provided User object upon success.
	Insert(ctx context.Context, u *User) error
}

// UserUsecase defines the business logic contract for user operations.
type UserUsecase interface {
	// Register creates a new user account.
	// Returns ErrConflict if the username or email already exists.
	Register(ctx context.Context, username, email, password string) error

	// Login verifies user credentials and returns a JWT token.
	// Returns ErrNotFound if the user doesn't exist.
	// Returns ErrBadParamInput if the password is incorrect.
	Login(ctx context.Context, email, password string) (string, error)
}
