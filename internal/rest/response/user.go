package response

import "github.com/quillhaven/quillhaven/domain"

const DateTimeFormat = "2006-01-02 15:04:05"

// User is the denormalized author summary embedded in comment and post
// responses.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

func NewUserFromDomain(u *domain.User) *User {
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
