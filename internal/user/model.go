package user

import "time"

// User is the stored account record. RefreshToken holds the single active
// refresh token for the account; empty means no live session.
type User struct {
	ID            string
	FullName      string
	Username      string
	Email         string
	AvatarURL     string
	CoverImageURL string
	PasswordHash  string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Public is the client-facing view of a User with credential material
// excluded. Every response body uses this shape, never User itself.
type Public struct {
	ID            string    `json:"id"`
	FullName      string    `json:"fullname"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (u *User) Sanitized() Public {
	return Public{
		ID:            u.ID,
		FullName:      u.FullName,
		Username:      u.Username,
		Email:         u.Email,
		AvatarURL:     u.AvatarURL,
		CoverImageURL: u.CoverImageURL,
		CreatedAt:     u.CreatedAt,
	}
}
