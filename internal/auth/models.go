package auth

import "time"

const (
	RoleHomeowner  = "HOMEOWNER"
	RoleContractor = "CONTRACTOR"
)

type Session struct {
	SessionID string    `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"not null;unique" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

type User struct {
	UserID         string     `gorm:"primaryKey" json:"user_id"`
	Email          string     `gorm:"not null;uniqueIndex" json:"email"`
	Name           string     `gorm:"not null" json:"name"`
	HashedPassword string     `gorm:"not null" json:"-"`
	Role           string     `gorm:"not null" json:"role"`
	EmailVerified  *time.Time `json:"email_verified,omitempty"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}

func (Session) TableName() string { return "app_auth.sessions" }
func (User) TableName() string    { return "app_auth.users" }

// MeResponse is the public view of a user returned by login and /me.
type MeResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

func (u *User) me() MeResponse {
	return MeResponse{UserID: u.UserID, Email: u.Email, Name: u.Name, Role: u.Role}
}
