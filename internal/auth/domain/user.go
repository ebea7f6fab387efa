package domain

import "time"

type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Role         string
	Level        int
	LastLoginAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

type Session struct {
	ID        string
	UserID    string
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type LoginAttempt struct {
	ID          string
	Identifier  string
	IPAddress   string
	AttemptTime time.Time
	Successful  bool
}
