package models

import "time"

// User is an authenticated API user. TinkoffToken is the user's personal
// Tinkoff Invest API token; nil until the user stores one.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	APIToken     string    `json:"-"`
	TinkoffToken *string   `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
