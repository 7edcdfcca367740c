// Package model defines data structures for the real-time platform.
package model

import (
	"time"
)

// User is the identity record owned by the points ledger. The core never
// creates users as a side effect; connections arrive already bound to one.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Avatar    string    `json:"avatar,omitempty"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateUserRequest is the request to register a user.
type CreateUserRequest struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}
