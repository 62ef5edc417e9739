package models

import "time"

type User struct {
	ID        int       `json:"id" example:"1"`                   // User ID
	Username  string    `json:"username" example:"highroller99"`  // Display / login name
	Email     string    `json:"email" example:"user@example.com"` // User email
	Role      Role      `json:"role" example:"user"`              // user | admin | owner
	VIP       bool      `json:"vip"`
	Banned    bool      `json:"banned"`
	Balance   int64     `json:"balance"` // wallet, in cents
	Version   int       `json:"-"`       // optimistic lock counter on the balance row
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"-"`
}
