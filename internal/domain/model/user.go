package model

import "time"

type User struct {
	ID        string // UUID
	Email     string
	Name      string
	Role      string // "user" | "admin"
	CreatedAt time.Time
}
