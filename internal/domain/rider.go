package domain

import "time"

// Rider represents a registered rider account.
type Rider struct {
	ID        string
	Name      string
	Phone     string
	CreatedAt time.Time
}
