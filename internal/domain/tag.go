package domain

import "time"

// Tag labels customers and other content types.
type Tag struct {
	ID        string
	Name      string
	Type      string
	CreatedAt time.Time
}
