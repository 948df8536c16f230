package domain

import "time"

type Product struct {
	ID        int64
	Name      string
	Image     string
	Credits   int
	CreatedAt time.Time
}
