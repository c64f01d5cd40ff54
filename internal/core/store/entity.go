package store

import "time"

// Store は店舗エンティティです。
type Store struct {
	ID        string
	Name      string
	Phone     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
