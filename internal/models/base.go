package models

import "time"

// Base contains the columns shared by every user-owned table. Rows are hard
// deleted, so there is no DeletedAt.
type Base struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
