package models

import "time"

// CartItem is one (product, pack size) line in a user's cart. Lines are
// hard-deleted.
type CartItem struct {
	ID        uint      `gorm:"primaryKey"                                     json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_cart_line,priority:1"  json:"user_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_cart_line,priority:2"  json:"product_id"`
	Size      string    `gorm:"size:10;not null;uniqueIndex:idx_cart_line,priority:3" json:"size"`
	Quantity  int       `gorm:"not null"                                       json:"quantity"`
	CreatedAt time.Time `json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}
