package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog entry. BasePrice is the price of the 1kg pack.
type Product struct {
	gorm.Model
	Name          string          `gorm:"size:255;not null;uniqueIndex"  json:"name"`
	Description   string          `gorm:"type:text"                      json:"description"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"    json:"base_price"`
	Image         string          `gorm:"size:255"                       json:"image"`
	Category      string          `gorm:"size:100;index"                 json:"category,omitempty"`
	StockQuantity int             `gorm:"not null;default:0"             json:"stock_quantity"`
	IsActive      bool            `gorm:"not null;default:true;index"    json:"is_active"`
}
