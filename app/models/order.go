package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a placed order. Amounts are frozen at checkout; TotalAmount is
// SubtotalAmount × 1.18 without rounding.
type Order struct {
	gorm.Model
	UserID         uint            `gorm:"not null;index"                    json:"user_id"`
	AddressID      uint            `gorm:"not null"                          json:"address_id"`
	SubtotalAmount decimal.Decimal `gorm:"type:decimal(14,4);not null"       json:"subtotal_amount"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(14,4);not null"       json:"tax_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(14,4);not null"       json:"total_amount"`
	Status         string          `gorm:"size:20;not null;default:pending"  json:"status"`
	PaymentStatus  string          `gorm:"size:20;not null;default:pending"  json:"payment_status"`
	PaymentID      *string         `gorm:"size:255"                          json:"payment_id"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// OrderItem freezes the product name and unit price at purchase time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey"                   json:"id"`
	OrderID     uint            `gorm:"not null;index"               json:"order_id"`
	ProductID   uint            `gorm:"not null"                     json:"product_id"`
	ProductName string          `gorm:"size:255;not null"            json:"product_name"`
	Size        string          `gorm:"size:10;not null"             json:"size"`
	Quantity    int             `gorm:"not null"                     json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null"  json:"price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(14,2);not null"  json:"line_total"`
}
