package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Lead is a CRM prospect: a supplier to procure from or a buyer to sell to.
type Lead struct {
	ID                uint                `gorm:"primaryKey"                          json:"id"`
	Type              string              `gorm:"size:20;not null;index"              json:"type"`
	Company           *string             `gorm:"size:255"                            json:"company"`
	PersonName        string              `gorm:"size:255;not null"                   json:"person_name"`
	Phone             *string             `gorm:"size:20"                             json:"phone"`
	Email             *string             `gorm:"size:255"                            json:"email"`
	Address           *string             `gorm:"type:text"                           json:"address"`
	City              *string             `gorm:"size:100"                            json:"city"`
	State             *string             `gorm:"size:100"                            json:"state"`
	Country           string              `gorm:"size:100;not null;default:India"     json:"country"`
	Pincode           *string             `gorm:"size:10"                             json:"pincode"`
	Stage             string              `gorm:"size:10;not null;default:cold;index" json:"stage"`
	NextFollowUpAt    *datatypes.Date     `gorm:"index"                               json:"next_follow_up_at"`
	Status            string              `gorm:"size:10;not null;default:open;index" json:"status"`
	TentativeOrderQty decimal.NullDecimal `gorm:"type:decimal(12,3)"                  json:"tentative_order_qty"`
	TentativeQtyUnit  *string             `gorm:"size:20"                             json:"tentative_qty_unit"`
	Industry          *string             `gorm:"size:20"                             json:"industry"`
	Notes             *string             `gorm:"type:text"                           json:"notes"`
	OwnerID           *uint               `gorm:"index"                               json:"owner_id"`
	SourceID          *uint               `json:"source_id"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// LeadActivity is a timeline entry on a lead (call, note, visit, ...).
type LeadActivity struct {
	ID      uint              `gorm:"primaryKey"              json:"id"`
	LeadID  uint              `gorm:"not null;index"          json:"lead_id"`
	ActorID uint              `gorm:"not null"                json:"actor_id"`
	Kind    string            `gorm:"size:50;not null"        json:"kind"`
	Body    string            `gorm:"type:text"               json:"body"`
	At      time.Time         `gorm:"not null;index"          json:"at"`
	Meta    datatypes.JSONMap `json:"meta"`
}
