package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a storefront customer or a staff member (admin, crm).
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null"             json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"` // lower-cased
	Password string `gorm:"size:255;not null"             json:"-"`     // bcrypt hash
	Phone    string `gorm:"size:20"                       json:"phone,omitempty"`
	Role     string `gorm:"size:20;not null;default:customer" json:"role"`
	IsActive bool   `gorm:"not null;default:true"         json:"is_active"`

	// Password reset state. A nil ResetCode means no reset is pending.
	ResetCode     *string    `gorm:"size:6"               json:"-"`
	ResetExpiry   *time.Time `json:"-"`
	OTPAttempts   int        `gorm:"not null;default:0"   json:"-"`
	LastOTPSentAt *time.Time `json:"-"`
}
