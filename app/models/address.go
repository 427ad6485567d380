package models

import "gorm.io/gorm"

// Address is a delivery address. At most one per user has IsDefault set.
type Address struct {
	gorm.Model
	UserID    uint   `gorm:"not null;index"     json:"user_id"`
	FullName  string `gorm:"size:255;not null"  json:"full_name"`
	Phone     string `gorm:"size:20;not null"   json:"phone"`
	FlatNo    string `gorm:"size:100;not null"  json:"flat_no"`
	Street    string `gorm:"size:255;not null"  json:"street"`
	Landmark  string `gorm:"size:255"           json:"landmark,omitempty"`
	City      string `gorm:"size:100;not null"  json:"city"`
	State     string `gorm:"size:100;not null"  json:"state"`
	Pincode   string `gorm:"size:6;not null"    json:"pincode"`
	IsDefault bool   `gorm:"not null;default:false" json:"is_default"`
}
