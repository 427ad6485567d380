// Package models holds the gorm models and the closed enumerations stored
// in their columns.
package models

import "github.com/shopspring/decimal"

func init() {
	// Money is rendered as JSON numbers (87.32), not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleCRM      = "crm"
)

const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderShipped   = "shipped"
	OrderDelivered = "delivered"
	OrderCancelled = "cancelled"
)

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// Lead enumerations. The slices are the accepted values, in display order.
var (
	LeadTypes      = []string{"procurement", "sales"}
	LeadStages     = []string{"hot", "warm", "cold"}
	LeadStatuses   = []string{"open", "hold", "wip", "rejected", "won", "lost"}
	LeadIndustries = []string{"fmcg", "fnb", "pharma", "ayurvedic", "others"}
)

const (
	LeadStageCold  = "cold"
	LeadStatusOpen = "open"
	DefaultCountry = "India"
)
