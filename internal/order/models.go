package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// ZaloOrder is a sale order materialised from a chat conversation.
type ZaloOrder struct {
	ID            uint            `gorm:"primaryKey"`
	OrderCode     string          `gorm:"size:40;uniqueIndex;not null"`
	CustomerID    uint            `gorm:"index;not null"`
	CustomerPhone string          `gorm:"size:16;not null"`
	ChannelUserID string          `gorm:"size:64;index;not null"`
	Status        string          `gorm:"size:16;not null"`
	Total         decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Details       []ZaloOrderDetail
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ZaloOrderDetail is one priced line of an order.
type ZaloOrderDetail struct {
	ID          uint            `gorm:"primaryKey"`
	ZaloOrderID uint            `gorm:"index;not null"`
	ProductCode string          `gorm:"size:32;not null"`
	ProductType string          `gorm:"size:64"`
	Width       float64         `gorm:"not null"`
	Height      float64         `gorm:"not null"`
	Thickness   float64         `gorm:"not null"`
	Quantity    int             `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
}
