package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a registered buyer. Phone is stored in the leading-zero
// national form, matching what the phone extractor produces.
type Customer struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:255;not null"`
	Phone     string `gorm:"size:16;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GlassStructure is one sellable glass product. UnitPrice is VND per square
// metre of pane.
type GlassStructure struct {
	ID          uint            `gorm:"primaryKey"`
	ProductCode string          `gorm:"size:32;uniqueIndex;not null"`
	ProductName string          `gorm:"size:255;not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GlassVariant is a size-specific item derived from a base structure,
// created the first time an order references that size. UnitPrice is VND
// per pane.
type GlassVariant struct {
	ID               uint            `gorm:"primaryKey"`
	GlassStructureID uint            `gorm:"index:idx_variant_dims;not null"`
	Name             string          `gorm:"size:255;not null"`
	Width            float64         `gorm:"index:idx_variant_dims;not null"`
	Height           float64         `gorm:"index:idx_variant_dims;not null"`
	Thickness        float64         `gorm:"index:idx_variant_dims;not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt        time.Time
}
