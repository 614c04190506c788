package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vngglass/orderchat/internal/conversation"
)

var mmPerMetreSquared = decimal.NewFromInt(1_000_000)

// Catalog resolves collected drafts against the product catalog and attaches
// prices. A base structure carries the per-square-metre price; each ordered
// size becomes a GlassVariant, created on first use, whose unit price is the
// base price times the pane area. The line total multiplies by quantity.
type Catalog struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// Resolve returns a copy of the draft with UnitPrice and Total filled in,
// creating the size-specific variant if this is the first order of that
// size. An unknown product code yields a LineError so the conversation can
// tell the customer which line to fix.
func (c *Catalog) Resolve(ctx context.Context, draft conversation.LineDraft) (conversation.LineDraft, error) {
	var base GlassStructure
	err := c.db.WithContext(ctx).Where("product_code = ?", draft.ProductCode).First(&base).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return draft, &conversation.LineError{Draft: draft, Reason: "không có trong danh mục sản phẩm"}
		}
		return draft, fmt.Errorf("product lookup: %w", err)
	}

	variant, err := c.findOrCreateVariant(ctx, &base, draft)
	if err != nil {
		return draft, err
	}

	draft.UnitPrice = variant.UnitPrice
	draft.Total = variant.UnitPrice.Mul(decimal.NewFromInt(int64(draft.Quantity))).Round(2)
	return draft, nil
}

func (c *Catalog) findOrCreateVariant(ctx context.Context, base *GlassStructure, draft conversation.LineDraft) (*GlassVariant, error) {
	var variant GlassVariant
	err := c.db.WithContext(ctx).
		Where("glass_structure_id = ? AND width = ? AND height = ? AND thickness = ?",
			base.ID, draft.Width, draft.Height, draft.Thickness).
		First(&variant).Error
	if err == nil {
		return &variant, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("variant lookup: %w", err)
	}

	area := decimal.NewFromFloat(draft.Width).
		Mul(decimal.NewFromFloat(draft.Height)).
		Div(mmPerMetreSquared)

	variant = GlassVariant{
		GlassStructureID: base.ID,
		Name:             variantName(base, draft),
		Width:            draft.Width,
		Height:           draft.Height,
		Thickness:        draft.Thickness,
		UnitPrice:        base.UnitPrice.Mul(area).Round(2),
	}
	if err := c.db.WithContext(ctx).Create(&variant).Error; err != nil {
		return nil, fmt.Errorf("create variant: %w", err)
	}
	return &variant, nil
}

func variantName(base *GlassStructure, draft conversation.LineDraft) string {
	if draft.Thickness > 0 {
		return fmt.Sprintf("%s %s %gx%gx%g", base.ProductCode, draft.ProductType, draft.Width, draft.Height, draft.Thickness)
	}
	return fmt.Sprintf("%s %s %gx%g", base.ProductCode, draft.ProductType, draft.Width, draft.Height)
}
