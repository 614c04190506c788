package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vngglass/orderchat/internal/catalog"
	"github.com/vngglass/orderchat/internal/conversation"
	logx "github.com/vngglass/orderchat/pkg/logger"
)

// Finalizer turns a confirmed conversation into a persisted sale order.
// Pricing and persistence run inside one transaction: either every line is
// resolved and the whole order committed, or nothing is written.
type Finalizer struct {
	db *gorm.DB
}

var _ conversation.Finalizer = (*Finalizer)(nil)

func NewFinalizer(db *gorm.DB) *Finalizer {
	return &Finalizer{db: db}
}

// Finalize prices every collected draft, writes the order with its details
// and returns the summary used for the confirmation message.
func (f *Finalizer) Finalize(ctx context.Context, sess *conversation.Session) (*conversation.OrderSummary, error) {
	if len(sess.PartialOrder) == 0 {
		return nil, errors.New("no order lines to finalize")
	}
	if sess.CustomerID == nil {
		return nil, errors.New("order has no resolved customer")
	}

	summary := &conversation.OrderSummary{
		OrderCode: newOrderCode(),
	}

	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cat := catalog.New(tx)

		total := decimal.Zero
		priced := make([]conversation.LineDraft, 0, len(sess.PartialOrder))
		for _, draft := range sess.PartialOrder {
			line, err := cat.Resolve(ctx, draft)
			if err != nil {
				return err
			}
			priced = append(priced, line)
			total = total.Add(line.Total)
		}

		ord := ZaloOrder{
			OrderCode:     summary.OrderCode,
			CustomerID:    *sess.CustomerID,
			CustomerPhone: sess.CustomerPhone,
			ChannelUserID: sess.UserID,
			Status:        StatusConfirmed,
			Total:         total,
		}
		for _, line := range priced {
			ord.Details = append(ord.Details, ZaloOrderDetail{
				ProductCode: line.ProductCode,
				ProductType: line.ProductType,
				Width:       line.Width,
				Height:      line.Height,
				Thickness:   line.Thickness,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Total:       line.Total,
			})
		}
		if err := tx.Create(&ord).Error; err != nil {
			return fmt.Errorf("persist order: %w", err)
		}

		summary.Lines = priced
		summary.Total = total
		return nil
	})
	if err != nil {
		return nil, err
	}

	logx.Info().
		Str("order_code", summary.OrderCode).
		Str("user_id", sess.UserID).
		Int("lines", len(summary.Lines)).
		Msg("order finalized")
	return summary, nil
}

// newOrderCode builds a short human-readable order code, unique via a uuid
// fragment.
func newOrderCode() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:8]
	return fmt.Sprintf("ZL-%s-%s", time.Now().UTC().Format("20060102"), suffix)
}
