package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/vngglass/orderchat/internal/conversation"
)

// Directory resolves customers by phone number.
type Directory struct {
	db *gorm.DB
}

var _ conversation.CustomerDirectory = (*Directory)(nil)

func NewDirectory(db *gorm.DB) *Directory {
	return &Directory{db: db}
}

// FindByPhone looks up a customer by national-form phone number. The input
// is normalised again so stored numbers and chat input compare equal even
// when one carries a country prefix.
func (d *Directory) FindByPhone(ctx context.Context, phone string) (*conversation.Customer, error) {
	normalized := conversation.NormalizePhone(phone)
	if normalized == "" {
		return nil, nil
	}

	var c Customer
	err := d.db.WithContext(ctx).Where("phone = ?", normalized).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("customer lookup: %w", err)
	}
	return &conversation.Customer{ID: c.ID, Name: strings.TrimSpace(c.Name)}, nil
}
