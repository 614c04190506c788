package catalog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vngglass/orderchat/internal/conversation"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&Customer{}, &GlassStructure{}, &GlassVariant{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&Customer{Name: "Anh Minh", Phone: "0901234567"}).Error)
	require.NoError(t, db.Create(&GlassStructure{
		ProductCode: "EI90",
		ProductName: "Kính chống cháy EI90",
		UnitPrice:   decimal.NewFromInt(500_000),
	}).Error)
	return db
}

func TestDirectoryFindByPhone(t *testing.T) {
	db := setupCatalogTestDB(t)
	dir := NewDirectory(db)
	ctx := context.Background()

	t.Run("exact match", func(t *testing.T) {
		c, err := dir.FindByPhone(ctx, "0901234567")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "Anh Minh", c.Name)
	})

	t.Run("country prefix folds before compare", func(t *testing.T) {
		c, err := dir.FindByPhone(ctx, "+84901234567")
		require.NoError(t, err)
		require.NotNil(t, c)
	})

	t.Run("unknown phone", func(t *testing.T) {
		c, err := dir.FindByPhone(ctx, "0999999999")
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("empty input", func(t *testing.T) {
		c, err := dir.FindByPhone(ctx, "")
		require.NoError(t, err)
		assert.Nil(t, c)
	})
}

func TestCatalogResolve(t *testing.T) {
	db := setupCatalogTestDB(t)
	cat := New(db)
	ctx := context.Background()

	t.Run("area based pricing", func(t *testing.T) {
		line, err := cat.Resolve(ctx, conversation.LineDraft{
			ProductCode: "EI90", ProductType: "MB",
			Width: 1000, Height: 2000, Thickness: 25, Quantity: 3,
		})
		require.NoError(t, err)
		// 2 m2 at 500,000 VND/m2
		assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(1_000_000)), "unit %s", line.UnitPrice)
		assert.True(t, line.Total.Equal(decimal.NewFromInt(3_000_000)), "total %s", line.Total)
	})

	t.Run("first resolution creates the size variant", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&GlassVariant{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)

		var variant GlassVariant
		require.NoError(t, db.First(&variant).Error)
		assert.Equal(t, "EI90 MB 1000x2000x25", variant.Name)
		assert.True(t, variant.UnitPrice.Equal(decimal.NewFromInt(1_000_000)))
	})

	t.Run("same size reuses the variant", func(t *testing.T) {
		_, err := cat.Resolve(ctx, conversation.LineDraft{
			ProductCode: "EI90", ProductType: "MB",
			Width: 1000, Height: 2000, Thickness: 25, Quantity: 1,
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&GlassVariant{}).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})

	t.Run("new size creates another variant", func(t *testing.T) {
		line, err := cat.Resolve(ctx, conversation.LineDraft{
			ProductCode: "EI90", ProductType: "MB",
			Width: 333, Height: 333, Thickness: 10, Quantity: 1,
		})
		require.NoError(t, err)
		assert.True(t, line.UnitPrice.Equal(decimal.NewFromFloat(55444.50)), "unit %s", line.UnitPrice)

		var count int64
		require.NoError(t, db.Model(&GlassVariant{}).Count(&count).Error)
		assert.EqualValues(t, 2, count)
	})

	t.Run("unknown code yields line error", func(t *testing.T) {
		draft := conversation.LineDraft{ProductCode: "NOPE", Width: 100, Height: 100, Quantity: 1}
		_, err := cat.Resolve(ctx, draft)
		require.Error(t, err)
		lineErr, ok := conversation.AsLineError(err)
		require.True(t, ok)
		assert.Equal(t, "NOPE", lineErr.Draft.ProductCode)
	})
}
