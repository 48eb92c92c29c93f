package repository

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"procurement-service/internal/config"
	"procurement-service/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))
	return db
}

func TestGetOrCreateShop(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t), nil)
	ctx := context.Background()
	sellerID := uuid.New()

	shop, err := repo.GetOrCreateShop(ctx, "Acme", sellerID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", shop.Name)
	assert.True(t, shop.IsActive)
	require.NotNil(t, shop.SellerID)
	assert.Equal(t, sellerID, *shop.SellerID)

	again, err := repo.GetOrCreateShop(ctx, "Acme", sellerID)
	require.NoError(t, err)
	assert.Equal(t, shop.ID, again.ID)
}

func TestUpsertCategory_OverwritesName(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t), nil)
	ctx := context.Background()

	created, err := repo.UpsertCategory(ctx, 224, "Smartphones")
	require.NoError(t, err)
	assert.Equal(t, uint(224), created.ID)

	renamed, err := repo.UpsertCategory(ctx, 224, "Phones")
	require.NoError(t, err)
	assert.Equal(t, uint(224), renamed.ID)
	assert.Equal(t, "Phones", renamed.Name)
}

func TestAttachCategoryToShop_Idempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db, nil)
	ctx := context.Background()

	shop, err := repo.GetOrCreateShop(ctx, "Acme", uuid.New())
	require.NoError(t, err)
	_, err = repo.UpsertCategory(ctx, 1, "Tools")
	require.NoError(t, err)

	require.NoError(t, repo.AttachCategoryToShop(ctx, 1, shop.ID))
	require.NoError(t, repo.AttachCategoryToShop(ctx, 1, shop.ID))

	var n int64
	require.NoError(t, db.Model(&models.ShopCategory{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGetOrCreateProduct_IdentityIncludesCategory(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t), nil)
	ctx := context.Background()

	_, err := repo.UpsertCategory(ctx, 1, "Tools")
	require.NoError(t, err)
	_, err = repo.UpsertCategory(ctx, 2, "Hardware")
	require.NoError(t, err)

	first, err := repo.GetOrCreateProduct(ctx, "Hammer", "h-1", 1)
	require.NoError(t, err)
	same, err := repo.GetOrCreateProduct(ctx, "Hammer", "h-1", 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, same.ID)

	// same name and model under another category is a different product
	other, err := repo.GetOrCreateProduct(ctx, "Hammer", "h-1", 2)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestUpsertListing(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t), nil)
	ctx := context.Background()

	shop, err := repo.GetOrCreateShop(ctx, "Acme", uuid.New())
	require.NoError(t, err)
	_, err = repo.UpsertCategory(ctx, 1, "Tools")
	require.NoError(t, err)
	product, err := repo.GetOrCreateProduct(ctx, "Hammer", "h-1", 1)
	require.NoError(t, err)

	listing, created, err := repo.UpsertListing(ctx, shop.ID, product.ID, 100, 10, 400, 500)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 10, listing.Quantity)

	updated, created, err := repo.UpsertListing(ctx, shop.ID, product.ID, 100, 7, 450, 550)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, listing.ID, updated.ID)
	assert.Equal(t, 7, updated.Quantity)
	assert.Equal(t, 450, updated.Price)
	assert.Equal(t, 550, updated.PriceRRC)
}

func TestDeleteListingsByShop(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t), nil)
	ctx := context.Background()

	shop, err := repo.GetOrCreateShop(ctx, "Acme", uuid.New())
	require.NoError(t, err)
	other, err := repo.GetOrCreateShop(ctx, "Bolt Depot", uuid.New())
	require.NoError(t, err)
	_, err = repo.UpsertCategory(ctx, 1, "Tools")
	require.NoError(t, err)
	product, err := repo.GetOrCreateProduct(ctx, "Hammer", "h-1", 1)
	require.NoError(t, err)

	_, _, err = repo.UpsertListing(ctx, shop.ID, product.ID, 100, 10, 400, 500)
	require.NoError(t, err)
	_, _, err = repo.UpsertListing(ctx, other.ID, product.ID, 200, 4, 390, 480)
	require.NoError(t, err)

	removed, err := repo.DeleteListingsByShop(ctx, shop.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	remaining, err := repo.GetListings(ctx, nil, "", 50, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, other.ID, remaining[0].ShopID)
}

func TestUpsertProductAttribute_OverwritesValue(t *testing.T) {
	db := newTestDB(t)
	repo := NewCatalogRepository(db, nil)
	ctx := context.Background()

	_, err := repo.UpsertCategory(ctx, 1, "Tools")
	require.NoError(t, err)
	product, err := repo.GetOrCreateProduct(ctx, "Hammer", "h-1", 1)
	require.NoError(t, err)
	parameter, err := repo.GetOrCreateParameter(ctx, "weight")
	require.NoError(t, err)

	require.NoError(t, repo.UpsertProductAttribute(ctx, product.ID, parameter.ID, "1kg"))
	require.NoError(t, repo.UpsertProductAttribute(ctx, product.ID, parameter.ID, "2kg"))

	var attrs []models.ProductAttribute
	require.NoError(t, db.Find(&attrs).Error)
	require.Len(t, attrs, 1)
	assert.Equal(t, "2kg", attrs[0].Value)
}

func TestSearchProducts(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t), nil)
	ctx := context.Background()

	_, err := repo.UpsertCategory(ctx, 1, "Tools")
	require.NoError(t, err)
	_, err = repo.GetOrCreateProduct(ctx, "Hammer", "h-1", 1)
	require.NoError(t, err)
	_, err = repo.GetOrCreateProduct(ctx, "Screwdriver", "sd-2", 1)
	require.NoError(t, err)

	found, err := repo.SearchProducts(ctx, "Ham", 50, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Hammer", found[0].Name)

	all, err := repo.SearchProducts(ctx, "", 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// pages are ordered by name
	second, err := repo.SearchProducts(ctx, "", 1, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "Screwdriver", second[0].Name)
}

func TestGetListings_FilterByShopAndQuery(t *testing.T) {
	repo := NewCatalogRepository(newTestDB(t), nil)
	ctx := context.Background()

	shop, err := repo.GetOrCreateShop(ctx, "Acme", uuid.New())
	require.NoError(t, err)
	_, err = repo.UpsertCategory(ctx, 1, "Tools")
	require.NoError(t, err)
	hammer, err := repo.GetOrCreateProduct(ctx, "Hammer", "h-1", 1)
	require.NoError(t, err)
	screws, err := repo.GetOrCreateProduct(ctx, "Screws", "s-4x40", 1)
	require.NoError(t, err)

	_, _, err = repo.UpsertListing(ctx, shop.ID, hammer.ID, 100, 10, 400, 500)
	require.NoError(t, err)
	_, _, err = repo.UpsertListing(ctx, shop.ID, screws.ID, 101, 1000, 50, 90)
	require.NoError(t, err)

	byShop, err := repo.GetListings(ctx, &shop.ID, "", 50, 0)
	require.NoError(t, err)
	assert.Len(t, byShop, 2)

	// one listing per page, ordered by external id
	firstPage, err := repo.GetListings(ctx, &shop.ID, "", 1, 0)
	require.NoError(t, err)
	require.Len(t, firstPage, 1)
	assert.Equal(t, uint(100), firstPage[0].ExternalID)
	secondPage, err := repo.GetListings(ctx, &shop.ID, "", 1, 1)
	require.NoError(t, err)
	require.Len(t, secondPage, 1)
	assert.Equal(t, uint(101), secondPage[0].ExternalID)

	byQuery, err := repo.GetListings(ctx, &shop.ID, "Screw", 50, 0)
	require.NoError(t, err)
	require.Len(t, byQuery, 1)
	assert.Equal(t, screws.ID, byQuery[0].ProductID)
	require.NotNil(t, byQuery[0].Product)
	assert.Equal(t, "Screws", byQuery[0].Product.Name)
}
