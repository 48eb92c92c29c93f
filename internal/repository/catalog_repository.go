package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"procurement-service/internal/models"
)

// Cache TTL constants
const (
	ListingCacheTTL  = 2 * time.Minute
	CategoryCacheTTL = 30 * time.Minute // categories rarely change
)

// CatalogRepository is the catalog store: get-or-create and filtered-query
// primitives per entity. The reconciler is the only writer during import.
type CatalogRepository struct {
	db    *gorm.DB
	redis *redis.Client
}

func NewCatalogRepository(db *gorm.DB, redisClient *redis.Client) *CatalogRepository {
	return &CatalogRepository{db: db, redis: redisClient}
}

// GetOrCreateShop resolves a shop by name, creating it when absent, and
// sets/confirms its owning seller.
func (r *CatalogRepository) GetOrCreateShop(ctx context.Context, name string, sellerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&shop).Error
	if err == nil {
		if shop.SellerID == nil || *shop.SellerID != sellerID {
			shop.SellerID = &sellerID
			if err := r.db.WithContext(ctx).Save(&shop).Error; err != nil {
				return nil, err
			}
		}
		return &shop, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	shop = models.Shop{Name: name, SellerID: &sellerID, IsActive: true}
	if err := r.db.WithContext(ctx).Create(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// GetShopBySeller returns the shop owned by the given seller, if any.
func (r *CatalogRepository) GetShopBySeller(ctx context.Context, sellerID uuid.UUID) (*models.Shop, error) {
	var shop models.Shop
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).First(&shop).Error; err != nil {
		return nil, err
	}
	return &shop, nil
}

// UpsertCategory creates the category or overwrites its name in place.
// Category ids come from the source document and are globally unique.
func (r *CatalogRepository) UpsertCategory(ctx context.Context, id uint, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error
	if err == gorm.ErrRecordNotFound {
		category = models.Category{ID: id, Name: name}
		if err := r.db.WithContext(ctx).Create(&category).Error; err != nil {
			return nil, err
		}
		return &category, nil
	}
	if err != nil {
		return nil, err
	}
	if category.Name != name {
		category.Name = name
		if err := r.db.WithContext(ctx).Save(&category).Error; err != nil {
			return nil, err
		}
	}
	return &category, nil
}

// GetCategoryByID looks a category up by its supplier-assigned id.
func (r *CatalogRepository) GetCategoryByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// AttachCategoryToShop adds the shop to the category's shop set. Idempotent;
// associations are never removed by later imports.
func (r *CatalogRepository) AttachCategoryToShop(ctx context.Context, categoryID uint, shopID uuid.UUID) error {
	link := models.ShopCategory{ShopID: shopID, CategoryID: categoryID}
	return r.db.WithContext(ctx).
		Where("shop_id = ? AND category_id = ?", shopID, categoryID).
		FirstOrCreate(&link).Error
}

// GetOrCreateProduct resolves a product by its (name, model, category) identity.
func (r *CatalogRepository) GetOrCreateProduct(ctx context.Context, name, model string, categoryID uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("name = ? AND model = ? AND category_id = ?", name, model, categoryID).
		First(&product).Error
	if err == nil {
		return &product, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	product = models.Product{Name: name, Model: model, CategoryID: &categoryID}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// UpsertListing creates or updates the listing keyed by (shop, product,
// external id), overwriting quantity and prices. Reports whether a row was
// created.
func (r *CatalogRepository) UpsertListing(ctx context.Context, shopID, productID uuid.UUID, externalID uint, quantity, price, priceRRC int) (*models.Listing, bool, error) {
	var listing models.Listing
	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND product_id = ? AND external_id = ?", shopID, productID, externalID).
		First(&listing).Error
	if err == gorm.ErrRecordNotFound {
		listing = models.Listing{
			ShopID:     shopID,
			ProductID:  productID,
			ExternalID: externalID,
			Quantity:   quantity,
			Price:      price,
			PriceRRC:   priceRRC,
		}
		if err := r.db.WithContext(ctx).Create(&listing).Error; err != nil {
			return nil, false, err
		}
		r.invalidateListingCaches(ctx, shopID)
		return &listing, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	if listing.Quantity != quantity || listing.Price != price || listing.PriceRRC != priceRRC {
		listing.Quantity = quantity
		listing.Price = price
		listing.PriceRRC = priceRRC
		if err := r.db.WithContext(ctx).Save(&listing).Error; err != nil {
			return nil, false, err
		}
		r.invalidateListingCaches(ctx, shopID)
	}
	return &listing, false, nil
}

// DeleteListingsByShop removes all listings of a shop. Used by the
// full-replace import path before inserting the current document's goods.
func (r *CatalogRepository) DeleteListingsByShop(ctx context.Context, shopID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("shop_id = ?", shopID).Delete(&models.Listing{})
	if res.Error != nil {
		return 0, res.Error
	}
	r.invalidateListingCaches(ctx, shopID)
	return res.RowsAffected, nil
}

// GetOrCreateParameter resolves a parameter by its globally unique name.
func (r *CatalogRepository) GetOrCreateParameter(ctx context.Context, name string) (*models.Parameter, error) {
	var parameter models.Parameter
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&parameter).Error
	if err == nil {
		return &parameter, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	parameter = models.Parameter{Name: name}
	if err := r.db.WithContext(ctx).Create(&parameter).Error; err != nil {
		return nil, err
	}
	return &parameter, nil
}

// UpsertProductAttribute creates or overwrites the value for a
// (product, parameter) pair.
func (r *CatalogRepository) UpsertProductAttribute(ctx context.Context, productID, parameterID uuid.UUID, value string) error {
	var attr models.ProductAttribute
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND parameter_id = ?", productID, parameterID).
		First(&attr).Error
	if err == gorm.ErrRecordNotFound {
		attr = models.ProductAttribute{ProductID: productID, ParameterID: parameterID, Value: value}
		return r.db.WithContext(ctx).Create(&attr).Error
	}
	if err != nil {
		return err
	}
	if attr.Value != value {
		attr.Value = value
		return r.db.WithContext(ctx).Save(&attr).Error
	}
	return nil
}

// Query primitives for the public catalog API

// GetShops lists shops, optionally filtered by name and availability.
func (r *CatalogRepository) GetShops(ctx context.Context, name string, active *bool, limit, offset int) ([]models.Shop, error) {
	query := r.db.WithContext(ctx).Model(&models.Shop{})
	if name != "" {
		query = query.Where("name = ?", name)
	}
	if active != nil {
		query = query.Where("is_active = ?", *active)
	}
	var shops []models.Shop
	if err := query.Order("name").Limit(limit).Offset(offset).Find(&shops).Error; err != nil {
		return nil, err
	}
	return shops, nil
}

// GetCategories lists all categories, with a Redis read cache.
func (r *CatalogRepository) GetCategories(ctx context.Context) ([]models.Category, error) {
	const cacheKey = "procurement:categories"

	if r.redis != nil {
		if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
			var cached []models.Category
			if err := json.Unmarshal([]byte(val), &cached); err == nil {
				return cached, nil
			}
		}
	}

	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(categories); err == nil {
			r.redis.Set(ctx, cacheKey, data, CategoryCacheTTL)
		}
	}
	return categories, nil
}

// SearchProducts searches products by name or model substring.
func (r *CatalogRepository) SearchProducts(ctx context.Context, q string, limit, offset int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{}).
		Preload("Category").
		Preload("Attributes").
		Preload("Attributes.Parameter")
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Where("name LIKE ? OR model LIKE ?", pattern, pattern)
	}
	var products []models.Product
	if err := query.Order("name").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetListings lists shop listings, optionally scoped to one shop and filtered
// by product name/model substring. Whole-shop pages are cached.
func (r *CatalogRepository) GetListings(ctx context.Context, shopID *uuid.UUID, q string, limit, offset int) ([]models.Listing, error) {
	cacheable := shopID != nil && q == ""
	cacheKey := ""
	if cacheable {
		cacheKey = fmt.Sprintf("procurement:listings:%s:%d:%d", shopID.String(), limit, offset)
		if r.redis != nil {
			if val, err := r.redis.Get(ctx, cacheKey).Result(); err == nil {
				var cached []models.Listing
				if err := json.Unmarshal([]byte(val), &cached); err == nil {
					return cached, nil
				}
			}
		}
	}

	query := r.db.WithContext(ctx).Model(&models.Listing{}).
		Preload("Shop").
		Preload("Product").
		Preload("Product.Category")
	if shopID != nil {
		query = query.Where("shop_id = ?", *shopID)
	}
	if q != "" {
		pattern := "%" + q + "%"
		query = query.Joins("JOIN products ON products.id = listings.product_id").
			Where("products.name LIKE ? OR products.model LIKE ?", pattern, pattern)
	}
	var listings []models.Listing
	if err := query.Order("listings.external_id").Limit(limit).Offset(offset).Find(&listings).Error; err != nil {
		return nil, err
	}

	if cacheable && r.redis != nil {
		if data, err := json.Marshal(listings); err == nil {
			r.redis.Set(ctx, cacheKey, data, ListingCacheTTL)
		}
	}
	return listings, nil
}

// GetListingByID returns one listing.
func (r *CatalogRepository) GetListingByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&listing).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

// invalidateListingCaches drops cached listing pages for a shop after writes.
func (r *CatalogRepository) invalidateListingCaches(ctx context.Context, shopID uuid.UUID) {
	if r.redis == nil {
		return
	}
	pattern := fmt.Sprintf("procurement:listings:%s:*", shopID.String())
	iter := r.redis.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		r.redis.Del(ctx, iter.Val())
	}
	r.redis.Del(ctx, "procurement:categories")
}
