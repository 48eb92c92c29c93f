package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shop represents a seller's shop. It is created on first price-list import
// and reused by name on subsequent imports.
type Shop struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	Name      string     `json:"name" gorm:"not null;uniqueIndex"`
	URL       *string    `json:"url,omitempty"`
	SellerID  *uuid.UUID `json:"sellerId,omitempty" gorm:"type:uuid;uniqueIndex"`
	IsActive  bool       `json:"isActive" gorm:"not null;default:true"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Category keeps the supplier-assigned integer identifier as its primary key.
// It is never auto-generated; re-import with the same id overwrites the name.
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string `json:"name" gorm:"not null"`
}

// ShopCategory is the explicit join table for the many-to-many
// category <-> shop relation. Rows are added idempotently during import and
// never removed, even when a later import drops the category.
type ShopCategory struct {
	ShopID     uuid.UUID `json:"shopId" gorm:"type:uuid;primaryKey"`
	CategoryID uint      `json:"categoryId" gorm:"primaryKey"`
}

func (ShopCategory) TableName() string {
	return "shop_categories"
}

// Product identity for upsert purposes is the (name, model, category) group.
type Product struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name       string    `json:"name" gorm:"not null;index:idx_products_identity,unique"`
	Model      string    `json:"model" gorm:"index:idx_products_identity,unique"`
	CategoryID *uint     `json:"categoryId,omitempty" gorm:"index:idx_products_identity,unique"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`

	Attributes []ProductAttribute `json:"attributes,omitempty" gorm:"foreignKey:ProductID"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Listing is a shop's entry for a product: the supplier's external id plus
// shop-specific quantity and prices. One listing per (shop, product, external
// id) is enforced by a composite unique index.
type Listing struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ShopID     uuid.UUID `json:"shopId" gorm:"type:uuid;not null;index:idx_listings_shop_product_ext,unique"`
	ProductID  uuid.UUID `json:"productId" gorm:"type:uuid;not null;index:idx_listings_shop_product_ext,unique"`
	ExternalID uint      `json:"externalId" gorm:"not null;index:idx_listings_shop_product_ext,unique"`
	Quantity   int       `json:"quantity" gorm:"not null"`
	Price      int       `json:"price" gorm:"not null"`
	PriceRRC   int       `json:"priceRrc" gorm:"not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	Shop    *Shop    `json:"shop,omitempty" gorm:"foreignKey:ShopID"`
	Product *Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// Parameter is a globally shared attribute name ("color", "weight", ...).
type Parameter struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Name string    `json:"name" gorm:"not null;uniqueIndex"`
}

func (p *Parameter) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProductAttribute links a product to a parameter with a value string.
// One row per (product, parameter); the value is overwritten on re-import.
type ProductAttribute struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	ProductID   uuid.UUID  `json:"productId" gorm:"type:uuid;not null;index:idx_attributes_product_parameter,unique"`
	ParameterID uuid.UUID  `json:"parameterId" gorm:"type:uuid;not null;index:idx_attributes_product_parameter,unique"`
	Value       string     `json:"value" gorm:"not null"`
	Parameter   *Parameter `json:"parameter,omitempty" gorm:"foreignKey:ParameterID"`
}

func (a *ProductAttribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Shop model
func (Shop) TableName() string {
	return "shops"
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for the Listing model
func (Listing) TableName() string {
	return "listings"
}

// TableName returns the table name for the Parameter model
func (Parameter) TableName() string {
	return "parameters"
}

// TableName returns the table name for the ProductAttribute model
func (ProductAttribute) TableName() string {
	return "product_attributes"
}
