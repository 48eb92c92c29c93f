package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"procurement-service/internal/models"
)

// OrderRepository handles baskets and orders. A basket is an order row in
// state "basket"; there is at most one per user.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// GetOrCreateBasket returns the user's basket, creating an empty one when
// absent.
func (r *OrderRepository) GetOrCreateBasket(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND state = ?", userID, models.OrderStateBasket).
		First(&order).Error
	if err == nil {
		return &order, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	order = models.Order{UserID: userID, State: models.OrderStateBasket}
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetBasket loads the user's basket with items, listings and products.
func (r *OrderRepository) GetBasket(ctx context.Context, userID uuid.UUID) (*models.Order, error) {
	basket, err := r.GetOrCreateBasket(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.GetOrder(ctx, userID, basket.ID)
}

// AddItem adds a listing to the order, summing quantities when the listing is
// already present.
func (r *OrderRepository) AddItem(ctx context.Context, orderID, listingID uuid.UUID, quantity int) (*models.OrderItem, error) {
	var item models.OrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND listing_id = ?", orderID, listingID).
		First(&item).Error
	if err == gorm.ErrRecordNotFound {
		item = models.OrderItem{OrderID: orderID, ListingID: listingID, Quantity: quantity}
		if err := r.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
		return &item, nil
	}
	if err != nil {
		return nil, err
	}

	item.Quantity += quantity
	if err := r.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItems deletes the given items from the order. Returns rows removed.
func (r *OrderRepository) RemoveItems(ctx context.Context, orderID uuid.UUID, itemIDs []uuid.UUID) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("order_id = ? AND id IN ?", orderID, itemIDs).
		Delete(&models.OrderItem{})
	return res.RowsAffected, res.Error
}

// PlaceOrder promotes the user's basket into a new order bound to a delivery
// contact. Fails when the basket is missing or empty.
func (r *OrderRepository) PlaceOrder(ctx context.Context, userID, contactID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND state = ?", userID, models.OrderStateBasket).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	if len(order.Items) == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	order.State = models.OrderStateNew
	order.ContactID = &contactID
	if err := r.db.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrders lists the user's placed orders, newest first. Baskets are not
// included.
func (r *OrderRepository) GetOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Items").
		Preload("Items.Listing").
		Preload("Items.Listing.Product").
		Where("user_id = ? AND state <> ?", userID, models.OrderStateBasket).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns one user-owned order with full item detail.
func (r *OrderRepository) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Items").
		Preload("Items.Listing").
		Preload("Items.Listing.Product").
		Preload("Items.Listing.Shop").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetShopOrders lists placed orders containing listings from the given shop.
// Used by sellers to see incoming orders.
func (r *OrderRepository) GetShopOrders(ctx context.Context, shopID uuid.UUID) ([]models.Order, error) {
	var orderIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Distinct("order_items.order_id").
		Joins("JOIN listings ON listings.id = order_items.listing_id").
		Where("listings.shop_id = ?", shopID).
		Pluck("order_items.order_id", &orderIDs).Error
	if err != nil {
		return nil, err
	}
	if len(orderIDs) == 0 {
		return []models.Order{}, nil
	}

	var orders []models.Order
	err = r.db.WithContext(ctx).
		Preload("Contact").
		Preload("Items").
		Preload("Items.Listing").
		Preload("Items.Listing.Product").
		Where("id IN ? AND state <> ?", orderIDs, models.OrderStateBasket).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// SetState overwrites the order state. Any state may follow any other, but
// only for orders the caller owns or, when shopID is given, orders containing
// that shop's listings.
func (r *OrderRepository) SetState(ctx context.Context, orderID uuid.UUID, state models.OrderState, userID uuid.UUID, shopID *uuid.UUID) error {
	scope := r.db.Where("user_id = ?", userID)
	if shopID != nil {
		sub := r.db.Model(&models.OrderItem{}).
			Select("order_items.order_id").
			Joins("JOIN listings ON listings.id = order_items.listing_id").
			Where("listings.shop_id = ?", *shopID)
		scope = scope.Or("id IN (?)", sub)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Where(scope).
		Update("state", state)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
