package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderState is the order status enum. There is no enforced transition graph;
// any state may be set to any other.
type OrderState string

const (
	OrderStateBasket    OrderState = "basket"
	OrderStateNew       OrderState = "new"
	OrderStateConfirmed OrderState = "confirmed"
	OrderStateAssembled OrderState = "assembled"
	OrderStateSent      OrderState = "sent"
	OrderStateDelivered OrderState = "delivered"
	OrderStateCanceled  OrderState = "canceled"
)

// ValidOrderState reports whether s is a known order state.
func ValidOrderState(s OrderState) bool {
	switch s {
	case OrderStateBasket, OrderStateNew, OrderStateConfirmed, OrderStateAssembled,
		OrderStateSent, OrderStateDelivered, OrderStateCanceled:
		return true
	}
	return false
}

// Order is an order header. A user's basket is an order in state "basket".
type Order struct {
	ID        uuid.UUID  `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID  `json:"userId" gorm:"type:uuid;not null;index"`
	State     OrderState `json:"state" gorm:"type:varchar(16);not null"`
	ContactID *uuid.UUID `json:"contactId,omitempty" gorm:"type:uuid"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Contact *Contact    `json:"contact,omitempty" gorm:"foreignKey:ContactID"`
	Items   []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is one line of an order, referencing a shop listing.
type OrderItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	OrderID   uuid.UUID `json:"-" gorm:"type:uuid;not null;index:idx_order_items_order_listing,unique"`
	ListingID uuid.UUID `json:"listingId" gorm:"type:uuid;not null;index:idx_order_items_order_listing,unique"`
	Quantity  int       `json:"quantity" gorm:"not null"`

	Listing *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// AddToBasketRequest represents a request to add a listing to the basket
type AddToBasketRequest struct {
	ListingID string `json:"listing_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// PlaceOrderRequest promotes the basket to a new order
type PlaceOrderRequest struct {
	ContactID string `json:"contact_id" binding:"required"`
}

// UpdateOrderStateRequest sets an order's state
type UpdateOrderStateRequest struct {
	State OrderState `json:"state" binding:"required"`
}
