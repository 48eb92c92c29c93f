package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"procurement-service/internal/events"
	"procurement-service/internal/models"
	"procurement-service/internal/repository"
)

// OrderHandler serves baskets and orders for buyers, and incoming orders for
// sellers.
type OrderHandler struct {
	orders  *repository.OrderRepository
	catalog *repository.CatalogRepository
	users   *repository.UserRepository
	sink    events.Sink
	logger  *logrus.Logger
}

func NewOrderHandler(orders *repository.OrderRepository, catalog *repository.CatalogRepository, users *repository.UserRepository, sink events.Sink, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		catalog: catalog,
		users:   users,
		sink:    sink,
		logger:  logger,
	}
}

// GetBasket returns the user's basket with items.
// @Summary Get basket
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DataResponse
// @Router /basket [get]
func (h *OrderHandler) GetBasket(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	basket, err := h.orders.GetBasket(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load basket")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to load basket"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: basket})
}

// AddToBasket adds a listing to the basket, summing quantities on repeat.
// @Summary Add to basket
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.AddToBasketRequest true "Listing and quantity"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /basket [post]
func (h *OrderHandler) AddToBasket(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	var req models.AddToBasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Listing id and positive quantity are required"))
		return
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid listing id"))
		return
	}
	if _, err := h.catalog.GetListingByID(c.Request.Context(), listingID); err != nil {
		c.JSON(http.StatusNotFound, models.Fail("Listing not found"))
		return
	}

	basket, err := h.orders.GetOrCreateBasket(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load basket")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to load basket"))
		return
	}

	if _, err := h.orders.AddItem(c.Request.Context(), basket.ID, listingID, req.Quantity); err != nil {
		h.logger.WithError(err).Error("Failed to add basket item")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to add item"))
		return
	}

	c.JSON(http.StatusOK, models.OK())
}

// RemoveFromBasket deletes items from the basket by item id.
// @Summary Remove from basket
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.DeleteContactsRequest true "Comma-separated item ids"
// @Success 200 {object} models.StatusResponse
// @Router /basket [delete]
func (h *OrderHandler) RemoveFromBasket(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	var req models.DeleteContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Items list is required"))
		return
	}

	ids, ok := parseIDList(req.Items)
	if !ok {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid item id list"))
		return
	}

	basket, err := h.orders.GetOrCreateBasket(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load basket")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to load basket"))
		return
	}

	if _, err := h.orders.RemoveItems(c.Request.Context(), basket.ID, ids); err != nil {
		h.logger.WithError(err).Error("Failed to remove basket items")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to remove items"))
		return
	}

	c.JSON(http.StatusOK, models.OK())
}

// PlaceOrder promotes the basket to a new order bound to a contact.
// @Summary Place order
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PlaceOrderRequest true "Delivery contact id"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /orders [post]
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	var req models.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Contact id is required"))
		return
	}

	contactID, err := uuid.Parse(req.ContactID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid contact id"))
		return
	}
	if _, err := h.users.GetContact(c.Request.Context(), userID, contactID); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Contact not found"))
		return
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), userID, contactID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Basket is empty"))
		return
	}

	h.sink.Notify(events.Event{
		Kind:      events.OrderPlaced,
		Recipient: c.GetString("user_email"),
		Subject:   "Order placed",
		Body:      fmt.Sprintf("Your order %s has been received and is being processed.", order.ID),
		Payload:   map[string]interface{}{"order_id": order.ID.String(), "user_id": userID.String()},
	})

	c.JSON(http.StatusOK, models.OK())
}

// GetOrders lists the user's placed orders.
// @Summary List orders
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DataResponse
// @Router /orders [get]
func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	orders, err := h.orders.GetOrders(c.Request.Context(), userID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list orders")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to list orders"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: orders})
}

// GetOrder returns one of the user's orders with full detail.
// @Summary Get order
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order id"
// @Success 200 {object} models.DataResponse
// @Failure 404 {object} models.StatusResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid order id"))
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.Fail("Order not found"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: order})
}

// GetShopOrders lists placed orders containing the seller's listings.
// @Summary List incoming orders
// @Tags Partner
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DataResponse
// @Router /partner/orders [get]
func (h *OrderHandler) GetShopOrders(c *gin.Context) {
	sellerID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	shop, err := h.catalog.GetShopBySeller(c.Request.Context(), sellerID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.Fail("No shop for this seller"))
		return
	}

	orders, err := h.orders.GetShopOrders(c.Request.Context(), shop.ID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list shop orders")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to list orders"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: orders})
}

// UpdateOrderState sets an order's state. Any known state may follow any
// other, but callers can only touch their own orders; sellers can also touch
// orders containing their shop's listings.
// @Summary Set order state
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order id"
// @Param request body models.UpdateOrderStateRequest true "New state"
// @Success 200 {object} models.StatusResponse
// @Failure 400 {object} models.StatusResponse
// @Router /orders/{id}/state [put]
func (h *OrderHandler) UpdateOrderState(c *gin.Context) {
	userID, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusForbidden, models.Fail("Log in required"))
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("Invalid order id"))
		return
	}

	var req models.UpdateOrderStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("State is required"))
		return
	}
	if !models.ValidOrderState(req.State) {
		c.JSON(http.StatusBadRequest, models.Fail("Unknown order state"))
		return
	}

	var shopID *uuid.UUID
	if c.GetString("user_type") == string(models.UserTypeSeller) {
		if shop, err := h.catalog.GetShopBySeller(c.Request.Context(), userID); err == nil {
			shopID = &shop.ID
		}
	}

	if err := h.orders.SetState(c.Request.Context(), orderID, req.State, userID, shopID); err != nil {
		c.JSON(http.StatusNotFound, models.Fail("Order not found"))
		return
	}

	c.JSON(http.StatusOK, models.OK())
}

// parseIDList parses a comma-separated uuid list.
func parseIDList(raw string) ([]uuid.UUID, bool) {
	var ids []uuid.UUID
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := uuid.Parse(part)
		if err != nil {
			return nil, false
		}
		ids = append(ids, id)
	}
	return ids, len(ids) > 0
}
