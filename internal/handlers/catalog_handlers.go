package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"procurement-service/internal/models"
	"procurement-service/internal/repository"
)

// CatalogHandler serves the public read-only catalog.
type CatalogHandler struct {
	catalog         *repository.CatalogRepository
	logger          *logrus.Logger
	defaultPageSize int
	maxPageSize     int
}

func NewCatalogHandler(catalog *repository.CatalogRepository, logger *logrus.Logger, defaultPageSize, maxPageSize int) *CatalogHandler {
	return &CatalogHandler{
		catalog:         catalog,
		logger:          logger,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// pagination reads page/limit query params and clamps them to the configured
// bounds. Returns limit and offset.
func (h *CatalogHandler) pagination(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.defaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > h.maxPageSize {
		limit = h.defaultPageSize
	}
	return limit, (page - 1) * limit
}

// GetShops lists shops.
// @Summary List shops
// @Tags Catalog
// @Produce json
// @Param name query string false "Exact shop name"
// @Param active query bool false "Filter by availability"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page"
// @Success 200 {object} models.DataResponse
// @Router /shops [get]
func (h *CatalogHandler) GetShops(c *gin.Context) {
	var active *bool
	switch c.Query("active") {
	case "true":
		v := true
		active = &v
	case "false":
		v := false
		active = &v
	}

	limit, offset := h.pagination(c)
	shops, err := h.catalog.GetShops(c.Request.Context(), c.Query("name"), active, limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list shops")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to list shops"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: shops})
}

// GetCategories lists categories.
// @Summary List categories
// @Tags Catalog
// @Produce json
// @Success 200 {object} models.DataResponse
// @Router /categories [get]
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalog.GetCategories(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list categories")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to list categories"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: categories})
}

// GetProducts searches products with category and attributes.
// @Summary Search products
// @Tags Catalog
// @Produce json
// @Param q query string false "Name or model substring"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page"
// @Success 200 {object} models.DataResponse
// @Router /products [get]
func (h *CatalogHandler) GetProducts(c *gin.Context) {
	limit, offset := h.pagination(c)
	products, err := h.catalog.SearchProducts(c.Request.Context(), c.Query("q"), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to search products")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to search products"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: products})
}

// GetListings lists shop offers with prices and stock.
// @Summary List offers
// @Tags Catalog
// @Produce json
// @Param shop_id query string false "Restrict to one shop"
// @Param q query string false "Product name or model substring"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page"
// @Success 200 {object} models.DataResponse
// @Router /listings [get]
func (h *CatalogHandler) GetListings(c *gin.Context) {
	var shopID *uuid.UUID
	if raw := c.Query("shop_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Fail("Invalid shop id"))
			return
		}
		shopID = &id
	}

	limit, offset := h.pagination(c)
	listings, err := h.catalog.GetListings(c.Request.Context(), shopID, c.Query("q"), limit, offset)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list offers")
		c.JSON(http.StatusInternalServerError, models.Fail("Failed to list offers"))
		return
	}

	c.JSON(http.StatusOK, models.DataResponse{Status: true, Data: listings})
}
