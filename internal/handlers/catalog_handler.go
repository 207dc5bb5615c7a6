package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/catalog"
	"storefront-service/internal/currency"
)

// CatalogHandler handles catalog-related HTTP requests
type CatalogHandler struct {
	catalogService  *catalog.Service
	displayCurrency string
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *catalog.Service, displayCurrency string) *CatalogHandler {
	return &CatalogHandler{
		catalogService:  catalogService,
		displayCurrency: displayCurrency,
	}
}

// ListProducts lists catalog products filtered by keyword, category, price
// cap, and limit. Upstream failures degrade to an empty list.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	opts := catalog.Options{
		Keyword:  c.Query("keyword"),
		Category: c.Query("category"),
	}
	if maxPrice, err := strconv.ParseInt(c.Query("maxPrice"), 10, 64); err == nil && maxPrice > 0 {
		opts.MaxPrice = maxPrice
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		opts.Limit = limit
	}

	products := h.catalogService.GetProducts(c.Request.Context(), opts)

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
		"currency": h.displayCurrency,
	})
}

// GetProduct retrieves a single product by ID, including a display-ready
// price string.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product ID required"})
		return
	}

	product := h.catalogService.GetProductByID(c.Request.Context(), id)
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product":        product,
		"formattedPrice": currency.Format(product.Price, h.displayCurrency),
	})
}

// ListCategories returns the distinct categories observed in the catalog.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories := h.catalogService.Categories(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"total":      len(categories),
	})
}

// ListDeals lists price-capped products, cheapest first.
func (h *CatalogHandler) ListDeals(c *gin.Context) {
	maxPrice := int64(20000)
	if parsed, err := strconv.ParseInt(c.Query("maxPrice"), 10, 64); err == nil && parsed > 0 {
		maxPrice = parsed
	}
	limit := 24
	if parsed, err := strconv.Atoi(c.Query("limit")); err == nil && parsed > 0 {
		limit = parsed
	}

	products := h.catalogService.GetProducts(c.Request.Context(), catalog.Options{
		MaxPrice: maxPrice,
		Limit:    limit,
	})

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    len(products),
		"maxPrice": maxPrice,
	})
}
