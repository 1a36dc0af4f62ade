package handlers

import (
	"kicks/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// CatalogHandler serves the product listing.
type CatalogHandler struct {
	catalog *services.CatalogService
	log     logrus.FieldLogger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *services.CatalogService, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: log}
}

// RegisterRoutes registers the product routes.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	products := router.Group("/products")
	products.Get("/", h.HandleList)
	products.Get("/:id", h.HandleGet)
}

// HandleList lists products, filtered by the brand, gender and search
// query parameters.
func (h *CatalogHandler) HandleList(c *fiber.Ctx) error {
	var filter services.Filter
	if err := c.QueryParser(&filter); err != nil {
		return respondError(c, "Invalid query", &requestError{err: err})
	}

	products, err := h.catalog.List(filter)
	if err != nil {
		h.log.WithError(err).Error("Error listing products")
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(fiber.Map{
		"products": products,
		"count":    len(products),
	})
}

// HandleGet returns one product.
func (h *CatalogHandler) HandleGet(c *fiber.Ctx) error {
	product, err := h.catalog.Get(c.Params("id"))
	if err != nil {
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}
