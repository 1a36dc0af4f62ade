package handlers

import (
	"kicks/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CartHandler exposes the cart store.
type CartHandler struct {
	front    *services.Storefront
	validate *validator.Validate
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(front *services.Storefront) *CartHandler {
	return &CartHandler{
		front:    front,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the cart routes.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cart := router.Group("/cart")
	cart.Get("/", h.HandleGetCart)
	cart.Post("/items", h.HandleAddItem)
	cart.Patch("/items/:id", h.HandleSetQuantity)
	cart.Delete("/items/:id", h.HandleRemoveItem)
	cart.Post("/items/:id/increment", h.HandleIncrement)
	cart.Post("/items/:id/decrement", h.HandleDecrement)
}

// AddItemRequest is the body of an add-to-cart click.
type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// QuantityRequest sets a line item's quantity. Zero or less removes it.
type QuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// HandleGetCart returns the cart with its total and item count.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	return c.JSON(h.front.Cart())
}

// HandleAddItem adds one unit of a product.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	var req AddItemRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}

	view, err := h.front.AddToCart(c.UserContext(), req.ProductID)
	if err != nil {
		return respondError(c, "Could not add to cart", err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// HandleSetQuantity sets the quantity of a line item.
func (h *CartHandler) HandleSetQuantity(c *fiber.Ctx) error {
	var req QuantityRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}
	return c.JSON(h.front.SetCartQuantity(c.UserContext(), c.Params("id"), *req.Quantity))
}

// HandleRemoveItem removes a line item. Removing an absent item succeeds.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	return c.JSON(h.front.RemoveFromCart(c.UserContext(), c.Params("id")))
}

// HandleIncrement adds one to a line item's quantity.
func (h *CartHandler) HandleIncrement(c *fiber.Ctx) error {
	return c.JSON(h.front.IncrementCartItem(c.UserContext(), c.Params("id")))
}

// HandleDecrement takes one from a line item's quantity, never below 1.
func (h *CartHandler) HandleDecrement(c *fiber.Ctx) error {
	return c.JSON(h.front.DecrementCartItem(c.UserContext(), c.Params("id")))
}
