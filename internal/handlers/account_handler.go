package handlers

import (
	"kicks/internal/models"
	"kicks/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AccountHandler serves the logged in user's profile, orders and checkout.
type AccountHandler struct {
	front    *services.Storefront
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(front *services.Storefront, log logrus.FieldLogger) *AccountHandler {
	return &AccountHandler{
		front:    front,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the account routes behind guard, normally
// middleware.SessionRequired.
func (h *AccountHandler) RegisterRoutes(router fiber.Router, guard fiber.Handler) {
	router.Put("/profile", guard, h.HandleUpdateProfile)
	router.Get("/orders", guard, h.HandleGetOrders)
	router.Post("/checkout", guard, h.HandleCheckout)
}

// HandleUpdateProfile saves the profile form.
func (h *AccountHandler) HandleUpdateProfile(c *fiber.Ctx) error {
	var req services.ProfileInput
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}

	ctx := c.UserContext()
	user, err := await(ctx, func(done func(*models.User, error)) error {
		return h.front.UpdateProfile(ctx, req, done)
	})
	if err != nil {
		return respondError(c, "Could not update profile", err)
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully!",
		"user":    user,
	})
}

// HandleGetOrders returns the order history, oldest first.
func (h *AccountHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.front.Orders()
	if err != nil {
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(fiber.Map{
		"orders": orders,
		"count":  len(orders),
	})
}

// HandleCheckout turns the cart into an order.
func (h *AccountHandler) HandleCheckout(c *fiber.Ctx) error {
	var req services.CheckoutInput
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}

	ctx := c.UserContext()
	order, err := await(ctx, func(done func(*models.Order, error)) error {
		return h.front.Checkout(ctx, req, done)
	})
	if err != nil {
		h.log.WithError(err).Warn("Checkout failed")
		return respondError(c, "Order could not be placed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Order placed successfully! Order ID: " + order.ID,
		"order":   order,
	})
}
