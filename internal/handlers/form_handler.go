package handlers

import (
	"kicks/internal/services"
	"kicks/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// FormHandler serves inline field feedback and the contact form.
type FormHandler struct {
	front    *services.Storefront
	validate *validator.Validate
}

// NewFormHandler creates a new FormHandler.
func NewFormHandler(front *services.Storefront) *FormHandler {
	return &FormHandler{
		front:    front,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the validation and contact routes.
func (h *FormHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/validate/:field", h.HandleValidate)
	router.Post("/password-strength", h.HandlePasswordStrength)
	router.Post("/contact", h.HandleContact)
}

// ValidateRequest carries one field value. Reference is the paired value of
// cross-field rules such as confirmPassword. Signup marks the signup email
// field, which also rejects registered addresses.
type ValidateRequest struct {
	Value     string `json:"value"`
	Reference string `json:"reference"`
	Signup    bool   `json:"signup"`
}

// HandleValidate returns the verdict for one field value.
func (h *FormHandler) HandleValidate(c *fiber.Ctx) error {
	field, err := validation.ParseField(c.Params("field"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Unknown field",
			"error":   err.Error(),
		})
	}

	var req ValidateRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}

	if field == validation.FieldEmail && req.Signup {
		return c.JSON(h.front.CheckSignupEmail(req.Value))
	}
	return c.JSON(validation.Check(field, req.Value, req.Reference))
}

// PasswordRequest carries a password being typed.
type PasswordRequest struct {
	Password string `json:"password"`
}

// HandlePasswordStrength scores a password for the strength meter.
func (h *FormHandler) HandlePasswordStrength(c *fiber.Ctx) error {
	var req PasswordRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}
	return c.JSON(validation.PasswordStrength(req.Password))
}

// HandleContact accepts the contact form.
func (h *FormHandler) HandleContact(c *fiber.Ctx) error {
	var req services.ContactInput
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}
	if err := h.front.Contact(req); err != nil {
		return respondError(c, "Message not sent", err)
	}
	return c.JSON(fiber.Map{
		"message": "Thank you! Your message has been sent successfully.",
	})
}
