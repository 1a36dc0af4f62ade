package handlers

import (
	"kicks/internal/models"
	"kicks/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	front    *services.Storefront
	validate *validator.Validate
	log      logrus.FieldLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(front *services.Storefront, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		front:    front,
		validate: validator.New(),
		log:      log,
	}
}

// RegisterRoutes registers the authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	router.Get("/session", h.HandleSession)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup registers a user and logs them in.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req services.SignupInput
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}

	ctx := c.UserContext()
	user, err := await(ctx, func(done func(*models.User, error)) error {
		return h.front.Signup(ctx, req, done)
	})
	if err != nil {
		h.log.WithError(err).WithField("email", req.Email).Info("Signup rejected")
		return respondError(c, "Registration failed", err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully! Welcome, " + user.Name + "!",
		"user":    user,
	})
}

// HandleLogin starts a session.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return respondError(c, "Invalid request body", err)
	}

	ctx := c.UserContext()
	user, err := await(ctx, func(done func(*models.User, error)) error {
		return h.front.Login(ctx, req.Email, req.Password, done)
	})
	if err != nil {
		h.log.WithError(err).WithField("email", req.Email).Info("Login rejected")
		return respondError(c, "Authentication failed", err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful! Welcome back, " + user.Name + "!",
		"user":    user,
	})
}

// HandleLogout ends the session.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.front.Logout(c.UserContext())
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// HandleSession reports whether a user is logged in.
func (h *AuthHandler) HandleSession(c *fiber.Ctx) error {
	user := h.front.CurrentUser()
	if user == nil {
		return c.JSON(fiber.Map{"state": services.Anonymous.String(), "user": nil})
	}
	return c.JSON(fiber.Map{"state": services.Authenticated.String(), "user": user})
}
