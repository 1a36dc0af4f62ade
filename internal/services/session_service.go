package services

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"kicks/internal/models"
	"kicks/internal/repositories"

	"github.com/sirupsen/logrus"
)

// SessionState is either Anonymous or Authenticated.
type SessionState int

const (
	Anonymous SessionState = iota
	Authenticated
)

func (s SessionState) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// orderDateLayout renders dates the way an en-IN locale prints them (D/M/YYYY).
const orderDateLayout = "2/1/2006"

// SessionService owns the user directory and the current session.
//
// The session is a copy of a directory entry taken at login or signup. It is
// refreshed from the directory after every directory write and is never
// written back, so mutating it cannot change the directory.
//
// SessionService is not safe for concurrent use; Storefront serializes access.
type SessionService struct {
	users   repositories.UserDirectory
	current *models.User
	ids     *OrderIDGenerator
	now     func() time.Time
	log     logrus.FieldLogger
}

// NewSessionService creates a session store over users. current, if set, is
// the session restored from storage. It is replaced by the directory entry
// for its email, or dropped when that email is no longer registered.
func NewSessionService(users repositories.UserDirectory, current *models.User, now func() time.Time, log logrus.FieldLogger) *SessionService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &SessionService{
		users: users,
		ids:   NewOrderIDGenerator(now),
		now:   now,
		log:   log,
	}
	if current != nil {
		if err := s.refresh(repositories.NormalizeEmail(current.Email)); err != nil {
			log.WithError(err).WithField("email", current.Email).Warn("Dropping stored session for unregistered email")
		}
	}
	return s
}

// State reports whether a user is logged in.
func (s *SessionService) State() SessionState {
	if s.current == nil {
		return Anonymous
	}
	return Authenticated
}

// CurrentUser returns a copy of the session user, or nil when anonymous.
func (s *SessionService) CurrentUser() *models.User {
	return s.current.Clone()
}

// Directory returns a deep copy of every registered user.
func (s *SessionService) Directory() models.Directory {
	return s.users.Snapshot()
}

// EmailTaken reports whether email is already registered, ignoring case.
func (s *SessionService) EmailTaken(email string) bool {
	return s.users.Exists(email)
}

// Signup registers a user with an empty profile and no orders, then logs
// them in.
func (s *SessionService) Signup(name, email, password string) (*models.User, error) {
	key := repositories.NormalizeEmail(email)
	user := &models.User{
		Name:     name,
		Email:    key,
		Password: password,
		Orders:   []models.Order{},
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repositories.ErrEmailTaken) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateEmail, key)
		}
		return nil, fmt.Errorf("failed to register %s: %w", key, err)
	}

	if err := s.refresh(key); err != nil {
		return nil, err
	}
	s.log.WithField("email", key).Info("User signed up")
	return s.CurrentUser(), nil
}

// CheckCredentials verifies email and password without changing the session.
// The password is compared as plain text.
func (s *SessionService) CheckCredentials(email, password string) error {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownEmail, repositories.NormalizeEmail(email))
		}
		return err
	}
	if user.Password != password {
		return ErrInvalidCredentials
	}
	return nil
}

// Login starts a session for email after checking the password.
func (s *SessionService) Login(email, password string) (*models.User, error) {
	if err := s.CheckCredentials(email, password); err != nil {
		return nil, err
	}
	key := repositories.NormalizeEmail(email)
	if err := s.refresh(key); err != nil {
		return nil, err
	}
	s.log.WithField("email", key).Info("User logged in")
	return s.CurrentUser(), nil
}

// Logout discards the session. The directory is untouched.
func (s *SessionService) Logout() {
	if s.current != nil {
		s.log.WithField("email", s.current.Email).Info("User logged out")
	}
	s.current = nil
}

// UpdateProfile overwrites the name and profile of the logged in user.
func (s *SessionService) UpdateProfile(name, phone, address string) (*models.User, error) {
	if s.current == nil {
		return nil, ErrNotAuthenticated
	}
	key := repositories.NormalizeEmail(s.current.Email)
	user, err := s.users.GetByEmail(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	user.Name = name
	user.Profile = models.Profile{Phone: phone, Address: address}
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update profile of %s: %w", key, err)
	}

	if err := s.refresh(key); err != nil {
		return nil, err
	}
	return s.CurrentUser(), nil
}

// PlaceOrder records an order for the logged in user from a copy of cart.
// The delivery address also becomes the user's address on file. Clearing
// the cart is left to the caller.
func (s *SessionService) PlaceOrder(cart models.Cart, address, paymentMethod string) (*models.Order, error) {
	if s.current == nil {
		return nil, ErrNotAuthenticated
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	key := repositories.NormalizeEmail(s.current.Email)
	user, err := s.users.GetByEmail(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	ids := make([]string, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	order := models.Order{
		ID:            s.ids.Next(),
		Date:          s.now().Format(orderDateLayout),
		Items:         make([]models.LineItem, 0, len(ids)),
		Address:       address,
		PaymentMethod: paymentMethod,
		Status:        models.OrderStatusConfirmed,
	}
	for _, id := range ids {
		if cart[id] == nil {
			continue
		}
		item := *cart[id]
		order.Items = append(order.Items, item)
		order.TotalPrice += item.Subtotal()
	}

	user.Orders = append(user.Orders, order)
	user.Profile.Address = address
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}

	if err := s.refresh(key); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"email":    key,
		"order_id": order.ID,
		"total":    order.TotalPrice,
	}).Info("Order placed")

	placed := order.Clone()
	return &placed, nil
}

// Orders returns a copy of the logged in user's order history.
func (s *SessionService) Orders() ([]models.Order, error) {
	if s.current == nil {
		return nil, ErrNotAuthenticated
	}
	orders := make([]models.Order, len(s.current.Orders))
	for i := range s.current.Orders {
		orders[i] = s.current.Orders[i].Clone()
	}
	return orders, nil
}

// refresh replaces the session with a fresh copy of the directory entry.
func (s *SessionService) refresh(key string) error {
	user, err := s.users.GetByEmail(key)
	if err != nil {
		return fmt.Errorf("failed to refresh session for %s: %w", key, err)
	}
	s.current = user
	return nil
}
