package services

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"kicks/internal/cart"
	"kicks/internal/flow"
	"kicks/internal/models"
	"kicks/internal/repositories"
	"kicks/internal/storage"
	"kicks/internal/validation"
	"kicks/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
)

// Publisher sends an event body to a message broker.
type Publisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

const (
	OrderPlacedRoute = "order.placed"
	defaultDelay     = 800 * time.Millisecond
	defaultCheckout  = 1200 * time.Millisecond
)

// Delays are the artificial completion delays of each submission flow.
type Delays struct {
	Login    time.Duration
	Signup   time.Duration
	Profile  time.Duration
	Checkout time.Duration
}

// DefaultDelays matches the feedback timing of the storefront UI.
func DefaultDelays() Delays {
	return Delays{
		Login:    defaultDelay,
		Signup:   defaultDelay,
		Profile:  defaultDelay,
		Checkout: defaultCheckout,
	}
}

// StorefrontConfig wires a Storefront. Storage and Catalog are required.
type StorefrontConfig struct {
	Storage   *storage.Adapter
	Catalog   *CatalogService
	Publisher Publisher      // optional
	Exchange  string         // defaults to rabbitmq.DefaultExchange
	Scheduler flow.Scheduler // defaults to flow.TimerScheduler
	Delays    Delays
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

// CartView is the cart as rendered by the badge and the drawer.
type CartView struct {
	Items []models.LineItem `json:"items"`
	Total int64             `json:"total"`
	Count int               `json:"count"`
}

// SignupInput is the signup form.
type SignupInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// ProfileInput is the profile form.
type ProfileInput struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// CheckoutInput is the checkout form.
type CheckoutInput struct {
	Address       string `json:"address"`
	PaymentMethod string `json:"payment_method"`
}

// ContactInput is the contact form.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// UserResult receives the outcome of a login, signup or profile submission.
type UserResult func(*models.User, error)

// OrderResult receives the outcome of a checkout submission.
type OrderResult func(*models.Order, error)

// Storefront ties the cart, the session store and storage together. Every
// mutation is followed by a save of the whole snapshot. Form submissions are
// gated synchronously and completed by the scheduler after their delay.
type Storefront struct {
	mu        sync.Mutex
	cart      *cart.Store
	session   *SessionService
	catalog   *CatalogService
	store     *storage.Adapter
	publisher Publisher
	exchange  string
	scheduler flow.Scheduler
	delays    Delays
	log       logrus.FieldLogger

	loginFlow    *flow.Guard
	signupFlow   *flow.Guard
	profileFlow  *flow.Guard
	checkoutFlow *flow.Guard
}

// NewStorefront loads the stored snapshot and builds the stores from it.
func NewStorefront(ctx context.Context, cfg StorefrontConfig) *Storefront {
	if cfg.Scheduler == nil {
		cfg.Scheduler = flow.TimerScheduler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Exchange == "" {
		cfg.Exchange = rabbitmq.DefaultExchange
	}

	snap := cfg.Storage.Load(ctx)
	users := repositories.NewMemoryUserDirectory(snap.Users)

	return &Storefront{
		cart:         cart.NewStore(snap.Cart),
		session:      NewSessionService(users, snap.CurrentUser, cfg.Now, cfg.Logger),
		catalog:      cfg.Catalog,
		store:        cfg.Storage,
		publisher:    cfg.Publisher,
		exchange:     cfg.Exchange,
		scheduler:    cfg.Scheduler,
		delays:       cfg.Delays,
		log:          cfg.Logger,
		loginFlow:    flow.NewGuard("login"),
		signupFlow:   flow.NewGuard("signup"),
		profileFlow:  flow.NewGuard("profile"),
		checkoutFlow: flow.NewGuard("checkout"),
	}
}

// Snapshot is the state that would be persisted right now.
func (s *Storefront) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Storefront) snapshot() models.Snapshot {
	return models.Snapshot{
		Users:       s.session.Directory(),
		CurrentUser: s.session.CurrentUser(),
		Cart:        s.cart.Snapshot(),
	}
}

// persist saves the snapshot. Failures are logged; the in-memory state
// stays authoritative.
func (s *Storefront) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.snapshot()); err != nil {
		s.log.WithError(err).Error("Failed to save storefront state")
	}
}

// ---- cart ----

// Cart returns the current cart contents and derived totals.
func (s *Storefront) Cart() CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartView()
}

func (s *Storefront) cartView() CartView {
	return CartView{Items: s.cart.Items(), Total: s.cart.Total(), Count: s.cart.ItemCount()}
}

// AddToCart adds one unit of a catalog product.
func (s *Storefront) AddToCart(ctx context.Context, productID string) (CartView, error) {
	product, err := s.catalog.Get(productID)
	if err != nil {
		return CartView{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart.Add(productID, product.Snapshot())
	s.persist(ctx)
	return s.cartView(), nil
}

// RemoveFromCart drops a product from the cart.
func (s *Storefront) RemoveFromCart(ctx context.Context, productID string) CartView {
	return s.mutateCart(ctx, func(c *cart.Store) { c.Remove(productID) })
}

// SetCartQuantity sets a line item's quantity; n <= 0 removes it.
func (s *Storefront) SetCartQuantity(ctx context.Context, productID string, n int) CartView {
	return s.mutateCart(ctx, func(c *cart.Store) { c.SetQuantity(productID, n) })
}

// IncrementCartItem is the "+" button of a line item.
func (s *Storefront) IncrementCartItem(ctx context.Context, productID string) CartView {
	return s.mutateCart(ctx, func(c *cart.Store) { c.Increment(productID) })
}

// DecrementCartItem is the "-" button of a line item; it stops at 1.
func (s *Storefront) DecrementCartItem(ctx context.Context, productID string) CartView {
	return s.mutateCart(ctx, func(c *cart.Store) { c.Decrement(productID) })
}

func (s *Storefront) mutateCart(ctx context.Context, fn func(*cart.Store)) CartView {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.cart)
	s.persist(ctx)
	return s.cartView()
}

// ---- session ----

// CurrentUser returns a copy of the logged in user, or nil.
func (s *Storefront) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.CurrentUser()
}

// Orders returns the logged in user's order history.
func (s *Storefront) Orders() ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.Orders()
}

// CheckSignupEmail is the signup email rule: a valid address that is not
// registered yet.
func (s *Storefront) CheckSignupEmail(email string) validation.Verdict {
	v := validation.Check(validation.FieldEmail, email, "")
	if !v.Valid {
		return v
	}
	s.mu.Lock()
	taken := s.session.EmailTaken(email)
	s.mu.Unlock()
	if taken {
		return validation.Verdict{Message: "Email already registered"}
	}
	return v
}

// Login checks the credentials now and starts the session once the login
// delay has elapsed.
func (s *Storefront) Login(ctx context.Context, email, password string, done UserResult) error {
	if s.busy(s.loginFlow) {
		return ErrSubmissionInProgress
	}
	email = strings.ToLower(email)

	var form validation.Form
	form.Check("email", validation.FieldEmail, email, "")
	form.Check("password", validation.FieldPassword, password, "")
	if err := form.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	err := s.session.CheckCredentials(email, password)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	return s.submit(s.loginFlow, s.delays.Login, func() {
		s.mu.Lock()
		user, err := s.session.Login(email, password)
		if err == nil {
			s.persist(context.WithoutCancel(ctx))
		}
		s.mu.Unlock()
		deliver(done, user, err)
	})
}

// Signup validates the form now and registers the user once the signup
// delay has elapsed. The duplicate check is repeated inside the completion,
// under the same lock as the insert.
func (s *Storefront) Signup(ctx context.Context, in SignupInput, done UserResult) error {
	if s.busy(s.signupFlow) {
		return ErrSubmissionInProgress
	}
	email := strings.ToLower(in.Email)

	var form validation.Form
	form.Check("name", validation.FieldName, in.Name, "")
	form.Check("email", validation.FieldEmail, email, "")
	form.Check("password", validation.FieldPassword, in.Password, "")
	form.Check("confirm_password", validation.FieldConfirmPassword, in.ConfirmPassword, in.Password)
	if err := form.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	taken := s.session.EmailTaken(email)
	s.mu.Unlock()
	if taken {
		return ErrDuplicateEmail
	}

	return s.submit(s.signupFlow, s.delays.Signup, func() {
		s.mu.Lock()
		user, err := s.session.Signup(in.Name, email, in.Password)
		if err == nil {
			s.persist(context.WithoutCancel(ctx))
		}
		s.mu.Unlock()
		deliver(done, user, err)
	})
}

// Logout ends the session immediately.
func (s *Storefront) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session.Logout()
	s.persist(ctx)
}

// UpdateProfile validates the profile form now and saves it once the
// profile delay has elapsed.
func (s *Storefront) UpdateProfile(ctx context.Context, in ProfileInput, done UserResult) error {
	if s.busy(s.profileFlow) {
		return ErrSubmissionInProgress
	}
	if s.CurrentUser() == nil {
		return ErrNotAuthenticated
	}

	var form validation.Form
	form.Check("name", validation.FieldName, in.Name, "")
	form.Check("phone", validation.FieldPhone, in.Phone, "")
	form.Check("address", validation.FieldAddress, in.Address, "")
	if err := form.Err(); err != nil {
		return err
	}

	return s.submit(s.profileFlow, s.delays.Profile, func() {
		s.mu.Lock()
		user, err := s.session.UpdateProfile(in.Name, in.Phone, in.Address)
		if err == nil {
			s.persist(context.WithoutCancel(ctx))
		}
		s.mu.Unlock()
		deliver(done, user, err)
	})
}

// Checkout validates the checkout form now and, once the checkout delay has
// elapsed, turns the cart into an order, clears the cart and announces the
// order to the publisher.
func (s *Storefront) Checkout(ctx context.Context, in CheckoutInput, done OrderResult) error {
	if s.busy(s.checkoutFlow) {
		return ErrSubmissionInProgress
	}

	s.mu.Lock()
	authenticated := s.session.State() == Authenticated
	empty := s.cart.Len() == 0
	s.mu.Unlock()
	if !authenticated {
		return ErrNotAuthenticated
	}

	var form validation.Form
	if strings.TrimSpace(in.Address) == "" {
		form.Add("address", "Please enter delivery address")
	}
	form.Check("payment_method", validation.FieldPaymentMethod, in.PaymentMethod, "")
	if err := form.Err(); err != nil {
		return err
	}
	if empty {
		return ErrEmptyCart
	}

	return s.submit(s.checkoutFlow, s.delays.Checkout, func() {
		bg := context.WithoutCancel(ctx)

		s.mu.Lock()
		var email string
		order, err := s.session.PlaceOrder(s.cart.Snapshot(), in.Address, in.PaymentMethod)
		if err == nil {
			email = s.session.CurrentUser().Email
			s.cart.Clear()
			s.persist(bg)
		}
		s.mu.Unlock()

		if err == nil {
			s.publishOrderPlaced(order, email)
		}
		if done != nil {
			done(order, err)
		}
	})
}

// Contact validates the contact form. Nothing is stored.
func (s *Storefront) Contact(in ContactInput) error {
	var form validation.Form
	form.Check("name", validation.FieldName, strings.TrimSpace(in.Name), "")
	form.Check("email", validation.FieldEmail, strings.ToLower(strings.TrimSpace(in.Email)), "")
	form.Check("message", validation.FieldMessage, strings.TrimSpace(in.Message), "")
	if err := form.Err(); err != nil {
		return err
	}
	s.log.WithField("email", strings.ToLower(strings.TrimSpace(in.Email))).Info("Contact message received")
	return nil
}

// submit moves guard to Submitting and schedules complete; the guard returns
// to Idle after complete has run.
func (s *Storefront) submit(guard *flow.Guard, delay time.Duration, complete func()) error {
	if err := guard.Begin(); err != nil {
		s.log.WithField("flow", guard.Name()).Debug("Submission rejected, previous one still running")
		return err
	}
	s.scheduler.Schedule(delay, func() {
		defer guard.End()
		complete()
	})
	return nil
}

// busy reports whether guard still has a submission in flight.
func (s *Storefront) busy(guard *flow.Guard) bool {
	if guard.State() != flow.Submitting {
		return false
	}
	s.log.WithField("flow", guard.Name()).Debug("Submission rejected, previous one still running")
	return true
}

func deliver(done UserResult, user *models.User, err error) {
	if done != nil {
		done(user, err)
	}
}

// publishOrderPlaced announces order, placed by email. email is read in the
// same critical section as the order so a later logout cannot change it.
func (s *Storefront) publishOrderPlaced(order *models.Order, email string) {
	if s.publisher == nil {
		return
	}
	event := rabbitmq.OrderEvent{
		OrderID:       order.ID,
		Email:         email,
		Items:         len(order.Items),
		TotalPrice:    order.TotalPrice,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
	}

	body, err := json.Marshal(event)
	if err != nil {
		s.log.WithError(err).Warn("Failed to marshal order event")
		return
	}
	if err := s.publisher.Publish(s.exchange, OrderPlacedRoute, body); err != nil {
		s.log.WithError(err).WithField("order_id", order.ID).Warn("Failed to publish order placed event")
		return
	}
	s.log.WithField("order_id", order.ID).Debug("Published order placed event")
}
