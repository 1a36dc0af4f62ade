package services_test

import (
	"testing"
	"time"

	"kicks/internal/models"
	"kicks/internal/repositories"
	"kicks/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 5, 10, 30, 0, 0, time.UTC)

func newSessionService(t *testing.T, initial models.Directory) (*services.SessionService, *repositories.MemoryUserDirectory) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	users := repositories.NewMemoryUserDirectory(initial)
	return services.NewSessionService(users, nil, func() time.Time { return fixedNow }, logger), users
}

func sampleCart() models.Cart {
	return models.Cart{
		"p2": {ID: "p2", Title: "Runner", Image: "r.png", Price: 2500, Quantity: 1},
		"p1": {ID: "p1", Title: "Shoe", Image: "i.png", Price: 1000, Quantity: 2},
	}
}

func TestSessionService_Signup(t *testing.T) {
	svc, users := newSessionService(t, nil)
	assert.Equal(t, services.Anonymous, svc.State())

	user, err := svc.Signup("Asha", "asha@x.com", "Passw0rd")
	require.NoError(t, err)

	assert.Equal(t, services.Authenticated, svc.State())
	assert.Equal(t, "asha@x.com", user.Email)
	assert.Empty(t, user.Profile)
	assert.Empty(t, user.Orders)
	assert.Equal(t, 1, users.Len())
	assert.Contains(t, svc.Directory(), "asha@x.com")
}

func TestSessionService_SignupDuplicate(t *testing.T) {
	svc, users := newSessionService(t, models.Directory{
		"asha@x.com": {Name: "Asha", Email: "asha@x.com", Password: "Passw0rd"},
	})

	_, err := svc.Signup("Impostor", "ASHA@X.com", "Other1234")

	assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	assert.Equal(t, services.Anonymous, svc.State())
	existing, err := users.GetByEmail("asha@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha", existing.Name)
	assert.Equal(t, "Passw0rd", existing.Password)
}

func TestSessionService_Login(t *testing.T) {
	svc, _ := newSessionService(t, models.Directory{
		"asha@x.com": {Name: "Asha", Email: "asha@x.com", Password: "Passw0rd"},
	})

	_, err := svc.Login("nobody@x.com", "Passw0rd")
	assert.ErrorIs(t, err, services.ErrUnknownEmail)
	assert.Equal(t, services.Anonymous, svc.State())

	_, err = svc.Login("asha@x.com", "passw0rd")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.Equal(t, services.Anonymous, svc.State())

	user, err := svc.Login("Asha@X.com", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, "Asha", user.Name)
	assert.Equal(t, services.Authenticated, svc.State())
}

func TestSessionService_LogoutKeepsDirectory(t *testing.T) {
	svc, users := newSessionService(t, nil)
	_, err := svc.Signup("Asha", "asha@x.com", "Passw0rd")
	require.NoError(t, err)

	svc.Logout()
	svc.Logout()

	assert.Equal(t, services.Anonymous, svc.State())
	assert.Nil(t, svc.CurrentUser())
	assert.True(t, users.Exists("asha@x.com"))
}

func TestSessionService_SessionIsNotAliased(t *testing.T) {
	svc, users := newSessionService(t, nil)
	_, err := svc.Signup("Asha", "asha@x.com", "Passw0rd")
	require.NoError(t, err)

	session := svc.CurrentUser()
	session.Name = "Mallory"
	session.Profile.Address = "nowhere"

	stored, err := users.GetByEmail("asha@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.Name)
	assert.Empty(t, stored.Profile.Address)
	assert.Equal(t, "Asha", svc.CurrentUser().Name)
}

func TestSessionService_UpdateProfile(t *testing.T) {
	svc, users := newSessionService(t, models.Directory{
		"ravi@x.com": {Name: "Ravi", Email: "ravi@x.com", Password: "Secret123", Profile: models.Profile{Address: "12 MG Road"}},
	})

	_, err := svc.UpdateProfile("Asha", "9876543210", "1 Park Street")
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	_, err = svc.Signup("Asha", "asha@x.com", "Passw0rd")
	require.NoError(t, err)

	user, err := svc.UpdateProfile("Asha Rao", "9876543210", "1 Park Street")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", user.Name)

	stored, err := users.GetByEmail("asha@x.com")
	require.NoError(t, err)
	assert.Equal(t, stored.Profile, svc.CurrentUser().Profile)
	assert.Equal(t, stored.Name, svc.CurrentUser().Name)

	other, err := users.GetByEmail("ravi@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ravi", other.Name)
	assert.Equal(t, "12 MG Road", other.Profile.Address)
}

func TestSessionService_PlaceOrder(t *testing.T) {
	svc, users := newSessionService(t, nil)
	_, err := svc.Signup("Asha", "asha@x.com", "Passw0rd")
	require.NoError(t, err)

	cart := sampleCart()
	order, err := svc.PlaceOrder(cart, "1 Park Street", "cod")
	require.NoError(t, err)

	assert.Equal(t, "ORD-1709634600000", order.ID)
	assert.Equal(t, "5/3/2024", order.Date)
	assert.Equal(t, int64(4500), order.TotalPrice)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, "cod", order.PaymentMethod)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "p1", order.Items[0].ID)
	assert.Equal(t, "p2", order.Items[1].ID)

	// Later cart edits do not reach the order history.
	cart["p1"].Quantity = 9
	cart["p1"].Price = 1
	delete(cart, "p2")

	orders, err := svc.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, 2, orders[0].Items[0].Quantity)
	assert.Equal(t, int64(1000), orders[0].Items[0].Price)
	assert.Len(t, orders[0].Items, 2)

	stored, err := users.GetByEmail("asha@x.com")
	require.NoError(t, err)
	assert.Equal(t, "1 Park Street", stored.Profile.Address)
	assert.Len(t, stored.Orders, 1)
	assert.Equal(t, "1 Park Street", svc.CurrentUser().Profile.Address)
}

func TestSessionService_PlaceOrderUniqueIDs(t *testing.T) {
	svc, _ := newSessionService(t, nil)
	_, err := svc.Signup("Asha", "asha@x.com", "Passw0rd")
	require.NoError(t, err)

	first, err := svc.PlaceOrder(sampleCart(), "1 Park Street", "cod")
	require.NoError(t, err)
	second, err := svc.PlaceOrder(sampleCart(), "1 Park Street", "upi")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestSessionService_PlaceOrderErrors(t *testing.T) {
	svc, users := newSessionService(t, nil)

	_, err := svc.PlaceOrder(sampleCart(), "1 Park Street", "cod")
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)

	_, err = svc.Signup("Asha", "asha@x.com", "Passw0rd")
	require.NoError(t, err)

	_, err = svc.PlaceOrder(models.Cart{}, "1 Park Street", "cod")
	assert.ErrorIs(t, err, services.ErrEmptyCart)

	stored, err := users.GetByEmail("asha@x.com")
	require.NoError(t, err)
	assert.Empty(t, stored.Orders)

	_, err = svc.Orders()
	assert.NoError(t, err)
}

func TestSessionService_OrdersRequiresSession(t *testing.T) {
	svc, _ := newSessionService(t, nil)
	_, err := svc.Orders()
	assert.ErrorIs(t, err, services.ErrNotAuthenticated)
}

func TestNewSessionService_RefreshesStaleSession(t *testing.T) {
	order := models.Order{ID: "ORD-1709634600000", Date: "5/3/2024", TotalPrice: 8999, Status: models.OrderStatusConfirmed}
	dir := models.Directory{"asha@x.com": {
		Name:     "Asha Rao",
		Email:    "asha@x.com",
		Password: "Passw0rd",
		Profile:  models.Profile{Address: "1 Park Street"},
		Orders:   []models.Order{order},
	}}
	users := repositories.NewMemoryUserDirectory(dir)
	logger, _ := test.NewNullLogger()

	stale := &models.User{Name: "Asha", Email: "Asha@X.com", Password: "Passw0rd", Orders: []models.Order{}}
	svc := services.NewSessionService(users, stale, nil, logger)

	user := svc.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "asha@x.com", user.Email)
	assert.Equal(t, "Asha Rao", user.Name)
	assert.Equal(t, "1 Park Street", user.Profile.Address)
	orders, err := svc.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
}

func TestNewSessionService_RestoresSession(t *testing.T) {
	dir := models.Directory{"asha@x.com": {Name: "Asha", Email: "asha@x.com", Password: "Passw0rd"}}
	users := repositories.NewMemoryUserDirectory(dir)
	logger, hook := test.NewNullLogger()

	svc := services.NewSessionService(users, dir["asha@x.com"], nil, logger)
	assert.Equal(t, services.Authenticated, svc.State())
	assert.Empty(t, hook.AllEntries())

	ghost := &models.User{Name: "Ghost", Email: "ghost@x.com"}
	svc = services.NewSessionService(users, ghost, nil, logger)
	assert.Equal(t, services.Anonymous, svc.State())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "ghost@x.com", hook.LastEntry().Data["email"])
}
