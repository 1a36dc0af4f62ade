package models_test

import (
	"encoding/json"
	"testing"

	"kicks/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleUser() *models.User {
	return &models.User{
		Name:     "Asha",
		Email:    "asha@x.com",
		Password: "Passw0rd",
		Profile:  models.Profile{Phone: "9876543210", Address: "12 MG Road"},
		Orders: []models.Order{{
			ID:     "ORD-1",
			Items:  []models.LineItem{{ID: "p1", Title: "Shoe", Price: 1000, Quantity: 2}},
			Status: models.OrderStatusConfirmed,
		}},
	}
}

func TestUserCloneIsIndependent(t *testing.T) {
	u := sampleUser()
	c := u.Clone()
	require.Equal(t, u, c)

	c.Name = "Changed"
	c.Profile.Address = "elsewhere"
	c.Orders[0].Items[0].Quantity = 99
	c.Orders = append(c.Orders, models.Order{ID: "ORD-2"})

	assert.Equal(t, "Asha", u.Name)
	assert.Equal(t, "12 MG Road", u.Profile.Address)
	assert.Equal(t, 2, u.Orders[0].Items[0].Quantity)
	assert.Len(t, u.Orders, 1)
}

func TestNilUserClone(t *testing.T) {
	var u *models.User
	assert.Nil(t, u.Clone())
}

func TestCartClone(t *testing.T) {
	cart := models.Cart{"p1": {ID: "p1", Price: 500, Quantity: 1}}
	c := cart.Clone()
	c["p1"].Quantity = 5
	delete(c, "p1")

	require.Contains(t, cart, "p1")
	assert.Equal(t, 1, cart["p1"].Quantity)
}

func TestSnapshotRoundTrip(t *testing.T) {
	snap := models.DefaultSnapshot()
	u := sampleUser()
	snap.Users[u.Email] = u
	snap.CurrentUser = u.Clone()
	snap.Cart["p9"] = &models.LineItem{ID: "p9", Title: "Sandal", Image: "s.png", Price: 799, Quantity: 3}

	raw, err := json.Marshal(snap)
	require.NoError(t, err)

	var decoded models.Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, snap, decoded)
}

func TestDefaultSnapshotEncoding(t *testing.T) {
	raw, err := json.Marshal(models.DefaultSnapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"users":{},"currentUser":null,"cart":{}}`, string(raw))
}

func TestSnapshotNormalize(t *testing.T) {
	snap := models.Snapshot{Cart: models.Cart{
		"zero": {ID: "zero", Quantity: 0},
		"ok":   {ID: "ok", Quantity: 1},
	}}
	snap.Normalize()

	assert.NotNil(t, snap.Users)
	assert.NotContains(t, snap.Cart, "zero")
	assert.Contains(t, snap.Cart, "ok")
}
