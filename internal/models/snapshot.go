package models

// Snapshot is the whole persisted storefront state, written and read as one unit.
type Snapshot struct {
	Users       Directory `json:"users"`
	CurrentUser *User     `json:"currentUser"`
	Cart        Cart      `json:"cart"`
}

// DefaultSnapshot is the state of a store that has never been saved.
func DefaultSnapshot() Snapshot {
	return Snapshot{
		Users: Directory{},
		Cart:  Cart{},
	}
}

// Normalize replaces nil collections with empty ones so a decoded snapshot
// can be used directly.
func (s *Snapshot) Normalize() {
	if s.Users == nil {
		s.Users = Directory{}
	}
	if s.Cart == nil {
		s.Cart = Cart{}
	}
	for id, item := range s.Cart {
		if item == nil || item.Quantity < 1 {
			delete(s.Cart, id)
		}
	}
}

// Clone deep-copies the snapshot.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{
		Users:       s.Users.Clone(),
		CurrentUser: s.CurrentUser.Clone(),
		Cart:        s.Cart.Clone(),
	}
}
