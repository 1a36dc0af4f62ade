// Package cart holds the in-memory shopping cart. The store only mutates
// memory; persisting and re-rendering are the caller's job.
package cart

import (
	"sort"

	"kicks/internal/models"
)

// Store maps product ids to line items. Quantities are always >= 1: an entry
// whose quantity would drop to zero is removed instead.
type Store struct {
	items models.Cart
}

// NewStore creates a store seeded with a copy of initial.
func NewStore(initial models.Cart) *Store {
	s := &Store{items: initial.Clone()}
	if s.items == nil {
		s.items = models.Cart{}
	}
	for id, item := range s.items {
		if item.Quantity < 1 {
			delete(s.items, id)
		}
	}
	return s
}

// Add increments the quantity of productID, or inserts it with quantity 1
// using the display fields of product.
func (s *Store) Add(productID string, product models.LineItem) {
	if item, ok := s.items[productID]; ok {
		item.Quantity++
		return
	}
	s.items[productID] = &models.LineItem{
		ID:       productID,
		Title:    product.Title,
		Image:    product.Image,
		Price:    product.Price,
		Quantity: 1,
	}
}

// Remove deletes productID. Removing an absent id is a no-op.
func (s *Store) Remove(productID string) {
	delete(s.items, productID)
}

// SetQuantity sets the quantity of an existing entry; n <= 0 removes it.
func (s *Store) SetQuantity(productID string, n int) {
	item, ok := s.items[productID]
	if !ok {
		return
	}
	if n <= 0 {
		s.Remove(productID)
		return
	}
	item.Quantity = n
}

// Increment adds one to an existing entry.
func (s *Store) Increment(productID string) {
	if item, ok := s.items[productID]; ok {
		item.Quantity++
	}
}

// Decrement subtracts one from an existing entry but never below 1;
// use Remove to drop the entry.
func (s *Store) Decrement(productID string) {
	if item, ok := s.items[productID]; ok && item.Quantity > 1 {
		item.Quantity--
	}
}

// Total is the sum of price*quantity over all entries.
func (s *Store) Total() int64 {
	var total int64
	for _, item := range s.items {
		total += item.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities.
func (s *Store) ItemCount() int {
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Len is the number of distinct products in the cart.
func (s *Store) Len() int { return len(s.items) }

// Clear empties the cart.
func (s *Store) Clear() {
	s.items = models.Cart{}
}

// Get returns a copy of one entry.
func (s *Store) Get(productID string) (models.LineItem, bool) {
	item, ok := s.items[productID]
	if !ok {
		return models.LineItem{}, false
	}
	return *item, true
}

// Items returns copies of all entries ordered by product id.
func (s *Store) Items() []models.LineItem {
	out := make([]models.LineItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, *item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Snapshot returns a deep copy of the cart mapping.
func (s *Store) Snapshot() models.Cart {
	return s.items.Clone()
}
