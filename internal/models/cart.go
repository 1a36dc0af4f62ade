package models

// LineItem is one cart entry: product reference, display fields and quantity.
type LineItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Image    string `json:"image"`
	Price    int64  `json:"price"` // whole rupees
	Quantity int    `json:"quantity"`
}

// Subtotal is price times quantity.
func (li LineItem) Subtotal() int64 {
	return li.Price * int64(li.Quantity)
}

// Cart maps product id to its line item.
type Cart map[string]*LineItem

// Clone deep-copies the cart.
func (c Cart) Clone() Cart {
	if c == nil {
		return nil
	}
	out := make(Cart, len(c))
	for id, item := range c {
		if item == nil {
			continue
		}
		li := *item
		out[id] = &li
	}
	return out
}
