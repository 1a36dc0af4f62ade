package models

// OrderStatusConfirmed is the status every order is created with.
const OrderStatusConfirmed = "Confirmed"

// Order is a completed checkout. Items are an independent copy of the cart
// at the moment of purchase.
type Order struct {
	ID            string     `json:"id"`
	Date          string     `json:"date"`
	Items         []LineItem `json:"items"`
	TotalPrice    int64      `json:"totalPrice"`
	Address       string     `json:"address"`
	PaymentMethod string     `json:"paymentMethod"`
	Status        string     `json:"status"`
}

// Clone returns a copy of o with its own items slice.
func (o Order) Clone() Order {
	if o.Items != nil {
		items := make([]LineItem, len(o.Items))
		copy(items, o.Items)
		o.Items = items
	}
	return o
}
