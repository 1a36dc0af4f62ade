package models

import "time"

// Product is a catalog entry shown on the storefront.
type Product struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Title         string    `json:"title" validate:"required,min=2,max=100"`
	Brand         string    `json:"brand" gorm:"index" validate:"required"`
	Gender        string    `json:"gender" gorm:"index" validate:"required,oneof=men women unisex kids"`
	Image         string    `json:"image"`
	Price         int64     `json:"price" validate:"required,gt=0"`
	OriginalPrice int64     `json:"original_price,omitempty" validate:"omitempty,gtefield=Price"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// Snapshot returns the display fields a cart line item copies from the product.
func (p *Product) Snapshot() LineItem {
	return LineItem{
		ID:    p.ID,
		Title: p.Title,
		Image: p.Image,
		Price: p.Price,
	}
}
