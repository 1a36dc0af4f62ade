package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"kicks/internal/models"
	"kicks/internal/repositories"
	"kicks/internal/validation"
)

// FilterAll matches every brand or gender.
const FilterAll = "all"

// Filter narrows the product listing. Empty or "all" brand/gender match
// everything; Search is a case-insensitive substring of the title.
type Filter struct {
	Brand  string `query:"brand"`
	Gender string `query:"gender"`
	Search string `query:"search"`
}

// CatalogService handles the product catalog.
type CatalogService struct {
	repo repositories.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo repositories.ProductRepository) *CatalogService {
	return &CatalogService{
		repo: repo,
	}
}

// List returns the products matching f.
func (s *CatalogService) List(f Filter) ([]models.Product, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(f.Search)
	matched := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !matchesFacet(f.Brand, p.Brand) || !matchesFacet(f.Gender, p.Gender) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		matched = append(matched, p)
	}
	return matched, nil
}

func matchesFacet(want, got string) bool {
	return want == "" || want == FilterAll || want == got
}

// Get retrieves a single product by its ID.
func (s *CatalogService) Get(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// Create validates and stores a product.
func (s *CatalogService) Create(product *models.Product) error {
	if err := validation.Validator().Struct(product); err != nil {
		return fmt.Errorf("invalid product %q: %w", product.Title, err)
	}
	return s.repo.Create(product)
}

// Reprice sets a product's price from displayed price text such as
// "₹11,495". A markdown price at or below the new price is dropped.
func (s *CatalogService) Reprice(id, priceText string) (*models.Product, error) {
	price := ParsePrice(priceText)
	if price <= 0 {
		return nil, &validation.FieldError{Field: "price", Message: "Please enter a valid price"}
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	product.Price = price
	if product.OriginalPrice <= price {
		product.OriginalPrice = 0
	}
	if err := validation.Validator().Struct(product); err != nil {
		return nil, fmt.Errorf("invalid product %q: %w", product.Title, err)
	}
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

// Remove deletes a product from the catalog. Carts already holding it keep
// their copy of the display fields.
func (s *CatalogService) Remove(id string) error {
	return s.repo.Delete(id)
}

var priceDigits = regexp.MustCompile(`[\d,]+`)

// ParsePrice reads a displayed price such as "₹12,995" as whole rupees.
// Text without digits parses as 0.
func ParsePrice(text string) int64 {
	match := priceDigits.FindString(text)
	if match == "" {
		return 0
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(match, ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
