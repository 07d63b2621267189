package model

import (
	"time"
	"unicode/utf8"

	domainErrors "github.com/polkiloo/orders/internal/domain/errors"
)

// Category classifies catalog products.
type Category string

const (
	CategoryMeal    Category = "MEAL"
	CategoryDrink   Category = "DRINK"
	CategorySide    Category = "SIDE"
	CategoryDessert Category = "DESSERT"
)

const (
	maxProductNameLength        = 50
	maxProductDescriptionLength = 50
)

// Product is a priced line-item snapshot captured at reservation time.
type Product struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description"`
	Pictures    []string  `json:"pictures"`
	Category    Category  `json:"category"`
	Quantity    int       `json:"quantity"`
}

// Validate reports the first violated product invariant.
func (p Product) Validate() error {
	if utf8.RuneCountInString(p.Name) > maxProductNameLength {
		return domainErrors.New(domainErrors.ErrInvalidProduct, "Name size must be lesser than 50")
	}
	if p.Price <= 0 {
		return domainErrors.New(domainErrors.ErrInvalidProduct, "Price must be greater than 0")
	}
	if utf8.RuneCountInString(p.Description) > maxProductDescriptionLength {
		return domainErrors.New(domainErrors.ErrInvalidProduct, "Description size must be lesser than 50")
	}
	switch p.Category {
	case CategoryMeal, CategoryDrink, CategorySide, CategoryDessert:
	default:
		return domainErrors.New(domainErrors.ErrInvalidCategory, "Category must be MEAL, DRINK, SIDE or DESSERT")
	}
	return nil
}

// ProductQuantity is a requested line item.
type ProductQuantity struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
