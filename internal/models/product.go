package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Price is a decimal amount the commerce API sends either as a string or a number
type Price string

// UnmarshalJSON accepts "9.99", 9.99 and null
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid price %s: %w", data, err)
	}
	*p = Price(n.String())
	return nil
}

// Cents converts the price to an integer amount of minor units
func (p Price) Cents() (int64, error) {
	if p == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(string(p), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", string(p), err)
	}
	if f < 0 {
		return 0, fmt.Errorf("negative price %q", string(p))
	}
	return int64(f*100 + 0.5), nil
}

// ProductGroup is the category a product belongs to
type ProductGroup struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ProductImage is an image attached to a product
type ProductImage struct {
	URL string `json:"url"`
}

// ProductVariant is a purchasable variant of a product
type ProductVariant struct {
	ID         int64  `json:"id"`
	Name       string `json:"name,omitempty"`
	Price      Price  `json:"price"`
	StockCount *int   `json:"stock_count,omitempty"`
}

// CommerceProduct is a product as returned by the commerce API
type CommerceProduct struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Path        string           `json:"path"`
	Description *string          `json:"description"`
	Currency    string           `json:"currency"`
	StockCount  *int             `json:"stock_count"`
	Group       *ProductGroup    `json:"group"`
	Images      []ProductImage   `json:"images"`
	Variants    []ProductVariant `json:"variants"`
}

// Product is the simplified product shape served to the storefront
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Path        string           `json:"path"`
	Price       string           `json:"price"`
	Currency    string           `json:"currency"`
	Description string           `json:"description"`
	Image       *string          `json:"image"`
	StockCount  *int             `json:"stock_count,omitempty"`
	Group       *ProductGroup    `json:"group"`
	Variants    []ProductVariant `json:"variants,omitempty"`
}

// Variant returns the variant with the given id, or the first variant when id is 0
func (p *CommerceProduct) Variant(id int64) (*ProductVariant, bool) {
	if len(p.Variants) == 0 {
		return nil, false
	}
	if id == 0 {
		return &p.Variants[0], true
	}
	for i := range p.Variants {
		if p.Variants[i].ID == id {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

// Simplify converts the commerce product into the storefront shape.
// Variants are only included when withVariants is set.
func (p *CommerceProduct) Simplify(withVariants bool) Product {
	out := Product{
		ID:         p.ID,
		Name:       p.Name,
		Path:       p.Path,
		Price:      "0.00",
		Currency:   p.Currency,
		StockCount: p.StockCount,
		Group:      p.Group,
	}
	if len(p.Variants) > 0 && p.Variants[0].Price != "" {
		out.Price = string(p.Variants[0].Price)
	}
	if out.Currency == "" {
		out.Currency = "USD"
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if len(p.Images) > 0 && p.Images[0].URL != "" {
		url := p.Images[0].URL
		out.Image = &url
	}
	if withVariants {
		out.Variants = p.Variants
	}
	return out
}
