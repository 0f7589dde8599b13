package model

import "strings"

// ProductFilter narrows a product listing. Zero-valued fields match everything.
type ProductFilter struct {
	Category string
	Name     string
	Code     string
	MinPrice *Price
	MaxPrice *Price
	MinStock *int
	MaxStock *int
}

// IsEmpty reports whether the filter matches every product.
func (f ProductFilter) IsEmpty() bool {
	return f.Category == "" && f.Name == "" && f.Code == "" &&
		f.MinPrice == nil && f.MaxPrice == nil &&
		f.MinStock == nil && f.MaxStock == nil
}

// Match reports whether p satisfies every set criterion.
// Category matches by name; name and code match case-insensitive substrings.
func (f ProductFilter) Match(p Product) bool {
	if f.Category != "" && !SameName(p.Category, f.Category) {
		return false
	}
	if f.Name != "" && !containsFold(p.Name, f.Name) {
		return false
	}
	if f.Code != "" && !containsFold(p.CodIdentification, f.Code) {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.MinStock != nil && p.Stock < *f.MinStock {
		return false
	}
	if f.MaxStock != nil && p.Stock > *f.MaxStock {
		return false
	}
	return true
}

// Apply returns the products that match the filter, preserving order.
func (f ProductFilter) Apply(products []Product) []Product {
	if f.IsEmpty() {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}
