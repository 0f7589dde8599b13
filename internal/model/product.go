package model

import (
	"strings"
	"time"
)

// Product represents a stocked item in the inventory.
type Product struct {
	ID                string    `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	CodIdentification string    `json:"codIdentification" db:"cod_identification"`
	Description       string    `json:"description" db:"description"`
	Stock             int       `json:"stock" db:"stock"`
	Price             Price     `json:"price" db:"price"`
	Category          string    `json:"category" db:"category"`
	ImageURL          string    `json:"imageUrl,omitempty" db:"image_url"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`
	Version           int       `json:"version" db:"version"`
}

// ProductInput is the payload for creating a product.
type ProductInput struct {
	Name              string `json:"name" validate:"required,max=200"`
	CodIdentification string `json:"codIdentification" validate:"required,max=100"`
	Description       string `json:"description"`
	Stock             *int   `json:"stock" validate:"required,gte=0"`
	Price             *Price `json:"price" validate:"required,gte=0"`
	Category          string `json:"category" validate:"max=100"`
	ImageURL          string `json:"imageUrl" validate:"omitempty,url"`
}

// ProductPatch is a partial update. Nil fields keep their stored value.
type ProductPatch struct {
	Name              *string `json:"name,omitempty" validate:"omitnil,min=1,max=200"`
	CodIdentification *string `json:"codIdentification,omitempty" validate:"omitnil,min=1,max=100"`
	Description       *string `json:"description,omitempty"`
	Stock             *int    `json:"stock,omitempty" validate:"omitnil,gte=0"`
	Price             *Price  `json:"price,omitempty" validate:"omitnil,gte=0"`
	Category          *string `json:"category,omitempty" validate:"omitnil,max=100"`
	ImageURL          *string `json:"imageUrl,omitempty" validate:"omitnil,omitempty,url"`

	// Version, when set, must match the stored version.
	Version *int `json:"version,omitempty" validate:"omitnil,gte=1"`
}

// Apply merges the patch onto p.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.CodIdentification != nil {
		p.CodIdentification = strings.TrimSpace(*patch.CodIdentification)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*patch.ImageURL)
	}
}

// SameName reports whether two product or category names collide.
// Names are compared trimmed and case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// SameCode reports whether two identification codes collide.
func SameCode(a, b string) bool {
	return strings.TrimSpace(a) == strings.TrimSpace(b)
}

// StockReduction is the payload for reducing a product's stock.
type StockReduction struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}
