package model

// Category is a named product grouping. Products reference it by name only.
type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// CategoryRequest is the payload for creating or deleting a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryList wraps categories for the list endpoint.
type CategoryList struct {
	Categories []Category `json:"categories"`
}
