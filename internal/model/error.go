package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ValidationErrorResponse carries per-field validation failures.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}

// Kind classifies a domain failure. The set is closed.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindDuplicate
	KindNotFound
	KindReferentialIntegrity
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDuplicate:
		return "duplicate"
	case KindNotFound:
		return "not_found"
	case KindReferentialIntegrity:
		return "referential_integrity"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON       = "INVALID_JSON"
	ErrCodeMissingField      = "MISSING_FIELD"
	ErrCodeValidation        = "VALIDATION_FAILED"
	ErrCodeProductNotFound   = "PRODUCT_NOT_FOUND"
	ErrCodeDuplicateCode     = "DUPLICATE_CODE"
	ErrCodeDuplicateName     = "DUPLICATE_NAME"
	ErrCodeInsufficientStock = "INSUFFICIENT_STOCK"
	ErrCodeVersionConflict   = "VERSION_CONFLICT"
	ErrCodeCategoryNotFound  = "CATEGORY_NOT_FOUND"
	ErrCodeDuplicateCategory = "DUPLICATE_CATEGORY"
	ErrCodeCategoryInUse     = "CATEGORY_IN_USE"
	ErrCodeCategoryConflict  = "CATEGORY_CONFLICT"
	ErrCodeUnauthorised      = "UNAUTHORIZED"
	ErrCodeTokenExpired      = "TOKEN_EXPIRED"
	ErrCodeBadCredentials    = "INVALID_CREDENTIALS"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeUserDisabled      = "USER_DISABLED"
	ErrCodeAuthUnavailable   = "AUTH_UNAVAILABLE"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeMethodNotAllowed  = "METHOD_NOT_ALLOWED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// DomainError is a business rule failure callers branch on by Kind.
type DomainError struct {
	Kind    Kind
	Code    string
	Message string

	// Fields maps request fields to the rule they broke, for validation failures.
	Fields map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(kind Kind, code, message string) *DomainError {
	return &DomainError{
		Kind:    kind,
		Code:    code,
		Message: message,
	}
}

// NewValidationError reports a missing or malformed field.
func NewValidationError(message string) *DomainError {
	return NewDomainError(KindValidation, ErrCodeValidation, message)
}

// NewFieldValidationError reports one or more invalid request fields.
func NewFieldValidationError(fields map[string]string) *DomainError {
	e := NewValidationError("request validation failed")
	e.Fields = fields
	return e
}

// KindOf returns the kind of the first DomainError in err's chain.
func KindOf(err error) (Kind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

// Common domain errors
var (
	ErrProductNotFound   = NewDomainError(KindNotFound, ErrCodeProductNotFound, "product not found")
	ErrDuplicateCode     = NewDomainError(KindDuplicate, ErrCodeDuplicateCode, "a product with this identification code already exists")
	ErrDuplicateName     = NewDomainError(KindDuplicate, ErrCodeDuplicateName, "a product with this name already exists")
	ErrInsufficientStock = NewDomainError(KindValidation, ErrCodeInsufficientStock, "quantity exceeds available stock")
	ErrVersionConflict   = NewDomainError(KindConflict, ErrCodeVersionConflict, "product was modified concurrently, reload and retry")

	ErrCategoryNotFound  = NewDomainError(KindNotFound, ErrCodeCategoryNotFound, "category not found")
	ErrDuplicateCategory = NewDomainError(KindDuplicate, ErrCodeDuplicateCategory, "a category with this name already exists")
	ErrCategoryInUse     = NewDomainError(KindReferentialIntegrity, ErrCodeCategoryInUse, "category is referenced by existing products")
	ErrCategoryConflict  = NewDomainError(KindConflict, ErrCodeCategoryConflict, "categories changed concurrently, retry")
)
