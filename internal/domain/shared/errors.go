// Package shared holds the error vocabulary common to the cart and catalogue domains.
package shared

// Error codes, each mapped to one HTTP status at the edge
const (
	CodeNotFound         = "NOT_FOUND"
	CodeInvalidInput     = "INVALID_INPUT"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// DomainError is an expected failure with a stable code and a message fit
// for the response body.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is matches any DomainError carrying the same code, so
// errors.Is(err, ErrNotFound) holds for every not-found error.
func (e *DomainError) Is(target error) bool {
	de, ok := target.(*DomainError)
	return ok && de.Code == e.Code
}

// Generic errors of each code
var (
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrInvalidInput     = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrStoreUnavailable = NewDomainError(CodeStoreUnavailable, "database not available")
)
