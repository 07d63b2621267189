package errors

import "errors"

var (
	ErrNotFound = errors.New("not found")

	ErrInvalidOrder              = errors.New("invalid order")
	ErrInvalidProduct            = errors.New("invalid product")
	ErrInvalidCategory           = errors.New("invalid category")
	ErrOrderNotFound             = errors.New("order not found")
	ErrInvalidPaymentOrderStatus = errors.New("invalid payment order status")
	ErrCreatePayment             = errors.New("create payment")
	ErrReserveProducts           = errors.New("reserve products")
	ErrDatabase                  = errors.New("database")
)

// Error is a domain failure of a given kind carrying a caller-facing message.
// Both Kind and the optional cause are visible to errors.Is and errors.As.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// New creates a domain error of the given kind.
func New(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a domain error of the given kind around an underlying cause.
func Wrap(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Kind.Error() + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Kind.Error() + ": " + e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// MessageOf returns the caller-facing message of the outermost domain error,
// falling back to err.Error() for anything else.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
