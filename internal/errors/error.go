// Package errors provides custom error types for product-related operations.
package errors

import "errors"

// ErrProductNotFound is returned when an update references an id that does
// not exist. The message is part of the API contract and is rendered
// verbatim in the HTTP response body.
var ErrProductNotFound = errors.New("Cannot find product with specified id")

// ErrExportFailed wraps any failure while building or serializing the
// spreadsheet export.
var ErrExportFailed = errors.New("Failed XLS export")

// InvalidArgumentError signals that a user-supplied field failed
// validation. The message identifies the violated rule and is rendered
// verbatim in the HTTP response body.
type InvalidArgumentError struct {
	msg string
}

func (e *InvalidArgumentError) Error() string { return e.msg }

var (
	ErrNameMissing      = &InvalidArgumentError{"Name is missing"}
	ErrNameEmpty        = &InvalidArgumentError{"Name cannot be empty"}
	ErrPriceMissing     = &InvalidArgumentError{"Price is missing"}
	ErrPriceNegative    = &InvalidArgumentError{"Price cannot be negative"}
	ErrQuantityMissing  = &InvalidArgumentError{"Quantity is missing"}
	ErrQuantityNegative = &InvalidArgumentError{"Quantity cannot be negative"}
)

// IsInvalidArgument reports whether err is (or wraps) an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var ia *InvalidArgumentError
	return errors.As(err, &ia)
}
