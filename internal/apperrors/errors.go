// Package apperrors holds the sentinel errors shared across packages and
// mapped to HTTP status codes at the API boundary.
package apperrors

import "errors"

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrNoData indicates that the upstream source returned nothing usable for
// any of the requested currencies.
var ErrNoData = errors.New("no data available")

// ErrUnsupportedCurrency indicates a currency code outside the catalog.
var ErrUnsupportedCurrency = errors.New("unsupported currency")
