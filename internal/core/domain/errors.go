package domain

import "errors"

// Error strings produced by the data-access service. The form controller
// matches on these exact texts.
const (
	ERR_SERVER_ERROR = "Server error"
	ERR_NOT_FOUND    = "404 - Not Found"
)

// Messages shown to the user for the recognised errors.
const (
	MSG_SERVER_ERROR = "Could not connect to REST server. Please check your configuration details"
	MSG_NOT_FOUND    = "404 - Could not find API route. Please check your available APIs."
)

var (
	ErrServerError = errors.New(ERR_SERVER_ERROR)
	ErrNotFound    = errors.New(ERR_NOT_FOUND)
)
