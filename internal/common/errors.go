package common

import "fmt"

// NotFoundError indicates a resource was not found.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id '%s' not found", e.Resource, e.ID)
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError indicates invalid input data.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// UnauthorizedError indicates missing or invalid authentication.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// NewUnauthorizedError creates a new UnauthorizedError.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// InvalidCredentialsError indicates a channel was called without its stored
// credentials. No network request is made.
type InvalidCredentialsError struct {
	Channel string
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("%s: api key or secret is missing", e.Channel)
}

// NewInvalidCredentialsError creates a new InvalidCredentialsError.
func NewInvalidCredentialsError(channel string) *InvalidCredentialsError {
	return &InvalidCredentialsError{Channel: channel}
}

// APIError indicates a channel API answered with a non-2xx status.
type APIError struct {
	Channel    string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s api error: status %d: %s", e.Channel, e.StatusCode, e.Body)
}

// NewAPIError creates a new APIError.
func NewAPIError(channel string, statusCode int, body string) *APIError {
	return &APIError{Channel: channel, StatusCode: statusCode, Body: body}
}

// TransportError indicates the request never completed (network, timeout).
type TransportError struct {
	Channel string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport error: %v", e.Channel, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a new TransportError.
func NewTransportError(channel string, err error) *TransportError {
	return &TransportError{Channel: channel, Err: err}
}
