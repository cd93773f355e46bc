package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrNotFound         = errors.New("not found")
	ErrItemNotFound     = errors.New("item not found upstream")
	ErrCheckNotFound    = errors.New("check configuration not found")
	ErrMissingAPIKey    = errors.New("check configuration has no api key")
	ErrMalformedMessage = errors.New("malformed continuation message")
	ErrQueueFull        = errors.New("queue is at capacity, try again later")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrUnknownCheck     = errors.New("unknown check name")
)
