// Package handler contains the HTTP handlers for the poolfit REST API.
// Handlers parse and validate requests, delegate to the service layer,
// and translate application errors to HTTP responses. They hold no
// business logic of their own.
package handler
