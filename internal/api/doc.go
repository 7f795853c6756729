// Package api implements the HTTP handlers for the conversation, OCR and
// translation endpoints, along with request models and the mapping from
// domain errors to HTTP status codes.
package api
