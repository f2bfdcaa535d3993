package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound = errors.New("resource not found")

	// Graph / reference errors
	ErrInvalidReference = errors.New("reference does not resolve to an existing page")

	// Story lifecycle errors
	ErrNotPublished = errors.New("story is not published")
	ErrNoStartPage  = errors.New("story has no start page")
	ErrNotAnEnding  = errors.New("page is not an ending page")

	// Feedback errors
	ErrAlreadyReported = errors.New("story already reported by this user")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized") // Authentication required or failed
	ErrForbidden    = errors.New("forbidden")    // Authenticated, but lacks permission

	// Token Errors
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenExpired   = errors.New("token has expired")

	// General Request/Server Errors
	ErrValidation     = errors.New("invalid input data")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
)
