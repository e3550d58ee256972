package auth

import (
	"fmt"
	"net/http"
)

// Failure codes carried to clients. These are part of the API contract;
// the middleware serializes them verbatim.
const (
	CodeInvalidHeader    = "invalid_header"
	CodeInvalidSignature = "invalid_signature"
	CodeTokenExpired     = "token_expired"
	CodeInvalidClaims    = "invalid_claims"
	CodeUnauthorized     = "unauthorized"
)

// AuthError is the terminal failure produced by the authorization
// pipeline. StatusCode is the HTTP status the failure maps to; Code and
// Description form the machine-readable payload. Internal error detail
// is never carried here.
type AuthError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func invalidHeader(description string) *AuthError {
	return &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidHeader,
		Description: description,
	}
}

func invalidSignature() *AuthError {
	return &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidSignature,
		Description: "Signature verification failed.",
	}
}

func tokenExpired() *AuthError {
	return &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeTokenExpired,
		Description: "Token expired.",
	}
}

func incorrectClaims() *AuthError {
	return &AuthError{
		StatusCode:  http.StatusUnauthorized,
		Code:        CodeInvalidClaims,
		Description: "Incorrect claims. Please, check the audience and issuer.",
	}
}

func permissionsMissing() *AuthError {
	return &AuthError{
		StatusCode:  http.StatusBadRequest,
		Code:        CodeInvalidClaims,
		Description: "Permissions not included in JWT.",
	}
}

func permissionNotFound() *AuthError {
	return &AuthError{
		StatusCode:  http.StatusForbidden,
		Code:        CodeUnauthorized,
		Description: "Permission not found.",
	}
}
