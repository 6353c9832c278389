package errors

import (
	"fmt"
	"net/http"
)

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthUserNotFound       = 2001
	ErrAuthEmailExists        = 2002
	ErrAuthInvalidToken       = 2003
	ErrAuthInvalidGoogleToken = 2004

	// Wardrobe errors (3000-3999)
	ErrWardrobeItemNotFound = 3000
	ErrWardrobeInvalidInput = 3001
	ErrWardrobeUploadFailed = 3002

	// Chat errors (4000-4999)
	ErrChatNotFound     = 4000
	ErrChatInvalidInput = 4001

	// Agent errors (5000-5999)
	ErrAgentInvalidInput = 5000
	ErrAgentUnavailable  = 5001
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "Invalid parameters"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "Service unavailable"},

	// Auth errors
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Incorrect email or password"},
	ErrAuthUserNotFound:       {ErrAuthUserNotFound, http.StatusNotFound, "User not found"},
	ErrAuthEmailExists:        {ErrAuthEmailExists, http.StatusBadRequest, "Email already registered"},
	ErrAuthInvalidToken:       {ErrAuthInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	ErrAuthInvalidGoogleToken: {ErrAuthInvalidGoogleToken, http.StatusUnauthorized, "Invalid Google token"},

	// Wardrobe errors
	ErrWardrobeItemNotFound: {ErrWardrobeItemNotFound, http.StatusNotFound, "Clothing item not found"},
	ErrWardrobeInvalidInput: {ErrWardrobeInvalidInput, http.StatusBadRequest, "Invalid clothing item"},
	ErrWardrobeUploadFailed: {ErrWardrobeUploadFailed, http.StatusInternalServerError, "Image upload failed"},

	// Chat errors
	ErrChatNotFound:     {ErrChatNotFound, http.StatusNotFound, "Chat not found"},
	ErrChatInvalidInput: {ErrChatInvalidInput, http.StatusBadRequest, "Invalid chat request"},

	// Agent errors
	ErrAgentInvalidInput: {ErrAgentInvalidInput, http.StatusBadRequest, "Invalid agent request"},
	ErrAgentUnavailable:  {ErrAgentUnavailable, http.StatusServiceUnavailable, "Agent is unavailable"},
}

// GetMessage returns the message for an error code
func GetMessage(code int) string {
	if c, ok := codeMap[code]; ok {
		return c.Message
	}
	return "Unknown error"
}

// GetHTTPStatus returns the HTTP status for an error code
func GetHTTPStatus(code int) int {
	if c, ok := codeMap[code]; ok {
		return c.Status
	}
	return http.StatusInternalServerError
}

// FormatError formats an error message with optional details
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
