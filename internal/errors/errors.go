package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return errors.As(err, target) }

// Kind classifies a domain error and decides its HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidInput
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a domain error carrying a kind, a stable code and optional details.
// Two errors match under errors.Is when their codes are equal.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details []string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Withf returns a copy of e with a formatted message.
func (e *Error) Withf(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// WithDetails returns a copy of e carrying the given details.
func (e *Error) WithDetails(details ...string) *Error {
	cp := *e
	cp.Details = append([]string(nil), details...)
	return &cp
}

func newError(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// InvalidInput builds a 400 error.
func InvalidInput(code, message string) *Error { return newError(KindInvalidInput, code, message) }

// Unauthorized builds a 401 error.
func Unauthorized(code, message string) *Error { return newError(KindUnauthorized, code, message) }

// Forbidden builds a 403 error.
func Forbidden(code, message string) *Error { return newError(KindForbidden, code, message) }

// NotFound builds a 404 error.
func NotFound(code, message string) *Error { return newError(KindNotFound, code, message) }

// Conflict builds a 409 error.
func Conflict(code, message string) *Error { return newError(KindConflict, code, message) }

// Internal builds a 500 error.
func Internal(code, message string) *Error { return newError(KindInternal, code, message) }

var (
	// ErrValidation is returned when a request is missing or has malformed fields.
	ErrValidation = InvalidInput("VALIDATION_ERROR", "invalid request")
	// ErrInvalidAmount is returned when amount is not a positive number.
	ErrInvalidAmount = InvalidInput("INVALID_AMOUNT", "amount must be a positive number")
	// ErrInvalidMethod is returned for payment methods outside cash, card, online.
	ErrInvalidMethod = InvalidInput("INVALID_METHOD", "payment method must be one of: cash, card, online")
	// ErrInvalidPeriod is returned for a month outside 1-12 or a year before 1900.
	ErrInvalidPeriod = InvalidInput("INVALID_PERIOD", "invalid or missing month and/or year")
	// ErrInvalidFilter is returned for an unknown status or time filter.
	ErrInvalidFilter = InvalidInput("INVALID_FILTER", "invalid filter")
	// ErrInsufficientAmount is returned when a payment is less than the amount due.
	ErrInsufficientAmount = InvalidInput("INSUFFICIENT_AMOUNT", "insufficient amount")
	// ErrInvalidCapacity is returned when a room capacity is not positive.
	ErrInvalidCapacity = InvalidInput("INVALID_CAPACITY", "capacity must be a positive integer")
	// ErrInvalidRole is returned for roles other than student and admin.
	ErrInvalidRole = InvalidInput("INVALID_ROLE", "invalid role specified")
	// ErrAvatarRequired is returned when registration carries no avatar file.
	ErrAvatarRequired = InvalidInput("AVATAR_REQUIRED", "avatar file is required")
	// ErrAvatarUpload is returned when the avatar could not be stored.
	ErrAvatarUpload = InvalidInput("AVATAR_UPLOAD_FAILED", "failed to upload avatar")
	// ErrWrongPassword is returned when the old password does not match.
	ErrWrongPassword = InvalidInput("INVALID_OLD_PASSWORD", "invalid old password")

	// ErrInvalidCredentials is returned when username/email or password is incorrect.
	ErrInvalidCredentials = Unauthorized("INVALID_CREDENTIALS", "invalid user credentials")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid, expired or already used.
	ErrInvalidRefreshToken = Unauthorized("INVALID_REFRESH_TOKEN", "refresh token is invalid, expired or used")
	// ErrUnauthenticated is returned when no acting user is available.
	ErrUnauthenticated = Unauthorized("UNAUTHORIZED", "unauthorized request")
	// ErrForbidden is returned when the acting user lacks the required role.
	ErrForbidden = Forbidden("FORBIDDEN", "forbidden")

	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = NotFound("USER_NOT_FOUND", "user not found")
	// ErrRoomNotFound is returned when a room is not found.
	ErrRoomNotFound = NotFound("ROOM_NOT_FOUND", "room not found")
	// ErrPaymentNotFound is returned when no payment matches.
	ErrPaymentNotFound = NotFound("PAYMENT_NOT_FOUND", "payment not found")

	// ErrUserExists is returned when username, email or cnic is taken.
	ErrUserExists = Conflict("USER_ALREADY_EXISTS", "user with this email, username or cnic already exists")
	// ErrRoomExists is returned when (roomNumber, floor) is taken by another room.
	ErrRoomExists = Conflict("ROOM_ALREADY_EXISTS", "room with this number and floor already exists")
	// ErrRoomFull is returned when a room has no free place.
	ErrRoomFull = Conflict("ROOM_FULL", "room is full")
	// ErrAlreadyInRoom is returned when the user already occupies the target room.
	ErrAlreadyInRoom = Conflict("ALREADY_IN_ROOM", "user is already assigned to this room")
	// ErrAssignedElsewhere is returned when the user occupies another room.
	ErrAssignedElsewhere = Conflict("ASSIGNED_TO_ANOTHER_ROOM", "user is already assigned to another room")
	// ErrCapacityBelowOccupancy is returned when a capacity update would evict occupants.
	ErrCapacityBelowOccupancy = Conflict("CAPACITY_BELOW_OCCUPANCY", "capacity is lower than the current number of occupants")
	// ErrRoomMismatch is returned when the given room is not the user's room.
	ErrRoomMismatch = Conflict("ROOM_MISMATCH", "provided room does not belong to the user")
	// ErrNoOpenPayment is returned when no unpaid record exists for the period.
	ErrNoOpenPayment = Conflict("NO_OPEN_PAYMENT", "either payment does not exist or has already been paid")
	// ErrRoleUnchanged is returned when a user already has the requested role.
	ErrRoleUnchanged = Conflict("ROLE_UNCHANGED", "user already has this role")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    []string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Code:    e.Code,
		Details: e.Details,
	}
}

// StatusCode returns the HTTP status for a kind.
func (k Kind) StatusCode() int {
	switch k {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything that is not a domain error becomes a generic 500.
func MapErrorToHTTP(err error) *HTTPError {
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Kind != KindInternal {
		httpErr := NewHTTPError(domainErr.Kind.StatusCode(), domainErr.Message, domainErr.Code)
		httpErr.Details = domainErr.Details
		return httpErr
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
