package failure

import (
	"errors"
	"net/http"
)

const (
	KindValidation           = "validation"
	KindAvailabilityConflict = "availability_conflict"
	KindNotFound             = "not_found"
	KindStateTransition      = "state_transition"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
type Failure struct {
	Code    int    `json:"code"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Kind: KindValidation, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Kind: KindValidation, Message: "invalid limit parameter"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}
var ResourceRestrictedError = &Failure{Code: http.StatusForbidden, Message: "You don't have permission to access this resource"}

// Error returns the error code and message in a formatted string.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Kind:    KindValidation,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Kind:    KindNotFound,
		Message: entityName,
	}
}

// Conflict returns a new Failure with code for conflict situations.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Message: message,
	}
}

// AvailabilityConflict reports that a requested room and date range collided with a blocking booking.
// The caller is expected to search again; the conflict is never resolved by substituting rooms.
func AvailabilityConflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindAvailabilityConflict,
		Message: message,
	}
}

// StateTransition returns a new Failure for an illegal status change.
func StateTransition(message string) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindStateTransition,
		Message: message,
	}
}

func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the taxonomy kind of an error interface, or an empty string.
func GetKind(err error) string {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return ""
}

func IsAvailabilityConflict(err error) bool {
	return GetKind(err) == KindAvailabilityConflict
}

func IsNotFound(err error) bool {
	return GetKind(err) == KindNotFound
}

func IsStateTransition(err error) bool {
	return GetKind(err) == KindStateTransition
}

func IsValidation(err error) bool {
	return GetKind(err) == KindValidation
}
