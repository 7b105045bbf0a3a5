package domain

import (
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrorDomain is reported in google.rpc.ErrorInfo details.
const ErrorDomain = "classbooking"

// Error is a typed failure carrying a gRPC code and a stable reason that
// clients switch on ("CLASS_FULL", "BOOKING_CLOSED", ...).
type Error struct {
	Code    codes.Code
	Reason  string
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches sentinels by reason so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Reason == t.Reason
}

func (e *Error) GRPCStatus() *status.Status {
	st := status.New(e.Code, e.Message)
	if e.Reason == "" {
		return st
	}
	detailed, err := st.WithDetails(&errdetails.ErrorInfo{Reason: e.Reason, Domain: ErrorDomain})
	if err != nil {
		return st
	}
	return detailed
}

var (
	ErrUnauthenticated  = &Error{Code: codes.Unauthenticated, Reason: "UNAUTHENTICATED", Message: "Login required"}
	ErrPermissionDenied = &Error{Code: codes.PermissionDenied, Reason: "STAFF_ONLY", Message: "Staff only"}

	ErrClassNotFound    = &Error{Code: codes.NotFound, Reason: "CLASS_NOT_FOUND", Message: "Class not found"}
	ErrBookingNotFound  = &Error{Code: codes.NotFound, Reason: "BOOKING_NOT_FOUND", Message: "Booking not found"}
	ErrTemplateNotFound = &Error{Code: codes.NotFound, Reason: "TEMPLATE_NOT_FOUND", Message: "Template not found"}
	ErrProfileNotFound  = &Error{Code: codes.NotFound, Reason: "PROFILE_NOT_FOUND", Message: "Profile not found"}

	ErrAlreadyBooked = &Error{Code: codes.AlreadyExists, Reason: "ALREADY_BOOKED", Message: "Already booked"}
	ErrAlreadyExists = &Error{Code: codes.AlreadyExists, Reason: "ALREADY_EXISTS", Message: "Record already exists"}

	ErrBookingClosed   = &Error{Code: codes.FailedPrecondition, Reason: "BOOKING_CLOSED", Message: "Booking closed for this class"}
	ErrClassCancelled  = &Error{Code: codes.FailedPrecondition, Reason: "CLASS_CANCELLED", Message: "Class has been cancelled"}
	ErrInvalidCapacity = &Error{Code: codes.FailedPrecondition, Reason: "INVALID_CAPACITY", Message: "Class has no capacity set"}
	ErrClassFull       = &Error{Code: codes.FailedPrecondition, Reason: "CLASS_FULL", Message: "Class is full"}
	ErrNoActiveBooking = &Error{Code: codes.FailedPrecondition, Reason: "NO_ACTIVE_BOOKING", Message: "No active booking found"}
	ErrClassStarted    = &Error{Code: codes.FailedPrecondition, Reason: "CLASS_STARTED", Message: "Class has already started"}
	ErrInvalidState    = &Error{Code: codes.FailedPrecondition, Reason: "NOT_ACTIVE_BOOKING", Message: "Not an active booking"}

	ErrTransient       = &Error{Code: codes.Aborted, Reason: "TRANSIENT", Message: "Operation could not be committed, retry"}
	ErrMalformedRecord = &Error{Code: codes.Internal, Reason: "MALFORMED_RECORD", Message: "Stored record is malformed"}
)

func InvalidArgument(msg string) error {
	return &Error{Code: codes.InvalidArgument, Reason: "INVALID_ARGUMENT", Message: msg}
}

func Internal(err error) error {
	return &Error{Code: codes.Internal, Reason: "INTERNAL", Message: "Internal error", cause: err}
}

// Wrap attaches a cause to a sentinel while keeping errors.Is matching.
func Wrap(sentinel *Error, cause error) error {
	return &Error{Code: sentinel.Code, Reason: sentinel.Reason, Message: sentinel.Message, cause: cause}
}

// AsError returns err as a typed *Error, converting anything untyped to
// Internal so callers at the edge always have a code.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return Internal(err).(*Error)
}

func Malformed(kind, id string, err error) error {
	return Wrap(ErrMalformedRecord, fmt.Errorf("%s %q: %w", kind, id, err))
}
