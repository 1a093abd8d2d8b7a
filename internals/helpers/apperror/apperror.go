// Package apperror holds the domain error taxonomy shared by services and the HTTP boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	CodeBadRequest            = "BAD_REQUEST"
	CodeValidation            = "VALIDATION_ERROR"
	CodeUnauthorized          = "UNAUTHORIZED"
	CodeForbidden             = "FORBIDDEN"
	CodeNotFound              = "NOT_FOUND"
	CodeConflict              = "CONFLICT"
	CodeDeadlineExceeded      = "DEADLINE_EXCEEDED"
	CodeExamNotStarted        = "EXAM_NOT_STARTED"
	CodeExamExpired           = "EXAM_EXPIRED"
	CodeNotHomeroomTeacher    = "NOT_HOMEROOM_TEACHER"
	CodeStudentUnassigned     = "STUDENT_UNASSIGNED"
	CodeNotAuthorizedForClass = "NOT_AUTHORIZED_FOR_CLASS"
	CodeUpstream              = "UPSTREAM_ERROR"
)

type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// With menambah detail (mis. boundary timestamp).
func (e *Error) With(key string, val any) *Error {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = val
	return e
}

// Wrap menyimpan cause untuk log server; client tetap dapat Message.
func (e *Error) Wrap(cause error) *Error {
	e.cause = cause
	return e
}

func New(status int, code, msg string) *Error {
	return &Error{Status: status, Code: code, Message: msg}
}

// As unwraps err into *Error.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	ae, ok := As(err)
	return ok && ae.Code == code
}

/* ===== Constructors ===== */

func BadRequest(msg string) *Error   { return New(http.StatusBadRequest, CodeBadRequest, msg) }
func Validation(msg string) *Error   { return New(http.StatusUnprocessableEntity, CodeValidation, msg) }
func Unauthorized(msg string) *Error { return New(http.StatusUnauthorized, CodeUnauthorized, msg) }
func Forbidden(msg string) *Error    { return New(http.StatusForbidden, CodeForbidden, msg) }
func Conflict(msg string) *Error     { return New(http.StatusConflict, CodeConflict, msg) }

func NotFound(entity string) *Error {
	return New(http.StatusNotFound, CodeNotFound, entity+" not found")
}

func DeadlineExceeded(deadline time.Time) *Error {
	return New(http.StatusForbidden, CodeDeadlineExceeded, "submission deadline has passed").
		With("deadline", deadline)
}

func ExamNotStarted(start time.Time) *Error {
	return New(http.StatusForbidden, CodeExamNotStarted, "exam has not started yet").
		With("start_time", start)
}

func ExamExpired(end time.Time) *Error {
	return New(http.StatusForbidden, CodeExamExpired, "exam has ended").
		With("end_time", end)
}

func NotHomeroomTeacher() *Error {
	return New(http.StatusForbidden, CodeNotHomeroomTeacher, "teacher does not manage any active class")
}

func StudentUnassigned() *Error {
	return New(http.StatusForbidden, CodeStudentUnassigned, "student is not assigned to a class")
}

func NotAuthorizedForClass() *Error {
	return New(http.StatusForbidden, CodeNotAuthorizedForClass, "not authorized for this class")
}

// Upstream: kegagalan email/storage, pesan ke client dibuat generik.
func Upstream(what string, cause error) *Error {
	return New(http.StatusBadGateway, CodeUpstream, what+" is unavailable, please try again later").Wrap(cause)
}
