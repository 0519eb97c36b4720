package models

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is an error that carries the HTTP status it should be reported with.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

func newStatusError(status int, format string, args ...interface{}) *StatusError {
	return &StatusError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a resource that is absent from the backing store.
func NotFound(format string, args ...interface{}) *StatusError {
	return newStatusError(http.StatusNotFound, format, args...)
}

// Forbidden reports a destination type blocked by the allow list.
func Forbidden(format string, args ...interface{}) *StatusError {
	return newStatusError(http.StatusForbidden, format, args...)
}

// Timeout reports a store search that exceeded its own deadline.
func Timeout(format string, args ...interface{}) *StatusError {
	return newStatusError(http.StatusRequestTimeout, format, args...)
}

// Invalid reports a malformed request rejected before any I/O.
func Invalid(format string, args ...interface{}) *StatusError {
	return newStatusError(http.StatusBadRequest, format, args...)
}

// Internal reports a failure that is not the caller's fault.
func Internal(format string, args ...interface{}) *StatusError {
	return newStatusError(http.StatusInternalServerError, format, args...)
}

// StatusOf returns the HTTP status for err, 500 when err carries none.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return http.StatusInternalServerError
}

// restStatusOrder lists HTTP statuses in wire ordinal order.
var restStatusOrder = []int{
	100, 101,
	200, 201, 202, 203, 204, 205, 206, 207,
	300, 301, 302, 303, 304, 305, 307,
	400, 401, 402, 403, 404, 405, 406, 407, 408, 409, 410, 411, 412, 413, 414, 415, 416, 417,
	422, 423, 424, 429,
	500, 501, 502, 503, 504, 505, 507,
}

// StatusOrdinal returns the wire ordinal of an HTTP status.
func StatusOrdinal(status int) (int, error) {
	for i, s := range restStatusOrder {
		if s == status {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown status %d", status)
}

// StatusFromOrdinal is the inverse of StatusOrdinal.
func StatusFromOrdinal(ordinal int) (int, error) {
	if ordinal < 0 || ordinal >= len(restStatusOrder) {
		return 0, fmt.Errorf("unknown status ordinal %d", ordinal)
	}
	return restStatusOrder[ordinal], nil
}
