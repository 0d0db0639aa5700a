package httpx

import "net/http"

// Error is a request-local failure with the status it maps to.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(msg string) error        { return &Error{http.StatusNotFound, msg} }
func NotAcceptable(msg string) error   { return &Error{http.StatusNotAcceptable, msg} }
func BadRequest(msg string) error      { return &Error{http.StatusBadRequest, msg} }
func Unauthorized(msg string) error    { return &Error{http.StatusUnauthorized, msg} }
func TooManyRequests(msg string) error { return &Error{http.StatusTooManyRequests, msg} }
