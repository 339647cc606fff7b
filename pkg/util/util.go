package util

import (
	"errors"
	"fmt"
	"math"
)

// error

type Error struct {
	orig error
	msg  string
	code error
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %s", e.msg, e.orig)
	}

	return e.msg
}

// Unwrap exposes both the classification sentinel and the original cause, so
// errors.Is matches either.
func (e *Error) Unwrap() []error {
	if e.orig == nil {
		return []error{e.code}
	}
	return []error{e.code, e.orig}
}

func WrapErrorf(orig error, code error, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

func (e *Error) Code() error {
	return e.code
}

var (
	ErrBadParamInput = errors.New("given Param is not valid")
	ErrNotFound      = errors.New("your requested Item is not found")
)

func DegreeToRadians(angle float64) float64 {
	return angle * (math.Pi / 180.0)
}

func RadiansToDegree(rad float64) float64 {
	return 180.0 * rad / math.Pi
}

func AssertPanic(cond bool, msg string) {
	if !cond {
		panic(msg)
	}
}
