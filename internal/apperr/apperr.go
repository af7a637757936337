package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies the failures that are allowed to cross a component
// boundary. Degraded writes and parse fallbacks never become an Error; they
// surface as notices on the successful result instead.
type Kind int

const (
	KindInternal Kind = iota
	KindConfig
	KindNotFound
	KindAuth
	KindProvider
	KindTimeout
)

type Error struct {
	Kind Kind
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Code
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, code string, err error) *Error {
	return &Error{Kind: kind, Code: code, Err: err}
}

func Config(code string, err error) *Error   { return New(KindConfig, code, err) }
func NotFound(code string, err error) *Error { return New(KindNotFound, code, err) }
func Auth(code string, err error) *Error     { return New(KindAuth, code, err) }
func Provider(code string, err error) *Error { return New(KindProvider, code, err) }
func Timeout(code string, err error) *Error  { return New(KindTimeout, code, err) }

func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindInternal
}

func CodeOf(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code
	}
	return "internal_error"
}
