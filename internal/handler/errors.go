package handler

import "fmt"

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindStoreFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStoreFailure:
		return "store_failure"
	default:
		return "unknown"
	}
}

// Error is every failure Handle can meet. Kinds are logged but all
// map to the same 500 response whose error field is Err's text.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(err error) *Error {
	return &Error{Kind: KindValidation, Err: err}
}

func storeError(err error) *Error {
	return &Error{Kind: KindStoreFailure, Err: err}
}

func unknownError(v interface{}) *Error {
	if err, ok := v.(error); ok {
		return &Error{Kind: KindUnknown, Err: err}
	}
	return &Error{Kind: KindUnknown, Err: fmt.Errorf("%v", v)}
}
