package httperr

import (
	"errors"
	"fmt"

	"github.com/BruksfildServices01/opsdesk/internal/store"
)

type Kind uint8

const (
	KindInvalid Kind = iota
	KindConflict
	KindNotFound
	KindTransient
	// KindPartial marks a secondary effect (audit write) that failed after the
	// primary mutation committed. Callers treat the operation as successful.
	KindPartial
	KindUnauthorized
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindTransient:
		return "transient"
	case KindPartial:
		return "partial"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	}
	return "unknown"
}

type BusinessError struct {
	Kind Kind
	Code string
	Err  error
}

func (e BusinessError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e BusinessError) Unwrap() error {
	return e.Err
}

func ErrBusiness(code string) error {
	return BusinessError{Kind: KindInvalid, Code: code}
}

func Conflict(code string) error {
	return BusinessError{Kind: KindConflict, Code: code}
}

func NotFound(code string) error {
	return BusinessError{Kind: KindNotFound, Code: code}
}

func Transient(code string, err error) error {
	return BusinessError{Kind: KindTransient, Code: code, Err: err}
}

func Partial(code string, err error) error {
	return BusinessError{Kind: KindPartial, Code: code, Err: err}
}

func Unauthorized(code string) error {
	return BusinessError{Kind: KindUnauthorized, Code: code}
}

func Forbidden(code string) error {
	return BusinessError{Kind: KindForbidden, Code: code}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func KindOf(err error) (Kind, bool) {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind, true
	}
	return 0, false
}

func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// FromStore translates gateway sentinels. Errors that are already business
// errors pass through untouched; anything unrecognised is treated as a
// transient store failure.
func FromStore(err error, code string) error {
	if err == nil {
		return nil
	}
	var be BusinessError
	if errors.As(err, &be) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return BusinessError{Kind: KindNotFound, Code: code, Err: err}
	case errors.Is(err, store.ErrConflict):
		return BusinessError{Kind: KindConflict, Code: code, Err: err}
	default:
		return BusinessError{Kind: KindTransient, Code: code, Err: fmt.Errorf("store: %w", err)}
	}
}
