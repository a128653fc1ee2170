package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a gateway failure. Per-record sync handling branches
// on the kind, never on status codes or message text.
type ErrorKind string

const (
	// KindDuplicate means the backend already holds a record matching the
	// entity's natural key.
	KindDuplicate ErrorKind = "duplicate"
	// KindNotFound means the addressed remote record does not exist.
	KindNotFound ErrorKind = "not_found"
	// KindValidation means the backend rejected the payload.
	KindValidation ErrorKind = "validation"
	// KindTransport covers network failures and everything unclassified.
	KindTransport ErrorKind = "transport"
)

// Error is a classified gateway failure.
type Error struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway %s: %s", e.Kind, e.Message)
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == kind
}

// classify maps an HTTP status to an error kind.
func classify(status int) ErrorKind {
	switch status {
	case http.StatusConflict:
		return KindDuplicate
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindTransport
	}
}
