package milvus

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Predefined errors
var (
	ErrInvalidConfig         = errors.New("milvus: invalid config")
	ErrInvalidCollectionName = errors.New("milvus: invalid collection name")
	ErrInvalidFieldName      = errors.New("milvus: invalid field name")
	ErrInvalidSchema         = errors.New("milvus: invalid schema")
	ErrInvalidVectorData     = errors.New("milvus: invalid vector data")
	ErrInvalidData           = errors.New("milvus: invalid data")
	ErrClientClosed          = errors.New("milvus: client is closed")
)

// Error carries operation context for a failed Milvus call
type Error struct {
	Op         string // operation that failed
	Collection string // collection name (if applicable)
	Field      string // field name (if applicable)
	Err        error  // original error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Collection != "" && e.Field != "":
		msg = fmt.Sprintf("milvus: %s failed for collection=%s, field=%s", e.Op, e.Collection, e.Field)
	case e.Collection != "":
		msg = fmt.Sprintf("milvus: %s failed for collection=%s", e.Op, e.Collection)
	default:
		msg = fmt.Sprintf("milvus: %s failed", e.Op)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError wraps an error with operation context
func WrapError(op string, err error, collection, field string) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Collection: collection, Field: field, Err: err}
}

// isRetryable reports whether a failed call is worth retrying.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, s := range []string{"unavailable", "connection refused", "timeout", "deadline exceeded", "too many requests"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
