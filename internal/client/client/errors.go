package client

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// APIError carries a non-2xx daemon response. Ledger rejections include the
// numeric program error code alongside the message.
type APIError struct {
	Status  int
	Message string
	Code    *uint32
}

func (e *APIError) Error() string {
	if e.Code != nil {
		return fmt.Sprintf("%s (status %d, code %d)", e.Message, e.Status, *e.Code)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}
