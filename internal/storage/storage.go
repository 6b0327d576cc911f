// Package storage is the durable key/value store the cart persists itself to.
// It plays the role a browser's local storage plays for a storefront UI.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value is stored under the key.
var ErrNotFound = errors.New("storage: key not found")

// Storage is the durable key/value capability the cart writes through to.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}
