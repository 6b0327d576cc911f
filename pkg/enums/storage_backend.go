package enums

import (
	"fmt"
	"strings"
)

// StorageBackend selects where the cart is persisted between sessions.
type StorageBackend string

const (
	StorageBackendSQLite   StorageBackend = "sqlite"
	StorageBackendPostgres StorageBackend = "postgres"
	StorageBackendRedis    StorageBackend = "redis"
	StorageBackendMemory   StorageBackend = "memory"
)

var validStorageBackends = []StorageBackend{
	StorageBackendSQLite,
	StorageBackendPostgres,
	StorageBackendRedis,
	StorageBackendMemory,
}

// String implements fmt.Stringer.
func (b StorageBackend) String() string {
	return string(b)
}

// IsValid reports whether the value is a known StorageBackend.
func (b StorageBackend) IsValid() bool {
	for _, candidate := range validStorageBackends {
		if candidate == b {
			return true
		}
	}
	return false
}

// IsSQL reports whether the backend goes through the gorm client.
func (b StorageBackend) IsSQL() bool {
	return b == StorageBackendSQLite || b == StorageBackendPostgres
}

// ParseStorageBackend converts raw input into a StorageBackend. Matching is case-insensitive.
func ParseStorageBackend(value string) (StorageBackend, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validStorageBackends {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid storage backend %q", value)
}
