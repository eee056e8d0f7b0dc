// Package storage provides the key-value backends that hold every persisted
// Mooderia record.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when a key holds no value.
var ErrNotFound = errors.New("storage: key not found")

// Record keys. The names match the keys used by the browser build so an
// exported localStorage dump can be loaded as is.
const (
	KeyCurrentUser   = "mooderia_user"
	KeyDirectory     = "mooderia_all_users"
	KeyPosts         = "mooderia_posts"
	KeyMessages      = "mooderia_messages"
	KeyNotifications = "mooderia_notifications"
	KeyTheme         = "mooderia_theme"
)

// HoroscopeKey is the cache key for one sign's reading on one day.
func HoroscopeKey(sign, date string) string {
	return fmt.Sprintf("horoscope_%s_%s", sign, date)
}

// Store is a flat string-keyed byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key owned by the store.
	Clear(ctx context.Context) error
	Close() error
}
