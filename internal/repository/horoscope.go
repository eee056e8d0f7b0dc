package repository

import (
	"context"
	"errors"

	"mooderia/internal/storage"
)

// HoroscopeCache keeps one reading per sign per day.
type HoroscopeCache struct {
	kv storage.Store
}

// NewHoroscopeCache creates a HoroscopeCache over kv.
func NewHoroscopeCache(kv storage.Store) *HoroscopeCache {
	return &HoroscopeCache{kv: kv}
}

// Get returns the cached reading. ok is false on a miss or an empty entry.
func (c *HoroscopeCache) Get(ctx context.Context, sign, date string) (string, bool, error) {
	raw, err := c.kv.Get(ctx, storage.HoroscopeKey(sign, date))
	if errors.Is(err, storage.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if len(raw) == 0 {
		return "", false, nil
	}
	return string(raw), true, nil
}

// Put stores a reading.
func (c *HoroscopeCache) Put(ctx context.Context, sign, date, text string) error {
	return c.kv.Set(ctx, storage.HoroscopeKey(sign, date), []byte(text))
}
