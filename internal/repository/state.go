// Package repository maps typed Mooderia records onto the key-value store.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"mooderia/internal/models"
	"mooderia/internal/observability"
	"mooderia/internal/storage"
)

// Snapshot is everything the session keeps between restarts, apart from the
// user directory.
type Snapshot struct {
	User          *models.User
	Posts         []*models.Post
	Messages      []*models.Message
	Notifications []*models.Notification
	Theme         models.Theme
}

// StateRepository loads and saves the session snapshot.
type StateRepository struct {
	kv  storage.Store
	log *observability.StoreLogger
}

// NewStateRepository creates a StateRepository over kv.
func NewStateRepository(kv storage.Store) *StateRepository {
	return &StateRepository{kv: kv, log: observability.NewStoreLogger("state")}
}

// Load reads the five session records. Each is optional; an absent record
// yields its default. A record that exists but cannot be decoded fails the
// whole load with a BOOT_CORRUPTION error.
func (r *StateRepository) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Posts:         []*models.Post{},
		Messages:      []*models.Message{},
		Notifications: []*models.Notification{},
		Theme:         models.ThemeLight,
	}

	var user models.User
	found, err := loadJSON(ctx, r.kv, storage.KeyCurrentUser, &user)
	if err != nil {
		return Snapshot{}, err
	}
	if found {
		user.Normalize()
		snap.User = &user
	}

	if _, err := loadJSON(ctx, r.kv, storage.KeyPosts, &snap.Posts); err != nil {
		return Snapshot{}, err
	}
	if _, err := loadJSON(ctx, r.kv, storage.KeyMessages, &snap.Messages); err != nil {
		return Snapshot{}, err
	}
	if _, err := loadJSON(ctx, r.kv, storage.KeyNotifications, &snap.Notifications); err != nil {
		return Snapshot{}, err
	}

	raw, err := r.kv.Get(ctx, storage.KeyTheme)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return Snapshot{}, fmt.Errorf("load theme: %w", err)
	default:
		snap.Theme = models.ParseTheme(string(raw))
	}

	snap.Posts = compactPosts(snap.Posts)
	snap.Messages = compact(snap.Messages)
	snap.Notifications = compact(snap.Notifications)
	return snap, nil
}

// Save writes every record of snap. A nil User leaves the stored current
// user untouched. Each write is attempted; failures are joined.
func (r *StateRepository) Save(ctx context.Context, snap Snapshot) error {
	var errs []error
	if snap.User != nil {
		errs = append(errs, r.saveJSON(ctx, storage.KeyCurrentUser, snap.User))
	}
	errs = append(errs,
		r.saveJSON(ctx, storage.KeyPosts, orEmpty(snap.Posts)),
		r.saveJSON(ctx, storage.KeyMessages, orEmpty(snap.Messages)),
		r.saveJSON(ctx, storage.KeyNotifications, orEmpty(snap.Notifications)),
		r.saveRaw(ctx, storage.KeyTheme, []byte(snap.Theme)),
	)
	return errors.Join(errs...)
}

// ClearCurrentUser removes the stored active session.
func (r *StateRepository) ClearCurrentUser(ctx context.Context) error {
	if err := r.kv.Delete(ctx, storage.KeyCurrentUser); err != nil {
		r.log.LogError(ctx, err, "delete", storage.KeyCurrentUser)
		return err
	}
	return nil
}

// Wipe clears every persisted record, including the directory and horoscope cache.
func (r *StateRepository) Wipe(ctx context.Context) error {
	if err := r.kv.Clear(ctx); err != nil {
		r.log.LogError(ctx, err, "clear", "*")
		return err
	}
	return nil
}

func (r *StateRepository) saveJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return r.saveRaw(ctx, key, raw)
}

func (r *StateRepository) saveRaw(ctx context.Context, key string, raw []byte) error {
	if err := r.kv.Set(ctx, key, raw); err != nil {
		r.log.LogError(ctx, err, "write", key)
		observability.PersistenceFailures.WithLabelValues(key).Inc()
		return err
	}
	r.log.LogWrite(ctx, key, len(raw))
	return nil
}

// loadJSON decodes key into dst. found is false when the key is absent.
func loadJSON(ctx context.Context, kv storage.Store, key string, dst any) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", key, err)
	}
	// A JSON null is an empty record.
	if string(raw) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, models.NewBootCorruptionError(key, err)
	}
	return true, nil
}

func compact[T any](items []*T) []*T {
	out := make([]*T, 0, len(items))
	for _, it := range items {
		if it != nil {
			out = append(out, it)
		}
	}
	return out
}

func compactPosts(posts []*models.Post) []*models.Post {
	out := compact(posts)
	for _, p := range out {
		p.Normalize()
	}
	return out
}

func orEmpty[T any](items []*T) []*T {
	if items == nil {
		return []*T{}
	}
	return items
}
