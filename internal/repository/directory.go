package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"mooderia/internal/models"
	"mooderia/internal/observability"
	"mooderia/internal/storage"
)

// UserDirectory is the registry of every account known on this device. All
// writes are read-modify-write under one lock.
type UserDirectory struct {
	kv  storage.Store
	mu  sync.Mutex
	log *observability.StoreLogger
}

// NewUserDirectory creates a UserDirectory over kv.
func NewUserDirectory(kv storage.Store) *UserDirectory {
	return &UserDirectory{kv: kv, log: observability.NewStoreLogger("directory")}
}

// List returns every registered user. The slice is a fresh copy.
func (d *UserDirectory) List(ctx context.Context) ([]*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

// FindByUsername returns the user with the exact username, or nil.
func (d *UserDirectory) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return d.find(ctx, func(u *models.User) bool { return u.Username == username })
}

// FindByEmail returns the user with the exact email, or nil.
func (d *UserDirectory) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return d.find(ctx, func(u *models.User) bool { return u.Email == email })
}

// FindByCredentials returns the user whose email and password both match, or nil.
func (d *UserDirectory) FindByCredentials(ctx context.Context, email, password string) (*models.User, error) {
	return d.find(ctx, func(u *models.User) bool { return u.Email == email && u.Password == password })
}

// Exists reports whether email or username is already registered.
func (d *UserDirectory) Exists(ctx context.Context, email, username string) (bool, error) {
	u, err := d.find(ctx, func(u *models.User) bool { return u.Email == email || u.Username == username })
	return u != nil, err
}

// Upsert replaces the entry with the same username or appends u.
func (d *UserDirectory) Upsert(ctx context.Context, u *models.User) error {
	return d.Replace(ctx, u.Username, u)
}

// Replace swaps the entry keyed by oldUsername for u, appending u when no
// such entry exists. Any other entry already holding u.Username is dropped
// so the directory never carries two records for one username.
func (d *UserDirectory) Replace(ctx context.Context, oldUsername string, u *models.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return err
	}

	out := make([]*models.User, 0, len(users)+1)
	replaced := false
	for _, existing := range users {
		switch {
		case existing.Username == oldUsername && !replaced:
			out = append(out, u.Clone())
			replaced = true
		case existing.Username == u.Username || existing.Username == oldUsername:
		default:
			out = append(out, existing)
		}
	}
	if !replaced {
		out = append(out, u.Clone())
	}
	return d.save(ctx, out)
}

// Search matches term case-insensitively against display names and
// usernames, skipping exclude. An empty term matches nothing.
func (d *UserDirectory) Search(ctx context.Context, term, exclude string) ([]*models.User, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return []*models.User{}, nil
	}
	users, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []*models.User{}
	for _, u := range users {
		if u.Username == exclude {
			continue
		}
		if strings.Contains(strings.ToLower(u.DisplayName), term) || strings.Contains(strings.ToLower(u.Username), term) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *UserDirectory) find(ctx context.Context, match func(*models.User) bool) (*models.User, error) {
	users, err := d.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if match(u) {
			return u, nil
		}
	}
	return nil, nil
}

// load reads the directory; callers hold mu.
func (d *UserDirectory) load(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if _, err := loadJSON(ctx, d.kv, storage.KeyDirectory, &users); err != nil {
		d.log.LogError(ctx, err, "read", storage.KeyDirectory)
		return nil, fmt.Errorf("load user directory: %w", err)
	}
	out := compact(users)
	for _, u := range out {
		u.Normalize()
	}
	return out, nil
}

// save writes the directory; callers hold mu.
func (d *UserDirectory) save(ctx context.Context, users []*models.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode user directory: %w", err)
	}
	if err := d.kv.Set(ctx, storage.KeyDirectory, raw); err != nil {
		d.log.LogError(ctx, err, "write", storage.KeyDirectory)
		observability.PersistenceFailures.WithLabelValues(storage.KeyDirectory).Inc()
		return err
	}
	d.log.LogWrite(ctx, storage.KeyDirectory, len(raw))
	return nil
}
