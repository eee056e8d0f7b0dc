// Package service holds the Mooderia session engine: the application state
// and the operations that read and mutate it.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"mooderia/internal/models"
	"mooderia/internal/observability"
	"mooderia/internal/repository"
)

// SnapshotStore persists the session records.
type SnapshotStore interface {
	Load(ctx context.Context) (repository.Snapshot, error)
	Save(ctx context.Context, snap repository.Snapshot) error
	ClearCurrentUser(ctx context.Context) error
	Wipe(ctx context.Context) error
}

// Directory is the registry of every account known to this install.
type Directory interface {
	List(ctx context.Context) ([]*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByCredentials(ctx context.Context, email, password string) (*models.User, error)
	Exists(ctx context.Context, email, username string) (bool, error)
	Upsert(ctx context.Context, u *models.User) error
	Replace(ctx context.Context, oldUsername string, u *models.User) error
	Search(ctx context.Context, term, exclude string) ([]*models.User, error)
}

var (
	_ SnapshotStore = (*repository.StateRepository)(nil)
	_ Directory     = (*repository.UserDirectory)(nil)
)

// newID issues record ids.
var newID = uuid.NewString

// BootStatus is the lifecycle phase of the state.
type BootStatus string

const (
	BootPending   BootStatus = "pending"
	BootReady     BootStatus = "ready"
	BootCorrupted BootStatus = "corrupted"
)

// Change tells Update what a mutation touched.
type Change int

const (
	// Unchanged skips persistence.
	Unchanged Change = iota
	// ContentChanged writes the session records.
	ContentChanged
	// UserChanged also upserts the active user into the directory.
	UserChanged
)

// State is the live session. It is only reachable through AppState.Read and
// AppState.Update, which hold the state lock.
type State struct {
	User          *models.User
	Posts         []*models.Post
	Messages      []*models.Message
	Notifications []*models.Notification
	Theme         models.Theme
}

// PostByID returns the live post with id, or nil.
func (s *State) PostByID(id string) *models.Post {
	for _, p := range s.Posts {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PrependPost puts p at the head of the feed.
func (s *State) PrependPost(p *models.Post) {
	s.Posts = append([]*models.Post{p}, s.Posts...)
}

// PrependNotification puts n at the head of the inbox.
func (s *State) PrependNotification(n *models.Notification) {
	s.Notifications = append([]*models.Notification{n}, s.Notifications...)
}

// Username is the active username, or "" without a session.
func (s *State) Username() string {
	if s.User == nil {
		return ""
	}
	return s.User.Username
}

func emptyState() State {
	return State{
		Posts:         []*models.Post{},
		Messages:      []*models.Message{},
		Notifications: []*models.Notification{},
		Theme:         models.ThemeLight,
	}
}

// AppState owns the session state. One mutex serializes every read and
// mutation, and each mutation is written back while the lock is held.
type AppState struct {
	mu        sync.Mutex
	store     SnapshotStore
	directory Directory
	state     State
	status    BootStatus
	bootErr   error
}

// NewAppState creates an unbooted AppState.
func NewAppState(store SnapshotStore, directory Directory) *AppState {
	return &AppState{
		store:     store,
		directory: directory,
		state:     emptyState(),
		status:    BootPending,
	}
}

// Boot hydrates the state from the store. A record that fails to decode
// leaves the state corrupted; only Reset recovers from that.
func (a *AppState) Boot(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap, err := a.store.Load(ctx)
	if err != nil {
		if models.HasCode(err, models.CodeBootCorruption) {
			a.status = BootCorrupted
			a.bootErr = err
			slog.ErrorContext(ctx, "Boot aborted on corrupt record", slog.String("error", err.Error()))
		}
		return err
	}

	a.state = State{
		User:          snap.User,
		Posts:         snap.Posts,
		Messages:      snap.Messages,
		Notifications: snap.Notifications,
		Theme:         snap.Theme,
	}
	a.status = BootReady
	a.bootErr = nil
	slog.InfoContext(ctx, "State booted",
		slog.Bool("session", snap.User != nil),
		slog.Int("posts", len(snap.Posts)),
		slog.Int("messages", len(snap.Messages)),
		slog.Int("notifications", len(snap.Notifications)),
	)
	return nil
}

// Status reports the boot phase and, when corrupted, the cause.
func (a *AppState) Status() (BootStatus, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status, a.bootErr
}

// Reset wipes every persisted record and restarts with an empty state.
func (a *AppState) Reset(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Wipe(ctx); err != nil {
		return models.NewInternalError(err)
	}
	a.state = emptyState()
	a.status = BootReady
	a.bootErr = nil
	observability.StateMutations.WithLabelValues("reset").Inc()
	slog.InfoContext(ctx, "State reset")
	return nil
}

// Read runs fn with the state locked. fn must not retain pointers into the
// state after it returns.
func (a *AppState) Read(fn func(s *State)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(&a.state)
}

// Update runs fn with the state locked and persists whatever it reports as
// changed. An error from fn aborts without writing. Write failures are
// logged and counted; the in-memory state stays authoritative.
func (a *AppState) Update(ctx context.Context, op string, fn func(s *State) (Change, error)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.guard(); err != nil {
		return err
	}
	change, err := fn(&a.state)
	if err != nil {
		return err
	}
	if change == Unchanged {
		return nil
	}
	observability.StateMutations.WithLabelValues(op).Inc()
	a.persist(ctx, op, change)
	return nil
}

// EndSession drops the active user and removes the stored current-user
// record. Every other record is kept.
func (a *AppState) EndSession(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.guard(); err != nil {
		return err
	}
	if a.state.User == nil {
		return nil
	}
	a.state.User = nil
	if err := a.store.ClearCurrentUser(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to clear current user", slog.String("error", err.Error()))
	}
	observability.StateMutations.WithLabelValues("logout").Inc()
	a.persist(ctx, "logout", ContentChanged)
	return nil
}

func (a *AppState) guard() error {
	switch a.status {
	case BootReady:
		return nil
	case BootCorrupted:
		return a.bootErr
	default:
		return models.NewInternalError(errors.New("state not booted"))
	}
}

// persist writes the state back; callers hold mu.
func (a *AppState) persist(ctx context.Context, op string, change Change) {
	if change == UserChanged && a.state.User != nil {
		if err := a.directory.Upsert(ctx, a.state.User); err != nil {
			slog.WarnContext(ctx, "Directory write failed",
				slog.String("operation", op),
				slog.String("error", err.Error()),
			)
		}
	}
	snap := repository.Snapshot{
		User:          a.state.User,
		Posts:         a.state.Posts,
		Messages:      a.state.Messages,
		Notifications: a.state.Notifications,
		Theme:         a.state.Theme,
	}
	if err := a.store.Save(ctx, snap); err != nil {
		slog.WarnContext(ctx, "State write failed",
			slog.String("operation", op),
			slog.String("error", err.Error()),
		)
	}
}
