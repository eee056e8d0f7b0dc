package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mooderia/internal/models"
	"mooderia/internal/repository"
	"mooderia/internal/scheduler"
	"mooderia/internal/storage"
	"mooderia/internal/textgen"
)

// generatorStub is a stub for textgen.Generator.
type generatorStub struct {
	mu         sync.Mutex
	requests   []textgen.Request
	generateFn func(context.Context, textgen.Request) (string, error)
}

func (g *generatorStub) Generate(ctx context.Context, req textgen.Request) (string, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	return g.generateFn(ctx, req)
}

func (g *generatorStub) calls() []textgen.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]textgen.Request{}, g.requests...)
}

func replyWith(text string, err error) *generatorStub {
	return &generatorStub{generateFn: func(context.Context, textgen.Request) (string, error) { return text, err }}
}

// publisherStub records published notifications.
type publisherStub struct {
	mu        sync.Mutex
	published []publishedNote
	publishFn func(context.Context, string, models.Notification) error
}

type publishedNote struct {
	recipient string
	note      models.Notification
}

func (p *publisherStub) PublishNotification(ctx context.Context, recipient string, note models.Notification) error {
	p.mu.Lock()
	p.published = append(p.published, publishedNote{recipient: recipient, note: note})
	p.mu.Unlock()
	if p.publishFn != nil {
		return p.publishFn(ctx, recipient, note)
	}
	return nil
}

// testEnv wires every service over an in-memory store and a virtual clock.
type testEnv struct {
	kv        *storage.Memory
	repo      *repository.StateRepository
	directory *repository.UserDirectory
	state     *AppState
	clock     *scheduler.Virtual
	publisher *publisherStub

	sessions      *SessionService
	social        *SocialService
	messages      *MessageService
	notifications *NotificationService
	moods         *MoodService
	engine        *CitizenEngine
}

var testStart = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.Local)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	kv := storage.NewMemory()
	return newTestEnvOn(t, kv)
}

func newTestEnvOn(t *testing.T, kv *storage.Memory) *testEnv {
	t.Helper()
	env := &testEnv{
		kv:        kv,
		repo:      repository.NewStateRepository(kv),
		directory: repository.NewUserDirectory(kv),
		clock:     scheduler.NewVirtual(testStart),
		publisher: &publisherStub{},
	}
	env.state = NewAppState(env.repo, env.directory)
	require.NoError(t, env.state.Boot(context.Background()))

	env.engine = NewCitizenEngine(env.state, env.clock, nil, nil, env.publisher)
	env.engine.pick = func(int) int { return 0 }
	env.sessions = NewSessionService(env.state, env.directory, env.clock)
	env.social = NewSocialService(env.state, env.directory, env.clock, env.engine)
	env.messages = NewMessageService(env.state, env.clock)
	env.notifications = NewNotificationService(env.state)
	env.moods = NewMoodService(env.state, env.clock)
	return env
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	res, err := e.sessions.Register(context.Background(), RegisterInput{
		DisplayName: "Citizen " + username,
		Username:    username,
		Email:       username + "@mooderia.city",
		Password:    "pw-" + username,
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) login(t *testing.T, username string) {
	t.Helper()
	_, err := e.sessions.Login(context.Background(), username+"@mooderia.city", "pw-"+username)
	require.NoError(t, err)
}

func (e *testEnv) switchTo(t *testing.T, username string) {
	t.Helper()
	require.NoError(t, e.sessions.Logout(context.Background()))
	e.login(t, username)
}
