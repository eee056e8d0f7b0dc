// Package bootstrap assembles the runtime object graph shared by the server
// and the command line tools.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"mooderia/internal/cache"
	"mooderia/internal/config"
	"mooderia/internal/featureflags"
	"mooderia/internal/models"
	"mooderia/internal/notifications"
	"mooderia/internal/repository"
	"mooderia/internal/scheduler"
	"mooderia/internal/service"
	"mooderia/internal/storage"
	"mooderia/internal/textgen"

	"github.com/redis/go-redis/v9"
)

// Options control runtime initialization behavior.
type Options struct {
	// Scheduler overrides the wall-clock scheduler.
	Scheduler scheduler.Scheduler
	// Generator overrides the text generator picked from the config.
	Generator textgen.Generator
	// Store overrides the configured storage backend.
	Store storage.Store
}

// Runtime is the booted application: storage, state and every service.
type Runtime struct {
	Redis         *redis.Client
	Store         storage.Store
	Directory     *repository.UserDirectory
	State         *service.AppState
	Scheduler     scheduler.Scheduler
	Flags         *featureflags.Manager
	Notifier      *notifications.Notifier
	Sessions      *service.SessionService
	Social        *service.SocialService
	Messages      *service.MessageService
	Notifications *service.NotificationService
	Moods         *service.MoodService
	Personas      *service.PersonaService
	Citizens      *service.CitizenEngine
}

// InitRuntime connects storage and Redis, wires the services and boots the
// app state. A corrupted store is not an error here: the runtime comes up in
// lockdown and State.Status reports it.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rdb := cache.ConnectOptional(ctx, cfg.RedisURL)

	kv := opts.Store
	if kv == nil {
		opened, err := storage.Open(ctx, cfg, rdb)
		if err != nil {
			if rdb != nil {
				_ = rdb.Close()
			}
			return nil, fmt.Errorf("storage open failed: %w", err)
		}
		kv = opened
	}

	sched := opts.Scheduler
	if sched == nil {
		sched = scheduler.NewReal()
	}

	gen := opts.Generator
	if gen == nil {
		gen = newGenerator(ctx, cfg)
	}

	rt := &Runtime{
		Redis:     rdb,
		Store:     kv,
		Directory: repository.NewUserDirectory(kv),
		Scheduler: sched,
		Flags:     featureflags.NewManager(cfg.FeatureFlags),
		Notifier:  notifications.NewNotifier(rdb),
	}
	rt.State = service.NewAppState(repository.NewStateRepository(kv), rt.Directory)
	rt.Citizens = service.NewCitizenEngine(rt.State, sched, cfg.Citizens(), rt.Flags, rt.Notifier)
	rt.Sessions = service.NewSessionService(rt.State, rt.Directory, sched)
	rt.Social = service.NewSocialService(rt.State, rt.Directory, sched, rt.Citizens)
	rt.Messages = service.NewMessageService(rt.State, sched)
	rt.Notifications = service.NewNotificationService(rt.State)
	rt.Moods = service.NewMoodService(rt.State, sched)
	rt.Personas = service.NewPersonaService(gen, repository.NewHoroscopeCache(kv), sched,
		cfg.GeminiChatModel, cfg.GeminiFastModel)

	if err := rt.State.Boot(ctx); err != nil {
		if !models.HasCode(err, models.CodeBootCorruption) {
			_ = rt.Close()
			return nil, fmt.Errorf("boot failed: %w", err)
		}
		log.Printf("WARNING: %v (serving in lockdown until reset)", err)
	}

	return rt, nil
}

func newGenerator(ctx context.Context, cfg *config.Config) textgen.Generator {
	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY not set, personas answer with fallback lines")
		return textgen.Unavailable{}
	}
	gen, err := textgen.NewGemini(ctx, cfg.GeminiAPIKey, cfg.FallbackModels())
	if err != nil {
		log.Printf("Gemini client warning: %v (personas answer with fallback lines)", err)
		return textgen.Unavailable{}
	}
	return gen
}

// Close waits for pending citizen reactions on a wall-clock scheduler, then
// releases storage and Redis.
func (r *Runtime) Close() error {
	if real, ok := r.Scheduler.(*scheduler.Real); ok {
		real.Wait()
	}
	var errs []error
	if r.Store != nil {
		errs = append(errs, r.Store.Close())
	}
	if r.Redis != nil {
		errs = append(errs, r.Redis.Close())
	}
	return errors.Join(errs...)
}
