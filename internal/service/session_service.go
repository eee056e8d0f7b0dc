package service

import (
	"context"
	"log/slog"
	"strings"

	"mooderia/internal/models"
	"mooderia/internal/scheduler"
	"mooderia/internal/validation"
)

// SessionService handles registration, login and the active profile.
type SessionService struct {
	state     *AppState
	directory Directory
	clock     scheduler.Clock
}

type RegisterInput struct {
	DisplayName string
	Username    string
	Email       string
	Password    string
}

// EditProfileInput carries every profile field; all are applied as given.
type EditProfileInput struct {
	DisplayName  string
	Username     string
	ProfilePic   string
	Title        string
	BannerPic    string
	ProfileColor string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	User *models.User
	// NeedsCheckIn is set when today has no mood entry yet.
	NeedsCheckIn bool
}

func NewSessionService(state *AppState, directory Directory, clock scheduler.Clock) *SessionService {
	return &SessionService{
		state:     state,
		directory: directory,
		clock:     clock,
	}
}

// Register creates an account and makes it the active session.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (*LoginResult, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.ValidateRegistration(in.DisplayName, in.Username, in.Email, in.Password); err != nil {
		return nil, invalid(err)
	}

	var result *LoginResult
	err := s.state.Update(ctx, "register", func(st *State) (Change, error) {
		taken, err := s.directory.Exists(ctx, in.Email, in.Username)
		if err != nil {
			return Unchanged, models.NewInternalError(err)
		}
		if taken {
			return Unchanged, models.NewDuplicateIdentityError()
		}

		user := &models.User{
			DisplayName: in.DisplayName,
			Username:    in.Username,
			Email:       in.Email,
			Password:    in.Password,
			Title:       models.DefaultTitle,
		}
		user.Normalize()
		st.User = user
		result = &LoginResult{User: user.Clone(), NeedsCheckIn: true}
		return UserChanged, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Login activates the directory account matching email and password.
func (s *SessionService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	var result *LoginResult
	err := s.state.Update(ctx, "login", func(st *State) (Change, error) {
		user, err := s.directory.FindByCredentials(ctx, email, password)
		if err != nil {
			return Unchanged, models.NewInternalError(err)
		}
		if user == nil {
			return Unchanged, models.NewInvalidCredentialsError()
		}
		st.User = user.Clone()
		result = &LoginResult{
			User:         user.Clone(),
			NeedsCheckIn: !HasCheckedInToday(user, Today(s.clock)),
		}
		return ContentChanged, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Logout ends the session. Feed, messages, notifications, theme and the
// directory are kept.
func (s *SessionService) Logout(ctx context.Context) error {
	return s.state.EndSession(ctx)
}

// Current returns a copy of the active user, or nil.
func (s *SessionService) Current() *models.User {
	var u *models.User
	s.state.Read(func(st *State) {
		u = st.User.Clone()
	})
	return u
}

// EditProfile replaces the display fields of the active user. A new
// username must not belong to another account.
func (s *SessionService) EditProfile(ctx context.Context, in EditProfileInput) (*models.User, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	in.Username = strings.TrimSpace(in.Username)
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.ValidateDisplayName(in.DisplayName); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, invalid(err)
	}
	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, invalid(err)
	}
	if in.ProfileColor != "" {
		if err := validation.ValidateProfileColor(in.ProfileColor); err != nil {
			return nil, invalid(err)
		}
	}

	var updated *models.User
	err := s.state.Update(ctx, "edit_profile", func(st *State) (Change, error) {
		if st.User == nil {
			return Unchanged, nil
		}
		old := st.User.Username
		if in.Username != old {
			other, err := s.directory.FindByUsername(ctx, in.Username)
			if err != nil {
				return Unchanged, models.NewInternalError(err)
			}
			if other != nil {
				return Unchanged, models.NewDuplicateIdentityError()
			}
		}

		st.User.DisplayName = in.DisplayName
		st.User.Username = in.Username
		st.User.ProfilePic = in.ProfilePic
		st.User.Title = in.Title
		st.User.BannerPic = in.BannerPic
		st.User.ProfileColor = in.ProfileColor
		updated = st.User.Clone()

		if err := s.directory.Replace(ctx, old, st.User); err != nil {
			slog.WarnContext(ctx, "Directory write failed",
				slog.String("operation", "edit_profile"),
				slog.String("error", err.Error()),
			)
		}
		return ContentChanged, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Theme returns the stored theme.
func (s *SessionService) Theme() models.Theme {
	var t models.Theme
	s.state.Read(func(st *State) { t = st.Theme })
	return t
}

// SetTheme stores theme.
func (s *SessionService) SetTheme(ctx context.Context, theme models.Theme) (models.Theme, error) {
	if theme != models.ThemeDark && theme != models.ThemeLight {
		return "", models.NewValidationError("Theme must be dark or light")
	}
	err := s.state.Update(ctx, "set_theme", func(st *State) (Change, error) {
		if st.Theme == theme {
			return Unchanged, nil
		}
		st.Theme = theme
		return ContentChanged, nil
	})
	return theme, err
}

// ToggleTheme flips between dark and light.
func (s *SessionService) ToggleTheme(ctx context.Context) (models.Theme, error) {
	var next models.Theme
	err := s.state.Update(ctx, "toggle_theme", func(st *State) (Change, error) {
		next = models.ThemeDark
		if st.Theme == models.ThemeDark {
			next = models.ThemeLight
		}
		st.Theme = next
		return ContentChanged, nil
	})
	return next, err
}

func invalid(err error) error {
	return models.NewValidationError(err.Error())
}
