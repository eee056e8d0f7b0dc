// Package validation checks user-supplied identity and profile fields.
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits enforced on registration and profile edits.
const (
	MaxDisplayNameLength = 30
	MaxUsernameLength    = 20
	MaxTitleLength       = 30
)

var usernameRegex = regexp.MustCompile(`^\S+$`)

var profileColorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateDisplayName requires a non-blank name of at most MaxDisplayNameLength runes.
func ValidateDisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("display name is required")
	}
	if utf8.RuneCountInString(name) > MaxDisplayNameLength {
		return fmt.Errorf("display name must be at most %d characters", MaxDisplayNameLength)
	}
	return nil
}

// ValidateUsername requires a single token of at most MaxUsernameLength runes.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username cannot contain spaces")
	}
	if utf8.RuneCountInString(username) > MaxUsernameLength {
		return fmt.Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	return nil
}

// ValidateEmail requires a bare address such as ana@example.com.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("email is not a valid address")
	}
	return nil
}

// ValidateRegistration checks every registration field. Passwords are only
// required to be present.
func ValidateRegistration(displayName, username, email, password string) error {
	if err := ValidateDisplayName(displayName); err != nil {
		return err
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// ValidateProfileColor accepts #rrggbb hex colors.
func ValidateProfileColor(color string) error {
	if !profileColorRegex.MatchString(color) {
		return fmt.Errorf("profile color must look like #46178f")
	}
	return nil
}

// ValidateTitle requires a non-blank title of at most MaxTitleLength runes.
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title must be at most %d characters", MaxTitleLength)
	}
	return nil
}
