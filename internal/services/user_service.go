package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/isdelr/lockedin-be/internal/metrics"
	"github.com/isdelr/lockedin-be/internal/models"
	"github.com/isdelr/lockedin-be/internal/progress"
)

const (
	minPasswordLength = 8
	maxNameLength     = 64
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,32}$`)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, password, name string) (models.User, error)
	Authenticate(ctx context.Context, username, password string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	GetUser(ctx context.Context, id, date string) (models.UserSummary, error)
	UpdateName(ctx context.Context, id, name string) (models.User, error)
	UpdateProfilePhoto(ctx context.Context, id, photoURL string) (models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// UserService provides business logic for user management.
type UserService struct {
	db           *sqlx.DB
	presets      PresetServiceProvider
	seedDefaults bool
	activity     ActivityServiceProvider
}

// NewUserService creates a new UserService. When seedDefaults is set, new
// accounts receive the default habit pack.
func NewUserService(db *sqlx.DB, presets PresetServiceProvider, seedDefaults bool, activity ActivityServiceProvider) *UserService {
	return &UserService{db: db, presets: presets, seedDefaults: seedDefaults, activity: activity}
}

// Register creates a new user with a hashed password and fresh progress.
func (s *UserService) Register(ctx context.Context, username, password, name string) (models.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return models.User{}, invalid("username", "must be 3-32 letters, digits, '_', '.' or '-'")
	}
	if len(password) < minPasswordLength {
		return models.User{}, invalid("password", fmt.Sprintf("must be at least %d characters", minPasswordLength))
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = models.DefaultUserName
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return models.User{}, invalid("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Name:         name,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}

	err = withTx(ctx, s.db, "register user", func(tx *sqlx.Tx) error {
		var taken int
		if err := tx.GetContext(ctx, &taken, "SELECT COUNT(*) FROM users WHERE username = ?", username); err != nil {
			return err
		}
		if taken > 0 {
			return fmt.Errorf("username %s: %w", username, ErrConflict)
		}

		_, err := tx.ExecContext(ctx,
			"INSERT INTO users (id, username, password_hash, name, created_at) VALUES (?, ?, ?, ?, ?)",
			user.ID, user.Username, user.PasswordHash, user.Name, user.CreatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("username %s: %w", username, ErrConflict)
			}
			return err
		}
		return ensureProgress(ctx, tx, user.ID)
	})
	if err != nil {
		return models.User{}, err
	}
	metrics.RecordRegistration()

	if s.seedDefaults && s.presets != nil {
		if _, err := s.presets.ApplyPreset(ctx, user.ID, DefaultPresetID); err != nil {
			log.Warn().Err(err).Str("user_id", user.ID).Msg("Failed to seed default habits")
		}
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `
		SELECT id, username, name, profile_photo, password_hash, created_at
		FROM users WHERE username = ?`, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, storageErr("authenticate", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	return getUserByID(ctx, s.db, id)
}

// GetUser builds the dashboard view of a user for the given date.
func (s *UserService) GetUser(ctx context.Context, id, date string) (models.UserSummary, error) {
	user, err := getUserByID(ctx, s.db, id)
	if err != nil {
		return models.UserSummary{}, err
	}
	p, err := loadProgress(ctx, s.db, id)
	if err != nil {
		return models.UserSummary{}, storageErr("get progress", err)
	}
	completions, err := todayCompletions(ctx, s.db, id, date)
	if err != nil {
		return models.UserSummary{}, storageErr("list completions", err)
	}

	lvl := progress.ComputeLevel(p.CurrentXP)
	return models.UserSummary{
		ID:               user.ID,
		Username:         user.Username,
		Name:             user.Name,
		Level:            lvl.Level,
		CurrentXP:        p.CurrentXP,
		NextLevelXP:      lvl.NextLevelXP,
		Streak:           p.Streak,
		TodayCompletions: completions,
		SprintDays:       p.SprintDays,
		ProfilePhoto:     user.ProfilePhoto,
	}, nil
}

// UpdateName changes a user's display name.
func (s *UserService) UpdateName(ctx context.Context, id, name string) (models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.User{}, invalid("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return models.User{}, invalid("name", fmt.Sprintf("must be at most %d characters", maxNameLength))
	}

	if err := s.updateColumn(ctx, id, "name", name); err != nil {
		return models.User{}, err
	}
	recordActivity(ctx, s.activity, id, models.ActivityAccount, "Display name changed.")
	return s.GetUserByID(ctx, id)
}

// UpdateProfilePhoto stores a reference to the user's photo. An empty value clears it.
func (s *UserService) UpdateProfilePhoto(ctx context.Context, id, photoURL string) (models.User, error) {
	photoURL = strings.TrimSpace(photoURL)
	var value interface{}
	if photoURL != "" {
		u, err := url.Parse(photoURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return models.User{}, invalid("photoUrl", "must be an absolute http(s) URL")
		}
		value = photoURL
	}

	if err := s.updateColumn(ctx, id, "profile_photo", value); err != nil {
		return models.User{}, err
	}
	recordActivity(ctx, s.activity, id, models.ActivityAccount, "Profile photo changed.")
	return s.GetUserByID(ctx, id)
}

// DeleteUser removes a user and, through cascading keys, everything they own.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return storageErr("delete user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

// updateColumn sets one whitelisted users column.
func (s *UserService) updateColumn(ctx context.Context, id, column string, value interface{}) error {
	var query string
	switch column {
	case "name":
		query = "UPDATE users SET name = ? WHERE id = ?"
	case "profile_photo":
		query = "UPDATE users SET profile_photo = ? WHERE id = ?"
	default:
		return fmt.Errorf("column %s is not updatable", column)
	}

	res, err := s.db.ExecContext(ctx, query, value, id)
	if err != nil {
		return storageErr("update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	return nil
}

func getUserByID(ctx context.Context, q sqlx.QueryerContext, id string) (models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, q, &user, `
		SELECT id, username, name, profile_photo, created_at
		FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %s: %w", id, ErrNotFound)
		}
		return models.User{}, storageErr("get user", err)
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
