package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/isdelr/lockedin-be/internal/models"
)

const maxHabitTitleLength = 120

// OwnershipPolicy decides whether DeleteHabit checks that the actor owns the habit.
type OwnershipPolicy int

const (
	// OwnershipEnforce only deletes habits that belong to the acting user.
	OwnershipEnforce OwnershipPolicy = iota
	// OwnershipLegacy deletes by habit id alone.
	OwnershipLegacy
)

// ParseOwnershipPolicy maps the configuration value onto a policy.
func ParseOwnershipPolicy(s string) (OwnershipPolicy, error) {
	switch s {
	case "enforce", "":
		return OwnershipEnforce, nil
	case "legacy":
		return OwnershipLegacy, nil
	}
	return OwnershipEnforce, fmt.Errorf("unknown ownership policy %q", s)
}

// HabitServiceProvider defines the interface for habit services.
type HabitServiceProvider interface {
	ListHabits(ctx context.Context, userID string) ([]models.Habit, error)
	GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error)
	CreateHabit(ctx context.Context, userID string, input models.HabitInput) (models.Habit, error)
	BulkCreateHabits(ctx context.Context, userID string, inputs []models.HabitInput) ([]models.Habit, error)
	DeleteHabit(ctx context.Context, actorID, habitID string) error
}

// HabitService provides business logic for habit management.
type HabitService struct {
	db       *sqlx.DB
	policy   OwnershipPolicy
	activity ActivityServiceProvider
	notifier Notifier
}

// NewHabitService creates a new HabitService. policy governs DeleteHabit.
func NewHabitService(db *sqlx.DB, policy OwnershipPolicy, activity ActivityServiceProvider, notifier Notifier) *HabitService {
	return &HabitService{
		db:       db,
		policy:   policy,
		activity: activity,
		notifier: notifierOrNoop(notifier),
	}
}

// ValidateHabit checks a habit input and returns it with the title trimmed.
func ValidateHabit(input models.HabitInput) (models.HabitInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return input, invalid("title", "must not be empty")
	}
	if utf8.RuneCountInString(input.Title) > maxHabitTitleLength {
		return input, invalid("title", fmt.Sprintf("must be at most %d characters", maxHabitTitleLength))
	}
	if input.XP < 1 {
		return input, invalid("xp", "must be at least 1")
	}
	if !input.Category.Valid() {
		return input, invalid("category", fmt.Sprintf("must be one of %v", models.Categories))
	}
	return input, nil
}

// ListHabits retrieves all habits of a user in creation order.
func (s *HabitService) ListHabits(ctx context.Context, userID string) ([]models.Habit, error) {
	habits := []models.Habit{}
	err := s.db.SelectContext(ctx, &habits, `
		SELECT id, user_id, title, xp, category, created_at
		FROM habits WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, storageErr("list habits", err)
	}
	return habits, nil
}

// GetHabit retrieves one habit owned by userID.
func (s *HabitService) GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	return getOwnedHabit(ctx, s.db, userID, habitID)
}

// CreateHabit validates and stores a new habit.
func (s *HabitService) CreateHabit(ctx context.Context, userID string, input models.HabitInput) (models.Habit, error) {
	habit, err := s.insertHabit(ctx, userID, input)
	if err != nil {
		return models.Habit{}, err
	}
	recordActivity(ctx, s.activity, userID, models.ActivityHabitCreate, fmt.Sprintf("Habit '%s' created (+%d XP).", habit.Title, habit.XP))
	s.notifier.NotifyUser(userID, ActionHabitsUpdated, habit)
	return habit, nil
}

// BulkCreateHabits creates each habit in turn and stops at the first failure.
// Habits created before the failure stay committed and are returned with the error.
func (s *HabitService) BulkCreateHabits(ctx context.Context, userID string, inputs []models.HabitInput) ([]models.Habit, error) {
	created := make([]models.Habit, 0, len(inputs))
	for i, input := range inputs {
		habit, err := s.insertHabit(ctx, userID, input)
		if err != nil {
			return created, &BulkCreateError{Index: i, Err: err}
		}
		created = append(created, habit)
	}
	if len(created) > 0 {
		recordActivity(ctx, s.activity, userID, models.ActivityHabitCreate, fmt.Sprintf("%d habits created.", len(created)))
		s.notifier.NotifyUser(userID, ActionHabitsUpdated, created)
	}
	return created, nil
}

// DeleteHabit removes a habit. Under OwnershipEnforce a habit that does not
// belong to actorID is reported as ErrNotFound.
func (s *HabitService) DeleteHabit(ctx context.Context, actorID, habitID string) error {
	var habit models.Habit
	var err error
	if s.policy == OwnershipEnforce {
		habit, err = getOwnedHabit(ctx, s.db, actorID, habitID)
	} else {
		habit, err = getHabitByID(ctx, s.db, habitID)
	}
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, "DELETE FROM habits WHERE id = ?", habit.ID); err != nil {
		return storageErr("delete habit", err)
	}

	recordActivity(ctx, s.activity, habit.UserID, models.ActivityHabitDelete, fmt.Sprintf("Habit '%s' was deleted.", habit.Title))
	s.notifier.NotifyUser(habit.UserID, ActionHabitsUpdated, map[string]string{"deleted": habit.ID})
	return nil
}

func (s *HabitService) insertHabit(ctx context.Context, userID string, input models.HabitInput) (models.Habit, error) {
	input, err := ValidateHabit(input)
	if err != nil {
		return models.Habit{}, err
	}

	habit := models.Habit{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     input.Title,
		XP:        input.XP,
		Category:  input.Category,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO habits (id, user_id, title, xp, category, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		habit.ID, habit.UserID, habit.Title, habit.XP, habit.Category, habit.CreatedAt)
	if err != nil {
		return models.Habit{}, storageErr("create habit", err)
	}
	return habit, nil
}

// getOwnedHabit loads a habit only if it belongs to userID.
func getOwnedHabit(ctx context.Context, q sqlx.QueryerContext, userID, habitID string) (models.Habit, error) {
	var habit models.Habit
	err := sqlx.GetContext(ctx, q, &habit, `
		SELECT id, user_id, title, xp, category, created_at
		FROM habits WHERE id = ? AND user_id = ?`, habitID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("habit %s: %w", habitID, ErrNotFound)
		}
		return models.Habit{}, storageErr("get habit", err)
	}
	return habit, nil
}

func getHabitByID(ctx context.Context, q sqlx.QueryerContext, habitID string) (models.Habit, error) {
	var habit models.Habit
	err := sqlx.GetContext(ctx, q, &habit, `
		SELECT id, user_id, title, xp, category, created_at
		FROM habits WHERE id = ?`, habitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Habit{}, fmt.Errorf("habit %s: %w", habitID, ErrNotFound)
		}
		return models.Habit{}, storageErr("get habit", err)
	}
	return habit, nil
}
