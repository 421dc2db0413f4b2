package models

import (
	"strings"
	"time"
)

type User struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Username      *string    `json:"username"`
	FirstName     *string    `json:"firstName"`
	LastName      *string    `json:"lastName"`
	Avatar        *string    `json:"avatar"`
	EmailVerified bool       `json:"emailVerified"`
	IsActive      bool       `json:"isActive"`
	LastLoginAt   *time.Time `json:"lastLoginAt"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// DisplayName returns "First L." when both names are known, falling back to
// the username and then the email's local part.
func (u User) DisplayName() string {
	first := deref(u.FirstName)
	last := deref(u.LastName)
	switch {
	case first != "" && last != "":
		return first + " " + string([]rune(last)[0]) + "."
	case first != "":
		return first
	case deref(u.Username) != "":
		return *u.Username
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

type NewUser struct {
	Email     string
	Username  *string
	FirstName *string
	LastName  *string
}

const ProviderEmail = "email"

// UserAuth is one credential row per provider per user.
type UserAuth struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	Provider     string    `json:"provider"`
	ProviderID   *string   `json:"providerId"`
	PasswordHash *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSession is an issued bearer token. Deleting the row revokes it.
type UserSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	SessionToken string    `json:"sessionToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

type UserPreferences struct {
	ID                   string        `json:"id"`
	UserID               string        `json:"userId"`
	Theme                string        `json:"theme"`
	Language             string        `json:"language"`
	DefaultDifficulty    Difficulty    `json:"defaultDifficulty"`
	DefaultLearningStyle LearningStyle `json:"defaultLearningStyle"`
	EmailNotifications   bool          `json:"emailNotifications"`
	DailyGoalXP          int           `json:"dailyGoalXp"`
	WeeklyGoalSessions   int           `json:"weeklyGoalSessions"`
	CreatedAt            time.Time     `json:"createdAt"`
	UpdatedAt            time.Time     `json:"updatedAt"`
}

// DefaultPreferences returns the values a new user starts with.
func DefaultPreferences(userID string) UserPreferences {
	return UserPreferences{
		UserID:               userID,
		Theme:                "light",
		Language:             "en",
		DefaultDifficulty:    DifficultyBeginner,
		DefaultLearningStyle: StyleVisual,
		EmailNotifications:   true,
		DailyGoalXP:          100,
		WeeklyGoalSessions:   5,
	}
}

type UserAchievement struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	AchievementType string    `json:"achievementType"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Icon            string    `json:"icon"`
	XPReward        int       `json:"xpReward"`
	UnlockedAt      time.Time `json:"unlockedAt"`
}

// ── Auth request / response types ───────────────────────

type RegisterRequest struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Username  *string `json:"username" validate:"omitempty,min=1,max=50"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthResponse struct {
	User        User            `json:"user"`
	Session     UserSession     `json:"session"`
	Preferences UserPreferences `json:"preferences"`
}

type ProfileResponse struct {
	User         User              `json:"user"`
	Preferences  UserPreferences   `json:"preferences"`
	Achievements []UserAchievement `json:"achievements"`
}

// ProfileUpdate enumerates the user fields a client may change.
type ProfileUpdate struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=50"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Avatar    *string `json:"avatar" validate:"omitempty,url"`
}

func (u ProfileUpdate) Apply(user *User) {
	if u.Username != nil {
		user.Username = cloneString(u.Username)
	}
	if u.FirstName != nil {
		user.FirstName = cloneString(u.FirstName)
	}
	if u.LastName != nil {
		user.LastName = cloneString(u.LastName)
	}
	if u.Avatar != nil {
		user.Avatar = cloneString(u.Avatar)
	}
}

// PreferencesUpdate enumerates the preference fields a client may change.
type PreferencesUpdate struct {
	Theme                *string        `json:"theme" validate:"omitempty,oneof=light dark system"`
	Language             *string        `json:"language" validate:"omitempty,min=2,max=10"`
	DefaultDifficulty    *Difficulty    `json:"defaultDifficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	DefaultLearningStyle *LearningStyle `json:"defaultLearningStyle" validate:"omitempty,oneof=visual practical conceptual"`
	EmailNotifications   *bool          `json:"emailNotifications"`
	DailyGoalXP          *int           `json:"dailyGoalXp" validate:"omitempty,min=0"`
	WeeklyGoalSessions   *int           `json:"weeklyGoalSessions" validate:"omitempty,min=0"`
}

func (u PreferencesUpdate) Apply(p *UserPreferences) {
	if u.Theme != nil {
		p.Theme = *u.Theme
	}
	if u.Language != nil {
		p.Language = *u.Language
	}
	if u.DefaultDifficulty != nil {
		p.DefaultDifficulty = *u.DefaultDifficulty
	}
	if u.DefaultLearningStyle != nil {
		p.DefaultLearningStyle = *u.DefaultLearningStyle
	}
	if u.EmailNotifications != nil {
		p.EmailNotifications = *u.EmailNotifications
	}
	if u.DailyGoalXP != nil {
		p.DailyGoalXP = *u.DailyGoalXP
	}
	if u.WeeklyGoalSessions != nil {
		p.WeeklyGoalSessions = *u.WeeklyGoalSessions
	}
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}
