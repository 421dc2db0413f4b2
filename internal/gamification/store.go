package gamification

import (
	"context"

	"github.com/DevSidd2006/learnquest/internal/models"
)

// Store is the part of the storage backend the gamification service touches.
// Both storage backends satisfy it.
type Store interface {
	GetProgress(ctx context.Context, userID *string) (*models.UserProgress, error)
	UpdateProgress(ctx context.Context, userID *string, u models.ProgressUpdate) (*models.UserProgress, error)
	AddXP(ctx context.Context, userID *string, amount int) (*models.UserProgress, error)
	GrantXP(ctx context.Context, userID *string, amount int) (*models.UserProgress, error)

	CreateAchievement(ctx context.Context, a models.UserAchievement) (bool, error)
	ListAchievements(ctx context.Context, userID string) ([]models.UserAchievement, error)
}
