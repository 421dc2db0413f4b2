package gamification

import (
	"context"
	"fmt"

	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

type Service struct {
	store      Store
	xpPerLevel int
	log        *logger.Logger
}

func NewService(store Store, xpPerLevel int, log *logger.Logger) *Service {
	if xpPerLevel <= 0 {
		xpPerLevel = DefaultXPPerLevel
	}
	return &Service{store: store, xpPerLevel: xpPerLevel, log: log.With("component", "gamification")}
}

func (s *Service) XPPerLevel() int { return s.xpPerLevel }

// ── Activity XP ─────────────────────────────────────────

// AwardXP adds activity XP to the owner's progress, applying the daily streak
// rule and keeping currentLevel in step. For registered users it then checks
// the streak achievements.
func (s *Service) AwardXP(ctx context.Context, userID *string, amount int) (*models.UserProgress, error) {
	p, err := s.store.AddXP(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("add xp: %w", err)
	}
	if p, err = s.syncLevel(ctx, userID, p); err != nil {
		return nil, err
	}

	if userID == nil {
		return p, nil
	}
	awarded := false
	for _, key := range StreakAchievements(p.CurrentStreak) {
		a, err := s.AwardAchievement(ctx, *userID, key)
		if err != nil {
			// the activity XP is already stored
			s.log.Warn("streak achievement failed", "user_id", *userID, "achievement", key, "error", err)
			continue
		}
		awarded = awarded || a != nil
	}
	if awarded {
		return s.store.GetProgress(ctx, userID)
	}
	return p, nil
}

func (s *Service) syncLevel(ctx context.Context, userID *string, p *models.UserProgress) (*models.UserProgress, error) {
	level := Level(p.TotalXP, s.xpPerLevel)
	if level == p.CurrentLevel {
		return p, nil
	}
	updated, err := s.store.UpdateProgress(ctx, userID, models.ProgressUpdate{CurrentLevel: &level})
	if err != nil {
		return nil, fmt.Errorf("update level: %w", err)
	}
	if updated.CurrentLevel > p.CurrentLevel {
		s.log.Info("level up", "user_id", userID, "level", level)
	}
	return updated, nil
}

// ── Achievements ────────────────────────────────────────

// AwardAchievement grants key to userID once. The first grant stores the
// achievement and adds its XP reward; later calls and unknown keys return
// nil without side effects.
func (s *Service) AwardAchievement(ctx context.Context, userID, key string) (*models.UserAchievement, error) {
	def, ok := Achievements[key]
	if !ok {
		s.log.Debug("unknown achievement ignored", "achievement", key)
		return nil, nil
	}

	a := models.UserAchievement{
		UserID:          userID,
		AchievementType: key,
		Title:           def.Title,
		Description:     def.Description,
		Icon:            def.Icon,
		XPReward:        def.XPReward,
	}
	created, err := s.store.CreateAchievement(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("create achievement: %w", err)
	}
	if !created {
		return nil, nil
	}

	p, err := s.store.GrantXP(ctx, &userID, def.XPReward)
	if err != nil {
		return nil, fmt.Errorf("grant achievement xp: %w", err)
	}
	if _, err := s.syncLevel(ctx, &userID, p); err != nil {
		return nil, err
	}

	s.log.Info("achievement unlocked", "user_id", userID, "achievement", key, "xp", def.XPReward)
	return &a, nil
}

func (s *Service) Achievements(ctx context.Context, userID string) ([]models.UserAchievement, error) {
	list, err := s.store.ListAchievements(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	return list, nil
}

// ── Progress ────────────────────────────────────────────

// Progress returns the owner's aggregate with the derived level fields.
func (s *Service) Progress(ctx context.Context, userID *string) (*models.ProgressResponse, error) {
	p, err := s.store.GetProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	return &models.ProgressResponse{
		UserProgress:  *p,
		Level:         Level(p.TotalXP, s.xpPerLevel),
		XPToNextLevel: XPToNextLevel(p.TotalXP, s.xpPerLevel),
	}, nil
}
