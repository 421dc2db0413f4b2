package gamification

// AchievementDef defines a single achievement.
type AchievementDef struct {
	Title       string
	Description string
	Icon        string
	XPReward    int
}

const (
	FirstRegistration = "first_registration"
	FirstSession      = "first_session"
	FirstQuiz         = "first_quiz"
	FirstFlashcard    = "first_flashcard"
	Streak3           = "streak_3"
	Streak7           = "streak_7"
	PerfectQuiz       = "perfect_quiz"
)

// Achievements maps achievement keys to their definitions.
var Achievements = map[string]AchievementDef{
	FirstRegistration: {Title: "Welcome!", Description: "Joined LearnQuest", Icon: "🎉", XPReward: 50},
	FirstSession:      {Title: "Getting Started", Description: "Created your first learning session", Icon: "🎯", XPReward: 50},
	FirstQuiz:         {Title: "Quiz Master", Description: "Completed your first quiz", Icon: "🧠", XPReward: 25},
	FirstFlashcard:    {Title: "Memory Builder", Description: "Reviewed your first flashcard set", Icon: "📚", XPReward: 25},
	Streak3:           {Title: "3-Day Streak", Description: "Maintained a 3-day learning streak", Icon: "🔥", XPReward: 100},
	Streak7:           {Title: "Week Warrior", Description: "Maintained a 7-day learning streak", Icon: "⚡", XPReward: 250},
	PerfectQuiz:       {Title: "Perfect Score", Description: "Got 100% on a quiz", Icon: "💯", XPReward: 150},
}

// StreakAchievements returns the streak achievements a user at currentStreak
// qualifies for. The caller skips the ones already earned.
func StreakAchievements(currentStreak int) []string {
	var earned []string
	if currentStreak >= 3 {
		earned = append(earned, Streak3)
	}
	if currentStreak >= 7 {
		earned = append(earned, Streak7)
	}
	return earned
}
