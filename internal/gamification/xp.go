package gamification

const (
	// QuizXPPerPoint is awarded per correct answer on quiz submission.
	QuizXPPerPoint = 10
	// FlashcardXPPerCard is awarded per card when a set is completed.
	FlashcardXPPerCard = 5
	// DefaultXPPerLevel applies when no level size is configured.
	DefaultXPPerLevel = 1000
)

// QuizXP returns the XP for a quiz score. Negative scores earn nothing.
func QuizXP(score int) int {
	if score <= 0 {
		return 0
	}
	return score * QuizXPPerPoint
}

// FlashcardXP returns the XP for completing a set of totalCards cards.
func FlashcardXP(totalCards int) int {
	if totalCards <= 0 {
		return 0
	}
	return totalCards * FlashcardXPPerCard
}

// Level is floor(totalXP / perLevel) + 1.
func Level(totalXP, perLevel int) int {
	if perLevel <= 0 {
		perLevel = DefaultXPPerLevel
	}
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/perLevel + 1
}

// XPToNextLevel returns how much XP is missing until the next level starts.
func XPToNextLevel(totalXP, perLevel int) int {
	if perLevel <= 0 {
		perLevel = DefaultXPPerLevel
	}
	return Level(totalXP, perLevel)*perLevel - max(totalXP, 0)
}
