package models

import "time"

// ActivityDateLayout is the UTC calendar-day format used for streak tracking.
const ActivityDateLayout = "2006-01-02"

// UserProgress is the per-user aggregate. The guest aggregate has a nil UserID.
type UserProgress struct {
	ID                 string    `json:"id"`
	UserID             *string   `json:"userId"`
	TotalXP            int       `json:"totalXp"`
	CurrentLevel       int       `json:"currentLevel"`
	CurrentStreak      int       `json:"currentStreak"`
	LongestStreak      int       `json:"longestStreak"`
	LastActivityDate   *string   `json:"lastActivityDate"`
	CompletedTopics    int       `json:"completedTopics"`
	QuizzesCompleted   int       `json:"quizzesCompleted"`
	FlashcardsReviewed int       `json:"flashcardsReviewed"`
	TotalStudyTime     int       `json:"totalStudyTime"`
	AverageQuizScore   int       `json:"averageQuizScore"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ActivityDate formats t as a UTC calendar day.
func ActivityDate(t time.Time) string {
	return t.UTC().Format(ActivityDateLayout)
}

// RecordActivity applies the daily streak rule for activity on day today
// (YYYY-MM-DD). The first activity on a day different from LastActivityDate
// bumps CurrentStreak and raises LongestStreak; further activity on the same
// day changes nothing. A gap of several days does not reset the streak.
// Reports whether the streak changed.
func (p *UserProgress) RecordActivity(today string) bool {
	if p.LastActivityDate != nil && *p.LastActivityDate == today {
		return false
	}
	p.CurrentStreak++
	if p.CurrentStreak > p.LongestStreak {
		p.LongestStreak = p.CurrentStreak
	}
	d := today
	p.LastActivityDate = &d
	return true
}

// RecordQuizScore folds a quiz result (as a percentage) into the running
// average. QuizzesCompleted must already include this quiz.
func (p *UserProgress) RecordQuizScore(percent int) {
	n := p.QuizzesCompleted
	if n <= 0 {
		return
	}
	p.AverageQuizScore = (p.AverageQuizScore*(n-1) + percent) / n
}

// ProgressUpdate lists every field that may be overwritten on a progress
// record. Nil fields are left unchanged.
type ProgressUpdate struct {
	TotalXP            *int
	CurrentLevel       *int
	CurrentStreak      *int
	LongestStreak      *int
	LastActivityDate   *string
	CompletedTopics    *int
	QuizzesCompleted   *int
	FlashcardsReviewed *int
	TotalStudyTime     *int
	AverageQuizScore   *int
}

// Apply copies the non-nil fields of u onto p.
func (u ProgressUpdate) Apply(p *UserProgress) {
	if u.TotalXP != nil {
		p.TotalXP = *u.TotalXP
	}
	if u.CurrentLevel != nil {
		p.CurrentLevel = *u.CurrentLevel
	}
	if u.CurrentStreak != nil {
		p.CurrentStreak = *u.CurrentStreak
	}
	if u.LongestStreak != nil {
		p.LongestStreak = *u.LongestStreak
	}
	if u.LastActivityDate != nil {
		d := *u.LastActivityDate
		p.LastActivityDate = &d
	}
	if u.CompletedTopics != nil {
		p.CompletedTopics = *u.CompletedTopics
	}
	if u.QuizzesCompleted != nil {
		p.QuizzesCompleted = *u.QuizzesCompleted
	}
	if u.FlashcardsReviewed != nil {
		p.FlashcardsReviewed = *u.FlashcardsReviewed
	}
	if u.TotalStudyTime != nil {
		p.TotalStudyTime = *u.TotalStudyTime
	}
	if u.AverageQuizScore != nil {
		p.AverageQuizScore = *u.AverageQuizScore
	}
}

// ProgressResponse is what GET /api/progress returns.
type ProgressResponse struct {
	UserProgress
	Level         int `json:"level"`
	XPToNextLevel int `json:"xpToNextLevel"`
}
