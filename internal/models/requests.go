package models

// ── Learning workflow request / response types ──────────

type CreateSessionRequest struct {
	Topic         string        `json:"topic" validate:"required,min=1,max=200"`
	Difficulty    Difficulty    `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	LearningStyle LearningStyle `json:"learningStyle" validate:"required,oneof=visual practical conceptual"`
}

type SubmitQuizRequest struct {
	SessionID  string `json:"sessionId" validate:"required,uuid"`
	SubtopicID string `json:"subtopicId" validate:"required,min=1"`
	Score      *int   `json:"score" validate:"required,min=0,max=100"`
	TimeSpent  *int   `json:"timeSpent" validate:"omitempty,min=0,max=86400"`
}

type CompleteFlashcardsRequest struct {
	SessionID  string `json:"sessionId" validate:"required,uuid"`
	SubtopicID string `json:"subtopicId" validate:"required,min=1"`
}

type ExplanationRequest struct {
	Concept    string     `json:"concept" validate:"required,min=1"`
	Context    string     `json:"context" validate:"required,min=1"`
	Difficulty Difficulty `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
}

type SubmitResult struct {
	Success  bool `json:"success"`
	XPEarned int  `json:"xpEarned"`
}

// ── Text-to-speech ──────────────────────────────────────

type TTSRequest struct {
	Text     string   `json:"text" validate:"required,min=1,max=5000"`
	Voice    string   `json:"voice" validate:"omitempty,oneof=en-US-Neural2-J en-US-Neural2-D en-US-Neural2-F en-US-Neural2-A"`
	Speed    *float64 `json:"speed" validate:"omitempty,min=0.25,max=4"`
	Enhanced bool     `json:"enhanced"`
}

type TTSResponse struct {
	AudioContent string `json:"audioContent"`
	Format       string `json:"format"`
}
