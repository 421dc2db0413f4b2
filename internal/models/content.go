package models

// Outline is the generated plan for a learning session.
type Outline struct {
	Topic         string     `json:"topic"`
	Subtopics     []Subtopic `json:"subtopics"`
	EstimatedTime string     `json:"estimatedTime"`
	Difficulty    string     `json:"difficulty"`
}

type Subtopic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Duration    string `json:"duration"`
	Order       int    `json:"order"`
}

// FindSubtopic returns the subtopic with the given id and its position in the
// outline, or (nil, -1).
func (o *Outline) FindSubtopic(id string) (*Subtopic, int) {
	for i := range o.Subtopics {
		if o.Subtopics[i].ID == id {
			return &o.Subtopics[i], i
		}
	}
	return nil, -1
}

type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple-choice"
	QuestionTrueFalse      QuestionType = "true-false"
)

type QuizQuestion struct {
	ID              string       `json:"id"`
	Type            QuestionType `json:"type"`
	Question        string       `json:"question"`
	Options         []string     `json:"options,omitempty"`
	CorrectAnswer   string       `json:"correctAnswer"`
	Explanation     string       `json:"explanation"`
	RealLifeExample string       `json:"realLifeExample"`
}

type Flashcard struct {
	ID      string `json:"id"`
	Front   string `json:"front"`
	Back    string `json:"back"`
	Hint    string `json:"hint,omitempty"`
	Example string `json:"example,omitempty"`
}

type Explanation struct {
	Concept           string   `json:"concept"`
	SimpleExplanation string   `json:"simpleExplanation"`
	Analogy           string   `json:"analogy"`
	RealLifeExamples  []string `json:"realLifeExamples"`
	KeyTakeaways      []string `json:"keyTakeaways"`
	CommonMistakes    []string `json:"commonMistakes,omitempty"`
}
