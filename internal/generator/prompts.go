package generator

import (
	"fmt"

	"github.com/DevSidd2006/learnquest/internal/models"
)

const (
	OutlineMinSubtopics = 5
	OutlineMaxSubtopics = 7
	QuizQuestionCount   = 5
	FlashcardCount      = 8
)

// ── Outline ─────────────────────────────────────────────

func OutlineSystemPrompt(difficulty models.Difficulty, style models.LearningStyle) string {
	return fmt.Sprintf(`You are an expert educational content creator. Create a comprehensive learning outline for the topic provided.
The outline should be tailored to %s level learners with a %s learning preference.
Generate %d-%d subtopics that build upon each other logically.
Give every subtopic a short unique id (for example "subtopic-1") and an order starting at 1.`,
		difficulty, style, OutlineMinSubtopics, OutlineMaxSubtopics)
}

func BuildOutlinePrompt(topic string, difficulty models.Difficulty, style models.LearningStyle) string {
	return fmt.Sprintf(`Create a detailed learning outline for: %q

Difficulty Level: %s
Learning Style: %s
%s
Provide a structured outline with subtopics, descriptions, estimated duration for each, and total estimated time.
Make it engaging and appropriate for the difficulty level.`,
		topic, difficulty, style, styleGuidance(style))
}

func styleGuidance(style models.LearningStyle) string {
	switch style {
	case models.StyleVisual:
		return "\nFavour subtopics that can be shown with diagrams, charts and worked visual examples.\n"
	case models.StylePractical:
		return "\nFavour hands-on subtopics: exercises, small projects and real tasks the learner can try.\n"
	case models.StyleConceptual:
		return "\nFavour subtopics that build the underlying theory and mental models before details.\n"
	default:
		return ""
	}
}

// ── Quiz ────────────────────────────────────────────────

func QuizSystemPrompt() string {
	return `You are an expert quiz creator. Generate engaging, educational quiz questions that test understanding.
Create questions with real-life examples and clear explanations.
Mix question types: multiple-choice and true-false.`
}

func BuildQuizPrompt(topic, subtopic string, difficulty models.Difficulty) string {
	return fmt.Sprintf(`Create exactly %d quiz questions about %q within the broader topic of %q.
Difficulty level: %s

For each question, provide:
- A unique id
- The question text
- Question type ("multiple-choice" or "true-false")
- Options (multiple-choice questions get exactly 4 options; omit options for true-false)
- The correct answer (for multiple-choice, copy one option verbatim; for true-false, "true" or "false")
- A clear explanation of why it's correct
- A real-life example that illustrates the concept`,
		QuizQuestionCount, subtopic, topic, difficulty)
}

// ── Flashcards ──────────────────────────────────────────

func FlashcardSystemPrompt() string {
	return `You are an expert at creating effective flashcards for learning.
Create concise, memorable flashcards that focus on key concepts.
Include hints and practical examples to aid retention.`
}

func BuildFlashcardPrompt(topic, subtopic string, difficulty models.Difficulty) string {
	return fmt.Sprintf(`Create %d flashcards about %q within the broader topic of %q.
Difficulty level: %s

For each flashcard:
- Id: a unique id
- Front: A clear question or concept to recall
- Back: The answer or explanation (concise but complete)
- Hint: A helpful hint to guide thinking (optional)
- Example: A practical example of the concept in use (optional)`,
		FlashcardCount, subtopic, topic, difficulty)
}

// ── Explanation ─────────────────────────────────────────

func ExplanationSystemPrompt() string {
	return `You are an expert teacher who excels at breaking down complex concepts into simple, understandable explanations.
Use analogies, real-life examples, and clear language appropriate for the difficulty level.`
}

func BuildExplanationPrompt(concept, topicContext string, difficulty models.Difficulty) string {
	return fmt.Sprintf(`Explain the concept: %q in the context of %q.
Difficulty level: %s

Provide:
1. A simple, clear explanation
2. An analogy that makes it easy to understand
3. 2-3 real-life examples where this concept applies
4. 3-4 key takeaways to remember
5. Common mistakes people make with this concept`,
		concept, topicContext, difficulty)
}

// ── Speech ──────────────────────────────────────────────

func SpeechSystemPrompt() string {
	return `You rewrite study material so it sounds natural when read aloud by a text-to-speech voice.
Keep the meaning. Expand abbreviations and symbols into words, break long sentences, and drop markdown.
Reply with the rewritten text only.`
}

func BuildSpeechPrompt(text string) string {
	return "Rewrite for speech:\n\n" + text
}
