package generator

// Response schemas, written once as JSON Schema maps. The same definition is
// sent to the provider for structured output and compiled locally to check
// what comes back. Arrays use []any so both consumers read them the same way.

var OutlineSchema = &Schema{
	Name:        "topic-outline",
	Description: "A learning outline of 5-7 ordered subtopics",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"topic":         map[string]any{"type": "string"},
			"estimatedTime": map[string]any{"type": "string"},
			"difficulty":    map[string]any{"type": "string"},
			"subtopics": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"id":          map[string]any{"type": "string", "minLength": 1},
						"title":       map[string]any{"type": "string", "minLength": 1},
						"description": map[string]any{"type": "string"},
						"duration":    map[string]any{"type": "string"},
						"order":       map[string]any{"type": "number"},
					},
					"required": []any{"id", "title", "description", "duration", "order"},
				},
			},
		},
		"required": []any{"topic", "estimatedTime", "difficulty", "subtopics"},
	},
}

var QuizSchema = &Schema{
	Name:        "quiz-questions",
	Description: "Five quiz questions for one subtopic",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"questions": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"id":              map[string]any{"type": "string"},
						"type":            map[string]any{"type": "string", "enum": []any{"multiple-choice", "true-false"}},
						"question":        map[string]any{"type": "string", "minLength": 1},
						"options":         map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"correctAnswer":   map[string]any{"type": "string", "minLength": 1},
						"explanation":     map[string]any{"type": "string"},
						"realLifeExample": map[string]any{"type": "string"},
					},
					"required": []any{"id", "type", "question", "correctAnswer", "explanation", "realLifeExample"},
				},
			},
		},
		"required": []any{"questions"},
	},
}

var FlashcardSchema = &Schema{
	Name:        "flashcards",
	Description: "Eight flashcards for one subtopic",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"flashcards": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"id":      map[string]any{"type": "string"},
						"front":   map[string]any{"type": "string", "minLength": 1},
						"back":    map[string]any{"type": "string", "minLength": 1},
						"hint":    map[string]any{"type": "string"},
						"example": map[string]any{"type": "string"},
					},
					"required": []any{"id", "front", "back"},
				},
			},
		},
		"required": []any{"flashcards"},
	},
}

var ExplanationSchema = &Schema{
	Name:        "explanation",
	Description: "A plain-language explanation of one concept",
	Definition: map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"concept":           map[string]any{"type": "string"},
			"simpleExplanation": map[string]any{"type": "string", "minLength": 1},
			"analogy":           map[string]any{"type": "string"},
			"realLifeExamples":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"keyTakeaways":      map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"commonMistakes":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []any{"concept", "simpleExplanation", "analogy", "realLifeExamples", "keyTakeaways"},
	},
}
