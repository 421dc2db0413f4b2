package generator

import (
	"strings"

	"github.com/DevSidd2006/learnquest/internal/logger"
	"github.com/DevSidd2006/learnquest/internal/models"
)

// nearDuplicateThreshold is the keyword overlap above which two items are
// reported as likely repeats.
const nearDuplicateThreshold = 0.60

// warnNearDuplicates logs every pair of texts whose keyword overlap exceeds
// the threshold. It never rejects content.
func warnNearDuplicates(log *logger.Logger, kind string, texts []string) {
	for _, pair := range NearDuplicates(texts) {
		log.Warn("generated items look alike",
			"kind", kind,
			"first", pair[0]+1,
			"second", pair[1]+1,
		)
	}
}

// NearDuplicates returns index pairs (i < j) whose keyword sets overlap by more
// than nearDuplicateThreshold.
func NearDuplicates(texts []string) [][2]int {
	if len(texts) < 2 {
		return nil
	}

	tokenSets := make([]map[string]bool, len(texts))
	for i, t := range texts {
		tokenSets[i] = tokenize(t)
	}

	var pairs [][2]int
	for i := 0; i < len(texts); i++ {
		for j := i + 1; j < len(texts); j++ {
			if jaccardSimilarity(tokenSets[i], tokenSets[j]) > nearDuplicateThreshold {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

func questionTexts(qs []models.QuizQuestion) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Question
	}
	return out
}

func cardFronts(cards []models.Flashcard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Front
	}
	return out
}

func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(s)) {
		word = strings.Trim(word, ".,;:!?\"'()")
		// short words are mostly articles and prepositions
		if len(word) > 3 {
			tokens[word] = true
		}
	}
	return tokens
}

func jaccardSimilarity(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}

	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}
