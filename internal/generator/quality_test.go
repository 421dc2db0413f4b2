package generator

import (
	"math"
	"testing"
)

func TestNearDuplicates(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  [][2]int
	}{
		{"empty", nil, nil},
		{"single", []string{"What does chlorophyll absorb?"}, nil},
		{
			name: "distinct",
			texts: []string{
				"What does chlorophyll absorb during photosynthesis?",
				"Where does the Calvin cycle happen inside plants?",
			},
			want: nil,
		},
		{
			name: "reworded repeat",
			texts: []string{
				"Which pigment absorbs sunlight inside leaves?",
				"Where does the Calvin cycle happen inside plants?",
				"Which pigment absorbs sunlight inside green leaves?",
			},
			want: [][2]int{{0, 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NearDuplicates(tt.texts)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("pair %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestTokenize_DropsShortWordsAndPunctuation(t *testing.T) {
	tokens := tokenize("What is the role of (chlorophyll)?")

	for _, want := range []string{"what", "role", "chlorophyll"} {
		if !tokens[want] {
			t.Errorf("expected token %q in %v", want, tokens)
		}
	}
	for _, short := range []string{"is", "the", "of"} {
		if tokens[short] {
			t.Errorf("short word %q should be dropped", short)
		}
	}
}

func TestJaccardSimilarity(t *testing.T) {
	a := map[string]bool{"light": true, "energy": true, "plant": true}
	b := map[string]bool{"light": true, "energy": true, "water": true}

	// 2 shared / 4 total
	if got := jaccardSimilarity(a, b); !almostEqual(got, 0.5) {
		t.Errorf("expected 0.5, got %f", got)
	}
	if got := jaccardSimilarity(map[string]bool{}, map[string]bool{}); got != 0 {
		t.Errorf("expected 0 for empty sets, got %f", got)
	}
	if got := jaccardSimilarity(a, a); !almostEqual(got, 1.0) {
		t.Errorf("expected 1.0 for identical sets, got %f", got)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}
