package services

import (
	"strings"
	"testing"

	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/shared"
)

func TestChunkCounts(t *testing.T) {
	tests := []struct {
		total int
		size  int
		want  []int
	}{
		{total: 0, size: 10, want: nil},
		{total: -3, size: 10, want: nil},
		{total: 5, size: 10, want: []int{5}},
		{total: 10, size: 10, want: []int{10}},
		{total: 25, size: 10, want: []int{10, 10, 5}},
		{total: 30, size: 10, want: []int{10, 10, 10}},
		{total: 7, size: 0, want: []int{7}},
	}

	for _, tt := range tests {
		got := chunkCounts(tt.total, tt.size)
		if len(got) != len(tt.want) {
			t.Errorf("chunkCounts(%d, %d) = %v, want %v", tt.total, tt.size, got, tt.want)
			continue
		}
		sum := 0
		for i, n := range got {
			if n != tt.want[i] {
				t.Errorf("chunkCounts(%d, %d) = %v, want %v", tt.total, tt.size, got, tt.want)
			}
			sum += n
		}
		if tt.total > 0 && sum != tt.total {
			t.Errorf("chunkCounts(%d, %d) sums to %d", tt.total, tt.size, sum)
		}
	}
}

func TestExtractJSONArray(t *testing.T) {
	clean := `[{"a":1}]`
	got, err := extractJSONArray(clean)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != clean {
		t.Errorf("got %q, want %q", got, clean)
	}

	wrapped := "Berikut soalnya:\n```json\n[{\"a\":1}]\n```\nSemoga membantu."
	got, err = extractJSONArray(wrapped)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != `[{"a":1}]` {
		t.Errorf("got %q", got)
	}

	if _, err := extractJSONArray("no array here"); err == nil {
		t.Error("expected error for text without an array")
	}

	if _, err := extractJSONArray("] backwards ["); err == nil {
		t.Error("expected error for reversed brackets")
	}
}

const validQuestionJSON = `[
  {
    "type": "multiple_choice",
    "text": "2 + 2 = ?",
    "options": [
      {"label": "A", "text": "3"},
      {"label": "B", "text": "4"},
      {"label": "C", "text": "5"},
      {"label": "D", "text": "6"}
    ],
    "correct_option_label": "B",
    "explanation": "Penjumlahan dasar."
  },
  {
    "question": "3 x 3 = ?",
    "options": [
      {"label": "A", "text": "6"},
      {"label": "B", "text": "9"}
    ],
    "correct_option_label": "B",
    "explanation": "Perkalian dasar."
  }
]`

func testParams() GenerationParams {
	return GenerationParams{
		Mode:          shared.TestModePsikotes,
		Category:      shared.CategoryNumeric,
		Difficulty:    shared.DifficultyEasy,
		QuestionCount: 2,
	}
}

func TestParseQuestions(t *testing.T) {
	questions, err := parseQuestions(validQuestionJSON, testParams(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("got %d questions, want 2", len(questions))
	}

	if questions[0].Category != shared.CategoryNumeric {
		t.Errorf("category = %q, want %q", questions[0].Category, shared.CategoryNumeric)
	}
	if questions[0].Difficulty != shared.DifficultyEasy {
		t.Errorf("difficulty = %q, want %q", questions[0].Difficulty, shared.DifficultyEasy)
	}

	// Second entry uses the "question" alias and omits type.
	if questions[1].Text != "3 x 3 = ?" {
		t.Errorf("text = %q", questions[1].Text)
	}
	if questions[1].Type != shared.QuestionTypeMultipleChoice {
		t.Errorf("type = %q, want default multiple_choice", questions[1].Type)
	}
}

func TestParseQuestionsTrimsExcess(t *testing.T) {
	questions, err := parseQuestions(validQuestionJSON, testParams(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("got %d questions, want exactly 1", len(questions))
	}
}

func TestParseQuestionsRejectsShortBatch(t *testing.T) {
	if _, err := parseQuestions(validQuestionJSON, testParams(), 3); err == nil {
		t.Error("expected error when model returns fewer questions than requested")
	}
}

func TestParseQuestionsRejectsInvalidJSON(t *testing.T) {
	if _, err := parseQuestions(`[{"text": "broken"`, testParams(), 1); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestValidateQuestion(t *testing.T) {
	valid := model.Question{
		Text: "Soal",
		Options: []model.QuestionOption{
			{Label: "A", Text: "satu"},
			{Label: "B", Text: "dua"},
		},
		CorrectOptionLabel: "A",
	}
	if err := validateQuestion(valid); err != nil {
		t.Errorf("valid question rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(q *model.Question)
	}{
		{"empty text", func(q *model.Question) { q.Text = "  " }},
		{"single option", func(q *model.Question) { q.Options = q.Options[:1] }},
		{"duplicate labels", func(q *model.Question) { q.Options[1].Label = "A" }},
		{"empty label", func(q *model.Question) { q.Options[0].Label = "" }},
		{"missing correct label", func(q *model.Question) { q.CorrectOptionLabel = "" }},
		{"correct label not among options", func(q *model.Question) { q.CorrectOptionLabel = "Z" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid
			q.Options = append([]model.QuestionOption(nil), valid.Options...)
			tt.mutate(&q)
			if err := validateQuestion(q); err == nil {
				t.Errorf("expected rejection for %s", tt.name)
			}
		})
	}
}

func TestCacheKeyIdentity(t *testing.T) {
	a := testParams()
	b := testParams()
	if a.CacheKey() != b.CacheKey() {
		t.Error("identical params must share a cache key")
	}

	b.QuestionCount = 5
	if a.CacheKey() == b.CacheKey() {
		t.Error("different question counts must not share a cache key")
	}
}

func TestBuildQuestionPrompt(t *testing.T) {
	prompt := buildQuestionPrompt(testParams(), 7)

	for _, want := range []string{"7", shared.CategoryNumeric, shared.DifficultyEasy, "correct_option_label"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
