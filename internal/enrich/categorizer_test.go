package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"mailpilot/internal/ai"
	"mailpilot/internal/logger"
	"mailpilot/internal/model"
)

func testCandidates() []*model.Category {
	return []*model.Category{
		{ID: "c1", Name: "Work", Description: "job related"},
		{ID: "c2", Name: "Newsletters", Description: "recurring digests"},
	}
}

func TestCategorizeEmptyCandidatesSkipsModel(t *testing.T) {
	mock := ai.NewMockClient()
	c := NewCategorizer(mock, "test-model", logger.New())

	got := c.Categorize(context.Background(), "subject", "sender", "body", nil)

	assert.Empty(t, got)
	assert.Empty(t, mock.Calls, "no model call expected for an empty candidate list")
}

func TestCategorizeMatchesAnswer(t *testing.T) {
	mock := ai.NewMockClient()
	mock.GenerateTextFunc = func(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
		return "Work", nil
	}

	c := NewCategorizer(mock, "test-model", logger.New())
	got := c.Categorize(context.Background(), "standup notes", "boss@corp.com", "see you at 9", testCandidates())

	assert.Equal(t, "c1", got)
}

func TestCategorizeErrorLeavesUncategorized(t *testing.T) {
	mock := ai.NewMockClient()
	mock.GenerateTextFunc = func(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
		return "", errors.New("provider down")
	}

	c := NewCategorizer(mock, "test-model", logger.New())
	got := c.Categorize(context.Background(), "s", "f", "b", testCandidates())

	assert.Empty(t, got)
}

func TestMatchCategory(t *testing.T) {
	candidates := testCandidates()

	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{"exact", "Work", "c1"},
		{"case insensitive", "wOrK", "c1"},
		{"answer contains name", `The best category is "Newsletters".`, "c2"},
		{"name contains answer", "Newsletter", "c2"},
		{"no match", "Spam", ""},
		{"empty answer", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchCategory(tt.answer, candidates))
		})
	}
}

func TestMatchCategoryFirstMatchWins(t *testing.T) {
	candidates := []*model.Category{
		{ID: "a", Name: "News"},
		{ID: "b", Name: "Newsletters"},
	}
	// An exact name match beats substring containment on an earlier candidate.
	assert.Equal(t, "b", MatchCategory("Newsletters", candidates))
	// With no exact match, the earlier containing candidate wins.
	assert.Equal(t, "a", MatchCategory("probably News or similar", candidates))
}
