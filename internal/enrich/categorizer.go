package enrich

import (
	"context"
	"fmt"
	"strings"

	"mailpilot/internal/ai"
	"mailpilot/internal/logger"
	"mailpilot/internal/model"
)

const maxCategoryInput = 1500

// Categorizer picks the best-fit category for a message from a
// caller-supplied candidate list. An empty candidate list short-circuits to
// uncategorized without a model call, and any model failure or unmatched
// reply also yields uncategorized ("") rather than an error.
type Categorizer struct {
	client ai.Client
	model  string
	logger *logger.Logger
}

func NewCategorizer(client ai.Client, model string, logger *logger.Logger) *Categorizer {
	return &Categorizer{
		client: client,
		model:  model,
		logger: logger,
	}
}

// Categorize returns the id of the matched candidate, or "" when no
// candidate matched.
func (c *Categorizer) Categorize(ctx context.Context, subject, sender, body string, candidates []*model.Category) string {
	if len(candidates) == 0 {
		return ""
	}

	if len(body) > maxCategoryInput {
		body = body[:maxCategoryInput]
	}

	categoryDetails := make([]string, len(candidates))
	for i, cat := range candidates {
		categoryDetails[i] = fmt.Sprintf("%s: %s", cat.Name, cat.Description)
	}

	prompt := fmt.Sprintf(`Classify the following email into one of these categories:

%s

Email subject: %s
Email sender: %s
Email content:
%s

Respond with only the exact category name that best fits the email.`,
		strings.Join(categoryDetails, "\n"), subject, sender, body)

	answer, err := c.client.GenerateText(ctx, prompt, c.model, 20)
	if err != nil {
		c.logger.Warn("Categorization failed, leaving message uncategorized:", err)
		return ""
	}

	return MatchCategory(answer, candidates)
}

// MatchCategory maps the model's free-text answer back to a candidate id.
// Matching is case-insensitive substring containment in either direction,
// which tolerates the model echoing extra words around the name or an
// abbreviated form of it. First match wins; "" means no match.
func MatchCategory(answer string, candidates []*model.Category) string {
	answerLower := strings.ToLower(strings.TrimSpace(answer))
	if answerLower == "" {
		return ""
	}

	for _, cat := range candidates {
		nameLower := strings.ToLower(strings.TrimSpace(cat.Name))
		if nameLower == answerLower {
			return cat.ID
		}
	}

	for _, cat := range candidates {
		nameLower := strings.ToLower(strings.TrimSpace(cat.Name))
		if nameLower == "" {
			continue
		}
		if strings.Contains(answerLower, nameLower) || strings.Contains(nameLower, answerLower) {
			return cat.ID
		}
	}

	return ""
}
