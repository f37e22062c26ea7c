package enrich

import (
	"context"
	"fmt"
	"strings"

	"mailpilot/internal/ai"
	"mailpilot/internal/logger"
)

// maxSummaryInput bounds how much of the body goes into the prompt.
const maxSummaryInput = 1500

// Summarizer produces a short natural-language summary of a message.
// Summarization failure never propagates: on any error the deterministic
// fallback string is returned instead, so ingestion of the underlying
// message is unaffected.
type Summarizer struct {
	client ai.Client
	model  string
	logger *logger.Logger
}

func NewSummarizer(client ai.Client, model string, logger *logger.Logger) *Summarizer {
	return &Summarizer{
		client: client,
		model:  model,
		logger: logger,
	}
}

func (s *Summarizer) Summarize(ctx context.Context, subject, sender, cleanBody string) string {
	body := cleanBody
	if len(body) > maxSummaryInput {
		body = body[:maxSummaryInput]
	}

	prompt := fmt.Sprintf(`Summarize the following email in 1-2 sentences. Focus on the purpose of the email and any action items for the recipient.

Subject: %s
From: %s

%s`, subject, sender, body)

	summary, err := s.client.GenerateText(ctx, prompt, s.model, 150)
	if err != nil {
		s.logger.Warn("Summarization failed, using fallback:", err)
		return FallbackSummary(subject, sender)
	}

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return FallbackSummary(subject, sender)
	}
	return summary
}

// FallbackSummary is the deterministic summary used when the model call
// fails or returns nothing usable.
func FallbackSummary(subject, sender string) string {
	return fmt.Sprintf("Email from %s: %s", sender, subject)
}
