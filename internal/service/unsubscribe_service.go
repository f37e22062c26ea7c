package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mailpilot/internal/ai"
	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository"
)

const maxExtractionInput = 8000

var (
	unsubscribeURLPattern = regexp.MustCompile(`(?i)https?://[^\s"'<>)]*(?:unsubscribe|opt[-_]?out|remove)[^\s"'<>)]*`)
	mailtoPattern         = regexp.MustCompile(`(?i)mailto:[^\s"'<>)]*unsubscribe[^\s"'<>)]*`)
)

var unsubscribeKeywords = []string{
	"unsubscribe",
	"opt out",
	"opt-out",
	"remove me",
	"stop receiving",
	"manage preferences",
	"email preferences",
	"subscription preferences",
}

type unsubscribeService struct {
	messages repository.MessageRepository
	client   ai.Client
	model    string
	executor UnsubscribeExecutor
	logger   *logger.Logger
}

func NewUnsubscribeService(
	messages repository.MessageRepository,
	client ai.Client,
	model string,
	executor UnsubscribeExecutor,
	logger *logger.Logger,
) UnsubscribeService {
	return &unsubscribeService{
		messages: messages,
		client:   client,
		model:    model,
		executor: executor,
		logger:   logger,
	}
}

// UnsubscribeMessages processes each message independently and always
// returns a report per requested id; nothing in the batch can abort it.
func (s *unsubscribeService) UnsubscribeMessages(ctx context.Context, messageIDs []string, ownerID string) ([]*model.UnsubscribeReport, error) {
	reports := make([]*model.UnsubscribeReport, 0, len(messageIDs))
	for _, messageID := range messageIDs {
		msg, err := s.messages.FindByID(ctx, messageID)
		if err != nil || msg.OwnerID != ownerID {
			reports = append(reports, &model.UnsubscribeReport{
				MessageID: messageID,
				Summary:   "message not found",
			})
			continue
		}

		report := s.unsubscribeFromMessage(ctx, msg)
		reports = append(reports, report)

		if report.Success {
			msg.Summary = strings.TrimSpace(msg.Summary + "\n[Unsubscribed: " + report.Summary + "]")
			if err := s.messages.Update(ctx, msg); err != nil {
				s.logger.Warn("Failed to annotate message", msg.ID, ":", err)
			}
		}
	}
	return reports, nil
}

func (s *unsubscribeService) unsubscribeFromMessage(ctx context.Context, msg *model.Message) *model.UnsubscribeReport {
	report := &model.UnsubscribeReport{MessageID: msg.ID}

	links := s.ExtractLinks(ctx, msg.HTMLBody+"\n"+msg.CleanTextBody)
	if len(links) == 0 {
		report.Summary = "no unsubscribe links found"
		return report
	}

	succeeded := 0
	for _, link := range links {
		outcome := s.executor.Execute(ctx, link)
		outcome.MessageID = msg.ID
		if outcome.Success {
			succeeded++
		}
		report.Results = append(report.Results, outcome)
	}

	report.Success = succeeded > 0
	report.Summary = fmt.Sprintf("processed %d links, %d successful", len(links), succeeded)
	return report
}

// ExtractLinks finds unsubscribe targets in the message content. The model
// does the heavy lifting; if its call fails or its reply cannot be parsed,
// a pattern scan over the same content takes over. This never errors: no
// links is a valid answer.
func (s *unsubscribeService) ExtractLinks(ctx context.Context, content string) []model.UnsubscribeLink {
	if len(content) > maxExtractionInput {
		content = content[:maxExtractionInput]
	}

	prompt := fmt.Sprintf(`Find every unsubscribe link in the email content below. Look for anchor tags whose text mentions unsubscribing or managing email preferences, footer links, and mailto: addresses with an unsubscribe subject.

Respond with only a JSON array, no other text. Each element must be an object {"url": "...", "text": "...", "method": "GET" or "POST"}. Respond with [] if there are none.

Email content:
%s`, content)

	answer, err := s.client.GenerateText(ctx, prompt, s.model, 500)
	if err != nil {
		s.logger.Warn("Link extraction model call failed, using pattern scan:", err)
		return fallbackLinks(content)
	}

	links, err := parseLinkArray(answer)
	if err != nil {
		s.logger.Warn("Unparsable link extraction reply, using pattern scan:", err)
		return fallbackLinks(content)
	}
	return dedupeLinks(links)
}

func parseLinkArray(answer string) ([]model.UnsubscribeLink, error) {
	cleaned := strings.TrimSpace(answer)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var links []model.UnsubscribeLink
	if err := json.Unmarshal([]byte(cleaned), &links); err != nil {
		return nil, err
	}

	valid := make([]model.UnsubscribeLink, 0, len(links))
	for _, link := range links {
		if link.URL == "" {
			continue
		}
		if !strings.EqualFold(link.Method, "POST") {
			link.Method = "GET"
		} else {
			link.Method = "POST"
		}
		valid = append(valid, link)
	}
	return valid, nil
}

// fallbackLinks is the deterministic extraction path: bare URL patterns,
// unsubscribe mailtos, then anchors whose text or href looks like an
// unsubscribe control.
func fallbackLinks(content string) []model.UnsubscribeLink {
	var links []model.UnsubscribeLink

	for _, match := range unsubscribeURLPattern.FindAllString(content, -1) {
		links = append(links, model.UnsubscribeLink{
			URL:    strings.Trim(match, `"'.,`),
			Text:   "unsubscribe",
			Method: "GET",
		})
	}
	for _, match := range mailtoPattern.FindAllString(content, -1) {
		links = append(links, model.UnsubscribeLink{
			URL:    strings.Trim(match, `"'.,`),
			Text:   "unsubscribe",
			Method: "GET",
		})
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(content)); err == nil {
		doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || href == "" {
				return
			}
			text := strings.TrimSpace(sel.Text())
			if looksLikeUnsubscribe(text) || looksLikeUnsubscribe(href) {
				links = append(links, model.UnsubscribeLink{URL: href, Text: text, Method: "GET"})
			}
		})
	}

	return dedupeLinks(links)
}

func looksLikeUnsubscribe(s string) bool {
	lower := strings.ToLower(s)
	for _, keyword := range unsubscribeKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

func dedupeLinks(links []model.UnsubscribeLink) []model.UnsubscribeLink {
	seen := make(map[string]bool, len(links))
	out := links[:0]
	for _, link := range links {
		if seen[link.URL] {
			continue
		}
		seen[link.URL] = true
		out = append(out, link)
	}
	return out
}
