package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mailpilot/internal/ai"
	"mailpilot/internal/browser"
	"mailpilot/internal/logger"
	"mailpilot/internal/model"
)

// Page intents the classifier may return.
const (
	IntentClickButton         = "CLICK_BUTTON"
	IntentFillForm            = "FILL_FORM"
	IntentEmailConfirmation   = "EMAIL_CONFIRMATION"
	IntentCaptchaRequired     = "CAPTCHA_REQUIRED"
	IntentAlreadyUnsubscribed = "ALREADY_UNSUBSCRIBED"
	IntentError               = "ERROR"
)

// PageAction is one step the classifier prescribes against the live page.
type PageAction struct {
	Type     string `json:"type"` // click, type, select
	Selector string `json:"selector"`
	Value    string `json:"value,omitempty"`
}

type pageAnalysis struct {
	Action     string       `json:"action"`
	Confidence float64      `json:"confidence"`
	Steps      []PageAction `json:"steps"`
}

type browserExecutor struct {
	automation browser.Automation
	client     ai.Client
	model      string
	navTimeout time.Duration
	logger     *logger.Logger
}

func NewBrowserExecutor(
	automation browser.Automation,
	client ai.Client,
	model string,
	navTimeout time.Duration,
	logger *logger.Logger,
) UnsubscribeExecutor {
	return &browserExecutor{
		automation: automation,
		client:     client,
		model:      model,
		navTimeout: navTimeout,
		logger:     logger,
	}
}

// Execute attempts one unsubscribe link. Mailto links succeed without a
// browser; everything else is loaded in a fresh page, classified, and acted
// on. A captcha is always a failure. The page is released on every exit
// path, exactly once.
func (e *browserExecutor) Execute(ctx context.Context, link model.UnsubscribeLink) *model.UnsubscribeOutcome {
	outcome := &model.UnsubscribeOutcome{URL: link.URL}

	if strings.HasPrefix(strings.ToLower(link.URL), "mailto:") {
		outcome.Success = true
		outcome.Method = "mailto"
		outcome.Details = "unsubscribe request goes to " + mailtoAddress(link.URL)
		return outcome
	}
	outcome.Method = "browser"

	page, err := e.automation.NewPage(ctx)
	if err != nil {
		outcome.Error = fmt.Sprintf("failed to open page: %v", err)
		return outcome
	}
	defer page.Close()

	navCtx, cancel := context.WithTimeout(ctx, e.navTimeout)
	defer cancel()
	if err := page.Navigate(navCtx, link.URL); err != nil {
		outcome.Error = fmt.Sprintf("navigation failed: %v", err)
		return outcome
	}

	if shot, err := page.Screenshot(ctx); err == nil {
		outcome.Evidence = shot
	} else {
		e.logger.Warn("Screenshot failed for", link.URL, ":", err)
	}

	text, err := page.Text(ctx)
	if err != nil {
		outcome.Error = fmt.Sprintf("failed to read page: %v", err)
		return outcome
	}
	html, err := page.HTML(ctx)
	if err != nil {
		e.logger.Warn("Failed to read page html for", link.URL, ":", err)
	}

	analysis, err := e.analyzePage(ctx, link.URL, text, html)
	if err != nil {
		outcome.Error = fmt.Sprintf("page analysis failed: %v", err)
		return outcome
	}

	switch analysis.Action {
	case IntentAlreadyUnsubscribed:
		outcome.Success = true
		outcome.Details = "page reports the address is already unsubscribed"
		return outcome
	case IntentCaptchaRequired:
		outcome.Error = "captcha required, cannot automate"
		return outcome
	case IntentError:
		outcome.Error = "page reports an error state"
		return outcome
	}

	performed := 0
	for _, step := range analysis.Steps {
		if err := e.apply(ctx, page, step); err != nil {
			e.logger.Warn("Page action failed on", link.URL, ":", step.Type, step.Selector, err)
			continue
		}
		performed++
	}

	if performed == 0 {
		outcome.Error = "no prescribed action could be carried out"
		return outcome
	}

	outcome.Success = true
	outcome.Details = fmt.Sprintf("carried out %d of %d actions (%s, confidence %.2f)",
		performed, len(analysis.Steps), analysis.Action, analysis.Confidence)
	return outcome
}

func (e *browserExecutor) apply(ctx context.Context, page browser.Page, step PageAction) error {
	switch strings.ToLower(step.Type) {
	case "click":
		return page.Click(ctx, step.Selector)
	case "type":
		return page.Fill(ctx, step.Selector, step.Value)
	case "select":
		return page.Select(ctx, step.Selector, step.Value)
	default:
		return fmt.Errorf("unknown action type %q", step.Type)
	}
}

func (e *browserExecutor) analyzePage(ctx context.Context, url, text, html string) (*pageAnalysis, error) {
	const maxPageInput = 4000
	if len(text) > maxPageInput {
		text = text[:maxPageInput]
	}
	if len(html) > maxPageInput {
		html = html[:maxPageInput]
	}

	prompt := fmt.Sprintf(`You are looking at an unsubscribe page loaded from %s. Decide what the page needs and how to complete the unsubscribe.

Classify the page as one of: CLICK_BUTTON, FILL_FORM, EMAIL_CONFIRMATION, CAPTCHA_REQUIRED, ALREADY_UNSUBSCRIBED, ERROR.

Respond with only a JSON object, no other text:
{"action": "...", "confidence": 0.0-1.0, "steps": [{"type": "click|type|select", "selector": "css selector", "value": "text to enter, for type and select only"}]}

Leave steps empty when nothing should be done.

Visible page text:
%s

Page HTML:
%s`, url, text, html)

	answer, err := e.client.GenerateText(ctx, prompt, e.model, 500)
	if err != nil {
		return nil, err
	}

	cleaned := strings.TrimSpace(answer)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var analysis pageAnalysis
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		return nil, fmt.Errorf("unparsable page analysis: %w", err)
	}

	switch analysis.Action {
	case IntentClickButton, IntentFillForm, IntentEmailConfirmation,
		IntentCaptchaRequired, IntentAlreadyUnsubscribed, IntentError:
	default:
		return nil, fmt.Errorf("unknown page intent %q", analysis.Action)
	}
	return &analysis, nil
}

func mailtoAddress(url string) string {
	address := strings.TrimPrefix(strings.TrimPrefix(url, "mailto:"), "MAILTO:")
	if i := strings.IndexByte(address, '?'); i >= 0 {
		address = address[:i]
	}
	return address
}
