package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailpilot/internal/ai"
	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository/memory"
)

type stubExecutor struct {
	outcome func(link model.UnsubscribeLink) *model.UnsubscribeOutcome
	calls   []model.UnsubscribeLink
}

func (s *stubExecutor) Execute(ctx context.Context, link model.UnsubscribeLink) *model.UnsubscribeOutcome {
	s.calls = append(s.calls, link)
	if s.outcome != nil {
		return s.outcome(link)
	}
	return &model.UnsubscribeOutcome{URL: link.URL, Success: true, Method: "browser"}
}

func newUnsubscribeFixture(messages *memory.InMemoryMessageRepository, client ai.Client, executor UnsubscribeExecutor) *unsubscribeService {
	return &unsubscribeService{
		messages: messages,
		client:   client,
		model:    "test-model",
		executor: executor,
		logger:   logger.New(),
	}
}

func TestExtractLinksFromModelAnswer(t *testing.T) {
	mock := ai.NewMockClient()
	mock.GenerateTextFunc = func(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
		return "```json\n[{\"url\": \"https://news.example.com/unsub?id=1\", \"text\": \"Unsubscribe\", \"method\": \"get\"}]\n```", nil
	}

	s := newUnsubscribeFixture(memory.NewInMemoryMessageRepository(), mock, &stubExecutor{})
	links := s.ExtractLinks(context.Background(), "<p>whatever</p>")

	require.Len(t, links, 1)
	assert.Equal(t, "https://news.example.com/unsub?id=1", links[0].URL)
	assert.Equal(t, "GET", links[0].Method)
}

func TestExtractLinksFallbackOnModelError(t *testing.T) {
	mock := ai.NewMockClient()
	mock.GenerateTextFunc = func(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
		return "", errors.New("provider down")
	}

	content := `<html><body>
		<a href="https://news.example.com/unsubscribe?u=42">Unsubscribe</a>
		<a href="https://news.example.com/article">Read more</a>
	</body></html>`

	s := newUnsubscribeFixture(memory.NewInMemoryMessageRepository(), mock, &stubExecutor{})
	links := s.ExtractLinks(context.Background(), content)

	require.Len(t, links, 1)
	assert.Equal(t, "https://news.example.com/unsubscribe?u=42", links[0].URL)
}

func TestExtractLinksFallbackOnUnparsableAnswer(t *testing.T) {
	mock := ai.NewMockClient()
	mock.GenerateTextFunc = func(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
		return "I found one link, here it is: https://x.example/unsub", nil
	}

	content := `Click here to opt out: https://mail.example.com/optout/abc
	or write to mailto:unsubscribe@example.com?subject=remove`

	s := newUnsubscribeFixture(memory.NewInMemoryMessageRepository(), mock, &stubExecutor{})
	links := s.ExtractLinks(context.Background(), content)

	require.Len(t, links, 2)
	assert.Equal(t, "https://mail.example.com/optout/abc", links[0].URL)
	assert.Equal(t, "mailto:unsubscribe@example.com?subject=remove", links[1].URL)
}

func TestFallbackLinksMatchesAnchorText(t *testing.T) {
	content := `<a href="https://r.example.com/x9k2">Manage preferences</a>`
	links := fallbackLinks(content)

	require.Len(t, links, 1)
	assert.Equal(t, "https://r.example.com/x9k2", links[0].URL)
	assert.Equal(t, "Manage preferences", links[0].Text)
}

func TestFallbackLinksDeduplicates(t *testing.T) {
	content := `<a href="https://x.example.com/unsubscribe">Unsubscribe</a>
	plain copy: https://x.example.com/unsubscribe`

	links := fallbackLinks(content)
	assert.Len(t, links, 1)
}

func TestParseLinkArrayDropsInvalidEntries(t *testing.T) {
	links, err := parseLinkArray(`[{"url": "", "text": "x"}, {"url": "https://a.example", "method": "POST"}]`)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "POST", links[0].Method)
}

func TestUnsubscribeMessagesAggregatesOutcomes(t *testing.T) {
	ctx := context.Background()
	messages := memory.NewInMemoryMessageRepository()
	require.NoError(t, messages.Create(ctx, &model.Message{
		ID:       "m1",
		OwnerID:  "owner-1",
		Summary:  "Newsletter about things",
		HTMLBody: `<a href="https://a.example/unsubscribe">Unsubscribe</a> <a href="https://b.example/optout">Opt out</a>`,
	}))

	mock := ai.NewMockClient()
	mock.GenerateTextFunc = func(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
		return "", errors.New("force pattern fallback")
	}
	executor := &stubExecutor{outcome: func(link model.UnsubscribeLink) *model.UnsubscribeOutcome {
		return &model.UnsubscribeOutcome{
			URL:     link.URL,
			Success: link.URL == "https://a.example/unsubscribe",
			Method:  "browser",
		}
	}}

	s := newUnsubscribeFixture(messages, mock, executor)
	reports, err := s.UnsubscribeMessages(ctx, []string{"m1"}, "owner-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	report := reports[0]
	assert.True(t, report.Success)
	assert.Equal(t, "processed 2 links, 1 successful", report.Summary)
	assert.Len(t, executor.calls, 2)

	// The stored summary is annotated after a successful run.
	stored, err := messages.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.Contains(t, stored.Summary, "Unsubscribed")
}

func TestUnsubscribeMessagesNoLinksIsFailure(t *testing.T) {
	ctx := context.Background()
	messages := memory.NewInMemoryMessageRepository()
	require.NoError(t, messages.Create(ctx, &model.Message{
		ID:            "m1",
		OwnerID:       "owner-1",
		HTMLBody:      "<p>just content</p>",
		CleanTextBody: "just content",
	}))

	mock := ai.NewMockClient()
	mock.GenerateTextFunc = func(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
		return "[]", nil
	}
	executor := &stubExecutor{}

	s := newUnsubscribeFixture(messages, mock, executor)
	reports, err := s.UnsubscribeMessages(ctx, []string{"m1"}, "owner-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.False(t, reports[0].Success)
	assert.Equal(t, "no unsubscribe links found", reports[0].Summary)
	assert.Empty(t, executor.calls)
}

func TestUnsubscribeMessagesWrongOwner(t *testing.T) {
	ctx := context.Background()
	messages := memory.NewInMemoryMessageRepository()
	require.NoError(t, messages.Create(ctx, &model.Message{ID: "m1", OwnerID: "someone-else"}))

	s := newUnsubscribeFixture(messages, ai.NewMockClient(), &stubExecutor{})
	reports, err := s.UnsubscribeMessages(ctx, []string{"m1"}, "owner-1")
	require.NoError(t, err)
	require.Len(t, reports, 1)

	assert.False(t, reports[0].Success)
	assert.Equal(t, "message not found", reports[0].Summary)
}
