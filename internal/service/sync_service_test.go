package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailpilot/internal/ai"
	"mailpilot/internal/enrich"
	"mailpilot/internal/gmail"
	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository/memory"
)

type syncFixture struct {
	accounts   *memory.InMemoryAccountRepository
	categories *memory.InMemoryCategoryRepository
	messages   *memory.InMemoryMessageRepository
	provider   *gmail.MockProvider
	aiClient   *ai.MockClient
	service    *syncService
	account    *model.MailAccount
}

func newSyncFixture(t *testing.T) *syncFixture {
	t.Helper()

	f := &syncFixture{
		accounts:   memory.NewInMemoryAccountRepository(),
		categories: memory.NewInMemoryCategoryRepository(),
		messages:   memory.NewInMemoryMessageRepository(),
		provider:   &gmail.MockProvider{},
		aiClient:   ai.NewMockClient(),
	}
	f.aiClient.GenerateTextFunc = func(ctx context.Context, prompt, model string, maxTokens int) (string, error) {
		return "", errors.New("model unavailable in tests")
	}

	log := logger.New()
	summarizer := enrich.NewSummarizer(f.aiClient, "m", log)
	categorizer := enrich.NewCategorizer(f.aiClient, "m", log)
	f.service = NewSyncService(
		f.accounts, f.categories, f.messages, f.provider,
		summarizer, categorizer, 24*time.Hour, log,
	).(*syncService)

	f.account = model.NewMailAccount("owner-1", "a@example.com", "token", "refresh")
	require.NoError(t, f.accounts.Create(context.Background(), f.account))
	return f
}

func TestSyncAccountImportsNewMessages(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.provider.ListMessageIDsFunc = func(ctx context.Context, account *model.MailAccount, since time.Time) ([]string, error) {
		return []string{"m1", "m2", "m3"}, nil
	}
	f.provider.GetMessageFunc = func(ctx context.Context, account *model.MailAccount, id string) (*model.InboundMessage, error) {
		return &model.InboundMessage{
			ID:         id,
			Subject:    "subject " + id,
			Sender:     "sender@example.com",
			CleanBody:  "body",
			ReceivedAt: time.Now(),
		}, nil
	}

	// m2 was imported on an earlier pass.
	require.NoError(t, f.messages.Create(ctx, &model.Message{
		ID: "m2", AccountID: f.account.ID, OwnerID: "owner-1",
	}))

	report, err := f.service.SyncAccount(ctx, f.account.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Processed)
	assert.Equal(t, 2, report.Imported)
	assert.Empty(t, report.Errors)

	stored, err := f.messages.FindByOwnerID(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, stored, 3)

	// Summarization failed, so the deterministic fallback is stored.
	msg, err := f.messages.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Email from sender@example.com: subject m1", msg.Summary)
	assert.Empty(t, msg.CategoryID)

	// Only freshly imported messages are archived upstream.
	assert.ElementsMatch(t, []string{"m1", "m3"}, f.provider.ArchivedIDs)

	// The cursor advanced.
	account, err := f.accounts.FindByID(ctx, f.account.ID)
	require.NoError(t, err)
	require.NotNil(t, account.LastSyncAt)
}

func TestSyncAccountListingFailureKeepsCursor(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.provider.ListMessageIDsFunc = func(ctx context.Context, account *model.MailAccount, since time.Time) ([]string, error) {
		return nil, errors.New("gmail unavailable")
	}

	report, err := f.service.SyncAccount(ctx, f.account.ID)
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 0, report.Processed)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "list", report.Errors[0].Stage)

	account, err := f.accounts.FindByID(ctx, f.account.ID)
	require.NoError(t, err)
	assert.Nil(t, account.LastSyncAt, "cursor must not advance when listing fails")
}

func TestSyncAccountFetchFailureIsRecorded(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	f.provider.ListMessageIDsFunc = func(ctx context.Context, account *model.MailAccount, since time.Time) ([]string, error) {
		return []string{"good", "bad"}, nil
	}
	f.provider.GetMessageFunc = func(ctx context.Context, account *model.MailAccount, id string) (*model.InboundMessage, error) {
		if id == "bad" {
			return nil, errors.New("message vanished")
		}
		return &model.InboundMessage{ID: id, Subject: "s", Sender: "f"}, nil
	}

	report, err := f.service.SyncAccount(ctx, f.account.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, 1, report.Imported)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "bad", report.Errors[0].MessageID)
	assert.Equal(t, "fetch", report.Errors[0].Stage)

	// One bad message does not stop the cursor.
	account, err := f.accounts.FindByID(ctx, f.account.ID)
	require.NoError(t, err)
	assert.NotNil(t, account.LastSyncAt)
}

func TestSyncWindowFirstPassUsesCreatedAt(t *testing.T) {
	f := newSyncFixture(t)

	since := f.service.syncWindow(f.account)
	assert.Equal(t, f.account.CreatedAt, since)
}

func TestSyncWindowBuffersCursor(t *testing.T) {
	f := newSyncFixture(t)

	cursor := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	f.account.LastSyncAt = &cursor

	since := f.service.syncWindow(f.account)
	assert.Equal(t, cursor.Add(-24*time.Hour), since)
}

func TestSyncOwnerContinuesPastFailingAccount(t *testing.T) {
	f := newSyncFixture(t)
	ctx := context.Background()

	second := model.NewMailAccount("owner-1", "b@example.com", "token", "refresh")
	require.NoError(t, f.accounts.Create(ctx, second))

	f.provider.ListMessageIDsFunc = func(ctx context.Context, account *model.MailAccount, since time.Time) ([]string, error) {
		if account.Email == "a@example.com" {
			return nil, errors.New("gmail unavailable")
		}
		return []string{"m1"}, nil
	}
	f.provider.GetMessageFunc = func(ctx context.Context, account *model.MailAccount, id string) (*model.InboundMessage, error) {
		return &model.InboundMessage{ID: id, Subject: "s", Sender: "f"}, nil
	}

	reports, err := f.service.SyncOwner(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	imported := 0
	for _, report := range reports {
		imported += report.Imported
	}
	assert.Equal(t, 1, imported)
}
