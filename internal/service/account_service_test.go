package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository/memory"
)

func newAccountFixture() (AccountService, *memory.InMemoryAccountRepository, *memory.InMemoryCategoryRepository, *memory.InMemoryMessageRepository) {
	accounts := memory.NewInMemoryAccountRepository()
	categories := memory.NewInMemoryCategoryRepository()
	messages := memory.NewInMemoryMessageRepository()
	seeds := []CategorySeed{
		{Name: "Work", Description: "job related", Color: "#2563eb"},
		{Name: "Newsletters", Description: "digests", Color: "#9333ea"},
	}
	svc := NewAccountService(accounts, categories, messages, seeds, logger.New())
	return svc, accounts, categories, messages
}

func TestConnectAccountSeedsDefaultCategories(t *testing.T) {
	svc, _, categories, _ := newAccountFixture()
	ctx := context.Background()

	account, err := svc.ConnectAccount(ctx, "owner-1", "a@example.com", "access", "refresh")
	require.NoError(t, err)
	assert.Equal(t, "owner-1", account.OwnerID)

	seeded, err := categories.FindByOwnerID(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, seeded, 2)

	// A second account for the same owner does not seed again.
	_, err = svc.ConnectAccount(ctx, "owner-1", "b@example.com", "access", "refresh")
	require.NoError(t, err)
	seeded, err = categories.FindByOwnerID(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, seeded, 2)
}

func TestConnectAccountReconnectRotatesTokens(t *testing.T) {
	svc, accounts, _, _ := newAccountFixture()
	ctx := context.Background()

	first, err := svc.ConnectAccount(ctx, "owner-1", "a@example.com", "access-1", "refresh-1")
	require.NoError(t, err)

	second, err := svc.ConnectAccount(ctx, "owner-1", "a@example.com", "access-2", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	stored, err := accounts.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "access-2", stored.AccessToken)
	// An empty refresh token on reconnect keeps the original one.
	assert.Equal(t, "refresh-1", stored.RefreshToken)
}

func TestConnectAccountRejectsForeignEmail(t *testing.T) {
	svc, _, _, _ := newAccountFixture()
	ctx := context.Background()

	_, err := svc.ConnectAccount(ctx, "owner-1", "a@example.com", "access", "refresh")
	require.NoError(t, err)

	_, err = svc.ConnectAccount(ctx, "owner-2", "a@example.com", "access", "refresh")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDisconnectAccountRemovesMessages(t *testing.T) {
	svc, accounts, _, messages := newAccountFixture()
	ctx := context.Background()

	account, err := svc.ConnectAccount(ctx, "owner-1", "a@example.com", "access", "refresh")
	require.NoError(t, err)
	require.NoError(t, messages.Create(ctx, &model.Message{ID: "m1", AccountID: account.ID, OwnerID: "owner-1"}))

	require.NoError(t, svc.DisconnectAccount(ctx, account.ID, "owner-1"))

	_, err = accounts.FindByID(ctx, account.ID)
	assert.Error(t, err)
	remaining, err := messages.FindByAccountID(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestDisconnectAccountWrongOwner(t *testing.T) {
	svc, _, _, _ := newAccountFixture()
	ctx := context.Background()

	account, err := svc.ConnectAccount(ctx, "owner-1", "a@example.com", "access", "refresh")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DisconnectAccount(ctx, account.ID, "owner-2"), ErrForbidden)
}
