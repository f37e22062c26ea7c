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

func newCategoryFixture() (CategoryService, *memory.InMemoryCategoryRepository, *memory.InMemoryMessageRepository) {
	categories := memory.NewInMemoryCategoryRepository()
	messages := memory.NewInMemoryMessageRepository()
	return NewCategoryService(categories, messages, logger.New()), categories, messages
}

func TestCreateCategoryRejectsDuplicateName(t *testing.T) {
	svc, _, _ := newCategoryFixture()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, "owner-1", "Work", "job mail", "#fff")
	require.NoError(t, err)

	_, err = svc.CreateCategory(ctx, "owner-1", "work", "other", "#000")
	assert.Error(t, err)

	// Same name under a different owner is fine.
	_, err = svc.CreateCategory(ctx, "owner-2", "Work", "job mail", "#fff")
	assert.NoError(t, err)
}

func TestCreateCategoryRequiresName(t *testing.T) {
	svc, _, _ := newCategoryFixture()
	_, err := svc.CreateCategory(context.Background(), "owner-1", "   ", "d", "#fff")
	assert.Error(t, err)
}

func TestDeleteCategoryDetachesMessages(t *testing.T) {
	svc, _, messages := newCategoryFixture()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "owner-1", "Work", "job mail", "#fff")
	require.NoError(t, err)
	require.NoError(t, messages.Create(ctx, &model.Message{
		ID: "m1", OwnerID: "owner-1", CategoryID: category.ID,
	}))

	require.NoError(t, svc.DeleteCategory(ctx, category.ID, "owner-1"))

	msg, err := messages.FindByID(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, msg.CategoryID, "messages fall back to uncategorized")
}

func TestUpdateCategoryWrongOwner(t *testing.T) {
	svc, _, _ := newCategoryFixture()
	ctx := context.Background()

	category, err := svc.CreateCategory(ctx, "owner-1", "Work", "job mail", "#fff")
	require.NoError(t, err)

	_, err = svc.UpdateCategory(ctx, category.ID, "owner-2", "Hacked", "", "")
	assert.ErrorIs(t, err, ErrForbidden)
}
