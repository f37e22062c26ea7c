package repository

import (
	"context"
	"errors"

	"mailpilot/internal/model"
)

// ErrNotFound is returned by all Find* methods when no row matches.
var ErrNotFound = errors.New("not found")

// AccountRepository defines the interface for mail account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *model.MailAccount) error
	FindByID(ctx context.Context, id string) (*model.MailAccount, error)
	FindByEmail(ctx context.Context, email string) (*model.MailAccount, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]*model.MailAccount, error)
	FindAll(ctx context.Context) ([]*model.MailAccount, error)
	Update(ctx context.Context, account *model.MailAccount) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]*model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

// MessageRepository defines the interface for ingested message data
// operations. Message ids are provider message ids; Exists is the dedup
// check the ingestion pipeline relies on.
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	Exists(ctx context.Context, id string) (bool, error)
	FindByID(ctx context.Context, id string) (*model.Message, error)
	FindByAccountID(ctx context.Context, accountID string) ([]*model.Message, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]*model.Message, error)
	FindByCategoryID(ctx context.Context, categoryID string) ([]*model.Message, error)
	UpdateCategory(ctx context.Context, id, categoryID string) error
	Update(ctx context.Context, message *model.Message) error
	Delete(ctx context.Context, id string) error
}
