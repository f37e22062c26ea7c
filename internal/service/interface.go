package service

import (
	"context"
	"time"

	"mailpilot/internal/model"
)

// MailProvider is the mail backend the sync pipeline runs against. The
// gmail package provides the production implementation.
type MailProvider interface {
	ListMessageIDs(ctx context.Context, account *model.MailAccount, since time.Time) ([]string, error)
	GetMessage(ctx context.Context, account *model.MailAccount, id string) (*model.InboundMessage, error)
	Archive(ctx context.Context, account *model.MailAccount, id string) error
	MarkAsRead(ctx context.Context, account *model.MailAccount, id string) error
	Delete(ctx context.Context, account *model.MailAccount, ids []string) error
}

// AccountService manages connected mail accounts.
type AccountService interface {
	ConnectAccount(ctx context.Context, ownerID, email, accessToken, refreshToken string) (*model.MailAccount, error)
	GetAccounts(ctx context.Context, ownerID string) ([]*model.MailAccount, error)
	DisconnectAccount(ctx context.Context, accountID, ownerID string) error
}

// CategoryService manages an owner's categories.
type CategoryService interface {
	CreateCategory(ctx context.Context, ownerID, name, description, color string) (*model.Category, error)
	GetCategories(ctx context.Context, ownerID string) ([]*model.Category, error)
	UpdateCategory(ctx context.Context, categoryID, ownerID, name, description, color string) (*model.Category, error)
	DeleteCategory(ctx context.Context, categoryID, ownerID string) error
}

// MessageService reads and mutates stored messages.
type MessageService interface {
	GetMessages(ctx context.Context, ownerID string) ([]*model.Message, error)
	GetMessagesByAccount(ctx context.Context, accountID, ownerID string) ([]*model.Message, error)
	GetMessagesByCategory(ctx context.Context, categoryID, ownerID string) ([]*model.Message, error)
	GetMessage(ctx context.Context, messageID, ownerID string) (*model.Message, error)
	AssignCategory(ctx context.Context, messageID, categoryID, ownerID string) error
	MarkRead(ctx context.Context, messageIDs []string, ownerID string) error
	DeleteMessages(ctx context.Context, messageIDs []string, ownerID string) error
}

// SyncService pulls new mail into the store.
type SyncService interface {
	SyncAccount(ctx context.Context, accountID string) (*model.SyncReport, error)
	SyncOwner(ctx context.Context, ownerID string) ([]*model.SyncReport, error)
}

// UnsubscribeService runs the unsubscribe agent over stored messages.
type UnsubscribeService interface {
	UnsubscribeMessages(ctx context.Context, messageIDs []string, ownerID string) ([]*model.UnsubscribeReport, error)
}

// UnsubscribeExecutor carries out a single unsubscribe attempt against one
// link. It reports an outcome rather than an error: every failure mode is a
// described, unsuccessful outcome.
type UnsubscribeExecutor interface {
	Execute(ctx context.Context, link model.UnsubscribeLink) *model.UnsubscribeOutcome
}
