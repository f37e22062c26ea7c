package gmail

import (
	"context"
	"time"

	"mailpilot/internal/model"
)

// MockProvider is a function-field test double for the mail backend.
type MockProvider struct {
	ListMessageIDsFunc func(ctx context.Context, account *model.MailAccount, since time.Time) ([]string, error)
	GetMessageFunc     func(ctx context.Context, account *model.MailAccount, id string) (*model.InboundMessage, error)
	ArchiveFunc        func(ctx context.Context, account *model.MailAccount, id string) error
	MarkAsReadFunc     func(ctx context.Context, account *model.MailAccount, id string) error
	DeleteFunc         func(ctx context.Context, account *model.MailAccount, ids []string) error

	ArchivedIDs []string
}

func (m *MockProvider) ListMessageIDs(ctx context.Context, account *model.MailAccount, since time.Time) ([]string, error) {
	if m.ListMessageIDsFunc != nil {
		return m.ListMessageIDsFunc(ctx, account, since)
	}
	return nil, nil
}

func (m *MockProvider) GetMessage(ctx context.Context, account *model.MailAccount, id string) (*model.InboundMessage, error) {
	if m.GetMessageFunc != nil {
		return m.GetMessageFunc(ctx, account, id)
	}
	return &model.InboundMessage{ID: id}, nil
}

func (m *MockProvider) Archive(ctx context.Context, account *model.MailAccount, id string) error {
	m.ArchivedIDs = append(m.ArchivedIDs, id)
	if m.ArchiveFunc != nil {
		return m.ArchiveFunc(ctx, account, id)
	}
	return nil
}

func (m *MockProvider) MarkAsRead(ctx context.Context, account *model.MailAccount, id string) error {
	if m.MarkAsReadFunc != nil {
		return m.MarkAsReadFunc(ctx, account, id)
	}
	return nil
}

func (m *MockProvider) Delete(ctx context.Context, account *model.MailAccount, ids []string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, account, ids)
	}
	return nil
}
