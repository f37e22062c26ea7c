package service

import (
	"context"
	"fmt"

	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository"
)

type messageService struct {
	messages   repository.MessageRepository
	accounts   repository.AccountRepository
	categories repository.CategoryRepository
	provider   MailProvider
	logger     *logger.Logger
}

func NewMessageService(
	messages repository.MessageRepository,
	accounts repository.AccountRepository,
	categories repository.CategoryRepository,
	provider MailProvider,
	logger *logger.Logger,
) MessageService {
	return &messageService{
		messages:   messages,
		accounts:   accounts,
		categories: categories,
		provider:   provider,
		logger:     logger,
	}
}

func (s *messageService) GetMessages(ctx context.Context, ownerID string) ([]*model.Message, error) {
	messages, err := s.messages.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

func (s *messageService) GetMessagesByAccount(ctx context.Context, accountID, ownerID string) ([]*model.Message, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	messages, err := s.messages.FindByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

func (s *messageService) GetMessagesByCategory(ctx context.Context, categoryID, ownerID string) ([]*model.Message, error) {
	category, err := s.categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	messages, err := s.messages.FindByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return messages, nil
}

func (s *messageService) GetMessage(ctx context.Context, messageID, ownerID string) (*model.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to load message: %w", err)
	}
	if msg.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return msg, nil
}

// AssignCategory refiles a message. An empty category id clears the filing;
// a non-empty id must belong to the same owner.
func (s *messageService) AssignCategory(ctx context.Context, messageID, categoryID, ownerID string) error {
	msg, err := s.GetMessage(ctx, messageID, ownerID)
	if err != nil {
		return err
	}

	if categoryID != "" {
		category, err := s.categories.FindByID(ctx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to load category: %w", err)
		}
		if category.OwnerID != ownerID {
			return ErrForbidden
		}
	}

	if err := s.messages.UpdateCategory(ctx, msg.ID, categoryID); err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// MarkRead flips the stored read flag and clears the unread label upstream.
// Upstream failures are logged, not fatal: the local store is the source of
// truth for the reading view.
func (s *messageService) MarkRead(ctx context.Context, messageIDs []string, ownerID string) error {
	for _, messageID := range messageIDs {
		msg, err := s.GetMessage(ctx, messageID, ownerID)
		if err != nil {
			return err
		}
		if msg.IsRead {
			continue
		}

		msg.IsRead = true
		if err := s.messages.Update(ctx, msg); err != nil {
			return fmt.Errorf("failed to mark message %s read: %w", messageID, err)
		}

		if account, err := s.accounts.FindByID(ctx, msg.AccountID); err == nil {
			if err := s.provider.MarkAsRead(ctx, account, msg.ID); err != nil {
				s.logger.Warn("Failed to mark message read upstream:", err)
			}
		}
	}
	return nil
}

// DeleteMessages removes the stored copies and trashes the originals
// upstream, grouped per account so each account's backend is hit once.
func (s *messageService) DeleteMessages(ctx context.Context, messageIDs []string, ownerID string) error {
	byAccount := make(map[string][]string)
	for _, messageID := range messageIDs {
		msg, err := s.GetMessage(ctx, messageID, ownerID)
		if err != nil {
			return err
		}
		if err := s.messages.Delete(ctx, msg.ID); err != nil {
			return fmt.Errorf("failed to delete message %s: %w", messageID, err)
		}
		byAccount[msg.AccountID] = append(byAccount[msg.AccountID], msg.ID)
	}

	for accountID, ids := range byAccount {
		account, err := s.accounts.FindByID(ctx, accountID)
		if err != nil {
			s.logger.Warn("Skipping upstream trash, account missing:", err)
			continue
		}
		if err := s.provider.Delete(ctx, account, ids); err != nil {
			s.logger.Warn("Failed to trash messages upstream for", account.Email, ":", err)
		}
	}
	return nil
}
