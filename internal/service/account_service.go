package service

import (
	"context"
	"errors"
	"fmt"

	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository"
)

// ErrForbidden is returned when a caller touches a resource owned by
// someone else.
var ErrForbidden = errors.New("resource belongs to another owner")

// CategorySeed is a default category granted to first-time owners.
type CategorySeed struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

type accountService struct {
	accounts   repository.AccountRepository
	categories repository.CategoryRepository
	messages   repository.MessageRepository
	defaults   []CategorySeed
	logger     *logger.Logger
}

func NewAccountService(
	accounts repository.AccountRepository,
	categories repository.CategoryRepository,
	messages repository.MessageRepository,
	defaults []CategorySeed,
	logger *logger.Logger,
) AccountService {
	return &accountService{
		accounts:   accounts,
		categories: categories,
		messages:   messages,
		defaults:   defaults,
		logger:     logger,
	}
}

// ConnectAccount stores a freshly authorized mailbox. Reconnecting an
// address the owner already linked refreshes its tokens in place; an
// address linked by a different owner is rejected.
func (s *accountService) ConnectAccount(ctx context.Context, ownerID, email, accessToken, refreshToken string) (*model.MailAccount, error) {
	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if existing != nil {
		if existing.OwnerID != ownerID {
			return nil, ErrForbidden
		}
		existing.AccessToken = accessToken
		if refreshToken != "" {
			existing.RefreshToken = refreshToken
		}
		if err := s.accounts.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("failed to update account tokens: %w", err)
		}
		s.logger.Info("Reconnected account", email)
		return existing, nil
	}

	account := model.NewMailAccount(ownerID, email, accessToken, refreshToken)
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	s.logger.Info("Connected account", email)

	s.seedDefaultCategories(ctx, ownerID)
	return account, nil
}

// seedDefaultCategories grants the starter categories to owners who have
// none yet. Seeding is best effort; sync simply runs uncategorized until
// the owner creates categories by hand.
func (s *accountService) seedDefaultCategories(ctx context.Context, ownerID string) {
	existing, err := s.categories.FindByOwnerID(ctx, ownerID)
	if err != nil || len(existing) > 0 {
		return
	}
	for _, seed := range s.defaults {
		category := model.NewCategory(ownerID, seed.Name, seed.Description, seed.Color)
		if err := s.categories.Create(ctx, category); err != nil {
			s.logger.Warn("Failed to seed category", seed.Name, ":", err)
		}
	}
	if len(s.defaults) > 0 {
		s.logger.Info("Seeded", len(s.defaults), "default categories for owner", ownerID)
	}
}

func (s *accountService) GetAccounts(ctx context.Context, ownerID string) ([]*model.MailAccount, error) {
	accounts, err := s.accounts.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

// DisconnectAccount removes the account and every message imported from it.
func (s *accountService) DisconnectAccount(ctx context.Context, accountID, ownerID string) error {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account.OwnerID != ownerID {
		return ErrForbidden
	}

	messages, err := s.messages.FindByAccountID(ctx, accountID)
	if err == nil {
		for _, msg := range messages {
			if err := s.messages.Delete(ctx, msg.ID); err != nil {
				s.logger.Warn("Failed to delete message", msg.ID, ":", err)
			}
		}
	}

	if err := s.accounts.Delete(ctx, accountID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	s.logger.Info("Disconnected account", account.Email)
	return nil
}
