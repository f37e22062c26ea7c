package service

import (
	"context"
	"fmt"
	"time"

	"mailpilot/internal/enrich"
	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository"
)

type syncService struct {
	accounts    repository.AccountRepository
	categories  repository.CategoryRepository
	messages    repository.MessageRepository
	provider    MailProvider
	summarizer  *enrich.Summarizer
	categorizer *enrich.Categorizer
	buffer      time.Duration
	logger      *logger.Logger
	now         func() time.Time
}

func NewSyncService(
	accounts repository.AccountRepository,
	categories repository.CategoryRepository,
	messages repository.MessageRepository,
	provider MailProvider,
	summarizer *enrich.Summarizer,
	categorizer *enrich.Categorizer,
	buffer time.Duration,
	logger *logger.Logger,
) SyncService {
	return &syncService{
		accounts:    accounts,
		categories:  categories,
		messages:    messages,
		provider:    provider,
		summarizer:  summarizer,
		categorizer: categorizer,
		buffer:      buffer,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *syncService) SyncAccount(ctx context.Context, accountID string) (*model.SyncReport, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account %s: %w", accountID, err)
	}
	return s.syncAccount(ctx, account)
}

// SyncOwner runs one sync pass per connected account, in order. A failing
// account yields a partial report and does not stop the remaining accounts.
func (s *syncService) SyncOwner(ctx context.Context, ownerID string) ([]*model.SyncReport, error) {
	accounts, err := s.accounts.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	reports := make([]*model.SyncReport, 0, len(accounts))
	for _, account := range accounts {
		report, err := s.syncAccount(ctx, account)
		if err != nil {
			s.logger.Error("Sync failed for account", account.Email, ":", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (s *syncService) syncAccount(ctx context.Context, account *model.MailAccount) (*model.SyncReport, error) {
	report := &model.SyncReport{AccountID: account.ID}

	since := s.syncWindow(account)
	ids, err := s.provider.ListMessageIDs(ctx, account, since)
	if err != nil {
		// A listing failure aborts the pass before the cursor moves, so
		// the same window is retried in full next time.
		report.AddError("", "list", err)
		return report, fmt.Errorf("failed to list messages: %w", err)
	}

	candidates, err := s.categories.FindByOwnerID(ctx, account.OwnerID)
	if err != nil {
		s.logger.Warn("Failed to load categories, messages will be uncategorized:", err)
		report.AddError("", "categories", err)
		candidates = nil
	}

	for _, id := range ids {
		report.Processed++

		exists, err := s.messages.Exists(ctx, id)
		if err != nil {
			report.AddError(id, "dedup", err)
			continue
		}
		if exists {
			continue
		}

		inbound, err := s.provider.GetMessage(ctx, account, id)
		if err != nil {
			s.logger.Warn("Skipping message", id, ":", err)
			report.AddError(id, "fetch", err)
			continue
		}

		summary := s.summarizer.Summarize(ctx, inbound.Subject, inbound.Sender, inbound.CleanBody)
		categoryID := s.categorizer.Categorize(ctx, inbound.Subject, inbound.Sender, inbound.CleanBody, candidates)

		now := s.now()
		msg := &model.Message{
			ID:            inbound.ID,
			AccountID:     account.ID,
			OwnerID:       account.OwnerID,
			CategoryID:    categoryID,
			ThreadID:      inbound.ThreadID,
			Subject:       inbound.Subject,
			Sender:        inbound.Sender,
			Snippet:       inbound.Snippet,
			HTMLBody:      inbound.HTMLBody,
			CleanTextBody: inbound.CleanBody,
			Summary:       summary,
			ReceivedAt:    inbound.ReceivedAt,
			IsRead:        inbound.IsRead,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.messages.Create(ctx, msg); err != nil {
			report.AddError(id, "persist", err)
			continue
		}
		report.Imported++

		// Best effort: the message is already durably stored, a failed
		// archive just leaves it sitting in the upstream inbox.
		if err := s.provider.Archive(ctx, account, id); err != nil {
			s.logger.Warn("Failed to archive message", id, ":", err)
		}
	}

	// The cursor advances whenever listing succeeded, even if individual
	// messages failed; those ids stay inside the buffered window and are
	// retried on the next pass.
	syncedAt := s.now()
	account.LastSyncAt = &syncedAt
	account.UpdatedAt = syncedAt
	if err := s.accounts.Update(ctx, account); err != nil {
		report.AddError("", "cursor", err)
	}

	s.logger.Infof("Synced %s: processed=%d imported=%d errors=%d",
		account.Email, report.Processed, report.Imported, len(report.Errors))
	return report, nil
}

// syncWindow widens the incremental window by the configured buffer so
// messages that arrived while the previous pass ran are not lost to the
// day-granular search operator. First-time accounts start at creation time.
func (s *syncService) syncWindow(account *model.MailAccount) time.Time {
	if account.LastSyncAt != nil {
		return account.LastSyncAt.Add(-s.buffer)
	}
	return account.CreatedAt
}
