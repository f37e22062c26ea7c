package sse

import (
	"context"
	"time"

	"mailpilot/internal/logger"
	"mailpilot/internal/repository"
	"mailpilot/internal/service"
)

// SyncJob periodically syncs accounts whose owner is watching the inbox.
// Owners without a live SSE connection are skipped; their accounts catch up
// the next time they open the app and trigger a sync themselves.
type SyncJob struct {
	syncService service.SyncService
	accounts    repository.AccountRepository
	messages    repository.MessageRepository
	manager     *Manager
	interval    time.Duration
	logger      *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewSyncJob(
	syncService service.SyncService,
	accounts repository.AccountRepository,
	messages repository.MessageRepository,
	manager *Manager,
	interval time.Duration,
	logger *logger.Logger,
) *SyncJob {
	ctx, cancel := context.WithCancel(context.Background())
	return &SyncJob{
		syncService: syncService,
		accounts:    accounts,
		messages:    messages,
		manager:     manager,
		interval:    interval,
		logger:      logger,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start blocks, running a pass immediately and then on every tick until
// Stop is called. Run it on its own goroutine.
func (j *SyncJob) Start() {
	j.logger.Info("Starting background sync job, interval:", j.interval.String())

	j.RunOnce()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			j.RunOnce()
		case <-j.ctx.Done():
			j.logger.Info("Background sync job stopped")
			return
		}
	}
}

func (j *SyncJob) Stop() {
	j.cancel()
}

// RunOnce syncs every account with a watching owner and pushes each report
// out over SSE.
func (j *SyncJob) RunOnce() {
	accounts, err := j.accounts.FindAll(j.ctx)
	if err != nil {
		j.logger.Error("Failed to load accounts for background sync:", err)
		return
	}

	for _, account := range accounts {
		if !j.manager.HasConnection(account.OwnerID) {
			continue
		}

		passStart := time.Now()
		report, err := j.syncService.SyncAccount(j.ctx, account.ID)
		if err != nil {
			j.logger.Error("Background sync failed for account", account.Email, ":", err)
		}
		if report == nil {
			continue
		}

		if report.Imported > 0 {
			j.pushImported(account.ID, account.OwnerID, passStart)
		}
		j.manager.BroadcastSyncReport(account.OwnerID, report)
	}
}

// pushImported streams the messages this pass brought in, identified by
// their creation time.
func (j *SyncJob) pushImported(accountID, ownerID string, since time.Time) {
	stored, err := j.messages.FindByAccountID(j.ctx, accountID)
	if err != nil {
		j.logger.Warn("Failed to load messages for SSE push:", err)
		return
	}
	for _, msg := range stored {
		if msg.CreatedAt.Before(since) {
			continue
		}
		j.manager.BroadcastMessage(ownerID, msg)
	}
}
