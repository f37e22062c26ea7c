package gmail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"mailpilot/internal/config"
	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository"
)

const gmailUser = "me"

// Provider talks to the Gmail API on behalf of a connected account. Every
// call builds a per-account service whose transport refreshes expired
// tokens transparently.
type Provider struct {
	accounts     repository.AccountRepository
	clientID     string
	clientSecret string
	pageSize     int64
	maxMessages  int
	logger       *logger.Logger

	// endpoint overrides the Gmail API base URL in tests.
	endpoint string
}

func NewProvider(accounts repository.AccountRepository, cfg *config.Config, logger *logger.Logger) *Provider {
	return &Provider{
		accounts:     accounts,
		clientID:     cfg.GoogleClientID,
		clientSecret: cfg.GoogleClientSecret,
		pageSize:     cfg.SyncPageSize,
		maxMessages:  cfg.MaxSyncMessages,
		logger:       logger,
	}
}

func (p *Provider) serviceFor(ctx context.Context, account *model.MailAccount) (*gmail.Service, error) {
	transport := newRefreshingTransport(account, p.accounts, p.clientID, p.clientSecret, p.logger)
	opts := []option.ClientOption{option.WithHTTPClient(&http.Client{Transport: transport})}
	if p.endpoint != "" {
		opts = append(opts, option.WithEndpoint(p.endpoint))
	}
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return svc, nil
}

// BuildQuery is the inbox search used by every sync pass: received mail
// only, on or after the given day. Gmail's after: operator has day
// granularity, which is why callers widen the window instead of trusting
// an exact cutoff.
func BuildQuery(since time.Time) string {
	return fmt.Sprintf("in:inbox -in:sent after:%s", since.Format("2006/01/02"))
}

// ListMessageIDs returns inbox message ids received since the given time,
// newest first, paginating until the provider runs out or the per-pass
// ceiling is reached.
func (p *Provider) ListMessageIDs(ctx context.Context, account *model.MailAccount, since time.Time) ([]string, error) {
	svc, err := p.serviceFor(ctx, account)
	if err != nil {
		return nil, err
	}

	query := BuildQuery(since)
	var ids []string
	pageToken := ""
	for {
		call := svc.Users.Messages.List(gmailUser).Q(query).MaxResults(p.pageSize).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list messages: %w", err)
		}
		for _, ref := range list.Messages {
			ids = append(ids, ref.Id)
		}
		pageToken = list.NextPageToken
		if pageToken == "" || len(ids) >= p.maxMessages {
			break
		}
	}
	if len(ids) > p.maxMessages {
		ids = ids[:p.maxMessages]
	}

	p.logger.Debugf("Listed %d messages for %s with query %q", len(ids), account.Email, query)
	return ids, nil
}

// GetMessage fetches one message in full and decodes it into the
// provider-neutral inbound form.
func (p *Provider) GetMessage(ctx context.Context, account *model.MailAccount, id string) (*model.InboundMessage, error) {
	svc, err := p.serviceFor(ctx, account)
	if err != nil {
		return nil, err
	}

	msg, err := svc.Users.Messages.Get(gmailUser, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	var subject, sender string
	if msg.Payload != nil {
		for _, header := range msg.Payload.Headers {
			switch header.Name {
			case "Subject":
				subject = header.Value
			case "From":
				sender = header.Value
			}
		}
	}

	htmlBody, cleanBody := ExtractBody(msg.Payload)

	isRead := true
	for _, label := range msg.LabelIds {
		if label == "UNREAD" {
			isRead = false
			break
		}
	}

	return &model.InboundMessage{
		ID:         msg.Id,
		ThreadID:   msg.ThreadId,
		Subject:    subject,
		Sender:     sender,
		Snippet:    msg.Snippet,
		HTMLBody:   htmlBody,
		CleanBody:  cleanBody,
		ReceivedAt: time.UnixMilli(msg.InternalDate),
		IsRead:     isRead,
	}, nil
}

// Archive takes the message out of the inbox and clears its unread flag.
func (p *Provider) Archive(ctx context.Context, account *model.MailAccount, id string) error {
	svc, err := p.serviceFor(ctx, account)
	if err != nil {
		return err
	}
	_, err = svc.Users.Messages.Modify(gmailUser, id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"INBOX", "UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to archive message %s: %w", id, err)
	}
	return nil
}

// MarkAsRead clears the unread flag upstream.
func (p *Provider) MarkAsRead(ctx context.Context, account *model.MailAccount, id string) error {
	svc, err := p.serviceFor(ctx, account)
	if err != nil {
		return err
	}
	_, err = svc.Users.Messages.Modify(gmailUser, id, &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to mark message %s as read: %w", id, err)
	}
	return nil
}

// Delete moves the given messages to the trash. Failures on individual
// messages are logged and skipped so one bad id does not block the batch.
func (p *Provider) Delete(ctx context.Context, account *model.MailAccount, ids []string) error {
	svc, err := p.serviceFor(ctx, account)
	if err != nil {
		return err
	}
	var firstErr error
	for _, id := range ids {
		if _, err := svc.Users.Messages.Trash(gmailUser, id).Context(ctx).Do(); err != nil {
			p.logger.Warn("Failed to trash message", id, ":", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("failed to trash message %s: %w", id, err)
			}
		}
	}
	return firstErr
}
