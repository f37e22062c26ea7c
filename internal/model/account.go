package model

import (
	"time"

	"github.com/google/uuid"
)

// MailAccount is a connected Gmail account. The access/refresh token pair is
// mutable: it is rewritten in place whenever a refresh succeeds. LastSyncAt is
// the sync cursor; nil means the account has never completed a sync pass.
type MailAccount struct {
	ID           string     `json:"id"`
	OwnerID      string     `json:"owner_id"`
	Email        string     `json:"email"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	LastSyncAt   *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func NewMailAccount(ownerID, email, accessToken, refreshToken string) *MailAccount {
	now := time.Now()
	return &MailAccount{
		ID:           uuid.New().String(),
		OwnerID:      ownerID,
		Email:        email,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
