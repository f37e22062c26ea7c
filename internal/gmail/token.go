package gmail

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2/google"

	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository"
)

// refreshingTransport authorizes every outgoing request with the account's
// access token. When the provider answers 401 and a refresh token is on
// file, it exchanges the refresh token at the token endpoint, persists the
// new access token through the account repository, and retries the original
// request exactly once. A failed refresh returns the original 401 unchanged;
// the caller decides what an unauthorized pass means.
type refreshingTransport struct {
	base         http.RoundTripper
	account      *model.MailAccount
	accounts     repository.AccountRepository
	clientID     string
	clientSecret string
	tokenURL     string
	logger       *logger.Logger
}

func newRefreshingTransport(
	account *model.MailAccount,
	accounts repository.AccountRepository,
	clientID, clientSecret string,
	logger *logger.Logger,
) *refreshingTransport {
	return &refreshingTransport{
		base:         http.DefaultTransport,
		account:      account,
		accounts:     accounts,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     google.Endpoint.TokenURL,
		logger:       logger,
	}
}

func (t *refreshingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.send(req, t.account.AccessToken)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || t.account.RefreshToken == "" {
		return resp, nil
	}
	if req.Body != nil && req.GetBody == nil {
		// The body cannot be replayed, so a retry is impossible.
		return resp, nil
	}

	newToken, refreshErr := t.refresh(req)
	if refreshErr != nil {
		t.logger.Warn("Token refresh failed for account", t.account.Email, ":", refreshErr)
		return resp, nil
	}
	resp.Body.Close()

	t.account.AccessToken = newToken
	if err := t.accounts.Update(req.Context(), t.account); err != nil {
		t.logger.Error("Failed to persist refreshed token for account", t.account.Email, ":", err)
	}

	return t.send(req, newToken)
}

func (t *refreshingTransport) send(req *http.Request, token string) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if req.Body != nil && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		clone.Body = body
	}
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(clone)
}

func (t *refreshingTransport) refresh(orig *http.Request) (string, error) {
	form := url.Values{
		"client_id":     {t.clientID},
		"client_secret": {t.clientSecret},
		"refresh_token": {t.account.RefreshToken},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(orig.Context(), "POST", t.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response missing access_token")
	}

	return payload.AccessToken, nil
}
