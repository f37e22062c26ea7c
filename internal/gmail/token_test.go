package gmail

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailpilot/internal/logger"
	"mailpilot/internal/model"
	"mailpilot/internal/repository/memory"
)

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return parsed
}

func newTestTransport(t *testing.T, account *model.MailAccount, tokenURL string) (*refreshingTransport, *memory.InMemoryAccountRepository) {
	t.Helper()
	accounts := memory.NewInMemoryAccountRepository()
	require.NoError(t, accounts.Create(context.Background(), account))

	transport := newRefreshingTransport(account, accounts, "client-id", "client-secret", logger.New())
	transport.tokenURL = tokenURL
	return transport, accounts
}

func TestRoundTripRefreshesOn401(t *testing.T) {
	refreshCalls := 0
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "refresh-1", r.Form.Get("refresh_token"))
		assert.Equal(t, "client-id", r.Form.Get("client_id"))
		fmt.Fprint(w, `{"access_token":"fresh-token"}`)
	}))
	defer tokenServer.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer api.Close()

	account := model.NewMailAccount("owner-1", "a@example.com", "stale-token", "refresh-1")
	transport, accounts := newTestTransport(t, account, tokenServer.URL)

	client := &http.Client{Transport: transport}
	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, refreshCalls)

	// The new token must have been persisted.
	stored, err := accounts.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", stored.AccessToken)
}

func TestRoundTripRefreshFailureKeeps401(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer tokenServer.Close()

	apiCalls := 0
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiCalls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	account := model.NewMailAccount("owner-1", "a@example.com", "stale-token", "refresh-1")
	transport, accounts := newTestTransport(t, account, tokenServer.URL)

	client := &http.Client{Transport: transport}
	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	// The original 401 comes back and the request is not retried.
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 1, apiCalls)

	stored, err := accounts.FindByID(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, "stale-token", stored.AccessToken)
}

func TestRoundTripNoRefreshTokenSkipsRefresh(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer api.Close()

	account := model.NewMailAccount("owner-1", "a@example.com", "stale-token", "")
	transport, _ := newTestTransport(t, account, "http://invalid.invalid/token")

	client := &http.Client{Transport: transport}
	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoundTripPassesThroughNon401(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer stale-token", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusForbidden)
	}))
	defer api.Close()

	account := model.NewMailAccount("owner-1", "a@example.com", "stale-token", "refresh-1")
	transport, _ := newTestTransport(t, account, "http://invalid.invalid/token")

	client := &http.Client{Transport: transport}
	resp, err := client.Get(api.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
