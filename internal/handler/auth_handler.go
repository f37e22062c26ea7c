package handler

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"

	"mailpilot/internal/config"
	"mailpilot/internal/logger"
	"mailpilot/internal/service"
)

const (
	sessionName   = "mailpilot_session"
	sessionOwner  = "owner_id"
	ownerContext  = "owner_id"
	gmailReadonly = "https://www.googleapis.com/auth/gmail.readonly"
	gmailModify   = "https://www.googleapis.com/auth/gmail.modify"
)

// AuthHandler runs the Google OAuth flow and owns the session. A completed
// callback both identifies the owner and connects the authorized mailbox.
type AuthHandler struct {
	accountService service.AccountService
	config         *config.Config
	logger         *logger.Logger
}

func NewAuthHandler(accountService service.AccountService, cfg *config.Config, logger *logger.Logger) *AuthHandler {
	gothic.Store = sessions.NewCookieStore([]byte(cfg.SessionSecret))

	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.BaseURL+"/auth/google/callback",
			gmailReadonly,
			gmailModify,
			"https://www.googleapis.com/auth/userinfo.email",
		),
	)

	return &AuthHandler{
		accountService: accountService,
		config:         cfg,
		logger:         logger,
	}
}

// BeginAuth starts the OAuth flow for the given provider.
func (h *AuthHandler) BeginAuth(c echo.Context) error {
	if c.Param("provider") != "google" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unsupported provider"})
	}

	req := withProvider(c)
	gothic.BeginAuthHandler(c.Response(), req)
	return nil
}

// Callback completes the OAuth exchange, connects the mailbox, and stores
// the owner id in the session.
func (h *AuthHandler) Callback(c echo.Context) error {
	req := withProvider(c)

	googleUser, err := gothic.CompleteUserAuth(c.Response(), req)
	if err != nil {
		h.logger.Error("Failed to complete auth:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "authentication failed"})
	}

	ownerID := googleUser.Provider + "_" + googleUser.UserID
	account, err := h.accountService.ConnectAccount(
		c.Request().Context(),
		ownerID,
		googleUser.Email,
		googleUser.AccessToken,
		googleUser.RefreshToken,
	)
	if err != nil {
		h.logger.Error("Failed to connect account:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to connect account"})
	}

	session, _ := gothic.Store.Get(req, sessionName)
	session.Values[sessionOwner] = ownerID
	if err := session.Save(req, c.Response()); err != nil {
		h.logger.Error("Failed to save session:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save session"})
	}

	h.logger.Info("Connected", account.Email, "for owner", ownerID)
	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// Logout clears the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	req := withProvider(c)
	if err := gothic.Logout(c.Response(), req); err != nil {
		h.logger.Warn("Gothic logout failed:", err)
	}

	session, _ := gothic.Store.Get(req, sessionName)
	session.Options.MaxAge = -1
	delete(session.Values, sessionOwner)
	if err := session.Save(req, c.Response()); err != nil {
		h.logger.Warn("Failed to clear session:", err)
	}

	return c.Redirect(http.StatusTemporaryRedirect, "/")
}

// CurrentOwner resolves the owner id from the request session.
func (h *AuthHandler) CurrentOwner(c echo.Context) (string, error) {
	session, err := gothic.Store.Get(c.Request(), sessionName)
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	ownerID, ok := session.Values[sessionOwner].(string)
	if !ok || ownerID == "" {
		return "", fmt.Errorf("no owner in session")
	}
	return ownerID, nil
}

// withProvider pins the provider query parameter so gothic can route the
// request without a mux-specific URL pattern.
func withProvider(c echo.Context) *http.Request {
	req := c.Request()
	q := req.URL.Query()
	q.Set("provider", "google")
	req.URL.RawQuery = q.Encode()
	return req
}

// OwnerID reads the owner id placed in the context by the auth middleware.
func OwnerID(c echo.Context) string {
	ownerID, _ := c.Get(ownerContext).(string)
	return ownerID
}
