package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mailpilot/internal/logger"
	"mailpilot/internal/service"
)

type AccountHandler struct {
	accountService service.AccountService
	syncService    service.SyncService
	logger         *logger.Logger
}

func NewAccountHandler(accountService service.AccountService, syncService service.SyncService, logger *logger.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		syncService:    syncService,
		logger:         logger,
	}
}

func (h *AccountHandler) GetAccounts(c echo.Context) error {
	accounts, err := h.accountService.GetAccounts(c.Request().Context(), OwnerID(c))
	if err != nil {
		h.logger.Error("Failed to load accounts:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load accounts"})
	}
	return c.JSON(http.StatusOK, accounts)
}

func (h *AccountHandler) DisconnectAccount(c echo.Context) error {
	err := h.accountService.DisconnectAccount(c.Request().Context(), c.Param("id"), OwnerID(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		h.logger.Error("Failed to disconnect account:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to disconnect account"})
	}
	return c.NoContent(http.StatusNoContent)
}

// SyncAccount triggers an on-demand sync pass for one account.
func (h *AccountHandler) SyncAccount(c echo.Context) error {
	accountID := c.Param("id")
	if !h.ownsAccount(c, accountID) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
	}

	report, err := h.syncService.SyncAccount(c.Request().Context(), accountID)
	if err != nil && report == nil {
		h.logger.Error("Sync failed:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "sync failed"})
	}
	return c.JSON(http.StatusOK, report)
}

// SyncAll triggers a sync pass over every account the owner has connected.
func (h *AccountHandler) SyncAll(c echo.Context) error {
	reports, err := h.syncService.SyncOwner(c.Request().Context(), OwnerID(c))
	if err != nil {
		h.logger.Error("Sync failed:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "sync failed"})
	}
	return c.JSON(http.StatusOK, reports)
}

func (h *AccountHandler) ownsAccount(c echo.Context, accountID string) bool {
	accounts, err := h.accountService.GetAccounts(c.Request().Context(), OwnerID(c))
	if err != nil {
		return false
	}
	for _, account := range accounts {
		if account.ID == accountID {
			return true
		}
	}
	return false
}
