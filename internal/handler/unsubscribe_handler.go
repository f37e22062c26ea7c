package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailpilot/internal/logger"
	"mailpilot/internal/service"
)

type UnsubscribeHandler struct {
	unsubscribeService service.UnsubscribeService
	logger             *logger.Logger
}

func NewUnsubscribeHandler(unsubscribeService service.UnsubscribeService, logger *logger.Logger) *UnsubscribeHandler {
	return &UnsubscribeHandler{
		unsubscribeService: unsubscribeService,
		logger:             logger,
	}
}

type unsubscribeRequest struct {
	MessageIDs []string `json:"messageIds"`
}

// UnsubscribeMessages runs the unsubscribe agent over the given messages
// and returns a per-message report.
func (h *UnsubscribeHandler) UnsubscribeMessages(c echo.Context) error {
	var req unsubscribeRequest
	if err := c.Bind(&req); err != nil || len(req.MessageIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "messageIds is required"})
	}

	reports, err := h.unsubscribeService.UnsubscribeMessages(c.Request().Context(), req.MessageIDs, OwnerID(c))
	if err != nil {
		h.logger.Error("Unsubscribe run failed:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "unsubscribe run failed"})
	}
	return c.JSON(http.StatusOK, reports)
}
