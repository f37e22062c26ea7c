package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"mailpilot/internal/logger"
	"mailpilot/internal/service"
	"mailpilot/internal/sse"
)

type MessageHandler struct {
	messageService service.MessageService
	sseManager     *sse.Manager
	logger         *logger.Logger
}

func NewMessageHandler(messageService service.MessageService, sseManager *sse.Manager, logger *logger.Logger) *MessageHandler {
	return &MessageHandler{
		messageService: messageService,
		sseManager:     sseManager,
		logger:         logger,
	}
}

// GetMessages lists the owner's messages, optionally filtered by account or
// category via query parameters.
func (h *MessageHandler) GetMessages(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID := OwnerID(c)

	var err error
	var messages interface{}
	switch {
	case c.QueryParam("account") != "":
		messages, err = h.messageService.GetMessagesByAccount(ctx, c.QueryParam("account"), ownerID)
	case c.QueryParam("category") != "":
		messages, err = h.messageService.GetMessagesByCategory(ctx, c.QueryParam("category"), ownerID)
	default:
		messages, err = h.messageService.GetMessages(ctx, ownerID)
	}
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		h.logger.Error("Failed to load messages:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load messages"})
	}
	return c.JSON(http.StatusOK, messages)
}

func (h *MessageHandler) GetMessage(c echo.Context) error {
	msg, err := h.messageService.GetMessage(c.Request().Context(), c.Param("id"), OwnerID(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		return c.JSON(http.StatusNotFound, map[string]string{"error": "message not found"})
	}
	return c.JSON(http.StatusOK, msg)
}

type assignCategoryRequest struct {
	CategoryID string `json:"categoryId"`
}

func (h *MessageHandler) AssignCategory(c echo.Context) error {
	var req assignCategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	err := h.messageService.AssignCategory(c.Request().Context(), c.Param("id"), req.CategoryID, OwnerID(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		h.logger.Error("Failed to assign category:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to assign category"})
	}
	return c.NoContent(http.StatusNoContent)
}

type bulkRequest struct {
	MessageIDs []string `json:"messageIds"`
}

func (h *MessageHandler) MarkRead(c echo.Context) error {
	var req bulkRequest
	if err := c.Bind(&req); err != nil || len(req.MessageIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "messageIds is required"})
	}

	if err := h.messageService.MarkRead(c.Request().Context(), req.MessageIDs, OwnerID(c)); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		h.logger.Error("Failed to mark messages read:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to mark messages read"})
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *MessageHandler) DeleteMessages(c echo.Context) error {
	var req bulkRequest
	if err := c.Bind(&req); err != nil || len(req.MessageIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "messageIds is required"})
	}

	if err := h.messageService.DeleteMessages(c.Request().Context(), req.MessageIDs, OwnerID(c)); err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		h.logger.Error("Failed to delete messages:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete messages"})
	}
	return c.NoContent(http.StatusNoContent)
}

// StreamUpdates holds the connection open and relays sync events for the
// owner until the client disconnects.
func (h *MessageHandler) StreamUpdates(c echo.Context) error {
	ownerID := OwnerID(c)

	resp := c.Response()
	resp.Header().Set("Content-Type", "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	channel := h.sseManager.AddClient(ownerID)
	defer h.sseManager.RemoveClient(ownerID, channel)

	for {
		select {
		case payload, ok := <-channel:
			if !ok {
				return nil
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
				return nil
			}
			resp.Flush()
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
