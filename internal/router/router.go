package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mailpilot/internal/handler"
	"mailpilot/internal/middleware"
)

func SetupRoutes(
	e *echo.Echo,
	authHandler *handler.AuthHandler,
	accountHandler *handler.AccountHandler,
	categoryHandler *handler.CategoryHandler,
	messageHandler *handler.MessageHandler,
	unsubscribeHandler *handler.UnsubscribeHandler,
) {
	// Public routes
	e.GET("/auth/:provider", authHandler.BeginAuth)
	e.GET("/auth/:provider/callback", authHandler.Callback)
	e.GET("/auth/logout", authHandler.Logout)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// Protected API routes
	protected := e.Group("/api")
	protected.Use(middleware.AuthMiddleware(authHandler))

	protected.GET("/accounts", accountHandler.GetAccounts)
	protected.DELETE("/accounts/:id", accountHandler.DisconnectAccount)
	protected.POST("/accounts/:id/sync", accountHandler.SyncAccount)
	protected.POST("/sync", accountHandler.SyncAll)

	protected.POST("/categories", categoryHandler.CreateCategory)
	protected.GET("/categories", categoryHandler.GetCategories)
	protected.PUT("/categories/:id", categoryHandler.UpdateCategory)
	protected.DELETE("/categories/:id", categoryHandler.DeleteCategory)

	protected.GET("/messages", messageHandler.GetMessages)
	protected.GET("/messages/:id", messageHandler.GetMessage)
	protected.PUT("/messages/:id/category", messageHandler.AssignCategory)
	protected.POST("/messages/read", messageHandler.MarkRead)
	protected.DELETE("/messages", messageHandler.DeleteMessages)
	protected.POST("/messages/unsubscribe", unsubscribeHandler.UnsubscribeMessages)

	// Real-time updates via Server-Sent Events
	protected.GET("/sse", messageHandler.StreamUpdates)
}
