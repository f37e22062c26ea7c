package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mailpilot/internal/logger"
	"mailpilot/internal/service"
)

type CategoryHandler struct {
	categoryService service.CategoryService
	logger          *logger.Logger
}

func NewCategoryHandler(categoryService service.CategoryService, logger *logger.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), OwnerID(c), req.Name, req.Description, req.Color)
	if err != nil {
		h.logger.Error("Failed to create category:", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, category)
}

func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories, err := h.categoryService.GetCategories(c.Request().Context(), OwnerID(c))
	if err != nil {
		h.logger.Error("Failed to load categories:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to load categories"})
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), c.Param("id"), OwnerID(c), req.Name, req.Description, req.Color)
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		h.logger.Error("Failed to update category:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update category"})
	}
	return c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	err := h.categoryService.DeleteCategory(c.Request().Context(), c.Param("id"), OwnerID(c))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
		}
		h.logger.Error("Failed to delete category:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete category"})
	}
	return c.NoContent(http.StatusNoContent)
}
