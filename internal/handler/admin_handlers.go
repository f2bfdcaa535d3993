package handler

import (
	"github.com/labstack/echo/v4"
)

func (h *Handler) suspendStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if err := h.stories.Suspend(c.Request().Context(), storyID); err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, nil)
}

func (h *Handler) reinstateStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if err := h.stories.Reinstate(c.Request().Context(), storyID); err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, nil)
}
