package handler

import (
	"fmt"

	"fable-server/internal/models"
	"fable-server/internal/service"

	"github.com/labstack/echo/v4"
)

func (h *Handler) createStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req createStoryRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	story, err := h.stories.CreateStory(c.Request().Context(), userID, service.CreateStoryParams{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Theme:       req.Theme,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storiesCreatedTotal.Inc()
	return respondCreated(c, story)
}

func (h *Handler) listMyStories(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	stories, err := h.stories.ListMyStories(c.Request().Context(), userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, stories)
}

func (h *Handler) getMyStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	story, err := h.stories.GetStory(c.Request().Context(), userID, getRolesFromContext(c), storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, story)
}

func (h *Handler) updateStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req updateStoryRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	story, err := h.stories.UpdateStory(c.Request().Context(), userID, getRolesFromContext(c), storyID, service.UpdateStoryParams{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Theme:       req.Theme,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, story)
}

func (h *Handler) deleteStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	if err := h.stories.DeleteStory(c.Request().Context(), userID, getRolesFromContext(c), storyID); err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, nil)
}

func (h *Handler) publishStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	story, err := h.stories.Publish(c.Request().Context(), userID, getRolesFromContext(c), storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storiesPublishedTotal.Inc()
	return respondOK(c, story)
}

func (h *Handler) unpublishStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	story, err := h.stories.Unpublish(c.Request().Context(), userID, getRolesFromContext(c), storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, story)
}

func (h *Handler) previewStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	story, startPage, err := h.stories.Preview(c.Request().Context(), userID, getRolesFromContext(c), storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, echo.Map{"story": story, "start_page": startPage})
}

func (h *Handler) getMyStoryStats(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	// Ownership gate first; the stats themselves carry reader feedback.
	if _, err := h.stories.GetStory(c.Request().Context(), userID, getRolesFromContext(c), storyID); err != nil {
		return h.handleServiceError(c, err)
	}
	stats, err := h.stats.GetStoryStats(c.Request().Context(), storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, stats)
}

func (h *Handler) addPage(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req pageRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	page, err := h.stories.AddPage(c.Request().Context(), userID, getRolesFromContext(c), storyID, service.PageParams{
		Title:       req.Title,
		Text:        req.Text,
		ImageURL:    req.ImageURL,
		IsEnding:    req.IsEnding,
		EndingLabel: req.EndingLabel,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondCreated(c, page)
}

func (h *Handler) updatePage(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	pageID, err := parseUUIDParam(c, "pageID")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req pageRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	page, err := h.stories.UpdatePage(c.Request().Context(), userID, getRolesFromContext(c), storyID, pageID, service.PageParams{
		Title:       req.Title,
		Text:        req.Text,
		ImageURL:    req.ImageURL,
		IsEnding:    req.IsEnding,
		EndingLabel: req.EndingLabel,
	})
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, page)
}

func (h *Handler) removePage(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	pageID, err := parseUUIDParam(c, "pageID")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.stories.RemovePage(c.Request().Context(), userID, getRolesFromContext(c), storyID, pageID); err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, nil)
}

func (h *Handler) addChoice(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	pageID, err := parseUUIDParam(c, "pageID")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req addChoiceRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	choice, err := h.stories.AddChoice(c.Request().Context(), userID, getRolesFromContext(c), storyID, pageID, req.Text, req.TargetPageID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondCreated(c, choice)
}

func (h *Handler) removeChoice(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	pageID, err := parseUUIDParam(c, "pageID")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	choiceID, err := parseUUIDParam(c, "choiceID")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.stories.RemoveChoice(c.Request().Context(), userID, getRolesFromContext(c), storyID, pageID, choiceID); err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, nil)
}

func (h *Handler) setStartPage(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req setStartPageRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	if err := h.stories.SetStartPage(c.Request().Context(), userID, getRolesFromContext(c), storyID, req.PageID); err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, nil)
}
