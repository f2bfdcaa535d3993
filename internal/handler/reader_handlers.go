package handler

import (
	"fmt"
	"time"

	"fable-server/internal/interfaces"
	"fable-server/internal/models"

	"github.com/labstack/echo/v4"
)

func (h *Handler) browseStories(c echo.Context) error {
	filter := interfaces.StoryFilter{
		Search: c.QueryParam("search"),
		Theme:  c.QueryParam("theme"),
	}
	stories, err := h.reading.BrowsePublished(c.Request().Context(), filter)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, stories)
}

func (h *Handler) getPublishedStory(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	story, err := h.reading.GetPublishedStory(c.Request().Context(), storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, story)
}

func (h *Handler) getStoryStats(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	// Only published stories expose public stats.
	if _, err := h.reading.GetPublishedStory(c.Request().Context(), storyID); err != nil {
		return h.handleServiceError(c, err)
	}
	stats, err := h.stats.GetStoryStats(c.Request().Context(), storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, stats)
}

func (h *Handler) startPlay(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.reading.Start(c.Request().Context(), userID, storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	playsStartedTotal.Inc()
	return respondOK(c, result)
}

func (h *Handler) getPage(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	pageID, err := parseUUIDParam(c, "pageID")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	page, err := h.reading.GetPage(c.Request().Context(), storyID, pageID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, page)
}

func (h *Handler) advance(c echo.Context) error {
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}
	pageID, err := parseUUIDParam(c, "pageID")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.reading.Advance(c.Request().Context(), storyID, pageID, req.ChoiceID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, result)
}

func (h *Handler) saveProgress(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req saveProgressRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	state, err := h.reading.SaveProgress(c.Request().Context(), userID, req.StoryID, req.CurrentPageID, req.Path)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, state)
}

func (h *Handler) resume(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.reading.Resume(c.Request().Context(), userID, storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, result)
}

func (h *Handler) finishPlay(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req finishPlayRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	startedAt := time.Now().UTC()
	if req.StartedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.StartedAt)
		if err != nil {
			return h.handleServiceError(c, fmt.Errorf("%w: started_at must be RFC3339", models.ErrBadRequest))
		}
		startedAt = parsed
	}

	record, err := h.reading.Finish(c.Request().Context(), userID, req.StoryID, req.EndingPageID, req.Path, startedAt)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	playsFinishedTotal.Inc()
	return respondCreated(c, record)
}

func (h *Handler) listMyPlays(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	plays, err := h.reading.ListMyPlays(c.Request().Context(), userID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, plays)
}

func (h *Handler) pathSimilarity(c echo.Context) error {
	if _, err := getUserIDFromContext(c); err != nil {
		return h.handleServiceError(c, err)
	}

	var req similarityRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.stats.PathSimilarity(c.Request().Context(), req.StoryID, req.Path)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, result)
}

func (h *Handler) unlockedEndings(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.stats.GetUnlockedEndings(c.Request().Context(), userID, storyID)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	return respondOK(c, result)
}

func (h *Handler) rateStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req rateStoryRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	result, err := h.feedback.Rate(c.Request().Context(), userID, storyID, req.Score, req.Comment)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	ratingsTotal.Inc()
	return respondOK(c, result)
}

func (h *Handler) reportStory(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	storyID, err := parseUUIDParam(c, "id")
	if err != nil {
		return h.handleServiceError(c, err)
	}

	var req reportStoryRequest
	if err := c.Bind(&req); err != nil {
		return h.handleServiceError(c, fmt.Errorf("%w: %v", models.ErrBadRequest, err))
	}
	if err := c.Validate(&req); err != nil {
		return h.handleServiceError(c, err)
	}

	count, err := h.feedback.Report(c.Request().Context(), userID, storyID, req.Reason)
	if err != nil {
		return h.handleServiceError(c, err)
	}
	reportsTotal.Inc()
	return respondOK(c, echo.Map{"report_count": count})
}
