package handler

import (
	"errors"
	"fmt"
	"net/http"

	"fable-server/internal/authutils"
	"fable-server/internal/middleware"
	"fable-server/internal/models"
	"fable-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Handler wires the HTTP surface to the services.
type Handler struct {
	stories  *service.StoryService
	reading  *service.ReadingService
	stats    *service.StatsService
	feedback *service.FeedbackService
	verifier *authutils.JWTVerifier
	logger   *zap.Logger
}

// NewHandler creates the HTTP handler.
func NewHandler(
	stories *service.StoryService,
	reading *service.ReadingService,
	stats *service.StatsService,
	feedback *service.FeedbackService,
	jwtSecret string,
	logger *zap.Logger,
) *Handler {
	verifier, err := authutils.NewJWTVerifier(jwtSecret, logger)
	if err != nil {
		logger.Fatal("Failed to create JWT verifier", zap.Error(err))
	}
	return &Handler{
		stories:  stories,
		reading:  reading,
		stats:    stats,
		feedback: feedback,
		verifier: verifier,
		logger:   logger.Named("Handler"),
	}
}

// CustomValidator adapts go-playground/validator to Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates the request validator.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator.
func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return fmt.Errorf("%w: %s", models.ErrValidation, err.Error())
	}
	return nil
}

// RegisterRoutes registers every route on the Echo instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	authReader := middleware.Auth(h.verifier.VerifyToken, h.logger, models.RoleReader, models.RoleAuthor, models.RoleAdmin)
	authAuthor := middleware.Auth(h.verifier.VerifyToken, h.logger, models.RoleAuthor, models.RoleAdmin)
	authAdmin := middleware.Auth(h.verifier.VerifyToken, h.logger, models.RoleAdmin)

	reader := e.Group("/reader")
	{
		reader.GET("/stories", h.browseStories)
		reader.GET("/stories/:id", h.getPublishedStory)
		reader.GET("/stories/:id/stats", h.getStoryStats)

		reader.POST("/stories/:id/start", h.startPlay, authReader)
		reader.GET("/stories/:id/pages/:pageID", h.getPage, authReader)
		reader.POST("/stories/:id/pages/:pageID/advance", h.advance, authReader)
		reader.POST("/plays/save", h.saveProgress, authReader)
		reader.GET("/stories/:id/resume", h.resume, authReader)
		reader.POST("/plays/finish", h.finishPlay, authReader)
		reader.GET("/plays", h.listMyPlays, authReader)
		reader.POST("/plays/similarity", h.pathSimilarity, authReader)
		reader.GET("/stories/:id/endings", h.unlockedEndings, authReader)
		reader.POST("/stories/:id/rate", h.rateStory, authReader)
		reader.POST("/stories/:id/report", h.reportStory, authReader)
	}

	author := e.Group("/author", authAuthor)
	{
		author.POST("/stories", h.createStory)
		author.GET("/stories", h.listMyStories)
		author.GET("/stories/:id", h.getMyStory)
		author.PATCH("/stories/:id", h.updateStory)
		author.DELETE("/stories/:id", h.deleteStory)
		author.POST("/stories/:id/publish", h.publishStory)
		author.POST("/stories/:id/unpublish", h.unpublishStory)
		author.GET("/stories/:id/preview", h.previewStory)
		author.GET("/stories/:id/stats", h.getMyStoryStats)
		author.POST("/stories/:id/pages", h.addPage)
		author.PATCH("/stories/:id/pages/:pageID", h.updatePage)
		author.DELETE("/stories/:id/pages/:pageID", h.removePage)
		author.POST("/stories/:id/pages/:pageID/choices", h.addChoice)
		author.DELETE("/stories/:id/pages/:pageID/choices/:choiceID", h.removeChoice)
		author.PUT("/stories/:id/start-page", h.setStartPage)
	}

	admin := e.Group("/admin", authAdmin)
	{
		admin.POST("/stories/:id/suspend", h.suspendStory)
		admin.POST("/stories/:id/reinstate", h.reinstateStory)
	}
}

// getUserIDFromContext extracts the verified user id set by the auth
// middleware.
func getUserIDFromContext(c echo.Context) (uuid.UUID, error) {
	val := c.Request().Context().Value(models.UserContextKey)
	if val == nil {
		return uuid.Nil, models.ErrUnauthorized
	}
	userID, ok := val.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, models.ErrUnauthorized
	}
	return userID, nil
}

// getRolesFromContext extracts the roles set by the auth middleware.
func getRolesFromContext(c echo.Context) []string {
	if roles, ok := c.Request().Context().Value(models.RolesContextKey).([]string); ok {
		return roles
	}
	return nil
}

func parseUUIDParam(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s", models.ErrBadRequest, name)
	}
	return id, nil
}

// handleServiceError maps the service sentinels to HTTP status codes and
// writes the standard envelope.
func (h *Handler) handleServiceError(c echo.Context, err error) error {
	var statusCode int

	switch {
	case errors.Is(err, models.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		statusCode = http.StatusForbidden
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidReference):
		statusCode = http.StatusNotFound
	case errors.Is(err, models.ErrAlreadyReported), errors.Is(err, models.ErrNoStartPage):
		statusCode = http.StatusConflict
	case errors.Is(err, models.ErrNotPublished), errors.Is(err, models.ErrNotAnEnding),
		errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest):
		statusCode = http.StatusBadRequest
	default:
		h.logger.Error("Unhandled service error", zap.Error(err), zap.String("path", c.Path()))
		return respondError(c, http.StatusInternalServerError, "Internal server error")
	}
	return respondError(c, statusCode, err.Error())
}

func respondOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, models.APIResponse{Success: true, Data: data})
}

func respondCreated(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, models.APIResponse{Success: true, Data: data})
}

func respondError(c echo.Context, status int, message string) error {
	return c.JSON(status, models.APIResponse{Success: false, Message: message})
}
