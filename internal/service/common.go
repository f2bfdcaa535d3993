package service

import (
	"fmt"
	"math"

	"fable-server/internal/models"

	"github.com/google/uuid"
)

// validationError wraps models.ErrValidation with a field-specific message,
// so handlers can map it to a 400 while keeping the detail.
func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", models.ErrValidation, fmt.Sprintf(format, args...))
}

// requireOwner rejects access to a story the user does not own. Admins
// bypass the ownership check.
func requireOwner(story *models.Story, userID uuid.UUID, roles []string) error {
	if story.AuthorID == userID {
		return nil
	}
	if models.HasRole(roles, models.RoleAdmin) {
		return nil
	}
	return models.ErrForbidden
}

// round1 rounds to one decimal place. Derived figures (mean rating,
// completion rate, similarity) are reported at this precision.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
