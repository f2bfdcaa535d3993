package database

import (
	"testing"

	"fable-server/internal/interfaces"
	"fable-server/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestBuildListPublishedQuery(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		query, args := buildListPublishedQuery(interfaces.StoryFilter{})
		assert.Equal(t, []interface{}{models.StatusPublished}, args)
		assert.NotContains(t, query, "ILIKE")
		assert.Contains(t, query, "ORDER BY times_started DESC, created_at DESC")
	})

	t.Run("search matches title, description and tags", func(t *testing.T) {
		query, args := buildListPublishedQuery(interfaces.StoryFilter{Search: "dragon"})
		assert.Equal(t, []interface{}{models.StatusPublished, "%dragon%"}, args)
		assert.Contains(t, query, "title ILIKE $2")
		assert.Contains(t, query, "description ILIKE $2")
		assert.Contains(t, query, "unnest(tags) AS tag WHERE tag ILIKE $2")
	})

	t.Run("theme is an exact match", func(t *testing.T) {
		query, args := buildListPublishedQuery(interfaces.StoryFilter{Search: "dragon", Theme: "fantasy"})
		assert.Len(t, args, 3)
		assert.Equal(t, "fantasy", args[2])
		assert.Contains(t, query, "theme = $3")
	})
}
