package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

func TestListByPositionQuery(t *testing.T) {
	query, args, err := listByPositionQuery(domain.PositionSidebar)

	require.NoError(t, err)
	assert.Contains(t, query, "FROM advertisements")
	assert.Contains(t, query, "enabled = $")
	assert.Contains(t, query, "position = $")
	assert.Contains(t, query, "ORDER BY priority DESC, created_at DESC")
	assert.ElementsMatch(t, []interface{}{true, "sidebar"}, args)
}

func TestInsertAdQuery_DefaultsPagesToWildcard(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ad := &domain.Advertisement{
		Name:     "Spring banner",
		Type:     domain.AdTypeBanner,
		Position: domain.PositionHeader,
		Content:  &domain.ImageAd{ImageURL: "https://cdn.example.com/b.png", LinkURL: "https://example.com"},
		Schedule: domain.Schedule{StartDate: &start},
		Enabled:  true,
		Priority: 7,
	}

	query, args, err := insertAdQuery(ad)

	require.NoError(t, err)
	assert.Contains(t, query, "INSERT INTO advertisements")
	assert.Contains(t, query, "RETURNING id, created_at, updated_at")
	assert.Contains(t, args, []string{"*"})
	assert.Contains(t, args, "banner")
	assert.Contains(t, args, 7)
}

func TestCounterColumn(t *testing.T) {
	assert.Equal(t, "view_count", counterColumn(domain.EventImpression))
	assert.Equal(t, "view_count", counterColumn(domain.EventLoad))
	assert.Equal(t, "click_count", counterColumn(domain.EventClick))
	assert.Equal(t, "", counterColumn(domain.EventHover))
	assert.Equal(t, "", counterColumn(domain.EventConversion))
}

func TestClickThroughRate(t *testing.T) {
	assert.Equal(t, 0.0, clickThroughRate(0, 5))
	assert.InDelta(t, 2.5, clickThroughRate(200, 5), 0.0001)
}

func TestMigrateURL(t *testing.T) {
	assert.Equal(t, "pgx5://u:p@localhost:5432/ads?sslmode=disable",
		migrateURL("postgres://u:p@localhost:5432/ads?sslmode=disable"))
	assert.Equal(t, "pgx5://h/db", migrateURL("postgresql://h/db"))
	assert.Equal(t, "pgx5://h/db", migrateURL("pgx5://h/db"))
}
