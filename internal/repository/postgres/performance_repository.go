package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

type PerformanceRepository struct {
	db *pgxpool.Pool
}

func NewPerformanceRepository(db *pgxpool.Pool) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// RecordEvent inserts the event row and, for impression/load and click
// events, bumps the matching counter with an in-database increment, all in
// one transaction. It returns the counter value after the increment, or 0
// for event types that do not touch a counter.
func (r *PerformanceRepository) RecordEvent(ctx context.Context, event *domain.PerformanceEvent) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var revenue *string
	if event.Revenue != nil {
		s := event.Revenue.String()
		revenue = &s
	}

	query := `
		INSERT INTO ad_performance
			(ad_id, event_type, page_url, referrer, user_agent, device_type, browser, os, country, city, revenue)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11::numeric)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, query,
		event.AdID,
		string(event.EventType),
		event.PageURL,
		event.Referrer,
		event.UserAgent,
		event.DeviceType,
		event.Browser,
		event.OS,
		event.Country,
		event.City,
		revenue,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert performance event: %w", err)
	}

	var count int64
	if column := counterColumn(event.EventType); column != "" {
		increment := fmt.Sprintf(
			`UPDATE advertisements SET %[1]s = %[1]s + 1, updated_at = NOW() WHERE id = $1 RETURNING %[1]s`,
			column,
		)
		if err := tx.QueryRow(ctx, increment, event.AdID).Scan(&count); err != nil {
			return 0, fmt.Errorf("failed to increment %s: %w", column, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit performance event: %w", err)
	}

	return count, nil
}

func counterColumn(t domain.EventType) string {
	switch {
	case t.CountsAsView():
		return "view_count"
	case t.CountsAsClick():
		return "click_count"
	default:
		return ""
	}
}

func (r *PerformanceRepository) GetPerformance(ctx context.Context, adID uuid.UUID, days int) (*domain.AdPerformance, error) {
	perf := &domain.AdPerformance{AdID: adID}

	query := `
		SELECT
			a.name,
			a.position,
			a.view_count,
			a.click_count,
			MAX(p.created_at) AS last_event_at,
			COALESCE(SUM(p.revenue), 0)::text AS revenue
		FROM advertisements a
		LEFT JOIN ad_performance p ON a.id = p.ad_id
		WHERE a.id = $1
		GROUP BY a.id, a.name, a.position, a.view_count, a.click_count
	`

	var (
		position    string
		lastEventAt *time.Time
		revenue     string
	)
	err := r.db.QueryRow(ctx, query, adID).Scan(
		&perf.Name,
		&position,
		&perf.ViewCount,
		&perf.ClickCount,
		&lastEventAt,
		&revenue,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdNotFound
		}
		return nil, fmt.Errorf("failed to query ad performance: %w", err)
	}
	perf.Position = domain.Position(position)
	perf.LastEventAt = lastEventAt
	perf.CTR = clickThroughRate(perf.ViewCount, perf.ClickCount)
	perf.Revenue, err = decimal.NewFromString(revenue)
	if err != nil {
		return nil, fmt.Errorf("failed to parse revenue %q: %w", revenue, err)
	}

	if perf.EventTotals, err = r.getEventTotals(ctx, adID); err != nil {
		return nil, err
	}
	if perf.EventsByDate, err = r.getEventsByDate(ctx, adID, days); err != nil {
		return nil, err
	}
	if perf.TopReferrers, err = r.getTopReferrers(ctx, adID, 5); err != nil {
		return nil, err
	}

	deviceStats, err := r.getDeviceStats(ctx, adID)
	if err != nil {
		return nil, err
	}
	perf.DeviceStats = *deviceStats

	return perf, nil
}

func clickThroughRate(views, clicks int64) float64 {
	if views == 0 {
		return 0
	}
	return float64(clicks) / float64(views) * 100
}

func (r *PerformanceRepository) getEventTotals(ctx context.Context, adID uuid.UUID) ([]domain.EventTypeCount, error) {
	query := `
		SELECT event_type, COUNT(*) AS count
		FROM ad_performance
		WHERE ad_id = $1
		GROUP BY event_type
		ORDER BY count DESC
	`

	rows, err := r.db.Query(ctx, query, adID)
	if err != nil {
		return nil, fmt.Errorf("failed to query event totals: %w", err)
	}
	defer rows.Close()

	var results []domain.EventTypeCount
	for rows.Next() {
		var etc domain.EventTypeCount
		var eventType string
		if err := rows.Scan(&eventType, &etc.Count); err != nil {
			return nil, err
		}
		etc.EventType = domain.EventType(eventType)
		results = append(results, etc)
	}

	return results, rows.Err()
}

func (r *PerformanceRepository) getEventsByDate(ctx context.Context, adID uuid.UUID, days int) ([]domain.EventsByDate, error) {
	query := `
		SELECT
			DATE(created_at) AS date,
			COUNT(*) FILTER (WHERE event_type IN ('impression', 'load')) AS impressions,
			COUNT(*) FILTER (WHERE event_type = 'click') AS clicks
		FROM ad_performance
		WHERE ad_id = $1
			AND created_at >= NOW() - INTERVAL '1 day' * $2
		GROUP BY DATE(created_at)
		ORDER BY date DESC
		LIMIT 90
	`

	rows, err := r.db.Query(ctx, query, adID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query events by date: %w", err)
	}
	defer rows.Close()

	var results []domain.EventsByDate
	for rows.Next() {
		var ebd domain.EventsByDate
		var date time.Time
		if err := rows.Scan(&date, &ebd.Impressions, &ebd.Clicks); err != nil {
			return nil, err
		}
		ebd.Date = date.Format("2006-01-02")
		results = append(results, ebd)
	}

	return results, rows.Err()
}

func (r *PerformanceRepository) getTopReferrers(ctx context.Context, adID uuid.UUID, limit int) ([]domain.ReferrerStats, error) {
	query := `
		SELECT
			COALESCE(NULLIF(referrer, ''), 'Direct') AS referrer,
			COUNT(*) AS count
		FROM ad_performance
		WHERE ad_id = $1
		GROUP BY 1
		ORDER BY count DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, adID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top referrers: %w", err)
	}
	defer rows.Close()

	var results []domain.ReferrerStats
	for rows.Next() {
		var rs domain.ReferrerStats
		if err := rows.Scan(&rs.Referrer, &rs.Count); err != nil {
			return nil, err
		}
		results = append(results, rs)
	}

	return results, rows.Err()
}

func (r *PerformanceRepository) getDeviceStats(ctx context.Context, adID uuid.UUID) (*domain.DeviceStats, error) {
	query := `
		SELECT
			COALESCE(device_type, 'unknown') AS device_type,
			COUNT(*) AS count
		FROM ad_performance
		WHERE ad_id = $1
		GROUP BY 1
	`

	rows, err := r.db.Query(ctx, query, adID)
	if err != nil {
		return nil, fmt.Errorf("failed to query device stats: %w", err)
	}
	defer rows.Close()

	stats := &domain.DeviceStats{}
	for rows.Next() {
		var deviceType string
		var count int64
		if err := rows.Scan(&deviceType, &count); err != nil {
			return nil, err
		}

		switch deviceType {
		case "mobile":
			stats.Mobile += count
		case "desktop":
			stats.Desktop += count
		case "tablet":
			stats.Tablet += count
		case "bot":
			stats.Bot += count
		default:
			stats.Unknown += count
		}
	}

	return stats, rows.Err()
}

func (r *PerformanceRepository) GetEventHistory(ctx context.Context, adID uuid.UUID, page, pageSize int) (*domain.EventHistory, error) {
	offset := (page - 1) * pageSize

	var total int64
	countQuery := `SELECT COUNT(*) FROM ad_performance WHERE ad_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, adID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count events: %w", err)
	}

	query := `
		SELECT id, ad_id, event_type, COALESCE(page_url, ''), COALESCE(referrer, ''),
			COALESCE(user_agent, ''), COALESCE(device_type, ''), COALESCE(browser, ''), COALESCE(os, ''),
			COALESCE(country, ''), COALESCE(city, ''), revenue::text, created_at
		FROM ad_performance
		WHERE ad_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, adID, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query event history: %w", err)
	}
	defer rows.Close()

	events := []domain.PerformanceEvent{}
	for rows.Next() {
		var (
			ev        domain.PerformanceEvent
			eventType string
			revenue   *string
		)
		err := rows.Scan(
			&ev.ID,
			&ev.AdID,
			&eventType,
			&ev.PageURL,
			&ev.Referrer,
			&ev.UserAgent,
			&ev.DeviceType,
			&ev.Browser,
			&ev.OS,
			&ev.Country,
			&ev.City,
			&revenue,
			&ev.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		ev.EventType = domain.EventType(eventType)
		if revenue != nil {
			if d, err := decimal.NewFromString(*revenue); err == nil {
				ev.Revenue = &d
			}
		}
		events = append(events, ev)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &domain.EventHistory{
		Events:     events,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, rows.Err()
}
