package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var adColumns = []string{
	"id", "name", "type", "format", "position",
	"COALESCE(container_id, '')", "z_index",
	"COALESCE(title, '')", "COALESCE(description, '')",
	"COALESCE(image_url, '')", "COALESCE(video_url, '')", "COALESCE(poster_url, '')",
	"COALESCE(target_url, '')", "COALESCE(alt_text, '')",
	"COALESCE(html_code, '')", "COALESCE(css_code, '')", "COALESCE(js_code, '')",
	"COALESCE(ad_code, '')", "COALESCE(network, '')",
	"pages", "excluded_pages", "devices", "countries",
	"COALESCE(target_entity_slug, '')", "target_all_entities",
	"start_date", "end_date", "schedule_days", "schedule_hours",
	"enabled", "paused", "priority", "max_impressions", "max_clicks",
	"view_count", "click_count", "created_at", "updated_at",
}

type AdRepository struct {
	db *pgxpool.Pool
}

func NewAdRepository(db *pgxpool.Pool) *AdRepository {
	return &AdRepository{db: db}
}

// listByPositionQuery is the coarse filter the store can answer on its own.
// Schedules, wildcards and caps are left to the placement evaluator.
func listByPositionQuery(position domain.Position) (string, []interface{}, error) {
	return psql.Select(adColumns...).
		From("advertisements").
		Where(sq.Eq{"position": string(position), "enabled": true}).
		OrderBy("priority DESC", "created_at DESC").
		ToSql()
}

func (r *AdRepository) ListByPosition(ctx context.Context, position domain.Position) ([]*domain.Advertisement, error) {
	query, args, err := listByPositionQuery(position)
	if err != nil {
		return nil, fmt.Errorf("failed to build position query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ads for position %s: %w", position, err)
	}
	defer rows.Close()

	var ads []*domain.Advertisement
	for rows.Next() {
		ad, err := scanAd(rows)
		if err != nil {
			return nil, err
		}
		ads = append(ads, ad)
	}

	return ads, rows.Err()
}

func (r *AdRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error) {
	query, args, err := psql.Select(adColumns...).
		From("advertisements").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	ad, err := scanAd(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAdNotFound
		}
		return nil, err
	}

	return ad, nil
}

// Create inserts ad and fills in the generated id and timestamps.
func (r *AdRepository) Create(ctx context.Context, ad *domain.Advertisement) error {
	query, args, err := insertAdQuery(ad)
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	return r.db.QueryRow(ctx, query, args...).Scan(&ad.ID, &ad.CreatedAt, &ad.UpdatedAt)
}

// CreateBatch inserts all ads in one round trip and one transaction.
func (r *AdRepository) CreateBatch(ctx context.Context, ads []*domain.Advertisement) error {
	if len(ads) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, ad := range ads {
		query, args, err := insertAdQuery(ad)
		if err != nil {
			return fmt.Errorf("failed to build insert query for %q: %w", ad.Name, err)
		}
		batch.Queue(query, args...).QueryRow(func(row pgx.Row) error {
			return row.Scan(&ad.ID, &ad.CreatedAt, &ad.UpdatedAt)
		})
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert advertisements: %w", err)
	}

	return tx.Commit(ctx)
}

// Truncate removes every advertisement and, by cascade, its events.
func (r *AdRepository) Truncate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, "TRUNCATE advertisements CASCADE"); err != nil {
		return fmt.Errorf("failed to truncate advertisements: %w", err)
	}
	return nil
}

func insertAdQuery(ad *domain.Advertisement) (string, []interface{}, error) {
	f := domain.FieldsOf(ad.Content)
	t := ad.Targeting
	s := ad.Schedule

	pages := t.Pages
	if len(pages) == 0 {
		pages = []string{"*"}
	}

	return psql.Insert("advertisements").
		Columns(
			"name", "type", "format", "position", "container_id", "z_index",
			"title", "description", "image_url", "video_url", "poster_url", "target_url", "alt_text",
			"html_code", "css_code", "js_code", "ad_code", "network",
			"pages", "excluded_pages", "devices", "countries", "target_entity_slug", "target_all_entities",
			"start_date", "end_date", "schedule_days", "schedule_hours",
			"enabled", "paused", "priority", "max_impressions", "max_clicks",
		).
		Values(
			ad.Name, string(ad.Type), ad.Format, string(ad.Position), nullString(ad.ContainerID), ad.ZIndex,
			nullString(f.Title), nullString(f.Body), nullString(f.ImageURL), nullString(f.VideoURL),
			nullString(f.PosterURL), nullString(f.LinkURL), nullString(f.AltText),
			nullString(f.HTML), nullString(f.CSS), nullString(f.JS), nullString(f.Script), nullString(f.Network),
			pages, t.ExcludedPages, t.Devices, t.Countries, nullString(t.TargetEntity), t.TargetAllEntities,
			s.StartDate, s.EndDate, s.Days, s.Hours,
			ad.Enabled, ad.Paused, ad.Priority, ad.MaxImpressions, ad.MaxClicks,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
}

func scanAd(row pgx.Row) (*domain.Advertisement, error) {
	var (
		ad       domain.Advertisement
		adType   string
		position string
		f        domain.ContentFields
	)

	err := row.Scan(
		&ad.ID, &ad.Name, &adType, &ad.Format, &position,
		&ad.ContainerID, &ad.ZIndex,
		&f.Title, &f.Body,
		&f.ImageURL, &f.VideoURL, &f.PosterURL,
		&f.LinkURL, &f.AltText,
		&f.HTML, &f.CSS, &f.JS,
		&f.Script, &f.Network,
		&ad.Targeting.Pages, &ad.Targeting.ExcludedPages, &ad.Targeting.Devices, &ad.Targeting.Countries,
		&ad.Targeting.TargetEntity, &ad.Targeting.TargetAllEntities,
		&ad.Schedule.StartDate, &ad.Schedule.EndDate, &ad.Schedule.Days, &ad.Schedule.Hours,
		&ad.Enabled, &ad.Paused, &ad.Priority, &ad.MaxImpressions, &ad.MaxClicks,
		&ad.ViewCount, &ad.ClickCount, &ad.CreatedAt, &ad.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan advertisement: %w", err)
	}

	ad.Type = domain.AdType(adType)
	ad.Position = domain.Position(position)
	ad.Content = domain.NewContent(ad.Type, f)

	return &ad, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
