package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/techno-flashi/techno-flashi-sub000/internal/cache"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
	"github.com/techno-flashi/techno-flashi-sub000/internal/metrics"
	"github.com/techno-flashi/techno-flashi-sub000/internal/placement"
	redisRepo "github.com/techno-flashi/techno-flashi-sub000/internal/repository/redis"
)

type AdRepository interface {
	ListByPosition(ctx context.Context, position domain.Position) ([]*domain.Advertisement, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Advertisement, error)
}

type SharedAdCache interface {
	GetPositionAds(ctx context.Context, position domain.Position) ([]*domain.Advertisement, error)
	SetPositionAds(ctx context.Context, position domain.Position, ads []*domain.Advertisement, ttl time.Duration) error
	DeletePosition(ctx context.Context, position domain.Position) error
}

type SelectorConfig struct {
	CacheTTL      time.Duration
	DefaultMaxAds int
	MaxAdsLimit   int
	Location      *time.Location
}

// AdSelector resolves the ads to show in a position. It reads through the
// process cache, then the optional shared cache, then the store.
type AdSelector struct {
	repo    AdRepository
	local   *cache.Cache
	shared  SharedAdCache
	metrics *metrics.Metrics
	cfg     SelectorConfig
	now     func() time.Time
}

// NewAdSelector wires the selector. shared may be nil when no redis is configured.
func NewAdSelector(repo AdRepository, local *cache.Cache, shared SharedAdCache, m *metrics.Metrics, cfg SelectorConfig) *AdSelector {
	if cfg.DefaultMaxAds <= 0 {
		cfg.DefaultMaxAds = 1
	}
	if cfg.MaxAdsLimit <= 0 {
		cfg.MaxAdsLimit = 10
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	return &AdSelector{
		repo:    repo,
		local:   local,
		shared:  shared,
		metrics: m,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Select returns up to maxAds eligible ads for position, highest priority
// first and newest first among equal priorities. It never fails: a store
// error is logged and yields an empty list.
//
// For entity pages the pools are tried in a fixed order: ads for that exact
// entity, then ads for every entity of the kind, then general ads. The first
// pool with an eligible ad wins.
func (s *AdSelector) Select(ctx context.Context, position domain.Position, req domain.RequestContext, maxAds int) []*domain.Advertisement {
	start := time.Now()
	defer func() {
		s.metrics.SelectionDuration.WithLabelValues(string(position)).Observe(time.Since(start).Seconds())
	}()

	maxAds = s.clampMaxAds(maxAds)

	ads, err := s.positionAds(ctx, position)
	if err != nil {
		s.metrics.SelectionErrors.WithLabelValues(string(position)).Inc()
		logger.FromContext(ctx).Error("Failed to load ads for position",
			slog.String("position", string(position)),
			slog.String("error", err.Error()),
		)
		return []*domain.Advertisement{}
	}

	now := s.now().In(s.cfg.Location)

	var selected []*domain.Advertisement
	if req.EntityScoped() {
		general := req
		general.EntitySlug = ""

		selected = eligibleInScope(ctx, ads, domain.ScopeEntity, req, now)
		if len(selected) == 0 {
			selected = eligibleInScope(ctx, ads, domain.ScopeAllEntities, req, now)
		}
		if len(selected) == 0 {
			selected = eligibleInScope(ctx, ads, domain.ScopeGeneral, general, now)
		}
	} else {
		selected = eligibleInScope(ctx, ads, domain.ScopeGeneral, req, now)
	}

	SortByPriority(selected)
	if len(selected) > maxAds {
		selected = selected[:maxAds]
	}

	s.metrics.AdsSelected.WithLabelValues(string(position)).Add(float64(len(selected)))

	return selected
}

func (s *AdSelector) clampMaxAds(maxAds int) int {
	if maxAds <= 0 {
		return s.cfg.DefaultMaxAds
	}
	if maxAds > s.cfg.MaxAdsLimit {
		return s.cfg.MaxAdsLimit
	}
	return maxAds
}

func eligibleInScope(ctx context.Context, ads []*domain.Advertisement, scope domain.EntityScope, req domain.RequestContext, now time.Time) []*domain.Advertisement {
	log := logger.FromContext(ctx)

	var out []*domain.Advertisement
	for _, ad := range ads {
		if ad.Targeting.Scope() != scope {
			continue
		}
		if rule := placement.Explain(ad, req, now); rule != "" {
			log.Debug("Ad not eligible",
				slog.String("ad_id", ad.ID.String()),
				slog.String("rule", rule),
			)
			continue
		}
		out = append(out, ad)
	}
	return out
}

// SortByPriority orders ads by priority descending, then by creation time
// descending. The sort is stable so identical keys keep store order.
func SortByPriority(ads []*domain.Advertisement) {
	slices.SortStableFunc(ads, func(a, b *domain.Advertisement) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}

func positionKey(position domain.Position) string {
	return fmt.Sprintf("ads:position:%s", position)
}

func (s *AdSelector) positionAds(ctx context.Context, position domain.Position) ([]*domain.Advertisement, error) {
	key := positionKey(position)

	if v, ok := s.local.Get(key); ok {
		if ads, ok := v.([]*domain.Advertisement); ok {
			s.metrics.CacheRequests.WithLabelValues("local", "hit").Inc()
			return ads, nil
		}
	}
	s.metrics.CacheRequests.WithLabelValues("local", "miss").Inc()

	if s.shared != nil {
		ads, err := s.shared.GetPositionAds(ctx, position)
		switch {
		case err == nil:
			s.metrics.CacheRequests.WithLabelValues("shared", "hit").Inc()
			s.local.Set(key, ads, s.cfg.CacheTTL)
			return ads, nil
		case errors.Is(err, redisRepo.ErrCacheMiss):
			s.metrics.CacheRequests.WithLabelValues("shared", "miss").Inc()
		default:
			s.metrics.CacheRequests.WithLabelValues("shared", "error").Inc()
			logger.FromContext(ctx).Warn("Shared ad cache unavailable",
				slog.String("position", string(position)),
				slog.String("error", err.Error()),
			)
		}
	}

	ads, err := s.repo.ListByPosition(ctx, position)
	if err != nil {
		return nil, err
	}

	s.local.Set(key, ads, s.cfg.CacheTTL)

	if s.shared != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.shared.SetPositionAds(ctx, position, ads, s.cfg.CacheTTL); err != nil {
				logger.Get().Warn("Failed to populate shared ad cache",
					slog.String("position", string(position)),
					slog.String("error", err.Error()),
				)
			}
		}()
	}

	return ads, nil
}

// Invalidate drops the cached list for position in both cache tiers.
func (s *AdSelector) Invalidate(ctx context.Context, position domain.Position) {
	s.local.Delete(positionKey(position))

	if s.shared != nil {
		if err := s.shared.DeletePosition(ctx, position); err != nil {
			logger.FromContext(ctx).Warn("Failed to invalidate shared ad cache",
				slog.String("position", string(position)),
				slog.String("error", err.Error()),
			)
		}
	}
}
