package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/techno-flashi/techno-flashi-sub000/internal/cache"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
)

type EventRecorder interface {
	Record(adID uuid.UUID, eventType domain.EventType, meta domain.EventMeta) bool
}

// TrackingService turns client interactions into recorder events.
type TrackingService struct {
	repo     AdRepository
	local    *cache.Cache
	recorder EventRecorder
	ttl      time.Duration
}

func NewTrackingService(repo AdRepository, local *cache.Cache, recorder EventRecorder, ttl time.Duration) *TrackingService {
	return &TrackingService{
		repo:     repo,
		local:    local,
		recorder: recorder,
		ttl:      ttl,
	}
}

// Track validates a client-reported event and hands it to the recorder.
// Only validation problems are returned; recording itself is best effort.
func (s *TrackingService) Track(ctx context.Context, adID uuid.UUID, req *domain.TrackEventRequest, userAgent string) error {
	eventType, ok := domain.ParseEventType(req.EventType)
	if !ok {
		return fmt.Errorf("%w: unknown event type %q", ErrValidation, req.EventType)
	}

	meta := domain.EventMeta{
		PageURL:   req.PageURL,
		Referrer:  req.Referrer,
		UserAgent: userAgent,
		Country:   req.Country,
		City:      req.City,
	}

	if req.Revenue != "" {
		revenue, err := decimal.NewFromString(req.Revenue)
		if err != nil {
			return fmt.Errorf("%w: invalid revenue %q", ErrValidation, req.Revenue)
		}
		if revenue.IsNegative() {
			return fmt.Errorf("%w: revenue must not be negative", ErrValidation)
		}
		meta.Revenue = &revenue
	}

	s.recorder.Record(adID, eventType, meta)
	return nil
}

// Click records a click on adID and returns the URL to send the visitor to.
// The click is queued before the caller redirects.
func (s *TrackingService) Click(ctx context.Context, adID uuid.UUID, meta domain.EventMeta) (string, error) {
	ad, err := s.lookup(ctx, adID)
	if err != nil {
		return "", err
	}

	target := strings.TrimSpace(domain.FieldsOf(ad.Content).LinkURL)
	if !domain.IsHTTPURL(target) {
		return "", ErrNoTarget
	}

	s.recorder.Record(adID, domain.EventClick, meta)
	return target, nil
}

// RecordImpressions queues one impression per served ad.
func (s *TrackingService) RecordImpressions(ads []*domain.Advertisement, meta domain.EventMeta) {
	for _, ad := range ads {
		s.recorder.Record(ad.ID, domain.EventImpression, meta)
	}
}

func (s *TrackingService) lookup(ctx context.Context, adID uuid.UUID) (*domain.Advertisement, error) {
	key := "ads:id:" + adID.String()
	if v, ok := s.local.Get(key); ok {
		if ad, ok := v.(*domain.Advertisement); ok {
			return ad, nil
		}
	}

	ad, err := s.repo.GetByID(ctx, adID)
	if err != nil {
		if errors.Is(err, domain.ErrAdNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get advertisement: %w", err)
	}

	s.local.Set(key, ad, s.ttl)
	return ad, nil
}
