package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/techno-flashi/techno-flashi-sub000/internal/cache"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/internal/metrics"
	redisRepo "github.com/techno-flashi/techno-flashi-sub000/internal/repository/redis"
	"github.com/techno-flashi/techno-flashi-sub000/tests/mocks"
)

var baseTime = time.Date(2026, time.March, 2, 10, 30, 0, 0, time.UTC)

func makeAd(name string, priority int, created time.Time, targeting domain.Targeting) *domain.Advertisement {
	if targeting.Pages == nil {
		targeting.Pages = []string{"*"}
	}
	return &domain.Advertisement{
		ID:        uuid.New(),
		Name:      name,
		Type:      domain.AdTypeText,
		Content:   &domain.TextAd{Title: name, LinkURL: "https://example.com/" + name},
		Position:  domain.PositionHeader,
		Enabled:   true,
		Targeting: targeting,
		Priority:  priority,
		CreatedAt: created,
	}
}

func newTestSelector(t *testing.T, repo AdRepository, shared SharedAdCache) *AdSelector {
	t.Helper()

	local := cache.New(time.Minute)
	t.Cleanup(local.Close)

	s := NewAdSelector(repo, local, shared, metrics.New(), SelectorConfig{CacheTTL: time.Minute})
	s.now = func() time.Time { return baseTime }
	return s
}

func names(ads []*domain.Advertisement) []string {
	out := make([]string, 0, len(ads))
	for _, ad := range ads {
		out = append(out, ad.Name)
	}
	return out
}

func TestSelect_OrdersByPriorityThenNewest(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	ads := []*domain.Advertisement{
		makeAd("p3", 3, baseTime.Add(-4*time.Hour), domain.Targeting{}),
		makeAd("p1", 1, baseTime.Add(-3*time.Hour), domain.Targeting{}),
		makeAd("p5-old", 5, baseTime.Add(-2*time.Hour), domain.Targeting{}),
		makeAd("p5-new", 5, baseTime.Add(-1*time.Hour), domain.Targeting{}),
	}
	repo.On("ListByPosition", mock.Anything, domain.PositionHeader).Return(ads, nil).Once()

	s := newTestSelector(t, repo, nil)
	got := s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/"}, 10)

	assert.Equal(t, []string{"p5-new", "p5-old", "p3", "p1"}, names(got))
	repo.AssertExpectations(t)
}

func TestSelect_TruncatesToMaxAds(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	ads := []*domain.Advertisement{
		makeAd("a", 1, baseTime, domain.Targeting{}),
		makeAd("b", 2, baseTime, domain.Targeting{}),
		makeAd("c", 3, baseTime, domain.Targeting{}),
	}
	repo.On("ListByPosition", mock.Anything, domain.PositionHeader).Return(ads, nil).Once()

	s := newTestSelector(t, repo, nil)
	got := s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/"}, 2)

	assert.Equal(t, []string{"c", "b"}, names(got))
}

func TestSelect_ClampsMaxAds(t *testing.T) {
	s := newTestSelector(t, new(mocks.MockAdRepository), nil)

	assert.Equal(t, 1, s.clampMaxAds(0))
	assert.Equal(t, 1, s.clampMaxAds(-3))
	assert.Equal(t, 4, s.clampMaxAds(4))
	assert.Equal(t, 10, s.clampMaxAds(50))
}

func TestSelect_HeaderScenario(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	adA := makeAd("A", 10, baseTime.Add(-2*time.Hour), domain.Targeting{Pages: []string{"*"}})
	adB := makeAd("B", 10, baseTime.Add(-1*time.Hour), domain.Targeting{Pages: []string{"/ai-tools/*"}})
	repo.On("ListByPosition", mock.Anything, domain.PositionHeader).
		Return([]*domain.Advertisement{adA, adB}, nil).Once()

	s := newTestSelector(t, repo, nil)
	got := s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/ai-tools/chatgpt"}, 2)

	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"A", "B"}, names(got))
	assert.Equal(t, []string{"B", "A"}, names(got), "equal priority ties break newest first")
}

func TestSelect_EntityPrecedence(t *testing.T) {
	general := makeAd("general", 10, baseTime, domain.Targeting{})
	allTools := makeAd("all-tools", 5, baseTime, domain.Targeting{TargetAllEntities: true})
	gpt4 := makeAd("gpt-4", 1, baseTime, domain.Targeting{TargetEntity: "gpt-4"})
	ads := []*domain.Advertisement{general, allTools, gpt4}

	tests := []struct {
		name string
		req  domain.RequestContext
		want []string
	}{
		{
			name: "exact entity wins over higher priority pools",
			req:  domain.RequestContext{Path: "/ai-tools/gpt-4", EntitySlug: "gpt-4"},
			want: []string{"gpt-4"},
		},
		{
			name: "other entity falls back to all-entities ad",
			req:  domain.RequestContext{Path: "/ai-tools/claude", EntitySlug: "claude"},
			want: []string{"all-tools"},
		},
		{
			name: "general page only sees general ads",
			req:  domain.RequestContext{Path: "/"},
			want: []string{"general"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockAdRepository)
			repo.On("ListByPosition", mock.Anything, domain.PositionHeader).Return(ads, nil).Once()

			s := newTestSelector(t, repo, nil)
			got := s.Select(context.Background(), domain.PositionHeader, tt.req, 1)

			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestSelect_EntityFallsBackToGeneral(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	general := makeAd("general", 1, baseTime, domain.Targeting{})
	repo.On("ListByPosition", mock.Anything, domain.PositionSidebar).
		Return([]*domain.Advertisement{general}, nil).Once()

	s := newTestSelector(t, repo, nil)
	got := s.Select(context.Background(), domain.PositionSidebar,
		domain.RequestContext{Path: "/ai-tools/gpt-4", EntitySlug: "gpt-4"}, 1)

	assert.Equal(t, []string{"general"}, names(got))
}

func TestSelect_SkipsIneligibleAds(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	paused := makeAd("paused", 9, baseTime, domain.Targeting{})
	paused.Paused = true
	capped := makeAd("capped", 8, baseTime, domain.Targeting{})
	limit := int64(3)
	capped.MaxImpressions = &limit
	capped.ViewCount = 3
	live := makeAd("live", 1, baseTime, domain.Targeting{})

	repo.On("ListByPosition", mock.Anything, domain.PositionHeader).
		Return([]*domain.Advertisement{paused, capped, live}, nil).Once()

	s := newTestSelector(t, repo, nil)
	got := s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/"}, 5)

	assert.Equal(t, []string{"live"}, names(got))
}

func TestSelect_StoreErrorYieldsEmptyList(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	repo.On("ListByPosition", mock.Anything, domain.PositionFooter).
		Return(nil, errors.New("connection refused")).Once()

	s := newTestSelector(t, repo, nil)
	got := s.Select(context.Background(), domain.PositionFooter, domain.RequestContext{Path: "/"}, 1)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSelect_LocalCacheAvoidsStore(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	repo.On("ListByPosition", mock.Anything, domain.PositionHeader).
		Return([]*domain.Advertisement{makeAd("a", 1, baseTime, domain.Targeting{})}, nil).Once()

	s := newTestSelector(t, repo, nil)
	for i := 0; i < 3; i++ {
		got := s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/"}, 1)
		assert.Len(t, got, 1)
	}

	repo.AssertNumberOfCalls(t, "ListByPosition", 1)
}

func TestSelect_SharedCacheHit(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	shared := new(mocks.MockSharedAdCache)
	shared.On("GetPositionAds", mock.Anything, domain.PositionHeader).
		Return([]*domain.Advertisement{makeAd("shared", 1, baseTime, domain.Targeting{})}, nil).Once()

	s := newTestSelector(t, repo, shared)
	got := s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/"}, 1)

	assert.Equal(t, []string{"shared"}, names(got))
	repo.AssertNotCalled(t, "ListByPosition", mock.Anything, mock.Anything)
	shared.AssertExpectations(t)
}

func TestSelect_SharedCacheMissPopulatesBothTiers(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	shared := new(mocks.MockSharedAdCache)
	ads := []*domain.Advertisement{makeAd("fresh", 1, baseTime, domain.Targeting{})}

	done := make(chan struct{})
	shared.On("GetPositionAds", mock.Anything, domain.PositionHeader).
		Return(nil, redisRepo.ErrCacheMiss).Once()
	shared.On("SetPositionAds", mock.Anything, domain.PositionHeader, ads, time.Minute).
		Return(nil).
		Run(func(mock.Arguments) { close(done) }).
		Once()
	repo.On("ListByPosition", mock.Anything, domain.PositionHeader).Return(ads, nil).Once()

	s := newTestSelector(t, repo, shared)
	got := s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/"}, 1)
	assert.Equal(t, []string{"fresh"}, names(got))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shared cache was not populated")
	}

	// second call is served from the process cache
	s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/"}, 1)
	repo.AssertNumberOfCalls(t, "ListByPosition", 1)
	shared.AssertNumberOfCalls(t, "GetPositionAds", 1)
}

func TestSelect_SharedCacheErrorFallsThrough(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	shared := new(mocks.MockSharedAdCache)
	ads := []*domain.Advertisement{makeAd("db", 1, baseTime, domain.Targeting{})}

	shared.On("GetPositionAds", mock.Anything, domain.PositionHeader).
		Return(nil, errors.New("redis down")).Once()
	shared.On("SetPositionAds", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("redis down")).Maybe()
	repo.On("ListByPosition", mock.Anything, domain.PositionHeader).Return(ads, nil).Once()

	s := newTestSelector(t, repo, shared)
	got := s.Select(context.Background(), domain.PositionHeader, domain.RequestContext{Path: "/"}, 1)

	assert.Equal(t, []string{"db"}, names(got))
}

func TestInvalidate_ClearsBothTiers(t *testing.T) {
	repo := new(mocks.MockAdRepository)
	shared := new(mocks.MockSharedAdCache)
	shared.On("DeletePosition", mock.Anything, domain.PositionHeader).Return(nil).Once()

	s := newTestSelector(t, repo, shared)
	s.local.Set(positionKey(domain.PositionHeader), []*domain.Advertisement{}, time.Minute)

	s.Invalidate(context.Background(), domain.PositionHeader)

	_, ok := s.local.Get(positionKey(domain.PositionHeader))
	assert.False(t, ok)
	shared.AssertExpectations(t)
}

func TestSortByPriority_Stable(t *testing.T) {
	a := makeAd("a", 2, baseTime, domain.Targeting{})
	b := makeAd("b", 2, baseTime, domain.Targeting{})
	c := makeAd("c", 7, baseTime.Add(-time.Hour), domain.Targeting{})

	ads := []*domain.Advertisement{a, b, c}
	SortByPriority(ads)

	assert.Equal(t, []string{"c", "a", "b"}, names(ads))
}
