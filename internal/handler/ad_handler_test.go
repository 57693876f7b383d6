package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/internal/render"
	"github.com/techno-flashi/techno-flashi-sub000/tests/mocks"
)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func textAd(title string) *domain.Advertisement {
	return &domain.Advertisement{
		ID:        uuid.New(),
		Name:      title,
		Type:      domain.AdTypeText,
		Content:   &domain.TextAd{Title: title, LinkURL: "https://shop.example.com"},
		Position:  domain.PositionHeader,
		Enabled:   true,
		Targeting: domain.Targeting{Pages: []string{"*"}},
		CreatedAt: time.Now(),
	}
}

func newAdRouter(selector *mocks.MockAdSelector, tracking *mocks.MockTrackingService, recordOnRender bool) *gin.Engine {
	h := NewAdHandler(selector, render.New(""), tracking, recordOnRender)
	router := setupTestRouter()
	router.GET("/api/placements/:position", h.ListAds)
	router.GET("/api/placements/:position/render", h.RenderAds)
	return router
}

func TestListAds_Success(t *testing.T) {
	selector := new(mocks.MockAdSelector)
	router := newAdRouter(selector, new(mocks.MockTrackingService), true)

	ad := textAd("Spring sale")
	selector.On("Select", mock.Anything, domain.PositionHeader, mock.MatchedBy(func(req domain.RequestContext) bool {
		return req.Path == "/ai-tools/gpt-4" && req.EntitySlug == "gpt-4" && req.Country == "SA" && req.DeviceType == "mobile"
	}), 2).Return([]*domain.Advertisement{ad}).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/placements/header?path=/ai-tools/gpt-4&entity=gpt-4&country=sa&device=Mobile&max=2", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Position string           `json:"position"`
			Ads      []map[string]any `json:"ads"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "header", body.Data.Position)
	require.Len(t, body.Data.Ads, 1)
	assert.Equal(t, "Spring sale", body.Data.Ads[0]["title"])

	selector.AssertExpectations(t)
}

func TestListAds_EmptyIsOK(t *testing.T) {
	selector := new(mocks.MockAdSelector)
	router := newAdRouter(selector, new(mocks.MockTrackingService), true)

	selector.On("Select", mock.Anything, domain.PositionFooter, mock.Anything, 0).
		Return([]*domain.Advertisement{}).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/placements/footer", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ads":[]`)
}

func TestListAds_UnknownPosition(t *testing.T) {
	selector := new(mocks.MockAdSelector)
	router := newAdRouter(selector, new(mocks.MockTrackingService), true)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/placements/ceiling", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	selector.AssertNotCalled(t, "Select", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRenderAds_RecordsImpressions(t *testing.T) {
	selector := new(mocks.MockAdSelector)
	tracking := new(mocks.MockTrackingService)
	router := newAdRouter(selector, tracking, true)

	ads := []*domain.Advertisement{textAd("one"), textAd("two")}
	selector.On("Select", mock.Anything, domain.PositionSidebar, mock.Anything, 0).Return(ads).Once()
	tracking.On("RecordImpressions", ads, mock.MatchedBy(func(m domain.EventMeta) bool {
		return m.PageURL == "/blog" && m.UserAgent == "test-agent"
	})).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/placements/sidebar/render?path=/blog", nil)
	req.Header.Set("User-Agent", "test-agent")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "one")
	assert.Contains(t, w.Body.String(), "two")
	assert.Contains(t, w.Body.String(), "/api/ads/"+ads[0].ID.String()+"/click")

	tracking.AssertExpectations(t)
}

func TestRenderAds_RecordingDisabled(t *testing.T) {
	selector := new(mocks.MockAdSelector)
	tracking := new(mocks.MockTrackingService)
	router := newAdRouter(selector, tracking, false)

	selector.On("Select", mock.Anything, domain.PositionHeader, mock.Anything, 0).
		Return([]*domain.Advertisement{textAd("one")}).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/placements/header/render", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	tracking.AssertNotCalled(t, "RecordImpressions", mock.Anything, mock.Anything)
}

func TestRenderAds_PlaceholdersAreNotCounted(t *testing.T) {
	selector := new(mocks.MockAdSelector)
	tracking := new(mocks.MockTrackingService)
	router := newAdRouter(selector, tracking, true)

	good := textAd("good")
	broken := textAd("broken")
	broken.Type = domain.AdType("popunder")
	broken.Content = &domain.UnsupportedAd{Type: "popunder"}

	selector.On("Select", mock.Anything, domain.PositionFooter, mock.Anything, 0).
		Return([]*domain.Advertisement{broken, good}).Once()
	tracking.On("RecordImpressions", []*domain.Advertisement{good}, mock.Anything).Once()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/placements/footer/render", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported ad type: popunder")
	tracking.AssertExpectations(t)
}
