package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
	"github.com/techno-flashi/techno-flashi-sub000/internal/render"
	"github.com/techno-flashi/techno-flashi-sub000/pkg/detector"
	"github.com/techno-flashi/techno-flashi-sub000/pkg/response"
)

type AdSelector interface {
	Select(ctx context.Context, position domain.Position, req domain.RequestContext, maxAds int) []*domain.Advertisement
}

type AdHandler struct {
	selector       AdSelector
	renderer       *render.Renderer
	tracking       TrackingService
	recordOnRender bool
}

func NewAdHandler(selector AdSelector, renderer *render.Renderer, tracking TrackingService, recordOnRender bool) *AdHandler {
	return &AdHandler{
		selector:       selector,
		renderer:       renderer,
		tracking:       tracking,
		recordOnRender: recordOnRender,
	}
}

type adListResponse struct {
	Position domain.Position         `json:"position"`
	Ads      []*domain.Advertisement `json:"ads"`
}

// ListAds returns the eligible ads for a position as JSON. An empty list is
// a normal answer.
func (h *AdHandler) ListAds(c *gin.Context) {
	position, ok := domain.ParsePosition(c.Param("position"))
	if !ok {
		response.BadRequest(c, "Unknown ad position")
		return
	}

	req := requestContext(c)
	ads := h.selector.Select(c.Request.Context(), position, req, queryInt(c, "max", 0))

	c.Header("Cache-Control", "no-store")
	response.OK(c, "", adListResponse{Position: position, Ads: ads})
}

// RenderAds returns the eligible ads for a position as an HTML fragment and
// records an impression for every ad that rendered real content.
func (h *AdHandler) RenderAds(c *gin.Context) {
	position, ok := domain.ParsePosition(c.Param("position"))
	if !ok {
		response.BadRequest(c, "Unknown ad position")
		return
	}

	req := requestContext(c)
	ads := h.selector.Select(c.Request.Context(), position, req, queryInt(c, "max", 0))
	units := h.renderer.RenderAll(ads)

	if h.recordOnRender {
		if served := servedAds(ads, units); len(served) > 0 {
			h.tracking.RecordImpressions(served, eventMeta(c, req.Path))
		}
	}

	logger.FromContext(c.Request.Context()).Debug("Rendered ads",
		slog.String("position", string(position)),
		slog.Int("count", len(units)),
	)

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(render.Fragment(units)))
}

// servedAds drops ads whose unit fell back to a placeholder. RenderAll keeps
// input order.
func servedAds(ads []*domain.Advertisement, units []render.Unit) []*domain.Advertisement {
	served := make([]*domain.Advertisement, 0, len(ads))
	for i, u := range units {
		if !u.Placeholder && i < len(ads) {
			served = append(served, ads[i])
		}
	}
	return served
}

// requestContext reads the host page details from the query string and
// falls back to request headers for device and country.
func requestContext(c *gin.Context) domain.RequestContext {
	path := c.Query("path")
	if path == "" {
		path = "/"
	}

	device := strings.ToLower(c.Query("device"))
	if device == "" {
		if dt := detector.DetectDeviceType(c.Request.UserAgent()); dt != detector.DeviceUnknown {
			device = dt
		}
	}

	country := c.Query("country")
	if country == "" {
		country = c.GetHeader("CF-IPCountry")
	}

	return domain.RequestContext{
		Path:       path,
		DeviceType: device,
		Country:    strings.ToUpper(country),
		EntitySlug: c.Query("entity"),
	}
}

func eventMeta(c *gin.Context, pageURL string) domain.EventMeta {
	country := c.Query("country")
	if country == "" {
		country = c.GetHeader("CF-IPCountry")
	}

	return domain.EventMeta{
		PageURL:   pageURL,
		Referrer:  c.Request.Referer(),
		UserAgent: c.Request.UserAgent(),
		Country:   strings.ToUpper(country),
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if raw := c.Query(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}
