package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/techno-flashi/techno-flashi-sub000/internal/domain"
	"github.com/techno-flashi/techno-flashi-sub000/internal/logger"
	"github.com/techno-flashi/techno-flashi-sub000/internal/service"
	"github.com/techno-flashi/techno-flashi-sub000/pkg/response"
	"github.com/techno-flashi/techno-flashi-sub000/pkg/validator"
)

type TrackingService interface {
	Track(ctx context.Context, adID uuid.UUID, req *domain.TrackEventRequest, userAgent string) error
	Click(ctx context.Context, adID uuid.UUID, meta domain.EventMeta) (string, error)
	RecordImpressions(ads []*domain.Advertisement, meta domain.EventMeta)
}

type TrackingHandler struct {
	service TrackingService
}

func NewTrackingHandler(service TrackingService) *TrackingHandler {
	return &TrackingHandler{service: service}
}

// TrackEvent accepts a client-reported interaction. The event is queued,
// so success means accepted, not stored.
func (h *TrackingHandler) TrackEvent(c *gin.Context) {
	adID, ok := adIDParam(c)
	if !ok {
		return
	}

	var req domain.TrackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if errs := validator.Validate(&req); len(errs) > 0 {
		response.ValidationErrors(c, errs)
		return
	}

	if err := h.service.Track(c.Request.Context(), adID, &req, c.Request.UserAgent()); err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalServerError(c, "Failed to track event")
		return
	}

	response.Accepted(c, "Event accepted")
}

// Click records the click and redirects to the ad's own target URL.
func (h *TrackingHandler) Click(c *gin.Context) {
	adID, ok := adIDParam(c)
	if !ok {
		return
	}

	pageURL := c.Query("page")
	if pageURL == "" {
		pageURL = c.Request.Referer()
	}

	target, err := h.service.Click(c.Request.Context(), adID, eventMeta(c, pageURL))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAdNotFound):
			response.NotFound(c, "Advertisement not found")
		case errors.Is(err, service.ErrNoTarget):
			response.NotFound(c, "Advertisement has no target URL")
		default:
			logger.FromContext(c.Request.Context()).Error("Failed to resolve click",
				slog.String("ad_id", adID.String()),
				slog.String("error", err.Error()),
			)
			response.InternalServerError(c, "Failed to resolve click")
		}
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Redirect(http.StatusFound, target)
}

func adIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid advertisement id")
		return uuid.Nil, false
	}
	return id, true
}
