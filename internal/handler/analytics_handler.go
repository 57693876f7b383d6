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
)

type AnalyticsService interface {
	GetPerformance(ctx context.Context, adID uuid.UUID, days int) (*domain.AdPerformance, error)
	GetEventHistory(ctx context.Context, adID uuid.UUID, page, pageSize int) (*domain.EventHistory, error)
}

type AnalyticsHandler struct {
	service AnalyticsService
}

func NewAnalyticsHandler(service AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

func (h *AnalyticsHandler) GetPerformance(c *gin.Context) {
	adID, ok := adIDParam(c)
	if !ok {
		return
	}

	days := queryInt(c, "days", 30)

	perf, err := h.service.GetPerformance(c.Request.Context(), adID, days)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			response.BadRequest(c, err.Error())
		case errors.Is(err, domain.ErrAdNotFound):
			response.NotFound(c, "Advertisement not found")
		default:
			logger.FromContext(c.Request.Context()).Error("Failed to get ad performance",
				slog.String("ad_id", adID.String()),
				slog.String("error", err.Error()),
			)
			response.InternalServerError(c, "Failed to get ad performance")
		}
		return
	}

	response.Success(c, http.StatusOK, "Performance retrieved successfully", perf)
}

func (h *AnalyticsHandler) GetEventHistory(c *gin.Context) {
	adID, ok := adIDParam(c)
	if !ok {
		return
	}

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 20)

	history, err := h.service.GetEventHistory(c.Request.Context(), adID, page, pageSize)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			response.BadRequest(c, err.Error())
			return
		}
		logger.FromContext(c.Request.Context()).Error("Failed to get event history",
			slog.String("ad_id", adID.String()),
			slog.String("error", err.Error()),
		)
		response.InternalServerError(c, "Failed to get event history")
		return
	}

	response.Paginated(c, history.Events, response.Meta{
		Page:       history.Page,
		PageSize:   history.PageSize,
		Total:      history.Total,
		TotalPages: history.TotalPages,
	})
}
