package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// periodHandler handles HTTP requests for reporting periods.
type periodHandler struct {
	periodService portssvc.PeriodSvcFacade
}

func newPeriodHandler(ps portssvc.PeriodSvcFacade) *periodHandler {
	return &periodHandler{periodService: ps}
}

func registerPeriodRoutes(rg *gin.RouterGroup, periodService portssvc.PeriodSvcFacade) {
	h := newPeriodHandler(periodService)

	periods := rg.Group("/periods")
	{
		periods.POST("", h.createPeriod)
		periods.GET("", h.listPeriods)
		periods.GET("/:periodID", h.getPeriod)
		periods.POST("/:periodID/close", h.closePeriod)
		periods.POST("/:periodID/reopen", h.reopenPeriod)
	}
}

func (h *periodHandler) createPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var req dto.CreatePeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	period, err := h.periodService.CreatePeriod(c.Request.Context(), entityID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create period")
		return
	}

	logger.Info("Period created", slog.String("period_id", period.PeriodID), slog.String("name", period.Name))
	c.JSON(http.StatusCreated, dto.ToPeriodResponse(period))
}

func (h *periodHandler) getPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	periodID := c.Param("periodID")

	period, err := h.periodService.GetPeriodByID(c.Request.Context(), entityID, periodID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(period))
}

func (h *periodHandler) listPeriods(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	periods, err := h.periodService.ListPeriods(c.Request.Context(), entityID)
	if err != nil {
		respondError(c, logger, err, "Failed to list periods")
		return
	}
	c.JSON(http.StatusOK, gin.H{"periods": dto.ToPeriodResponses(periods)})
}

func (h *periodHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	periodID := c.Param("periodID")
	actorID := middleware.GetActorIDFromContext(c)

	if err := h.periodService.ClosePeriod(c.Request.Context(), entityID, periodID, actorID); err != nil {
		respondError(c, logger, err, "Failed to close period")
		return
	}

	logger.Info("Period closed", slog.String("period_id", periodID))
	c.Status(http.StatusNoContent)
}

func (h *periodHandler) reopenPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	periodID := c.Param("periodID")
	actorID := middleware.GetActorIDFromContext(c)

	if err := h.periodService.ReopenPeriod(c.Request.Context(), entityID, periodID, actorID); err != nil {
		respondError(c, logger, err, "Failed to reopen period")
		return
	}

	logger.Info("Period reopened", slog.String("period_id", periodID))
	c.Status(http.StatusNoContent)
}
