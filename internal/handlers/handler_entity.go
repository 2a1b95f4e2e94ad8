package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// entityHandler handles HTTP requests related to accounting entities.
type entityHandler struct {
	entityService portssvc.EntitySvcFacade
}

func newEntityHandler(es portssvc.EntitySvcFacade) *entityHandler {
	return &entityHandler{entityService: es}
}

// registerEntityRoutes registers the entity routes and delegates the
// entity-scoped subtrees to their own handlers.
func registerEntityRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newEntityHandler(services.Entity)

	entities := rg.Group("/entities")
	{
		entities.POST("", h.createEntity)
		entities.GET("", h.listEntities)
		entities.GET("/:entityID", h.getEntity)
		entities.DELETE("/:entityID", h.archiveEntity)

		scoped := entities.Group("/:entityID")
		registerAccountRoutes(scoped, services.Account)
		registerPeriodRoutes(scoped, services.Period)
		registerExchangeRateRoutes(scoped, services.Rate)
		registerTransactionRoutes(scoped, services.Posting)
		registerIntegrityRoutes(scoped, services.Integrity)
		registerStatementRoutes(scoped, services.Statement)
		registerBudgetRoutes(scoped, services.Budget)
	}
}

func (h *entityHandler) createEntity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	entity, err := h.entityService.CreateEntity(c.Request.Context(), req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create entity")
		return
	}

	logger.Info("Entity created", slog.String("entity_id", entity.EntityID))
	c.JSON(http.StatusCreated, dto.ToEntityResponse(entity))
}

func (h *entityHandler) getEntity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	entity, err := h.entityService.GetEntityByID(c.Request.Context(), entityID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve entity")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntityResponse(entity))
}

func (h *entityHandler) listEntities(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	entities, err := h.entityService.ListEntities(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to list entities")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": dto.ToEntityResponses(entities)})
}

func (h *entityHandler) archiveEntity(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	actorID := middleware.GetActorIDFromContext(c)

	if err := h.entityService.ArchiveEntity(c.Request.Context(), entityID, actorID); err != nil {
		respondError(c, logger, err, "Failed to archive entity")
		return
	}

	logger.Info("Entity archived", slog.String("entity_id", entityID))
	c.Status(http.StatusNoContent)
}
