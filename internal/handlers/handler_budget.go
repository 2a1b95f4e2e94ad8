package handlers

import (
	"log/slog"
	"net/http"

	"github.com/finledger/finledger/internal/apperrors"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// budgetHandler handles HTTP requests for budgets and the variance
// report.
type budgetHandler struct {
	budgetService portssvc.BudgetSvcFacade
}

func newBudgetHandler(bs portssvc.BudgetSvcFacade) *budgetHandler {
	return &budgetHandler{budgetService: bs}
}

func registerBudgetRoutes(rg *gin.RouterGroup, budgetService portssvc.BudgetSvcFacade) {
	h := newBudgetHandler(budgetService)

	budgets := rg.Group("/budgets")
	{
		budgets.POST("", h.createBudget)
		budgets.GET("", h.listBudgets)
		budgets.PUT("/:budgetID", h.updateBudget)
		budgets.DELETE("/:budgetID", h.deleteBudget)
	}
	rg.GET("/periods/:periodID/variance", h.varianceReport)
}

func (h *budgetHandler) createBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var req dto.CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	budget, err := h.budgetService.CreateBudget(c.Request.Context(), entityID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create budget")
		return
	}

	logger.Info("Budget created", slog.String("budget_id", budget.BudgetID))
	c.JSON(http.StatusCreated, dto.ToBudgetResponse(budget))
}

func (h *budgetHandler) listBudgets(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	periodID := c.Query("periodID")
	if periodID == "" {
		respondError(c, logger, apperrors.NewValidationError("periodID query parameter is required"), "Invalid budget query")
		return
	}

	budgets, err := h.budgetService.ListBudgets(c.Request.Context(), entityID, periodID)
	if err != nil {
		respondError(c, logger, err, "Failed to list budgets")
		return
	}
	c.JSON(http.StatusOK, gin.H{"budgets": dto.ToBudgetResponses(budgets)})
}

func (h *budgetHandler) updateBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	budgetID := c.Param("budgetID")

	var req dto.UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	budget, err := h.budgetService.UpdateBudget(c.Request.Context(), entityID, budgetID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to update budget")
		return
	}
	c.JSON(http.StatusOK, dto.ToBudgetResponse(budget))
}

func (h *budgetHandler) deleteBudget(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	budgetID := c.Param("budgetID")
	actorID := middleware.GetActorIDFromContext(c)

	if err := h.budgetService.DeleteBudget(c.Request.Context(), entityID, budgetID, actorID); err != nil {
		respondError(c, logger, err, "Failed to delete budget")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *budgetHandler) varianceReport(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	periodID := c.Param("periodID")

	report, err := h.budgetService.VarianceReport(c.Request.Context(), entityID, periodID)
	if err != nil {
		respondError(c, logger, err, "Failed to compute variance report")
		return
	}
	c.JSON(http.StatusOK, report)
}
