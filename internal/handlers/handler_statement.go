package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statementHandler exposes one endpoint per statement type. Reports are
// computed on demand; nothing is cached server-side.
type statementHandler struct {
	statementService portssvc.StatementSvcFacade
}

func newStatementHandler(ss portssvc.StatementSvcFacade) *statementHandler {
	return &statementHandler{statementService: ss}
}

func registerStatementRoutes(rg *gin.RouterGroup, statementService portssvc.StatementSvcFacade) {
	h := newStatementHandler(statementService)

	statements := rg.Group("/statements")
	{
		statements.GET("/trial-balance", h.trialBalance)
		statements.GET("/income", h.incomeStatement)
		statements.GET("/balance-sheet", h.balanceSheet)
		statements.GET("/equity", h.equityStatement)
		statements.GET("/cashflow", h.cashflowStatement)
		statements.GET("/aging", h.agingSchedule)
	}
}

func (h *statementHandler) trialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	asOf, err := parseDateQuery(c, "asOf", time.Now().UTC())
	if err != nil {
		respondError(c, logger, err, "Invalid statement query")
		return
	}

	report, err := h.statementService.TrialBalance(c.Request.Context(), entityID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to compute trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

// window reads the from/to query parameters shared by the period
// statements.
func window(c *gin.Context) (time.Time, time.Time, error) {
	from, err := requireDateQuery(c, "from")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := requireDateQuery(c, "to")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func (h *statementHandler) incomeStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	from, to, err := window(c)
	if err != nil {
		respondError(c, logger, err, "Invalid statement query")
		return
	}

	report, err := h.statementService.IncomeStatement(c.Request.Context(), entityID, from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to compute income statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *statementHandler) balanceSheet(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	asOf, err := parseDateQuery(c, "asOf", time.Now().UTC())
	if err != nil {
		respondError(c, logger, err, "Invalid statement query")
		return
	}

	report, err := h.statementService.BalanceSheet(c.Request.Context(), entityID, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to compute balance sheet")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *statementHandler) equityStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	from, to, err := window(c)
	if err != nil {
		respondError(c, logger, err, "Invalid statement query")
		return
	}

	report, err := h.statementService.EquityStatement(c.Request.Context(), entityID, from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to compute equity statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *statementHandler) cashflowStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	from, to, err := window(c)
	if err != nil {
		respondError(c, logger, err, "Invalid statement query")
		return
	}

	report, err := h.statementService.CashflowStatement(c.Request.Context(), entityID, from, to)
	if err != nil {
		respondError(c, logger, err, "Failed to compute cashflow statement")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *statementHandler) agingSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	asOf, err := parseDateQuery(c, "asOf", time.Now().UTC())
	if err != nil {
		respondError(c, logger, err, "Invalid statement query")
		return
	}
	category := domain.AccountCategory(strings.ToUpper(c.DefaultQuery("category", string(domain.Asset))))

	report, err := h.statementService.AgingSchedule(c.Request.Context(), entityID, category, asOf)
	if err != nil {
		respondError(c, logger, err, "Failed to compute aging schedule")
		return
	}
	c.JSON(http.StatusOK, report)
}
