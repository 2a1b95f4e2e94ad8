package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/finledger/finledger/internal/apperrors"
	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler handles HTTP requests for exchange rates and
// conversion queries within an entity.
type exchangeRateHandler struct {
	rateService portssvc.RateSvcFacade
}

func newExchangeRateHandler(rs portssvc.RateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{rateService: rs}
}

func registerExchangeRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade) {
	h := newExchangeRateHandler(rateService)

	rates := rg.Group("/rates")
	{
		rates.POST("", h.createExchangeRate)
		rates.GET("", h.listRates)
		rates.GET("/convert", h.convert)
	}
}

func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	rate, err := h.rateService.CreateExchangeRate(c.Request.Context(), entityID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create exchange rate")
		return
	}

	logger.Info("Exchange rate created",
		slog.String("exchange_rate_id", rate.ExchangeRateID),
		slog.String("pair", rate.FromCurrencyCode+"/"+rate.ToCurrencyCode))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

func (h *exchangeRateHandler) listRates(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	rates, err := h.rateService.ListRates(c.Request.Context(), entityID)
	if err != nil {
		respondError(c, logger, err, "Failed to list exchange rates")
		return
	}

	responses := make([]dto.ExchangeRateResponse, len(rates))
	for i := range rates {
		responses[i] = dto.ToExchangeRateResponse(&rates[i])
	}
	c.JSON(http.StatusOK, gin.H{"rates": responses})
}

// convert answers "what is X FROM in TO as of DATE" without storing
// anything. Date defaults to today.
func (h *exchangeRateHandler) convert(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	from := strings.ToUpper(c.Query("from"))
	to := strings.ToUpper(c.Query("to"))
	if from == "" || to == "" {
		respondError(c, logger, apperrors.NewValidationError("from and to query parameters are required"), "Invalid conversion query")
		return
	}

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		respondError(c, logger, apperrors.NewValidationError("invalid amount: "+c.Query("amount")), "Invalid conversion query")
		return
	}

	date, err := parseDateQuery(c, "date", time.Now().UTC())
	if err != nil {
		respondError(c, logger, err, "Invalid conversion query")
		return
	}

	converted, err := h.rateService.Convert(c.Request.Context(), entityID, amount, from, to, date)
	if err != nil {
		respondError(c, logger, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		Amount:           amount,
		FromCurrencyCode: from,
		ToCurrencyCode:   to,
		Converted:        converted,
		Date:             date,
	})
}
