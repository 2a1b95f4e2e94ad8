package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/finledger/finledger/internal/core/ports/services"
	"github.com/finledger/finledger/internal/dto"
	"github.com/finledger/finledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// transactionHandler handles HTTP requests for the posting engine:
// draft lifecycle, posting and reversal.
type transactionHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newTransactionHandler(ps portssvc.PostingSvcFacade) *transactionHandler {
	return &transactionHandler{postingService: ps}
}

func registerTransactionRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvcFacade) {
	h := newTransactionHandler(postingService)

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.POST("/batch", h.batchCreateTransactions)
		txns.GET("", h.listTransactions)
		txns.GET("/:transactionID", h.getTransaction)
		txns.PUT("/:transactionID", h.updateDraft)
		txns.POST("/:transactionID/post", h.postTransaction)
		txns.POST("/:transactionID/reverse", h.reverseTransaction)
		txns.POST("/:transactionID/line-items", h.addLineItem)
		txns.DELETE("/:transactionID/line-items/:lineItemID", h.removeLineItem)
	}
}

func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	txn, err := h.postingService.CreateTransaction(c.Request.Context(), entityID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to create transaction")
		return
	}

	logger.Info("Draft transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("transactionID")

	txn, err := h.postingService.GetTransaction(c.Request.Context(), entityID, transactionID)
	if err != nil {
		respondError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) batchCreateTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var req dto.BatchCreateTransactionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	resp, err := h.postingService.BatchCreateTransactions(c.Request.Context(), entityID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to process transaction batch")
		return
	}

	logger.Info("Transaction batch processed",
		slog.Int("successful", resp.Successful),
		slog.Int("failed", resp.Failed))
	c.JSON(http.StatusOK, resp)
}

func (h *transactionHandler) updateDraft(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("transactionID")

	var req dto.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	txn, err := h.postingService.UpdateDraft(c.Request.Context(), entityID, transactionID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to update transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")

	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, logger, err)
		return
	}

	page, err := h.postingService.ListTransactions(c.Request.Context(), entityID, params)
	if err != nil {
		respondError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *transactionHandler) postTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("transactionID")
	actorID := middleware.GetActorIDFromContext(c)

	txn, err := h.postingService.PostTransaction(c.Request.Context(), entityID, transactionID, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to post transaction")
		return
	}

	logger.Info("Transaction posted",
		slog.String("transaction_id", txn.TransactionID),
		slog.Int64("sequence_no", *txn.SequenceNo))
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) reverseTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("transactionID")

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	reversal, err := h.postingService.ReverseTransaction(c.Request.Context(), entityID, transactionID, req.Date, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to reverse transaction")
		return
	}

	logger.Info("Transaction reversed",
		slog.String("transaction_id", transactionID),
		slog.String("reversal_id", reversal.TransactionID))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(reversal))
}

func (h *transactionHandler) addLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("transactionID")

	var req dto.CreateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, logger, err)
		return
	}

	actorID := middleware.GetActorIDFromContext(c)
	item, err := h.postingService.AddLineItem(c.Request.Context(), entityID, transactionID, req, actorID)
	if err != nil {
		respondError(c, logger, err, "Failed to add line item")
		return
	}
	c.JSON(http.StatusCreated, dto.ToLineItemResponse(item))
}

func (h *transactionHandler) removeLineItem(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entityID := c.Param("entityID")
	transactionID := c.Param("transactionID")
	lineItemID := c.Param("lineItemID")
	actorID := middleware.GetActorIDFromContext(c)

	if err := h.postingService.RemoveLineItem(c.Request.Context(), entityID, transactionID, lineItemID, actorID); err != nil {
		respondError(c, logger, err, "Failed to remove line item")
		return
	}
	c.Status(http.StatusNoContent)
}
