package dto

import (
	"time"

	"github.com/finledger/finledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLineItemRequest is one debit or credit leg in a create request.
type CreateLineItemRequest struct {
	AccountID string          `json:"accountID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Side      string          `json:"side" binding:"required,oneof=DEBIT CREDIT"`
	Notes     string          `json:"notes"`
}

// CreateTransactionRequest is the request body for creating a draft
// transaction. Line items may be supplied here or added one at a time.
type CreateTransactionRequest struct {
	Kind            string                  `json:"kind" binding:"required"`
	Narration       string                  `json:"narration" binding:"required"`
	TransactionDate time.Time               `json:"transactionDate" binding:"required"`
	DueDate         *time.Time              `json:"dueDate,omitempty"`
	MainAccountID   string                  `json:"mainAccountID" binding:"required"`
	LineItems       []CreateLineItemRequest `json:"lineItems,omitempty"`
}

// BatchCreateTransactionsRequest submits several draft transactions in
// one call. Items are processed independently; one failure does not
// abort the rest.
type BatchCreateTransactionsRequest struct {
	Transactions []CreateTransactionRequest `json:"transactions" binding:"required,min=1,dive"`
}

// BatchItemResult reports the outcome for one submitted transaction,
// by its position in the request.
type BatchItemResult struct {
	Index         int    `json:"index"`
	TransactionID string `json:"transactionID,omitempty"`
	Error         string `json:"error,omitempty"`
	Code          string `json:"code,omitempty"`
}

// BatchCreateTransactionsResponse summarizes a bulk submission.
type BatchCreateTransactionsResponse struct {
	Total       int               `json:"total"`
	Successful  int               `json:"successful"`
	Failed      int               `json:"failed"`
	SuccessRate float64           `json:"successRate"` // percentage of items that succeeded
	Results     []BatchItemResult `json:"results"`
}

// UpdateTransactionRequest is the request body for editing a draft
// transaction's header. Nil fields are left unchanged.
type UpdateTransactionRequest struct {
	Narration       *string    `json:"narration,omitempty"`
	TransactionDate *time.Time `json:"transactionDate,omitempty"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
}

// ReverseTransactionRequest is the request body for reversing a posted
// transaction.
type ReverseTransactionRequest struct {
	Date time.Time `json:"date" binding:"required"`
}

// LineItemResponse defines the data returned for a line item.
type LineItemResponse struct {
	LineItemID   string          `json:"lineItemID"`
	AccountID    string          `json:"accountID"`
	Amount       decimal.Decimal `json:"amount"`
	Side         string          `json:"side"`
	CurrencyCode string          `json:"currencyCode"`
	Notes        string          `json:"notes,omitempty"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID   string             `json:"transactionID"`
	EntityID        string             `json:"entityID"`
	Kind            string             `json:"kind"`
	Narration       string             `json:"narration"`
	TransactionDate time.Time          `json:"transactionDate"`
	DueDate         *time.Time         `json:"dueDate,omitempty"`
	MainAccountID   string             `json:"mainAccountID"`
	Status          string             `json:"status"`
	SequenceNo      *int64             `json:"sequenceNo,omitempty"`
	IntegrityHash   string             `json:"integrityHash,omitempty"`
	ReversesID      *string            `json:"reversesID,omitempty"`
	ReversedByID    *string            `json:"reversedByID,omitempty"`
	LineItems       []LineItemResponse `json:"lineItems,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
}

// ListTransactionsParams holds parameters for listing transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListTransactionsResponse is a token-paginated transaction page.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToLineItemResponse converts a domain.LineItem.
func ToLineItemResponse(li *domain.LineItem) LineItemResponse {
	return LineItemResponse{
		LineItemID:   li.LineItemID,
		AccountID:    li.AccountID,
		Amount:       li.Amount,
		Side:         string(li.Side),
		CurrencyCode: li.CurrencyCode,
		Notes:        li.Notes,
	}
}

// ToTransactionResponse converts a domain.Transaction.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	items := make([]LineItemResponse, len(t.LineItems))
	for i := range t.LineItems {
		items[i] = ToLineItemResponse(&t.LineItems[i])
	}
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		EntityID:        t.EntityID,
		Kind:            string(t.Kind),
		Narration:       t.Narration,
		TransactionDate: t.TransactionDate,
		DueDate:         t.DueDate,
		MainAccountID:   t.MainAccountID,
		Status:          string(t.Status),
		SequenceNo:      t.SequenceNo,
		IntegrityHash:   t.IntegrityHash,
		ReversesID:      t.ReversesID,
		ReversedByID:    t.ReversedByID,
		LineItems:       items,
		CreatedAt:       t.CreatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i := range txns {
		responses[i] = ToTransactionResponse(&txns[i])
	}
	return responses
}
