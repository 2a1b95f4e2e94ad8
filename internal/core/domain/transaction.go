package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the state of a transaction in the posting
// lifecycle. The only transitions are DRAFT -> POSTED and
// POSTED -> REVERSED (via an offsetting reversal transaction).
type TransactionStatus string

const (
	Draft    TransactionStatus = "DRAFT"
	Posted   TransactionStatus = "POSTED"
	Reversed TransactionStatus = "REVERSED"
)

// TransactionKind is the closed set of transaction variants. Each kind
// fixes which side line items against the main account must take; all
// kinds share the same balancing and posting machinery.
type TransactionKind string

const (
	CashSale        TransactionKind = "CASH_SALE"
	ClientInvoice   TransactionKind = "CLIENT_INVOICE"
	CashPurchase    TransactionKind = "CASH_PURCHASE"
	SupplierBill    TransactionKind = "SUPPLIER_BILL"
	ClientReceipt   TransactionKind = "CLIENT_RECEIPT"
	SupplierPayment TransactionKind = "SUPPLIER_PAYMENT"
	JournalEntry    TransactionKind = "JOURNAL_ENTRY"
	CreditNote      TransactionKind = "CREDIT_NOTE"
	DebitNote       TransactionKind = "DEBIT_NOTE"
	ContraEntry     TransactionKind = "CONTRA_ENTRY"
)

// kindMainSides maps each kind to the side its main-account line items
// must take. JournalEntry is absent: it places no constraint.
var kindMainSides = map[TransactionKind]NormalSide{
	CashSale:        Debit,  // main: bank/cash account receiving the sale
	ClientInvoice:   Debit,  // main: client receivable
	CashPurchase:    Credit, // main: bank/cash account paying
	SupplierBill:    Credit, // main: supplier payable
	ClientReceipt:   Credit, // main: client receivable being settled
	SupplierPayment: Debit,  // main: supplier payable being settled
	CreditNote:      Credit, // main: client receivable being reduced
	DebitNote:       Debit,  // main: supplier payable being reduced
	ContraEntry:     Debit,  // main: destination bank/cash account
}

// MainSide returns the required side for line items against the main
// account, and whether the kind constrains it at all.
func (k TransactionKind) MainSide() (NormalSide, bool) {
	side, ok := kindMainSides[k]
	return side, ok
}

// IsValid reports whether k is one of the closed set of kinds.
func (k TransactionKind) IsValid() bool {
	if k == JournalEntry {
		return true
	}
	_, ok := kindMainSides[k]
	return ok
}

// LineItem is one debit or credit leg of a transaction against a
// single account. Amount is strictly positive; direction is carried by
// Side, never by sign. The currency is inherited from the account.
// Line items of a Draft transaction are mutable, of a Posted
// transaction immutable.
type LineItem struct {
	LineItemID    string          `json:"lineItemID"`    // Primary Key (UUID)
	TransactionID string          `json:"transactionID"` // FK -> transactions (Not Null)
	AccountID     string          `json:"accountID"`     // FK -> accounts (Not Null)
	Amount        decimal.Decimal `json:"amount"`        // Positive value
	Side          NormalSide      `json:"side"`          // DEBIT or CREDIT
	CurrencyCode  string          `json:"currencyCode"`  // Inherited from the account
	Notes         string          `json:"notes"`
	AuditFields
}

// Transaction represents a single financial event composed of balanced
// debit and credit line items. SequenceNo and IntegrityHash are
// assigned only on posting, never before.
type Transaction struct {
	TransactionID   string            `json:"transactionID"` // Primary Key (UUID)
	EntityID        string            `json:"entityID"`      // FK -> entities (Not Null)
	Kind            TransactionKind   `json:"kind"`
	Narration       string            `json:"narration"`
	TransactionDate time.Time         `json:"transactionDate"`
	DueDate         *time.Time        `json:"dueDate,omitempty"` // Settlement due date (invoices/bills)
	MainAccountID   string            `json:"mainAccountID"`     // FK -> accounts (Not Null)
	Status          TransactionStatus `json:"status"`
	SequenceNo      *int64            `json:"sequenceNo,omitempty"`    // Gap-free per entity, set on post
	IntegrityHash   string            `json:"integrityHash,omitempty"` // Chain hash, set on post
	// ReversesID links a reversal back to the transaction it offsets;
	// ReversedByID links a reversed transaction forward to its reversal.
	ReversesID   *string    `json:"reversesID,omitempty"`
	ReversedByID *string    `json:"reversedByID,omitempty"`
	LineItems    []LineItem `json:"lineItems,omitempty"`
	AuditFields
}

// IsPosted reports whether the transaction has been posted (including
// posted-then-reversed ones, whose historical record stays intact).
func (t Transaction) IsPosted() bool {
	return t.Status == Posted || t.Status == Reversed
}

// DebitTotal sums the debit-side line item amounts without conversion.
func (t Transaction) DebitTotal() decimal.Decimal {
	return t.sideTotal(Debit)
}

// CreditTotal sums the credit-side line item amounts without conversion.
func (t Transaction) CreditTotal() decimal.Decimal {
	return t.sideTotal(Credit)
}

func (t Transaction) sideTotal(side NormalSide) decimal.Decimal {
	total := decimal.Zero
	for _, li := range t.LineItems {
		if li.Side == side {
			total = total.Add(li.Amount)
		}
	}
	return total
}
