// Package workflow drives the receipt reconciliation session: reviewing
// extracted line items, compensating for extraction gaps, and posting the
// confirmed lines to a job one ledger call at a time.
package workflow

import (
	"context"
	"fmt"
	"time"

	"bitbucket.org/rewixxcloud/jobs_client/config"
	"bitbucket.org/rewixxcloud/jobs_client/models"
	"bitbucket.org/rewixxcloud/jobs_client/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type VerificationStep string

const (
	StepItemsReview  VerificationStep = "ITEMS_REVIEW"
	StepMissingItems VerificationStep = "MISSING_ITEMS"
	StepConfirm      VerificationStep = "CONFIRM"
	StepConfirmed    VerificationStep = "CONFIRMED"
	StepCancelled    VerificationStep = "CANCELLED"
)

type ItemField string

const (
	FieldName     ItemField = "name"
	FieldPrice    ItemField = "price"
	FieldQuantity ItemField = "quantity"
	FieldTotal    ItemField = "total"
)

// reconcileEpsilon absorbs floating-point noise from the extraction service
// when comparing the summed line totals against the receipt subtotal.
var reconcileEpsilon = decimal.NewFromFloat(0.01)

// LineItemLedger posts one finalized receipt line as a material on a job.
type LineItemLedger interface {
	AddReceiptLine(ctx context.Context, jobId int, vendor string, item models.ReceiptItem) (*models.Sale, error)
}

// VerificationSession is the reconciliation workspace for one extracted
// receipt. It is driven from a single goroutine; confirming issues ledger
// calls strictly sequentially.
type VerificationSession struct {
	JobId   int
	Receipt models.ReceiptDraft

	step         VerificationStep
	items        []models.ReceiptItem
	missingItems []models.ReceiptItem
	status       string
	processing   bool
	closeDelay   time.Duration
	logger       *logrus.Logger

	// OnStatus, when set, receives every rolling status update.
	OnStatus func(string)
}

// NewVerificationSession seeds the workspace from an extraction result.
// When the summed line totals disagree with the receipt subtotal by more
// than a cent, exactly one placeholder row carrying the difference (which
// may be negative) is seeded and review starts at the first step; otherwise
// review is unnecessary and the session opens directly on confirmation.
func NewVerificationSession(jobId int, receipt models.ReceiptDraft) *VerificationSession {
	s := &VerificationSession{
		JobId:      jobId,
		Receipt:    receipt,
		items:      append([]models.ReceiptItem{}, receipt.Items...),
		closeDelay: 1500 * time.Millisecond,
		logger:     config.GetLogger(),
	}

	extractedTotal := receipt.ExtractedTotal()
	if extractedTotal.Sub(receipt.Subtotal).Abs().GreaterThan(reconcileEpsilon) {
		s.missingItems = []models.ReceiptItem{{
			Name:     "Missing Item",
			Price:    decimal.Zero,
			Quantity: 1,
			Total:    receipt.Subtotal.Sub(extractedTotal),
		}}
		s.step = StepItemsReview
	} else {
		s.missingItems = []models.ReceiptItem{}
		s.step = StepConfirm
	}
	return s
}

func (s *VerificationSession) Step() VerificationStep { return s.step }
func (s *VerificationSession) Status() string         { return s.status }

func (s *VerificationSession) Items() []models.ReceiptItem {
	return append([]models.ReceiptItem{}, s.items...)
}

func (s *VerificationSession) MissingItems() []models.ReceiptItem {
	return append([]models.ReceiptItem{}, s.missingItems...)
}

// EditItem updates one field of an extracted line. Numeric input coerces
// parse-or-zero, and a price or quantity edit re-derives the stored total
// as price times quantity; extracted items never carry a hand-typed total.
func (s *VerificationSession) EditItem(index int, field ItemField, value string) {
	if index < 0 || index >= len(s.items) {
		return
	}
	item := &s.items[index]
	switch field {
	case FieldName:
		item.Name = value
	case FieldPrice:
		item.Price = parseAmount(value)
	case FieldQuantity:
		item.Quantity = parseQuantity(value)
	default:
		return
	}
	if field == FieldPrice || field == FieldQuantity {
		item.Total = item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
}

// EditMissingItem updates one field of a placeholder row. Here the total is
// directly editable and is deliberately not re-derived from price and
// quantity: the seeded row carries the receipt gap in its total alone.
func (s *VerificationSession) EditMissingItem(index int, field ItemField, value string) {
	if index < 0 || index >= len(s.missingItems) {
		return
	}
	item := &s.missingItems[index]
	switch field {
	case FieldName:
		item.Name = value
	case FieldPrice:
		item.Price = parseAmount(value)
	case FieldQuantity:
		item.Quantity = parseQuantity(value)
	case FieldTotal:
		item.Total = parseAmount(value)
	}
}

func (s *VerificationSession) AddMissingItem() {
	s.missingItems = append(s.missingItems, models.ReceiptItem{
		Name:     "",
		Price:    decimal.Zero,
		Quantity: 1,
		Total:    decimal.Zero,
	})
}

func (s *VerificationSession) RemoveMissingItem(index int) {
	if index < 0 || index >= len(s.missingItems) {
		return
	}
	s.missingItems = append(s.missingItems[:index], s.missingItems[index+1:]...)
}

// Next advances the review. There is no validation gate: the operator may
// proceed to confirmation with totals still mismatched.
func (s *VerificationSession) Next() {
	switch s.step {
	case StepItemsReview:
		s.step = StepMissingItems
	case StepMissingItems:
		s.step = StepConfirm
	}
}

func (s *VerificationSession) Back() {
	switch s.step {
	case StepMissingItems:
		s.step = StepItemsReview
	case StepConfirm:
		s.step = StepMissingItems
	}
}

// Cancel discards the draft. In-flight ledger calls are not aborted.
func (s *VerificationSession) Cancel() {
	if s.step == StepConfirmed {
		return
	}
	s.step = StepCancelled
}

type ConfirmResult struct {
	ReceiptId   string
	Total       decimal.Decimal
	Sales       []models.Sale
	ItemsAdded  int
	ItemsFailed int
}

// Confirm posts every reviewed line (extracted then placeholder, in order)
// to the ledger, one awaited call at a time. A single line failure is
// logged and does not stop the remaining lines; partial success is a normal
// outcome and already-created materials are never rolled back. The total
// carried on the result is the receipt's own total (subtotal plus tax),
// which is trusted for billing even when the line items sum differently.
func (s *VerificationSession) Confirm(ctx context.Context, ledger LineItemLedger) (*ConfirmResult, error) {
	if s.step == StepConfirmed || s.step == StepCancelled {
		return nil, fmt.Errorf("verification session already closed (%s)", s.step)
	}
	if s.processing {
		return nil, fmt.Errorf("confirmation already in progress")
	}
	s.processing = true
	defer func() { s.processing = false }()

	s.setStatus("Processing receipt verification...")

	allItems := make([]models.ReceiptItem, 0, len(s.items)+len(s.missingItems))
	allItems = append(allItems, s.items...)
	allItems = append(allItems, s.missingItems...)

	result := &ConfirmResult{
		ReceiptId: "receipt_" + uuid.NewString(),
		Total:     s.Receipt.Total,
	}

	s.setStatus(fmt.Sprintf("Adding %d items to job...", len(allItems)))

	var lastErr error
	for _, item := range allItems {
		sale, err := ledger.AddReceiptLine(ctx, s.JobId, s.Receipt.Vendor, item)
		if err != nil {
			config.LogError(s.logger, "receiptVerification.go", "Confirm", "adding receipt line", item, err)
			result.ItemsFailed++
			lastErr = err
			continue
		}
		if sale != nil {
			result.Sales = append(result.Sales, *sale)
		}
		result.ItemsAdded++
	}

	if len(allItems) > 0 && result.ItemsAdded == 0 {
		// nothing landed: surface the error and stay open for retry
		s.setStatus(fmt.Sprintf("Error: %v", lastErr))
		return result, lastErr
	}

	s.setStatus("Materials added successfully! Closing...")
	if s.closeDelay > 0 {
		time.Sleep(s.closeDelay)
	}
	s.step = StepConfirmed
	return result, nil
}

func (s *VerificationSession) setStatus(status string) {
	s.status = status
	if s.OnStatus != nil {
		s.OnStatus(status)
	}
}

func parseAmount(value string) decimal.Decimal {
	return utils.ParseDecimalOrZero(value)
}

func parseQuantity(value string) int {
	return int(utils.ParseDecimalOrZero(value).IntPart())
}
