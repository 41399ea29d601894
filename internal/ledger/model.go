package ledger

import (
	"fmt"
	"math"
	"strconv"
	"time"

	appErrors "github.com/shaikali291/Expense-Tracker-App/errors"
)

const (
	MAX_TRANSACTION_AMOUNT_LIMIT    = 999999999999999999
	MAX_TRANSACTION_CATEGORY_LENGTH = 255
	MAX_TRANSACTION_NOTE_LENGTH     = 1000

	DateLayout = "2006-01-02"
)

// Kind separates the two structurally identical ledgers.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

// Transaction is one ledger record. Date carries a calendar day only,
// normalized to midnight UTC.
type Transaction struct {
	ID       int64
	OwnerID  int64
	Amount   float64
	Category string
	Date     time.Time
	Note     string
}

// TransactionRequest is the unvalidated form of a record as the outer
// layers hand it in. Amount and Date stay strings until validation.
type TransactionRequest struct {
	Amount   string
	Category string
	Date     string
	Note     string
}

// Validate parses amount and date and returns the clean pair. An empty
// date defaults to today.
func (req TransactionRequest) Validate(now time.Time) (float64, time.Time, error) {
	if req.Amount == "" {
		return 0, time.Time{}, fmt.Errorf("%w: amount is required", appErrors.ErrValidation)
	}
	amount, err := strconv.ParseFloat(req.Amount, 64)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: amount '%s' is not a number", appErrors.ErrValidation, req.Amount)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0, time.Time{}, fmt.Errorf("%w: amount must be a finite number", appErrors.ErrValidation)
	}
	if amount < 0 {
		return 0, time.Time{}, fmt.Errorf("%w: amount must not be negative", appErrors.ErrValidation)
	}
	if amount > MAX_TRANSACTION_AMOUNT_LIMIT {
		return 0, time.Time{}, fmt.Errorf("%w: maximum allowed amount per transaction is: %d", appErrors.ErrValidation, int64(MAX_TRANSACTION_AMOUNT_LIMIT))
	}
	if req.Category == "" {
		return 0, time.Time{}, fmt.Errorf("%w: category is required", appErrors.ErrValidation)
	}
	if len(req.Category) > MAX_TRANSACTION_CATEGORY_LENGTH {
		return 0, time.Time{}, fmt.Errorf("%w: category so long, maximum allowed length is: %d", appErrors.ErrValidation, MAX_TRANSACTION_CATEGORY_LENGTH)
	}
	if len(req.Note) > MAX_TRANSACTION_NOTE_LENGTH {
		return 0, time.Time{}, fmt.Errorf("%w: note so long, maximum allowed length is: %d", appErrors.ErrValidation, MAX_TRANSACTION_NOTE_LENGTH)
	}

	if req.Date == "" {
		y, m, d := now.UTC().Date()
		return amount, time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.ParseInLocation(DateLayout, req.Date, time.UTC)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("%w: date '%s' is not a valid YYYY-MM-DD date", appErrors.ErrValidation, req.Date)
	}
	return amount, date, nil
}

// Totals is the running income/expense pair for one owner. Savings is
// derived by the caller as Income - Expense.
type Totals struct {
	Income  float64
	Expense float64
}

// MonthBucket is one calendar month of the trailing series, derived on
// demand and never persisted.
type MonthBucket struct {
	Label   string
	Year    int
	Month   time.Month
	Income  float64
	Expense float64
}
