package api

import (
	"errors"

	appErrors "github.com/shaikali291/Expense-Tracker-App/errors"
	"github.com/shaikali291/Expense-Tracker-App/internal/ledger"
)

// REQUESTS START:
type RegisterRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type LoginRequest struct {
	UserName string `json:"username"`
	Password string `json:"password"`
}

type TransactionRequest struct {
	Amount   string `json:"amount"` // kept as string until validation
	Category string `json:"category"`
	Date     string `json:"date"` // YYYY-MM-DD, empty means today
	Note     string `json:"note"`
}

// REQUESTS END:

// RESPONSES:

type AccountCreatedResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type TransactionItem struct {
	ID       int64   `json:"id"`
	Amount   float64 `json:"amount"`
	Category string  `json:"category"`
	Date     string  `json:"date"`
	Note     string  `json:"note"`
}

type ListTransactionsResponse struct {
	Transactions []TransactionItem `json:"transactions"`
}

type DeleteTransactionResponse struct {
	Removed bool `json:"removed"`
}

type TotalsResponse struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	Savings      float64 `json:"savings"`
}

type MonthlySeriesResponse struct {
	Labels        []string  `json:"labels"`
	IncomePoints  []float64 `json:"income_points"`
	ExpensePoints []float64 `json:"expense_points"`
}

type DashboardResponse struct {
	TotalIncome   float64           `json:"total_income"`
	TotalExpense  float64           `json:"total_expense"`
	Savings       float64           `json:"savings"`
	Labels        []string          `json:"labels"`
	IncomePoints  []float64         `json:"income_points"`
	ExpensePoints []float64         `json:"expense_points"`
	Incomes       []TransactionItem `json:"incomes"`
	Expenses      []TransactionItem `json:"expenses"`
}

func httpStatusFromError(err error) int {
	switch {
	case errors.Is(err, appErrors.ErrNotFound):
		return 404 // not found
	case errors.Is(err, appErrors.ErrValidation):
		return 400 // bad request
	case errors.Is(err, appErrors.ErrAuth):
		return 401 // wrong credentials
	case errors.Is(err, appErrors.ErrUnauthorized):
		return 401 // no valid session
	case errors.Is(err, appErrors.ErrConflict):
		return 409 // conflict
	default:
		return 500 // internal error
	}
}

func TransactionToHttp(t ledger.Transaction) TransactionItem {
	return TransactionItem{
		ID:       t.ID,
		Amount:   t.Amount,
		Category: t.Category,
		Date:     t.Date.Format(ledger.DateLayout),
		Note:     t.Note,
	}
}

func TransactionsToHttp(ts []ledger.Transaction) []TransactionItem {
	items := make([]TransactionItem, 0, len(ts))
	for _, t := range ts {
		items = append(items, TransactionToHttp(t))
	}
	return items
}

func SeriesToHttp(buckets []ledger.MonthBucket) MonthlySeriesResponse {
	resp := MonthlySeriesResponse{
		Labels:        make([]string, 0, len(buckets)),
		IncomePoints:  make([]float64, 0, len(buckets)),
		ExpensePoints: make([]float64, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		resp.Labels = append(resp.Labels, bucket.Label)
		resp.IncomePoints = append(resp.IncomePoints, bucket.Income)
		resp.ExpensePoints = append(resp.ExpensePoints, bucket.Expense)
	}
	return resp
}
