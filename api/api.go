package api

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/0xcafe-io/iz"

	"github.com/shaikali291/Expense-Tracker-App/internal/auth"
	"github.com/shaikali291/Expense-Tracker-App/internal/ledger"
	"github.com/shaikali291/Expense-Tracker-App/logging"
)

type Api struct {
	Auth   *auth.Provider
	Ledger *ledger.Service
}

func NewApi(provider *auth.Provider, service *ledger.Service) *Api {
	return &Api{
		Auth:   provider,
		Ledger: service,
	}
}

// authorize resolves the Authorization token to a scoped ledger handle.
// The second return value is non-nil when the request must be rejected.
func (api *Api) authorize(r *iz.Request) (ledger.Handle, iz.Responder) {
	token := r.Header.Get("Authorization")
	if token == "" {
		msg := "authorization failed: Authorization header is required."
		return ledger.Handle{}, iz.Respond().Status(401).Text(msg)
	}

	accountId, err := api.Auth.CheckSession(r.Context(), token)
	if err != nil {
		msg := fmt.Sprintf("authorization failed: %s", err.Error())
		return ledger.Handle{}, iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return api.Ledger.Handle(accountId), nil
}

// ACCOUNT HANDLERS.

func (api *Api) RegisterHandler(r *iz.Request) iz.Responder {
	var registerReq RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	newAccount := auth.NewAccount{
		UserName:      registerReq.UserName,
		PasswordPlain: registerReq.Password,
	}

	if _, err := api.Auth.Register(r.Context(), newAccount); err != nil {
		msg := fmt.Sprintf("registration failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	credentials := auth.Credentials{
		UserName:      registerReq.UserName,
		PasswordPlain: registerReq.Password,
	}
	token, err := api.Auth.GenerateSession(r.Context(), credentials)
	if err != nil {
		msg := fmt.Sprintf("registration succeeded but failed to generate session: %v | try login", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := AccountCreatedResponse{
		Message: "Registration Completed",
		Token:   token,
	}
	return iz.Respond().Status(201).JSON(resp)
}

func (api *Api) LoginHandler(r *iz.Request) iz.Responder {
	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		msg := fmt.Sprintf("invalid request body: %s", err.Error())
		return iz.Respond().Status(400).Text(msg)
	}

	credentials := auth.Credentials{
		UserName:      loginReq.UserName,
		PasswordPlain: loginReq.Password,
	}

	token, err := api.Auth.GenerateSession(r.Context(), credentials)
	if err != nil {
		msg := fmt.Sprintf("login failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := LoginResponse{
		Message: "Login Completed",
		Token:   token,
	}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) LogoutHandler(r *iz.Request) iz.Responder {
	token := r.Header.Get("Authorization")
	if token == "" {
		msg := "authorization failed: Authorization header is required."
		return iz.Respond().Status(401).Text(msg)
	}

	if err := api.Auth.Logout(r.Context(), token); err != nil {
		logging.Logger.Errorf("failed to logout: %v", err)
		msg := fmt.Sprintf("logout failed: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).Text("logged out")
}

// INCOME HANDLERS.

func (api *Api) SaveIncomeHandler(r *iz.Request) iz.Responder {
	return api.saveTransaction(r, ledger.Income)
}

func (api *Api) ListIncomeHandler(r *iz.Request) iz.Responder {
	return api.listTransactions(r, ledger.Income)
}

func (api *Api) GetIncomeByIdHandler(r *iz.Request) iz.Responder {
	return api.getTransactionById(r, ledger.Income)
}

func (api *Api) UpdateIncomeHandler(r *iz.Request) iz.Responder {
	return api.updateTransaction(r, ledger.Income)
}

func (api *Api) DeleteIncomeHandler(r *iz.Request) iz.Responder {
	return api.deleteTransaction(r, ledger.Income)
}

// EXPENSE HANDLERS.

func (api *Api) SaveExpenseHandler(r *iz.Request) iz.Responder {
	return api.saveTransaction(r, ledger.Expense)
}

func (api *Api) ListExpenseHandler(r *iz.Request) iz.Responder {
	return api.listTransactions(r, ledger.Expense)
}

func (api *Api) GetExpenseByIdHandler(r *iz.Request) iz.Responder {
	return api.getTransactionById(r, ledger.Expense)
}

func (api *Api) UpdateExpenseHandler(r *iz.Request) iz.Responder {
	return api.updateTransaction(r, ledger.Expense)
}

func (api *Api) DeleteExpenseHandler(r *iz.Request) iz.Responder {
	return api.deleteTransaction(r, ledger.Expense)
}

// SHARED TRANSACTION LOGIC.

func (api *Api) saveTransaction(r *iz.Request, kind ledger.Kind) iz.Responder {
	handle, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	var txnReq TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&txnReq); err != nil {
		msg := fmt.Sprintf("failed to parse save %s request: %v", kind, err)
		return iz.Respond().Status(400).Text(msg)
	}

	t, err := handle.Add(r.Context(), kind, ledger.TransactionRequest{
		Amount:   txnReq.Amount,
		Category: txnReq.Category,
		Date:     txnReq.Date,
		Note:     txnReq.Note,
	})
	if err != nil {
		msg := fmt.Sprintf("failed to create %s: %v", kind, err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(201).JSON(TransactionToHttp(t))
}

func (api *Api) listTransactions(r *iz.Request, kind ledger.Kind) iz.Responder {
	handle, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	ts, err := handle.List(r.Context(), kind)
	if err != nil {
		logging.Logger.Errorf("failed to list %s transactions: %v", kind, err)
		msg := fmt.Sprintf("failed to list %ss", kind)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}

	resp := ListTransactionsResponse{Transactions: TransactionsToHttp(ts)}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) getTransactionById(r *iz.Request, kind ledger.Kind) iz.Responder {
	handle, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		msg := fmt.Sprintf("invalid %s id: %v", kind, err)
		return iz.Respond().Status(400).Text(msg)
	}

	t, err := handle.Get(r.Context(), kind, id)
	if err != nil {
		msg := fmt.Sprintf("failed to get %s: %v", kind, err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(TransactionToHttp(t))
}

func (api *Api) updateTransaction(r *iz.Request, kind ledger.Kind) iz.Responder {
	handle, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		msg := fmt.Sprintf("invalid %s id: %v", kind, err)
		return iz.Respond().Status(400).Text(msg)
	}

	var txnReq TransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&txnReq); err != nil {
		msg := fmt.Sprintf("failed to parse update %s request: %v", kind, err)
		return iz.Respond().Status(400).Text(msg)
	}

	t, err := handle.Update(r.Context(), kind, id, ledger.TransactionRequest{
		Amount:   txnReq.Amount,
		Category: txnReq.Category,
		Date:     txnReq.Date,
		Note:     txnReq.Note,
	})
	if err != nil {
		msg := fmt.Sprintf("failed to update %s: %v", kind, err)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(TransactionToHttp(t))
}

func (api *Api) deleteTransaction(r *iz.Request, kind ledger.Kind) iz.Responder {
	handle, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		msg := fmt.Sprintf("invalid %s id: %v", kind, err)
		return iz.Respond().Status(400).Text(msg)
	}

	removed, err := handle.Delete(r.Context(), kind, id)
	if err != nil {
		logging.Logger.Errorf("failed to delete %s transaction: %v", kind, err)
		msg := fmt.Sprintf("failed to delete %s", kind)
		return iz.Respond().Status(httpStatusFromError(err)).Text(msg)
	}
	return iz.Respond().Status(200).JSON(DeleteTransactionResponse{Removed: removed})
}

// STATISTICS HANDLERS.

func (api *Api) GetTotalsHandler(r *iz.Request) iz.Responder {
	handle, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	totals, err := handle.Totals(r.Context())
	if err != nil {
		logging.Logger.Errorf("failed to get totals: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get totals")
	}

	resp := TotalsResponse{
		TotalIncome:  totals.Income,
		TotalExpense: totals.Expense,
		Savings:      totals.Income - totals.Expense,
	}
	return iz.Respond().Status(200).JSON(resp)
}

func (api *Api) GetMonthlySeriesHandler(r *iz.Request) iz.Responder {
	handle, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	months := ledger.DefaultSeriesMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			msg := fmt.Sprintf("invalid months parameter: '%s'", raw)
			return iz.Respond().Status(400).Text(msg)
		}
		months = parsed
	}

	buckets, err := handle.MonthlySeries(r.Context(), months)
	if err != nil {
		logging.Logger.Errorf("failed to get monthly series: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to get monthly series")
	}
	return iz.Respond().Status(200).JSON(SeriesToHttp(buckets))
}

func (api *Api) GetDashboardHandler(r *iz.Request) iz.Responder {
	handle, denied := api.authorize(r)
	if denied != nil {
		return denied
	}

	totals, err := handle.Totals(r.Context())
	if err != nil {
		logging.Logger.Errorf("failed to get totals for dashboard: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to build dashboard")
	}

	buckets, err := handle.MonthlySeries(r.Context(), ledger.DefaultSeriesMonths)
	if err != nil {
		logging.Logger.Errorf("failed to get monthly series for dashboard: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to build dashboard")
	}

	incomes, err := handle.List(r.Context(), ledger.Income)
	if err != nil {
		logging.Logger.Errorf("failed to list incomes for dashboard: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to build dashboard")
	}

	expenses, err := handle.List(r.Context(), ledger.Expense)
	if err != nil {
		logging.Logger.Errorf("failed to list expenses for dashboard: %v", err)
		return iz.Respond().Status(httpStatusFromError(err)).Text("failed to build dashboard")
	}

	series := SeriesToHttp(buckets)
	resp := DashboardResponse{
		TotalIncome:   totals.Income,
		TotalExpense:  totals.Expense,
		Savings:       totals.Income - totals.Expense,
		Labels:        series.Labels,
		IncomePoints:  series.IncomePoints,
		ExpensePoints: series.ExpensePoints,
		Incomes:       TransactionsToHttp(incomes),
		Expenses:      TransactionsToHttp(expenses),
	}
	return iz.Respond().Status(200).JSON(resp)
}
