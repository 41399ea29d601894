package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/0xcafe-io/iz"
	"github.com/rs/cors"

	"github.com/shaikali291/Expense-Tracker-App/api"
	"github.com/shaikali291/Expense-Tracker-App/internal/auth"
	"github.com/shaikali291/Expense-Tracker-App/internal/ledger"
	"github.com/shaikali291/Expense-Tracker-App/internal/storage"
	"github.com/shaikali291/Expense-Tracker-App/logging"
)

var corsConf = cors.New(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"Authorization", "Content-Type"},
	AllowCredentials: true,
})

func main() {
	if err := logging.Init("debug"); err != nil {
		fmt.Println("failed to initialize logger:", err)
		return
	}

	logging.Logger.Info("application starting...")

	var authStorage auth.Storage
	var ledgerStorage ledger.Storage

	if os.Getenv("DB_BACKEND") == "memory" {
		mem := storage.NewMemoryStorage()
		authStorage, ledgerStorage = mem, mem
	} else {
		db, err := storage.Init()
		if err != nil {
			logging.Logger.Errorf("failed to initialize database: %v", err)
			return
		}
		defer db.Close()
		sqliteStorage := storage.NewSQLiteStorage(db)
		authStorage, ledgerStorage = sqliteStorage, sqliteStorage
	}

	authProvider := auth.NewProvider(authStorage, auth.NewBcryptHasher())
	ledgerService := ledger.NewService(ledgerStorage)

	server := http.NewServeMux()
	api := api.NewApi(&authProvider, &ledgerService)

	// ACCOUNT ENDPOINTS.
	server.HandleFunc("POST /api/register", iz.Bind(api.RegisterHandler)) // Create Account
	server.HandleFunc("POST /api/login", iz.Bind(api.LoginHandler))       // Login
	server.HandleFunc("GET /api/logout", iz.Bind(api.LogoutHandler))      // Logout

	// INCOME ENDPOINTS.
	server.HandleFunc("POST /api/income", iz.Bind(api.SaveIncomeHandler))          // Create Income
	server.HandleFunc("GET /api/income", iz.Bind(api.ListIncomeHandler))           // List Incomes
	server.HandleFunc("GET /api/income/{id}", iz.Bind(api.GetIncomeByIdHandler))   // Get Income by ID
	server.HandleFunc("PUT /api/income/{id}", iz.Bind(api.UpdateIncomeHandler))    // Update Income
	server.HandleFunc("DELETE /api/income/{id}", iz.Bind(api.DeleteIncomeHandler)) // Delete Income

	// EXPENSE ENDPOINTS.
	server.HandleFunc("POST /api/expense", iz.Bind(api.SaveExpenseHandler))          // Create Expense
	server.HandleFunc("GET /api/expense", iz.Bind(api.ListExpenseHandler))           // List Expenses
	server.HandleFunc("GET /api/expense/{id}", iz.Bind(api.GetExpenseByIdHandler))   // Get Expense by ID
	server.HandleFunc("PUT /api/expense/{id}", iz.Bind(api.UpdateExpenseHandler))    // Update Expense
	server.HandleFunc("DELETE /api/expense/{id}", iz.Bind(api.DeleteExpenseHandler)) // Delete Expense

	// STATISTICS ENDPOINTS.
	server.HandleFunc("GET /api/totals", iz.Bind(api.GetTotalsHandler))        // Running totals + savings
	server.HandleFunc("GET /api/series", iz.Bind(api.GetMonthlySeriesHandler)) // Trailing monthly series
	server.HandleFunc("GET /api/dashboard", iz.Bind(api.GetDashboardHandler))  // Dashboard aggregate

	port := os.Getenv("APP_PORT")
	if port == "" {
		logging.Logger.Info("APP_PORT environment variable not set, using default port 8080")
		port = "8080"
	}
	fmt.Println("Starting server on port: ", port)
	handlerWithCors := corsConf.Handler(server)
	if err := http.ListenAndServe(":"+port, handlerWithCors); err != nil {
		logging.Logger.Errorf("failed to start server: %v", err)
		return
	}
}
