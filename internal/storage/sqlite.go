package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sqlite "modernc.org/sqlite"

	appErrors "github.com/shaikali291/Expense-Tracker-App/errors"
	"github.com/shaikali291/Expense-Tracker-App/internal/auth"
	"github.com/shaikali291/Expense-Tracker-App/internal/contextutil"
	"github.com/shaikali291/Expense-Tracker-App/internal/ledger"
	"github.com/shaikali291/Expense-Tracker-App/logging"
)

const sqliteUniqueConstraint = 2067 // SQLITE_CONSTRAINT_UNIQUE

// Init opens the sqlite database pointed at by DB_PATH and brings the
// schema up to date.
func Init() (*sql.DB, error) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/tracker.db"
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	logging.Logger.Info("Connecting to database...")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;"); err != nil {
		logging.Logger.Warnf("failed to set database pragmas: %v", err)
	}

	logging.Logger.Info("Connected to database successfully")
	logging.Logger.Info("Running migrations...")

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// tableForKind maps a ledger kind onto its table. Table names never come
// from request input.
func tableForKind(kind ledger.Kind) (string, error) {
	switch kind {
	case ledger.Income:
		return "income", nil
	case ledger.Expense:
		return "expense", nil
	default:
		return "", fmt.Errorf("unknown transaction kind: %q", kind)
	}
}

// --- ACCOUNTS --- //

func (s *SQLiteStorage) SaveAccount(ctx context.Context, account auth.Account) (int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO account (username, hashed_password, created_at) VALUES (?, ?, ?);"
	res, err := s.db.ExecContext(ctx, query, account.UserName, account.PasswordHashed, account.CreatedAt)
	if err != nil {
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqliteUniqueConstraint {
			return 0, fmt.Errorf("%w: this '%s' username already taken", appErrors.ErrConflict, account.UserName)
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to save account in Storage.SaveAccount() | Error: %v", traceID, err)
		return 0, fmt.Errorf("%w: failed to save account", appErrors.ErrStorage)
	}

	id, err := res.LastInsertId()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read new account id in Storage.SaveAccount() | Error: %v", traceID, err)
		return 0, fmt.Errorf("%w: failed to save account", appErrors.ErrStorage)
	}
	return id, nil
}

func (s *SQLiteStorage) GetAccountByUsername(ctx context.Context, username string) (auth.Account, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT id, username, hashed_password, created_at FROM account WHERE username = ?;"
	var dbA dbAccount
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&dbA.ID,
		&dbA.UserName,
		&dbA.PasswordHashed,
		&dbA.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Account{}, fmt.Errorf("%w: account does not exist", appErrors.ErrNotFound)
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get account in Storage.GetAccountByUsername() | Error: %v", traceID, err)
		return auth.Account{}, fmt.Errorf("%w: failed to get account", appErrors.ErrStorage)
	}

	return auth.Account{
		ID:             dbA.ID,
		UserName:       dbA.UserName,
		PasswordHashed: dbA.PasswordHashed,
		CreatedAt:      dbA.CreatedAt,
	}, nil
}

// --- SESSIONS --- //

func (s *SQLiteStorage) SaveSession(ctx context.Context, session auth.Session) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "INSERT INTO session (id, token, created_at, expire_at, account_id) VALUES (?, ?, ?, ?, ?);"
	_, err := s.db.ExecContext(ctx, query, session.ID, session.Token, session.CreatedAt, session.ExpireAt, session.AccountID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save session in Storage.SaveSession() | Error: %v", traceID, err)
		return fmt.Errorf("%w: failed to save session", appErrors.ErrStorage)
	}
	return nil
}

func (s *SQLiteStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "SELECT id, token, created_at, expire_at, account_id FROM session WHERE token = ?;"
	var dbS dbSession
	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&dbS.ID,
		&dbS.Token,
		&dbS.CreatedAt,
		&dbS.ExpireAt,
		&dbS.AccountID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Session{}, fmt.Errorf("%w: session does not exist", appErrors.ErrNotFound)
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get session in Storage.GetSessionByToken() | Error: %v", traceID, err)
		return auth.Session{}, fmt.Errorf("%w: failed to get session", appErrors.ErrStorage)
	}

	return auth.Session{
		ID:        dbS.ID,
		Token:     dbS.Token,
		CreatedAt: dbS.CreatedAt,
		ExpireAt:  dbS.ExpireAt,
		AccountID: dbS.AccountID,
	}, nil
}

func (s *SQLiteStorage) UpdateSession(ctx context.Context, accountId int64, expireAt time.Time) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "UPDATE session SET expire_at = ? WHERE account_id = ?;"
	res, err := s.db.ExecContext(ctx, query, expireAt, accountId)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update session in Storage.UpdateSession() | Error: %v", traceID, err)
		return fmt.Errorf("%w: failed to update session", appErrors.ErrStorage)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.UpdateSession() | Error: %v", traceID, err)
		return fmt.Errorf("%w: failed to update session", appErrors.ErrStorage)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: session does not exist", appErrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) DeleteSession(ctx context.Context, token string) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	query := "DELETE FROM session WHERE token = ?;"
	if _, err := s.db.ExecContext(ctx, query, token); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete session in Storage.DeleteSession() | Error: %v", traceID, err)
		return fmt.Errorf("%w: failed to delete session", appErrors.ErrStorage)
	}
	return nil
}

// --- TRANSACTIONS --- //

func (s *SQLiteStorage) SaveTransaction(ctx context.Context, kind ledger.Kind, t ledger.Transaction) (int64, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	table, err := tableForKind(kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf("INSERT INTO %s (account_id, amount, category, date, note) VALUES (?, ?, ?, ?, ?);", table)
	res, err := s.db.ExecContext(ctx, query, t.OwnerID, t.Amount, t.Category, t.Date.Format(ledger.DateLayout), t.Note)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to save transaction in Storage.SaveTransaction() | Error: %v", traceID, err)
		return 0, fmt.Errorf("%w: failed to save transaction", appErrors.ErrStorage)
	}

	id, err := res.LastInsertId()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to read new transaction id in Storage.SaveTransaction() | Error: %v", traceID, err)
		return 0, fmt.Errorf("%w: failed to save transaction", appErrors.ErrStorage)
	}
	return id, nil
}

func (s *SQLiteStorage) GetTransaction(ctx context.Context, ownerId int64, kind ledger.Kind, id int64) (ledger.Transaction, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	table, err := tableForKind(kind)
	if err != nil {
		return ledger.Transaction{}, err
	}

	// Foreign-owned rows fall through to ErrNoRows on purpose: they are
	// indistinguishable from nonexistent ones.
	query := fmt.Sprintf("SELECT id, account_id, amount, category, date, note FROM %s WHERE id = ? AND account_id = ?;", table)
	var dbT dbTransaction
	err = s.db.QueryRowContext(ctx, query, id, ownerId).Scan(
		&dbT.ID,
		&dbT.AccountID,
		&dbT.Amount,
		&dbT.Category,
		&dbT.Date,
		&dbT.Note,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Transaction{}, fmt.Errorf("%w: transaction does not exist", appErrors.ErrNotFound)
		}
		logging.Logger.Errorf("[TraceID=%s] | failed to get transaction in Storage.GetTransaction() | Error: %v", traceID, err)
		return ledger.Transaction{}, fmt.Errorf("%w: failed to get transaction", appErrors.ErrStorage)
	}

	return toLedgerTransaction(dbT)
}

func (s *SQLiteStorage) UpdateTransaction(ctx context.Context, kind ledger.Kind, t ledger.Transaction) error {
	traceID := contextutil.TraceIDFromContext(ctx)

	table, err := tableForKind(kind)
	if err != nil {
		return err
	}

	query := fmt.Sprintf("UPDATE %s SET amount = ?, category = ?, date = ?, note = ? WHERE id = ? AND account_id = ?;", table)
	res, err := s.db.ExecContext(ctx, query, t.Amount, t.Category, t.Date.Format(ledger.DateLayout), t.Note, t.ID, t.OwnerID)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to update transaction in Storage.UpdateTransaction() | Error: %v", traceID, err)
		return fmt.Errorf("%w: failed to update transaction", appErrors.ErrStorage)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.UpdateTransaction() | Error: %v", traceID, err)
		return fmt.Errorf("%w: failed to update transaction", appErrors.ErrStorage)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: transaction does not exist", appErrors.ErrNotFound)
	}
	return nil
}

func (s *SQLiteStorage) DeleteTransaction(ctx context.Context, ownerId int64, kind ledger.Kind, id int64) (bool, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	table, err := tableForKind(kind)
	if err != nil {
		return false, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id = ? AND account_id = ?;", table)
	res, err := s.db.ExecContext(ctx, query, id, ownerId)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to delete transaction in Storage.DeleteTransaction() | Error: %v", traceID, err)
		return false, fmt.Errorf("%w: failed to delete transaction", appErrors.ErrStorage)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to check affected rows in Storage.DeleteTransaction() | Error: %v", traceID, err)
		return false, fmt.Errorf("%w: failed to delete transaction", appErrors.ErrStorage)
	}
	return rowsAffected > 0, nil
}

func (s *SQLiteStorage) ListTransactions(ctx context.Context, ownerId int64, kind ledger.Kind) ([]ledger.Transaction, error) {
	traceID := contextutil.TraceIDFromContext(ctx)

	table, err := tableForKind(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT id, account_id, amount, category, date, note FROM %s WHERE account_id = ? ORDER BY date DESC, id DESC;", table)
	rows, err := s.db.QueryContext(ctx, query, ownerId)
	if err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to list transactions in Storage.ListTransactions() | Error: %v", traceID, err)
		return nil, fmt.Errorf("%w: failed to list transactions", appErrors.ErrStorage)
	}
	defer rows.Close()

	var transactions []ledger.Transaction
	for rows.Next() {
		var dbT dbTransaction
		if err := rows.Scan(&dbT.ID, &dbT.AccountID, &dbT.Amount, &dbT.Category, &dbT.Date, &dbT.Note); err != nil {
			logging.Logger.Errorf("[TraceID=%s] | failed to scan transaction row in Storage.ListTransactions() | Error: %v", traceID, err)
			return nil, fmt.Errorf("%w: failed to list transactions", appErrors.ErrStorage)
		}
		t, err := toLedgerTransaction(dbT)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		logging.Logger.Errorf("[TraceID=%s] | failed to iterate transaction rows in Storage.ListTransactions() | Error: %v", traceID, err)
		return nil, fmt.Errorf("%w: failed to list transactions", appErrors.ErrStorage)
	}
	return transactions, nil
}

func toLedgerTransaction(dbT dbTransaction) (ledger.Transaction, error) {
	date, err := time.ParseInLocation(ledger.DateLayout, dbT.Date, time.UTC)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("%w: malformed stored date '%s'", appErrors.ErrStorage, dbT.Date)
	}
	return ledger.Transaction{
		ID:       dbT.ID,
		OwnerID:  dbT.AccountID,
		Amount:   dbT.Amount,
		Category: dbT.Category,
		Date:     date,
		Note:     dbT.Note,
	}, nil
}
