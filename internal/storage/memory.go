package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	appErrors "github.com/shaikali291/Expense-Tracker-App/errors"
	"github.com/shaikali291/Expense-Tracker-App/internal/auth"
	"github.com/shaikali291/Expense-Tracker-App/internal/ledger"
)

// MemoryStorage keeps everything in process memory behind one mutex. It
// backs tests and the DB_BACKEND=memory mode; the mutex serializes
// concurrent mutations the same way the sqlite backend does.
type MemoryStorage struct {
	mu sync.Mutex

	accounts      []auth.Account
	nextAccountID int64

	sessions map[string]auth.Session

	transactions map[ledger.Kind][]ledger.Transaction
	nextTxnID    map[ledger.Kind]int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		nextAccountID: 1,
		sessions:      make(map[string]auth.Session),
		transactions: map[ledger.Kind][]ledger.Transaction{
			ledger.Income:  nil,
			ledger.Expense: nil,
		},
		nextTxnID: map[ledger.Kind]int64{
			ledger.Income:  1,
			ledger.Expense: 1,
		},
	}
}

// --- ACCOUNTS --- //

func (m *MemoryStorage) SaveAccount(ctx context.Context, account auth.Account) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Uniqueness is checked under the lock so only one concurrent
	// registration of the same username can win.
	for _, existing := range m.accounts {
		if existing.UserName == account.UserName {
			return 0, fmt.Errorf("%w: this '%s' username already taken", appErrors.ErrConflict, account.UserName)
		}
	}

	account.ID = m.nextAccountID
	m.nextAccountID++
	m.accounts = append(m.accounts, account)
	return account.ID, nil
}

func (m *MemoryStorage) GetAccountByUsername(ctx context.Context, username string) (auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, account := range m.accounts {
		if account.UserName == username {
			return account, nil
		}
	}
	return auth.Account{}, fmt.Errorf("%w: account does not exist", appErrors.ErrNotFound)
}

// --- SESSIONS --- //

func (m *MemoryStorage) SaveSession(ctx context.Context, session auth.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session.Token] = session
	return nil
}

func (m *MemoryStorage) GetSessionByToken(ctx context.Context, token string) (auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[token]
	if !ok {
		return auth.Session{}, fmt.Errorf("%w: session does not exist", appErrors.ErrNotFound)
	}
	return session, nil
}

func (m *MemoryStorage) UpdateSession(ctx context.Context, accountId int64, expireAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	updated := false
	for token, session := range m.sessions {
		if session.AccountID == accountId {
			session.ExpireAt = expireAt
			m.sessions[token] = session
			updated = true
		}
	}
	if !updated {
		return fmt.Errorf("%w: session does not exist", appErrors.ErrNotFound)
	}
	return nil
}

func (m *MemoryStorage) DeleteSession(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}

// --- TRANSACTIONS --- //

func (m *MemoryStorage) SaveTransaction(ctx context.Context, kind ledger.Kind, t ledger.Transaction) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !kind.Valid() {
		return 0, fmt.Errorf("unknown transaction kind: %q", kind)
	}

	t.ID = m.nextTxnID[kind]
	m.nextTxnID[kind]++
	m.transactions[kind] = append(m.transactions[kind], t)
	return t.ID, nil
}

func (m *MemoryStorage) GetTransaction(ctx context.Context, ownerId int64, kind ledger.Kind, id int64) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, t := range m.transactions[kind] {
		if t.ID == id && t.OwnerID == ownerId {
			return t, nil
		}
	}
	return ledger.Transaction{}, fmt.Errorf("%w: transaction does not exist", appErrors.ErrNotFound)
}

func (m *MemoryStorage) UpdateTransaction(ctx context.Context, kind ledger.Kind, t ledger.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.transactions[kind] {
		if existing.ID == t.ID && existing.OwnerID == t.OwnerID {
			m.transactions[kind][i] = t
			return nil
		}
	}
	return fmt.Errorf("%w: transaction does not exist", appErrors.ErrNotFound)
}

func (m *MemoryStorage) DeleteTransaction(ctx context.Context, ownerId int64, kind ledger.Kind, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, t := range m.transactions[kind] {
		if t.ID == id && t.OwnerID == ownerId {
			m.transactions[kind] = append(m.transactions[kind][:i], m.transactions[kind][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryStorage) ListTransactions(ctx context.Context, ownerId int64, kind ledger.Kind) ([]ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result []ledger.Transaction
	for _, t := range m.transactions[kind] {
		if t.OwnerID == ownerId {
			result = append(result, t)
		}
	}

	// Date descending, insertion order descending on ties. Ids are
	// monotonic so they stand in for insertion order.
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}
