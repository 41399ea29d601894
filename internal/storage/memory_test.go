package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErrors "github.com/shaikali291/Expense-Tracker-App/errors"
	"github.com/shaikali291/Expense-Tracker-App/internal/auth"
	"github.com/shaikali291/Expense-Tracker-App/internal/ledger"
)

func day(value string) time.Time {
	d, err := time.ParseInLocation(ledger.DateLayout, value, time.UTC)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMemorySaveAccountDuplicate(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	id, err := mem.SaveAccount(ctx, auth.Account{UserName: "alice", PasswordHashed: "h1"})
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	_, err = mem.SaveAccount(ctx, auth.Account{UserName: "alice", PasswordHashed: "h2"})
	require.ErrorIs(t, err, appErrors.ErrConflict)

	account, err := mem.GetAccountByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "h1", account.PasswordHashed)
}

func TestMemoryConcurrentRegisterSingleWinner(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	const attempts = 32
	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := mem.SaveAccount(ctx, auth.Account{UserName: "alice", PasswordHashed: "h"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, appErrors.ErrConflict)
		}
	}
	require.Equal(t, 1, succeeded)
}

func TestMemoryTransactionOwnerScoping(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	id, err := mem.SaveTransaction(ctx, ledger.Income, ledger.Transaction{
		OwnerID:  1,
		Amount:   100,
		Category: "salary",
		Date:     day("2024-01-05"),
	})
	require.NoError(t, err)

	_, err = mem.GetTransaction(ctx, 2, ledger.Income, id)
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	ts, err := mem.ListTransactions(ctx, 2, ledger.Income)
	require.NoError(t, err)
	require.Empty(t, ts)

	removed, err := mem.DeleteTransaction(ctx, 2, ledger.Income, id)
	require.NoError(t, err)
	require.False(t, removed)

	ts, err = mem.ListTransactions(ctx, 1, ledger.Income)
	require.NoError(t, err)
	require.Len(t, ts, 1)
}

func TestMemoryIdsNeverReused(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	first, err := mem.SaveTransaction(ctx, ledger.Expense, ledger.Transaction{OwnerID: 1, Amount: 5, Category: "a", Date: day("2024-01-05")})
	require.NoError(t, err)

	removed, err := mem.DeleteTransaction(ctx, 1, ledger.Expense, first)
	require.NoError(t, err)
	require.True(t, removed)

	second, err := mem.SaveTransaction(ctx, ledger.Expense, ledger.Transaction{OwnerID: 1, Amount: 6, Category: "b", Date: day("2024-01-06")})
	require.NoError(t, err)
	require.Greater(t, second, first)
}

func TestMemoryListOrdering(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	older, err := mem.SaveTransaction(ctx, ledger.Income, ledger.Transaction{OwnerID: 1, Amount: 1, Category: "a", Date: day("2024-01-10")})
	require.NoError(t, err)
	newest, err := mem.SaveTransaction(ctx, ledger.Income, ledger.Transaction{OwnerID: 1, Amount: 2, Category: "b", Date: day("2024-03-01")})
	require.NoError(t, err)
	tie, err := mem.SaveTransaction(ctx, ledger.Income, ledger.Transaction{OwnerID: 1, Amount: 3, Category: "c", Date: day("2024-01-10")})
	require.NoError(t, err)

	ts, err := mem.ListTransactions(ctx, 1, ledger.Income)
	require.NoError(t, err)
	require.Len(t, ts, 3)
	require.Equal(t, newest, ts[0].ID)
	require.Equal(t, tie, ts[1].ID)
	require.Equal(t, older, ts[2].ID)
}

func TestMemoryUpdateIsFullReplacement(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	id, err := mem.SaveTransaction(ctx, ledger.Expense, ledger.Transaction{OwnerID: 1, Amount: 20, Category: "food", Date: day("2024-01-05"), Note: "lunch"})
	require.NoError(t, err)

	err = mem.UpdateTransaction(ctx, ledger.Expense, ledger.Transaction{
		ID:       id,
		OwnerID:  1,
		Amount:   30,
		Category: "transport",
		Date:     day("2024-02-01"),
		Note:     "",
	})
	require.NoError(t, err)

	got, err := mem.GetTransaction(ctx, 1, ledger.Expense, id)
	require.NoError(t, err)
	require.Equal(t, 30.0, got.Amount)
	require.Equal(t, "transport", got.Category)
	require.Equal(t, "", got.Note)

	// foreign owner cannot update
	err = mem.UpdateTransaction(ctx, ledger.Expense, ledger.Transaction{ID: id, OwnerID: 2, Amount: 1, Category: "x", Date: day("2024-02-01")})
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestMemorySessions(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStorage()

	session := auth.Session{
		ID:        "s1",
		Token:     "tok",
		CreatedAt: time.Now().UTC(),
		ExpireAt:  time.Now().UTC().Add(24 * time.Hour),
		AccountID: 1,
	}
	require.NoError(t, mem.SaveSession(ctx, session))

	got, err := mem.GetSessionByToken(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, session.AccountID, got.AccountID)

	newExpire := time.Now().UTC().Add(48 * time.Hour)
	require.NoError(t, mem.UpdateSession(ctx, 1, newExpire))
	got, err = mem.GetSessionByToken(ctx, "tok")
	require.NoError(t, err)
	require.True(t, got.ExpireAt.Equal(newExpire))

	require.NoError(t, mem.DeleteSession(ctx, "tok"))
	_, err = mem.GetSessionByToken(ctx, "tok")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
