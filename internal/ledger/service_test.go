package ledger

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appErrors "github.com/shaikali291/Expense-Tracker-App/errors"
)

// Mocks
type fakeStorage struct {
	transactions map[Kind][]Transaction
	nextID       map[Kind]int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		transactions: map[Kind][]Transaction{Income: nil, Expense: nil},
		nextID:       map[Kind]int64{Income: 1, Expense: 1},
	}
}

func (f *fakeStorage) SaveTransaction(ctx context.Context, kind Kind, t Transaction) (int64, error) {
	t.ID = f.nextID[kind]
	f.nextID[kind]++
	f.transactions[kind] = append(f.transactions[kind], t)
	return t.ID, nil
}

func (f *fakeStorage) GetTransaction(ctx context.Context, ownerId int64, kind Kind, id int64) (Transaction, error) {
	for _, t := range f.transactions[kind] {
		if t.ID == id && t.OwnerID == ownerId {
			return t, nil
		}
	}
	return Transaction{}, fmt.Errorf("%w: transaction does not exist", appErrors.ErrNotFound)
}

func (f *fakeStorage) UpdateTransaction(ctx context.Context, kind Kind, t Transaction) error {
	for i, existing := range f.transactions[kind] {
		if existing.ID == t.ID && existing.OwnerID == t.OwnerID {
			f.transactions[kind][i] = t
			return nil
		}
	}
	return fmt.Errorf("%w: transaction does not exist", appErrors.ErrNotFound)
}

func (f *fakeStorage) DeleteTransaction(ctx context.Context, ownerId int64, kind Kind, id int64) (bool, error) {
	for i, t := range f.transactions[kind] {
		if t.ID == id && t.OwnerID == ownerId {
			f.transactions[kind] = append(f.transactions[kind][:i], f.transactions[kind][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStorage) ListTransactions(ctx context.Context, ownerId int64, kind Kind) ([]Transaction, error) {
	var result []Transaction
	for _, t := range f.transactions[kind] {
		if t.OwnerID == ownerId {
			result = append(result, t)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func TestAddRoundTrip(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	handle := service.Handle(1)

	added, err := handle.Add(ctx, Income, TransactionRequest{
		Amount:   "100.5",
		Category: "salary",
		Date:     "2024-01-05",
		Note:     "x",
	})
	require.NoError(t, err)
	require.NotZero(t, added.ID)

	got, err := handle.Get(ctx, Income, added.ID)
	require.NoError(t, err)
	require.Equal(t, 100.5, got.Amount)
	require.Equal(t, "salary", got.Category)
	require.Equal(t, "2024-01-05", got.Date.Format(DateLayout))
	require.Equal(t, "x", got.Note)
}

func TestAddDefaultsDateToToday(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	handle := service.Handle(1)

	added, err := handle.Add(ctx, Expense, TransactionRequest{Amount: "12", Category: "food"})
	require.NoError(t, err)

	today := time.Now().UTC().Format(DateLayout)
	require.Equal(t, today, added.Date.Format(DateLayout))
}

func TestAddValidation(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	handle := service.Handle(1)

	tests := []struct {
		name string
		req  TransactionRequest
	}{
		{"empty amount", TransactionRequest{Amount: "", Category: "food"}},
		{"non-numeric amount", TransactionRequest{Amount: "abc", Category: "food"}},
		{"infinite amount", TransactionRequest{Amount: "Inf", Category: "food"}},
		{"nan amount", TransactionRequest{Amount: "NaN", Category: "food"}},
		{"negative amount", TransactionRequest{Amount: "-5", Category: "food"}},
		{"empty category", TransactionRequest{Amount: "5", Category: ""}},
		{"malformed date", TransactionRequest{Amount: "5", Category: "food", Date: "05/01/2024"}},
		{"impossible date", TransactionRequest{Amount: "5", Category: "food", Date: "2023-02-30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handle.Add(ctx, Income, tt.req)
			require.ErrorIs(t, err, appErrors.ErrValidation)
		})
	}

	ts, err := handle.List(ctx, Income)
	require.NoError(t, err)
	require.Empty(t, ts)
}

func TestUpdateReplacesAllFields(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	handle := service.Handle(1)

	added, err := handle.Add(ctx, Expense, TransactionRequest{
		Amount:   "20",
		Category: "food",
		Date:     "2024-01-05",
		Note:     "lunch",
	})
	require.NoError(t, err)

	updated, err := handle.Update(ctx, Expense, added.ID, TransactionRequest{
		Amount:   "35.25",
		Category: "transport",
		Date:     "2024-02-10",
		Note:     "",
	})
	require.NoError(t, err)
	require.Equal(t, added.ID, updated.ID)
	require.Equal(t, 35.25, updated.Amount)
	require.Equal(t, "transport", updated.Category)
	require.Equal(t, "2024-02-10", updated.Date.Format(DateLayout))
	require.Equal(t, "", updated.Note)

	got, err := handle.Get(ctx, Expense, added.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)
}

func TestUpdateMalformedAmountLeavesRecordUnchanged(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	handle := service.Handle(1)

	added, err := handle.Add(ctx, Income, TransactionRequest{
		Amount:   "100",
		Category: "salary",
		Date:     "2024-01-05",
	})
	require.NoError(t, err)

	_, err = handle.Update(ctx, Income, added.ID, TransactionRequest{
		Amount:   "not-a-number",
		Category: "salary",
		Date:     "2024-01-05",
	})
	require.ErrorIs(t, err, appErrors.ErrValidation)

	got, err := handle.Get(ctx, Income, added.ID)
	require.NoError(t, err)
	require.Equal(t, added, got)
}

func TestOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	alice := service.Handle(1)
	bob := service.Handle(2)

	added, err := alice.Add(ctx, Income, TransactionRequest{Amount: "100", Category: "salary", Date: "2024-01-05"})
	require.NoError(t, err)

	// foreign records read as nonexistent
	_, err = bob.Get(ctx, Income, added.ID)
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	ts, err := bob.List(ctx, Income)
	require.NoError(t, err)
	require.Empty(t, ts)

	_, err = bob.Update(ctx, Income, added.ID, TransactionRequest{Amount: "1", Category: "theft", Date: "2024-01-05"})
	require.ErrorIs(t, err, appErrors.ErrNotFound)

	removed, err := bob.Delete(ctx, Income, added.ID)
	require.NoError(t, err)
	require.False(t, removed)

	// alice's record survived untouched
	got, err := alice.Get(ctx, Income, added.ID)
	require.NoError(t, err)
	require.Equal(t, added, got)
}

func TestDeleteMissReturnsFalse(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	handle := service.Handle(1)

	added, err := handle.Add(ctx, Expense, TransactionRequest{Amount: "10", Category: "food", Date: "2024-01-05"})
	require.NoError(t, err)

	removed, err := handle.Delete(ctx, Expense, 9999)
	require.NoError(t, err)
	require.False(t, removed)

	ts, err := handle.List(ctx, Expense)
	require.NoError(t, err)
	require.Len(t, ts, 1)

	removed, err = handle.Delete(ctx, Expense, added.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = handle.Delete(ctx, Expense, added.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestListOrdering(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	handle := service.Handle(1)

	first, err := handle.Add(ctx, Income, TransactionRequest{Amount: "1", Category: "a", Date: "2024-01-10"})
	require.NoError(t, err)
	second, err := handle.Add(ctx, Income, TransactionRequest{Amount: "2", Category: "b", Date: "2024-03-01"})
	require.NoError(t, err)
	third, err := handle.Add(ctx, Income, TransactionRequest{Amount: "3", Category: "c", Date: "2024-01-10"})
	require.NoError(t, err)

	ts, err := handle.List(ctx, Income)
	require.NoError(t, err)
	require.Len(t, ts, 3)

	// date descending, same-day ties newest insertion first
	require.Equal(t, second.ID, ts[0].ID)
	require.Equal(t, third.ID, ts[1].ID)
	require.Equal(t, first.ID, ts[2].ID)
}

func TestKindsAreSeparateLedgers(t *testing.T) {
	ctx := context.Background()
	service := NewService(newFakeStorage())
	handle := service.Handle(1)

	added, err := handle.Add(ctx, Income, TransactionRequest{Amount: "100", Category: "salary", Date: "2024-01-05"})
	require.NoError(t, err)

	_, err = handle.Get(ctx, Expense, added.ID)
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
