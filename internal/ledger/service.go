package ledger

import (
	"context"
	"fmt"
	"time"
)

// Storage is the durable transaction store. Every read and mutation is
// keyed by owner so records of other owners behave as nonexistent.
type Storage interface {
	SaveTransaction(ctx context.Context, kind Kind, t Transaction) (int64, error)
	GetTransaction(ctx context.Context, ownerId int64, kind Kind, id int64) (Transaction, error)
	UpdateTransaction(ctx context.Context, kind Kind, t Transaction) error
	DeleteTransaction(ctx context.Context, ownerId int64, kind Kind, id int64) (bool, error)
	ListTransactions(ctx context.Context, ownerId int64, kind Kind) ([]Transaction, error)
}

type Service struct {
	storage Storage
}

func NewService(s Storage) Service {
	return Service{storage: s}
}

// Handle returns a ledger view pre-bound to one owner. All store and
// aggregation calls go through a handle; nothing outside this package
// can pass an arbitrary owner to the storage.
func (s *Service) Handle(ownerId int64) Handle {
	return Handle{ownerId: ownerId, storage: s.storage}
}

type Handle struct {
	ownerId int64
	storage Storage
}

func (h Handle) Owner() int64 {
	return h.ownerId
}

// Add validates and persists a new record, returning it with its
// assigned id. Identifiers are never reused.
func (h Handle) Add(ctx context.Context, kind Kind, req TransactionRequest) (Transaction, error) {
	if !kind.Valid() {
		return Transaction{}, fmt.Errorf("invalid transaction kind: %q", kind)
	}
	amount, date, err := req.Validate(time.Now())
	if err != nil {
		return Transaction{}, err
	}

	t := Transaction{
		OwnerID:  h.ownerId,
		Amount:   amount,
		Category: req.Category,
		Date:     date,
		Note:     req.Note,
	}

	id, err := h.storage.SaveTransaction(ctx, kind, t)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to save %s transaction: %w", kind, err)
	}
	t.ID = id
	return t, nil
}

func (h Handle) Get(ctx context.Context, kind Kind, id int64) (Transaction, error) {
	if !kind.Valid() {
		return Transaction{}, fmt.Errorf("invalid transaction kind: %q", kind)
	}
	t, err := h.storage.GetTransaction(ctx, h.ownerId, kind, id)
	if err != nil {
		return Transaction{}, fmt.Errorf("failed to get %s transaction: %w", kind, err)
	}
	return t, nil
}

// Update replaces the four mutable fields of an owned record. The prior
// record stays untouched when validation fails.
func (h Handle) Update(ctx context.Context, kind Kind, id int64, req TransactionRequest) (Transaction, error) {
	if !kind.Valid() {
		return Transaction{}, fmt.Errorf("invalid transaction kind: %q", kind)
	}
	amount, date, err := req.Validate(time.Now())
	if err != nil {
		return Transaction{}, err
	}

	t := Transaction{
		ID:       id,
		OwnerID:  h.ownerId,
		Amount:   amount,
		Category: req.Category,
		Date:     date,
		Note:     req.Note,
	}

	if err := h.storage.UpdateTransaction(ctx, kind, t); err != nil {
		return Transaction{}, fmt.Errorf("failed to update %s transaction: %w", kind, err)
	}
	return t, nil
}

// Delete reports whether an owned record was removed. A miss is not an
// error.
func (h Handle) Delete(ctx context.Context, kind Kind, id int64) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("invalid transaction kind: %q", kind)
	}
	removed, err := h.storage.DeleteTransaction(ctx, h.ownerId, kind, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s transaction: %w", kind, err)
	}
	return removed, nil
}

// List returns the owner's records, most recent first: date descending,
// ties broken by insertion order descending.
func (h Handle) List(ctx context.Context, kind Kind) ([]Transaction, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid transaction kind: %q", kind)
	}
	ts, err := h.storage.ListTransactions(ctx, h.ownerId, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s transactions: %w", kind, err)
	}
	return ts, nil
}
