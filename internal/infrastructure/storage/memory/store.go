// Package memory is an in-process implementation of every ledger repository.
// It backs the server when no database is configured and the domain tests.
//
// Transactions are serialized: RunInTransaction holds the store lock for the
// whole call and restores a snapshot when fn fails, so row locks
// (GetForUpdate) are implied. The snapshot copies the keyed tables
// (documents and orders grow without bound), so the store is meant for
// development and tests, not for long-running production use.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/tx"
	"restoledger/internal/domain/cash"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/catalogs/warehouse"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/events"
	"restoledger/internal/domain/orders"
	"restoledger/pkg/logger"
)

type state struct {
	warehouses   map[id.ID]warehouse.Warehouse
	ingredients  map[id.ID]ingredient.Ingredient
	products     map[id.ID]recipe.Product
	techCards    map[id.ID][]recipe.TechCardItem
	semiFinished map[id.ID][]recipe.SemiFinishedItem
	modifiers    map[id.ID]recipe.Modifier
	rules        map[id.ID]recipe.AutoDeductionRule
	documents    map[id.ID]movement.Document
	balances     map[entity.BalanceKey]entity.StockBalance
	movements    []entity.StockMovement
	orders       map[id.ID]orders.Order
	employees    map[id.ID]cash.Employee
	history      []cash.BalanceHistoryEntry
	shifts       map[id.ID]cash.Shift
	transactions []cash.Transaction
	sequences    map[string]int64
	events       []events.Event
}

func newState() *state {
	return &state{
		warehouses:   make(map[id.ID]warehouse.Warehouse),
		ingredients:  make(map[id.ID]ingredient.Ingredient),
		products:     make(map[id.ID]recipe.Product),
		techCards:    make(map[id.ID][]recipe.TechCardItem),
		semiFinished: make(map[id.ID][]recipe.SemiFinishedItem),
		modifiers:    make(map[id.ID]recipe.Modifier),
		rules:        make(map[id.ID]recipe.AutoDeductionRule),
		documents:    make(map[id.ID]movement.Document),
		balances:     make(map[entity.BalanceKey]entity.StockBalance),
		orders:       make(map[id.ID]orders.Order),
		employees:    make(map[id.ID]cash.Employee),
		shifts:       make(map[id.ID]cash.Shift),
		sequences:    make(map[string]int64),
	}
}

// clone copies every keyed table. The movement, history, transaction and
// event logs are append-only, so the snapshot keeps their current slice
// headers: later appends never change the first len elements, and restoring
// the snapshot truncates the log back to them.
func (s *state) clone() *state {
	return &state{
		warehouses:   cloneMap(s.warehouses),
		ingredients:  cloneMap(s.ingredients),
		products:     cloneMap(s.products),
		techCards:    cloneMap(s.techCards),
		semiFinished: cloneMap(s.semiFinished),
		modifiers:    cloneMap(s.modifiers),
		rules:        cloneMap(s.rules),
		documents:    cloneMap(s.documents),
		balances:     cloneMap(s.balances),
		movements:    s.movements,
		orders:       cloneMap(s.orders),
		employees:    cloneMap(s.employees),
		history:      s.history,
		shifts:       cloneMap(s.shifts),
		transactions: s.transactions,
		sequences:    cloneMap(s.sequences),
		events:       s.events,
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Store holds all ledger tables in memory.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState()}
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(bool)
	return ok
}

// read takes the shared lock unless ctx already runs inside a transaction.
func (s *Store) read(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *Store) write(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// TxManager implements tx.Manager on the store.
type TxManager struct {
	store *Store
}

var _ tx.Manager = (*TxManager)(nil)

// NewTxManager creates a transaction manager for store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

// RunInTransaction executes fn with the store locked. Nested calls reuse the
// outer transaction. Any error or panic restores the pre-transaction state.
func (m *TxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	snapshot := m.store.st.clone()
	defer func() {
		if p := recover(); p != nil {
			m.store.st = snapshot
			logger.Error(ctx, "panic in transaction, rolled back", "panic", p)
			err = fmt.Errorf("panic in transaction: %v", p)
			return
		}
		if err != nil {
			m.store.st = snapshot
			logger.Debug(ctx, "transaction rolled back", "error", err)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, true))
}

// Repositories returned by the store.

func (s *Store) Warehouses() *WarehouseRepo   { return &WarehouseRepo{s} }
func (s *Store) Ingredients() *IngredientRepo { return &IngredientRepo{s} }
func (s *Store) Recipes() *RecipeRepo         { return &RecipeRepo{s} }
func (s *Store) Documents() *DocumentRepo     { return &DocumentRepo{s} }
func (s *Store) Stock() *StockRepo            { return &StockRepo{s} }
func (s *Store) Orders() *OrderRepo           { return &OrderRepo{s} }
func (s *Store) Cash() *CashRepo              { return &CashRepo{s} }
func (s *Store) Numerator() *Numerator        { return &Numerator{s} }
func (s *Store) Events() *EventRecorder       { return &EventRecorder{s} }
func (s *Store) Reports() *ReportRepo         { return &ReportRepo{s} }

func sortByID[T any](items []T, key func(T) id.ID) {
	slices.SortFunc(items, func(a, b T) int {
		ka, kb := key(a), key(b)
		return compareIDs(ka, kb)
	})
}

func compareIDs(a, b id.ID) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
