// Package app wires the ledger services over a set of repositories.
package app

import (
	"time"

	"restoledger/internal/core/lock"
	"restoledger/internal/core/numerator"
	"restoledger/internal/core/tx"
	"restoledger/internal/domain/cash"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/catalogs/warehouse"
	"restoledger/internal/domain/costing"
	"restoledger/internal/domain/deduction"
	"restoledger/internal/domain/documents/inventory"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/events"
	"restoledger/internal/domain/orders"
	"restoledger/internal/domain/production"
	"restoledger/internal/domain/registers/stock"
	"restoledger/internal/domain/reports"
	locker "restoledger/internal/infrastructure/lock"
	"restoledger/internal/infrastructure/storage/memory"
)

// Repositories is the storage backend of the ledger.
type Repositories struct {
	Warehouses  warehouse.Repository
	Ingredients ingredient.Repository
	Recipes     recipe.Repository
	Documents   movement.Repository
	Stock       stock.Repository
	Orders      orders.Repository
	Cash        cash.Repository
	Reports     reports.Repository
}

// Deps are the collaborators every service shares.
type Deps struct {
	Repos     Repositories
	TxManager tx.Manager
	Numerator numerator.Generator
	Publisher events.Publisher
	Locker    lock.Locker
	LockTTL   time.Duration
}

// Ledger holds the wired services.
type Ledger struct {
	Repos     Repositories
	TxManager tx.Manager

	Warehouses  *warehouse.Service
	Ingredients *ingredient.Service
	Stock       *stock.Service
	Costing     *costing.Engine
	Documents   *movement.Processor
	Production  *production.Service
	Inventory   *inventory.Service
	Resolver    *deduction.Resolver
	Orders      *orders.Service
	Cash        *cash.Service
	Deduction   *deduction.Service
	Reports     *reports.Service
}

// New wires the ledger.
func New(d Deps) *Ledger {
	r := d.Repos

	warehouses := warehouse.NewService(r.Warehouses)
	stockSvc := stock.NewService(r.Stock)
	costs := costing.NewEngine(r.Ingredients, stockSvc)
	processor := movement.NewProcessor(r.Documents, stockSvc, costs, d.Numerator, d.Publisher, d.TxManager)
	resolver := deduction.NewResolver(r.Recipes, r.Ingredients, warehouses)
	cashSvc := cash.NewService(r.Cash, r.Orders, d.Locker, d.Publisher, d.TxManager).WithLockTTL(d.LockTTL)

	return &Ledger{
		Repos:       r,
		TxManager:   d.TxManager,
		Warehouses:  warehouses,
		Ingredients: ingredient.NewService(r.Ingredients),
		Stock:       stockSvc,
		Costing:     costs,
		Documents:   processor,
		Production:  production.NewService(r.Ingredients, r.Recipes, processor, d.TxManager),
		Inventory:   inventory.NewService(r.Documents, processor, stockSvc, r.Ingredients, d.TxManager),
		Resolver:    resolver,
		Orders:      orders.NewService(r.Orders, d.TxManager),
		Cash:        cashSvc,
		Deduction:   deduction.NewService(r.Orders, resolver, processor, cashSvc, d.Publisher, d.TxManager),
		Reports:     reports.NewService(r.Reports, stockSvc, r.Ingredients, r.Warehouses, d.TxManager),
	}
}

// InMemory is a ledger over the in-memory store.
type InMemory struct {
	*Ledger
	Store  *memory.Store
	Events *memory.EventRecorder
}

// NewInMemory wires a ledger over a fresh in-memory store with an in-process
// register lock. extra publishers receive every event after the store.
func NewInMemory(extra ...events.Publisher) *InMemory {
	store := memory.New()
	recorder := store.Events()

	publisher := events.Publisher(recorder)
	if len(extra) > 0 {
		publisher = append(events.Multi{recorder}, extra...)
	}

	ledger := New(Deps{
		Repos:     MemoryRepositories(store),
		TxManager: memory.NewTxManager(store),
		Numerator: store.Numerator(),
		Publisher: publisher,
		Locker:    locker.NewLocalLocker(5 * time.Second),
		LockTTL:   cash.DefaultLockTTL,
	})
	return &InMemory{Ledger: ledger, Store: store, Events: recorder}
}

// MemoryRepositories returns the store's repositories.
func MemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		Warehouses:  store.Warehouses(),
		Ingredients: store.Ingredients(),
		Recipes:     store.Recipes(),
		Documents:   store.Documents(),
		Stock:       store.Stock(),
		Orders:      store.Orders(),
		Cash:        store.Cash(),
		Reports:     store.Reports(),
	}
}
