package app

import (
	"context"
	"fmt"
	"time"

	"restoledger/internal/core/lock"
	"restoledger/internal/domain/cash"
	"restoledger/internal/domain/events"
	"restoledger/internal/infrastructure/storage/postgres"
	"restoledger/internal/infrastructure/storage/postgres/cash_repo"
	"restoledger/internal/infrastructure/storage/postgres/catalog_repo"
	"restoledger/internal/infrastructure/storage/postgres/document_repo"
	"restoledger/internal/infrastructure/storage/postgres/order_repo"
	"restoledger/internal/infrastructure/storage/postgres/register_repo"
	"restoledger/internal/infrastructure/storage/postgres/report_repo"
	"restoledger/pkg/numerator"
)

// PostgresRepositories returns repositories that run on the transaction in context.
func PostgresRepositories(txm *postgres.TxManager) Repositories {
	return Repositories{
		Warehouses:  catalog_repo.NewWarehouseRepo(txm),
		Ingredients: catalog_repo.NewIngredientRepo(txm),
		Recipes:     catalog_repo.NewRecipeRepo(txm),
		Documents:   document_repo.NewDocumentRepo(txm),
		Stock:       register_repo.NewStockRepo(txm),
		Orders:      order_repo.NewOrderRepo(txm),
		Cash:        cash_repo.NewCashRepo(txm),
		Reports:     report_repo.NewReportRepo(txm),
	}
}

// Postgres is a ledger over PostgreSQL. Every event goes to the outbox and
// the audit log in the transaction that produced it.
type Postgres struct {
	*Ledger
	TxManager *postgres.TxManager
	Audit     *postgres.AuditLog
}

// PostgresOptions tunes NewPostgres.
type PostgresOptions struct {
	StatementTimeout time.Duration
	LockTTL          time.Duration

	// AuditCompressThreshold is the change size above which audit rows are zstd-compressed.
	AuditCompressThreshold int
}

// NewPostgres wires the ledger over pool with the given register locker.
func NewPostgres(pool *postgres.Pool, locker lock.Locker, opts PostgresOptions) (*Postgres, error) {
	txm := postgres.NewTxManager(pool)
	if opts.StatementTimeout > 0 {
		txm = txm.WithStatementTimeout(opts.StatementTimeout)
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = cash.DefaultLockTTL
	}

	audit, err := postgres.NewAuditLog(txm)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}
	if opts.AuditCompressThreshold > 0 {
		audit = audit.WithCompressThreshold(opts.AuditCompressThreshold)
	}

	num := numerator.NewWithQuerierFunc(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})

	ledger := New(Deps{
		Repos:     PostgresRepositories(txm),
		TxManager: txm,
		Numerator: num,
		Publisher: events.Multi{postgres.NewOutboxPublisher(txm), audit},
		Locker:    locker,
		LockTTL:   opts.LockTTL,
	})
	return &Postgres{Ledger: ledger, TxManager: txm, Audit: audit}, nil
}
