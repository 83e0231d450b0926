package postgres

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"restoledger/internal/core/apperror"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Builder returns a squirrel builder with PostgreSQL placeholders.
func Builder() sq.StatementBuilderType {
	return psql
}

// Repo is embedded by the table repositories. It runs squirrel queries on
// the transaction carried by context, or on the pool outside one.
type Repo struct {
	txManager *TxManager
}

// NewRepo creates a repository base.
func NewRepo(txManager *TxManager) Repo {
	return Repo{txManager: txManager}
}

// Querier returns the current querier.
func (r Repo) Querier(ctx context.Context) Querier {
	return r.txManager.GetQuerier(ctx)
}

// Get scans exactly one row into dst. A missing row becomes NOT_FOUND for entity/key.
func (r Repo) Get(ctx context.Context, dst any, q sq.Sqlizer, entity string, key any) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s query: %w", entity, err)
	}
	if err := pgxscan.Get(ctx, r.Querier(ctx), dst, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound(entity, key)
		}
		return fmt.Errorf("get %s: %w", entity, err)
	}
	return nil
}

// Select scans all rows into dst, a pointer to a slice.
func (r Repo) Select(ctx context.Context, dst any, q sq.Sqlizer) error {
	query, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.Querier(ctx), dst, query, args...); err != nil {
		return fmt.Errorf("select: %w", err)
	}
	return nil
}

// Exec runs a statement.
func (r Repo) Exec(ctx context.Context, q sq.Sqlizer) (pgconn.CommandTag, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return pgconn.CommandTag{}, fmt.Errorf("build statement: %w", err)
	}
	return r.Querier(ctx).Exec(ctx, query, args...)
}

// Insert writes v into table using its db tags, restricted to columns.
func (r Repo) Insert(ctx context.Context, table string, columns []string, v any) error {
	if _, err := r.Exec(ctx, InsertStruct(table, columns, v)); err != nil {
		return fmt.Errorf("insert %s: %w", table, mapConstraint(err))
	}
	return nil
}

// ExecOne runs a statement that must touch exactly one row.
func (r Repo) ExecOne(ctx context.Context, q sq.Sqlizer, entity string, key any) error {
	tag, err := r.Exec(ctx, q)
	if err != nil {
		return fmt.Errorf("write %s: %w", entity, mapConstraint(err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(entity, key)
	}
	return nil
}

// CopyFrom bulk-inserts rows in the current transaction.
func (r Repo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) error {
	_, err := NewBatchInserter(r.txManager).CopyFromSlice(ctx, table, columns, rows)
	return err
}

// InsertStruct builds an INSERT from the db tags of v.
func InsertStruct(table string, columns []string, v any) sq.InsertBuilder {
	data := StructToMap(v)
	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = data[col]
	}
	return psql.Insert(table).Columns(columns...).Values(values...)
}

// UpdateStruct builds an UPDATE ... SET for columns from the db tags of v.
func UpdateStruct(table string, columns []string, v any) sq.UpdateBuilder {
	data := StructToMap(v)
	b := psql.Update(table)
	for _, col := range columns {
		b = b.Set(col, data[col])
	}
	return b
}

// mapConstraint turns unique violations into CONFLICT.
func mapConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperror.NewConflict(pgErr.Detail).WithCause(err)
	}
	return err
}
