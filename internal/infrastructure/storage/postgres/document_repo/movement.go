// Package document_repo provides the PostgreSQL movement document repository.
package document_repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/infrastructure/storage/postgres"
)

const (
	documentTable = "stock_documents"
	linesTable    = "stock_document_lines"
)

var (
	documentColumns = postgres.ExtractDBColumns[movement.Document]()
	lineColumns     = postgres.ExtractDBColumns[movement.Line]()
)

// lineRow is a stored line with its owner.
type lineRow struct {
	DocumentID id.ID `db:"document_id"`
	movement.Line
}

// DocumentRepo implements movement.Repository.
type DocumentRepo struct {
	postgres.Repo
}

var _ movement.Repository = (*DocumentRepo)(nil)

// NewDocumentRepo creates a new document repository.
func NewDocumentRepo(txm *postgres.TxManager) *DocumentRepo {
	return &DocumentRepo{Repo: postgres.NewRepo(txm)}
}

func (r *DocumentRepo) baseSelect() sq.SelectBuilder {
	return postgres.Builder().Select(documentColumns...).From(documentTable)
}

func (r *DocumentRepo) Create(ctx context.Context, doc *movement.Document) error {
	if err := r.Insert(ctx, documentTable, documentColumns, doc); err != nil {
		return err
	}
	return r.insertLines(ctx, doc)
}

func (r *DocumentRepo) insertLines(ctx context.Context, doc *movement.Document) error {
	if len(doc.Lines) == 0 {
		return nil
	}
	columns := append([]string{"document_id"}, lineColumns...)
	rows := make([][]any, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		rows = append(rows, []any{doc.ID, l.LineID, l.LineNo, l.IngredientID, l.Quantity, l.UnitPrice})
	}
	if err := r.CopyFrom(ctx, linesTable, columns, rows); err != nil {
		return fmt.Errorf("insert document lines: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, did id.ID) (*movement.Document, error) {
	return r.get(ctx, r.baseSelect().Where(sq.Eq{"id": did}), did)
}

// GetForUpdate locks the header; lines are only written under that lock.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, did id.ID) (*movement.Document, error) {
	return r.get(ctx, r.baseSelect().Where(sq.Eq{"id": did}).Suffix("FOR UPDATE"), did)
}

func (r *DocumentRepo) get(ctx context.Context, q sq.SelectBuilder, did id.ID) (*movement.Document, error) {
	var doc movement.Document
	if err := r.Get(ctx, &doc, q, "document", did); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, []*movement.Document{&doc}); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepo) loadLines(ctx context.Context, docs []*movement.Document) error {
	if len(docs) == 0 {
		return nil
	}
	ids := make([]id.ID, len(docs))
	byID := make(map[id.ID]*movement.Document, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
		d.Lines = make([]movement.Line, 0)
		byID[d.ID] = d
	}

	var rows []lineRow
	q := postgres.Builder().Select(append([]string{"document_id"}, lineColumns...)...).
		From(linesTable).
		Where(sq.Eq{"document_id": ids}).
		OrderBy("document_id", "line_no")
	if err := r.Select(ctx, &rows, q); err != nil {
		return fmt.Errorf("load document lines: %w", err)
	}
	for _, row := range rows {
		if d, ok := byID[row.DocumentID]; ok {
			d.Lines = append(d.Lines, row.Line)
		}
	}
	return nil
}

// ReplaceLines rewrites the lines of an unprocessed document.
func (r *DocumentRepo) ReplaceLines(ctx context.Context, doc *movement.Document) error {
	stored, err := r.GetForUpdate(ctx, doc.ID)
	if err != nil {
		return err
	}
	if stored.Processed {
		return apperror.NewAlreadyProcessed(doc.ID)
	}
	if doc.IsStale(stored.BaseEntity) {
		return apperror.NewConflict("document was changed concurrently").WithDetail("document_id", doc.ID)
	}

	if _, err := r.Exec(ctx, postgres.Builder().Delete(linesTable).Where(sq.Eq{"document_id": doc.ID})); err != nil {
		return fmt.Errorf("clear document lines: %w", err)
	}
	if err := r.insertLines(ctx, doc); err != nil {
		return err
	}

	doc.Touch()
	q := postgres.UpdateStruct(documentTable, []string{"comment", "updated_at", "version"}, doc).
		Where(sq.Eq{"id": doc.ID})
	return r.ExecOne(ctx, q, "document", doc.ID)
}

func (r *DocumentRepo) MarkProcessed(ctx context.Context, doc *movement.Document) error {
	q := postgres.UpdateStruct(documentTable, []string{"number", "is_processed", "processed_at", "updated_at", "version"}, doc).
		Where(sq.Eq{"id": doc.ID})
	return r.ExecOne(ctx, q, "document", doc.ID)
}

func (r *DocumentRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]*movement.Document, error) {
	return r.list(ctx, sq.Eq{"order_id": orderID})
}

func (r *DocumentRepo) ListByReference(ctx context.Context, referenceID id.ID) ([]*movement.Document, error) {
	return r.list(ctx, sq.Eq{"reference_id": referenceID})
}

func (r *DocumentRepo) list(ctx context.Context, where sq.Sqlizer) ([]*movement.Document, error) {
	var docs []*movement.Document
	if err := r.Select(ctx, &docs, r.baseSelect().Where(where).OrderBy("id")); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}
