package memory

import (
	"context"
	"slices"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/documents/movement"
)

// DocumentRepo implements movement.Repository.
type DocumentRepo struct{ s *Store }

var _ movement.Repository = (*DocumentRepo)(nil)

func copyDocument(d movement.Document) *movement.Document {
	d.Lines = slices.Clone(d.Lines)
	if d.Lines == nil {
		d.Lines = make([]movement.Line, 0)
	}
	return &d
}

func (r *DocumentRepo) Create(ctx context.Context, doc *movement.Document) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.st.documents[doc.ID]; ok {
		return apperror.NewConflict("document already exists")
	}
	r.s.st.documents[doc.ID] = *copyDocument(*doc)
	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, did id.ID) (*movement.Document, error) {
	defer r.s.read(ctx)()
	d, ok := r.s.st.documents[did]
	if !ok {
		return nil, apperror.NewNotFound("document", did)
	}
	return copyDocument(d), nil
}

func (r *DocumentRepo) GetForUpdate(ctx context.Context, did id.ID) (*movement.Document, error) {
	return r.GetByID(ctx, did)
}

func (r *DocumentRepo) ReplaceLines(ctx context.Context, doc *movement.Document) error {
	defer r.s.write(ctx)()
	stored, ok := r.s.st.documents[doc.ID]
	if !ok {
		return apperror.NewNotFound("document", doc.ID)
	}
	if stored.Processed {
		return apperror.NewAlreadyProcessed(doc.ID)
	}
	if doc.IsStale(stored.BaseEntity) {
		return apperror.NewConflict("document was changed concurrently").WithDetail("document_id", doc.ID)
	}
	stored.Lines = slices.Clone(doc.Lines)
	stored.Comment = doc.Comment
	stored.Touch()
	r.s.st.documents[doc.ID] = stored
	return nil
}

func (r *DocumentRepo) MarkProcessed(ctx context.Context, doc *movement.Document) error {
	defer r.s.write(ctx)()
	stored, ok := r.s.st.documents[doc.ID]
	if !ok {
		return apperror.NewNotFound("document", doc.ID)
	}
	stored.Processed = doc.Processed
	stored.ProcessedAt = doc.ProcessedAt
	stored.UpdatedAt = doc.UpdatedAt
	stored.Version = doc.Version
	r.s.st.documents[doc.ID] = stored
	return nil
}

func (r *DocumentRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]*movement.Document, error) {
	return r.filter(ctx, func(d movement.Document) bool { return id.Equal(d.OrderID, &orderID) })
}

func (r *DocumentRepo) ListByReference(ctx context.Context, referenceID id.ID) ([]*movement.Document, error) {
	return r.filter(ctx, func(d movement.Document) bool { return id.Equal(d.ReferenceID, &referenceID) })
}

func (r *DocumentRepo) filter(ctx context.Context, keep func(movement.Document) bool) ([]*movement.Document, error) {
	defer r.s.read(ctx)()
	var out []*movement.Document
	for _, d := range r.s.st.documents {
		if keep(d) {
			out = append(out, copyDocument(d))
		}
	}
	sortByID(out, func(d *movement.Document) id.ID { return d.ID })
	return out, nil
}
