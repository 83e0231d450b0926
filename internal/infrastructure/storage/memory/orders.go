package memory

import (
	"context"
	"slices"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/domain/orders"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct{ s *Store }

var _ orders.Repository = (*OrderRepo)(nil)

func copyOrder(o orders.Order) *orders.Order {
	o.Lines = slices.Clone(o.Lines)
	for i := range o.Lines {
		o.Lines[i].AddOns = slices.Clone(o.Lines[i].AddOns)
	}
	return &o
}

func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.st.orders[o.ID]; ok {
		return apperror.NewConflict("order already exists")
	}
	r.s.st.orders[o.ID] = *copyOrder(*o)
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, oid id.ID) (*orders.Order, error) {
	defer r.s.read(ctx)()
	o, ok := r.s.st.orders[oid]
	if !ok {
		return nil, apperror.NewNotFound("order", oid)
	}
	return copyOrder(o), nil
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, oid id.ID) (*orders.Order, error) {
	return r.GetByID(ctx, oid)
}

// Update persists header fields only; lines are owned upstream.
func (r *OrderRepo) Update(ctx context.Context, o *orders.Order) error {
	defer r.s.write(ctx)()
	stored, ok := r.s.st.orders[o.ID]
	if !ok {
		return apperror.NewNotFound("order", o.ID)
	}
	lines := stored.Lines
	stored = *o
	stored.Lines = lines
	stored.Touch()
	r.s.st.orders[o.ID] = stored
	o.Version = stored.Version
	return nil
}

func (r *OrderRepo) ListByIDsForUpdate(ctx context.Context, ids []id.ID) ([]*orders.Order, error) {
	defer r.s.read(ctx)()
	out := make([]*orders.Order, 0, len(ids))
	seen := make(map[id.ID]bool, len(ids))
	for _, oid := range ids {
		if seen[oid] {
			continue
		}
		seen[oid] = true
		if o, ok := r.s.st.orders[oid]; ok {
			out = append(out, copyOrder(o))
		}
	}
	return out, nil
}

func (r *OrderRepo) ListOrphanedCash(ctx context.Context) ([]*orders.Order, error) {
	return r.filter(ctx, func(o orders.Order) bool {
		return o.Status == orders.StatusCompleted && o.IsCash() && o.ShiftID == nil
	})
}

func (r *OrderRepo) ListByShift(ctx context.Context, shiftID id.ID) ([]*orders.Order, error) {
	return r.filter(ctx, func(o orders.Order) bool { return id.Equal(o.ShiftID, &shiftID) })
}

func (r *OrderRepo) filter(ctx context.Context, keep func(orders.Order) bool) ([]*orders.Order, error) {
	defer r.s.read(ctx)()
	var out []*orders.Order
	for _, o := range r.s.st.orders {
		if keep(o) {
			h := o
			h.Lines = nil
			out = append(out, &h)
		}
	}
	sortByID(out, func(o *orders.Order) id.ID { return o.ID })
	return out, nil
}
