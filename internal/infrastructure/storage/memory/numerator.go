package memory

import (
	"context"
	"time"

	corenumerator "restoledger/internal/core/numerator"
	"restoledger/pkg/numerator"
)

// Numerator implements numerator.Generator on an in-memory sequence table.
// Both strategies allocate one number at a time.
type Numerator struct{ s *Store }

var _ corenumerator.Generator = (*Numerator)(nil)

func (n *Numerator) GetNextNumber(ctx context.Context, cfg corenumerator.Config, _ *corenumerator.Options, period time.Time) (string, error) {
	defer n.s.write(ctx)()
	key := numerator.BuildKey(cfg, period)
	n.s.st.sequences[key]++
	return numerator.Format(cfg, period, n.s.st.sequences[key]), nil
}
