package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/core/id"
)

func TestMulti_Publish(t *testing.T) {
	var got []string
	record := func(name string) Publisher {
		return PublisherFunc(func(_ context.Context, e Event) error {
			got = append(got, name+":"+e.EventType)
			return nil
		})
	}
	failing := PublisherFunc(func(context.Context, Event) error { return errors.New("outbox down") })

	m := Multi{record("outbox"), failing, record("audit")}
	err := m.Publish(context.Background(), Event{EventType: ShiftClosed, AggregateID: id.New()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "outbox down")
	assert.Equal(t, []string{"outbox:ShiftClosed", "audit:ShiftClosed"}, got)
}

func TestOrNop(t *testing.T) {
	assert.NoError(t, OrNop(nil).Publish(context.Background(), Event{}))
}
