package reports_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"restoledger/internal/app/apptest"
	"restoledger/internal/core/apperror"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/domain/reports"
)

func TestStockTurnover(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")
	flour := f.Ingredient("Flour", "0")

	from := time.Now().UTC().Add(-time.Hour)
	f.Supply(wh, flour, "10", "2")
	_, err := f.Documents.ProcessMovement(f.Ctx, movement.Request{
		Type:              movement.DocTypeWriteOff,
		SourceWarehouseID: &wh.ID,
		Lines:             []movement.LineInput{{IngredientID: flour.ID, Quantity: types.MustQuantity("3")}},
	})
	require.NoError(t, err)

	report, err := f.Reports.StockTurnover(f.Ctx, reports.TurnoverFilter{From: from, To: time.Now().UTC().Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)

	row := report.Items[0]
	apptest.AssertQty(t, "0", row.Opening)
	apptest.AssertQty(t, "10", row.Receipt)
	apptest.AssertQty(t, "3", row.Expense)
	apptest.AssertQty(t, "7", row.Closing)
}

func TestStockTurnover_OpeningFromEarlierMovements(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")
	flour := f.Ingredient("Flour", "0")
	f.Supply(wh, flour, "4", "1")

	from := time.Now().UTC().Add(time.Minute)
	report, err := f.Reports.StockTurnover(f.Ctx, reports.TurnoverFilter{From: from, To: from.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, report.Items, 1)
	apptest.AssertQty(t, "4", report.Items[0].Opening)
	apptest.AssertQty(t, "4", report.Items[0].Closing)
}

func TestStockTurnover_Validation(t *testing.T) {
	f := apptest.New(t)
	now := time.Now().UTC()

	tests := []struct {
		name   string
		filter reports.TurnoverFilter
	}{
		{"missing dates", reports.TurnoverFilter{}},
		{"reversed", reports.TurnoverFilter{From: now, To: now.Add(-time.Hour)}},
		{"too long", reports.TurnoverFilter{From: now, To: now.AddDate(2, 0, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Reports.StockTurnover(f.Ctx, tt.filter)
			assert.True(t, apperror.Is(err, apperror.CodeValidation))
		})
	}
}

func TestStockValuation(t *testing.T) {
	f := apptest.New(t)
	wh := f.Warehouse("Main")
	flour := f.Ingredient("Flour", "0")
	cheese := f.Ingredient("Cheese", "0")
	f.Supply(wh, flour, "10", "0.8")
	f.Supply(wh, cheese, "2", "9.5")

	report, err := f.Reports.StockValuation(f.Ctx, wh.ID)
	require.NoError(t, err)
	assert.Equal(t, "Main", report.WarehouseName)
	require.Len(t, report.Items, 2)
	apptest.AssertQty(t, "27", report.TotalValue)
}
