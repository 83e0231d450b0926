package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipeColumns_MatchInsertOrder(t *testing.T) {
	// SetTechCard and SetSemiFinishedRecipe pass values positionally.
	assert.Equal(t, []string{"product_id", "line_no", "ingredient_id", "gross_qty", "net_qty", "is_takeaway"}, techCardColumns)
	assert.Equal(t, []string{"semi_finished_id", "line_no", "ingredient_id", "gross_qty"}, semiFinishedColumns)
}

func TestCatalogColumns(t *testing.T) {
	assert.Equal(t, []string{"id", "version", "name", "is_production", "linked_warehouse_id"}, warehouseColumns)
	assert.Equal(t, []string{"id", "version", "name", "unit", "current_cost", "is_semi_finished"}, ingredientColumns)
	assert.Equal(t, []string{"id", "version", "name", "trigger", "ingredient_id", "quantity", "warehouse_id", "is_active"}, ruleColumns)
}
