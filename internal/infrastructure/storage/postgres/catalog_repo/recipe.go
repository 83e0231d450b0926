package catalog_repo

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/core/id"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/infrastructure/storage/postgres"
)

const (
	productTable      = "products"
	techCardTable     = "tech_card_items"
	semiFinishedTable = "semi_finished_items"
	modifierTable     = "modifiers"
	ruleTable         = "auto_deduction_rules"
)

var (
	productColumns      = postgres.ExtractDBColumns[recipe.Product]()
	techCardColumns     = postgres.ExtractDBColumns[recipe.TechCardItem]()
	semiFinishedColumns = postgres.ExtractDBColumns[recipe.SemiFinishedItem]()
	modifierColumns     = postgres.ExtractDBColumns[recipe.Modifier]()
	ruleColumns         = postgres.ExtractDBColumns[recipe.AutoDeductionRule]()
)

// RecipeRepo implements recipe.Repository.
type RecipeRepo struct {
	postgres.Repo
}

var _ recipe.Repository = (*RecipeRepo)(nil)

// NewRecipeRepo creates a new recipe repository.
func NewRecipeRepo(txm *postgres.TxManager) *RecipeRepo {
	return &RecipeRepo{Repo: postgres.NewRepo(txm)}
}

func (r *RecipeRepo) CreateProduct(ctx context.Context, p *recipe.Product) error {
	return r.Insert(ctx, productTable, productColumns, p)
}

func (r *RecipeRepo) GetProduct(ctx context.Context, pid id.ID) (*recipe.Product, error) {
	var p recipe.Product
	q := postgres.Builder().Select(productColumns...).From(productTable).Where(sq.Eq{"id": pid})
	if err := r.Get(ctx, &p, q, "product", pid); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RecipeRepo) TechCard(ctx context.Context, productID id.ID) ([]recipe.TechCardItem, error) {
	var items []recipe.TechCardItem
	q := postgres.Builder().Select(techCardColumns...).From(techCardTable).
		Where(sq.Eq{"product_id": productID}).
		OrderBy("line_no")
	if err := r.Select(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

// SetTechCard replaces the product's components. Line numbers default to position.
func (r *RecipeRepo) SetTechCard(ctx context.Context, productID id.ID, items []recipe.TechCardItem) error {
	if _, err := r.GetProduct(ctx, productID); err != nil {
		return err
	}
	if _, err := r.Exec(ctx, postgres.Builder().Delete(techCardTable).Where(sq.Eq{"product_id": productID})); err != nil {
		return fmt.Errorf("clear tech card: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	ins := postgres.Builder().Insert(techCardTable).Columns(techCardColumns...)
	for i, item := range items {
		item.ProductID = productID
		if item.LineNo == 0 {
			item.LineNo = i + 1
		}
		ins = ins.Values(item.ProductID, item.LineNo, item.IngredientID, item.GrossQty, item.NetQty, item.IsTakeaway)
	}
	if _, err := r.Exec(ctx, ins); err != nil {
		return fmt.Errorf("insert tech card: %w", err)
	}
	return nil
}

func (r *RecipeRepo) SemiFinishedRecipe(ctx context.Context, ingredientID id.ID) ([]recipe.SemiFinishedItem, error) {
	var items []recipe.SemiFinishedItem
	q := postgres.Builder().Select(semiFinishedColumns...).From(semiFinishedTable).
		Where(sq.Eq{"semi_finished_id": ingredientID}).
		OrderBy("line_no")
	if err := r.Select(ctx, &items, q); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *RecipeRepo) SetSemiFinishedRecipe(ctx context.Context, ingredientID id.ID, items []recipe.SemiFinishedItem) error {
	if _, err := r.Exec(ctx, postgres.Builder().Delete(semiFinishedTable).Where(sq.Eq{"semi_finished_id": ingredientID})); err != nil {
		return fmt.Errorf("clear semi-finished recipe: %w", err)
	}
	if len(items) == 0 {
		return nil
	}

	ins := postgres.Builder().Insert(semiFinishedTable).Columns(semiFinishedColumns...)
	for i, item := range items {
		if item.LineNo == 0 {
			item.LineNo = i + 1
		}
		ins = ins.Values(ingredientID, item.LineNo, item.IngredientID, item.GrossQty)
	}
	if _, err := r.Exec(ctx, ins); err != nil {
		return fmt.Errorf("insert semi-finished recipe: %w", err)
	}
	return nil
}

func (r *RecipeRepo) CreateModifier(ctx context.Context, m *recipe.Modifier) error {
	return r.Insert(ctx, modifierTable, modifierColumns, m)
}

func (r *RecipeRepo) GetModifier(ctx context.Context, mid id.ID) (*recipe.Modifier, error) {
	var m recipe.Modifier
	q := postgres.Builder().Select(modifierColumns...).From(modifierTable).Where(sq.Eq{"id": mid})
	if err := r.Get(ctx, &m, q, "modifier", mid); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *RecipeRepo) CreateRule(ctx context.Context, rule *recipe.AutoDeductionRule) error {
	return r.Insert(ctx, ruleTable, ruleColumns, rule)
}

func (r *RecipeRepo) ListActiveRules(ctx context.Context) ([]*recipe.AutoDeductionRule, error) {
	var out []*recipe.AutoDeductionRule
	q := postgres.Builder().Select(ruleColumns...).From(ruleTable).
		Where(sq.Eq{"is_active": true}).
		OrderBy("id")
	if err := r.Select(ctx, &out, q); err != nil {
		return nil, err
	}
	return out, nil
}
