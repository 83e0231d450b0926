package catalog_repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/infrastructure/storage/postgres"
)

const ingredientTable = "ingredients"

var ingredientColumns = postgres.ExtractDBColumns[ingredient.Ingredient]()

// IngredientRepo implements ingredient.Repository.
type IngredientRepo struct {
	postgres.Repo
}

var _ ingredient.Repository = (*IngredientRepo)(nil)

// NewIngredientRepo creates a new ingredient repository.
func NewIngredientRepo(txm *postgres.TxManager) *IngredientRepo {
	return &IngredientRepo{Repo: postgres.NewRepo(txm)}
}

func (r *IngredientRepo) baseSelect() sq.SelectBuilder {
	return postgres.Builder().Select(ingredientColumns...).From(ingredientTable)
}

func (r *IngredientRepo) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	return r.Insert(ctx, ingredientTable, ingredientColumns, ing)
}

func (r *IngredientRepo) GetByID(ctx context.Context, iid id.ID) (*ingredient.Ingredient, error) {
	var ing ingredient.Ingredient
	if err := r.Get(ctx, &ing, r.baseSelect().Where(sq.Eq{"id": iid}), "ingredient", iid); err != nil {
		return nil, err
	}
	return &ing, nil
}

// GetForUpdate locks the ingredient row; cost updates serialize on it.
func (r *IngredientRepo) GetForUpdate(ctx context.Context, iid id.ID) (*ingredient.Ingredient, error) {
	var ing ingredient.Ingredient
	q := r.baseSelect().Where(sq.Eq{"id": iid}).Suffix("FOR UPDATE")
	if err := r.Get(ctx, &ing, q, "ingredient", iid); err != nil {
		return nil, err
	}
	return &ing, nil
}

func (r *IngredientRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*ingredient.Ingredient, error) {
	out := make(map[id.ID]*ingredient.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []*ingredient.Ingredient
	if err := r.Select(ctx, &rows, r.baseSelect().Where(sq.Eq{"id": ids})); err != nil {
		return nil, err
	}
	for _, ing := range rows {
		out[ing.ID] = ing
	}
	return out, nil
}

func (r *IngredientRepo) List(ctx context.Context) ([]*ingredient.Ingredient, error) {
	var out []*ingredient.Ingredient
	if err := r.Select(ctx, &out, r.baseSelect().OrderBy("name", "id")); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *IngredientRepo) UpdateCost(ctx context.Context, iid id.ID, cost types.Money) error {
	q := postgres.Builder().Update(ingredientTable).
		Set("current_cost", cost).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": iid})
	return r.ExecOne(ctx, q, "ingredient", iid)
}
