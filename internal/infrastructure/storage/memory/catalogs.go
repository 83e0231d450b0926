package memory

import (
	"context"
	"slices"

	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/catalogs/warehouse"
)

// WarehouseRepo implements warehouse.Repository.
type WarehouseRepo struct{ s *Store }

var _ warehouse.Repository = (*WarehouseRepo)(nil)

func (r *WarehouseRepo) Create(ctx context.Context, w *warehouse.Warehouse) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.st.warehouses[w.ID]; ok {
		return apperror.NewConflict("warehouse already exists")
	}
	r.s.st.warehouses[w.ID] = *w
	return nil
}

func (r *WarehouseRepo) GetByID(ctx context.Context, wid id.ID) (*warehouse.Warehouse, error) {
	defer r.s.read(ctx)()
	w, ok := r.s.st.warehouses[wid]
	if !ok {
		return nil, apperror.NewNotFound("warehouse", wid)
	}
	return &w, nil
}

func (r *WarehouseRepo) List(ctx context.Context) ([]*warehouse.Warehouse, error) {
	defer r.s.read(ctx)()
	out := make([]*warehouse.Warehouse, 0, len(r.s.st.warehouses))
	for _, w := range r.s.st.warehouses {
		out = append(out, &w)
	}
	sortByID(out, func(w *warehouse.Warehouse) id.ID { return w.ID })
	return out, nil
}

func (r *WarehouseRepo) First(ctx context.Context) (*warehouse.Warehouse, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, apperror.NewNotFound("warehouse", "any")
	}
	return all[0], nil
}

// IngredientRepo implements ingredient.Repository.
type IngredientRepo struct{ s *Store }

var _ ingredient.Repository = (*IngredientRepo)(nil)

func (r *IngredientRepo) Create(ctx context.Context, ing *ingredient.Ingredient) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.st.ingredients[ing.ID]; ok {
		return apperror.NewConflict("ingredient already exists")
	}
	r.s.st.ingredients[ing.ID] = *ing
	return nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, iid id.ID) (*ingredient.Ingredient, error) {
	defer r.s.read(ctx)()
	ing, ok := r.s.st.ingredients[iid]
	if !ok {
		return nil, apperror.NewNotFound("ingredient", iid)
	}
	return &ing, nil
}

func (r *IngredientRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*ingredient.Ingredient, error) {
	defer r.s.read(ctx)()
	out := make(map[id.ID]*ingredient.Ingredient, len(ids))
	for _, iid := range ids {
		if ing, ok := r.s.st.ingredients[iid]; ok {
			out[iid] = &ing
		}
	}
	return out, nil
}

func (r *IngredientRepo) List(ctx context.Context) ([]*ingredient.Ingredient, error) {
	defer r.s.read(ctx)()
	out := make([]*ingredient.Ingredient, 0, len(r.s.st.ingredients))
	for _, ing := range r.s.st.ingredients {
		out = append(out, &ing)
	}
	sortByID(out, func(i *ingredient.Ingredient) id.ID { return i.ID })
	return out, nil
}

func (r *IngredientRepo) GetForUpdate(ctx context.Context, iid id.ID) (*ingredient.Ingredient, error) {
	return r.GetByID(ctx, iid)
}

func (r *IngredientRepo) UpdateCost(ctx context.Context, iid id.ID, cost types.Money) error {
	defer r.s.write(ctx)()
	ing, ok := r.s.st.ingredients[iid]
	if !ok {
		return apperror.NewNotFound("ingredient", iid)
	}
	ing.CurrentCost = cost
	ing.Touch()
	r.s.st.ingredients[iid] = ing
	return nil
}

// RecipeRepo implements recipe.Repository.
type RecipeRepo struct{ s *Store }

var _ recipe.Repository = (*RecipeRepo)(nil)

func (r *RecipeRepo) CreateProduct(ctx context.Context, p *recipe.Product) error {
	defer r.s.write(ctx)()
	r.s.st.products[p.ID] = *p
	return nil
}

func (r *RecipeRepo) GetProduct(ctx context.Context, pid id.ID) (*recipe.Product, error) {
	defer r.s.read(ctx)()
	p, ok := r.s.st.products[pid]
	if !ok {
		return nil, apperror.NewNotFound("product", pid)
	}
	return &p, nil
}

func (r *RecipeRepo) TechCard(ctx context.Context, productID id.ID) ([]recipe.TechCardItem, error) {
	defer r.s.read(ctx)()
	items := slices.Clone(r.s.st.techCards[productID])
	slices.SortFunc(items, func(a, b recipe.TechCardItem) int { return a.LineNo - b.LineNo })
	return items, nil
}

func (r *RecipeRepo) SetTechCard(ctx context.Context, productID id.ID, items []recipe.TechCardItem) error {
	defer r.s.write(ctx)()
	if _, ok := r.s.st.products[productID]; !ok {
		return apperror.NewNotFound("product", productID)
	}
	stored := slices.Clone(items)
	for i := range stored {
		stored[i].ProductID = productID
		if stored[i].LineNo == 0 {
			stored[i].LineNo = i + 1
		}
	}
	r.s.st.techCards[productID] = stored
	return nil
}

func (r *RecipeRepo) SemiFinishedRecipe(ctx context.Context, ingredientID id.ID) ([]recipe.SemiFinishedItem, error) {
	defer r.s.read(ctx)()
	items := slices.Clone(r.s.st.semiFinished[ingredientID])
	slices.SortFunc(items, func(a, b recipe.SemiFinishedItem) int { return a.LineNo - b.LineNo })
	return items, nil
}

func (r *RecipeRepo) SetSemiFinishedRecipe(ctx context.Context, ingredientID id.ID, items []recipe.SemiFinishedItem) error {
	defer r.s.write(ctx)()
	stored := slices.Clone(items)
	for i := range stored {
		stored[i].SemiFinishedID = ingredientID
		if stored[i].LineNo == 0 {
			stored[i].LineNo = i + 1
		}
	}
	r.s.st.semiFinished[ingredientID] = stored
	return nil
}

func (r *RecipeRepo) CreateModifier(ctx context.Context, m *recipe.Modifier) error {
	defer r.s.write(ctx)()
	r.s.st.modifiers[m.ID] = *m
	return nil
}

func (r *RecipeRepo) GetModifier(ctx context.Context, mid id.ID) (*recipe.Modifier, error) {
	defer r.s.read(ctx)()
	m, ok := r.s.st.modifiers[mid]
	if !ok {
		return nil, apperror.NewNotFound("modifier", mid)
	}
	return &m, nil
}

func (r *RecipeRepo) CreateRule(ctx context.Context, rule *recipe.AutoDeductionRule) error {
	defer r.s.write(ctx)()
	r.s.st.rules[rule.ID] = *rule
	return nil
}

func (r *RecipeRepo) ListActiveRules(ctx context.Context) ([]*recipe.AutoDeductionRule, error) {
	defer r.s.read(ctx)()
	var out []*recipe.AutoDeductionRule
	for _, rule := range r.s.st.rules {
		if rule.IsActive {
			out = append(out, &rule)
		}
	}
	sortByID(out, func(r *recipe.AutoDeductionRule) id.ID { return r.ID })
	return out, nil
}
