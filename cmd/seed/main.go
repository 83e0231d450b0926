// Package main seeds a database with a demo restaurant catalog and prints a
// manager token for the API.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"restoledger/internal/app"
	"restoledger/internal/config"
	appctx "restoledger/internal/core/context"
	"restoledger/internal/core/entity"
	"restoledger/internal/core/id"
	"restoledger/internal/core/types"
	"restoledger/internal/domain/auth"
	"restoledger/internal/domain/cash"
	"restoledger/internal/domain/catalogs/ingredient"
	"restoledger/internal/domain/catalogs/recipe"
	"restoledger/internal/domain/catalogs/warehouse"
	"restoledger/internal/domain/documents/movement"
	"restoledger/internal/infrastructure/lock"
	"restoledger/internal/infrastructure/storage/postgres"
	"restoledger/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("failed to load config", "error", err)
	}
	if !cfg.UsesPostgres() {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "seed", Name: "seed"})

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if schema := os.Getenv("SEED_SCHEMA_FILE"); schema != "" {
		if err := applySchema(ctx, pool, schema); err != nil {
			log.Fatalw("failed to apply schema", "file", schema, "error", err)
		}
		log.Infow("schema applied", "file", schema)
	}

	pg, err := app.NewPostgres(pool, lock.NewLocalLocker(5*time.Second), app.PostgresOptions{})
	if err != nil {
		log.Fatalw("failed to wire ledger", "error", err)
	}

	manager, err := seedDemo(ctx, pg.Ledger, log)
	if err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	jwtConfig := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtConfig.Issuer = cfg.JWTIssuer
	token, expiresAt, err := auth.NewJWTService(jwtConfig).GenerateAccessToken(appctx.UserContext{
		UserID: manager.ID.String(),
		Name:   manager.Name,
		Roles:  []string{string(cash.RoleManager)},
	})
	if err != nil {
		log.Fatalw("failed to issue token", "error", err)
	}

	log.Info("seeding completed successfully")
	fmt.Printf("manager token (expires %s):\n%s\n", expiresAt.Format(time.RFC3339), token)
}

func applySchema(ctx context.Context, pool *postgres.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, string(sql))
	return err
}

type seeder struct {
	ctx    context.Context
	ledger *app.Ledger
	err    error
}

func (s *seeder) warehouse(w *warehouse.Warehouse) *warehouse.Warehouse {
	if s.err == nil {
		s.err = s.ledger.Warehouses.Create(s.ctx, w)
	}
	return w
}

func (s *seeder) ingredient(name, unit string, semiFinished bool) *ingredient.Ingredient {
	ing := ingredient.NewIngredient(name, unit)
	ing.IsSemiFinished = semiFinished
	if s.err == nil {
		s.err = s.ledger.Ingredients.Create(s.ctx, ing)
	}
	return ing
}

func (s *seeder) supply(wh *warehouse.Warehouse, ing *ingredient.Ingredient, qty, price string) {
	if s.err != nil {
		return
	}
	_, s.err = s.ledger.Documents.ProcessMovement(s.ctx, movement.Request{
		Type:              movement.DocTypeSupply,
		TargetWarehouseID: &wh.ID,
		Comment:           "opening stock",
		Lines: []movement.LineInput{{
			IngredientID: ing.ID,
			Quantity:     types.MustQuantity(qty),
			UnitPrice:    types.MustMoney(price),
		}},
	})
}

func (s *seeder) employee(name string, role cash.Role) *cash.Employee {
	e := cash.NewEmployee(name, role)
	if s.err == nil {
		s.err = s.ledger.Cash.CreateEmployee(s.ctx, e)
	}
	return e
}

func seedDemo(ctx context.Context, ledger *app.Ledger, log *logger.Logger) (*cash.Employee, error) {
	s := &seeder{ctx: ctx, ledger: ledger}
	recipes := ledger.Repos.Recipes

	storage := s.warehouse(warehouse.NewWarehouse("Main storage"))
	kitchen := s.warehouse(warehouse.NewProductionCell("Pizza kitchen", &storage.ID))

	flour := s.ingredient("Flour", "kg", false)
	water := s.ingredient("Water", "l", false)
	cheese := s.ingredient("Mozzarella", "kg", false)
	sauce := s.ingredient("Tomato sauce", "kg", false)
	box := s.ingredient("Pizza box", "pcs", false)
	bag := s.ingredient("Delivery bag", "pcs", false)
	dough := s.ingredient("Pizza dough", "kg", true)

	s.supply(storage, flour, "50", "0.80")
	s.supply(storage, water, "100", "0.01")
	s.supply(storage, cheese, "20", "9.50")
	s.supply(storage, sauce, "15", "3.20")
	s.supply(storage, box, "300", "0.35")
	s.supply(storage, bag, "500", "0.05")
	if s.err != nil {
		return nil, s.err
	}

	if err := recipes.SetSemiFinishedRecipe(ctx, dough.ID, []recipe.SemiFinishedItem{
		{SemiFinishedID: dough.ID, LineNo: 1, IngredientID: flour.ID, GrossQty: types.MustQuantity("0.6")},
		{SemiFinishedID: dough.ID, LineNo: 2, IngredientID: water.ID, GrossQty: types.MustQuantity("0.4")},
	}); err != nil {
		return nil, err
	}
	if _, err := ledger.Production.Produce(ctx, dough.ID, types.MustQuantity("10"), storage.ID); err != nil {
		return nil, err
	}

	margherita := recipe.NewProduct("Margherita", &kitchen.ID)
	if err := recipes.CreateProduct(ctx, margherita); err != nil {
		return nil, err
	}
	if err := recipes.SetTechCard(ctx, margherita.ID, []recipe.TechCardItem{
		techCardItem(margherita.ID, 1, dough.ID, "0.25", false),
		techCardItem(margherita.ID, 2, sauce.ID, "0.08", false),
		techCardItem(margherita.ID, 3, cheese.ID, "0.15", false),
		techCardItem(margherita.ID, 4, box.ID, "1", true),
	}); err != nil {
		return nil, err
	}

	extraCheese := recipe.NewModifier("Extra cheese", types.MustMoney("1.50"))
	extraCheese.IngredientID = &cheese.ID
	qty := types.MustQuantity("0.05")
	extraCheese.Quantity = &qty
	if err := recipes.CreateModifier(ctx, extraCheese); err != nil {
		return nil, err
	}

	if err := recipes.CreateRule(ctx, &recipe.AutoDeductionRule{
		BaseEntity:   entity.NewBaseEntity(),
		Name:         "Bag per delivery",
		Trigger:      recipe.TriggerDelivery,
		IngredientID: bag.ID,
		Quantity:     types.MustQuantity("1"),
		WarehouseID:  storage.ID,
		IsActive:     true,
	}); err != nil {
		return nil, err
	}

	manager := s.employee("Olena", cash.RoleManager)
	s.employee("Marta", cash.RoleCashier)
	s.employee("Taras", cash.RoleCourier)
	s.employee("Iryna", cash.RoleWaiter)
	if s.err != nil {
		return nil, s.err
	}

	log.Infow("demo catalog seeded",
		"storage_id", storage.ID,
		"kitchen_id", kitchen.ID,
		"product_id", margherita.ID,
		"modifier_id", extraCheese.ID,
	)
	return manager, nil
}

func techCardItem(productID id.ID, line int, ingredientID id.ID, qty string, takeaway bool) recipe.TechCardItem {
	q := types.MustQuantity(qty)
	return recipe.TechCardItem{
		ProductID:    productID,
		LineNo:       line,
		IngredientID: ingredientID,
		GrossQty:     q,
		NetQty:       q,
		IsTakeaway:   takeaway,
	}
}
