package ingredient

import (
	"context"
	"fmt"

	"restoledger/internal/core/id"
)

// Service provides read access and registration for ingredients.
// Costs are maintained by the costing engine, never set here after creation.
type Service struct {
	repo Repository
}

// NewService creates a new Ingredient service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and stores an ingredient.
func (s *Service) Create(ctx context.Context, ing *Ingredient) error {
	if err := ing.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, ing); err != nil {
		return fmt.Errorf("create ingredient: %w", err)
	}
	return nil
}

// GetByID returns an ingredient.
func (s *Service) GetByID(ctx context.Context, ingredientID id.ID) (*Ingredient, error) {
	return s.repo.GetByID(ctx, ingredientID)
}

// List returns all ingredients.
func (s *Service) List(ctx context.Context) ([]*Ingredient, error) {
	return s.repo.List(ctx)
}
