package entity

import (
	"context"
	"time"

	"restoledger/internal/core/id"
)

// Validatable is implemented by catalog items and documents that can check
// their own invariants before they reach a repository.
type Validatable interface {
	Validate(ctx context.Context) error
}

// BaseEntity is the identity shared by every stored record: a UUIDv7 key
// and a version bumped on each update.
type BaseEntity struct {
	ID      id.ID `db:"id" json:"id"`
	Version int   `db:"version" json:"version"`
}

func NewBaseEntity() BaseEntity {
	return BaseEntity{ID: id.New(), Version: 1}
}

// Touch bumps the version.
func (b *BaseEntity) Touch() {
	b.Version++
}

// IsStale reports whether b was read before the stored copy last changed.
func (b BaseEntity) IsStale(stored BaseEntity) bool {
	return b.Version < stored.Version
}

// BaseDocument adds timestamps and the acting employee to BaseEntity.
// Movement documents embed it through entity.Document.
type BaseDocument struct {
	BaseEntity

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	CreatedBy string    `db:"created_by" json:"createdBy,omitempty"`
}

func NewBaseDocument() BaseDocument {
	now := time.Now().UTC()
	return BaseDocument{
		BaseEntity: NewBaseEntity(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch stamps UpdatedAt and bumps the version.
func (b *BaseDocument) Touch() {
	b.UpdatedAt = time.Now().UTC()
	b.BaseEntity.Touch()
}
