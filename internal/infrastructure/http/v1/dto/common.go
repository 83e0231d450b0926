// Package dto provides request and response bodies of the HTTP API.
// Money and quantities travel as decimal strings.
package dto

import (
	"restoledger/internal/core/apperror"
	"restoledger/internal/core/id"
)

// IDResponse is returned by create endpoints.
type IDResponse struct {
	ID string `json:"id"`
}

// SuccessResponse acknowledges an operation without a body.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ListResponse wraps a list.
type ListResponse struct {
	Items any `json:"items"`
	Count int `json:"count"`
}

// ParseOptionalID parses s when it is set.
func ParseOptionalID(field, s string) (*id.ID, error) {
	if s == "" {
		return nil, nil
	}
	v, err := id.Parse(s)
	if err != nil {
		return nil, apperror.NewValidation("invalid id").WithDetail("field", field)
	}
	return &v, nil
}

// ParseID parses a required id.
func ParseID(field, s string) (id.ID, error) {
	v, err := id.Parse(s)
	if err != nil {
		return id.ID{}, apperror.NewValidation("invalid id").WithDetail("field", field)
	}
	return v, nil
}
