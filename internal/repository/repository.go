// Package repository defines the storage interfaces the app layer depends on.
// Implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/sakif/algotest/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int

	// AlgorithmID restricts the listing to one algorithm; 0 means all.
	AlgorithmID int
}

// RunRepository stores the local run history.
type RunRepository interface {
	Create(ctx context.Context, run *model.RunRecord) error
	GetByID(ctx context.Context, id string) (*model.RunRecord, error)
	List(ctx context.Context, opts ListOptions) ([]model.RunRecord, error)
	Clear(ctx context.Context) (int64, error)
}
