// Package catalog holds the list of algorithms the execution service offers.
//
// LIFECYCLE:
// A Catalog starts empty. Load issues exactly one fetch; on success the
// catalog holds the descriptors in server order, on any failure it is
// emptied and remembers the error for display. Nothing is retried — the
// operator reloads explicitly, which is simply another Load.
//
// INPUT SHAPES:
// Descriptors that carry an "inputShape" tag keep it. Older execution
// services do not send one, so the catalog falls back to a legacy table of
// id → shape (by default Binary Search, id 3, takes a list and a target).
// Either way every descriptor leaves the catalog with a resolved shape and
// the encoder never needs to know about specific ids.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/sakif/algotest/internal/apperror"
	"github.com/sakif/algotest/internal/model"
)

// BinarySearchID is the execution service's reserved Binary Search id.
const BinarySearchID = model.BinarySearchID

// DefaultLegacyShapes is used when no WithLegacyShapes option is given.
func DefaultLegacyShapes() map[int]model.InputShape {
	return model.LegacyShapes()
}

// Fetcher loads descriptors from the execution service. *apiclient.Client
// implements it.
type Fetcher interface {
	FetchAlgorithms(ctx context.Context) ([]model.Algorithm, error)
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithLegacyShapes replaces the id → shape fallback table.
func WithLegacyShapes(shapes map[int]model.InputShape) Option {
	return func(c *Catalog) {
		c.legacy = make(map[int]model.InputShape, len(shapes))
		for id, s := range shapes {
			c.legacy[id] = s
		}
	}
}

// Catalog is safe for concurrent use: the UI reads while a reload runs.
type Catalog struct {
	fetcher Fetcher
	logger  *slog.Logger
	legacy  map[int]model.InputShape

	mu         sync.RWMutex
	algorithms []model.Algorithm
	index      map[int]int // id → position in algorithms
	err        error
}

// New creates an empty Catalog. Call Load to populate it.
func New(fetcher Fetcher, logger *slog.Logger, opts ...Option) *Catalog {
	c := &Catalog{
		fetcher: fetcher,
		logger:  logger,
		legacy:  DefaultLegacyShapes(),
		index:   map[int]int{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load fetches the catalog once. The returned error (also available from
// Err until the next Load) wraps apperror.ErrCatalogFetch.
func (c *Catalog) Load(ctx context.Context) error {
	algorithms, err := c.fetcher.FetchAlgorithms(ctx)
	if err == nil {
		err = checkUnique(algorithms)
	}
	if err != nil && !errors.Is(err, apperror.ErrCatalogFetch) {
		err = apperror.CatalogFetch(0, err)
	}
	if err != nil {
		c.logger.Error("failed to load algorithm catalog", slog.String("error", err.Error()))
		c.replace(nil, nil, err)
		return err
	}

	resolved := make([]model.Algorithm, len(algorithms))
	index := make(map[int]int, len(algorithms))
	for i, a := range algorithms {
		resolved[i] = a.Resolved(c.legacy)
		index[a.ID] = i
	}

	c.replace(resolved, index, nil)
	c.logger.Info("algorithm catalog loaded", slog.Int("count", len(resolved)))
	return nil
}

func (c *Catalog) replace(algorithms []model.Algorithm, index map[int]int, err error) {
	if index == nil {
		index = map[int]int{}
	}
	c.mu.Lock()
	c.algorithms = algorithms
	c.index = index
	c.err = err
	c.mu.Unlock()
}

// checkUnique rejects catalogs that reuse an id. Ids select encoding rules
// and history entries, so a duplicate makes the whole catalog unusable.
func checkUnique(algorithms []model.Algorithm) error {
	seen := make(map[int]struct{}, len(algorithms))
	for _, a := range algorithms {
		if _, dup := seen[a.ID]; dup {
			return apperror.CatalogFetch(0, fmt.Errorf("duplicate algorithm id %d", a.ID))
		}
		seen[a.ID] = struct{}{}
	}
	return nil
}

// List returns a copy of the descriptors in server order.
func (c *Catalog) List() []model.Algorithm {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Algorithm(nil), c.algorithms...)
}

// Len returns the number of loaded descriptors.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.algorithms)
}

// Lookup returns the descriptor with the given id.
func (c *Catalog) Lookup(id int) (model.Algorithm, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return model.Algorithm{}, apperror.NotFound("algorithm", strconv.Itoa(id))
	}
	return c.algorithms[i], nil
}

// Err returns the failure of the most recent Load, or nil.
func (c *Catalog) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}
