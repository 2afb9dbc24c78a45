// Package service wires the persistence layer to the engine stages and
// keeps the two consistent: imports parse then land in both the ledger and
// the store, removals hit both, and startup replays the store into the
// ledger batch by batch in stored order.
package service

import (
	"context"
	"fmt"

	"github.com/cashfolio/cashfolio/internal/assign"
	"github.com/cashfolio/cashfolio/internal/cashflow"
	"github.com/cashfolio/cashfolio/internal/ledger"
	"github.com/cashfolio/cashfolio/internal/search"
	"github.com/cashfolio/cashfolio/internal/sources"
	"github.com/cashfolio/cashfolio/internal/store"
)

// App owns the full engine pipeline and its collaborators.
type App struct {
	Store   *store.Store
	Sources *sources.Registry

	Ledger     *ledger.Ledger
	Categories *assign.Categories
	Assigner   *assign.Assigner
	Searcher   *search.Searcher
	CashFlow   *cashflow.Calculator
}

// New assembles the pipeline. maxCacheEntries <= 0 selects the default
// bound for both query caches.
func New(st *store.Store, registry *sources.Registry, maxCacheEntries int) *App {
	a := &App{
		Store:      st,
		Sources:    registry,
		Ledger:     ledger.New(),
		Categories: assign.NewCategories(),
	}
	a.Assigner = assign.NewAssigner(a.Ledger, a.Categories)
	a.Searcher = search.New(a.Assigner, maxCacheEntries)
	a.CashFlow = cashflow.New(a.Searcher, maxCacheEntries)
	return a
}

// Init reconstructs the engine state from the store: every persisted batch
// is re-parsed and replayed through AddBatch in stored order, then the
// category settings are loaded.
func (a *App) Init(ctx context.Context) error {
	batches, err := a.Store.ListBatches(ctx)
	if err != nil {
		return err
	}
	for _, b := range batches {
		transactions, err := a.Sources.Parse(b.RawData)
		if err != nil {
			return fmt.Errorf("replay batch %q: %w", b.Name, err)
		}
		if _, err := a.Ledger.AddBatch(b.Name, transactions); err != nil {
			return fmt.Errorf("replay batch %q: %w", b.Name, err)
		}
	}

	categories, err := a.Store.LoadCategories(ctx)
	if err != nil {
		return err
	}
	if len(categories) > 0 {
		a.Categories.Replace(categories)
	}
	return nil
}

// Import parses raw export data, adds it to the ledger under the given name
// and persists the raw text under the canonical (possibly suffixed) name.
// Parse failures abort before any state changes.
func (a *App) Import(ctx context.Context, name, rawData string) (string, error) {
	transactions, err := a.Sources.Parse(rawData)
	if err != nil {
		return "", err
	}
	stored, err := a.Ledger.AddBatch(name, transactions)
	if err != nil {
		return "", err
	}
	if err := a.Store.PutBatch(ctx, stored, rawData); err != nil {
		return "", err
	}
	return stored, nil
}

// RemoveBatch drops a batch from the ledger and the store. Unknown names
// are a no-op.
func (a *App) RemoveBatch(ctx context.Context, name string) error {
	a.Ledger.RemoveBatch(name)
	return a.Store.RemoveBatch(ctx, name)
}

// SaveCategories persists the current category collection.
func (a *App) SaveCategories(ctx context.Context) error {
	return a.Store.SaveCategories(ctx, a.Categories.All())
}
