// Package assign matches categories to ledger transactions through their
// filters and keeps the assigned view current as either side changes.
package assign

import (
	"sync"

	"github.com/cashfolio/cashfolio/internal/model"
	"github.com/cashfolio/cashfolio/internal/observe"
)

// Ledger is the upstream view the assigner consumes.
type Ledger interface {
	AllTransactions() []model.Transaction
	SubscribeToChanges(fn func())
}

// Assigner lazily recomputes the assigned transaction list whenever the
// ledger or the category collection changes, and notifies its own observers
// on every upstream change.
type Assigner struct {
	ledger     Ledger
	categories *Categories

	mu        sync.Mutex
	assigned  []model.AssignedTransaction
	stale     bool
	observers observe.List
}

func NewAssigner(ledger Ledger, categories *Categories) *Assigner {
	a := &Assigner{ledger: ledger, categories: categories, stale: true}
	ledger.SubscribeToChanges(a.invalidate)
	categories.SubscribeToChanges(a.invalidate)
	return a
}

// SubscribeToChanges registers fn to run whenever the assigned view goes
// stale.
func (a *Assigner) SubscribeToChanges(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.observers.Subscribe(fn)
}

// AllTransactions returns the current assigned view, recomputing it first
// if an upstream change invalidated it. Callers must not mutate the result.
func (a *Assigner) AllTransactions() []model.AssignedTransaction {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stale {
		a.assigned = Assign(a.ledger.AllTransactions(), a.categories.All())
		a.stale = false
	}
	return a.assigned
}

func (a *Assigner) invalidate() {
	a.mu.Lock()
	a.stale = true
	a.mu.Unlock()

	a.observers.Notify()
}

// Assign evaluates every category filter against every transaction and
// returns the assigned view in ledger order. It is a pure function of its
// inputs. Per transaction, manual matches come first in category order,
// then text matches in category order and per-category filter order.
func Assign(transactions []model.Transaction, categories []model.Category) []model.AssignedTransaction {
	manual := map[uint64][]model.Assignment{}
	for _, category := range categories {
		for _, f := range category.Filters {
			mf, ok := f.(model.ManualFilter)
			if !ok {
				continue
			}
			manual[mf.Transaction] = append(manual[mf.Transaction], model.Assignment{
				CategoryName: category.Name,
				FilterID:     mf.ID,
				FilterType:   model.FilterManual,
			})
		}
	}

	assigned := make([]model.AssignedTransaction, 0, len(transactions))
	for _, tx := range transactions {
		assignments := append([]model.Assignment(nil), manual[tx.Identity()]...)
		for _, category := range categories {
			for _, f := range category.Filters {
				tf, ok := f.(*model.TextFilter)
				if !ok {
					continue
				}
				if tf.Matches(tx) {
					assignments = append(assignments, model.Assignment{
						CategoryName: category.Name,
						FilterID:     tf.ID,
						FilterType:   model.FilterText,
					})
				}
			}
		}
		assigned = append(assigned, model.AssignedTransaction{
			Transaction: tx,
			Assignments: assignments,
		})
	}
	return assigned
}
