// Package ledger implements the reconciliation engine: it merges per-source
// transaction batches into one canonical, duplicate-free, date-ascending
// sequence.
package ledger

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cashfolio/cashfolio/internal/model"
	"github.com/cashfolio/cashfolio/internal/observe"
)

type batch struct {
	name         string
	transactions []model.Transaction
}

// Ledger owns the source batches and the canonical merged sequence.
// Mutations fire change notifications after fully applying; queries return
// snapshots or slices the caller must not mutate.
type Ledger struct {
	mu        sync.Mutex
	batches   []batch
	merged    []model.Transaction
	observers observe.List
}

func New() *Ledger {
	return &Ledger{}
}

// SubscribeToChanges registers fn to run after every batch mutation.
func (l *Ledger) SubscribeToChanges(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers.Subscribe(fn)
}

// AddBatch ingests a named transaction batch into the ledger and returns
// the name it was stored under. A name already in use gets the smallest
// " (k)" suffix that is free. An empty batch is a validation error; nothing
// is stored and no notification fires.
func (l *Ledger) AddBatch(name string, transactions []model.Transaction) (string, error) {
	if len(transactions) == 0 {
		return "", &model.ValidationError{Reason: "batch contains no transactions"}
	}

	l.mu.Lock()
	stored := l.freeName(name)
	run := append([]model.Transaction(nil), transactions...)
	sort.SliceStable(run, func(i, j int) bool { return run[i].Date.Before(run[j].Date) })
	l.batches = append(l.batches, batch{name: stored, transactions: run})
	l.merged = mergeRun(l.merged, run)
	l.mu.Unlock()

	l.observers.Notify()
	return stored, nil
}

// RemoveBatch drops the named batch and rebuilds the ledger from the
// remaining batches in their original insertion order. Removing an unknown
// name is a no-op.
func (l *Ledger) RemoveBatch(name string) {
	l.mu.Lock()
	idx := -1
	for i, b := range l.batches {
		if b.name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return
	}
	l.batches = append(l.batches[:idx], l.batches[idx+1:]...)
	l.merged = nil
	for _, b := range l.batches {
		l.merged = mergeRun(l.merged, b.transactions)
	}
	l.mu.Unlock()

	l.observers.Notify()
}

// AllTransactions returns the canonical duplicate-free sequence, ascending
// by date. Callers must not mutate the returned slice.
func (l *Ledger) AllTransactions() []model.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.merged
}

func (l *Ledger) freeName(name string) string {
	inUse := func(candidate string) bool {
		for _, b := range l.batches {
			if b.name == candidate {
				return true
			}
		}
		return false
	}
	candidate := name
	for k := 1; inUse(candidate); k++ {
		candidate = fmt.Sprintf("%s (%d)", name, k)
	}
	return candidate
}

// mergeRun merges a date-sorted run into the date-sorted ledger sequence,
// dropping run entries that duplicate an existing entry. Linear in total
// size plus, per entry, the width of the same-date run: O(n*W + n log n)
// including the caller's sort.
func mergeRun(ledger, run []model.Transaction) []model.Transaction {
	if len(ledger) == 0 {
		return append([]model.Transaction(nil), run...)
	}
	out := make([]model.Transaction, 0, len(ledger)+len(run))
	i := 0
	for _, tx := range run {
		for i < len(ledger) && ledger[i].Date.Before(tx.Date) {
			out = append(out, ledger[i])
			i++
		}
		duplicate := false
		for j := i; j < len(ledger) && ledger[j].Date.Equal(tx.Date); j++ {
			if model.Duplicates(ledger[j], tx) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, tx)
		}
	}
	return append(out, ledger[i:]...)
}
