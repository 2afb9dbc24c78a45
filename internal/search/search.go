// Package search answers queries over assigned transactions, serving recent
// results from a bounded cache that is invalidated wholesale whenever the
// assigned view changes.
package search

import (
	"sync"

	"github.com/cashfolio/cashfolio/internal/model"
	"github.com/cashfolio/cashfolio/internal/observe"
)

// DefaultMaxCacheEntries bounds the query cache when no explicit capacity
// is configured.
const DefaultMaxCacheEntries = 5

// Assignments is the upstream view the searcher consumes.
type Assignments interface {
	AllTransactions() []model.AssignedTransaction
	SubscribeToChanges(fn func())
}

type cacheEntry struct {
	query   model.SearchQuery
	results []model.AssignedTransaction
}

// Searcher filters assigned transactions by query, in ledger order.
type Searcher struct {
	assignments Assignments

	mu        sync.Mutex
	cache     []cacheEntry
	maxCache  int
	observers observe.List
}

// New builds a Searcher over the given assigned view. maxCacheEntries <= 0
// selects DefaultMaxCacheEntries.
func New(assignments Assignments, maxCacheEntries int) *Searcher {
	if maxCacheEntries <= 0 {
		maxCacheEntries = DefaultMaxCacheEntries
	}
	s := &Searcher{assignments: assignments, maxCache: maxCacheEntries}
	assignments.SubscribeToChanges(s.invalidate)
	return s
}

// SubscribeToChanges registers fn to run whenever cached results become
// stale.
func (s *Searcher) SubscribeToChanges(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers.Subscribe(fn)
}

// Search returns the assigned transactions matching the query, in ledger
// order. Results may be served from cache; callers must not mutate them.
func (s *Searcher) Search(query model.SearchQuery) []model.AssignedTransaction {
	s.mu.Lock()
	for _, entry := range s.cache {
		if entry.query.Equal(query) {
			results := entry.results
			s.mu.Unlock()
			return results
		}
	}
	s.mu.Unlock()

	results := s.compute(query)

	s.mu.Lock()
	if len(s.cache) >= s.maxCache {
		s.cache = s.cache[1:]
	}
	s.cache = append(s.cache, cacheEntry{query: query, results: results})
	s.mu.Unlock()
	return results
}

func (s *Searcher) compute(query model.SearchQuery) []model.AssignedTransaction {
	all := s.assignments.AllTransactions()
	results := make([]model.AssignedTransaction, 0)
	for _, tx := range all {
		if matches(tx, query) {
			results = append(results, tx)
		}
	}
	return results
}

// matches applies every present query field: assignment fields must all be
// satisfied by at least one single assignment, account is matched against
// the transaction's own account and contra-account, and the period must
// contain the transaction date.
func matches(tx model.AssignedTransaction, query model.SearchQuery) bool {
	if query.CategoryName != nil || query.FilterType != nil || query.FilterID != nil {
		satisfied := false
		for _, a := range tx.Assignments {
			if query.CategoryName != nil && a.CategoryName != *query.CategoryName {
				continue
			}
			if query.FilterType != nil && a.FilterType != *query.FilterType {
				continue
			}
			if query.FilterID != nil && a.FilterID != *query.FilterID {
				continue
			}
			satisfied = true
			break
		}
		if !satisfied {
			return false
		}
	}
	if query.Account != nil &&
		tx.Account != *query.Account && tx.ContraAccount != *query.Account {
		return false
	}
	if query.Period != nil && !query.Period.ContainsDate(tx.Date) {
		return false
	}
	return true
}

func (s *Searcher) invalidate() {
	s.mu.Lock()
	s.cache = nil
	s.mu.Unlock()

	s.observers.Notify()
}
