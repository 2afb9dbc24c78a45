// Package cashflow computes income and expense totals for a search query,
// with its own bounded cache chained behind the search engine's.
package cashflow

import (
	"sync"

	"github.com/cashfolio/cashfolio/internal/model"
	"github.com/cashfolio/cashfolio/internal/observe"
	"github.com/cashfolio/cashfolio/internal/search"
)

// Searcher is the upstream the calculator delegates matching to.
type Searcher interface {
	Search(query model.SearchQuery) []model.AssignedTransaction
	SubscribeToChanges(fn func())
}

// CashFlow holds the totals for a query in minor units. Both values are
// non-negative: expenses carry the negated sum of negative amounts.
type CashFlow struct {
	Income   int64
	Expenses int64
}

type cacheEntry struct {
	query  model.SearchQuery
	result CashFlow
}

// Calculator folds search results into cash-flow totals.
type Calculator struct {
	searcher Searcher

	mu        sync.Mutex
	cache     []cacheEntry
	maxCache  int
	observers observe.List
}

// New builds a Calculator over the given searcher. maxCacheEntries <= 0
// selects the search package default.
func New(searcher Searcher, maxCacheEntries int) *Calculator {
	if maxCacheEntries <= 0 {
		maxCacheEntries = search.DefaultMaxCacheEntries
	}
	c := &Calculator{searcher: searcher, maxCache: maxCacheEntries}
	searcher.SubscribeToChanges(c.invalidate)
	return c
}

// SubscribeToChanges registers fn to run whenever cached totals become
// stale.
func (c *Calculator) SubscribeToChanges(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers.Subscribe(fn)
}

// Calculate returns the income and expense totals of the transactions
// matching the query. A zero-amount transaction contributes to neither.
func (c *Calculator) Calculate(query model.SearchQuery) CashFlow {
	c.mu.Lock()
	for _, entry := range c.cache {
		if entry.query.Equal(query) {
			result := entry.result
			c.mu.Unlock()
			return result
		}
	}
	c.mu.Unlock()

	var result CashFlow
	for _, tx := range c.searcher.Search(query) {
		if tx.Amount > 0 {
			result.Income += tx.Amount
		} else {
			result.Expenses += -tx.Amount
		}
	}

	c.mu.Lock()
	if len(c.cache) >= c.maxCache {
		c.cache = c.cache[1:]
	}
	c.cache = append(c.cache, cacheEntry{query: query, result: result})
	c.mu.Unlock()
	return result
}

func (c *Calculator) invalidate() {
	c.mu.Lock()
	c.cache = nil
	c.mu.Unlock()

	c.observers.Notify()
}
