package search

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cashfolio/cashfolio/internal/model"
	"github.com/cashfolio/cashfolio/internal/observe"
)

// stubAssignments is a canned upstream view that counts how often the
// searcher pulls from it.
type stubAssignments struct {
	transactions []model.AssignedTransaction
	calls        int
	observers    observe.List
}

func (s *stubAssignments) AllTransactions() []model.AssignedTransaction {
	s.calls++
	return s.transactions
}

func (s *stubAssignments) SubscribeToChanges(fn func()) {
	s.observers.Subscribe(fn)
}

func (s *stubAssignments) change() {
	s.observers.Notify()
}

func assigned(d time.Time, amount int64, account, contra, categoryName string, filterID int, filterType string) model.AssignedTransaction {
	tx := model.AssignedTransaction{
		Transaction: model.Transaction{
			Date:          d,
			Amount:        amount,
			Account:       account,
			ContraAccount: contra,
			Description:   fmt.Sprintf("tx %s %d", account, amount),
		},
	}
	if categoryName != "" {
		tx.Assignments = []model.Assignment{{CategoryName: categoryName, FilterID: filterID, FilterType: filterType}}
	}
	return tx
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func fixtureView() *stubAssignments {
	return &stubAssignments{transactions: []model.AssignedTransaction{
		assigned(date(2022, 5, 2), 4000, "NL00MAIN", "", "Income", 1, model.FilterText),
		assigned(date(2022, 5, 10), -450, "NL00MAIN", "NL11SHOP", "Groceries", 2, model.FilterText),
		assigned(date(2022, 6, 1), -900, "NL00MAIN", "", "Tools", 3, model.FilterManual),
		assigned(date(2022, 6, 3), -100, "NL22SAVE", "", "", 0, ""),
	}}
}

func TestSearchByCategory(t *testing.T) {
	t.Parallel()

	s := New(fixtureView(), 0)
	results := s.Search(model.SearchQuery{CategoryName: strPtr("Groceries")})
	require.Len(t, results, 1)
	require.Equal(t, int64(-450), results[0].Amount)
}

func TestSearchAssignmentFieldsMustAgree(t *testing.T) {
	t.Parallel()

	view := fixtureView()
	// second assignment on the groceries transaction with a different filter
	view.transactions[1].Assignments = append(view.transactions[1].Assignments,
		model.Assignment{CategoryName: "Shopping", FilterID: 9, FilterType: model.FilterManual})

	s := New(view, 0)

	// category and filter id from different assignments never match
	results := s.Search(model.SearchQuery{CategoryName: strPtr("Groceries"), FilterID: intPtr(9)})
	require.Empty(t, results)

	// but the pair from one assignment does
	results = s.Search(model.SearchQuery{CategoryName: strPtr("Shopping"), FilterID: intPtr(9)})
	require.Len(t, results, 1)
}

func TestSearchByAccountIncludesContra(t *testing.T) {
	t.Parallel()

	s := New(fixtureView(), 0)
	results := s.Search(model.SearchQuery{Account: strPtr("NL11SHOP")})
	require.Len(t, results, 1, "contra-account side must match too")
	require.Equal(t, int64(-450), results[0].Amount)
}

func TestSearchByPeriod(t *testing.T) {
	t.Parallel()

	s := New(fixtureView(), 0)
	p := model.Period{Type: model.PeriodMonth, Year: 2022, Number: 5}
	results := s.Search(model.SearchQuery{Period: &p})
	require.Len(t, results, 2)
}

func TestSearchEmptyQueryReturnsAll(t *testing.T) {
	t.Parallel()

	s := New(fixtureView(), 0)
	require.Len(t, s.Search(model.SearchQuery{}), 4)
}

func TestSearchCachesRepeatedQueries(t *testing.T) {
	t.Parallel()

	view := fixtureView()
	s := New(view, 0)

	query := model.SearchQuery{CategoryName: strPtr("Income")}
	first := s.Search(query)
	require.Equal(t, 1, view.calls)

	// an equal query built from different pointers hits the cache
	second := s.Search(model.SearchQuery{CategoryName: strPtr("Income")})
	require.Equal(t, 1, view.calls, "repeated query must be served from cache")
	require.Equal(t, first, second)
}

func TestSearchCacheInvalidatedOnChange(t *testing.T) {
	t.Parallel()

	view := fixtureView()
	s := New(view, 0)

	notified := 0
	s.SubscribeToChanges(func() { notified++ })

	query := model.SearchQuery{CategoryName: strPtr("Income")}
	s.Search(query)
	require.Equal(t, 1, view.calls)

	view.change()
	require.Equal(t, 1, notified, "invalidation must propagate downstream")

	s.Search(query)
	require.Equal(t, 2, view.calls, "stale cache must recompute")
}

func TestSearchCacheBounded(t *testing.T) {
	t.Parallel()

	view := fixtureView()
	s := New(view, 2)

	a := model.SearchQuery{CategoryName: strPtr("Income")}
	b := model.SearchQuery{CategoryName: strPtr("Groceries")}
	c := model.SearchQuery{CategoryName: strPtr("Tools")}

	s.Search(a)
	s.Search(b)
	s.Search(c) // evicts a, the oldest entry
	require.Equal(t, 3, view.calls)

	s.Search(b)
	s.Search(c)
	require.Equal(t, 3, view.calls, "b and c must still be cached")

	s.Search(a)
	require.Equal(t, 4, view.calls, "a was evicted and must recompute")
}

func TestSearchDefaultCacheCapacity(t *testing.T) {
	t.Parallel()

	view := fixtureView()
	s := New(view, 0)

	queries := make([]model.SearchQuery, 6)
	for i := range queries {
		queries[i] = model.SearchQuery{FilterID: intPtr(i + 100)}
		s.Search(queries[i])
	}
	require.Equal(t, 6, view.calls)

	// the five most recent queries are still cached
	for _, q := range queries[1:] {
		s.Search(q)
	}
	require.Equal(t, 6, view.calls)

	// the first one fell out
	s.Search(queries[0])
	require.Equal(t, 7, view.calls)
}
