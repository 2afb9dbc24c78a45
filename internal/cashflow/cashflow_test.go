package cashflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cashfolio/cashfolio/internal/model"
	"github.com/cashfolio/cashfolio/internal/observe"
)

// stubSearcher serves canned results and counts searches.
type stubSearcher struct {
	results   []model.AssignedTransaction
	calls     int
	observers observe.List
}

func (s *stubSearcher) Search(model.SearchQuery) []model.AssignedTransaction {
	s.calls++
	return s.results
}

func (s *stubSearcher) SubscribeToChanges(fn func()) {
	s.observers.Subscribe(fn)
}

func (s *stubSearcher) change() {
	s.observers.Notify()
}

func amount(v int64) model.AssignedTransaction {
	return model.AssignedTransaction{Transaction: model.Transaction{
		Date:   time.Date(2021, 11, 3, 0, 0, 0, 0, time.UTC),
		Amount: v,
	}}
}

func TestCalculateSplitsIncomeAndExpenses(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{results: []model.AssignedTransaction{amount(4000), amount(-450)}}
	c := New(s, 0)

	flow := c.Calculate(model.SearchQuery{})
	require.Equal(t, CashFlow{Income: 4000, Expenses: 450}, flow)
}

func TestCalculateZeroAmount(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{results: []model.AssignedTransaction{amount(0)}}
	c := New(s, 0)
	require.Equal(t, CashFlow{}, c.Calculate(model.SearchQuery{}))
}

func TestCalculateEmptyResults(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{}
	c := New(s, 0)
	require.Equal(t, CashFlow{}, c.Calculate(model.SearchQuery{}))
}

func TestCalculateCaches(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{results: []model.AssignedTransaction{amount(100)}}
	c := New(s, 0)

	name := "Income"
	query := model.SearchQuery{CategoryName: &name}
	c.Calculate(query)
	require.Equal(t, 1, s.calls)

	other := "Income"
	c.Calculate(model.SearchQuery{CategoryName: &other})
	require.Equal(t, 1, s.calls, "equal query must hit the cache")
}

func TestCalculateCacheBounded(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{results: []model.AssignedTransaction{amount(100)}}
	c := New(s, 2)

	ids := []int{1, 2, 3}
	for i := range ids {
		c.Calculate(model.SearchQuery{FilterID: &ids[i]})
	}
	require.Equal(t, 3, s.calls)

	// oldest entry was evicted
	c.Calculate(model.SearchQuery{FilterID: &ids[0]})
	require.Equal(t, 4, s.calls)

	// newest ones still cached
	c.Calculate(model.SearchQuery{FilterID: &ids[2]})
	require.Equal(t, 4, s.calls)
}

func TestCalculateInvalidatedOnUpstreamChange(t *testing.T) {
	t.Parallel()

	s := &stubSearcher{results: []model.AssignedTransaction{amount(100)}}
	c := New(s, 0)

	notified := 0
	c.SubscribeToChanges(func() { notified++ })

	c.Calculate(model.SearchQuery{})
	require.Equal(t, 1, s.calls)

	s.results = []model.AssignedTransaction{amount(250)}
	s.change()
	require.Equal(t, 1, notified)

	flow := c.Calculate(model.SearchQuery{})
	require.Equal(t, 2, s.calls, "cache must be cleared after upstream change")
	require.Equal(t, CashFlow{Income: 250}, flow)
}
