package assign

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cashfolio/cashfolio/internal/ledger"
	"github.com/cashfolio/cashfolio/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func tx(d time.Time, amount int64, account, contra, description string) model.Transaction {
	return model.Transaction{
		Date:          d,
		Amount:        amount,
		Account:       account,
		ContraAccount: contra,
		Description:   description,
	}
}

func textFilter(t *testing.T, id int, matchType, description, contra string) *model.TextFilter {
	t.Helper()
	f, err := model.NewTextFilter(id, "f", matchType, description, contra)
	require.NoError(t, err)
	return f
}

func TestAssignManualPin(t *testing.T) {
	t.Parallel()

	pinned := tx(date(2022, 2, 1), -900, "ACC1", "", "Hardware store")
	other := tx(date(2022, 2, 2), -100, "ACC1", "", "Coffee")

	categories := []model.Category{{
		Name:    "Tools",
		Filters: []model.Filter{model.ManualFilter{ID: 1, Transaction: pinned.Identity()}},
	}}

	assigned := Assign([]model.Transaction{pinned, other}, categories)
	require.Len(t, assigned, 2)
	require.Equal(t, []model.Assignment{{CategoryName: "Tools", FilterID: 1, FilterType: model.FilterManual}},
		assigned[0].Assignments)
	require.Empty(t, assigned[1].Assignments, "unmatched transactions get an empty assignment list")
}

func TestAssignOrderManualBeforeText(t *testing.T) {
	t.Parallel()

	target := tx(date(2022, 2, 1), -900, "ACC1", "", "Hardware store")

	categories := []model.Category{
		{
			Name:    "Shopping",
			Filters: []model.Filter{textFilter(t, 1, model.MatchWildcard, "hardware*", "")},
		},
		{
			Name:    "Tools",
			Filters: []model.Filter{model.ManualFilter{ID: 7, Transaction: target.Identity()}},
		},
	}

	assigned := Assign([]model.Transaction{target}, categories)
	require.Equal(t, []model.Assignment{
		{CategoryName: "Tools", FilterID: 7, FilterType: model.FilterManual},
		{CategoryName: "Shopping", FilterID: 1, FilterType: model.FilterText},
	}, assigned[0].Assignments, "manual assignments come first, then text in category order")
}

func TestAssignMultipleCategoriesAllowed(t *testing.T) {
	t.Parallel()

	target := tx(date(2022, 2, 1), -900, "ACC1", "NL11SHOP", "Hardware store")
	categories := []model.Category{
		{Name: "A", Filters: []model.Filter{textFilter(t, 1, model.MatchWildcard, "hard*", "")}},
		{Name: "B", Filters: []model.Filter{
			textFilter(t, 1, model.MatchWildcard, "*store", ""),
			textFilter(t, 2, model.MatchRegexp, "", "NL11.*"),
		}},
	}

	assigned := Assign([]model.Transaction{target}, categories)
	require.Equal(t, []model.Assignment{
		{CategoryName: "A", FilterID: 1, FilterType: model.FilterText},
		{CategoryName: "B", FilterID: 1, FilterType: model.FilterText},
		{CategoryName: "B", FilterID: 2, FilterType: model.FilterText},
	}, assigned[0].Assignments)
}

func TestAssignDeterministic(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		tx(date(2022, 2, 1), -900, "ACC1", "", "Hardware store"),
		tx(date(2022, 2, 2), 4000, "ACC1", "", "Salary"),
	}
	categories := []model.Category{
		{Name: "Income", Filters: []model.Filter{textFilter(t, 1, model.MatchWildcard, "salary*", "")}},
	}

	first := Assign(txs, categories)
	second := Assign(txs, categories)
	require.Equal(t, first, second)
}

func TestAssignerRecomputesLazily(t *testing.T) {
	t.Parallel()

	l := ledger.New()
	categories := NewCategories()
	a := NewAssigner(l, categories)

	changes := 0
	a.SubscribeToChanges(func() { changes++ })

	require.Empty(t, a.AllTransactions())

	_, err := l.AddBatch("a.csv", []model.Transaction{
		tx(date(2022, 2, 2), 4000, "ACC1", "", "Salary payment"),
	})
	require.NoError(t, err)
	require.Equal(t, 1, changes, "ledger change propagates")

	assigned := a.AllTransactions()
	require.Len(t, assigned, 1)
	require.Empty(t, assigned[0].Assignments)

	categories.Add("Income")
	require.NoError(t, categories.PutFilter("Income", textFilter(t, 1, model.MatchWildcard, "salary*", "")))
	require.Equal(t, 3, changes, "category mutations propagate")

	assigned = a.AllTransactions()
	require.Len(t, assigned[0].Assignments, 1)
	require.Equal(t, "Income", assigned[0].Assignments[0].CategoryName)
}

func TestCategoriesMutations(t *testing.T) {
	t.Parallel()

	c := NewCategories()

	require.Equal(t, "Tools", c.Add("Tools"))
	require.Equal(t, "Tools (1)", c.Add("Tools"), "duplicate add gets a suffix")

	// rename onto an existing name fails
	err := c.Rename("Tools (1)", "Tools")
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	// rename of a missing category fails
	var nferr *model.NotFoundError
	require.ErrorAs(t, c.Rename("Nope", "X"), &nferr)

	require.NoError(t, c.Rename("Tools (1)", "Hardware"))
	require.Equal(t, []string{"Tools", "Hardware"}, c.Names())

	require.NoError(t, c.SetBudget("Tools", &model.Budget{Amount: 10000, Period: model.PeriodMonth}))
	all := c.All()
	require.NotNil(t, all[0].Budget)
	require.Equal(t, int64(10000), all[0].Budget.Amount)

	require.ErrorAs(t, c.PutFilter("Nope", model.ManualFilter{ID: 1}), &nferr)
	require.NoError(t, c.PutFilter("Tools", model.ManualFilter{ID: 1, Transaction: 42}))
	require.ErrorAs(t, c.RemoveFilter("Tools", 9), &nferr)
	require.NoError(t, c.RemoveFilter("Tools", 1))

	require.NoError(t, c.Remove("Hardware"))
	require.ErrorAs(t, c.Remove("Hardware"), &nferr)
	require.Equal(t, []string{"Tools"}, c.Names())
}

func TestCategoriesSnapshotIsolation(t *testing.T) {
	t.Parallel()

	c := NewCategories()
	c.Add("Tools")
	require.NoError(t, c.PutFilter("Tools", model.ManualFilter{ID: 1, Transaction: 42}))

	snapshot := c.All()
	snapshot[0].Filters[0] = model.ManualFilter{ID: 1, Transaction: 99}
	snapshot[0].Name = "Mutated"

	require.Equal(t, []string{"Tools"}, c.Names())
	require.Equal(t, uint64(42), c.All()[0].Filters[0].(model.ManualFilter).Transaction)
}
