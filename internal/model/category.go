package model

// Budget is an optional spending target attached to a category.
type Budget struct {
	Amount int64
	Period PeriodType
}

// Category groups transactions through an ordered list of filters. Name is
// unique within a collection and mutable through rename.
type Category struct {
	Name    string
	Budget  *Budget
	Filters []Filter
}

// PutFilter inserts the filter, replacing any existing filter with the same
// id in place (upsert semantics).
func (c *Category) PutFilter(f Filter) {
	for i, existing := range c.Filters {
		if existing.FilterID() == f.FilterID() {
			c.Filters[i] = f
			return
		}
	}
	c.Filters = append(c.Filters, f)
}

// RemoveFilter deletes the filter with the given id, reporting whether it
// was present.
func (c *Category) RemoveFilter(id int) bool {
	for i, f := range c.Filters {
		if f.FilterID() == id {
			c.Filters = append(c.Filters[:i], c.Filters[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a copy whose filter slice is independent of the original.
// Filters themselves are immutable once built and are shared.
func (c Category) Clone() Category {
	out := c
	if c.Budget != nil {
		b := *c.Budget
		out.Budget = &b
	}
	out.Filters = append([]Filter(nil), c.Filters...)
	return out
}
