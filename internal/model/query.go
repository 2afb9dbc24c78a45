package model

// SearchQuery selects a subset of assigned transactions. Nil fields impose
// no constraint; all present fields are ANDed.
type SearchQuery struct {
	CategoryName *string
	Account      *string
	FilterType   *string
	FilterID     *int
	Period       *Period
}

// Equal reports field-wise equality, comparing the period by value. Used as
// the cache key comparison for search and cash-flow caches.
func (q SearchQuery) Equal(o SearchQuery) bool {
	return equalPtr(q.CategoryName, o.CategoryName) &&
		equalPtr(q.Account, o.Account) &&
		equalPtr(q.FilterType, o.FilterType) &&
		equalPtr(q.FilterID, o.FilterID) &&
		equalPtr(q.Period, o.Period)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
