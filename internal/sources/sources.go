// Package sources parses raw bank-export text into transaction lists. A
// registry sniffs the header of the data against each registered source
// format and delegates to the first that recognizes it.
package sources

import (
	"fmt"
	"sort"

	"github.com/cashfolio/cashfolio/internal/model"
)

// Source is one supported bank export format.
type Source interface {
	// Name identifies the format in error messages.
	Name() string
	// HasValidHeader reports whether the raw data looks like this format.
	HasValidHeader(data string) bool
	// ParseTransactions decodes the raw data. The result is not required
	// to be sorted; the registry sorts before returning.
	ParseTransactions(data string) ([]model.Transaction, error)
}

// Registry holds the known source formats in preference order.
type Registry struct {
	sources []Source
}

// NewRegistry returns a registry with all built-in sources registered.
func NewRegistry() *Registry {
	return &Registry{sources: []Source{NewINGSource(), NewSNSSource()}}
}

// Register appends a source format to the registry.
func (r *Registry) Register(s Source) {
	r.sources = append(r.sources, s)
}

// Parse decodes raw export data with the first source whose header matches.
// It fails with model.ErrFormat when no source recognizes the data and with
// model.ErrEmpty when the data parses to zero transactions. The returned
// transactions are sorted ascending by date.
func (r *Registry) Parse(data string) ([]model.Transaction, error) {
	for _, s := range r.sources {
		if !s.HasValidHeader(data) {
			continue
		}
		transactions, err := s.ParseTransactions(data)
		if err != nil {
			return nil, err
		}
		if len(transactions) == 0 {
			return nil, fmt.Errorf("%s: %w", s.Name(), model.ErrEmpty)
		}
		sort.SliceStable(transactions, func(i, j int) bool {
			return transactions[i].Date.Before(transactions[j].Date)
		})
		return transactions, nil
	}
	return nil, model.ErrFormat
}
