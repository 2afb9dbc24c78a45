package ledger

import (
	"time"

	"github.com/cashfolio/cashfolio/internal/model"
)

// BatchInfo summarizes one stored batch.
type BatchInfo struct {
	Name         string
	StartDate    time.Time
	EndDate      time.Time
	Accounts     int
	Transactions int
}

// Info summarizes the whole collection. TotalTransactions counts the merged
// ledger, which can be smaller than the sum of the batch counts when
// duplicates were dropped; TotalAccounts counts distinct accounts across
// all batches before merging.
type Info struct {
	TotalAccounts     int
	TotalTransactions int
	Batches           []BatchInfo
}

// BatchInfos returns a fresh snapshot describing every stored batch, in
// insertion order.
func (l *Ledger) BatchInfos() Info {
	l.mu.Lock()
	defer l.mu.Unlock()

	info := Info{
		TotalTransactions: len(l.merged),
		Batches:           make([]BatchInfo, 0, len(l.batches)),
	}
	allAccounts := map[string]struct{}{}
	for _, b := range l.batches {
		accounts := map[string]struct{}{}
		for _, tx := range b.transactions {
			accounts[tx.Account] = struct{}{}
			allAccounts[tx.Account] = struct{}{}
		}
		info.Batches = append(info.Batches, BatchInfo{
			Name:         b.name,
			StartDate:    b.transactions[0].Date,
			EndDate:      b.transactions[len(b.transactions)-1].Date,
			Accounts:     len(accounts),
			Transactions: len(b.transactions),
		})
	}
	info.TotalAccounts = len(allAccounts)
	return info
}

// BatchTransactions returns the stored transactions of the named batch, or
// a NotFoundError when no batch has that name.
func (l *Ledger) BatchTransactions(name string) ([]model.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, b := range l.batches {
		if b.name == name {
			return b.transactions, nil
		}
	}
	return nil, &model.NotFoundError{Kind: "batch", Name: name}
}
