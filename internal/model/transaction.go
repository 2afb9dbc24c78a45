package model

import (
	"hash/fnv"
	"strconv"
	"time"
)

// Transaction is one bank-exported transaction record. Values are immutable
// once constructed; Amount is in minor currency units (cents), never floats.
// An empty ContraAccount means the counter-account is unknown or external.
type Transaction struct {
	Date              time.Time
	Amount            int64
	Account           string
	ContraAccount     string
	ContraAccountName string
	Description       string
}

// Identity returns a stable content hash over all fields, used for equality
// and as the key for manual filter pins. A hash collision between two
// genuinely distinct transactions would cause an incorrect dedup; at 64 bits
// this is negligible for realistic ledger sizes.
func (t Transaction) Identity() uint64 {
	h := fnv.New64a()
	h.Write([]byte(t.Date.UTC().Format(time.RFC3339Nano)))
	h.Write([]byte{0x1f})
	h.Write([]byte(strconv.FormatInt(t.Amount, 10)))
	h.Write([]byte{0x1f})
	h.Write([]byte(t.Account))
	h.Write([]byte{0x1f})
	h.Write([]byte(t.ContraAccount))
	h.Write([]byte{0x1f})
	h.Write([]byte(t.ContraAccountName))
	h.Write([]byte{0x1f})
	h.Write([]byte(t.Description))
	return h.Sum64()
}

// Equal reports whether two transactions have the same identity.
func (t Transaction) Equal(o Transaction) bool {
	return t.Identity() == o.Identity()
}

// Mirrors reports whether a and b describe the same transfer as seen from
// each participating account's export: same date, negated amount, and one
// side's account equal to the other side's counter-account.
func Mirrors(a, b Transaction) bool {
	if !a.Date.Equal(b.Date) || a.Amount != -b.Amount {
		return false
	}
	if b.ContraAccount != "" && a.Account == b.ContraAccount {
		return true
	}
	return a.ContraAccount != "" && b.Account == a.ContraAccount
}

// Duplicates reports whether a and b represent the same economic event,
// either by identity or as mirror duplicates.
func Duplicates(a, b Transaction) bool {
	return a.Identity() == b.Identity() || Mirrors(a, b)
}
