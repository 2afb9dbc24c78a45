package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cashfolio/cashfolio/internal/model"
)

// snsMinColumns is the width of SNS Bank's export rows; the description
// column sits at index 17, so anything narrower cannot be this format.
const snsMinColumns = 18

// SNSSource parses SNS Bank's official CSV export, both the "CSV" and the
// "CSV2004" variant. The format carries no header row: every line is a
// transaction, identified by its column count alone.
type SNSSource struct{}

func NewSNSSource() *SNSSource { return &SNSSource{} }

func (s *SNSSource) Name() string { return "SNS Bank CSV" }

// HasValidHeader reports whether the first line is wide enough to be an SNS
// row. The format has no header, so the first data row is what gets sniffed.
func (s *SNSSource) HasValidHeader(data string) bool {
	firstLine, _, _ := strings.Cut(data, "\n")
	row, err := readRow(firstLine, delimiterFor(firstLine))
	if err != nil {
		return false
	}
	return len(row) >= snsMinColumns
}

// ParseTransactions decodes every line as a transaction row. Any malformed
// row fails the whole parse; there is no partial ingestion.
func (s *SNSSource) ParseTransactions(data string) ([]model.Transaction, error) {
	firstLine, _, _ := strings.Cut(data, "\n")
	reader := csv.NewReader(strings.NewReader(data))
	reader.Comma = delimiterFor(firstLine)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var transactions []model.Transaction
	line := 0
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", model.ErrFormat, line, err)
		}
		tx, err := s.transactionFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", model.ErrFormat, line, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// Column positions of SNS Bank's export.
const (
	snsColDate              = 0
	snsColAccount           = 1
	snsColContraAccount     = 2
	snsColContraAccountName = 3
	snsColAmount            = 10
	snsColDescription       = 17
)

func (s *SNSSource) transactionFromRow(row []string) (model.Transaction, error) {
	if len(row) < snsMinColumns {
		return model.Transaction{}, fmt.Errorf("expected at least %d columns, got %d", snsMinColumns, len(row))
	}

	rawDate := strings.TrimSpace(row[snsColDate])
	date, err := time.Parse("02-01-2006", rawDate)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("could not determine date from %q", rawDate)
	}

	account := row[snsColAccount]
	if account == "" {
		return model.Transaction{}, fmt.Errorf("empty account column")
	}

	amount, err := parseSignedAmountCents(row[snsColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("could not determine amount from %q", row[snsColAmount])
	}

	description := row[snsColDescription]
	if description == "" {
		return model.Transaction{}, fmt.Errorf("empty description column")
	}
	// SNS wraps the description in single quotes
	if strings.HasPrefix(description, "'") && strings.HasSuffix(description, "'") && len(description) >= 2 {
		description = description[1 : len(description)-1]
	}

	return model.Transaction{
		Date:              date.UTC(),
		Amount:            amount,
		Account:           account,
		ContraAccount:     row[snsColContraAccount],
		ContraAccountName: row[snsColContraAccountName],
		Description:       description,
	}, nil
}

// parseSignedAmountCents decodes a signed decimal amount into minor units.
// SNS carries the sign on the amount itself instead of a debit/credit
// column.
func parseSignedAmountCents(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	negative := strings.HasPrefix(raw, "-")
	if negative || strings.HasPrefix(raw, "+") {
		raw = raw[1:]
	}
	cents, err := parseAmountCents(raw)
	if err != nil {
		return 0, err
	}
	if negative {
		return -cents, nil
	}
	return cents, nil
}
