package sources

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cashfolio/cashfolio/internal/model"
)

// Column sets of ING Bank's official CSV export, English and Dutch.
var (
	ingHeadersEN = []string{
		"Date", "Name / Description", "Account", "Counterparty",
		"Debit/credit", "Amount (EUR)", "Notifications",
	}
	ingHeadersNL = []string{
		"Datum", "Naam / Omschrijving", "Rekening", "Tegenrekening",
		"Af Bij", "Bedrag (EUR)", "Mededelingen",
	}
)

// INGSource parses ING Bank's CSV export, in both the English and Dutch
// variants, comma or semicolon delimited.
type INGSource struct{}

func NewINGSource() *INGSource { return &INGSource{} }

func (s *INGSource) Name() string { return "ING Bank CSV" }

// HasValidHeader reports whether the first line carries all columns of
// either header variant.
func (s *INGSource) HasValidHeader(data string) bool {
	firstLine, _, _ := strings.Cut(data, "\n")
	header, err := readRow(firstLine, delimiterFor(firstLine))
	if err != nil {
		return false
	}
	return containsAll(header, ingHeadersEN) || containsAll(header, ingHeadersNL)
}

// ParseTransactions decodes every row. Any malformed row fails the whole
// parse; there is no partial ingestion.
func (s *INGSource) ParseTransactions(data string) ([]model.Transaction, error) {
	firstLine, _, _ := strings.Cut(data, "\n")
	reader := csv.NewReader(strings.NewReader(data))
	reader.Comma = delimiterFor(firstLine)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", model.ErrFormat, err)
	}
	columns := map[string]int{}
	for i, name := range header {
		columns[name] = i
	}

	var transactions []model.Transaction
	line := 1
	for {
		line++
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", model.ErrFormat, line, err)
		}
		tx, err := s.transactionFromRow(columns, row)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", model.ErrFormat, line, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

func (s *INGSource) transactionFromRow(columns map[string]int, row []string) (model.Transaction, error) {
	column := func(names ...string) string {
		for _, name := range names {
			if idx, ok := columns[name]; ok && idx < len(row) && row[idx] != "" {
				return row[idx]
			}
		}
		return ""
	}

	rawDate := column("Date", "Datum")
	date, err := parseINGDate(rawDate)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("could not determine date from %q", rawDate)
	}

	account := column("Account", "Rekening")
	if account == "" {
		return model.Transaction{}, fmt.Errorf("empty account column")
	}

	rawDirection := column("Debit/credit", "Af Bij")
	var sign int64
	switch rawDirection {
	case "Credit", "Bij":
		sign = 1
	case "Debit", "Af":
		sign = -1
	default:
		return model.Transaction{}, fmt.Errorf("could not determine direction from %q", rawDirection)
	}

	rawAmount := column("Amount (EUR)", "Bedrag (EUR)")
	amount, err := parseAmountCents(rawAmount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("could not determine amount from %q", rawAmount)
	}

	return model.Transaction{
		Date:              date,
		Amount:            sign * amount,
		Account:           account,
		ContraAccount:     column("Counterparty", "Tegenrekening"),
		ContraAccountName: column("Name / Description", "Naam / Omschrijving"),
		Description:       column("Notifications", "Mededelingen"),
	}, nil
}

// parseINGDate decodes ING's yyyymmdd date column into a UTC date.
func parseINGDate(raw string) (time.Time, error) {
	t, err := time.Parse("20060102", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// parseAmountCents decodes an unsigned decimal amount with a comma or dot
// decimal separator into minor units, without going through floats.
func parseAmountCents(raw string) (int64, error) {
	raw = strings.TrimSpace(strings.Replace(raw, ",", ".", 1))
	whole, frac, _ := strings.Cut(raw, ".")
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	if frac == "" {
		return units * 100, nil
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("too many decimal places in %q", raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, err
	}
	return units*100 + cents, nil
}

func delimiterFor(firstLine string) rune {
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		return ';'
	}
	return ','
}

func readRow(line string, comma rune) ([]string, error) {
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	return reader.Read()
}

func containsAll(fields, wanted []string) bool {
	present := map[string]bool{}
	for _, f := range fields {
		present[f] = true
	}
	for _, w := range wanted {
		if !present[w] {
			return false
		}
	}
	return true
}
