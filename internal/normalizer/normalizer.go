// Package normalizer applies a resolved field mapping to raw rows and
// produces canonical records with a decimal amount and a parsed timestamp.
package normalizer

import (
	"fmt"
	"strings"

	"fjacquet/mpr-recon/internal/dateutils"
	"fjacquet/mpr-recon/internal/mapping"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/tabular"

	"github.com/shopspring/decimal"
)

// DataIssue describes a cell that could not be typed during normalization.
// The record is still produced; the affected value degrades to its zero value.
type DataIssue struct {
	Role   models.Role  `json:"role" yaml:"role"`
	Row    int          `json:"row" yaml:"row"`
	Field  models.Field `json:"field" yaml:"field"`
	Value  string       `json:"value" yaml:"value"`
	Reason string       `json:"reason" yaml:"reason"`
}

func (i DataIssue) String() string {
	return fmt.Sprintf("%s row %d: %s %q: %s", i.Role, i.Row, i.Field, i.Value, i.Reason)
}

// Normalize converts rows into canonical records, preserving row order.
// Unparseable amounts become zero.
func Normalize(rows []tabular.RawRow, m mapping.FieldMapping, role models.Role) []models.CanonicalRecord {
	records, _ := NormalizeWithIssues(rows, m, role)
	return records
}

// NormalizeWithIssues is Normalize that also reports every amount it had to
// zero and every non-empty timestamp it could not parse.
func NormalizeWithIssues(rows []tabular.RawRow, m mapping.FieldMapping, role models.Role) ([]models.CanonicalRecord, []DataIssue) {
	records := make([]models.CanonicalRecord, 0, len(rows))
	var issues []DataIssue

	fields := m.Mapped()

	for i, row := range rows {
		rec := models.CanonicalRecord{
			Role:   role,
			Row:    i + 1,
			Values: make(map[models.Field]string, len(fields)),
			Amount: decimal.Zero,
		}

		for _, f := range fields {
			rec.Values[f] = row[m.Column(f)]
		}

		if raw, ok := rec.Values[models.FieldAmount]; ok {
			amount, err := ParseAmount(raw)
			if err != nil {
				issues = append(issues, DataIssue{Role: role, Row: rec.Row, Field: models.FieldAmount, Value: raw, Reason: err.Error()})
			}
			rec.Amount = amount
		}

		if raw := strings.TrimSpace(rec.Values[models.FieldTimestamp]); raw != "" {
			t, _, err := dateutils.ParseDate(raw)
			if err != nil {
				issues = append(issues, DataIssue{Role: role, Row: rec.Row, Field: models.FieldTimestamp, Value: raw, Reason: "unrecognized timestamp"})
			} else {
				rec.Time = t
			}
		}

		records = append(records, rec)
	}

	return records, issues
}

var currencyMarkers = []string{"INR", "Rs.", "Rs", "₹", "USD", "$", "EUR", "€"}

// ParseAmount parses a monetary string to a decimal.
// Currency markers, spaces and apostrophes are stripped and the separators
// are standardized by standardizeSeparators. A leading minus, a trailing
// "DR" marker or enclosing parentheses mark a debit; several markers on the
// same value do not cancel out. On failure the returned decimal is zero.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(s)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("empty amount")
	}

	negative := false
	upper := strings.ToUpper(amount)
	switch {
	case strings.HasSuffix(upper, "DR"):
		negative = true
		amount = strings.TrimSpace(amount[:len(amount)-2])
	case strings.HasSuffix(upper, "CR"):
		amount = strings.TrimSpace(amount[:len(amount)-2])
	}
	if strings.HasPrefix(amount, "(") && strings.HasSuffix(amount, ")") {
		negative = true
		amount = amount[1 : len(amount)-1]
	}

	for _, marker := range currencyMarkers {
		amount = strings.ReplaceAll(amount, marker, "")
	}
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, "'", "")

	if strings.HasPrefix(amount, "-") {
		negative = true
		amount = amount[1:]
	} else {
		amount = strings.TrimPrefix(amount, "+")
	}
	if strings.HasPrefix(amount, "-") || strings.HasPrefix(amount, "+") {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}

	dec, err := decimal.NewFromString(standardizeSeparators(amount))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	if negative {
		dec = dec.Neg()
	}
	return dec, nil
}

// standardizeSeparators rewrites grouping and decimal separators to the
// plain form decimal.NewFromString accepts.
//
//	1,234.56 / 1,00,000.00 -> dot is decimal, commas group
//	1.234,56              -> comma is decimal, dots group
//	2,500 / 1,00,000      -> last comma group has three digits, commas group
//	12,50                 -> comma is decimal
//	1.234.567             -> several dots and no comma, dots group
//
// Any other layout is returned unchanged and fails to parse.
func standardizeSeparators(amount string) string {
	lastDot := strings.LastIndex(amount, ".")
	lastComma := strings.LastIndex(amount, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot < lastComma {
			amount = strings.ReplaceAll(amount, ".", "")
			return strings.Replace(amount, ",", ".", 1)
		}
		return strings.ReplaceAll(amount, ",", "")

	case lastComma >= 0:
		groups := strings.Split(amount, ",")
		last := groups[len(groups)-1]
		switch {
		case len(groups) == 2 && len(last) <= 2:
			return groups[0] + "." + last
		case len(last) == 3:
			return strings.ReplaceAll(amount, ",", "")
		}

	case strings.Count(amount, ".") > 1:
		groups := strings.Split(amount, ".")
		for _, g := range groups[1:] {
			if len(g) != 3 {
				return amount
			}
		}
		return strings.ReplaceAll(amount, ".", "")
	}
	return amount
}
