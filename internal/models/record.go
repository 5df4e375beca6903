package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalRecord is one input row after a field mapping has been applied.
// Values only holds fields that were mapped; unmapped fields are absent.
type CanonicalRecord struct {
	Role   Role
	Row    int // 1-based position among the dataset's data rows
	Values map[Field]string
	Amount decimal.Decimal
	// Time is the parsed timestamp; zero when the timestamp is absent or unparseable.
	Time time.Time
}

// Value returns the raw string of a canonical field and whether it was mapped.
func (r CanonicalRecord) Value(f Field) (string, bool) {
	v, ok := r.Values[f]
	return v, ok
}

// Get returns the raw string of a canonical field, or "" when absent.
func (r CanonicalRecord) Get(f Field) string {
	return r.Values[f]
}

// Has reports whether the field was mapped for this record.
func (r CanonicalRecord) Has(f Field) bool {
	_, ok := r.Values[f]
	return ok
}

func (r CanonicalRecord) TransactionID() string { return r.Values[FieldTransactionID] }

func (r CanonicalRecord) UTR() string { return r.Values[FieldUTR] }

func (r CanonicalRecord) Timestamp() string { return r.Values[FieldTimestamp] }

func (r CanonicalRecord) ReferenceID() string { return r.Values[FieldReferenceID] }

// HasTime reports whether a timestamp was parsed for the record.
func (r CanonicalRecord) HasTime() bool {
	return !r.Time.IsZero()
}

// SumAmounts totals the amounts of records.
func SumAmounts(records []CanonicalRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}
