package normalizer

import (
	"testing"
	"time"

	"fjacquet/mpr-recon/internal/mapping"
	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/tabular"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"plain", "2500.50", "2500.5", false},
		{"negative", "-15.00", "-15", false},
		{"rupee symbol", "₹1,250.75", "1250.75", false},
		{"indian grouping", "1,00,000.00", "100000", false},
		{"INR prefix", "INR 499", "499", false},
		{"dollar", "$12.34", "12.34", false},
		{"comma decimal", "12,50", "12.5", false},
		{"apostrophe grouping", "1'234.50", "1234.5", false},
		{"debit marker", "250.00 DR", "-250", false},
		{"credit marker", "250.00 Cr", "250", false},
		{"parentheses", "(75.10)", "-75.1", false},
		{"surrounding space", "  42  ", "42", false},
		{"empty", "", "0", true},
		{"text", "abc", "0", true},
		{"two dots", "1.2.3", "0", true},
		{"comma thousands", "2,500", "2500", false},
		{"indian grouping without decimals", "1,00,000", "100000", false},
		{"european", "1.234,56", "1234.56", false},
		{"european with groups", "1.234.567,89", "1234567.89", false},
		{"dotted thousands", "1.234.567", "1234567", false},
		{"ambiguous comma groups", "1,2345", "0", true},
		{"minus with debit marker", "-100 DR", "-100", false},
		{"minus in parentheses", "(-40.00)", "-40", false},
		{"debit marker in parentheses", "(40.00) DR", "-40", false},
		{"explicit plus", "+12.00", "12", false},
		{"double minus", "--5", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(got), "got %s", got)
		})
	}
}

func TestNormalize_CopiesMappedFieldsOnly(t *testing.T) {
	rows := []tabular.RawRow{
		{"Txn ID": "TXN001", "Amt": "100.00", "Bank Ref": "UTR001", "Notes": "x"},
		{"Txn ID": "TXN002", "Amt": "2500.50", "Bank Ref": "", "Notes": "y"},
	}
	m := mapping.FieldMapping{
		models.FieldTransactionID: "Txn ID",
		models.FieldAmount:        "Amt",
		models.FieldUTR:           "Bank Ref",
		models.FieldTimestamp:     "",
	}

	records := Normalize(rows, m, models.RoleMPR)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, models.RoleMPR, first.Role)
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "TXN001", first.TransactionID())
	assert.Equal(t, "UTR001", first.UTR())
	assert.True(t, decimal.NewFromInt(100).Equal(first.Amount))
	assert.False(t, first.Has(models.FieldTimestamp))
	assert.False(t, first.HasTime())
	assert.Len(t, first.Values, 3)

	second := records[1]
	assert.Equal(t, 2, second.Row)
	assert.True(t, second.Has(models.FieldUTR))
	assert.Equal(t, "", second.UTR())
	assert.Equal(t, "2500.5", second.Amount.String())
}

func TestNormalize_EmptyInput(t *testing.T) {
	records := Normalize(nil, mapping.FieldMapping{models.FieldAmount: "amount"}, models.RoleBank)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestNormalize_MissingColumnYieldsEmptyValue(t *testing.T) {
	rows := []tabular.RawRow{{"amount": "10"}}
	m := mapping.FieldMapping{models.FieldAmount: "amount", models.FieldUTR: "no_such_column"}

	records := Normalize(rows, m, models.RoleBank)
	require.Len(t, records, 1)
	v, ok := records[0].Value(models.FieldUTR)
	assert.True(t, ok)
	assert.Equal(t, "", v)
}

func TestNormalizeWithIssues(t *testing.T) {
	rows := []tabular.RawRow{
		{"id": "A", "amount": "oops", "time": "2025-01-15 10:30:00"},
		{"id": "B", "amount": "12.00", "time": "someday"},
		{"id": "C", "amount": "5", "time": ""},
	}
	m := mapping.FieldMapping{
		models.FieldTransactionID: "id",
		models.FieldAmount:        "amount",
		models.FieldTimestamp:     "time",
	}

	records, issues := NormalizeWithIssues(rows, m, models.RoleInternal)
	require.Len(t, records, 3)
	require.Len(t, issues, 2)

	assert.True(t, records[0].Amount.IsZero())
	assert.Equal(t, time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC), records[0].Time)
	assert.Equal(t, DataIssue{Role: models.RoleInternal, Row: 1, Field: models.FieldAmount, Value: "oops", Reason: `invalid amount "oops"`}, issues[0])

	assert.False(t, records[1].HasTime())
	assert.Equal(t, models.FieldTimestamp, issues[1].Field)
	assert.Equal(t, 2, issues[1].Row)
	assert.Contains(t, issues[1].String(), "internal row 2")

	assert.False(t, records[2].HasTime())
}
