package mapping

import (
	"errors"
	"testing"

	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/reconerror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFor_RequiredFields(t *testing.T) {
	tests := []struct {
		role     models.Role
		required []models.Field
	}{
		{models.RoleMPR, []models.Field{models.FieldTransactionID, models.FieldAmount}},
		{models.RoleInternal, []models.Field{models.FieldTransactionID, models.FieldAmount}},
		{models.RoleBank, []models.Field{models.FieldAmount}},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			schema := SchemaFor(tt.role)
			assert.Equal(t, tt.role, schema.Role)
			assert.Equal(t, tt.required, schema.Required())
		})
	}

	bank := SchemaFor(models.RoleBank)
	assert.True(t, bank.Has(models.FieldDescription))
	assert.True(t, bank.Has(models.FieldType))
	assert.False(t, SchemaFor(models.RoleMPR).Has(models.FieldDescription))
}

func TestSchemaFor_ReturnsCopy(t *testing.T) {
	schema := SchemaFor(models.RoleMPR)
	schema.Fields[0].Required = false
	assert.True(t, SchemaFor(models.RoleMPR).Fields[0].Required)
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		columns  []string
		expected FieldMapping
	}{
		{
			name:    "canonical MPR headers",
			role:    models.RoleMPR,
			columns: []string{"transaction_id", "amount", "utr", "timestamp", "reference_id"},
			expected: FieldMapping{
				models.FieldTransactionID:     "transaction_id",
				models.FieldAmount:            "amount",
				models.FieldUTR:               "utr",
				models.FieldTimestamp:         "timestamp",
				models.FieldReferenceID:       "reference_id",
				models.FieldSettlementAccount: "",
			},
		},
		{
			name:    "gateway style headers",
			role:    models.RoleMPR,
			columns: []string{"Txn_ID", "Txn Amt", "UTR Number", "Settlement Date"},
			expected: FieldMapping{
				models.FieldTransactionID:     "Txn_ID",
				models.FieldAmount:            "Txn Amt",
				models.FieldUTR:               "UTR Number",
				models.FieldTimestamp:         "Settlement Date",
				models.FieldReferenceID:       "",
				models.FieldSettlementAccount: "",
			},
		},
		{
			name:    "bank statement",
			role:    models.RoleBank,
			columns: []string{"utr", "amount", "type", "description", "date"},
			expected: FieldMapping{
				models.FieldUTR:               "utr",
				models.FieldAmount:            "amount",
				models.FieldTimestamp:         "date",
				models.FieldDescription:       "description",
				models.FieldType:              "type",
				models.FieldReferenceID:       "",
				models.FieldSettlementAccount: "",
			},
		},
		{
			name:    "nothing recognisable",
			role:    models.RoleInternal,
			columns: []string{"foo", "bar"},
			expected: FieldMapping{
				models.FieldTransactionID: "",
				models.FieldAmount:        "",
				models.FieldUTR:           "",
				models.FieldTimestamp:     "",
				models.FieldReferenceID:   "",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.columns, SchemaFor(tt.role)))
		})
	}
}

func TestResolve_SynonymOrderBeatsColumnOrder(t *testing.T) {
	// "txn_id" appears first in the file but "transaction_id" is the earlier synonym.
	columns := []string{"txn_id", "transaction_id", "amount"}
	m := Resolve(columns, SchemaFor(models.RoleMPR))
	assert.Equal(t, "transaction_id", m[models.FieldTransactionID])
}

func TestResolve_ColumnContainedBySynonym(t *testing.T) {
	m := Resolve([]string{"ID", "amt"}, SchemaFor(models.RoleInternal))
	assert.Equal(t, "ID", m[models.FieldTransactionID])
	assert.Equal(t, "amt", m[models.FieldAmount])
}

func TestResolve_IgnoresBlankColumns(t *testing.T) {
	m := Resolve([]string{"", "amount"}, SchemaFor(models.RoleBank))
	assert.Equal(t, "", m[models.FieldUTR])
	assert.Equal(t, "amount", m[models.FieldAmount])
}

func TestResolve_Deterministic(t *testing.T) {
	columns := []string{"order_ref", "txn_id", "gross_amount", "bank_rrn", "created_at"}
	schema := SchemaFor(models.RoleMPR)
	first := Resolve(columns, schema)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Resolve(columns, schema))
	}
}

func TestFieldMapping_With(t *testing.T) {
	original := Resolve([]string{"transaction_id", "amount"}, SchemaFor(models.RoleMPR))

	updated := original.With(models.FieldUTR, "amount")
	assert.Equal(t, "amount", updated[models.FieldUTR])
	assert.Equal(t, "amount", updated[models.FieldAmount], "a column may feed several fields")
	assert.Equal(t, "", original[models.FieldUTR], "With must not modify the receiver")

	cleared := updated.With(models.FieldAmount, "")
	assert.Equal(t, "", cleared.Column(models.FieldAmount))
	assert.Equal(t, []models.Field{models.FieldTransactionID, models.FieldUTR}, cleared.Mapped())
}

func TestIsComplete(t *testing.T) {
	schema := SchemaFor(models.RoleMPR)
	complete := FieldMapping{models.FieldTransactionID: "id", models.FieldAmount: "amt"}
	assert.True(t, IsComplete(complete, schema))

	assert.False(t, IsComplete(complete.With(models.FieldAmount, ""), schema))
	assert.False(t, IsComplete(complete.With(models.FieldTransactionID, "  "), schema))
	assert.False(t, IsComplete(FieldMapping{}, schema))
	assert.Equal(t, []models.Field{models.FieldTransactionID},
		Missing(complete.With(models.FieldTransactionID, " \t"), schema))

	withOptional := complete.With(models.FieldUTR, "").With(models.FieldTimestamp, "ts")
	assert.True(t, IsComplete(withOptional, schema), "optional fields never affect completeness")
}

func TestValidate(t *testing.T) {
	schema := SchemaFor(models.RoleInternal)
	assert.NoError(t, Validate(FieldMapping{models.FieldTransactionID: "a", models.FieldAmount: "b"}, schema, "ledger.csv"))

	err := Validate(FieldMapping{models.FieldTransactionID: "a"}, schema, "ledger.csv")
	require.Error(t, err)

	var incomplete *reconerror.MappingIncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, "internal", incomplete.Role)
	assert.Equal(t, "ledger.csv", incomplete.Source)
	assert.Equal(t, []string{"amount"}, incomplete.Missing)
}

func TestSynonyms_ReturnsCopy(t *testing.T) {
	s := Synonyms(models.FieldTransactionID)
	require.NotEmpty(t, s)
	s[0] = "changed"
	assert.Equal(t, "transaction_id", Synonyms(models.FieldTransactionID)[0])
}
