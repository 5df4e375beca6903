// Package mapping proposes, overrides and validates the mapping from raw
// dataset columns to canonical fields.
package mapping

import (
	"fjacquet/mpr-recon/internal/models"
)

// FieldSpec declares one canonical field of a dataset schema.
type FieldSpec struct {
	Field       models.Field
	Required    bool
	Description string
}

// FieldSchema is the ordered list of canonical fields for a dataset role.
type FieldSchema struct {
	Role   models.Role
	Fields []FieldSpec
}

var schemas = map[models.Role][]FieldSpec{
	models.RoleMPR: {
		{Field: models.FieldTransactionID, Required: true, Description: "Unique transaction identifier from the payment gateway"},
		{Field: models.FieldAmount, Required: true, Description: "Transaction amount"},
		{Field: models.FieldUTR, Description: "Unique Transaction Reference used to match the bank statement"},
		{Field: models.FieldTimestamp, Description: "Transaction date and time"},
		{Field: models.FieldReferenceID, Description: "Merchant or order reference"},
		{Field: models.FieldSettlementAccount, Description: "Account the payment settles into"},
	},
	models.RoleInternal: {
		{Field: models.FieldTransactionID, Required: true, Description: "Transaction identifier in the internal system"},
		{Field: models.FieldAmount, Required: true, Description: "Booked amount"},
		{Field: models.FieldUTR, Description: "Unique Transaction Reference, when recorded"},
		{Field: models.FieldTimestamp, Description: "Booking date and time"},
		{Field: models.FieldReferenceID, Description: "Internal reference"},
	},
	models.RoleBank: {
		{Field: models.FieldUTR, Description: "Unique Transaction Reference of the credit or debit"},
		{Field: models.FieldAmount, Required: true, Description: "Signed amount: credits positive, debits negative"},
		{Field: models.FieldTimestamp, Description: "Value or posting date"},
		{Field: models.FieldDescription, Description: "Statement narration"},
		{Field: models.FieldType, Description: "Credit / debit indicator"},
		{Field: models.FieldReferenceID, Description: "Bank reference"},
		{Field: models.FieldSettlementAccount, Description: "Statement account"},
	},
}

// SchemaFor returns the canonical schema of a dataset role.
// Unknown roles yield an empty schema.
func SchemaFor(role models.Role) FieldSchema {
	specs := schemas[role]
	fields := make([]FieldSpec, len(specs))
	copy(fields, specs)
	return FieldSchema{Role: role, Fields: fields}
}

// Required returns the required fields in declaration order.
func (s FieldSchema) Required() []models.Field {
	var out []models.Field
	for _, spec := range s.Fields {
		if spec.Required {
			out = append(out, spec.Field)
		}
	}
	return out
}

// Spec returns the declaration of f and whether the schema contains it.
func (s FieldSchema) Spec(f models.Field) (FieldSpec, bool) {
	for _, spec := range s.Fields {
		if spec.Field == f {
			return spec, true
		}
	}
	return FieldSpec{}, false
}

// Has reports whether the schema declares f.
func (s FieldSchema) Has(f models.Field) bool {
	_, ok := s.Spec(f)
	return ok
}
