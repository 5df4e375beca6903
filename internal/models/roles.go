// Package models provides the data structures shared by the reconciliation pipeline:
// dataset roles, canonical fields and records, classified transactions,
// anomalies and the aggregated result.
package models

import (
	"fmt"
	"strings"
)

// Role identifies which dataset a record came from.
type Role string

const (
	RoleMPR      Role = "mpr"
	RoleInternal Role = "internal"
	RoleBank     Role = "bank"
)

// Roles lists every dataset role in pipeline order.
var Roles = []Role{RoleMPR, RoleInternal, RoleBank}

// ParseRole converts a user-supplied role name into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleMPR:
		return RoleMPR, nil
	case RoleInternal:
		return RoleInternal, nil
	case RoleBank:
		return RoleBank, nil
	}
	return "", fmt.Errorf("unknown dataset role %q (expected mpr, internal or bank)", s)
}

// Label returns the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleMPR:
		return "MPR"
	case RoleInternal:
		return "Internal"
	case RoleBank:
		return "Bank"
	}
	return string(r)
}

// Field is a canonical field name that raw columns are mapped onto.
type Field string

const (
	FieldTransactionID     Field = "transaction_id"
	FieldAmount            Field = "amount"
	FieldUTR               Field = "utr"
	FieldTimestamp         Field = "timestamp"
	FieldReferenceID       Field = "reference_id"
	FieldDescription       Field = "description"
	FieldType              Field = "type"
	FieldSettlementAccount Field = "settlement_account"
)

// FieldNames converts fields to plain strings, keeping order.
func FieldNames(fields []Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}
