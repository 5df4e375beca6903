package common

import (
	"fmt"
	"strings"

	"fjacquet/mpr-recon/internal/mapping"
	"fjacquet/mpr-recon/internal/models"
)

// ParseOverrides parses --map values of the form role.field=Column.
// An empty column unmaps the field.
func ParseOverrides(values []string) (map[models.Role]mapping.FieldMapping, error) {
	out := make(map[models.Role]mapping.FieldMapping)
	for _, v := range values {
		key, column, ok := strings.Cut(v, "=")
		if !ok {
			return nil, fmt.Errorf("invalid mapping %q: expected role.field=Column", v)
		}
		roleName, fieldName, ok := strings.Cut(strings.TrimSpace(key), ".")
		if !ok {
			return nil, fmt.Errorf("invalid mapping %q: expected role.field=Column", v)
		}
		role, err := models.ParseRole(roleName)
		if err != nil {
			return nil, err
		}
		field := models.Field(strings.ToLower(strings.TrimSpace(fieldName)))
		if !mapping.SchemaFor(role).Has(field) {
			return nil, fmt.Errorf("invalid mapping %q: %s has no field %q", v, role, field)
		}
		if out[role] == nil {
			out[role] = mapping.FieldMapping{}
		}
		out[role][field] = strings.TrimSpace(column)
	}
	return out, nil
}
