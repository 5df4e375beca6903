package mapping

import (
	"sort"
	"strings"

	"fjacquet/mpr-recon/internal/models"
	"fjacquet/mpr-recon/internal/reconerror"
)

// FieldMapping maps a canonical field to the source column feeding it.
// An empty column means the field is unmapped.
type FieldMapping map[models.Field]string

// Resolve proposes a mapping for every field of schema from the column names.
// It is a pure function of its inputs.
func Resolve(columns []string, schema FieldSchema) FieldMapping {
	lowered := make([]string, len(columns))
	for i, c := range columns {
		lowered[i] = strings.ToLower(c)
	}

	mapping := make(FieldMapping, len(schema.Fields))
	for _, spec := range schema.Fields {
		mapping[spec.Field] = matchColumn(columns, lowered, synonyms[spec.Field])
	}
	return mapping
}

func matchColumn(columns, lowered, candidates []string) string {
	for _, candidate := range candidates {
		for i, name := range lowered {
			if name == "" {
				continue
			}
			if strings.Contains(name, candidate) || strings.Contains(candidate, name) {
				return columns[i]
			}
		}
	}
	return ""
}

// With returns a copy of m with field pointed at column. Any column, including
// "" to unmap the field, may be assigned.
func (m FieldMapping) With(field models.Field, column string) FieldMapping {
	out := m.Clone()
	out[field] = column
	return out
}

// Clone returns an independent copy of m.
func (m FieldMapping) Clone() FieldMapping {
	out := make(FieldMapping, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Column returns the source column of field, or "" when unmapped.
func (m FieldMapping) Column(field models.Field) string {
	return m[field]
}

// Mapped returns the mapped fields sorted by name.
func (m FieldMapping) Mapped() []models.Field {
	var out []models.Field
	for f, col := range m {
		if col != "" {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsComplete reports whether every required field of schema has a column.
func IsComplete(m FieldMapping, schema FieldSchema) bool {
	return len(Missing(m, schema)) == 0
}

// Missing lists the required fields of schema that m leaves unmapped.
// A column name made only of whitespace counts as unmapped.
func Missing(m FieldMapping, schema FieldSchema) []models.Field {
	var missing []models.Field
	for _, spec := range schema.Fields {
		if spec.Required && strings.TrimSpace(m[spec.Field]) == "" {
			missing = append(missing, spec.Field)
		}
	}
	return missing
}

// Validate returns a MappingIncompleteError naming the unmapped required fields.
func Validate(m FieldMapping, schema FieldSchema, source string) error {
	missing := Missing(m, schema)
	if len(missing) == 0 {
		return nil
	}
	return &reconerror.MappingIncompleteError{
		Role:    string(schema.Role),
		Source:  source,
		Missing: models.FieldNames(missing),
	}
}
