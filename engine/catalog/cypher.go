package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
)

// properties maps filterable field names to node property names. Range
// criteria on unit-tagged string attributes target the derived *_num
// properties written alongside them.
var properties = map[string]string{
	domain.FieldID:               "id",
	domain.FieldName:             "name",
	domain.FieldBrand:            "brand",
	domain.FieldType:             "type",
	domain.FieldFuelType:         "fuel_type",
	domain.FieldTransmission:     "transmission",
	domain.FieldBodyType:         "body_type",
	domain.FieldPrice:            "price",
	domain.FieldEnginePower:      "engine_power_num",
	domain.FieldMileage:          "mileage_num",
	domain.FieldPerformanceScore: "performance_score",
	domain.FieldCreatedAt:        "created_at",
}

// compileQuery turns filter criteria and a sort directive into a Cypher
// query with positional parameters. Fields are visited in sorted order so
// the same criteria always compile to the same text.
func compileQuery(f domain.Filter, s domain.Sort, limit int) (string, map[string]any) {
	var (
		where  []string
		params = map[string]any{}
		next   = 0
	)
	p := func(v any) string {
		name := fmt.Sprintf("p%d", next)
		next++
		params[name] = v
		return "$" + name
	}

	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		prop, ok := properties[field]
		if !ok {
			continue
		}
		cond := f[field]
		switch cond.Kind {
		case domain.CondEq:
			where = append(where, fmt.Sprintf("v.%s = %s", prop, p(cond.Value)))
		case domain.CondNe:
			where = append(where, fmt.Sprintf("v.%s <> %s", prop, p(cond.Value)))
		case domain.CondContains:
			where = append(where, fmt.Sprintf("toLower(v.%s) CONTAINS %s", prop, p(strings.ToLower(cond.Value))))
		case domain.CondAny:
			terms := make([]string, len(cond.Terms))
			for i, t := range cond.Terms {
				terms[i] = strings.ToLower(t)
			}
			where = append(where, fmt.Sprintf("any(t IN %s WHERE toLower(v.%s) CONTAINS t)", p(terms), prop))
		case domain.CondRange:
			if cond.Min != nil {
				where = append(where, fmt.Sprintf("v.%s >= %s", prop, p(*cond.Min)))
			}
			if cond.Max != nil {
				where = append(where, fmt.Sprintf("v.%s <= %s", prop, p(*cond.Max)))
			}
		}
	}

	var b strings.Builder
	b.WriteString("MATCH (v:Vehicle)")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" RETURN v")
	if prop, ok := properties[s.Field]; ok && s.Field != "" {
		b.WriteString(" ORDER BY v." + prop)
		if s.Descending {
			b.WriteString(" DESC")
		}
	}
	if limit > 0 {
		b.WriteString(" LIMIT " + p(int64(limit)))
	}
	return b.String(), params
}
