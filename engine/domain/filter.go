package domain

import "strings"

// Filterable field names. These are the attribute keys a Filter may
// constrain, shared by the advisor's compiler and the catalog backends.
const (
	FieldID               = "id"
	FieldName             = "name"
	FieldBrand            = "brand"
	FieldType             = "type"
	FieldFuelType         = "fuelType"
	FieldTransmission     = "transmission"
	FieldBodyType         = "bodyType"
	FieldPrice            = "price"
	FieldEnginePower      = "enginePower"
	FieldMileage          = "mileage"
	FieldPerformanceScore = "performanceScore"
	FieldCreatedAt        = "createdAt"
)

// CondKind enumerates the condition shapes a filter attribute may carry.
type CondKind int

const (
	// CondEq requires an exact (case-sensitive) value match.
	CondEq CondKind = iota
	// CondNe excludes an exact value.
	CondNe
	// CondContains requires a case-insensitive substring match.
	CondContains
	// CondAny requires a case-insensitive substring match on any term.
	CondAny
	// CondRange requires a numeric value within optional Min/Max bounds.
	CondRange
)

// Cond is one condition on one attribute.
type Cond struct {
	Kind  CondKind
	Value string
	Terms []string
	Min   *float64
	Max   *float64
}

// Filter maps attribute names to conditions. Assigning to a key replaces
// any earlier condition on that attribute, which is what gives the advisor
// cascade its last-write-wins behaviour.
type Filter map[string]Cond

// Sort is a single-field sort directive. The zero value means "no sort",
// in which case backends return their natural order.
type Sort struct {
	Field      string
	Descending bool
}

// Condition constructors.

func Eq(v string) Cond       { return Cond{Kind: CondEq, Value: v} }
func Ne(v string) Cond       { return Cond{Kind: CondNe, Value: v} }
func Contains(v string) Cond { return Cond{Kind: CondContains, Value: v} }
func AnyOf(terms ...string) Cond {
	return Cond{Kind: CondAny, Terms: terms}
}
func AtLeast(min float64) Cond { return Cond{Kind: CondRange, Min: &min} }
func AtMost(max float64) Cond  { return Cond{Kind: CondRange, Max: &max} }
func Between(min, max float64) Cond {
	return Cond{Kind: CondRange, Min: &min, Max: &max}
}

// numericFields are compared through Magnitude because their catalog values
// are unit-tagged strings.
var numericFields = map[string]bool{
	FieldEnginePower: true,
	FieldMileage:     true,
}

// Matches reports whether v satisfies every condition in f. This is the
// reference evaluation used by the in-memory catalog backend; the Neo4j
// backend compiles the same conditions into a Cypher WHERE clause.
func (f Filter) Matches(v Vehicle) bool {
	for field, cond := range f {
		if !cond.matches(field, v) {
			return false
		}
	}
	return true
}

func (c Cond) matches(field string, v Vehicle) bool {
	switch c.Kind {
	case CondEq:
		return stringField(field, v) == c.Value
	case CondNe:
		return stringField(field, v) != c.Value
	case CondContains:
		return strings.Contains(strings.ToLower(stringField(field, v)), strings.ToLower(c.Value))
	case CondAny:
		got := strings.ToLower(stringField(field, v))
		for _, t := range c.Terms {
			if strings.Contains(got, strings.ToLower(t)) {
				return true
			}
		}
		return false
	case CondRange:
		n := numericField(field, v)
		if c.Min != nil && n < *c.Min {
			return false
		}
		if c.Max != nil && n > *c.Max {
			return false
		}
		return true
	}
	return false
}

func stringField(field string, v Vehicle) string {
	switch field {
	case FieldID:
		return v.ID
	case FieldName:
		return v.Name
	case FieldBrand:
		return v.Brand
	case FieldType:
		return string(v.Type)
	case FieldFuelType:
		return v.FuelType
	case FieldTransmission:
		return v.Transmission
	case FieldBodyType:
		return v.BodyType
	}
	return ""
}

func numericField(field string, v Vehicle) float64 {
	switch field {
	case FieldPrice:
		return v.Price
	case FieldEnginePower:
		return Magnitude(v.EnginePower)
	case FieldMileage:
		return Magnitude(v.Mileage)
	case FieldPerformanceScore:
		return v.PerformanceScore
	}
	return 0
}
