package advisor

import (
	"strings"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
)

// Interpret runs the rule cascade over query text and returns the
// accumulated state. The text is validated first and lower-cased once; every
// rule sees the same text. The cascade is a left fold, so rule order (and
// therefore last-write-wins precedence) is exactly the order of Cascade.
func Interpret(text string) (State, error) {
	if err := domain.ValidateQuery(text); err != nil {
		return State{}, err
	}
	lowered := strings.ToLower(text)

	// Reasoning and Tags start as empty slices, not nil, so a query that
	// fires no rule still serializes them as [] in the response.
	st := State{Intent: IntentFilter, Reasoning: []string{}, Tags: []string{}}
	for _, rule := range Cascade {
		st = rule.Apply(lowered, st)
	}
	return st, nil
}

// Criteria compiles the structured filter into the criteria shape the
// catalog evaluates. The filter is not mutated; call this once the cascade
// has finished.
func (f Filters) Criteria() domain.Filter {
	out := domain.Filter{}
	if f.Type != "" {
		out[domain.FieldType] = domain.Eq(f.Type)
	}
	if f.Brand != "" {
		out[domain.FieldBrand] = domain.Contains(f.Brand)
	}
	if len(f.FuelTypes) > 0 {
		out[domain.FieldFuelType] = domain.AnyOf(f.FuelTypes...)
	} else if f.FuelType != "" {
		out[domain.FieldFuelType] = domain.Eq(f.FuelType)
	}
	if f.Transmission != "" {
		out[domain.FieldTransmission] = domain.Eq(f.Transmission)
	}
	if len(f.BodyTypes) > 0 {
		out[domain.FieldBodyType] = domain.AnyOf(f.BodyTypes...)
	}
	if f.PriceMin != nil || f.PriceMax != nil {
		out[domain.FieldPrice] = domain.Cond{Kind: domain.CondRange, Min: f.PriceMin, Max: f.PriceMax}
	}
	if f.EnginePowerMin != nil {
		out[domain.FieldEnginePower] = domain.AtLeast(*f.EnginePowerMin)
	}
	if f.MileageMin != nil {
		out[domain.FieldMileage] = domain.AtLeast(*f.MileageMin)
	}
	if f.PerformanceMin != nil {
		out[domain.FieldPerformanceScore] = domain.AtLeast(*f.PerformanceMin)
	}
	return out
}

// Sort returns the compiled sort directive, or the zero Sort when the query
// carried no sort cue.
func (st State) Sort() domain.Sort {
	if st.SortBy == "" {
		return domain.Sort{}
	}
	return domain.Sort{Field: st.SortBy, Descending: st.SortDesc}
}
