package catalog

import (
	"reflect"
	"strings"
	"testing"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
)

func TestCompileQueryEmptyFilter(t *testing.T) {
	cypher, params := compileQuery(domain.Filter{}, domain.Sort{}, 0)
	if cypher != "MATCH (v:Vehicle) RETURN v" {
		t.Fatalf("cypher = %q", cypher)
	}
	if len(params) != 0 {
		t.Fatalf("params = %v, want none", params)
	}
}

func TestCompileQueryConditions(t *testing.T) {
	f := domain.Filter{
		domain.FieldType:  domain.Eq("car"),
		domain.FieldBrand: domain.Contains("Tata"),
		domain.FieldPrice: domain.Between(300000, 600000),
	}
	cypher, params := compileQuery(f, domain.Sort{}, 15)

	for _, frag := range []string{
		"v.type = $",
		"toLower(v.brand) CONTAINS $",
		"v.price >= $",
		"v.price <= $",
		"LIMIT $",
	} {
		if !strings.Contains(cypher, frag) {
			t.Errorf("cypher missing %q: %s", frag, cypher)
		}
	}

	// Substring params are lowercased at compile time.
	found := false
	for _, v := range params {
		if v == "tata" {
			found = true
		}
	}
	if !found {
		t.Errorf("brand param not lowercased: %v", params)
	}
}

func TestCompileQueryDeterministic(t *testing.T) {
	f := domain.Filter{
		domain.FieldTransmission: domain.Eq("Automatic"),
		domain.FieldType:         domain.Eq("car"),
		domain.FieldFuelType:     domain.AnyOf("Electric", "Hybrid"),
		domain.FieldMileage:      domain.AtLeast(15),
	}
	c1, p1 := compileQuery(f, domain.Sort{Field: domain.FieldPrice}, 10)
	c2, p2 := compileQuery(f, domain.Sort{Field: domain.FieldPrice}, 10)
	if c1 != c2 {
		t.Fatalf("compile is not deterministic:\n%s\n%s", c1, c2)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Fatalf("params differ: %v vs %v", p1, p2)
	}
}

func TestCompileQueryNumericFieldsTargetDerivedProps(t *testing.T) {
	f := domain.Filter{
		domain.FieldEnginePower: domain.AtLeast(100),
		domain.FieldMileage:     domain.AtLeast(15),
	}
	cypher, _ := compileQuery(f, domain.Sort{}, 0)
	if !strings.Contains(cypher, "v.engine_power_num >=") {
		t.Errorf("engine power should compare the derived numeric property: %s", cypher)
	}
	if !strings.Contains(cypher, "v.mileage_num >=") {
		t.Errorf("mileage should compare the derived numeric property: %s", cypher)
	}
}

func TestCompileQuerySort(t *testing.T) {
	tests := []struct {
		sort domain.Sort
		want string
	}{
		{domain.Sort{Field: domain.FieldPrice}, "ORDER BY v.price LIMIT"},
		{domain.Sort{Field: domain.FieldPerformanceScore, Descending: true}, "ORDER BY v.performance_score DESC"},
		{domain.Sort{Field: domain.FieldCreatedAt, Descending: true}, "ORDER BY v.created_at DESC"},
		{domain.Sort{}, "RETURN v LIMIT"},
	}
	for _, tt := range tests {
		cypher, _ := compileQuery(domain.Filter{}, tt.sort, 5)
		if !strings.Contains(cypher, tt.want) {
			t.Errorf("sort %+v: cypher %q missing %q", tt.sort, cypher, tt.want)
		}
	}
}

func TestCompileQueryAnyOf(t *testing.T) {
	f := domain.Filter{domain.FieldBodyType: domain.AnyOf("SUV", "Sedan")}
	cypher, params := compileQuery(f, domain.Sort{}, 0)
	if !strings.Contains(cypher, "any(t IN $p0 WHERE toLower(v.body_type) CONTAINS t)") {
		t.Fatalf("cypher = %q", cypher)
	}
	terms, ok := params["p0"].([]string)
	if !ok || !reflect.DeepEqual(terms, []string{"suv", "sedan"}) {
		t.Fatalf("terms = %v", params["p0"])
	}
}

func TestCompileQueryPrefilterShape(t *testing.T) {
	base := domain.Vehicle{
		ID: "ref", Type: domain.TypeCar, FuelType: domain.FuelPetrol,
		Transmission: domain.TransmissionManual, Price: 1000000,
	}
	f := domain.Filter{
		domain.FieldID:           domain.Ne(base.ID),
		domain.FieldType:         domain.Eq(string(base.Type)),
		domain.FieldFuelType:     domain.Eq(base.FuelType),
		domain.FieldTransmission: domain.Eq(base.Transmission),
		domain.FieldPrice:        domain.Between(850000, 1150000),
	}
	cypher, _ := compileQuery(f, domain.Sort{}, 300)
	if !strings.Contains(cypher, "v.id <> $") {
		t.Errorf("reference exclusion missing: %s", cypher)
	}
	if strings.Count(cypher, " AND ") != 5 {
		t.Errorf("expected 6 WHERE terms, got: %s", cypher)
	}
}
