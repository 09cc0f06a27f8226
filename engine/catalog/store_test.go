package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

type fakeResult struct {
	records []*neo4j.Record
	pos     int
}

func (r *fakeResult) Next(context.Context) bool {
	if r.pos >= len(r.records) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeResult) Record() *neo4j.Record { return r.records[r.pos-1] }

type fakeRunner struct {
	records   []*neo4j.Record
	err       error
	gotCypher []string
	gotParams []map[string]any
}

func (f *fakeRunner) Run(_ context.Context, cypher string, params map[string]any) (result, error) {
	f.gotCypher = append(f.gotCypher, cypher)
	f.gotParams = append(f.gotParams, params)
	if f.err != nil {
		return nil, f.err
	}
	return &fakeResult{records: f.records}, nil
}

func (f *fakeRunner) Close(context.Context) error { return nil }

func storeWith(f *fakeRunner) *Store {
	s := NewStore(nil)
	s.newSession = func(context.Context) runner { return f }
	return s
}

func vehicleRecord(props map[string]any) *neo4j.Record {
	return &neo4j.Record{Keys: []string{"v"}, Values: []any{dbtype.Node{Props: props}}}
}

func TestStoreFindByID(t *testing.T) {
	f := &fakeRunner{records: []*neo4j.Record{vehicleRecord(map[string]any{
		"id": "nexon", "name": "Nexon", "brand": "Tata", "type": "car",
		"price": float64(800000), "fuel_type": "Petrol", "is_trending": true,
		"model_year": int64(2023), "created_at": "2024-01-01T00:00:00Z",
		"tags": []any{"suv", "compact"},
	})}}
	s := storeWith(f)

	v, err := s.FindByID(context.Background(), "nexon")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if v.Name != "Nexon" || v.Type != domain.TypeCar || v.Price != 800000 {
		t.Fatalf("round-trip lost fields: %+v", v)
	}
	if v.ModelYear != 2023 || !v.IsTrending || len(v.Tags) != 2 {
		t.Fatalf("typed props mis-parsed: %+v", v)
	}
	if v.CreatedAt.IsZero() {
		t.Fatal("created_at not parsed")
	}
}

func TestStoreFindByIDNotFound(t *testing.T) {
	s := storeWith(&fakeRunner{})
	_, err := s.FindByID(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrVehicleNotFound) {
		t.Fatalf("err = %v, want ErrVehicleNotFound", err)
	}
}

func TestStoreFindByFilterPassesCompiledQuery(t *testing.T) {
	f := &fakeRunner{}
	s := storeWith(f)

	filter := domain.Filter{domain.FieldType: domain.Eq("car")}
	if _, err := s.FindByFilter(context.Background(), filter, domain.Sort{Field: domain.FieldPrice}, 15); err != nil {
		t.Fatal(err)
	}
	if len(f.gotCypher) != 1 {
		t.Fatalf("expected one query, got %d", len(f.gotCypher))
	}
	q := f.gotCypher[0]
	if !strings.Contains(q, "v.type = $") || !strings.Contains(q, "ORDER BY v.price") {
		t.Fatalf("unexpected cypher: %s", q)
	}
}

func TestStoreFindTrendingClampsLimit(t *testing.T) {
	f := &fakeRunner{}
	s := storeWith(f)
	if _, err := s.FindTrending(context.Background(), 100000); err != nil {
		t.Fatal(err)
	}
	if got := f.gotParams[0]["limit"]; got != int64(300) {
		t.Fatalf("limit = %v, want clamped 300", got)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("neo4j: session expired")
	s := storeWith(&fakeRunner{err: boom})

	if _, err := s.FindByID(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("FindByID err = %v", err)
	}
	if _, err := s.FindByFilter(context.Background(), domain.Filter{}, domain.Sort{}, 5); !errors.Is(err, boom) {
		t.Fatalf("FindByFilter err = %v", err)
	}
	if _, err := s.FindTrending(context.Background(), 5); !errors.Is(err, boom) {
		t.Fatalf("FindTrending err = %v", err)
	}
}

func TestStoreCreateValidatesAndStamps(t *testing.T) {
	f := &fakeRunner{}
	s := storeWith(f)

	if _, err := s.Create(context.Background(), domain.Vehicle{Name: "X"}); err == nil {
		t.Fatal("invalid vehicle accepted")
	}

	v, err := s.Create(context.Background(), domain.Vehicle{
		Name: "Creta", Brand: "Hyundai", Type: domain.TypeCar, Price: 1100000,
		EnginePower: "113 bhp", Mileage: "17 km/l",
	})
	if err != nil {
		t.Fatal(err)
	}
	if v.ID == "" || v.CreatedAt.IsZero() {
		t.Fatalf("id/createdAt not stamped: %+v", v)
	}

	props := f.gotParams[0]["props"].(map[string]any)
	if props["engine_power_num"] != float64(113) || props["mileage_num"] != float64(17) {
		t.Fatalf("derived numeric props missing: %v", props)
	}
}
