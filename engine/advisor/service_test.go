package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
)

// fakeCatalog evaluates filters in-process against a fixed vehicle slice.
type fakeCatalog struct {
	vehicles  []domain.Vehicle
	trending  []domain.Vehicle
	filterErr error
	trendErr  error

	gotLimit      int
	trendingCalls int
}

func (f *fakeCatalog) FindByFilter(_ context.Context, flt domain.Filter, _ domain.Sort, limit int) ([]domain.Vehicle, error) {
	f.gotLimit = limit
	if f.filterErr != nil {
		return nil, f.filterErr
	}
	var out []domain.Vehicle
	for _, v := range f.vehicles {
		if flt.Matches(v) {
			out = append(out, v)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeCatalog) FindTrending(_ context.Context, limit int) ([]domain.Vehicle, error) {
	f.trendingCalls++
	if f.trendErr != nil {
		return nil, f.trendErr
	}
	if len(f.trending) > limit {
		return f.trending[:limit], nil
	}
	return f.trending, nil
}

type fixedJitter struct{ n int }

func (j fixedJitter) Intn(int) int { return j.n }

func tataSUV(id string) domain.Vehicle {
	return domain.Vehicle{
		ID: id, Name: "Nexon " + id, Brand: "Tata", Type: domain.TypeCar,
		Price: 750000, FuelType: domain.FuelPetrol, BodyType: "SUV",
		Mileage: "17 km/l", PerformanceScore: 72,
	}
}

func TestAdviseMatch(t *testing.T) {
	cat := &fakeCatalog{vehicles: []domain.Vehicle{tataSUV("a"), tataSUV("b")}}
	svc := New(cat, nil, WithJitter(fixedJitter{n: 3}))

	advice, err := svc.Advise(context.Background(), "tata suv under 8 lakh")
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if advice.Fallback {
		t.Fatal("unexpected fallback")
	}
	if advice.Confidence != 97 {
		t.Fatalf("confidence = %d, want 97 with fixed jitter 3", advice.Confidence)
	}
	if advice.TotalResults != 2 || len(advice.Results) != 2 {
		t.Fatalf("results = %d/%d, want 2/2", len(advice.Results), advice.TotalResults)
	}
	if cat.gotLimit != 15 {
		t.Fatalf("fetch limit = %d, want 15", cat.gotLimit)
	}
	if cat.trendingCalls != 0 {
		t.Fatal("trending must not be fetched on a direct match")
	}
	if !strings.Contains(advice.Message, "2 matching cars") || !strings.Contains(advice.Message, "from tata") {
		t.Fatalf("message = %q", advice.Message)
	}
}

func TestAdviseConfidenceRange(t *testing.T) {
	cat := &fakeCatalog{vehicles: []domain.Vehicle{tataSUV("a")}}
	svc := New(cat, nil)

	for i := 0; i < 20; i++ {
		advice, err := svc.Advise(context.Background(), "tata suv")
		if err != nil {
			t.Fatal(err)
		}
		if advice.Confidence < 95 || advice.Confidence > 100 {
			t.Fatalf("confidence %d outside jitter range [95, 100]", advice.Confidence)
		}
	}
}

func TestAdviseFallback(t *testing.T) {
	trending := make([]domain.Vehicle, 12)
	for i := range trending {
		v := tataSUV(string(rune('a' + i)))
		v.IsTrending = true
		trending[i] = v
	}
	cat := &fakeCatalog{trending: trending}
	svc := New(cat, nil)

	advice, err := svc.Advise(context.Background(), "luxury electric jeep above 90 lakh")
	if err != nil {
		t.Fatalf("fallback is not an error: %v", err)
	}
	if !advice.Fallback {
		t.Fatal("fallback flag not set")
	}
	if advice.Confidence != 70 {
		t.Fatalf("confidence = %d, want 70", advice.Confidence)
	}
	if len(advice.Results) != 8 {
		t.Fatalf("trending results = %d, want 8", len(advice.Results))
	}
	last := advice.Reasoning[len(advice.Reasoning)-1]
	if !strings.Contains(last, "No direct match") {
		t.Fatalf("missing fallback reasoning note, got %q", last)
	}
}

func TestAdviseEmptyQueryValidation(t *testing.T) {
	cat := &fakeCatalog{trending: []domain.Vehicle{tataSUV("a")}}
	svc := New(cat, nil)

	_, err := svc.Advise(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Fatalf("err = %v, want ErrEmptyQuery", err)
	}
	if cat.trendingCalls != 0 || cat.gotLimit != 0 {
		t.Fatal("validation must short-circuit before any catalog call")
	}
}

func TestAdviseRepositoryErrorPropagates(t *testing.T) {
	boom := errors.New("bolt: connection reset")
	svc := New(&fakeCatalog{filterErr: boom}, nil)

	_, err := svc.Advise(context.Background(), "tata suv")
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped catalog error", err)
	}
}

func TestAdviseResultProjectionAndCap(t *testing.T) {
	var vehicles []domain.Vehicle
	for i := 0; i < 14; i++ {
		vehicles = append(vehicles, tataSUV(string(rune('a'+i))))
	}
	cat := &fakeCatalog{vehicles: vehicles}
	svc := New(cat, nil)

	advice, err := svc.Advise(context.Background(), "tata suv")
	if err != nil {
		t.Fatal(err)
	}
	if advice.TotalResults != 14 {
		t.Fatalf("totalResults = %d, want 14", advice.TotalResults)
	}
	if len(advice.Results) != 10 {
		t.Fatalf("returned = %d, want top 10", len(advice.Results))
	}
	r := advice.Results[0]
	if r.ID == "" || r.Name == "" || r.Brand == "" || r.Price == 0 {
		t.Fatalf("projection lost core attributes: %+v", r)
	}
}

func TestAdviseDeterministicApartFromJitter(t *testing.T) {
	cat := &fakeCatalog{vehicles: []domain.Vehicle{tataSUV("a"), tataSUV("b")}}
	svc := New(cat, nil)

	first, err := svc.Advise(context.Background(), "family tata suv under 8 lakh")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Advise(context.Background(), "family tata suv under 8 lakh")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first.AppliedFilters, second.AppliedFilters) {
		t.Fatal("appliedFilters differ across runs")
	}
	if first.Intent != second.Intent {
		t.Fatal("intent differs across runs")
	}
	if !reflect.DeepEqual(first.Results, second.Results) {
		t.Fatal("results differ across runs")
	}
}

func TestAdviseNoCueQuerySerializesEmptyArrays(t *testing.T) {
	cat := &fakeCatalog{vehicles: []domain.Vehicle{tataSUV("a")}}
	svc := New(cat, nil, WithJitter(fixedJitter{n: 0}))

	advice, err := svc.Advise(context.Background(), "wheels")
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if advice.ContextTags == nil || advice.Reasoning == nil {
		t.Fatal("tags and reasoning must be non-nil even when no rule fires")
	}
	if len(advice.ContextTags) != 0 || len(advice.Reasoning) != 0 {
		t.Fatalf("cue-less query accumulated state: tags=%v reasoning=%v",
			advice.ContextTags, advice.Reasoning)
	}

	body, err := json.Marshal(advice)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"contextTags":[]`, `"reasoning":[]`} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("response missing %s:\n%s", want, body)
		}
	}
}
