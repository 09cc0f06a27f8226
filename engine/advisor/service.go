// Package advisor interprets freeform vehicle queries. A fixed cascade of
// text rules builds a structured filter, a sort directive, an intent label,
// and a reasoning trace; the compiled filter runs against the catalog, with
// a trending fallback when nothing matches.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
	"github.com/DriveMatchAI/drivematch-mvp/pkg/fn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Catalog is the read-only slice of the vehicle repository this service needs.
type Catalog interface {
	FindByFilter(ctx context.Context, f domain.Filter, sort domain.Sort, limit int) ([]domain.Vehicle, error)
	FindTrending(ctx context.Context, limit int) ([]domain.Vehicle, error)
}

const (
	fetchLimit    = 15
	returnLimit   = 10
	trendingLimit = 8

	baseConfidence  = 100
	fallbackPenalty = 30
	jitterSpan      = 5
)

// Jitter supplies the cosmetic confidence jitter. It never influences
// filtering or ranking; tests plug a fixed source and assert ranges only.
type Jitter interface {
	Intn(n int) int
}

type randJitter struct{ r *rand.Rand }

func (j randJitter) Intn(n int) int { return j.r.Intn(n) }

// VehicleSummary is the trimmed attribute set advisor results carry.
type VehicleSummary struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Brand            string  `json:"brand"`
	Price            float64 `json:"price"`
	FuelType         string  `json:"fuelType,omitempty"`
	Mileage          string  `json:"mileage,omitempty"`
	Transmission     string  `json:"transmission,omitempty"`
	EnginePower      string  `json:"enginePower,omitempty"`
	BodyType         string  `json:"bodyType,omitempty"`
	PerformanceScore float64 `json:"performanceScore"`
	Image            string  `json:"image,omitempty"`
}

// Advice is the full advisor response.
type Advice struct {
	Query          string           `json:"query"`
	Message        string           `json:"message"`
	Intent         Intent           `json:"intent"`
	Confidence     int              `json:"confidence"`
	ContextTags    []string         `json:"contextTags"`
	AppliedFilters Filters          `json:"appliedFilters"`
	Reasoning      []string         `json:"reasoning"`
	Fallback       bool             `json:"fallback,omitempty"`
	TotalResults   int              `json:"totalResults"`
	Results        []VehicleSummary `json:"results"`
}

// Service runs the advisor pipeline.
type Service struct {
	catalog Catalog
	jitter  Jitter
	log     *slog.Logger
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithJitter replaces the confidence jitter source.
func WithJitter(j Jitter) Option {
	return func(s *Service) { s.jitter = j }
}

// New creates an advisor Service.
func New(catalog Catalog, log *slog.Logger, opts ...Option) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{
		catalog: catalog,
		jitter:  randJitter{r: rand.New(rand.NewSource(rand.Int63()))},
		log:     log,
		tracer:  otel.Tracer("engine/advisor"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Advise interprets the query, runs the compiled filter, and assembles the
// response. Zero matches is not an error: the service substitutes trending
// vehicles, marks the response degraded, and docks confidence by a fixed
// penalty. Catalog errors propagate unchanged.
func (s *Service) Advise(ctx context.Context, query string) (*Advice, error) {
	ctx, span := s.tracer.Start(ctx, "advisor.Advise")
	defer span.End()

	st, err := Interpret(query)
	if err != nil {
		return nil, err
	}

	vehicles, err := s.catalog.FindByFilter(ctx, st.Filters.Criteria(), st.Sort(), fetchLimit)
	if err != nil {
		return nil, err
	}

	advice := &Advice{
		Query:          query,
		Intent:         st.Intent,
		ContextTags:    st.Tags,
		AppliedFilters: st.Filters,
		Reasoning:      st.Reasoning,
	}

	if len(vehicles) == 0 {
		trending, err := s.catalog.FindTrending(ctx, trendingLimit)
		if err != nil {
			return nil, err
		}
		advice.Fallback = true
		advice.Confidence = baseConfidence - fallbackPenalty
		advice.Reasoning = append(advice.Reasoning, "No direct match found. Showing trending vehicles instead.")
		advice.Message = "No exact matches found — showing trending suggestions."
		advice.TotalResults = len(trending)
		advice.Results = fn.Map(trending, summarize)

		s.log.Info("advisor fallback", "query", query, "trending", len(trending))
		return advice, nil
	}

	advice.Confidence = baseConfidence - s.jitter.Intn(jitterSpan)
	advice.TotalResults = len(vehicles)
	if len(vehicles) > returnLimit {
		vehicles = vehicles[:returnLimit]
	}
	advice.Results = fn.Map(vehicles, summarize)
	advice.Message = composeMessage(advice.TotalResults, st.Filters)

	s.log.Info("advisor matched",
		"query", query,
		"intent", advice.Intent,
		"results", advice.TotalResults,
	)
	return advice, nil
}

func summarize(v domain.Vehicle) VehicleSummary {
	return VehicleSummary{
		ID:               v.ID,
		Name:             v.Name,
		Brand:            v.Brand,
		Price:            v.Price,
		FuelType:         v.FuelType,
		Mileage:          v.Mileage,
		Transmission:     v.Transmission,
		EnginePower:      v.EnginePower,
		BodyType:         v.BodyType,
		PerformanceScore: v.PerformanceScore,
		Image:            v.Image,
	}
}

// composeMessage interpolates the detected category and brand into a
// human-readable summary line.
func composeMessage(total int, f Filters) string {
	noun := "vehicles"
	if f.Type != "" {
		noun = f.Type + "s"
	}
	from := ""
	if f.Brand != "" {
		from = "from " + f.Brand + " "
	}
	return fmt.Sprintf("I found %d matching %s %sthat suit your preferences.", total, noun, from)
}
