// Package similar ranks catalog vehicles by weighted similarity to a
// reference vehicle. Candidates are prefiltered by hard constraints in the
// catalog, scored in-process, and the top matches returned.
package similar

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Catalog is the read-only slice of the vehicle repository this service needs.
type Catalog interface {
	FindByID(ctx context.Context, id string) (domain.Vehicle, error)
	FindByFilter(ctx context.Context, f domain.Filter, sort domain.Sort, limit int) ([]domain.Vehicle, error)
}

const (
	// priceBand is the hard-constraint tolerance around the reference price.
	priceBand = 0.15
	// candidateCap bounds scoring cost, not correctness.
	candidateCap = 300
	// topK is the number of similar vehicles returned.
	topK = 4
)

// Attribute weights. The maximum attainable total is 100.
const (
	weightPrice        = 25.0
	weightPower        = 20.0
	weightMileage      = 15.0
	weightTorque       = 10.0
	weightFuelType     = 5.0
	weightTransmission = 5.0
	weightBodyType     = 5.0
	weightPerformance  = 10.0
	weightEco          = 5.0
)

// ScoredCandidate pairs a candidate with its similarity score for the
// duration of one ranking call.
type ScoredCandidate struct {
	Vehicle domain.Vehicle
	Score   float64
}

// Service is the similarity ranking service.
type Service struct {
	catalog Catalog
	log     *slog.Logger
	tracer  trace.Tracer
}

// New creates a similarity Service.
func New(catalog Catalog, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		catalog: catalog,
		log:     log,
		tracer:  otel.Tracer("engine/similar"),
	}
}

// RankSimilar returns the reference vehicle and up to four similar vehicles,
// ordered by descending score. An unknown id fails with
// domain.ErrVehicleNotFound; an empty candidate set is not an error.
func (s *Service) RankSimilar(ctx context.Context, id string) (domain.Vehicle, []domain.Vehicle, error) {
	ctx, span := s.tracer.Start(ctx, "similar.RankSimilar")
	defer span.End()

	base, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return domain.Vehicle{}, nil, err
	}

	candidates, err := s.catalog.FindByFilter(ctx, Prefilter(base), domain.Sort{}, candidateCap)
	if err != nil {
		return domain.Vehicle{}, nil, err
	}
	if len(candidates) == 0 {
		return base, nil, nil
	}

	scored := make([]ScoredCandidate, len(candidates))
	for i, c := range candidates {
		scored[i] = ScoredCandidate{Vehicle: c, Score: Score(base, c)}
	}

	// Stable sort: candidates with equal scores keep catalog return order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	n := topK
	if len(scored) < n {
		n = len(scored)
	}
	out := make([]domain.Vehicle, n)
	for i := range out {
		out[i] = scored[i].Vehicle
	}

	s.log.Debug("similarity ranked",
		"vehicle_id", id,
		"candidates", len(candidates),
		"returned", n,
	)
	return base, out, nil
}

// Prefilter builds the hard-constraint filter for a reference vehicle:
// same category, fuel type, and transmission, price within the tolerance
// band, and the reference itself excluded. A non-positive reference price
// degenerates to a [0, 0] band and yields a trivial candidate set.
func Prefilter(base domain.Vehicle) domain.Filter {
	return domain.Filter{
		domain.FieldID:           domain.Ne(base.ID),
		domain.FieldType:         domain.Eq(string(base.Type)),
		domain.FieldFuelType:     domain.Eq(base.FuelType),
		domain.FieldTransmission: domain.Eq(base.Transmission),
		domain.FieldPrice:        domain.Between(base.Price*(1-priceBand), base.Price*(1+priceBand)),
	}
}

// Score computes the weighted similarity of cand to base. Relative
// differences use max(baseValue, 1) as denominator: a reference whose
// attribute normalizes to 0 makes every candidate's diff on that attribute
// equal to the candidate's raw value, which can distort scores. Sub-scores
// are not clamped, so a large attribute gap can contribute negatively.
func Score(base, cand domain.Vehicle) float64 {
	score := (1 - relDiff(base.Price, cand.Price)) * weightPrice
	score += (1 - relDiff(domain.Magnitude(base.EnginePower), domain.Magnitude(cand.EnginePower))) * weightPower
	score += (1 - relDiff(domain.Magnitude(base.Mileage), domain.Magnitude(cand.Mileage))) * weightMileage
	score += (1 - relDiff(domain.Magnitude(base.Torque), domain.Magnitude(cand.Torque))) * weightTorque

	if base.FuelType == cand.FuelType {
		score += weightFuelType
	}
	if base.Transmission == cand.Transmission {
		score += weightTransmission
	}
	if base.BodyType == cand.BodyType {
		score += weightBodyType
	}

	score += (1 - math.Abs(base.PerformanceScore-cand.PerformanceScore)/100) * weightPerformance
	score += (1 - math.Abs(base.EcoScore-cand.EcoScore)/100) * weightEco

	return score
}

// relDiff is the guarded relative difference |a-b| / max(a, 1).
func relDiff(a, b float64) float64 {
	return math.Abs(a-b) / math.Max(a, 1)
}
