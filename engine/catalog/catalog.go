// Package catalog implements the vehicle repository. The primary backend
// stores vehicles as (:Vehicle) nodes in Neo4j and compiles filter criteria
// to Cypher; an in-memory backend backs dev mode and tests.
package catalog

import (
	"context"
	"time"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

// trendingCap bounds trending fetches regardless of the caller's limit.
const trendingCap = 300

// result is the minimal interface needed from a neo4j result.
type result interface {
	Next(ctx context.Context) bool
	Record() *neo4j.Record
}

// runner is the minimal interface needed from a neo4j session.
type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (result, error)
	Close(ctx context.Context) error
}

// sessionAdapter adapts neo4j.SessionWithContext to the runner interface.
type sessionAdapter struct {
	sess neo4j.SessionWithContext
}

func (a *sessionAdapter) Run(ctx context.Context, cypher string, params map[string]any) (result, error) {
	return a.sess.Run(ctx, cypher, params)
}

func (a *sessionAdapter) Close(ctx context.Context) error {
	return a.sess.Close(ctx)
}

// Store is the Neo4j-backed vehicle catalog.
type Store struct {
	driver     neo4j.DriverWithContext
	newSession func(ctx context.Context) runner // test seam
	now        func() time.Time
	newID      func() string
}

// NewStore creates a catalog Store on an open Neo4j driver.
func NewStore(driver neo4j.DriverWithContext) *Store {
	return &Store{
		driver: driver,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

func (s *Store) session(ctx context.Context) runner {
	if s.newSession != nil {
		return s.newSession(ctx)
	}
	return &sessionAdapter{sess: s.driver.NewSession(ctx, neo4j.SessionConfig{})}
}

// FindByID returns the vehicle with the given id, or
// domain.ErrVehicleNotFound.
func (s *Store) FindByID(ctx context.Context, id string) (domain.Vehicle, error) {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx, `MATCH (v:Vehicle {id: $id}) RETURN v`, map[string]any{"id": id})
	if err != nil {
		return domain.Vehicle{}, err
	}
	if !res.Next(ctx) {
		return domain.Vehicle{}, domain.ErrVehicleNotFound
	}
	return vehicleFromRecord(res.Record())
}

// FindByFilter returns vehicles matching the criteria, optionally sorted,
// capped at limit.
func (s *Store) FindByFilter(ctx context.Context, f domain.Filter, sort domain.Sort, limit int) ([]domain.Vehicle, error) {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	cypher, params := compileQuery(f, sort, limit)
	res, err := sess.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return collectVehicles(ctx, res)
}

// FindTrending returns up to limit trending vehicles.
func (s *Store) FindTrending(ctx context.Context, limit int) ([]domain.Vehicle, error) {
	if limit <= 0 || limit > trendingCap {
		limit = trendingCap
	}
	sess := s.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx,
		`MATCH (v:Vehicle) WHERE v.is_trending = true RETURN v LIMIT $limit`,
		map[string]any{"limit": int64(limit)})
	if err != nil {
		return nil, err
	}
	return collectVehicles(ctx, res)
}

// FindByIDs returns the vehicles whose ids appear in ids. Unknown ids are
// silently absent from the result.
func (s *Store) FindByIDs(ctx context.Context, ids []string) ([]domain.Vehicle, error) {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	res, err := sess.Run(ctx,
		`MATCH (v:Vehicle) WHERE v.id IN $ids RETURN v`,
		map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	return collectVehicles(ctx, res)
}

// Create validates and stores one vehicle, assigning an id and creation
// time when absent. Returns the stored vehicle.
func (s *Store) Create(ctx context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	if err := domain.ValidateVehicle(v); err != nil {
		return domain.Vehicle{}, err
	}
	v = s.stamp(v)

	sess := s.session(ctx)
	defer sess.Close(ctx)

	_, err := sess.Run(ctx, `CREATE (v:Vehicle $props)`, map[string]any{"props": vehicleToMap(v)})
	if err != nil {
		return domain.Vehicle{}, err
	}
	return v, nil
}

// Seed bulk-inserts vehicles, skipping entries whose id already exists.
// Returns the inserted and skipped counts. Invalid entries abort the seed.
func (s *Store) Seed(ctx context.Context, vehicles []domain.Vehicle) (inserted, skipped int, err error) {
	sess := s.session(ctx)
	defer sess.Close(ctx)

	for _, v := range vehicles {
		if err := domain.ValidateVehicle(v); err != nil {
			return inserted, skipped, err
		}
		v = s.stamp(v)

		// MERGE with a marker property reports whether this call created
		// the node, so duplicates can be counted instead of overwritten.
		cypher := `MERGE (v:Vehicle {id: $id})
		           ON CREATE SET v += $props, v.seeded_now = true
		           WITH v, coalesce(v.seeded_now, false) AS created
		           REMOVE v.seeded_now
		           RETURN created`
		res, err := sess.Run(ctx, cypher, map[string]any{"id": v.ID, "props": vehicleToMap(v)})
		if err != nil {
			return inserted, skipped, err
		}
		if res.Next(ctx) {
			if created, _ := res.Record().Get("created"); created == true {
				inserted++
				continue
			}
		}
		skipped++
	}
	return inserted, skipped, nil
}

// stamp fills in id and creation time for new vehicles.
func (s *Store) stamp(v domain.Vehicle) domain.Vehicle {
	if v.ID == "" {
		v.ID = s.newID()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = s.now().UTC()
	}
	return v
}

func collectVehicles(ctx context.Context, res result) ([]domain.Vehicle, error) {
	var out []domain.Vehicle
	for res.Next(ctx) {
		v, err := vehicleFromRecord(res.Record())
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// vehicleToMap flattens a vehicle to node properties. Unit-tagged spec
// strings keep their raw form; derived *_num properties hold their
// magnitudes so range criteria compare numerically in Cypher.
func vehicleToMap(v domain.Vehicle) map[string]any {
	return map[string]any{
		"id":                  v.ID,
		"name":                v.Name,
		"brand":               v.Brand,
		"type":                string(v.Type),
		"variant":             v.Variant,
		"model_year":          v.ModelYear,
		"price":               v.Price,
		"on_road_price":       v.OnRoadPrice,
		"engine":              v.Engine,
		"engine_power":        v.EnginePower,
		"engine_power_num":    domain.Magnitude(v.EnginePower),
		"torque":              v.Torque,
		"fuel_type":           v.FuelType,
		"mileage":             v.Mileage,
		"mileage_num":         domain.Magnitude(v.Mileage),
		"transmission":        v.Transmission,
		"body_type":           v.BodyType,
		"seating_capacity":    v.SeatingCapacity,
		"image":               v.Image,
		"performance_score":   v.PerformanceScore,
		"eco_score":           v.EcoScore,
		"is_trending":         v.IsTrending,
		"avg_rating":          v.AvgRating,
		"review_count":        v.ReviewCount,
		"tags":                v.Tags,
		"availability_status": v.AvailabilityStatus,
		"created_at":          v.CreatedAt.Format(time.RFC3339),
	}
}

func vehicleFromRecord(rec *neo4j.Record) (domain.Vehicle, error) {
	raw, ok := rec.Get("v")
	if !ok {
		return domain.Vehicle{}, domain.ErrVehicleNotFound
	}
	node, ok := raw.(dbtype.Node)
	if !ok {
		return domain.Vehicle{}, domain.ErrVehicleNotFound
	}
	p := node.Props

	v := domain.Vehicle{
		ID:                 str(p, "id"),
		Name:               str(p, "name"),
		Brand:              str(p, "brand"),
		Type:               domain.VehicleType(str(p, "type")),
		Variant:            str(p, "variant"),
		ModelYear:          integer(p, "model_year"),
		Price:              num(p, "price"),
		OnRoadPrice:        num(p, "on_road_price"),
		Engine:             str(p, "engine"),
		EnginePower:        str(p, "engine_power"),
		Torque:             str(p, "torque"),
		FuelType:           str(p, "fuel_type"),
		Mileage:            str(p, "mileage"),
		Transmission:       str(p, "transmission"),
		BodyType:           str(p, "body_type"),
		SeatingCapacity:    integer(p, "seating_capacity"),
		Image:              str(p, "image"),
		PerformanceScore:   num(p, "performance_score"),
		EcoScore:           num(p, "eco_score"),
		IsTrending:         boolean(p, "is_trending"),
		AvgRating:          num(p, "avg_rating"),
		ReviewCount:        integer(p, "review_count"),
		AvailabilityStatus: str(p, "availability_status"),
	}
	if ts := str(p, "created_at"); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			v.CreatedAt = t
		}
	}
	if tags, ok := p["tags"].([]any); ok {
		for _, t := range tags {
			if s, ok := t.(string); ok {
				v.Tags = append(v.Tags, s)
			}
		}
	}
	return v, nil
}

func str(p map[string]any, key string) string {
	if s, ok := p[key].(string); ok {
		return s
	}
	return ""
}

func num(p map[string]any, key string) float64 {
	switch n := p[key].(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func integer(p map[string]any, key string) int {
	switch n := p[key].(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func boolean(p map[string]any, key string) bool {
	if b, ok := p[key].(bool); ok {
		return b
	}
	return false
}
