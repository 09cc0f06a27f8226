package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/DriveMatchAI/drivematch-mvp/engine/domain"
	"github.com/google/uuid"
)

// Memory is an in-process catalog backend with the same behaviour as Store.
// It backs dev mode (no Neo4j required) and tests. Filter criteria are
// evaluated with domain.Filter.Matches, the reference semantics the Cypher
// compiler mirrors.
type Memory struct {
	mu       sync.RWMutex
	vehicles []domain.Vehicle
	now      func() time.Time
}

// NewMemory creates an empty in-memory catalog.
func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

// FindByID returns the vehicle with the given id, or
// domain.ErrVehicleNotFound.
func (m *Memory) FindByID(_ context.Context, id string) (domain.Vehicle, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return domain.Vehicle{}, domain.ErrVehicleNotFound
}

// FindByFilter returns vehicles matching the criteria in insertion order,
// optionally sorted, capped at limit.
func (m *Memory) FindByFilter(_ context.Context, f domain.Filter, s domain.Sort, limit int) ([]domain.Vehicle, error) {
	m.mu.RLock()
	var out []domain.Vehicle
	for _, v := range m.vehicles {
		if f.Matches(v) {
			out = append(out, v)
		}
	}
	m.mu.RUnlock()

	sortVehicles(out, s)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FindTrending returns up to limit trending vehicles.
func (m *Memory) FindTrending(_ context.Context, limit int) ([]domain.Vehicle, error) {
	if limit <= 0 || limit > trendingCap {
		limit = trendingCap
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Vehicle
	for _, v := range m.vehicles {
		if v.IsTrending {
			out = append(out, v)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

// FindByIDs returns the vehicles whose ids appear in ids.
func (m *Memory) FindByIDs(_ context.Context, ids []string) ([]domain.Vehicle, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Vehicle
	for _, v := range m.vehicles {
		if want[v.ID] {
			out = append(out, v)
		}
	}
	return out, nil
}

// Create validates and stores one vehicle.
func (m *Memory) Create(_ context.Context, v domain.Vehicle) (domain.Vehicle, error) {
	if err := domain.ValidateVehicle(v); err != nil {
		return domain.Vehicle{}, err
	}
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = m.now().UTC()
	}
	m.mu.Lock()
	m.vehicles = append(m.vehicles, v)
	m.mu.Unlock()
	return v, nil
}

// Seed bulk-inserts vehicles, skipping duplicate ids.
func (m *Memory) Seed(ctx context.Context, vehicles []domain.Vehicle) (inserted, skipped int, err error) {
	for _, v := range vehicles {
		if v.ID != "" {
			if _, err := m.FindByID(ctx, v.ID); err == nil {
				skipped++
				continue
			}
		}
		if _, err := m.Create(ctx, v); err != nil {
			return inserted, skipped, err
		}
		inserted++
	}
	return inserted, skipped, nil
}

func sortVehicles(vs []domain.Vehicle, s domain.Sort) {
	if s.Field == "" {
		return
	}
	var less func(a, b domain.Vehicle) bool
	switch s.Field {
	case domain.FieldPrice:
		less = func(a, b domain.Vehicle) bool { return a.Price < b.Price }
	case domain.FieldPerformanceScore:
		less = func(a, b domain.Vehicle) bool { return a.PerformanceScore < b.PerformanceScore }
	case domain.FieldCreatedAt:
		less = func(a, b domain.Vehicle) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return
	}
	sort.SliceStable(vs, func(i, j int) bool {
		if s.Descending {
			return less(vs[j], vs[i])
		}
		return less(vs[i], vs[j])
	})
}
