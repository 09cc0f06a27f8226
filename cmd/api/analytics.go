package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/DriveMatchAI/drivematch-mvp/engine/advisor"
	"github.com/DriveMatchAI/drivematch-mvp/pkg/natsutil"
)

// NATS subjects for analytics events.
const (
	subjectAdvisorQueried = "drivematch.analytics.advisor"
	subjectSimilarRanked  = "drivematch.analytics.similar"
)

// AdvisorQueriedEvent records one advisor query.
type AdvisorQueriedEvent struct {
	Query        string    `json:"query"`
	Intent       string    `json:"intent"`
	TotalResults int       `json:"totalResults"`
	Fallback     bool      `json:"fallback"`
	At           time.Time `json:"at"`
}

// SimilarRankedEvent records one similarity lookup.
type SimilarRankedEvent struct {
	VehicleID string    `json:"vehicleId"`
	Matches   int       `json:"matches"`
	At        time.Time `json:"at"`
}

// analytics publishes usage events to NATS. A nil receiver is a no-op so
// the API runs without a broker.
type analytics struct {
	nc  *nats.Conn
	log *slog.Logger
	now func() time.Time
}

func newAnalytics(nc *nats.Conn, log *slog.Logger) *analytics {
	return &analytics{nc: nc, log: log, now: time.Now}
}

func (a *analytics) advisorQueried(ctx context.Context, advice *advisor.Advice) {
	if a == nil {
		return
	}
	ev := AdvisorQueriedEvent{
		Query:        advice.Query,
		Intent:       string(advice.Intent),
		TotalResults: advice.TotalResults,
		Fallback:     advice.Fallback,
		At:           a.now().UTC(),
	}
	if err := natsutil.Publish(ctx, a.nc, subjectAdvisorQueried, ev); err != nil {
		a.log.Warn("publish advisor event failed", "err", err)
	}
}

func (a *analytics) similarRanked(ctx context.Context, vehicleID string, matches int) {
	if a == nil {
		return
	}
	ev := SimilarRankedEvent{
		VehicleID: vehicleID,
		Matches:   matches,
		At:        a.now().UTC(),
	}
	if err := natsutil.Publish(ctx, a.nc, subjectSimilarRanked, ev); err != nil {
		a.log.Warn("publish similar event failed", "err", err)
	}
}
