// Marquee - Event Recommendation and Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/marquee

package recommend

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/marquee/internal/metrics"
)

const day = 24 * time.Hour

// SellThrough returns the mean tickets_sold/capacity over sample events with
// positive capacity, or fallback when none qualify. The second value is the
// number of events averaged.
func SellThrough(sample []Event, fallback float64) (float64, int) {
	var sum float64
	var n int
	for i := range sample {
		if sample[i].Capacity <= 0 {
			continue
		}
		sum += float64(sample[i].TicketsSold) / float64(sample[i].Capacity)
		n++
	}
	if n == 0 {
		return fallback, 0
	}
	return sum / float64(n), n
}

// DaysUntil returns ceil((start-now)/24h), floored at zero.
func DaysUntil(start, now time.Time) int {
	diff := start.Sub(now)
	if diff <= 0 {
		return 0
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// ForecastEvent projects demand for e from its historical sample. It is a
// pure function of its arguments.
func ForecastEvent(e *Event, sample []Event, now time.Time, fallbackSellThrough float64) Forecast {
	avg, n := SellThrough(sample, fallbackSellThrough)
	predicted := int(math.Round(float64(e.Capacity) * avg))
	days := DaysUntil(e.StartsAt, now)

	velocity := 0
	if days > 0 {
		velocity = int(math.Round(float64(predicted-e.TicketsSold) / float64(days)))
	}

	return Forecast{
		PredictedTotal:      predicted,
		AverageSellThrough:  avg,
		SampleSize:          n,
		DaysUntilEvent:      days,
		SalesVelocityNeeded: velocity,
		RiskLevel:           riskLevel(e.TicketsSold, predicted, days),
	}
}

func riskLevel(sold, predicted, days int) RiskLevel {
	if float64(sold) < HighRiskSoldRatio*float64(predicted) && days < HighRiskDays {
		return RiskHigh
	}
	return RiskNormal
}

// Forecaster runs the per-event historical lookups with bounded concurrency.
type Forecaster struct {
	catalog     Catalog
	sampleSize  int
	concurrency int
	fallback    float64
}

// NewForecaster creates a forecaster reading history from catalog.
func NewForecaster(catalog Catalog, cfg *Config) *Forecaster {
	return &Forecaster{
		catalog:     catalog,
		sampleSize:  cfg.Forecast.SampleSize,
		concurrency: cfg.Forecast.Concurrency,
		fallback:    cfg.Fallbacks.SellThrough,
	}
}

// Forecast returns one result per target, in target order. Lookups run at
// most concurrency at a time; the first failure cancels the rest and is
// returned instead of a partial list.
func (f *Forecaster) Forecast(ctx context.Context, targets []Event, now time.Time) ([]RankedResult, error) {
	if len(targets) == 0 {
		return []RankedResult{}, nil
	}

	samples := make([][]Event, len(targets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for i := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			done := metrics.TrackForecastLookup()
			defer done()

			sample, err := f.catalog.ListHistoricalByGenres(gctx, targets[i].Genres, now, f.sampleSize)
			if err != nil {
				return err
			}
			if len(sample) > f.sampleSize {
				sample = sample[:f.sampleSize]
			}
			samples[i] = sample
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make([]RankedResult, len(targets))
	for i := range targets {
		fc := ForecastEvent(&targets[i], samples[i], now, f.fallback)
		results[i] = RankedResult{
			Event:    targets[i],
			Score:    float64(fc.PredictedTotal),
			Reasons:  []string{},
			Forecast: &fc,
		}
	}
	return results, nil
}
