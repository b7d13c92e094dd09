// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"

	"github.com/georgepearse/github-metrics/internal/domain"
	"github.com/georgepearse/github-metrics/internal/gateway"
	"github.com/georgepearse/github-metrics/internal/storage"
)

// Renderer produces chart files from a metrics series and returns the
// followers and stars chart paths.
type Renderer interface {
	Generate(records []domain.MetricsRecord) (followersPath, starsPath string, err error)
}

// Collector runs the fetch, persist, render pipeline for one account.
type Collector struct {
	username string
	fetcher  gateway.Fetcher
	store    *storage.Store
	renderer Renderer
	logger   *zap.Logger
}

// NewCollector creates a Collector instance.
func NewCollector(username string, fetcher gateway.Fetcher, store *storage.Store, renderer Renderer, logger *zap.Logger) *Collector {
	return &Collector{
		username: username,
		fetcher:  fetcher,
		store:    store,
		renderer: renderer,
		logger:   logger,
	}
}

// Result summarizes one collection run.
type Result struct {
	Success        bool          `json:"success"`
	Message        string        `json:"message"`
	Followers      int           `json:"followers"`
	TotalStars     int           `json:"total_stars"`
	FollowersGraph string        `json:"followers_graph"`
	StarsGraph     string        `json:"stars_graph"`
	FollowerTrend  *TrendSummary `json:"follower_trend,omitempty"`
	StarTrend      *TrendSummary `json:"star_trend,omitempty"`
}

// TrendSummary describes how one metric moved over the stored series.
type TrendSummary struct {
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
	Delta float64 `json:"delta"`
}

// CollectCurrentMetrics fetches one live snapshot, stamped with the
// current instant.
func (c *Collector) CollectCurrentMetrics(ctx context.Context) (domain.MetricsRecord, error) {
	user, err := c.fetcher.FetchUserInfo(ctx)
	if err != nil {
		return domain.MetricsRecord{}, err
	}
	totalStars, err := c.fetcher.FetchTotalStars(ctx, true)
	if err != nil {
		return domain.MetricsRecord{}, err
	}
	return domain.MetricsRecord{
		Date:       time.Now(),
		Followers:  user.Followers,
		TotalStars: totalStars,
	}, nil
}

// BackfillHistoricalData seeds an empty store with daysBack synthetic
// records, one per preceding day, all carrying the current follower and
// star values. GitHub exposes no historical metrics, so the values are a
// flat approximation, not real history. A store that already holds any
// record is left untouched.
func (c *Collector) BackfillHistoricalData(ctx context.Context, daysBack int) error {
	existing, err := c.store.Load()
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	current, err := c.CollectCurrentMetrics(ctx)
	if err != nil {
		return err
	}

	c.logger.Info("backfilling historical data", zap.Int("days", daysBack))
	for i := daysBack; i > 0; i-- {
		record := domain.MetricsRecord{
			Date:       time.Now().AddDate(0, 0, -i),
			Followers:  current.Followers,
			TotalStars: current.TotalStars,
		}
		if err := c.store.AddRecord(record); err != nil {
			return err
		}
	}
	return nil
}

// Run executes the full pipeline: optional backfill, collect, persist,
// render. Errors pass through unmasked; the run simply stops.
func (c *Collector) Run(ctx context.Context, backfill bool, daysBack int) (*Result, error) {
	c.logger.Info("collecting metrics", zap.String("user", c.username))

	if backfill {
		if err := c.BackfillHistoricalData(ctx, daysBack); err != nil {
			return nil, err
		}
	}

	current, err := c.CollectCurrentMetrics(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.store.AddRecord(current); err != nil {
		return nil, err
	}

	records, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	followersPath, starsPath, err := c.renderer.Generate(records)
	if err != nil {
		return nil, err
	}

	latest, err := c.store.LatestRecord()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Success:        true,
		Message:        fmt.Sprintf("Collected metrics for %s", c.username),
		FollowersGraph: followersPath,
		StarsGraph:     starsPath,
	}
	if latest != nil {
		result.Followers = latest.Followers
		result.TotalStars = latest.TotalStars
	}
	result.FollowerTrend, result.StarTrend = Trends(records)
	return result, nil
}

// Trends computes per-metric summaries over the series. Both are nil for
// an empty series.
func Trends(records []domain.MetricsRecord) (followers, totalStars *TrendSummary) {
	if len(records) == 0 {
		return nil, nil
	}
	followerValues := make([]float64, len(records))
	starValues := make([]float64, len(records))
	for i, record := range records {
		followerValues[i] = float64(record.Followers)
		starValues[i] = float64(record.TotalStars)
	}
	return summarize(followerValues), summarize(starValues)
}

func summarize(values []float64) *TrendSummary {
	min, err := stats.Min(values)
	if err != nil {
		return nil
	}
	max, _ := stats.Max(values)
	mean, _ := stats.Mean(values)
	return &TrendSummary{
		Min:   min,
		Max:   max,
		Mean:  mean,
		Delta: values[len(values)-1] - values[0],
	}
}
