package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/georgepearse/github-metrics/internal/domain"
	"github.com/georgepearse/github-metrics/internal/storage"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It lets us simulate the GitHub gateway without real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchUserInfo(ctx context.Context) (domain.GitHubUser, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.GitHubUser), args.Error(1)
}

func (m *mockFetcher) FetchAllRepos(ctx context.Context, onlyPublic bool) ([]domain.GitHubRepo, error) {
	args := m.Called(ctx, onlyPublic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.GitHubRepo), args.Error(1)
}

func (m *mockFetcher) FetchTotalStars(ctx context.Context, onlyPublic bool) (int, error) {
	args := m.Called(ctx, onlyPublic)
	return args.Int(0), args.Error(1)
}

// fakeRenderer records what it was asked to render instead of producing files.
type fakeRenderer struct {
	rendered [][]domain.MetricsRecord
}

func (f *fakeRenderer) Generate(records []domain.MetricsRecord) (string, string, error) {
	f.rendered = append(f.rendered, records)
	return "assets/followers_graph.svg", "assets/stars_graph.svg", nil
}

func newTestCollector(t *testing.T, fetcher *mockFetcher) (*Collector, *storage.Store, *fakeRenderer) {
	t.Helper()
	store := storage.NewStore(filepath.Join(t.TempDir(), "metrics.csv"), zap.NewNop())
	renderer := &fakeRenderer{}
	collector := NewCollector("any-user", fetcher, store, renderer, zap.NewNop())
	return collector, store, renderer
}

func expectSnapshot(fetcher *mockFetcher, followers, totalStars int) {
	fetcher.On("FetchUserInfo", mock.Anything).
		Return(domain.GitHubUser{Username: "any-user", Followers: followers}, nil).Once()
	fetcher.On("FetchTotalStars", mock.Anything, true).
		Return(totalStars, nil).Once()
}

func TestCollector_BackfillNoOpWhenStoreHasRecords(t *testing.T) {
	fetcher := new(mockFetcher)
	collector, store, _ := newTestCollector(t, fetcher)

	existing := domain.MetricsRecord{
		Date:       time.Now().AddDate(0, 0, -1),
		Followers:  10,
		TotalStars: 100,
	}
	require.NoError(t, store.AddRecord(existing))

	require.NoError(t, collector.BackfillHistoricalData(context.Background(), 7))

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 10, records[0].Followers)
	assert.Equal(t, 100, records[0].TotalStars)
	// The fetcher must not have been touched at all.
	fetcher.AssertNotCalled(t, "FetchUserInfo", mock.Anything)
}

func TestCollector_RunEndToEnd(t *testing.T) {
	fetcher := new(mockFetcher)
	collector, store, renderer := newTestCollector(t, fetcher)

	// First run: backfill snapshot plus collect snapshot.
	expectSnapshot(fetcher, 42, 1000)
	expectSnapshot(fetcher, 42, 1000)

	result, err := collector.Run(context.Background(), true, 7)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Collected metrics for any-user", result.Message)
	assert.Equal(t, 42, result.Followers)
	assert.Equal(t, 1000, result.TotalStars)
	assert.Equal(t, "assets/followers_graph.svg", result.FollowersGraph)
	assert.Equal(t, "assets/stars_graph.svg", result.StarsGraph)

	records, err := store.Load()
	require.NoError(t, err)
	require.Len(t, records, 8, "7 backfilled records plus today's")
	for _, record := range records {
		assert.Equal(t, 42, record.Followers)
		assert.Equal(t, 1000, record.TotalStars)
	}
	wantFirst := time.Now().AddDate(0, 0, -7).Format(domain.DateLayout)
	wantLast := time.Now().Format(domain.DateLayout)
	assert.Equal(t, wantFirst, records[0].Date.Format(domain.DateLayout))
	assert.Equal(t, wantLast, records[7].Date.Format(domain.DateLayout))

	// Second run the same day: backfill is a no-op, today's row is
	// replaced with the new values, count stays 8.
	expectSnapshot(fetcher, 45, 1020)

	result, err = collector.Run(context.Background(), true, 7)
	require.NoError(t, err)
	assert.Equal(t, 45, result.Followers)
	assert.Equal(t, 1020, result.TotalStars)

	records, err = store.Load()
	require.NoError(t, err)
	require.Len(t, records, 8)
	assert.Equal(t, 45, records[7].Followers)
	assert.Equal(t, 1020, records[7].TotalStars)
	assert.Equal(t, 42, records[6].Followers, "only today's row should change")

	// The renderer saw the full reloaded series on both runs.
	require.Len(t, renderer.rendered, 2)
	assert.Len(t, renderer.rendered[0], 8)
	assert.Len(t, renderer.rendered[1], 8)

	fetcher.AssertExpectations(t)
}

func TestCollector_RunPropagatesFetchError(t *testing.T) {
	fetcher := new(mockFetcher)
	collector, store, _ := newTestCollector(t, fetcher)

	fetcher.On("FetchUserInfo", mock.Anything).
		Return(domain.GitHubUser{}, errors.New("github api error"))

	result, err := collector.Run(context.Background(), false, 0)
	assert.Error(t, err)
	assert.Nil(t, result)

	records, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Empty(t, records, "a failed fetch must not persist anything")
}

func TestTrends(t *testing.T) {
	t.Run("empty series yields nil summaries", func(t *testing.T) {
		followerTrend, starTrend := Trends(nil)
		assert.Nil(t, followerTrend)
		assert.Nil(t, starTrend)
	})

	t.Run("summaries cover the whole series", func(t *testing.T) {
		records := []domain.MetricsRecord{
			{Followers: 10, TotalStars: 100},
			{Followers: 12, TotalStars: 110},
			{Followers: 15, TotalStars: 130},
		}
		followerTrend, starTrend := Trends(records)
		require.NotNil(t, followerTrend)
		require.NotNil(t, starTrend)

		assert.Equal(t, 10.0, followerTrend.Min)
		assert.Equal(t, 15.0, followerTrend.Max)
		assert.InDelta(t, 12.333, followerTrend.Mean, 0.001)
		assert.Equal(t, 5.0, followerTrend.Delta)

		assert.Equal(t, 100.0, starTrend.Min)
		assert.Equal(t, 130.0, starTrend.Max)
		assert.Equal(t, 30.0, starTrend.Delta)
	})
}
