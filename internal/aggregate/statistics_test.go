package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatches(t *testing.T) {
	assert.Empty(t, Batches(nil, 50))
	assert.Equal(t, [][]string{{"a", "b"}, {"c"}}, Batches([]string{"a", "b", "c"}, 2))
	assert.Len(t, Batches(ids("v", 101), 50), 3)
	assert.Len(t, Batches(ids("v", 100), 50), 2)
	assert.Nil(t, Batches([]string{"a"}, 0))
}

func TestAggregate_SumsAllBatchesInOrder(t *testing.T) {
	all := ids("v", 120)
	views := make(map[string]int64, len(all))
	for _, id := range all {
		views[id] = 10
	}
	api := &fakeAPI{views: views}

	tally, err := NewCounter(api, testConfig(), discardLogger()).Aggregate(context.Background(), all, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1200), tally.Total)
	assert.Equal(t, 120, tally.Processed)
	assert.Zero(t, tally.SkippedBatches)

	require.Len(t, api.statsBatches, 3)
	assert.Equal(t, all[:50], api.statsBatches[0])
	assert.Equal(t, all[50:100], api.statsBatches[1])
	assert.Equal(t, all[100:], api.statsBatches[2])
}

func TestAggregate_SkipsFailedBatch(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 2
	api := &fakeAPI{
		views:    map[string]int64{"a": 1, "b": 2, "c": 30, "d": 40, "e": 500, "f": 600},
		statsErr: map[int]error{1: errors.New("boom")},
	}

	var skipped []Update
	tally, err := NewCounter(api, cfg, discardLogger()).Aggregate(context.Background(),
		[]string{"a", "b", "c", "d", "e", "f"},
		func(u Update) {
			if u.Kind == EventBatchSkipped {
				skipped = append(skipped, u)
			}
		})
	require.NoError(t, err)
	assert.Equal(t, int64(1+2+500+600), tally.Total)
	assert.Equal(t, 4, tally.Processed)
	assert.Equal(t, 1, tally.SkippedBatches)
	assert.Equal(t, 3, api.statsCalls)
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].Batch)
}

func TestAggregate_MissingItemsCountZero(t *testing.T) {
	api := &fakeAPI{views: map[string]int64{"a": 7}}

	tally, err := NewCounter(api, testConfig(), discardLogger()).Aggregate(context.Background(), []string{"a", "gone"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), tally.Total)
	assert.Equal(t, 1, tally.Processed)
}

func TestAggregate_ReportsProcessedOverTotal(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 1
	api := &fakeAPI{views: map[string]int64{"a": 1, "b": 1}}

	var last Update
	_, err := NewCounter(api, cfg, discardLogger()).Aggregate(context.Background(), []string{"a", "b"}, func(u Update) { last = u })
	require.NoError(t, err)
	assert.Equal(t, "counting views... 2/2 videos done", last.Message())
}

func TestAggregate_PacesBatches(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 1
	cfg.BatchDelay = 20 * time.Millisecond
	api := &fakeAPI{views: map[string]int64{}}

	start := time.Now()
	_, err := NewCounter(api, cfg, discardLogger()).Aggregate(context.Background(), []string{"a", "b", "c"}, nil)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestAggregate_PausesAfterSlowBatch(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 1
	cfg.BatchDelay = 30 * time.Millisecond
	api := &fakeAPI{views: map[string]int64{"a": 1, "b": 2}, latency: 50 * time.Millisecond}

	tally, err := NewCounter(api, cfg, discardLogger()).Aggregate(context.Background(), []string{"a", "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), tally.Total)

	require.Len(t, api.calls, 2)
	assert.GreaterOrEqual(t, api.calls[1].start.Sub(api.calls[0].end), cfg.BatchDelay)
}
