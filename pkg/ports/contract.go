package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aretw0/rewatch/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore
// implementation adheres to the interface contract. The store must be empty.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("Empty", func(t *testing.T) {
		records, err := store.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	for i := 0; i < 3; i++ {
		record := domain.RunRecord{
			ID:         fmt.Sprintf("run-%d", i),
			Trigger:    "main.go",
			StartedAt:  base.Add(time.Duration(i) * time.Second),
			FinishedAt: base.Add(time.Duration(i)*time.Second + time.Millisecond),
			Commands: []domain.CommandOutcome{
				{Command: "go build", Outcome: domain.OutcomeFailure, ExitCode: 2, Duration: time.Millisecond},
			},
			Stopped: true,
		}
		require.NoError(t, store.Append(ctx, record), "Append should not return error")
	}

	t.Run("Recent Returns Newest First", func(t *testing.T) {
		records, err := store.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "run-2", records[0].ID)
		assert.Equal(t, "run-1", records[1].ID)
	})

	t.Run("Recent Preserves Fields", func(t *testing.T) {
		records, err := store.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, records, 1)

		got := records[0]
		assert.Equal(t, "main.go", got.Trigger)
		assert.True(t, got.StartedAt.Equal(base.Add(2*time.Second)))
		assert.True(t, got.Stopped)
		require.Len(t, got.Commands, 1)
		assert.Equal(t, domain.OutcomeFailure, got.Commands[0].Outcome)
		assert.Equal(t, 2, got.Commands[0].ExitCode)
	})

	t.Run("Recent Beyond Size", func(t *testing.T) {
		records, err := store.Recent(ctx, 100)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("Non Positive Limit", func(t *testing.T) {
		records, err := store.Recent(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}
