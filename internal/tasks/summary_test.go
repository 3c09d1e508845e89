// ABOUTME: Tests for summary aggregation over filtered task sets
// ABOUTME: Verifies raw-value breakdown buckets and the both-ends date range rule

package tasks

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typicallhavok/task-manager/internal/store"
)

func seedTask(t *testing.T, st *store.MockStore, status, priority, taskType, assignee string, createdAt time.Time) {
	t.Helper()
	task := &store.Task{
		Title:     "t",
		Status:    status,
		Assignee:  assignee,
		Priority:  priority,
		Type:      taskType,
		CreatedAt: createdAt,
	}
	require.NoError(t, st.CreateTask(context.Background(), task))
}

func TestSummarizeEmptyFilters(t *testing.T) {
	st := store.NewMockStore()
	reg := NewRegistry(st)
	now := time.Now().UTC()

	seedTask(t, st, store.StatusPending, store.PriorityLow, store.TypeWork, "alice", now)
	seedTask(t, st, store.StatusCompleted, store.PriorityHigh, store.TypeWork, "alice", now)
	seedTask(t, st, store.StatusCompleted, store.PriorityHigh, store.TypePersonal, "bob", now)

	summary, err := reg.Summarize(context.Background(), Filters{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalTasks)
	assert.Equal(t, 2, summary.StatusBreakdown[store.StatusCompleted])
	assert.Equal(t, 1, summary.StatusBreakdown[store.StatusPending])
	assert.Equal(t, 2, summary.PriorityBreakdown[store.PriorityHigh])
	assert.Equal(t, 2, summary.TypeBreakdown[store.TypeWork])
	assert.Equal(t, 2, summary.AssigneeBreakdown["alice"])
	assert.Equal(t, 1, summary.AssigneeBreakdown["bob"])
}

func TestSummarizeBreakdownsSumToTotal(t *testing.T) {
	st := store.NewMockStore()
	reg := NewRegistry(st)
	now := time.Now().UTC()

	seedTask(t, st, store.StatusPending, store.PriorityLow, store.TypeWork, "alice", now)
	seedTask(t, st, store.StatusInProgress, store.PriorityMedium, store.TypeWork, "bob", now)
	seedTask(t, st, store.StatusCompleted, store.PriorityHigh, store.TypePersonal, "carol", now)

	summary, err := reg.Summarize(context.Background(), Filters{})
	require.NoError(t, err)

	var statusTotal int
	for _, n := range summary.StatusBreakdown {
		statusTotal += n
	}
	assert.Equal(t, summary.TotalTasks, statusTotal)
}

func TestSummarizeRawValueBuckets(t *testing.T) {
	st := store.NewMockStore()
	reg := NewRegistry(st)
	now := time.Now().UTC()

	// Case variants land in distinct buckets
	seedTask(t, st, "completed", store.PriorityLow, store.TypeWork, "alice", now)
	seedTask(t, st, "Completed", store.PriorityLow, store.TypeWork, "alice", now)

	summary, err := reg.Summarize(context.Background(), Filters{})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StatusBreakdown["completed"])
	assert.Equal(t, 1, summary.StatusBreakdown["Completed"])

	// And the status filter matches the raw stored value only
	summary, err = reg.Summarize(context.Background(), Filters{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTasks)
}

func TestSummarizeDateRangeRequiresBothEnds(t *testing.T) {
	st := store.NewMockStore()
	reg := NewRegistry(st)

	seedTask(t, st, store.StatusPending, store.PriorityLow, store.TypeWork, "alice",
		time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC))
	seedTask(t, st, store.StatusPending, store.PriorityLow, store.TypeWork, "alice",
		time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	summary, err := reg.Summarize(context.Background(), Filters{StartDate: &start, EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTasks)

	// A lone bound does not constrain the range
	summary, err = reg.Summarize(context.Background(), Filters{StartDate: &start})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTasks)

	summary, err = reg.Summarize(context.Background(), Filters{EndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTasks)
}

func TestSummarizeAssigneeFilter(t *testing.T) {
	st := store.NewMockStore()
	reg := NewRegistry(st)
	now := time.Now().UTC()

	seedTask(t, st, store.StatusPending, store.PriorityLow, store.TypeWork, "alice", now)
	seedTask(t, st, store.StatusPending, store.PriorityLow, store.TypeWork, "bob", now)

	summary, err := reg.Summarize(context.Background(), Filters{Assignee: "bob"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalTasks)
	assert.Equal(t, 1, summary.AssigneeBreakdown["bob"])
	assert.Zero(t, summary.AssigneeBreakdown["alice"])
}
