// ABOUTME: Aggregation engine computing summary statistics over a filtered task set
// ABOUTME: Breakdowns group by raw stored field values with no normalization

package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/typicallhavok/task-manager/internal/store"
)

// Filters narrows the task set fed into Summarize. Empty string fields
// impose no constraint. Status, Assignee, and Priority match the raw
// stored value exactly (no case folding). The date range is inclusive
// on CreatedAt and applies only when both ends are set.
type Filters struct {
	Status    string
	Assignee  string
	Priority  string
	StartDate *time.Time
	EndDate   *time.Time
}

// Summary holds the task count and per-field occurrence breakdowns.
// Breakdown keys are exactly the raw stored values, so case variants
// land in distinct buckets; callers depend on raw-value grouping.
type Summary struct {
	TotalTasks        int            `json:"totalTasks"`
	StatusBreakdown   map[string]int `json:"statusBreakdown"`
	PriorityBreakdown map[string]int `json:"priorityBreakdown"`
	TypeBreakdown     map[string]int `json:"typeBreakdown"`
	AssigneeBreakdown map[string]int `json:"assigneeBreakdown"`
}

// Summarize computes summary statistics over the filtered task set
func (r *Registry) Summarize(ctx context.Context, f Filters) (*Summary, error) {
	filter := store.TaskFilter{
		Status:   f.Status,
		Assignee: f.Assignee,
		Priority: f.Priority,
	}
	if f.StartDate != nil && f.EndDate != nil {
		filter.CreatedFrom = f.StartDate
		filter.CreatedTo = f.EndDate
	}

	tasks, err := r.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	summary := &Summary{
		TotalTasks:        len(tasks),
		StatusBreakdown:   make(map[string]int),
		PriorityBreakdown: make(map[string]int),
		TypeBreakdown:     make(map[string]int),
		AssigneeBreakdown: make(map[string]int),
	}

	for _, t := range tasks {
		summary.StatusBreakdown[t.Status]++
		summary.PriorityBreakdown[t.Priority]++
		summary.TypeBreakdown[t.Type]++
		summary.AssigneeBreakdown[t.Assignee]++
	}

	return summary, nil
}
