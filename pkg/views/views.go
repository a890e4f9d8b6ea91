// Package views derives read-only projections from snapshots of tasks and projects. Every
// function is pure: it never modifies its arguments and keeps no state between calls.
package views

import (
	"sort"
	"time"

	"github.com/matt-steen/taskboard/pkg/models"
)

// DefaultRecentActivity is the length of the dashboard activity feed.
const DefaultRecentActivity = 5

// DefaultDueSoonDays is the window, counted from the start of today, in which a due date is
// flagged as due soon.
const DefaultDueSoonDays = 3

// PhaseTasks returns the tasks of one phase of a project sorted by order. Sub-tasks are
// included.
func PhaseTasks(tasks []models.Task, projectID, phaseID string) []models.Task {
	out := []models.Task{}

	for _, t := range tasks {
		if t.ProjectID == projectID && t.PhaseID == phaseID {
			out = append(out, t.Clone())
		}
	}

	models.SortByOrder(out)

	return out
}

// ProjectTasks returns every task of a project in the order given.
func ProjectTasks(tasks []models.Task, projectID string) []models.Task {
	out := []models.Task{}

	for _, t := range tasks {
		if t.ProjectID == projectID {
			out = append(out, t.Clone())
		}
	}

	return out
}

// Column is one phase of a board with its top-level tasks.
type Column struct {
	Phase models.Phase
	Tasks []models.Task
}

// Board lays out a project's phases left to right, each with its top-level tasks by order.
func Board(project models.Project, tasks []models.Task) []Column {
	phases := project.SortedPhases()
	columns := make([]Column, 0, len(phases))

	for _, ph := range phases {
		col := Column{Phase: ph, Tasks: []models.Task{}}

		for _, t := range PhaseTasks(tasks, project.ID, ph.ID) {
			if !t.IsSubTask() {
				col.Tasks = append(col.Tasks, t)
			}
		}

		columns = append(columns, col)
	}

	return columns
}

// SubTasks returns the direct sub-tasks of taskID in the order given.
func SubTasks(tasks []models.Task, taskID string) []models.Task {
	out := []models.Task{}

	for _, t := range tasks {
		if t.ParentTaskID != nil && *t.ParentTaskID == taskID {
			out = append(out, t.Clone())
		}
	}

	return out
}

// Progress is the completion rollup of a task's sub-tasks.
type Progress struct {
	Done    int
	Total   int
	Percent float64
}

// SubTaskProgress counts completed direct sub-tasks. A task without sub-tasks is at 0%.
func SubTaskProgress(tasks []models.Task, taskID string) Progress {
	p := Progress{}

	for _, t := range tasks {
		if t.ParentTaskID == nil || *t.ParentTaskID != taskID {
			continue
		}

		p.Total++

		if t.IsCompleted {
			p.Done++
		}
	}

	if p.Total > 0 {
		p.Percent = float64(p.Done) / float64(p.Total) * 100
	}

	return p
}

// ActivityItem is an activity entry together with the task it belongs to.
type ActivityItem struct {
	Entry     models.ActivityLogEntry
	TaskID    string
	TaskTitle string
}

// RecentActivity flattens every task's activity log and returns the n newest entries, newest
// first. Entries with equal timestamps keep task order, then log order.
func RecentActivity(tasks []models.Task, n int) []ActivityItem {
	items := []ActivityItem{}

	for _, t := range tasks {
		for _, e := range t.ActivityLog {
			items = append(items, ActivityItem{Entry: e, TaskID: t.ID, TaskTitle: t.Title})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Entry.Timestamp.After(items[j].Entry.Timestamp)
	})

	if n >= 0 && len(items) > n {
		items = items[:n]
	}

	return items
}

// AssignedTo returns the tasks assigned to userID.
func AssignedTo(tasks []models.Task, userID string) []models.Task {
	out := []models.Task{}

	for _, t := range tasks {
		if t.AssigneeID != nil && *t.AssigneeID == userID {
			out = append(out, t.Clone())
		}
	}

	return out
}

// StartOfDay returns midnight of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()

	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
