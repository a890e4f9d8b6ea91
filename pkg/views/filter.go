package views

import (
	"strings"
	"time"

	"github.com/matt-steen/taskboard/pkg/models"
	"golang.org/x/text/cases"
)

// Filter is a bundle of optional predicates. Zero-valued fields are ignored; the rest are ANDed.
type Filter struct {
	Search     string
	AssigneeID string
	Priority   models.Priority
	Status     models.Status
	// From and To bound the due date, inclusive of both days.
	From *time.Time
	To   *time.Time
}

// Empty reports whether the filter has no active predicate.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Search) == "" && f.AssigneeID == "" && f.Priority == models.PriorityNone &&
		f.Status == "" && f.From == nil && f.To == nil
}

// FilterTasks returns the tasks of projectID that satisfy every active predicate of f, in the
// order given. The search is a case-insensitive substring match over title and description.
// An active date range excludes tasks without a due date.
func FilterTasks(tasks []models.Task, projectID string, f Filter) []models.Task {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(f.Search))

	var from, to time.Time
	if f.From != nil {
		from = StartOfDay(*f.From)
	}

	if f.To != nil {
		to = StartOfDay(*f.To).AddDate(0, 0, 1)
	}

	out := []models.Task{}

	for _, t := range ProjectTasks(tasks, projectID) {
		if needle != "" && !strings.Contains(fold.String(t.Title+"\n"+t.Description), needle) {
			continue
		}

		if f.AssigneeID != "" && (t.AssigneeID == nil || *t.AssigneeID != f.AssigneeID) {
			continue
		}

		if f.Priority != models.PriorityNone && t.Priority != f.Priority {
			continue
		}

		if f.Status != "" && t.Status != f.Status {
			continue
		}

		if f.From != nil || f.To != nil {
			if t.DueDate == nil {
				continue
			}

			if f.From != nil && t.DueDate.Before(from) {
				continue
			}

			if f.To != nil && !t.DueDate.Before(to) {
				continue
			}
		}

		out = append(out, t.Clone())
	}

	return out
}
