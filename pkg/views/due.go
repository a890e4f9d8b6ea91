package views

import (
	"sort"
	"time"

	"github.com/matt-steen/taskboard/pkg/models"
)

// Bucket classifies a due date for display.
type Bucket int

const (
	Normal Bucket = iota
	DueSoon
	Overdue
)

func (b Bucket) String() string {
	switch b {
	case DueSoon:
		return "due soon"
	case Overdue:
		return "overdue"
	}

	return "normal"
}

// DueBucket classifies the task's due date relative to now. A date before the start of today is
// overdue unless the task is completed; a date within soonDays calendar days from the start of
// today is due soon. Tasks without a due date are normal. soonDays <= 0 means
// DefaultDueSoonDays.
func DueBucket(t models.Task, now time.Time, soonDays int) Bucket {
	if t.DueDate == nil {
		return Normal
	}

	if soonDays <= 0 {
		soonDays = DefaultDueSoonDays
	}

	today := StartOfDay(now)
	due := *t.DueDate

	if due.Before(today) {
		if t.IsCompleted {
			return Normal
		}

		return Overdue
	}

	if due.Before(today.AddDate(0, 0, soonDays)) {
		return DueSoon
	}

	return Normal
}

// DueSummary counts tasks for the dashboard.
type DueSummary struct {
	DueToday int
	Overdue  int
}

// SummarizeDue counts the tasks due today and the open tasks already past due.
func SummarizeDue(tasks []models.Task, now time.Time) DueSummary {
	today := StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	s := DueSummary{}

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}

		due := *t.DueDate

		if !due.Before(today) && due.Before(tomorrow) {
			s.DueToday++
		}

		if due.Before(today) && !t.IsCompleted {
			s.Overdue++
		}
	}

	return s
}

// FallbackEventColor colors calendar events whose project is unknown.
const FallbackEventColor = "#64748b"

// CalendarEvent is a task placed on the calendar at its due date.
type CalendarEvent struct {
	TaskID    string
	Title     string
	Date      time.Time
	ProjectID string
	Color     string
	Bucket    Bucket
}

// CalendarEvents returns one all-day event per task with a due date, earliest first.
func CalendarEvents(tasks []models.Task, projects []models.Project, now time.Time) []CalendarEvent {
	colors := make(map[string]string, len(projects))
	for _, p := range projects {
		colors[p.ID] = p.Color
	}

	events := []CalendarEvent{}

	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}

		color, ok := colors[t.ProjectID]
		if !ok || color == "" {
			color = FallbackEventColor
		}

		events = append(events, CalendarEvent{
			TaskID:    t.ID,
			Title:     t.Title,
			Date:      *t.DueDate,
			ProjectID: t.ProjectID,
			Color:     color,
			Bucket:    DueBucket(t, now, DefaultDueSoonDays),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	return events
}
