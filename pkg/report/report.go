// Package report renders engine views as styled text for the command line.
package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/matt-steen/taskboard/pkg/engine"
	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/views"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	overdueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dueSoonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))
)

func bucketStyle(b views.Bucket) lipgloss.Style {
	switch b {
	case views.Overdue:
		return overdueStyle
	case views.DueSoon:
		return dueSoonStyle
	}

	return lipgloss.NewStyle()
}

func priorityStyle(p models.Priority) lipgloss.Style {
	switch p {
	case models.PriorityHigh:
		return overdueStyle
	case models.PriorityMedium:
		return dueSoonStyle
	case models.PriorityLow:
		return doneStyle
	}

	return dimStyle
}

// Summary renders the dashboard: due counts followed by the recent activity feed.
func Summary(e *engine.Engine) string {
	var b strings.Builder

	s := e.DueSummary()

	b.WriteString(titleStyle.Render("Tasks") + "\n")
	fmt.Fprintf(&b, "  Due today: %d\n", s.DueToday)
	fmt.Fprintf(&b, "  %s %d\n", overdueStyle.Render("Overdue:"), s.Overdue)

	b.WriteString("\n" + titleStyle.Render("Recent activity") + "\n")

	items := e.RecentActivity()
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("  No recent activity.") + "\n")
	}

	for _, item := range items {
		fmt.Fprintf(&b, "  %s %s %s %s\n",
			e.DisplayName(item.Entry.AuthorID),
			item.Entry.Action,
			dimStyle.Render(item.TaskTitle),
			dimStyle.Render(humanize.RelTime(item.Entry.Timestamp, e.Now(), "ago", "from now")))
	}

	return b.String()
}

// Tree renders the project hierarchy, one project per line with its id.
func Tree(e *engine.Engine) string {
	var b strings.Builder

	for _, node := range views.Flatten(e.ProjectTree()) {
		fmt.Fprintf(&b, "%s%s %s\n",
			strings.Repeat("  ", node.Depth),
			lipgloss.NewStyle().Foreground(lipgloss.Color(node.Project.Color)).Render(node.Project.Name),
			dimStyle.Render(node.Project.ID))
	}

	return b.String()
}

// Tasks renders a task list with phase, priority, assignee and due date.
func Tasks(e *engine.Engine, project models.Project, tasks []models.Task) string {
	var b strings.Builder

	phases := map[string]string{}
	for _, ph := range project.Phases {
		phases[ph.ID] = ph.Name
	}

	b.WriteString(titleStyle.Render(project.Name) + "\n")

	if len(tasks) == 0 {
		b.WriteString(dimStyle.Render("  No matching tasks.") + "\n")
	}

	for _, t := range tasks {
		mark := "[ ]"
		title := t.Title

		if t.IsCompleted {
			mark = doneStyle.Render("[x]")
			title = dimStyle.Render(title)
		}

		if t.IsSubTask() {
			mark = "  " + mark
		}

		line := fmt.Sprintf("  %s %s %s", mark, title, dimStyle.Render("("+phases[t.PhaseID]+")"))

		if t.Priority != models.PriorityNone {
			line += " " + priorityStyle(t.Priority).Render(string(t.Priority))
		}

		if t.AssigneeID != nil {
			line += " @" + e.DisplayName(*t.AssigneeID)
		}

		if t.DueDate != nil {
			line += " " + bucketStyle(e.DueBucket(t)).Render("due "+t.DueDate.Format("Jan 2"))
		}

		if prog := e.Progress(t.ID); prog.Total > 0 {
			line += fmt.Sprintf(" %d/%d", prog.Done, prog.Total)
		}

		b.WriteString(line + "\n")
	}

	return b.String()
}

// FindProject looks a project up by id, or by case-insensitive name.
func FindProject(e *engine.Engine, key string) (models.Project, bool) {
	if p, ok := e.Project(key); ok {
		return p, true
	}

	for _, p := range e.Projects() {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}

	return models.Project{}, false
}
