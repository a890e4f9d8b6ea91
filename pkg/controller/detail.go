package controller

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rivo/tview"

	"github.com/matt-steen/taskboard/pkg/engine"
	"github.com/matt-steen/taskboard/pkg/models"
)

const detailActivity = 5

// TaskDetail renders the side panel for a task.
func TaskDetail(e *engine.Engine, t models.Task) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[yellow]%s[white]\n", tview.Escape(t.Title))

	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n", tview.Escape(t.Description))
	}

	b.WriteString("\n")

	assignee := "unassigned"
	if t.AssigneeID != nil {
		assignee = e.DisplayName(*t.AssigneeID)
	}

	fmt.Fprintf(&b, "[orange]Assignee:[white] %s\n", tview.Escape(assignee))
	fmt.Fprintf(&b, "[orange]Status:[white]   %s\n", t.Status)

	if t.Priority != models.PriorityNone {
		fmt.Fprintf(&b, "[orange]Priority:[white] %s\n", t.Priority)
	}

	if t.DueDate != nil {
		fmt.Fprintf(&b, "[orange]Due:[white]      %s (%s, %s)\n",
			t.DueDate.Format("Mon Jan 2"), humanize.RelTime(*t.DueDate, e.Now(), "ago", "from now"), e.DueBucket(t))
	}

	if len(t.TagIDs) > 0 {
		names := []string{}

		for _, id := range t.TagIDs {
			if tag, ok := e.Tag(id); ok {
				names = append(names, tag.Name)
			}
		}

		fmt.Fprintf(&b, "[orange]Tags:[white]     %s\n", tview.Escape(strings.Join(names, ", ")))
	}

	if prog := e.Progress(t.ID); prog.Total > 0 {
		fmt.Fprintf(&b, "[orange]Sub-tasks:[white] %d/%d (%.0f%%)\n", prog.Done, prog.Total, prog.Percent)

		for _, sub := range e.SubTasks(t.ID) {
			mark := "•"
			if sub.IsCompleted {
				mark = "✔"
			}

			fmt.Fprintf(&b, "  %s %s\n", mark, tview.Escape(sub.Title))
		}
	}

	if len(t.Attachments) > 0 {
		b.WriteString("\n[yellow]Attachments[white]\n")

		for _, a := range t.Attachments {
			fmt.Fprintf(&b, "  %s (%s)\n", tview.Escape(a.FileName), humanize.Bytes(uint64(a.Size)))
		}
	}

	if len(t.Comments) > 0 {
		b.WriteString("\n[yellow]Comments[white]\n")

		for _, c := range t.Comments {
			fmt.Fprintf(&b, "  [green]%s[white] %s: %s\n",
				tview.Escape(e.DisplayName(c.AuthorID)), humanize.RelTime(c.CreatedAt, e.Now(), "ago", "from now"),
				tview.Escape(c.Content))
		}
	}

	b.WriteString("\n[yellow]Activity[white]\n")

	entries := t.ActivityLog
	if len(entries) > detailActivity {
		entries = entries[len(entries)-detailActivity:]
	}

	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "  [green]%s[white] %s\n", tview.Escape(e.DisplayName(entries[i].AuthorID)), entries[i].Action)
	}

	return b.String()
}

// Dashboard renders the side panel shown when no task is selected.
func Dashboard(e *engine.Engine) string {
	var b strings.Builder

	summary := e.DueSummary()

	b.WriteString("[yellow]Summary[white]\n")
	fmt.Fprintf(&b, "  Due today: %d\n", summary.DueToday)
	fmt.Fprintf(&b, "  [red]Overdue:[white]   %d\n", summary.Overdue)

	b.WriteString("\n[yellow]Recent activity[white]\n")

	items := e.RecentActivity()
	if len(items) == 0 {
		b.WriteString("  No recent activity.\n")
	}

	for _, item := range items {
		fmt.Fprintf(&b, "  [green]%s[white] %s [gray]%s[white]\n",
			tview.Escape(e.DisplayName(item.Entry.AuthorID)), item.Entry.Action, tview.Escape(item.TaskTitle))
	}

	return b.String()
}
