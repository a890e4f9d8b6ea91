package controller

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matt-steen/taskboard/pkg/engine"
	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/views"
)

const (
	titleRatio = 3
	dueLayout  = "Jan 2"
)

func priorityColor(p models.Priority) tcell.Color {
	switch p {
	case models.PriorityHigh:
		return tcell.ColorRed
	case models.PriorityMedium:
		return tcell.ColorOrange
	case models.PriorityLow:
		return tcell.ColorGreen
	}

	return tcell.ColorGray
}

func bucketColor(b views.Bucket) tcell.Color {
	switch b {
	case views.Overdue:
		return tcell.ColorRed
	case views.DueSoon:
		return tcell.ColorYellow
	}

	return tcell.ColorWhite
}

// PhaseContent implements tview.TableContent for one board column. Row 0 is the phase header;
// row i is the task at index i-1 of the column.
type PhaseContent struct {
	tview.TableContentReadOnly
	column   views.Column
	buckets  map[string]views.Bucket
	progress map[string]views.Progress
}

// NewPhaseContent snapshots the column along with the due bucket and sub-task progress of each
// of its tasks.
func NewPhaseContent(e *engine.Engine, column views.Column) *PhaseContent {
	p := &PhaseContent{
		column:   column,
		buckets:  make(map[string]views.Bucket, len(column.Tasks)),
		progress: make(map[string]views.Progress, len(column.Tasks)),
	}

	for _, t := range column.Tasks {
		p.buckets[t.ID] = e.DueBucket(t)
		p.progress[t.ID] = e.Progress(t.ID)
	}

	return p
}

// Phase returns the phase shown by the column.
func (p *PhaseContent) Phase() models.Phase {
	return p.column.Phase
}

// TaskAt returns the task shown in the given row.
func (p *PhaseContent) TaskAt(row int) (models.Task, bool) {
	if idx := row - 1; idx >= 0 && idx < len(p.column.Tasks) {
		return p.column.Tasks[idx], true
	}

	return models.Task{}, false
}

// RowOf returns the row of the task, or 0 when the column doesn't hold it.
func (p *PhaseContent) RowOf(taskID string) int {
	for i, t := range p.column.Tasks {
		if t.ID == taskID {
			return i + 1
		}
	}

	return 0
}

// GetCell returns the cell at the given position or nil if no cell.
func (p *PhaseContent) GetCell(row, col int) *tview.TableCell {
	if row == 0 {
		if col != 0 {
			return tview.NewTableCell("").SetSelectable(false)
		}

		header := fmt.Sprintf("%s (%d)", p.column.Phase.Name, len(p.column.Tasks))

		return tview.NewTableCell(tview.Escape(header)).SetExpansion(titleRatio).
			SetTextColor(tcell.GetColor(p.column.Phase.Color)).SetSelectable(false)
	}

	t, ok := p.TaskAt(row)
	if !ok {
		return nil
	}

	switch col {
	case 0:
		mark := "• "
		if t.IsCompleted {
			mark = "✔ "
		}

		title := mark + t.Title
		if prog := p.progress[t.ID]; prog.Total > 0 {
			title += fmt.Sprintf(" %d/%d", prog.Done, prog.Total)
		}

		cell := tview.NewTableCell(tview.Escape(title)).SetExpansion(titleRatio).SetReference(t.ID)
		if t.IsCompleted {
			cell.SetTextColor(tcell.ColorGray)
		}

		return cell
	case 1:
		return tview.NewTableCell(string(t.Priority)).SetExpansion(1).SetTextColor(priorityColor(t.Priority))
	case 2:
		if t.DueDate == nil {
			return tview.NewTableCell("").SetExpansion(1)
		}

		return tview.NewTableCell(t.DueDate.Format(dueLayout)).SetExpansion(1).
			SetTextColor(bucketColor(p.buckets[t.ID]))
	}

	return nil
}

// GetRowCount returns the number of rows in the table.
func (p *PhaseContent) GetRowCount() int {
	return len(p.column.Tasks) + 1
}

// GetColumnCount returns the number of columns in the table.
func (p *PhaseContent) GetColumnCount() int {
	return 3
}
