package controller

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"

	"github.com/matt-steen/taskboard/pkg/models"
)

func (c *Controller) getBoardGrid() *tview.Grid {
	c.header = c.getBoardHeader()
	c.columns = tview.NewFlex().SetDirection(tview.FlexColumn)
	c.detail = tview.NewTextView().SetDynamicColors(true).SetWordWrap(true)
	c.status = tview.NewTextView().SetDynamicColors(true)

	// one title row plus the tallest shortcut column.
	grid := tview.NewGrid().SetBorders(true).SetRows(len(c.events)/2+2, 0, 1).SetColumns(0, detailWidth)

	grid.AddItem(c.header, 0, 0, 1, 2, 0, 0, false)
	grid.AddItem(c.columns, 1, 0, 1, 1, 0, 0, true)
	grid.AddItem(c.detail, 1, 1, 1, 1, 0, 0, false)
	grid.AddItem(c.status, 2, 0, 1, 2, 0, 0, false)

	return grid
}

// getBoardHeader returns the project title followed by 3 columns of keyboard shortcuts:
// misc shortcuts, task actions and "Move" shortcuts, each sorted alphabetically.
func (c *Controller) getBoardHeader() *tview.Table {
	table := tview.NewTable().SetBorders(false).SetSelectable(false, false)

	shortcuts := map[int][]string{
		0: {},
		1: {},
		2: {},
	}

	for key, event := range c.events {
		text := fmt.Sprintf("[orange]<%s>[white] %s", tcell.KeyNames[key], event.Description)

		switch {
		case strings.HasPrefix(event.Description, "Move"):
			shortcuts[2] = append(shortcuts[2], text)
		case strings.HasSuffix(event.Description, "Task"):
			shortcuts[1] = append(shortcuts[1], text)
		default:
			shortcuts[0] = append(shortcuts[0], text)
		}
	}

	for col := 0; col < 3; col++ {
		sort.Strings(shortcuts[col])

		for i, text := range shortcuts[col] {
			table.SetCell(i+1, col, tview.NewTableCell(text).SetExpansion(1))
		}
	}

	return table
}

func (c *Controller) currentProjectID() string {
	if len(c.projectIDs) == 0 {
		return ""
	}

	return c.projectIDs[c.selectedProject%len(c.projectIDs)]
}

func (c *Controller) setHeaderTitle() {
	p, ok := c.engine.Project(c.currentProjectID())
	if !ok {
		c.header.SetCell(0, 0, tview.NewTableCell("[red]Project not found"))

		return
	}

	path := []string{}

	for _, id := range c.engine.Ancestors(p.ID) {
		if a, ok := c.engine.Project(id); ok {
			path = append([]string{a.Name}, path...)
		}
	}

	title := fmt.Sprintf("[yellow]%s", tview.Escape(p.Name))
	if len(path) > 0 {
		title = fmt.Sprintf("[gray]%s / %s", tview.Escape(strings.Join(path, " / ")), title)
	}

	c.header.SetCell(0, 0, tview.NewTableCell(title))
}

// refresh rebuilds the columns of the current project and restores the selection.
func (c *Controller) refresh() {
	c.setHeaderTitle()
	c.columns.Clear()
	c.tables = nil
	c.contents = nil

	board, ok := c.engine.Board(c.currentProjectID())
	if !ok || len(board) == 0 {
		c.detail.SetText(Dashboard(c.engine))

		return
	}

	if c.selectedPhase >= len(board) {
		c.selectedPhase = len(board) - 1
	}

	for i, column := range board {
		content := NewPhaseContent(c.engine, column)

		table := tview.NewTable().SetBorders(false).SetSelectable(true, false).SetFixed(1, 0)
		table.SetContent(content)
		table.SetBorder(true)

		phase := i
		table.SetSelectionChangedFunc(func(row, col int) {
			c.setCurrentRow(phase, row)
		})

		c.tables = append(c.tables, table)
		c.contents = append(c.contents, content)
		c.columns.AddItem(table, 0, 1, i == c.selectedPhase)

		if row := content.RowOf(c.selectedTask); row > 0 {
			c.selectedPhase = i
		}
	}

	c.focusPhase(c.selectedPhase)
}

// focusPhase selects the current task in the given column, or its first row.
func (c *Controller) focusPhase(phase int) {
	if phase < 0 || phase >= len(c.tables) {
		return
	}

	c.selectedPhase = phase
	content := c.contents[phase]

	row := content.RowOf(c.selectedTask)
	if row == 0 && content.GetRowCount() > 1 {
		row = 1
	}

	c.tables[phase].Select(row, 0)
	c.setCurrentRow(phase, row)
	c.app.SetFocus(c.tables[phase])
}

// when the row selection changes, update the selected task.
func (c *Controller) setCurrentRow(phase, row int) {
	if phase != c.selectedPhase || phase >= len(c.contents) {
		return
	}

	t, ok := c.contents[phase].TaskAt(row)
	if !ok {
		c.selectedTask = ""
		c.detail.SetText(Dashboard(c.engine))

		return
	}

	c.selectedTask = t.ID
	c.detail.SetText(TaskDetail(c.engine, t)).ScrollToBeginning()

	log.Debug().Str("phase", c.contents[phase].Phase().Name).Int("row", row).Msgf("selected task '%s'", t.Title)
}

func (c *Controller) selectedTaskRecord() (models.Task, bool) {
	if c.selectedTask == "" {
		return models.Task{}, false
	}

	return c.engine.Task(c.selectedTask)
}

func (c *Controller) showBoard() {
	c.app.SetInputCapture(c.handleKeys)
	c.refresh()
	c.pages.SwitchToPage(pageName(boardPage))
}
