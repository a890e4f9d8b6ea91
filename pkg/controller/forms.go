package controller

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"

	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/store"
)

const dateLayout = "2006-01-02"

var (
	priorityOptions = []models.Priority{
		models.PriorityNone, models.PriorityHigh, models.PriorityMedium, models.PriorityLow,
	}
	statusOptions = []models.Status{
		models.StatusTodo, models.StatusInProgress, models.StatusInReview, models.StatusDone,
	}
)

func (c *Controller) switchToForm(editing bool) {
	c.editing = editing

	title := "New Task"
	if editing {
		title = "Edit Task"
	}

	name := formPage

	c.setFormTitle(name, title)
	c.fillTaskForm()

	c.taskForm.SetFocus(0)

	c.pages.SwitchToPage(pageName(name))

	c.app.SetInputCapture(c.handleFormKeys)
}

func (c *Controller) switchToCommentForm() {
	name := notePage

	t, _ := c.selectedTaskRecord()
	c.setFormTitle(name, fmt.Sprintf("Comment on '%s'", tview.Escape(t.Title)))

	c.commentField.SetText("")
	c.commentForm.SetFocus(0)

	c.pages.SwitchToPage(pageName(name))

	c.app.SetInputCapture(c.handleFormKeys)
}

func (c *Controller) getFormGrid() *tview.Grid {
	grid := tview.NewGrid().SetBorders(true)

	name := formPage

	c.initFormHeader(name)
	c.initForm()

	grid.AddItem(c.formHeaderTables[name], 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.taskForm, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) getCommentFormGrid() *tview.Grid {
	grid := tview.NewGrid().SetBorders(true)

	name := notePage

	c.initFormHeader(name)
	c.initCommentForm()

	grid.AddItem(c.formHeaderTables[name], 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.commentForm, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) setFormTitle(tableName, title string) {
	c.formHeaderTables[tableName].SetCell(0, 0, tview.NewTableCell(fmt.Sprintf("[yellow]%s", title)))
}

func (c *Controller) initFormHeader(name string) {
	c.formHeaderTables[name] = tview.NewTable().SetBorders(false).SetSelectable(false, false)
	row := 1

	for key, event := range c.formEvents {
		text := fmt.Sprintf("[orange]<%s>[white] %s", tcell.KeyNames[key], event.Description)
		c.formHeaderTables[name].SetCell(row, 0, tview.NewTableCell(text))
		row++
	}
}

func (c *Controller) userOptions() []string {
	options := []string{"(unassigned)"}
	for _, u := range c.engine.Users() {
		options = append(options, u.Name)
	}

	return options
}

func (c *Controller) initForm() {
	titleMax := 80
	descriptionMax := 500

	priorities := []string{}
	for _, p := range priorityOptions {
		if p == models.PriorityNone {
			priorities = append(priorities, "(none)")
		} else {
			priorities = append(priorities, string(p))
		}
	}

	statuses := []string{}
	for _, s := range statusOptions {
		statuses = append(statuses, string(s))
	}

	c.taskForm = tview.NewForm().
		AddInputField("Title", "", titleMax, nil, nil).
		AddInputField("Description", "", descriptionMax, nil, nil).
		AddInputField("Due (YYYY-MM-DD)", "", len(dateLayout)+2, nil, nil).
		AddDropDown("Priority", priorities, 0, nil).
		AddDropDown("Status", statuses, 0, nil).
		AddDropDown("Assignee", c.userOptions(), 0, nil)

	c.titleField, _ = c.taskForm.GetFormItemByLabel("Title").(*tview.InputField)
	c.descField, _ = c.taskForm.GetFormItemByLabel("Description").(*tview.InputField)
	c.dueField, _ = c.taskForm.GetFormItemByLabel("Due (YYYY-MM-DD)").(*tview.InputField)
	c.priorityDropDown, _ = c.taskForm.GetFormItemByLabel("Priority").(*tview.DropDown)
	c.statusDropDown, _ = c.taskForm.GetFormItemByLabel("Status").(*tview.DropDown)
	c.assigneeDropDown, _ = c.taskForm.GetFormItemByLabel("Assignee").(*tview.DropDown)

	c.taskForm.AddButton("Save", c.saveTask)
}

// fillTaskForm loads the selected task into the form, or clears it for a new task.
func (c *Controller) fillTaskForm() {
	c.titleField.SetText("")
	c.descField.SetText("")
	c.dueField.SetText("")
	c.priorityDropDown.SetCurrentOption(0)
	c.statusDropDown.SetCurrentOption(0)
	c.assigneeDropDown.SetOptions(c.userOptions(), nil)
	c.assigneeDropDown.SetCurrentOption(0)

	if !c.editing {
		return
	}

	t, ok := c.selectedTaskRecord()
	if !ok {
		return
	}

	c.titleField.SetText(t.Title)
	c.descField.SetText(t.Description)

	if t.DueDate != nil {
		c.dueField.SetText(t.DueDate.Format(dateLayout))
	}

	for i, p := range priorityOptions {
		if p == t.Priority {
			c.priorityDropDown.SetCurrentOption(i)
		}
	}

	for i, s := range statusOptions {
		if s == t.Status {
			c.statusDropDown.SetCurrentOption(i)
		}
	}

	if t.AssigneeID != nil {
		for i, u := range c.engine.Users() {
			if u.ID == *t.AssigneeID {
				c.assigneeDropDown.SetCurrentOption(i + 1)
			}
		}
	}
}

// taskPatch reads the form fields into a patch.
func (c *Controller) taskPatch() (store.TaskPatch, error) {
	title := strings.TrimSpace(c.titleField.GetText())
	if title == "" {
		return store.TaskPatch{}, fmt.Errorf("title is required")
	}

	description := c.descField.GetText()

	patch := store.TaskPatch{Title: &title, Description: &description}

	due := time.Time{}
	if text := strings.TrimSpace(c.dueField.GetText()); text != "" {
		parsed, err := time.ParseInLocation(dateLayout, text, time.Local)
		if err != nil {
			return store.TaskPatch{}, fmt.Errorf("invalid due date %q: %w", text, err)
		}

		due = parsed
	}

	patch.DueDate = &due

	if i, _ := c.priorityDropDown.GetCurrentOption(); i >= 0 && i < len(priorityOptions) {
		patch.Priority = &priorityOptions[i]
	}

	if i, _ := c.statusDropDown.GetCurrentOption(); i >= 0 && i < len(statusOptions) {
		patch.Status = &statusOptions[i]
	}

	assignee := ""
	if i, _ := c.assigneeDropDown.GetCurrentOption(); i > 0 {
		if users := c.engine.Users(); i-1 < len(users) {
			assignee = users[i-1].ID
		}
	}

	patch.AssigneeID = &assignee

	return patch, nil
}

func (c *Controller) saveTask() {
	patch, err := c.taskPatch()
	if err != nil {
		log.Warn().Err(err).Msg("invalid task form")
		c.setStatus("[red]" + tview.Escape(err.Error()))
		c.showBoard()

		return
	}

	log.Debug().Bool("editing", c.editing).Msgf("saving task with title '%s'", *patch.Title)

	taskID := c.selectedTask

	if !c.editing {
		if c.selectedPhase >= len(c.contents) {
			c.showBoard()

			return
		}

		res, err := c.engine.CreateTask(c.actor, store.NewTask{
			Title:     *patch.Title,
			ProjectID: c.currentProjectID(),
			PhaseID:   c.contents[c.selectedPhase].Phase().ID,
		})
		if !c.report("create", res, err) {
			c.showBoard()

			return
		}

		taskID = res.ID
	}

	res, err := c.engine.UpdateTask(c.actor, taskID, patch)
	if c.report("save", res, err) {
		c.selectedTask = taskID
	}

	c.showBoard()
}

func (c *Controller) initCommentForm() {
	commentMax := 500

	c.commentForm = tview.NewForm().
		AddInputField("Comment", "", commentMax, nil, nil)

	c.commentField, _ = c.commentForm.GetFormItemByLabel("Comment").(*tview.InputField)

	c.commentForm.AddButton("Save", func() {
		text := strings.TrimSpace(c.commentField.GetText())
		if text != "" {
			res, err := c.engine.AddComment(c.actor, c.selectedTask, text)
			c.report("comment", res, err)
		}

		c.showBoard()
	})
}
