package controller

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"

	"github.com/matt-steen/taskboard/pkg/engine"
	"github.com/matt-steen/taskboard/pkg/views"
)

const (
	boardPage = "board"
	formPage  = "form"
	notePage  = "comment"

	detailWidth = 50
)

// Controller mediates between the engine and the view.
type Controller struct {
	engine *engine.Engine
	actor  engine.Actor
	app    *tview.Application
	pages  *tview.Pages

	header  *tview.Table
	columns *tview.Flex
	detail  *tview.TextView
	status  *tview.TextView

	tables   []*tview.Table
	contents []*PhaseContent

	projectIDs      []string
	selectedProject int
	selectedPhase   int
	selectedTask    string
	editing         bool

	events           map[tcell.Key]KeyEvent
	formEvents       map[tcell.Key]KeyEvent
	formHeaderTables map[string]*tview.Table

	taskForm         *tview.Form
	titleField       *tview.InputField
	descField        *tview.InputField
	dueField         *tview.InputField
	priorityDropDown *tview.DropDown
	statusDropDown   *tview.DropDown
	assigneeDropDown *tview.DropDown

	commentForm  *tview.Form
	commentField *tview.InputField
}

// KeyEvent defines an event associated with a keypress.
type KeyEvent struct {
	Description string
	Action      func(*tcell.EventKey) *tcell.EventKey
}

// NewController creates a new Controller acting as the given user.
func NewController(e *engine.Engine, actor engine.Actor) (*Controller, error) {
	if _, ok := e.User(actor.UserID); !ok {
		return nil, fmt.Errorf("unknown acting user %s", actor.UserID)
	}

	c := Controller{
		engine:           e,
		actor:            actor,
		app:              tview.NewApplication(),
		pages:            tview.NewPages(),
		formHeaderTables: map[string]*tview.Table{},
	}

	for _, node := range views.Flatten(e.ProjectTree()) {
		c.projectIDs = append(c.projectIDs, node.Project.ID)
	}

	initKeys()
	c.initEvents()

	return &c, nil
}

// Go starts the app and blocks until it exits.
func (c *Controller) Go() error {
	c.pages.AddPage(pageName(boardPage), c.getBoardGrid(), true, true)
	c.pages.AddPage(pageName(formPage), c.getFormGrid(), true, false)
	c.pages.AddPage(pageName(notePage), c.getCommentFormGrid(), true, false)

	c.showBoard()

	log.Info().Int("projects", len(c.projectIDs)).Msg("starting board")

	return c.app.SetRoot(c.pages, true).Run()
}

func pageName(name string) string {
	return "page-" + name
}

func (c *Controller) handleKeys(evt *tcell.EventKey) *tcell.EventKey {
	key := AsKey(evt)
	if k, ok := c.events[key]; ok {
		return k.Action(evt)
	}

	return evt
}

func (c *Controller) handleFormKeys(evt *tcell.EventKey) *tcell.EventKey {
	if k, ok := c.formEvents[evt.Key()]; ok {
		return k.Action(evt)
	}

	return evt
}

// report shows the outcome of a mutation in the status line. It returns true when the mutation
// was applied.
func (c *Controller) report(op string, res engine.Result, err error) bool {
	switch {
	case err != nil:
		log.Warn().Err(err).Str("op", op).Msg("action failed")
		c.setStatus(fmt.Sprintf("[red]%s failed: %s", op, tview.Escape(err.Error())))

		return false
	case res.Outcome == engine.NotFound:
		log.Warn().Str("op", op).Str("kind", res.Kind).Str("id", res.ID).Msg("action target not found")
		c.setStatus(fmt.Sprintf("[red]%s: %s not found", op, res.Kind))

		return false
	case res.Outcome == engine.NoOp:
		c.setStatus(fmt.Sprintf("[gray]%s: nothing to do", op))

		return false
	}

	c.setStatus(fmt.Sprintf("[green]%s", op))

	return true
}

func (c *Controller) setStatus(msg string) {
	if c.status != nil {
		c.status.SetText(msg)
	}
}
