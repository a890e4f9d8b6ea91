package controller

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog/log"

	"github.com/matt-steen/taskboard/pkg/store"
)

func (c *Controller) initEvents() {
	c.events = map[tcell.Key]KeyEvent{}
	c.formEvents = map[tcell.Key]KeyEvent{}

	c.initNavigationEvents(c.events)
	c.initTaskEvents(c.events)
	c.initMoveEvents(c.events)

	c.initExitEvent(c.events)

	c.formEvents[tcell.KeyEscape] = KeyEvent{
		Description: "Cancel",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.showBoard()

			return nil
		},
	}
}

func (c *Controller) getExitAction() func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		log.Info().Msg("terminating application")

		c.app.Stop()

		return nil
	}
}

func (c *Controller) initExitEvent(events map[tcell.Key]KeyEvent) {
	events[KeyQ] = KeyEvent{
		Description: "Exit",
		Action:      c.getExitAction(),
	}
}

func (c *Controller) initNavigationEvents(events map[tcell.Key]KeyEvent) {
	events[tcell.KeyLeft] = KeyEvent{
		Description: "Previous Phase",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.focusPhase(c.selectedPhase - 1)

			return nil
		},
	}

	events[tcell.KeyRight] = KeyEvent{
		Description: "Next Phase",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			c.focusPhase(c.selectedPhase + 1)

			return nil
		},
	}

	events[tcell.KeyTab] = KeyEvent{
		Description: "Next Project",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if len(c.projectIDs) > 0 {
				c.selectedProject = (c.selectedProject + 1) % len(c.projectIDs)
			}

			c.selectedPhase = 0
			c.selectedTask = ""
			c.refresh()

			log.Debug().Str("project", c.currentProjectID()).Msg("switched project")

			return nil
		},
	}
}

func (c *Controller) initTaskEvents(events map[tcell.Key]KeyEvent) {
	events[KeySpace] = KeyEvent{
		Description: "Toggle Task",
		Action: c.withTask(func(taskID string) {
			res, err := c.engine.ToggleTaskCompletion(c.actor, taskID)
			c.report("toggle", res, err)
		}),
	}

	events[KeyN] = KeyEvent{
		Description: "New Task",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if len(c.contents) == 0 {
				return nil
			}

			c.switchToForm(false)

			return nil
		},
	}

	events[KeyE] = KeyEvent{
		Description: "Edit Task",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if c.selectedTask != "" {
				c.switchToForm(true)
			}

			return nil
		},
	}

	events[KeyC] = KeyEvent{
		Description: "Comment on Task",
		Action: func(key *tcell.EventKey) *tcell.EventKey {
			if c.selectedTask != "" {
				c.switchToCommentForm()
			}

			return nil
		},
	}

	events[KeyD] = KeyEvent{
		Description: "Duplicate Task",
		Action: c.withTask(func(taskID string) {
			res, err := c.engine.DuplicateTask(c.actor, taskID)
			if c.report("duplicate", res, err) {
				c.selectedTask = res.ID
			}
		}),
	}

	events[KeyX] = KeyEvent{
		Description: "Delete Task",
		Action: c.withTask(func(taskID string) {
			res, err := c.engine.DeleteTask(c.actor, taskID)
			if c.report("delete", res, err) {
				c.selectedTask = ""
			}
		}),
	}
}

// withTask runs f on the selected task and redraws the board.
func (c *Controller) withTask(f func(taskID string)) func(key *tcell.EventKey) *tcell.EventKey {
	return func(key *tcell.EventKey) *tcell.EventKey {
		if c.selectedTask == "" {
			return nil
		}

		f(c.selectedTask)
		c.refresh()

		return nil
	}
}

// getReorderAction drops the selected task onto its neighbour in the given direction.
func (c *Controller) getReorderAction(step int) func(key *tcell.EventKey) *tcell.EventKey {
	return c.withTask(func(taskID string) {
		if c.selectedPhase >= len(c.contents) {
			return
		}

		content := c.contents[c.selectedPhase]

		over, ok := content.TaskAt(content.RowOf(taskID) + step)
		if !ok {
			return
		}

		res, _, err := c.engine.DropTask(c.actor, store.Drop{TaskID: taskID, OverTaskID: over.ID})
		c.report("reorder", res, err)
	})
}

// getMoveAction drops the selected task onto the neighbouring phase in the given direction.
func (c *Controller) getMoveAction(step int) func(key *tcell.EventKey) *tcell.EventKey {
	return c.withTask(func(taskID string) {
		target := c.selectedPhase + step
		if target < 0 || target >= len(c.contents) {
			return
		}

		res, _, err := c.engine.DropTask(c.actor, store.Drop{TaskID: taskID, OverPhaseID: c.contents[target].Phase().ID})
		if c.report("move", res, err) {
			c.selectedPhase = target
		}
	})
}

func (c *Controller) initMoveEvents(events map[tcell.Key]KeyEvent) {
	events[KeyShiftK] = KeyEvent{
		Description: "Move Up",
		Action:      c.getReorderAction(-1),
	}

	events[KeyShiftJ] = KeyEvent{
		Description: "Move Down",
		Action:      c.getReorderAction(1),
	}

	events[KeyShiftH] = KeyEvent{
		Description: "Move to Previous Phase",
		Action:      c.getMoveAction(-1),
	}

	events[KeyShiftL] = KeyEvent{
		Description: "Move to Next Phase",
		Action:      c.getMoveAction(1),
	}
}
