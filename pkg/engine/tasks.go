package engine

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/store"
)

// CreateTask adds a task at the end of its phase. The phase must belong to the project; a parent
// task must be a top-level task of the same project.
func (e *Engine) CreateTask(actor Actor, in store.NewTask) (Result, error) {
	const op = "create task"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	if _, ok := e.catalog.GetProject(in.ProjectID); !ok {
		return missing("project", in.ProjectID), nil
	}

	if err := e.checkPhase(op, in.ProjectID, in.PhaseID); err != nil {
		return Result{}, err
	}

	if in.ParentTaskID != nil {
		parent, ok := e.tasks.Get(*in.ParentTaskID)
		if !ok {
			return missing("task", *in.ParentTaskID), nil
		}

		if parent.ProjectID != in.ProjectID {
			return Result{}, invalid(op, "parent task "+parent.ID+" is in another project")
		}

		if parent.IsSubTask() {
			return Result{}, invalid(op, "parent task "+parent.ID+" is itself a sub-task")
		}
	}

	t := e.tasks.Create(actor.UserID, in)
	log.Debug().Str("actor", actor.UserID).Str("task", t.ID).Str("project", t.ProjectID).
		Str("phase", t.PhaseID).Msgf("created task '%s'", t.Title)

	return applied("task", t.ID), nil
}

// checkPhase must be called with the lock held. An unknown phase is reported the same way as a
// phase of another project.
func (e *Engine) checkPhase(op, projectID, phaseID string) error {
	if !e.catalog.HasPhase(projectID, phaseID) {
		return invalid(op, "phase "+phaseID+" does not belong to project "+projectID)
	}

	return nil
}

// UpdateTask merges the patch into the task.
func (e *Engine) UpdateTask(actor Actor, taskID string, patch store.TaskPatch) (Result, error) {
	const op = "update task"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	t, ok := e.tasks.Get(taskID)
	if !ok {
		return missing("task", taskID), nil
	}

	if patch.PhaseID != nil {
		if err := e.checkPhase(op, t.ProjectID, *patch.PhaseID); err != nil {
			return Result{}, err
		}
	}

	if patch.AssigneeID != nil && *patch.AssigneeID != "" {
		if _, ok := e.catalog.User(*patch.AssigneeID); !ok {
			return Result{}, invalid(op, "unknown assignee "+*patch.AssigneeID)
		}
	}

	for _, tagID := range patch.TagIDs {
		if _, ok := e.catalog.Tag(tagID); !ok {
			return Result{}, invalid(op, "unknown tag "+tagID)
		}
	}

	if patch.Priority != nil && !patch.Priority.Valid() {
		return Result{}, invalid(op, "unknown priority "+string(*patch.Priority))
	}

	if patch.Status != nil && !patch.Status.Valid() {
		return Result{}, invalid(op, "unknown status "+string(*patch.Status))
	}

	if _, err := e.tasks.Update(actor.UserID, taskID, patch); err != nil {
		return e.fail(op, err)
	}

	log.Debug().Str("actor", actor.UserID).Str("task", taskID).Msg("updated task")

	return applied("task", taskID), nil
}

// ToggleTaskCompletion flips the task between open and completed.
func (e *Engine) ToggleTaskCompletion(actor Actor, taskID string) (Result, error) {
	const op = "toggle completion"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	t, err := e.tasks.ToggleCompletion(actor.UserID, taskID)
	if err != nil {
		return e.fail(op, err)
	}

	log.Debug().Str("actor", actor.UserID).Str("task", taskID).Bool("completed", t.IsCompleted).Msg("toggled task")

	return applied("task", taskID), nil
}

// MoveTask puts the task in phaseID with the given order key. The phase must belong to the
// task's project.
func (e *Engine) MoveTask(actor Actor, taskID, phaseID string, order int) (Result, error) {
	const op = "move task"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	t, ok := e.tasks.Get(taskID)
	if !ok {
		return missing("task", taskID), nil
	}

	if err := e.checkPhase(op, t.ProjectID, phaseID); err != nil {
		return Result{}, err
	}

	if _, err := e.tasks.Move(actor.UserID, taskID, phaseID, order); err != nil {
		return e.fail(op, err)
	}

	log.Debug().Str("actor", actor.UserID).Str("task", taskID).Str("phase", phaseID).Int("order", order).Msg("moved task")

	return applied("task", taskID), nil
}

// ReorderTasks gives the listed tasks of phaseID the order keys 0..n-1 in list order. When no
// order key changes the result is NoOp.
func (e *Engine) ReorderTasks(actor Actor, orderedIDs []string, phaseID string) (Result, error) {
	const op = "reorder tasks"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	if _, _, ok := e.catalog.Phase(phaseID); !ok {
		return missing("phase", phaseID), nil
	}

	changed, err := e.tasks.Reorder(actor.UserID, orderedIDs, phaseID)
	if err != nil {
		return e.fail(op, err)
	}

	if len(changed) == 0 {
		return Result{Outcome: NoOp, Kind: "phase", ID: phaseID}, nil
	}

	log.Debug().Str("actor", actor.UserID).Str("phase", phaseID).Strs("changed", changed).Msg("reordered tasks")

	return applied("phase", phaseID), nil
}

// AddComment appends a comment authored by the actor.
func (e *Engine) AddComment(actor Actor, taskID, text string) (Result, error) {
	const op = "add comment"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	c, err := e.tasks.AddComment(actor.UserID, taskID, text)
	if err != nil {
		return e.fail(op, err)
	}

	log.Debug().Str("actor", actor.UserID).Str("task", taskID).Str("comment", c.ID).Msg("added comment")

	return applied("comment", c.ID), nil
}

// AddAttachment records a simulated upload on the task.
func (e *Engine) AddAttachment(actor Actor, taskID string, in store.NewAttachment) (Result, error) {
	const op = "add attachment"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	switch in.Type {
	case models.AttachmentImage, models.AttachmentFile:
	default:
		return Result{}, invalid(op, "unknown attachment type "+string(in.Type))
	}

	if in.Size < 0 {
		return Result{}, invalid(op, fmt.Sprintf("negative attachment size %d", in.Size))
	}

	a, err := e.tasks.AddAttachment(actor.UserID, taskID, in)
	if err != nil {
		return e.fail(op, err)
	}

	log.Debug().Str("actor", actor.UserID).Str("task", taskID).Str("file", in.FileName).Msg("added attachment")

	return applied("attachment", a.ID), nil
}

// DeleteTask removes the task and its sub-tasks. Result.Removed lists every deleted id.
func (e *Engine) DeleteTask(actor Actor, taskID string) (Result, error) {
	const op = "delete task"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	removed, err := e.tasks.Delete(taskID)
	if err != nil {
		return e.fail(op, err)
	}

	log.Debug().Str("actor", actor.UserID).Str("task", taskID).Int("removed", len(removed)).Msg("deleted task")

	res := applied("task", taskID)
	res.Removed = removed

	return res, nil
}

// DuplicateTask copies the task to the end of its phase. Result.ID is the copy.
func (e *Engine) DuplicateTask(actor Actor, taskID string) (Result, error) {
	const op = "duplicate task"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, err
	}

	dup, err := e.tasks.Duplicate(actor.UserID, taskID)
	if err != nil {
		return e.fail(op, err)
	}

	log.Debug().Str("actor", actor.UserID).Str("task", taskID).Str("copy", dup.ID).Msg("duplicated task")

	return applied("task", dup.ID), nil
}

// DropTask applies a finished drag using the engine's drop mode. A drop that changes nothing
// returns NoOp.
func (e *Engine) DropTask(actor Actor, d store.Drop) (Result, store.DropResult, error) {
	const op = "drop task"

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor(op, actor); err != nil {
		return Result{}, store.DropResult{}, err
	}

	t, ok := e.tasks.Get(d.TaskID)
	if !ok {
		return missing("task", d.TaskID), store.DropResult{}, nil
	}

	if d.OverTaskID == "" && d.OverPhaseID != "" {
		if err := e.checkPhase(op, t.ProjectID, d.OverPhaseID); err != nil {
			return Result{}, store.DropResult{}, err
		}
	}

	dr, err := e.tasks.Drop(actor.UserID, d, e.dropMode)
	if err != nil {
		res, err := e.fail(op, err)

		return res, store.DropResult{}, err
	}

	if dr.Kind == store.DropNoop {
		return Result{Outcome: NoOp, Kind: "task", ID: d.TaskID}, dr, nil
	}

	log.Debug().Str("actor", actor.UserID).Str("task", d.TaskID).Str("phase", dr.PhaseID).
		Int("index", dr.Index).Str("mode", e.dropMode.String()).Msg("dropped task")

	return applied("task", d.TaskID), dr, nil
}
