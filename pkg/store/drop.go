package store

import (
	"errors"
	"fmt"
)

// ErrInvalidDrop is returned for drops that can't be mapped onto a board column.
var ErrInvalidDrop = errors.New("invalid drop")

// DropMode selects what happens when a task is dropped into another phase.
type DropMode int

const (
	// DropAppend puts the task at the end of the destination phase, wherever it was dropped.
	DropAppend DropMode = iota
	// DropInsert puts the task at the drop position and renumbers the destination phase.
	DropInsert
)

func (m DropMode) String() string {
	if m == DropInsert {
		return "insert"
	}

	return "append"
}

// ParseDropMode maps "append" and "insert" to a DropMode.
func ParseDropMode(s string) (DropMode, error) {
	switch s {
	case "", "append":
		return DropAppend, nil
	case "insert":
		return DropInsert, nil
	}

	return DropAppend, fmt.Errorf("unknown drop mode %q", s)
}

// Drop describes a finished drag: the dragged task and what it was released over. Exactly one
// of OverTaskID and OverPhaseID is expected; OverTaskID wins if both are set.
type Drop struct {
	TaskID      string
	OverTaskID  string
	OverPhaseID string
}

// DropKind tells what a drop turned into.
type DropKind int

const (
	DropNoop DropKind = iota
	DropMoved
	DropReordered
)

// DropResult reports the outcome of a drop. Index is the dragged task's position in the
// destination column afterwards.
type DropResult struct {
	Kind    DropKind
	PhaseID string
	Index   int
}

// Drop reconciles a drag-and-drop gesture with the store. Indices refer to the board column:
// the top-level tasks of a phase sorted by order.
//
// Dropping into another phase moves the task there; with DropAppend it goes to the end, with
// DropInsert it takes the position of the task it was dropped over. Dropping within the same
// phase removes the task at its old index, inserts it at the new one and renumbers the column.
func (s *Store) Drop(actorID string, d Drop, mode DropMode) (DropResult, error) {
	active, err := s.find(d.TaskID)
	if err != nil {
		return DropResult{}, err
	}

	if active.IsSubTask() {
		return DropResult{}, fmt.Errorf("task %s is a sub-task: %w", d.TaskID, ErrInvalidDrop)
	}

	if d.TaskID == d.OverTaskID {
		return DropResult{Kind: DropNoop, PhaseID: active.PhaseID, Index: -1}, nil
	}

	targetPhase := d.OverPhaseID
	if d.OverTaskID != "" {
		over, err := s.find(d.OverTaskID)
		if err != nil {
			return DropResult{}, err
		}

		if over.ProjectID != active.ProjectID {
			return DropResult{}, fmt.Errorf("task %s is in another project: %w", d.OverTaskID, ErrInvalidDrop)
		}

		if over.IsSubTask() {
			return DropResult{}, fmt.Errorf("task %s is a sub-task: %w", d.OverTaskID, ErrInvalidDrop)
		}

		targetPhase = over.PhaseID
	}

	if targetPhase == "" {
		return DropResult{}, fmt.Errorf("no drop target for task %s: %w", d.TaskID, ErrInvalidDrop)
	}

	if targetPhase != active.PhaseID {
		return s.dropIntoPhase(actorID, active.ID, active.ProjectID, targetPhase, d.OverTaskID, mode)
	}

	return s.dropWithinPhase(actorID, active.ID, active.ProjectID, targetPhase, d.OverTaskID)
}

func (s *Store) dropIntoPhase(actorID, taskID, projectID, phaseID, overTaskID string, mode DropMode) (DropResult, error) {
	column := columnIDs(s.Column(projectID, phaseID))

	if mode == DropAppend {
		// sub-tasks and deleted tasks leave keys at or past len(column).
		order := max(len(column), s.endOrder(projectID, phaseID))
		if _, err := s.Move(actorID, taskID, phaseID, order); err != nil {
			return DropResult{}, err
		}

		at := indexOf(columnIDs(s.Column(projectID, phaseID)), taskID)

		return DropResult{Kind: DropMoved, PhaseID: phaseID, Index: at}, nil
	}

	at := indexOf(column, overTaskID)
	if at < 0 {
		at = len(column)
	}

	if _, err := s.Move(actorID, taskID, phaseID, at); err != nil {
		return DropResult{}, err
	}

	if _, err := s.Reorder(actorID, insertAt(column, taskID, at), phaseID); err != nil {
		return DropResult{}, err
	}

	return DropResult{Kind: DropMoved, PhaseID: phaseID, Index: at}, nil
}

func (s *Store) dropWithinPhase(actorID, taskID, projectID, phaseID, overTaskID string) (DropResult, error) {
	column := columnIDs(s.Column(projectID, phaseID))

	from := indexOf(column, taskID)

	// dropping on the column itself means "to the bottom".
	to := len(column) - 1
	if overTaskID != "" {
		to = indexOf(column, overTaskID)
	}

	if from == to {
		return DropResult{Kind: DropNoop, PhaseID: phaseID, Index: from}, nil
	}

	if _, err := s.Reorder(actorID, arrayMove(column, from, to), phaseID); err != nil {
		return DropResult{}, err
	}

	return DropResult{Kind: DropReordered, PhaseID: phaseID, Index: to}, nil
}
