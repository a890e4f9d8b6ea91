package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/matt-steen/taskboard/pkg/ids"
	"github.com/matt-steen/taskboard/pkg/models"
)

// These constants are the actions written to a task's activity log.
const (
	ActionCreated    = "created this task."
	ActionUpdated    = "updated the task."
	ActionCompleted  = "completed this task."
	ActionReopened   = "reopened this task."
	ActionMoved      = "moved this task."
	ActionReordered  = "reordered this task."
	ActionDuplicated = "duplicated this task."
)

// CopySuffix is appended to the title of a duplicated task.
const CopySuffix = " (Copy)"

// ErrInvalidReorder is returned when a reorder sequence names a task twice or a task from
// another phase.
var ErrInvalidReorder = errors.New("invalid reorder sequence")

// Store owns every task. Tasks are kept in a map keyed by id; parent/child links are ids, not
// pointers. seq remembers insertion order, which breaks ties between equal order keys.
type Store struct {
	tasks map[string]*models.Task
	seq   []string
	now   func() time.Time
	newID ids.Generator
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDs sets the id generator.
func WithIDs(gen ids.Generator) Option {
	return func(s *Store) { s.newID = gen }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tasks: map[string]*models.Task{},
		now:   time.Now,
		newID: ids.New,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// NewTask is the minimal set of fields needed to create a task; everything else gets defaults.
type NewTask struct {
	Title        string
	ProjectID    string
	PhaseID      string
	ParentTaskID *string
}

// TaskPatch lists the task fields to change. Nil fields keep their current value.
type TaskPatch struct {
	Title       *string
	Description *string
	PhaseID     *string
	// AssigneeID set to "" unassigns the task.
	AssigneeID *string
	// DueDate set to the zero time clears the due date.
	DueDate  *time.Time
	Priority *models.Priority
	Status   *models.Status
	// TagIDs replaces the tag list when non-nil; an empty non-nil slice clears it.
	TagIDs []string
	// Recurrence with an empty Type clears the rule.
	Recurrence *models.Recurrence
	// IsCompleted also sets or clears CompletedAt.
	IsCompleted *bool
}

// NewAttachment describes a simulated upload.
type NewAttachment struct {
	FileName string
	URL      string
	Type     models.AttachmentType
	Size     int64
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.seq)
}

// Get returns a copy of the task.
func (s *Store) Get(id string) (models.Task, bool) {
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, false
	}

	return t.Clone(), true
}

// Tasks returns copies of every task in insertion order.
func (s *Store) Tasks() []models.Task {
	tasks := make([]models.Task, 0, len(s.seq))
	for _, id := range s.seq {
		tasks = append(tasks, s.tasks[id].Clone())
	}

	return tasks
}

// Column returns the top-level tasks of a phase sorted by order: the sequence a board column
// shows, and the one drag-and-drop indices refer to.
func (s *Store) Column(projectID, phaseID string) []models.Task {
	column := []models.Task{}

	for _, id := range s.seq {
		t := s.tasks[id]
		if t.ProjectID == projectID && t.PhaseID == phaseID && !t.IsSubTask() {
			column = append(column, t.Clone())
		}
	}

	models.SortByOrder(column)

	return column
}

func (s *Store) find(id string) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, models.NotFoundError{Kind: "task", ID: id}
	}

	return t, nil
}

func (s *Store) appendLog(t *models.Task, actorID, action string, at time.Time) {
	t.ActivityLog = append(t.ActivityLog, models.ActivityLogEntry{
		ID:        s.newID(ids.Log),
		AuthorID:  actorID,
		Action:    action,
		Timestamp: at,
	})
}

// touch bumps ModifiedAt and records one activity entry.
func (s *Store) touch(t *models.Task, actorID, action string) {
	now := s.now()
	t.ModifiedAt = now
	s.appendLog(t, actorID, action, now)
}

// endOrder returns an order key that sorts after every task currently in the phase.
func (s *Store) endOrder(projectID, phaseID string) int {
	end := 0

	for _, t := range s.tasks {
		if t.ProjectID == projectID && t.PhaseID == phaseID && t.Order >= end {
			end = t.Order + 1
		}
	}

	return end
}

func (s *Store) insert(t *models.Task) {
	s.tasks[t.ID] = t
	s.seq = append(s.seq, t.ID)
}

// Create adds a task at the end of its phase. Callers are responsible for checking that the
// project, phase and parent exist.
func (s *Store) Create(actorID string, in NewTask) models.Task {
	now := s.now()

	var parent *string
	if in.ParentTaskID != nil {
		parent = models.StringPtr(*in.ParentTaskID)
	}

	t := &models.Task{
		ID:           s.newID(ids.Task),
		Title:        in.Title,
		ProjectID:    in.ProjectID,
		PhaseID:      in.PhaseID,
		CreatedBy:    actorID,
		Priority:     models.PriorityNone,
		Status:       models.StatusTodo,
		TagIDs:       []string{},
		ParentTaskID: parent,
		CreatedAt:    now,
		ModifiedAt:   now,
		Order:        s.endOrder(in.ProjectID, in.PhaseID),
		Comments:     []models.Comment{},
		Attachments:  []models.Attachment{},
		ActivityLog:  []models.ActivityLogEntry{},
	}

	s.appendLog(t, actorID, ActionCreated, now)
	s.insert(t)

	return t.Clone()
}

// Update merges the patch into the task, bumps ModifiedAt and logs a generic update.
func (s *Store) Update(actorID, id string, patch TaskPatch) (models.Task, error) {
	t, err := s.find(id)
	if err != nil {
		return models.Task{}, err
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}

	if patch.Description != nil {
		t.Description = *patch.Description
	}

	if patch.PhaseID != nil {
		t.PhaseID = *patch.PhaseID
	}

	if patch.AssigneeID != nil {
		if *patch.AssigneeID == "" {
			t.AssigneeID = nil
		} else {
			t.AssigneeID = models.StringPtr(*patch.AssigneeID)
		}
	}

	if patch.DueDate != nil {
		if patch.DueDate.IsZero() {
			t.DueDate = nil
		} else {
			t.DueDate = models.TimePtr(*patch.DueDate)
		}
	}

	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}

	if patch.Status != nil {
		t.Status = *patch.Status
	}

	if patch.TagIDs != nil {
		t.TagIDs = append([]string{}, patch.TagIDs...)
	}

	if patch.Recurrence != nil {
		if patch.Recurrence.Type == "" {
			t.Recurrence = nil
		} else {
			t.Recurrence = patch.Recurrence.Clone()
		}
	}

	if patch.IsCompleted != nil && *patch.IsCompleted != t.IsCompleted {
		s.setCompleted(t, *patch.IsCompleted)
	}

	s.touch(t, actorID, ActionUpdated)

	return t.Clone(), nil
}

func (s *Store) setCompleted(t *models.Task, completed bool) {
	t.IsCompleted = completed
	if completed {
		t.CompletedAt = models.TimePtr(s.now())
	} else {
		t.CompletedAt = nil
	}
}

// ToggleCompletion flips the completion flag. CompletedAt follows the flag; order and phase
// are left alone.
func (s *Store) ToggleCompletion(actorID, id string) (models.Task, error) {
	t, err := s.find(id)
	if err != nil {
		return models.Task{}, err
	}

	s.setCompleted(t, !t.IsCompleted)

	action := ActionReopened
	if t.IsCompleted {
		action = ActionCompleted
	}

	s.touch(t, actorID, action)

	return t.Clone(), nil
}

// Move puts the task in phaseID with the given order key. No other task is renumbered.
func (s *Store) Move(actorID, id, phaseID string, order int) (models.Task, error) {
	t, err := s.find(id)
	if err != nil {
		return models.Task{}, err
	}

	t.PhaseID = phaseID
	t.Order = order
	s.touch(t, actorID, ActionMoved)

	return t.Clone(), nil
}

// Reorder assigns order = index to each task of orderedIDs, all of which must be distinct tasks
// of phaseID. Tasks not listed keep their order. The ids of tasks whose order actually changed
// are returned; only those get an activity entry.
func (s *Store) Reorder(actorID string, orderedIDs []string, phaseID string) ([]string, error) {
	seen := make(map[string]bool, len(orderedIDs))

	for _, id := range orderedIDs {
		t, err := s.find(id)
		if err != nil {
			return nil, err
		}

		if seen[id] {
			return nil, fmt.Errorf("task %s listed twice: %w", id, ErrInvalidReorder)
		}

		if t.PhaseID != phaseID {
			return nil, fmt.Errorf("task %s is not in phase %s: %w", id, phaseID, ErrInvalidReorder)
		}

		seen[id] = true
	}

	changed := []string{}

	for i, id := range orderedIDs {
		t := s.tasks[id]
		if t.Order == i {
			continue
		}

		t.Order = i
		s.touch(t, actorID, ActionReordered)
		changed = append(changed, id)
	}

	return changed, nil
}

// AddComment appends a comment to the task. Comments don't write to the activity log.
func (s *Store) AddComment(actorID, id, text string) (models.Comment, error) {
	t, err := s.find(id)
	if err != nil {
		return models.Comment{}, err
	}

	c := models.Comment{
		ID:        s.newID(ids.Comment),
		AuthorID:  actorID,
		Content:   text,
		CreatedAt: s.now(),
	}
	t.Comments = append(t.Comments, c)

	return c, nil
}

// AddAttachment records a simulated upload on the task.
func (s *Store) AddAttachment(actorID, id string, in NewAttachment) (models.Attachment, error) {
	t, err := s.find(id)
	if err != nil {
		return models.Attachment{}, err
	}

	a := models.Attachment{
		ID:         s.newID(ids.Attachment),
		FileName:   in.FileName,
		URL:        in.URL,
		Type:       in.Type,
		Size:       in.Size,
		UploadedAt: s.now(),
	}
	t.Attachments = append(t.Attachments, a)
	s.touch(t, actorID, fmt.Sprintf("attached %s.", in.FileName))

	return a, nil
}

// Delete removes the task and its sub-tasks and returns the removed ids, the task first.
// Order keys of the remaining tasks are not renumbered.
func (s *Store) Delete(id string) ([]string, error) {
	if _, err := s.find(id); err != nil {
		return nil, err
	}

	removed := map[string]bool{id: true}
	queue := []string{id}

	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]

		for _, childID := range s.seq {
			child := s.tasks[childID]
			if child.ParentTaskID != nil && *child.ParentTaskID == parent && !removed[childID] {
				removed[childID] = true
				queue = append(queue, childID)
			}
		}
	}

	ordered := []string{id}
	kept := make([]string, 0, len(s.seq))

	for _, tid := range s.seq {
		switch {
		case !removed[tid]:
			kept = append(kept, tid)
		case tid != id:
			ordered = append(ordered, tid)
		}

		if removed[tid] {
			delete(s.tasks, tid)
		}
	}

	s.seq = kept

	return ordered, nil
}

// Duplicate copies the task under a new id at the end of its phase. The copy keeps the
// original's parent, so duplicating a sub-task yields a sibling sub-task.
func (s *Store) Duplicate(actorID, id string) (models.Task, error) {
	orig, err := s.find(id)
	if err != nil {
		return models.Task{}, err
	}

	now := s.now()
	dup := orig.Clone()
	dup.ID = s.newID(ids.Task)
	dup.Title = orig.Title + CopySuffix
	dup.CreatedAt = now
	dup.ModifiedAt = now
	dup.Order = s.endOrder(orig.ProjectID, orig.PhaseID)

	// copied records get their own ids.
	for i := range dup.Comments {
		dup.Comments[i].ID = s.newID(ids.Comment)
	}

	for i := range dup.Attachments {
		dup.Attachments[i].ID = s.newID(ids.Attachment)
	}

	for i := range dup.ActivityLog {
		dup.ActivityLog[i].ID = s.newID(ids.Log)
	}

	s.appendLog(&dup, actorID, ActionDuplicated, now)

	s.insert(&dup)

	return dup.Clone(), nil
}
