package models

import (
	"errors"
	"sort"
	"time"
)

// ErrNotFound is matched by every not-found error returned from the catalog and the task store.
var ErrNotFound = errors.New("not found")

// Priority is the optional urgency of a task. The zero value means no priority.
type Priority string

// These constants refer to the priorities supported by the app.
const (
	PriorityNone   Priority = ""
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Valid reports whether p is one of the known priorities (including none).
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}

	return false
}

// Status is the workflow status of a task. It is independent of the phase the task sits in.
type Status string

// These constants refer to the statuses supported by the app.
const (
	StatusTodo       Status = "Todo"
	StatusInProgress Status = "In Progress"
	StatusInReview   Status = "In Review"
	StatusDone       Status = "Done"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusInReview, StatusDone:
		return true
	}

	return false
}

// RecurrenceType names how often a task recurs.
type RecurrenceType string

const (
	RecurDaily   RecurrenceType = "daily"
	RecurWeekly  RecurrenceType = "weekly"
	RecurMonthly RecurrenceType = "monthly"
	RecurCustom  RecurrenceType = "custom"
)

// Recurrence is stored with a task but never evaluated: nothing advances due dates.
type Recurrence struct {
	Type        RecurrenceType
	Pattern     map[string]string
	NextDueDate time.Time
}

// Clone returns a deep copy of r; a nil rule stays nil.
func (r *Recurrence) Clone() *Recurrence {
	if r == nil {
		return nil
	}

	c := *r
	if r.Pattern != nil {
		c.Pattern = make(map[string]string, len(r.Pattern))
		for k, v := range r.Pattern {
			c.Pattern[k] = v
		}
	}

	return &c
}

// AttachmentType distinguishes images from other files.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "image"
	AttachmentFile  AttachmentType = "file"
)

// User is referenced by id from projects, tasks, comments and activity entries.
type User struct {
	ID     string
	Name   string
	Avatar string
}

// Phase is a named column of a project's board. Order is unique within the project.
type Phase struct {
	ID    string
	Name  string
	Order int
	Color string
}

// Project owns its phases. ParentID, when set, references another project.
type Project struct {
	ID          string
	Name        string
	Description string
	Color       string
	ParentID    *string
	Phases      []Phase
	MemberIDs   []string
	CreatedBy   string
	CreatedAt   time.Time
}

// Tag is shared by reference between tasks.
type Tag struct {
	ID   string
	Name string
}

// Comment is owned by a single task and never edited.
type Comment struct {
	ID        string
	AuthorID  string
	Content   string
	CreatedAt time.Time
}

// Attachment is a simulated file record; no bytes are stored.
type Attachment struct {
	ID         string
	FileName   string
	URL        string
	Type       AttachmentType
	Size       int64
	UploadedAt time.Time
}

// ActivityLogEntry is one line of a task's audit trail.
type ActivityLogEntry struct {
	ID        string
	AuthorID  string
	Action    string
	Timestamp time.Time
}

// Task is the unit of work on a board.
type Task struct {
	ID           string
	Title        string
	Description  string
	ProjectID    string
	PhaseID      string
	AssigneeID   *string
	CreatedBy    string
	DueDate      *time.Time
	Priority     Priority
	Status       Status
	TagIDs       []string
	Recurrence   *Recurrence
	ParentTaskID *string // set for sub-tasks, which are hidden from the top level of the board

	// CompletedAt is non-nil exactly when IsCompleted is true.
	IsCompleted bool
	CompletedAt *time.Time
	CreatedAt   time.Time
	ModifiedAt  time.Time

	// Order sorts tasks within their phase. Gaps and ties are allowed; ties keep insertion order.
	Order       int
	Comments    []Comment
	Attachments []Attachment
	ActivityLog []ActivityLogEntry
}

// IsSubTask reports whether t has a parent task.
func (t *Task) IsSubTask() bool {
	return t.ParentTaskID != nil
}

// Clone returns a deep copy of t. Mutating the copy never affects t.
func (t *Task) Clone() Task {
	c := *t
	c.AssigneeID = cloneString(t.AssigneeID)
	c.ParentTaskID = cloneString(t.ParentTaskID)
	c.DueDate = cloneTime(t.DueDate)
	c.CompletedAt = cloneTime(t.CompletedAt)

	c.Recurrence = t.Recurrence.Clone()

	c.TagIDs = append([]string{}, t.TagIDs...)
	c.Comments = append([]Comment{}, t.Comments...)
	c.Attachments = append([]Attachment{}, t.Attachments...)
	c.ActivityLog = append([]ActivityLogEntry{}, t.ActivityLog...)

	return c
}

// Clone returns a deep copy of p.
func (p *Project) Clone() Project {
	c := *p
	c.ParentID = cloneString(p.ParentID)
	c.Phases = append([]Phase{}, p.Phases...)
	c.MemberIDs = append([]string{}, p.MemberIDs...)

	return c
}

// SortedPhases returns the project's phases ordered left to right.
func (p *Project) SortedPhases() []Phase {
	phases := append([]Phase{}, p.Phases...)
	sort.SliceStable(phases, func(i, j int) bool {
		return phases[i].Order < phases[j].Order
	})

	return phases
}

// SortByOrder sorts tasks by Order in place. The sort is stable, so callers that pass tasks
// in insertion order get ties broken by insertion.
func SortByOrder(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Order < tasks[j].Order
	})
}

// StringPtr returns a pointer to a copy of s.
func StringPtr(s string) *string {
	return &s
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := *t

	return &v
}

// NotFoundError reports an unknown id of the given kind. It matches ErrNotFound with errors.Is.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return e.Kind + " not found: " + e.ID
}

// Is lets errors.Is(err, ErrNotFound) match any NotFoundError.
func (e NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
