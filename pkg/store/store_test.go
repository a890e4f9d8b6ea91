package store_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-steen/taskboard/pkg/ids"
	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/store"
)

const (
	actor   = "user-1"
	project = "proj-1"
	todo    = "phase-1"
	doing   = "phase-2"
)

var start = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

// tickingClock advances by a minute on every call.
func tickingClock() func() time.Time {
	now := start

	return func() time.Time {
		now = now.Add(time.Minute)

		return now
	}
}

func newStore() *store.Store {
	return store.New(store.WithClock(tickingClock()), store.WithIDs(ids.Sequence()))
}

func addTask(s *store.Store, title, phase string) models.Task {
	return s.Create(actor, store.NewTask{Title: title, ProjectID: project, PhaseID: phase})
}

func addSubTask(s *store.Store, title, parent string) models.Task {
	return s.Create(actor, store.NewTask{Title: title, ProjectID: project, PhaseID: todo, ParentTaskID: &parent})
}

func get(t *testing.T, s *store.Store, id string) models.Task {
	t.Helper()

	task, ok := s.Get(id)
	require.True(t, ok, "task %s", id)

	return task
}

func TestCreateDefaults(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	task := addTask(s, "Write docs", todo)

	assert.Equal("task-1", task.ID)
	assert.Equal("Write docs", task.Title)
	assert.Empty(task.Description)
	assert.Nil(task.AssigneeID)
	assert.Nil(task.DueDate)
	assert.Nil(task.Recurrence)
	assert.Nil(task.ParentTaskID)
	assert.Equal(models.PriorityNone, task.Priority)
	assert.Equal(models.StatusTodo, task.Status)
	assert.Empty(task.TagIDs)
	assert.Empty(task.Comments)
	assert.Empty(task.Attachments)
	assert.False(task.IsCompleted)
	assert.Nil(task.CompletedAt)
	assert.Equal(actor, task.CreatedBy)
	assert.Equal(task.CreatedAt, task.ModifiedAt)
	assert.Equal(0, task.Order)

	require.Len(t, task.ActivityLog, 1)
	assert.Equal(store.ActionCreated, task.ActivityLog[0].Action)
	assert.Equal(actor, task.ActivityLog[0].AuthorID)
}

func TestCreateAppendsToEndOfPhase(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	a := addTask(s, "A", todo)
	b := addTask(s, "B", todo)
	other := addTask(s, "other", doing)

	_, err := s.Move(actor, a.ID, todo, 10)
	assert.Nil(err)

	c := addTask(s, "C", todo)

	assert.Equal(1, b.Order)
	assert.Equal(0, other.Order)
	assert.Equal(11, c.Order)
	assert.Equal(4, s.Len())
	assert.Equal([]string{"B", "A", "C"}, titles(s.Column(project, todo)))
}

func titles(tasks []models.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.Title)
	}

	return out
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	task := addTask(s, "A", todo)

	title := "A2"
	high := models.PriorityHigh
	due := start.AddDate(0, 0, 2)
	done := true

	updated, err := s.Update(actor, task.ID, store.TaskPatch{
		Title:       &title,
		Priority:    &high,
		DueDate:     &due,
		AssigneeID:  models.StringPtr("user-2"),
		TagIDs:      []string{"tag-1"},
		IsCompleted: &done,
		Recurrence:  &models.Recurrence{Type: models.RecurWeekly, Pattern: map[string]string{"day": "mon"}},
	})
	assert.Nil(err)

	assert.Equal("A2", updated.Title)
	assert.Equal(models.PriorityHigh, updated.Priority)
	assert.Equal(due, *updated.DueDate)
	assert.Equal("user-2", *updated.AssigneeID)
	assert.Equal([]string{"tag-1"}, updated.TagIDs)
	assert.True(updated.IsCompleted)
	assert.NotNil(updated.CompletedAt)
	assert.Equal(models.RecurWeekly, updated.Recurrence.Type)
	assert.True(updated.ModifiedAt.After(task.ModifiedAt))
	require.Len(t, updated.ActivityLog, 2)
	assert.Equal(store.ActionUpdated, updated.ActivityLog[1].Action)

	// empty values clear the nullable fields
	zero := time.Time{}
	updated, err = s.Update(actor, task.ID, store.TaskPatch{
		AssigneeID: models.StringPtr(""),
		DueDate:    &zero,
		Recurrence: &models.Recurrence{},
		TagIDs:     []string{},
	})
	assert.Nil(err)
	assert.Nil(updated.AssigneeID)
	assert.Nil(updated.DueDate)
	assert.Nil(updated.Recurrence)
	assert.Empty(updated.TagIDs)
	assert.Equal("A2", updated.Title)
	assert.Len(updated.ActivityLog, 3)
}

func TestUpdateNotFound(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	addTask(s, "A", todo)

	_, err := s.Update(actor, "task-404", store.TaskPatch{})
	assert.True(errors.Is(err, models.ErrNotFound))

	var nf models.NotFoundError
	assert.True(errors.As(err, &nf))
	assert.Equal("task", nf.Kind)
	assert.Equal("task-404", nf.ID)
}

func TestToggleCompletion(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	task := addTask(s, "A", todo)

	for i := 0; i < 4; i++ {
		toggled, err := s.ToggleCompletion(actor, task.ID)
		assert.Nil(err)
		assert.Equal(toggled.IsCompleted, toggled.CompletedAt != nil)
		assert.Equal(i%2 == 0, toggled.IsCompleted)
		assert.Equal(task.Order, toggled.Order)
		assert.Equal(task.PhaseID, toggled.PhaseID)
	}

	log := get(t, s, task.ID).ActivityLog
	require.Len(t, log, 5)
	assert.Equal(store.ActionCompleted, log[1].Action)
	assert.Equal(store.ActionReopened, log[2].Action)
}

func TestMove(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	a := addTask(s, "A", todo)
	b := addTask(s, "B", todo)
	c := addTask(s, "C", doing)

	moved, err := s.Move(actor, a.ID, doing, 7)
	assert.Nil(err)
	assert.Equal(doing, moved.PhaseID)
	assert.Equal(7, moved.Order)
	assert.Equal(store.ActionMoved, moved.ActivityLog[len(moved.ActivityLog)-1].Action)

	// nobody else is touched
	assert.Equal(b, get(t, s, b.ID))
	assert.Equal(c, get(t, s, c.ID))
}

func TestReorder(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	a := addTask(s, "A", todo)
	b := addTask(s, "B", todo)
	c := addTask(s, "C", todo)
	other := addTask(s, "other", doing)

	changed, err := s.Reorder(actor, []string{c.ID, a.ID, b.ID}, todo)
	assert.Nil(err)
	assert.ElementsMatch([]string{a.ID, b.ID, c.ID}, changed)

	assert.Equal(1, get(t, s, a.ID).Order)
	assert.Equal(2, get(t, s, b.ID).Order)
	assert.Equal(0, get(t, s, c.ID).Order)
	assert.Equal(other, get(t, s, other.ID))
	assert.Equal([]string{"C", "A", "B"}, titles(s.Column(project, todo)))

	// reordering into the same sequence changes nothing
	changed, err = s.Reorder(actor, []string{c.ID, a.ID, b.ID}, todo)
	assert.Nil(err)
	assert.Empty(changed)
	assert.Len(get(t, s, a.ID).ActivityLog, 2)
}

func TestReorderSubsetKeepsOthers(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	a := addTask(s, "A", todo)
	b := addTask(s, "B", todo)
	c := addTask(s, "C", todo)

	changed, err := s.Reorder(actor, []string{b.ID, a.ID}, todo)
	assert.Nil(err)
	assert.Len(changed, 2)
	assert.Equal(3, s.Len())
	assert.Equal(2, get(t, s, c.ID).Order)
}

func TestReorderRejectsBadSequences(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	a := addTask(s, "A", todo)
	b := addTask(s, "B", doing)

	_, err := s.Reorder(actor, []string{a.ID, a.ID}, todo)
	assert.True(errors.Is(err, store.ErrInvalidReorder))

	_, err = s.Reorder(actor, []string{b.ID, a.ID}, todo)
	assert.True(errors.Is(err, store.ErrInvalidReorder))

	_, err = s.Reorder(actor, []string{a.ID, "task-404"}, todo)
	assert.True(errors.Is(err, models.ErrNotFound))

	// nothing was applied
	assert.Equal(0, get(t, s, a.ID).Order)
	assert.Len(get(t, s, a.ID).ActivityLog, 1)
}

func TestAddComment(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	task := addTask(s, "A", todo)

	c, err := s.AddComment("user-2", task.ID, "looks good")
	assert.Nil(err)
	assert.Equal("user-2", c.AuthorID)
	assert.Equal("looks good", c.Content)

	got := get(t, s, task.ID)
	assert.Equal([]models.Comment{c}, got.Comments)
	assert.Len(got.ActivityLog, 1)

	_, err = s.AddComment(actor, "task-404", "hello")
	assert.True(errors.Is(err, models.ErrNotFound))
}

func TestAddAttachment(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	task := addTask(s, "A", todo)

	a, err := s.AddAttachment(actor, task.ID, store.NewAttachment{
		FileName: "brief.pdf", URL: "#", Type: models.AttachmentFile, Size: 2048,
	})
	assert.Nil(err)
	assert.Equal("att-1", a.ID)

	got := get(t, s, task.ID)
	assert.Len(got.Attachments, 1)
	assert.Equal("attached brief.pdf.", got.ActivityLog[len(got.ActivityLog)-1].Action)
}

func TestDeleteCascades(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	parent := addTask(s, "parent", todo)
	keep := addTask(s, "keep", todo)
	sub1 := addSubTask(s, "sub1", parent.ID)
	sub2 := addSubTask(s, "sub2", parent.ID)
	nested := addSubTask(s, "nested", sub1.ID)

	removed, err := s.Delete(parent.ID)
	assert.Nil(err)
	assert.Equal([]string{parent.ID, sub1.ID, sub2.ID, nested.ID}, removed)
	assert.Equal(1, s.Len())

	for _, task := range s.Tasks() {
		assert.NotEqual(parent.ID, derefOr(task.ParentTaskID))
	}

	// remaining order keys are not renumbered
	assert.Equal(1, get(t, s, keep.ID).Order)

	_, err = s.Delete(parent.ID)
	assert.True(errors.Is(err, models.ErrNotFound))
}

func derefOr(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}

func TestDuplicate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	orig := addTask(s, "A", todo)
	addTask(s, "B", todo)

	_, err := s.AddComment(actor, orig.ID, "note")
	assert.Nil(err)

	dup, err := s.Duplicate("user-2", orig.ID)
	assert.Nil(err)

	assert.NotEqual(orig.ID, dup.ID)
	assert.Equal("A"+store.CopySuffix, dup.Title)
	assert.Equal(2, dup.Order)
	assert.True(dup.CreatedAt.After(orig.CreatedAt))
	assert.Equal(dup.CreatedAt, dup.ModifiedAt)
	assert.Len(dup.Comments, 1)
	assert.Equal(store.ActionDuplicated, dup.ActivityLog[len(dup.ActivityLog)-1].Action)

	// the copy is independent of the original
	title := "changed"
	_, err = s.Update(actor, dup.ID, store.TaskPatch{Title: &title})
	assert.Nil(err)
	_, err = s.AddComment(actor, dup.ID, "only on the copy")
	assert.Nil(err)

	got := get(t, s, orig.ID)
	assert.Equal("A", got.Title)
	assert.Len(got.Comments, 1)
	assert.Len(got.ActivityLog, 1)
}

func TestDuplicateGivesCopiedRecordsNewIDs(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	orig := addTask(s, "A", todo)

	_, err := s.AddComment(actor, orig.ID, "note")
	assert.Nil(err)
	_, err = s.AddAttachment(actor, orig.ID, store.NewAttachment{FileName: "a.png", Type: models.AttachmentImage, Size: 10})
	assert.Nil(err)

	dup, err := s.Duplicate(actor, orig.ID)
	assert.Nil(err)

	orig = get(t, s, orig.ID)

	seen := map[string]bool{}
	for _, task := range []models.Task{orig, dup} {
		for _, c := range task.Comments {
			assert.False(seen[c.ID], c.ID)
			seen[c.ID] = true
		}

		for _, a := range task.Attachments {
			assert.False(seen[a.ID], a.ID)
			seen[a.ID] = true
		}

		for _, e := range task.ActivityLog {
			assert.False(seen[e.ID], e.ID)
			seen[e.ID] = true
		}
	}

	require.Len(t, dup.Comments, 1)
	assert.Equal("note", dup.Comments[0].Content)
	assert.Equal(orig.Comments[0].AuthorID, dup.Comments[0].AuthorID)
	assert.Equal("a.png", dup.Attachments[0].FileName)
	assert.Len(dup.ActivityLog, len(orig.ActivityLog)+1)
}

func TestDuplicateSubTaskIsSibling(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	parent := addTask(s, "parent", todo)
	sub := addSubTask(s, "sub", parent.ID)

	dup, err := s.Duplicate(actor, sub.ID)
	assert.Nil(err)
	assert.Equal(parent.ID, *dup.ParentTaskID)
}

func TestReadsReturnCopies(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	s := newStore()
	task := addTask(s, "A", todo)

	got := get(t, s, task.ID)
	got.Title = "mutated"
	got.ActivityLog[0].Action = "mutated"

	all := s.Tasks()
	all[0].TagIDs = append(all[0].TagIDs, "tag-x")

	again := get(t, s, task.ID)
	assert.Equal("A", again.Title)
	assert.Equal(store.ActionCreated, again.ActivityLog[0].Action)
	assert.Empty(again.TagIDs)
}
