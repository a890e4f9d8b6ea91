package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matt-steen/taskboard/pkg/catalog"
	"github.com/matt-steen/taskboard/pkg/config"
	"github.com/matt-steen/taskboard/pkg/engine"
	"github.com/matt-steen/taskboard/pkg/ids"
	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/store"
	"github.com/matt-steen/taskboard/pkg/views"
)

var start = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

func tickingClock() func() time.Time {
	now := start

	return func() time.Time {
		now = now.Add(time.Second)

		return now
	}
}

type fixture struct {
	e       *engine.Engine
	actor   engine.Actor
	project models.Project
	todo    string
	doing   string
	done    string
}

func newFixture(t *testing.T, opts ...engine.Option) fixture {
	t.Helper()

	opts = append([]engine.Option{engine.WithClock(tickingClock()), engine.WithIDs(ids.Sequence())}, opts...)
	e := engine.New(opts...)

	u := e.AddUser("Mario Rossi", "MR")
	actor := engine.Actor{UserID: u.ID}

	res, err := e.AddProject(actor, catalog.NewProject{Name: "Site", Color: "#14b8a6"})
	require.Nil(t, err)
	require.True(t, res.Applied())

	p, ok := e.Project(res.ID)
	require.True(t, ok)

	return fixture{e: e, actor: actor, project: p, todo: p.Phases[0].ID, doing: p.Phases[1].ID, done: p.Phases[2].ID}
}

func (f fixture) create(t *testing.T, title, phase string) string {
	t.Helper()

	res, err := f.e.CreateTask(f.actor, store.NewTask{Title: title, ProjectID: f.project.ID, PhaseID: phase})
	require.Nil(t, err)
	require.Equal(t, engine.Applied, res.Outcome)

	return res.ID
}

func (f fixture) task(t *testing.T, id string) models.Task {
	t.Helper()

	task, ok := f.e.Task(id)
	require.True(t, ok)

	return task
}

func TestCreateTask(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	id := f.create(t, "Write copy", f.todo)

	task := f.task(t, id)
	assert.Equal(f.actor.UserID, task.CreatedBy)
	require.Len(t, task.ActivityLog, 1)
	assert.Equal(f.actor.UserID, task.ActivityLog[0].AuthorID)
	assert.Equal(store.ActionCreated, task.ActivityLog[0].Action)
}

func TestCreateTaskValidation(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	parent := f.create(t, "parent", f.todo)

	other, err := f.e.AddProject(f.actor, catalog.NewProject{Name: "Other"})
	require.Nil(t, err)

	otherProject, _ := f.e.Project(other.ID)
	foreignTask, err := f.e.CreateTask(f.actor, store.NewTask{
		Title: "foreign", ProjectID: other.ID, PhaseID: otherProject.Phases[0].ID,
	})
	require.Nil(t, err)

	subRes, err := f.e.CreateTask(f.actor, store.NewTask{
		Title: "sub", ProjectID: f.project.ID, PhaseID: f.todo, ParentTaskID: &parent,
	})
	require.Nil(t, err)
	require.True(t, subRes.Applied())

	missingParent := "task-404"

	invalid := []store.NewTask{
		{Title: "phase of another project", ProjectID: f.project.ID, PhaseID: otherProject.Phases[0].ID},
		{Title: "unknown phase", ProjectID: f.project.ID, PhaseID: "phase-404"},
		{Title: "parent in another project", ProjectID: f.project.ID, PhaseID: f.todo, ParentTaskID: &foreignTask.ID},
		{Title: "nested sub-task", ProjectID: f.project.ID, PhaseID: f.todo, ParentTaskID: &subRes.ID},
	}

	before := len(f.e.Tasks())

	for _, in := range invalid {
		res, err := f.e.CreateTask(f.actor, in)

		var verr *engine.ValidationError
		assert.True(errors.As(err, &verr), in.Title)
		assert.Equal(engine.Result{}, res, in.Title)
	}

	res, err := f.e.CreateTask(f.actor, store.NewTask{Title: "x", ProjectID: "proj-404", PhaseID: f.todo})
	assert.Nil(err)
	assert.Equal(engine.NotFound, res.Outcome)
	assert.Equal("project", res.Kind)

	res, err = f.e.CreateTask(f.actor, store.NewTask{Title: "x", ProjectID: f.project.ID, PhaseID: f.todo, ParentTaskID: &missingParent})
	assert.Nil(err)
	assert.Equal(engine.NotFound, res.Outcome)
	assert.Equal("task", res.Kind)

	_, err = f.e.CreateTask(engine.Actor{UserID: "user-404"}, store.NewTask{Title: "x", ProjectID: f.project.ID, PhaseID: f.todo})
	assert.NotNil(err)

	assert.Len(f.e.Tasks(), before)
}

func TestUnknownTaskIsNotFound(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	f.create(t, "A", f.todo)
	snapshot := f.e.Tasks()

	const missing = "task-404"

	results := map[string]func() (engine.Result, error){
		"update": func() (engine.Result, error) {
			return f.e.UpdateTask(f.actor, missing, store.TaskPatch{})
		},
		"toggle": func() (engine.Result, error) { return f.e.ToggleTaskCompletion(f.actor, missing) },
		"move":   func() (engine.Result, error) { return f.e.MoveTask(f.actor, missing, f.doing, 0) },
		"reorder": func() (engine.Result, error) {
			return f.e.ReorderTasks(f.actor, []string{missing}, f.todo)
		},
		"comment": func() (engine.Result, error) { return f.e.AddComment(f.actor, missing, "hi") },
		"attach": func() (engine.Result, error) {
			return f.e.AddAttachment(f.actor, missing, store.NewAttachment{FileName: "a.png", Type: models.AttachmentImage})
		},
		"delete":    func() (engine.Result, error) { return f.e.DeleteTask(f.actor, missing) },
		"duplicate": func() (engine.Result, error) { return f.e.DuplicateTask(f.actor, missing) },
		"drop": func() (engine.Result, error) {
			res, _, err := f.e.DropTask(f.actor, store.Drop{TaskID: missing, OverPhaseID: f.doing})

			return res, err
		},
		"update project": func() (engine.Result, error) {
			name := "x"

			return f.e.UpdateProject(f.actor, "proj-404", catalog.ProjectPatch{Name: &name})
		},
	}

	for name, call := range results {
		res, err := call()
		assert.Nil(err, name)
		assert.Equal(engine.NotFound, res.Outcome, name)
		assert.False(res.Applied(), name)
	}

	assert.Equal(snapshot, f.e.Tasks())
}

func TestUpdateTaskValidation(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	id := f.create(t, "A", f.todo)
	before := f.task(t, id)

	bogusPhase := "phase-404"
	bogusPriority := models.Priority("Urgent")
	bogusStatus := models.Status("Blocked")

	patches := []store.TaskPatch{
		{PhaseID: &bogusPhase},
		{AssigneeID: models.StringPtr("user-404")},
		{TagIDs: []string{"tag-404"}},
		{Priority: &bogusPriority},
		{Status: &bogusStatus},
	}

	for _, patch := range patches {
		_, err := f.e.UpdateTask(f.actor, id, patch)

		var verr *engine.ValidationError
		assert.True(errors.As(err, &verr))
	}

	assert.Equal(before, f.task(t, id))

	tag := f.e.AddTag("UI")
	res, err := f.e.UpdateTask(f.actor, id, store.TaskPatch{TagIDs: []string{tag.ID}, AssigneeID: &f.actor.UserID})
	assert.Nil(err)
	assert.True(res.Applied())
	assert.Equal([]string{tag.ID}, f.task(t, id).TagIDs)
	assert.Equal([]models.Task{f.task(t, id)}, f.e.AssignedTo(f.actor.UserID))
}

func TestMoveAndReorder(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	a := f.create(t, "A", f.todo)
	b := f.create(t, "B", f.todo)
	c := f.create(t, "C", f.todo)

	res, err := f.e.ReorderTasks(f.actor, []string{c, a, b}, f.todo)
	assert.Nil(err)
	assert.True(res.Applied())

	assert.Equal(1, f.task(t, a).Order)
	assert.Equal(2, f.task(t, b).Order)
	assert.Equal(0, f.task(t, c).Order)

	res, err = f.e.ReorderTasks(f.actor, []string{c, a, b}, f.todo)
	assert.Nil(err)
	assert.Equal(engine.NoOp, res.Outcome)

	res, err = f.e.MoveTask(f.actor, a, f.doing, 5)
	assert.Nil(err)
	assert.True(res.Applied())
	assert.Equal(f.doing, f.task(t, a).PhaseID)
	assert.Equal(5, f.task(t, a).Order)

	// the reorder list may not contain tasks of other phases
	_, err = f.e.ReorderTasks(f.actor, []string{a, b}, f.todo)

	var verr *engine.ValidationError
	assert.True(errors.As(err, &verr))
	assert.True(errors.Is(err, store.ErrInvalidReorder))

	// moving to a phase of another project is rejected
	other, _ := f.e.AddProject(f.actor, catalog.NewProject{Name: "Other"})
	otherProject, _ := f.e.Project(other.ID)

	_, err = f.e.MoveTask(f.actor, b, otherProject.Phases[0].ID, 0)
	assert.True(errors.As(err, &verr))
	assert.Equal(f.todo, f.task(t, b).PhaseID)

	assert.Equal([]string{"C", "B"}, titles(f.e.PhaseTasks(f.project.ID, f.todo)))
}

func titles(tasks []models.Task) []string {
	out := []string{}
	for _, t := range tasks {
		out = append(out, t.Title)
	}

	return out
}

func TestDropModes(t *testing.T) {
	t.Parallel()

	for _, mode := range []store.DropMode{store.DropAppend, store.DropInsert} {
		mode := mode

		t.Run(mode.String(), func(t *testing.T) {
			t.Parallel()

			assert := assert.New(t)

			f := newFixture(t, engine.WithDropMode(mode))
			a := f.create(t, "A", f.todo)
			x := f.create(t, "X", f.doing)
			f.create(t, "Y", f.doing)

			res, dr, err := f.e.DropTask(f.actor, store.Drop{TaskID: a, OverTaskID: x})
			assert.Nil(err)
			assert.True(res.Applied())
			assert.Equal(store.DropMoved, dr.Kind)

			want := []string{"X", "Y", "A"}
			if mode == store.DropInsert {
				want = []string{"A", "X", "Y"}
			}

			assert.Equal(want, titles(f.e.PhaseTasks(f.project.ID, f.doing)))

			res, _, err = f.e.DropTask(f.actor, store.Drop{TaskID: a, OverTaskID: a})
			assert.Nil(err)
			assert.Equal(engine.NoOp, res.Outcome)
		})
	}
}

func TestDropValidation(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	a := f.create(t, "A", f.todo)

	other, _ := f.e.AddProject(f.actor, catalog.NewProject{Name: "Other"})
	otherProject, _ := f.e.Project(other.ID)

	var verr *engine.ValidationError

	_, _, err := f.e.DropTask(f.actor, store.Drop{TaskID: a, OverPhaseID: otherProject.Phases[1].ID})
	assert.True(errors.As(err, &verr))

	_, _, err = f.e.DropTask(f.actor, store.Drop{TaskID: a})
	assert.True(errors.As(err, &verr))
	assert.True(errors.Is(err, store.ErrInvalidDrop))

	assert.Equal(f.todo, f.task(t, a).PhaseID)
}

func TestToggleDeleteDuplicate(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	parent := f.create(t, "parent", f.todo)

	sub, err := f.e.CreateTask(f.actor, store.NewTask{Title: "sub", ProjectID: f.project.ID, PhaseID: f.todo, ParentTaskID: &parent})
	require.Nil(t, err)

	res, err := f.e.ToggleTaskCompletion(f.actor, sub.ID)
	assert.Nil(err)
	assert.True(res.Applied())
	assert.Equal(views.Progress{Done: 1, Total: 1, Percent: 100}, f.e.Progress(parent))

	dup, err := f.e.DuplicateTask(f.actor, parent)
	assert.Nil(err)
	assert.Equal("parent"+store.CopySuffix, f.task(t, dup.ID).Title)
	assert.Empty(f.e.SubTasks(dup.ID))

	res, err = f.e.DeleteTask(f.actor, parent)
	assert.Nil(err)
	assert.Equal([]string{parent, sub.ID}, res.Removed)

	_, ok := f.e.Task(sub.ID)
	assert.False(ok)
	assert.Len(f.e.Tasks(), 1)
}

func TestCommentsAndAttachments(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t)
	laura := f.e.AddUser("Laura Bianchi", "LB")
	id := f.create(t, "A", f.todo)

	res, err := f.e.AddComment(engine.Actor{UserID: laura.ID}, id, "nice")
	assert.Nil(err)
	assert.True(res.Applied())

	task := f.task(t, id)
	require.Len(t, task.Comments, 1)
	assert.Equal(laura.ID, task.Comments[0].AuthorID)
	assert.Len(task.ActivityLog, 1)

	_, err = f.e.AddAttachment(f.actor, id, store.NewAttachment{FileName: "a.bin", Type: "video"})
	assert.NotNil(err)

	_, err = f.e.AddAttachment(f.actor, id, store.NewAttachment{FileName: "a.png", Type: models.AttachmentImage, Size: -1})

	var verr *engine.ValidationError
	assert.True(errors.As(err, &verr))
	assert.Empty(f.task(t, id).Attachments)

	res, err = f.e.AddAttachment(f.actor, id, store.NewAttachment{FileName: "a.png", Type: models.AttachmentImage, Size: 10})
	assert.Nil(err)
	assert.True(res.Applied())
	assert.Len(f.task(t, id).Attachments, 1)
}

func TestProjects(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t, engine.WithStarterPhases([]catalog.PhaseTemplate{{Name: "Backlog"}, {Name: "Doing"}, {Name: "Live"}}))
	assert.Equal("Backlog", f.project.Phases[0].Name)

	child, err := f.e.AddProject(f.actor, catalog.NewProject{Name: "Child"})
	require.Nil(t, err)

	res, err := f.e.SetProjectParent(f.actor, child.ID, &f.project.ID)
	assert.Nil(err)
	assert.True(res.Applied())

	_, err = f.e.SetProjectParent(f.actor, f.project.ID, &child.ID)

	var verr *engine.ValidationError
	assert.True(errors.As(err, &verr))
	assert.True(errors.Is(err, catalog.ErrCycle))

	missing := "proj-404"
	res, err = f.e.SetProjectParent(f.actor, child.ID, &missing)
	assert.Nil(err)
	assert.Equal(engine.NotFound, res.Outcome)

	tree := f.e.ProjectTree()
	require.Len(t, tree, 1)
	assert.Equal("Child", tree[0].Children[0].Project.Name)
	assert.Equal([]string{f.project.ID}, f.e.Ancestors(child.ID))

	res, err = f.e.AddPhase(f.actor, f.project.ID, "Archive", "#000")
	assert.Nil(err)
	assert.True(res.Applied())

	board, ok := f.e.Board(f.project.ID)
	assert.True(ok)
	assert.Len(board, 4)
	assert.Equal("Archive", board[3].Phase.Name)

	_, ok = f.e.Board("proj-404")
	assert.False(ok)

	res, err = f.e.AddMember(f.actor, f.project.ID, "user-404")
	assert.Nil(err)
	assert.Equal(engine.NotFound, res.Outcome)
}

func TestRecentActivityLimit(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	f := newFixture(t, engine.WithRecentActivityLimit(2))
	a := f.create(t, "A", f.todo)
	f.create(t, "B", f.todo)

	_, err := f.e.ToggleTaskCompletion(f.actor, a)
	assert.Nil(err)

	items := f.e.RecentActivity()
	require.Len(t, items, 2)
	assert.Equal(store.ActionCompleted, items[0].Entry.Action)
	assert.Equal("B", items[1].TaskTitle)
}

func TestConfigOptions(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	cfg := config.DefaultConfig()
	cfg.DropMode = "insert"
	cfg.StarterPhases = []config.PhaseConfig{{Name: "Inbox", Color: "#fff"}}

	opts, err := engine.ConfigOptions(cfg)
	assert.Nil(err)

	e := engine.New(opts...)
	assert.Equal(store.DropInsert, e.DropMode())

	u := e.AddUser("Mario Rossi", "MR")
	res, err := e.AddProject(engine.Actor{UserID: u.ID}, catalog.NewProject{Name: "P"})
	assert.Nil(err)

	p, _ := e.Project(res.ID)
	assert.Equal("Inbox", p.Phases[0].Name)

	cfg.DropMode = "sideways"
	_, err = engine.ConfigOptions(cfg)
	assert.NotNil(err)
}
