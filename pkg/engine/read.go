package engine

import (
	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/views"
)

// Project returns a copy of the project; ok is false when the id is unknown.
func (e *Engine) Project(id string) (models.Project, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.GetProject(id)
}

// Projects returns every project in creation order.
func (e *Engine) Projects() []models.Project {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.Projects()
}

// ProjectTree returns the projects nested under their parents.
func (e *Engine) ProjectTree() []views.TreeNode {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.ProjectTree(e.catalog.Projects())
}

// Ancestors returns the ids of the project's ancestors, nearest first.
func (e *Engine) Ancestors(projectID string) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.Ancestors(projectID)
}

func (e *Engine) Users() []models.User {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.Users()
}

func (e *Engine) User(id string) (models.User, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.User(id)
}

// UserByName finds a user by exact name.
func (e *Engine) UserByName(name string) (models.User, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for _, u := range e.catalog.Users() {
		if u.Name == name {
			return u, true
		}
	}

	return models.User{}, false
}

// DisplayName returns the user's name or a placeholder for unknown ids.
func (e *Engine) DisplayName(userID string) string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.DisplayName(userID)
}

func (e *Engine) Tags() []models.Tag {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.Tags()
}

func (e *Engine) Tag(id string) (models.Tag, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.catalog.Tag(id)
}

// Task returns a copy of the task.
func (e *Engine) Task(id string) (models.Task, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.tasks.Get(id)
}

// Tasks returns copies of every task in creation order.
func (e *Engine) Tasks() []models.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.tasks.Tasks()
}

// Board returns the columns of a project; ok is false when the project is unknown.
func (e *Engine) Board(projectID string) ([]views.Column, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	p, ok := e.catalog.GetProject(projectID)
	if !ok {
		return nil, false
	}

	return views.Board(p, e.tasks.Tasks()), true
}

// PhaseTasks returns the tasks of one phase sorted by order.
func (e *Engine) PhaseTasks(projectID, phaseID string) []models.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.PhaseTasks(e.tasks.Tasks(), projectID, phaseID)
}

func (e *Engine) SubTasks(taskID string) []models.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.SubTasks(e.tasks.Tasks(), taskID)
}

// Progress rolls up the completion of the task's direct sub-tasks.
func (e *Engine) Progress(taskID string) views.Progress {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.SubTaskProgress(e.tasks.Tasks(), taskID)
}

// DueBucket classifies the task's due date against the engine clock.
func (e *Engine) DueBucket(t models.Task) views.Bucket {
	return views.DueBucket(t, e.now(), e.dueSoonDays)
}

// RecentActivity returns the newest activity entries across all tasks, capped at the configured
// limit.
func (e *Engine) RecentActivity() []views.ActivityItem {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.RecentActivity(e.tasks.Tasks(), e.recentLimit)
}

func (e *Engine) DueSummary() views.DueSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.SummarizeDue(e.tasks.Tasks(), e.now())
}

func (e *Engine) CalendarEvents() []views.CalendarEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.CalendarEvents(e.tasks.Tasks(), e.catalog.Projects(), e.now())
}

// FilterTasks returns the project's tasks matching every active predicate of f.
func (e *Engine) FilterTasks(projectID string, f views.Filter) []models.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.FilterTasks(e.tasks.Tasks(), projectID, f)
}

// AssignedTo returns the tasks assigned to the user.
func (e *Engine) AssignedTo(userID string) []models.Task {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return views.AssignedTo(e.tasks.Tasks(), userID)
}
