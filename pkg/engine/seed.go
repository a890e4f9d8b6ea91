package engine

import (
	"fmt"

	"github.com/matt-steen/taskboard/pkg/catalog"
	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/store"
)

// seeder stops at the first failed call so Seed can report a single error.
type seeder struct {
	e   *Engine
	err error
}

func (s *seeder) do(what string, f func() (Result, error)) string {
	if s.err != nil {
		return ""
	}

	res, err := f()

	switch {
	case err != nil:
		s.err = fmt.Errorf("seed %s: %w", what, err)
	case res.Outcome == NotFound:
		s.err = fmt.Errorf("seed %s: %s not found: %s", what, res.Kind, res.ID)
	}

	return res.ID
}

func (s *seeder) project(actor Actor, name, description, color string, phases ...catalog.PhaseTemplate) (string, []string) {
	id := s.do("project "+name, func() (Result, error) {
		return s.e.AddProject(actor, catalog.NewProject{Name: name, Description: description, Color: color, Phases: phases})
	})

	p, ok := s.e.Project(id)
	if !ok {
		return id, nil
	}

	phaseIDs := []string{}
	for _, ph := range p.SortedPhases() {
		phaseIDs = append(phaseIDs, ph.ID)
	}

	return id, phaseIDs
}

func (s *seeder) task(actor Actor, in store.NewTask, patch store.TaskPatch) string {
	id := s.do("task "+in.Title, func() (Result, error) { return s.e.CreateTask(actor, in) })

	s.do("task "+in.Title, func() (Result, error) { return s.e.UpdateTask(actor, id, patch) })

	return id
}

// Seed fills an empty engine with the demo workspace: three users, three tags, three projects
// (one nested) and a handful of tasks with sub-tasks, comments and an attachment. It returns the
// users in creation order.
func Seed(e *Engine) ([]models.User, error) {
	mario := e.AddUser("Mario Rossi", "MR")
	laura := e.AddUser("Laura Bianchi", "LB")
	giuseppe := e.AddUser("Giuseppe Verde", "GV")

	ui := e.AddTag("UI")
	e.AddTag("Bug")
	feature := e.AddTag("Feature")

	asMario := Actor{UserID: mario.ID}
	asLaura := Actor{UserID: laura.ID}

	s := &seeder{e: e}
	now := e.Now()

	redesign, redesignPhases := s.project(asMario, "Redesign App", "A full redesign of the main application.", "#3b82f6",
		catalog.PhaseTemplate{Name: "Planning", Color: "#a855f7"},
		catalog.PhaseTemplate{Name: "Design", Color: "#ec4899"},
		catalog.PhaseTemplate{Name: "Development", Color: "#22c55e"},
		catalog.PhaseTemplate{Name: "Done", Color: "#84cc16"},
	)
	marketing, marketingPhases := s.project(asMario, "Marketing Website", "Launch a new marketing website.", "#14b8a6",
		catalog.PhaseTemplate{Name: "Copywriting", Color: "#a855f7"},
		catalog.PhaseTemplate{Name: "Implementation", Color: "#22c55e"},
		catalog.PhaseTemplate{Name: "Launched", Color: "#84cc16"},
	)
	report, _ := s.project(asLaura, "Q4 Report", "Final report for the fourth quarter.", "#f97316",
		catalog.PhaseTemplate{Name: "Data Gathering", Color: "#a855f7"},
		catalog.PhaseTemplate{Name: "Review", Color: "#ec4899"},
		catalog.PhaseTemplate{Name: "Finalized", Color: "#84cc16"},
	)

	if s.err != nil {
		return nil, s.err
	}

	s.do("members", func() (Result, error) { return e.AddMember(asMario, redesign, laura.ID) })
	s.do("members", func() (Result, error) { return e.AddMember(asMario, marketing, giuseppe.ID) })
	s.do("members", func() (Result, error) { return e.AddMember(asLaura, report, giuseppe.ID) })
	s.do("nesting", func() (Result, error) { return e.SetProjectParent(asMario, report, &marketing) })

	high, medium := models.PriorityHigh, models.PriorityMedium
	inProgress, todo := models.StatusInProgress, models.StatusTodo

	mockups := s.task(asMario,
		store.NewTask{Title: "Design initial mockups", ProjectID: redesign, PhaseID: redesignPhases[0]},
		store.TaskPatch{
			Description: models.StringPtr("Create wireframes and mockups in Figma."),
			AssigneeID:  models.StringPtr(laura.ID),
			DueDate:     models.TimePtr(now.AddDate(0, 0, 3)),
			Priority:    &high,
			Status:      &inProgress,
			TagIDs:      []string{ui.ID, feature.ID},
		})

	s.task(asMario,
		store.NewTask{Title: "Set up component library", ProjectID: redesign, PhaseID: redesignPhases[2]},
		store.TaskPatch{
			Description: models.StringPtr("Install Storybook and create base components."),
			AssigneeID:  models.StringPtr(mario.ID),
			DueDate:     models.TimePtr(now.AddDate(0, 0, 7)),
			Priority:    &high,
			Status:      &todo,
			TagIDs:      []string{ui.ID},
		})

	s.task(asMario,
		store.NewTask{Title: "Write homepage copy", ProjectID: marketing, PhaseID: marketingPhases[0]},
		store.TaskPatch{
			Description: models.StringPtr("Draft the copy for the new marketing website homepage."),
			AssigneeID:  models.StringPtr(giuseppe.ID),
			DueDate:     models.TimePtr(now.AddDate(0, 0, 2)),
			Priority:    &medium,
			Status:      &todo,
		})

	for _, title := range []string{"Sketch the dashboard", "Sketch the settings page"} {
		s.task(asLaura,
			store.NewTask{Title: title, ProjectID: redesign, PhaseID: redesignPhases[0], ParentTaskID: &mockups},
			store.TaskPatch{AssigneeID: models.StringPtr(laura.ID)})
	}

	s.do("comment", func() (Result, error) {
		return e.AddComment(asMario, mockups, "What do you think about using a gradient for the main button?")
	})
	s.do("attachment", func() (Result, error) {
		return e.AddAttachment(asLaura, mockups, store.NewAttachment{
			FileName: "mockup-v1.png",
			URL:      "#",
			Type:     models.AttachmentImage,
			Size:     150 * 1024,
		})
	})

	if s.err != nil {
		return nil, s.err
	}

	return []models.User{mario, laura, giuseppe}, nil
}
