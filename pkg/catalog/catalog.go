package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matt-steen/taskboard/pkg/ids"
	"github.com/matt-steen/taskboard/pkg/models"
)

// ErrCycle is returned when reparenting a project would make it its own ancestor.
var ErrCycle = errors.New("project would become its own ancestor")

// UnknownUserName is shown for user ids that the catalog doesn't know.
const UnknownUserName = "Someone"

// PhaseTemplate describes a phase to create with a new project.
type PhaseTemplate struct {
	Name  string
	Color string
}

// DefaultStarterPhases is the board layout every new project starts with.
func DefaultStarterPhases() []PhaseTemplate {
	return []PhaseTemplate{
		{Name: "To Do", Color: "#a855f7"},
		{Name: "In Progress", Color: "#22c55e"},
		{Name: "Done", Color: "#84cc16"},
	}
}

// Catalog owns users, tags, projects and their phases. Records are kept in maps keyed by id;
// the id slices remember insertion order for listing.
type Catalog struct {
	users   map[string]models.User
	userIDs []string

	tags   map[string]models.Tag
	tagIDs []string

	projects   map[string]*models.Project
	projectIDs []string

	// phaseProject maps a phase id to the id of the project that owns it.
	phaseProject map[string]string

	starter []PhaseTemplate
	now     func() time.Time
	newID   ids.Generator
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithClock sets the time source used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithIDs sets the id generator.
func WithIDs(gen ids.Generator) Option {
	return func(c *Catalog) { c.newID = gen }
}

// WithStarterPhases overrides DefaultStarterPhases.
func WithStarterPhases(phases []PhaseTemplate) Option {
	return func(c *Catalog) {
		if len(phases) > 0 {
			c.starter = append([]PhaseTemplate{}, phases...)
		}
	}
}

// New returns an empty catalog.
func New(opts ...Option) *Catalog {
	c := &Catalog{
		users:        map[string]models.User{},
		tags:         map[string]models.Tag{},
		projects:     map[string]*models.Project{},
		phaseProject: map[string]string{},
		starter:      DefaultStarterPhases(),
		now:          time.Now,
		newID:        ids.New,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AddUser registers a user.
func (c *Catalog) AddUser(name, avatar string) models.User {
	u := models.User{ID: c.newID(ids.User), Name: name, Avatar: avatar}
	c.users[u.ID] = u
	c.userIDs = append(c.userIDs, u.ID)

	return u
}

// User looks up a user by id.
func (c *Catalog) User(id string) (models.User, bool) {
	u, ok := c.users[id]

	return u, ok
}

// Users returns all users in registration order.
func (c *Catalog) Users() []models.User {
	users := make([]models.User, 0, len(c.userIDs))
	for _, id := range c.userIDs {
		users = append(users, c.users[id])
	}

	return users
}

// DisplayName returns the user's name, or UnknownUserName when the id is unknown.
func (c *Catalog) DisplayName(id string) string {
	if u, ok := c.users[id]; ok {
		return u.Name
	}

	return UnknownUserName
}

// AddTag registers a tag. Tag names are matched case-insensitively, so adding an existing
// name returns the existing tag.
func (c *Catalog) AddTag(name string) models.Tag {
	name = strings.TrimSpace(name)
	for _, id := range c.tagIDs {
		if strings.EqualFold(c.tags[id].Name, name) {
			return c.tags[id]
		}
	}

	t := models.Tag{ID: c.newID(ids.Tag), Name: name}
	c.tags[t.ID] = t
	c.tagIDs = append(c.tagIDs, t.ID)

	return t
}

// Tag looks up a tag by id.
func (c *Catalog) Tag(id string) (models.Tag, bool) {
	t, ok := c.tags[id]

	return t, ok
}

// Tags returns all tags in creation order.
func (c *Catalog) Tags() []models.Tag {
	tags := make([]models.Tag, 0, len(c.tagIDs))
	for _, id := range c.tagIDs {
		tags = append(tags, c.tags[id])
	}

	return tags
}

// NewProject holds the caller-supplied fields of a new project. When Phases is empty the
// catalog's starter phases are used.
type NewProject struct {
	Name        string
	Description string
	Color       string
	Phases      []PhaseTemplate
}

// ProjectPatch lists the project fields to change; nil fields keep their value.
type ProjectPatch struct {
	Name        *string
	Description *string
	Color       *string
}

// GetProject returns a copy of the project. A missing project is reported with ok=false,
// which callers are expected to render rather than treat as an error.
func (c *Catalog) GetProject(id string) (models.Project, bool) {
	p, ok := c.projects[id]
	if !ok {
		return models.Project{}, false
	}

	return p.Clone(), true
}

// Projects returns copies of all projects in creation order.
func (c *Catalog) Projects() []models.Project {
	projects := make([]models.Project, 0, len(c.projectIDs))
	for _, id := range c.projectIDs {
		projects = append(projects, c.projects[id].Clone())
	}

	return projects
}

// Children returns the projects whose parent is parentID; "" selects top-level projects.
func (c *Catalog) Children(parentID string) []models.Project {
	children := []models.Project{}

	for _, id := range c.projectIDs {
		p := c.projects[id]

		switch {
		case parentID == "" && p.ParentID == nil:
			children = append(children, p.Clone())
		case p.ParentID != nil && *p.ParentID == parentID:
			children = append(children, p.Clone())
		}
	}

	return children
}

// AddProject creates a top-level project owned by actorID, who becomes its only member.
func (c *Catalog) AddProject(actorID string, in NewProject) models.Project {
	templates := in.Phases
	if len(templates) == 0 {
		templates = c.starter
	}

	p := &models.Project{
		ID:          c.newID(ids.Project),
		Name:        in.Name,
		Description: in.Description,
		Color:       in.Color,
		MemberIDs:   []string{actorID},
		CreatedBy:   actorID,
		CreatedAt:   c.now(),
	}

	for i, tmpl := range templates {
		phase := models.Phase{ID: c.newID(ids.Phase), Name: tmpl.Name, Order: i, Color: tmpl.Color}
		p.Phases = append(p.Phases, phase)
		c.phaseProject[phase.ID] = p.ID
	}

	c.projects[p.ID] = p
	c.projectIDs = append(c.projectIDs, p.ID)

	return p.Clone()
}

// UpdateProject merges the patch into the project.
func (c *Catalog) UpdateProject(id string, patch ProjectPatch) (models.Project, error) {
	p, ok := c.projects[id]
	if !ok {
		return models.Project{}, models.NotFoundError{Kind: "project", ID: id}
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}

	if patch.Description != nil {
		p.Description = *patch.Description
	}

	if patch.Color != nil {
		p.Color = *patch.Color
	}

	return p.Clone(), nil
}

// SetParent moves the project under parentID, or to the top level when parentID is nil.
// The parent must exist and must not be the project itself or one of its descendants.
func (c *Catalog) SetParent(projectID string, parentID *string) error {
	p, ok := c.projects[projectID]
	if !ok {
		return models.NotFoundError{Kind: "project", ID: projectID}
	}

	if parentID == nil {
		p.ParentID = nil

		return nil
	}

	if _, ok := c.projects[*parentID]; !ok {
		return models.NotFoundError{Kind: "project", ID: *parentID}
	}

	// walk up from the new parent; meeting projectID means a cycle.
	seen := map[string]bool{}
	for cur := *parentID; ; {
		if cur == projectID {
			return fmt.Errorf("reparent %s under %s: %w", projectID, *parentID, ErrCycle)
		}

		if seen[cur] {
			return fmt.Errorf("reparent %s under %s: %w", projectID, *parentID, ErrCycle)
		}

		seen[cur] = true

		next := c.projects[cur].ParentID
		if next == nil {
			break
		}

		cur = *next
	}

	v := *parentID
	p.ParentID = &v

	return nil
}

// Ancestors returns the ids of the project's ancestors, nearest first.
func (c *Catalog) Ancestors(projectID string) []string {
	ancestors := []string{}
	seen := map[string]bool{projectID: true}

	p, ok := c.projects[projectID]
	for ok && p.ParentID != nil && !seen[*p.ParentID] {
		ancestors = append(ancestors, *p.ParentID)
		seen[*p.ParentID] = true
		p, ok = c.projects[*p.ParentID]
	}

	return ancestors
}

// AddPhase appends a phase to the right of the project's existing phases.
func (c *Catalog) AddPhase(projectID, name, color string) (models.Phase, error) {
	p, ok := c.projects[projectID]
	if !ok {
		return models.Phase{}, models.NotFoundError{Kind: "project", ID: projectID}
	}

	order := 0
	for _, ph := range p.Phases {
		if ph.Order >= order {
			order = ph.Order + 1
		}
	}

	phase := models.Phase{ID: c.newID(ids.Phase), Name: name, Order: order, Color: color}
	p.Phases = append(p.Phases, phase)
	c.phaseProject[phase.ID] = p.ID

	return phase, nil
}

// AddMember adds userID to the project's members; adding an existing member is a no-op.
func (c *Catalog) AddMember(projectID, userID string) error {
	p, ok := c.projects[projectID]
	if !ok {
		return models.NotFoundError{Kind: "project", ID: projectID}
	}

	for _, m := range p.MemberIDs {
		if m == userID {
			return nil
		}
	}

	p.MemberIDs = append(p.MemberIDs, userID)

	return nil
}

// Phase returns the phase with the given id along with its project's id.
func (c *Catalog) Phase(phaseID string) (models.Phase, string, bool) {
	projectID, ok := c.phaseProject[phaseID]
	if !ok {
		return models.Phase{}, "", false
	}

	for _, ph := range c.projects[projectID].Phases {
		if ph.ID == phaseID {
			return ph, projectID, true
		}
	}

	return models.Phase{}, "", false
}

// HasPhase reports whether phaseID belongs to projectID.
func (c *Catalog) HasPhase(projectID, phaseID string) bool {
	owner, ok := c.phaseProject[phaseID]

	return ok && owner == projectID
}
