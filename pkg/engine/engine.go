// Package engine is the only way callers change boards. Every mutation takes the acting user
// explicitly, validates references before touching state, and reports unknown ids as a
// NotFound outcome rather than an error.
package engine

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/matt-steen/taskboard/pkg/catalog"
	"github.com/matt-steen/taskboard/pkg/config"
	"github.com/matt-steen/taskboard/pkg/ids"
	"github.com/matt-steen/taskboard/pkg/models"
	"github.com/matt-steen/taskboard/pkg/store"
	"github.com/matt-steen/taskboard/pkg/views"
)

// Engine ties the catalog and the task store together. It is safe for use from several
// goroutines, though it is meant for a single writer.
type Engine struct {
	mu      sync.RWMutex
	catalog *catalog.Catalog
	tasks   *store.Store

	now         func() time.Time
	dropMode    store.DropMode
	dueSoonDays int
	recentLimit int
}

type settings struct {
	now         func() time.Time
	newID       ids.Generator
	starter     []catalog.PhaseTemplate
	dropMode    store.DropMode
	dueSoonDays int
	recentLimit int
}

// Option configures an Engine.
type Option func(*settings)

// WithClock sets the time source for every timestamp the engine writes.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithIDs sets the id generator.
func WithIDs(gen ids.Generator) Option {
	return func(s *settings) { s.newID = gen }
}

// WithStarterPhases sets the phases of new projects.
func WithStarterPhases(phases []catalog.PhaseTemplate) Option {
	return func(s *settings) { s.starter = phases }
}

// WithDropMode chooses how drops into another phase are placed.
func WithDropMode(mode store.DropMode) Option {
	return func(s *settings) { s.dropMode = mode }
}

// WithDueSoonDays sets the due-soon window.
func WithDueSoonDays(days int) Option {
	return func(s *settings) { s.dueSoonDays = days }
}

// WithRecentActivityLimit sets the length of the recent activity feed.
func WithRecentActivityLimit(n int) Option {
	return func(s *settings) { s.recentLimit = n }
}

// ConfigOptions translates the user config into engine options.
func ConfigOptions(cfg *config.Config) ([]Option, error) {
	mode, err := store.ParseDropMode(cfg.DropMode)
	if err != nil {
		return nil, err
	}

	phases := make([]catalog.PhaseTemplate, 0, len(cfg.StarterPhases))
	for _, p := range cfg.StarterPhases {
		phases = append(phases, catalog.PhaseTemplate{Name: p.Name, Color: p.Color})
	}

	return []Option{
		WithDropMode(mode),
		WithDueSoonDays(cfg.DueSoonDays),
		WithRecentActivityLimit(cfg.RecentActivityLimit),
		WithStarterPhases(phases),
	}, nil
}

// New returns an empty engine.
func New(opts ...Option) *Engine {
	s := settings{
		now:         time.Now,
		newID:       ids.New,
		dropMode:    store.DropAppend,
		dueSoonDays: views.DefaultDueSoonDays,
		recentLimit: views.DefaultRecentActivity,
	}

	for _, opt := range opts {
		opt(&s)
	}

	if s.recentLimit <= 0 {
		s.recentLimit = views.DefaultRecentActivity
	}

	return &Engine{
		catalog: catalog.New(
			catalog.WithClock(s.now),
			catalog.WithIDs(s.newID),
			catalog.WithStarterPhases(s.starter),
		),
		tasks:       store.New(store.WithClock(s.now), store.WithIDs(s.newID)),
		now:         s.now,
		dropMode:    s.dropMode,
		dueSoonDays: s.dueSoonDays,
		recentLimit: s.recentLimit,
	}
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// DropMode returns the placement used for drops into another phase.
func (e *Engine) DropMode() store.DropMode {
	return e.dropMode
}

// checkActor must be called with the lock held.
func (e *Engine) checkActor(op string, actor Actor) error {
	if _, ok := e.catalog.User(actor.UserID); !ok {
		return invalid(op, "unknown acting user "+actor.UserID)
	}

	return nil
}

// AddUser registers a user. Users are immutable once added.
func (e *Engine) AddUser(name, avatar string) models.User {
	e.mu.Lock()
	defer e.mu.Unlock()

	u := e.catalog.AddUser(name, avatar)
	log.Debug().Str("user", u.ID).Msgf("added user '%s'", name)

	return u
}

// AddTag registers a tag, or returns the existing tag with the same name.
func (e *Engine) AddTag(name string) models.Tag {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.catalog.AddTag(name)
}

// AddProject creates a top-level project with the starter phases (or in.Phases when given).
func (e *Engine) AddProject(actor Actor, in catalog.NewProject) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor("add project", actor); err != nil {
		return Result{}, err
	}

	p := e.catalog.AddProject(actor.UserID, in)
	log.Debug().Str("actor", actor.UserID).Str("project", p.ID).Msgf("added project '%s'", p.Name)

	return applied("project", p.ID), nil
}

// UpdateProject merges the patch into the project.
func (e *Engine) UpdateProject(actor Actor, projectID string, patch catalog.ProjectPatch) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor("update project", actor); err != nil {
		return Result{}, err
	}

	if _, err := e.catalog.UpdateProject(projectID, patch); err != nil {
		return e.fail("update project", err)
	}

	log.Debug().Str("actor", actor.UserID).Str("project", projectID).Msg("updated project")

	return applied("project", projectID), nil
}

// SetProjectParent nests the project under parentID, or makes it top-level when parentID is nil.
func (e *Engine) SetProjectParent(actor Actor, projectID string, parentID *string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor("set project parent", actor); err != nil {
		return Result{}, err
	}

	if err := e.catalog.SetParent(projectID, parentID); err != nil {
		if errors.Is(err, catalog.ErrCycle) {
			return Result{}, &ValidationError{Op: "set project parent", Reason: "cycle", Err: err}
		}

		return e.fail("set project parent", err)
	}

	return applied("project", projectID), nil
}

// AddPhase appends a phase to the project's board.
func (e *Engine) AddPhase(actor Actor, projectID, name, color string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor("add phase", actor); err != nil {
		return Result{}, err
	}

	ph, err := e.catalog.AddPhase(projectID, name, color)
	if err != nil {
		return e.fail("add phase", err)
	}

	return applied("phase", ph.ID), nil
}

// AddMember adds a user to the project's members.
func (e *Engine) AddMember(actor Actor, projectID, userID string) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActor("add member", actor); err != nil {
		return Result{}, err
	}

	if _, ok := e.catalog.User(userID); !ok {
		return missing("user", userID), nil
	}

	if err := e.catalog.AddMember(projectID, userID); err != nil {
		return e.fail("add member", err)
	}

	return applied("project", projectID), nil
}

// fail turns a not-found error into a NotFound result and passes anything else through.
func (e *Engine) fail(op string, err error) (Result, error) {
	if res, ok := asNotFound(err); ok {
		log.Warn().Str("op", op).Str("kind", res.Kind).Str("id", res.ID).Msg("unknown id")

		return res, nil
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		switch {
		case errors.Is(err, store.ErrInvalidDrop), errors.Is(err, store.ErrInvalidReorder):
			err = &ValidationError{Op: op, Reason: "rejected", Err: err}
		}
	}

	log.Warn().Err(err).Str("op", op).Msg("mutation rejected")

	return Result{}, err
}
