package command

import (
	"fmt"

	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/template"
	"github.com/sceneforge/engine/internal/world"
)

// Command is one reversible mutation of a World.
type Command interface {
	Execute() error
	Undo() error
	Name() string
}

// CreateEntity builds an entity from a template. Undo destroys it; a redo
// builds a new entity under a new id.
type CreateEntity struct {
	world     *world.World
	templates *template.Manager
	template  string
	options   template.Options

	id      ecs.EntityID
	created bool
}

func NewCreateEntity(w *world.World, tm *template.Manager, name string, opts template.Options) *CreateEntity {
	return &CreateEntity{world: w, templates: tm, template: name, options: opts}
}

func (c *CreateEntity) Name() string { return "create " + c.template }

// Execute is a no-op for an unknown template.
func (c *CreateEntity) Execute() error {
	id, ok := c.templates.CreateEntityFromTemplate(c.template, c.options)
	c.id, c.created = id, ok
	return nil
}

func (c *CreateEntity) Undo() error {
	if !c.created {
		return nil
	}
	c.world.DestroyEntity(c.id)
	c.created = false
	return nil
}

// Entity returns the id of the entity built by the last Execute.
func (c *CreateEntity) Entity() (ecs.EntityID, bool) {
	return c.id, c.created
}

// DestroyEntity removes an entity and can bring it back. The entity's state
// is captured when the command is built, before anything is destroyed.
type DestroyEntity struct {
	world  *world.World
	target ecs.EntityID
	state  *world.EntityState
}

func NewDestroyEntity(w *world.World, id ecs.EntityID) *DestroyEntity {
	st, _ := w.FullEntityState(id)
	return &DestroyEntity{world: w, target: id, state: st}
}

func (c *DestroyEntity) Name() string { return fmt.Sprintf("destroy entity %d", c.target) }

// Execute destroys the current target: the original id, or the id of the
// most recent restore.
func (c *DestroyEntity) Execute() error {
	if c.state == nil {
		return fmt.Errorf("destroy entity %d: entity was not active when captured", c.target)
	}
	if !c.world.DestroyEntity(c.target) {
		return fmt.Errorf("destroy entity %d: not active", c.target)
	}
	return nil
}

// Undo recreates the entity from the captured state under a new id.
func (c *DestroyEntity) Undo() error {
	if c.state == nil {
		return nil
	}
	id, err := c.world.CreateEntityFromState(c.state)
	if err != nil {
		return fmt.Errorf("restore entity %d: %w", c.target, err)
	}
	c.target = id
	return nil
}

// Target is the id Execute will destroy next.
func (c *DestroyEntity) Target() ecs.EntityID { return c.target }

// UpdateComponent sets one component field, remembering the previous value.
type UpdateComponent struct {
	world     *world.World
	entity    ecs.EntityID
	component string
	key       string
	oldValue  any
	newValue  any
}

func NewUpdateComponent(w *world.World, e ecs.EntityID, component, key string, oldValue, newValue any) *UpdateComponent {
	return &UpdateComponent{
		world:     w,
		entity:    e,
		component: component,
		key:       key,
		oldValue:  oldValue,
		newValue:  newValue,
	}
}

// NewUpdateComponentFromCurrent reads the old value from the live component.
func NewUpdateComponentFromCurrent(w *world.World, e ecs.EntityID, component, key string, newValue any) (*UpdateComponent, error) {
	old, ok := w.Components().FieldValue(e, component, key)
	if !ok {
		return nil, fmt.Errorf("read %s.%s of entity %d: not found", component, key, e)
	}
	return NewUpdateComponent(w, e, component, key, old, newValue), nil
}

func (c *UpdateComponent) Name() string {
	return fmt.Sprintf("set %s.%s of entity %d", c.component, c.key, c.entity)
}

func (c *UpdateComponent) Execute() error {
	return c.set(c.newValue)
}

func (c *UpdateComponent) Undo() error {
	return c.set(c.oldValue)
}

func (c *UpdateComponent) set(v any) error {
	if !c.world.UpdateComponentData(c.entity, c.component, c.key, v) {
		return fmt.Errorf("%s: update rejected", c.Name())
	}
	return nil
}
