package system

import (
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/core/event"
	"go.uber.org/zap"
)

// DefaultMaxConsecutiveErrors is how many failed updates in a row disable a system.
const DefaultMaxConsecutiveErrors = 10

// TopicSystemDisabled is published when a system is switched off after
// repeated failures. Payload: Disabled.
const TopicSystemDisabled = "system:disabled"

// Disabled describes an automatically disabled system.
type Disabled struct {
	ID       uint64
	Name     string
	Failures int
	Err      error
}

// Entry is one registration.
type Entry struct {
	System   System
	Priority Priority
	Active   bool
	ID       uint64

	removed bool
}

// Manager runs registered systems once per frame in priority order, each
// inside its own fault boundary.
type Manager struct {
	entries   []*Entry
	failures  map[uint64]int
	nextID    uint64
	maxErrors int

	em  *ecs.EntityManager
	cm  *ecs.ComponentManager
	bus *event.Bus
	log *zap.Logger
}

func NewManager(em *ecs.EntityManager, cm *ecs.ComponentManager, bus *event.Bus, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		entries:   make([]*Entry, 0, 16),
		failures:  make(map[uint64]int),
		maxErrors: DefaultMaxConsecutiveErrors,
		em:        em,
		cm:        cm,
		bus:       bus,
		log:       log,
	}
}

// SetMaxConsecutiveErrors changes the auto-disable threshold. Values below 1
// restore the default.
func (m *Manager) SetMaxConsecutiveErrors(n int) {
	if n < 1 {
		n = DefaultMaxConsecutiveErrors
	}
	m.maxErrors = n
}

// Register adds s with the given priority. The same instance cannot be
// registered twice; systems are compared by identity, so register pointers.
func (m *Manager) Register(s System, priority Priority) bool {
	if s == nil {
		return false
	}
	if !reflect.TypeOf(s).Comparable() {
		m.log.Error("system type is not comparable, register a pointer",
			zap.String("system", systemName(s)))
		return false
	}
	if m.find(s) >= 0 {
		m.log.Warn("system already registered", zap.String("system", systemName(s)))
		return false
	}
	m.nextID++
	m.entries = append(m.entries, &Entry{
		System:   s,
		Priority: priority,
		Active:   true,
		ID:       m.nextID,
	})
	m.sort()
	return true
}

func (m *Manager) Unregister(s System) bool {
	i := m.find(s)
	if i < 0 {
		m.log.Warn("unregister of unknown system", zap.String("system", systemName(s)))
		return false
	}
	delete(m.failures, m.entries[i].ID)
	m.entries[i].removed = true
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	return true
}

// Toggle flips the active flag. ok is false if s is not registered.
func (m *Manager) Toggle(s System) (active bool, ok bool) {
	i := m.find(s)
	if i < 0 {
		return false, false
	}
	e := m.entries[i]
	e.Active = !e.Active
	return e.Active, true
}

// SetActive forces the active flag. ok is false if s is not registered.
func (m *Manager) SetActive(s System, on bool) (active bool, ok bool) {
	i := m.find(s)
	if i < 0 {
		return false, false
	}
	m.entries[i].Active = on
	return on, true
}

// Failures returns the current consecutive failure count of s.
func (m *Manager) Failures(s System) int {
	i := m.find(s)
	if i < 0 {
		return 0
	}
	return m.failures[m.entries[i].ID]
}

// Entries returns a copy of the registrations in execution order.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	for i, e := range m.entries {
		out[i] = *e
	}
	return out
}

func (m *Manager) Len() int { return len(m.entries) }

// UpdateAll runs every active system once. Failures never escape: each is
// counted against its system, which is disabled once the count reaches the
// threshold.
func (m *Manager) UpdateAll(dt time.Duration) {
	// Copy so systems may register or unregister others mid-frame.
	entries := append([]*Entry(nil), m.entries...)
	for _, e := range entries {
		if !e.Active || e.removed {
			continue
		}
		if err := m.run(e, dt); err != nil {
			m.fail(e, err)
			continue
		}
		delete(m.failures, e.ID)
	}
}

func (m *Manager) run(e *Entry, dt time.Duration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.System.Update(dt, m.em, m.cm)
}

func (m *Manager) fail(e *Entry, err error) {
	m.failures[e.ID]++
	n := m.failures[e.ID]
	name := systemName(e.System)
	m.log.Error("system update failed",
		zap.String("system", name),
		zap.Uint64("id", e.ID),
		zap.Int("consecutive", n),
		zap.Error(err))
	if n < m.maxErrors {
		return
	}
	e.Active = false
	delete(m.failures, e.ID)
	m.log.Error("system disabled after repeated failures",
		zap.String("system", name),
		zap.Int("failures", n))
	if m.bus != nil {
		m.bus.Publish(TopicSystemDisabled, Disabled{ID: e.ID, Name: name, Failures: n, Err: err})
	}
}

func (m *Manager) find(s System) int {
	if s == nil || !reflect.TypeOf(s).Comparable() {
		return -1
	}
	for i, e := range m.entries {
		if e.System == s {
			return i
		}
	}
	return -1
}

// sort orders by priority descending, then registration order.
func (m *Manager) sort() {
	sort.Slice(m.entries, func(i, j int) bool {
		a, b := m.entries[i], m.entries[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.ID < b.ID
	})
}

func systemName(s System) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", s)
}
