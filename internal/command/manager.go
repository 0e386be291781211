package command

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sceneforge/engine/internal/core/event"
	"go.uber.org/zap"
)

// History topics. Payloads are nil.
const (
	TopicCommandExecuted = "command:executed"
	TopicCommandUndone   = "command:undone"
	TopicCommandRedone   = "command:redone"
)

// Entry describes one command in the history.
type Entry struct {
	ID   uuid.UUID
	Name string
	At   time.Time
}

type record struct {
	cmd   Command
	entry Entry
}

// Manager keeps the undo and redo stacks. A failed undo or redo puts the
// command back where it came from, so history is never lost.
type Manager struct {
	undo     []record
	redo     []record
	maxDepth int

	bus *event.Bus
	log *zap.Logger
}

func NewManager(bus *event.Bus, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{bus: bus, log: log}
}

// SetMaxDepth caps the undo stack; the oldest entries are dropped first.
// Zero or less means unlimited.
func (m *Manager) SetMaxDepth(n int) {
	m.maxDepth = n
	m.trim()
}

// Execute runs cmd and records it. A failed command is logged, not recorded,
// and its error returned.
func (m *Manager) Execute(cmd Command) error {
	if err := protect(cmd.Execute); err != nil {
		m.log.Error("command failed", zap.String("command", cmd.Name()), zap.Error(err))
		return fmt.Errorf("execute %s: %w", cmd.Name(), err)
	}
	m.undo = append(m.undo, record{
		cmd:   cmd,
		entry: Entry{ID: uuid.Must(uuid.NewV7()), Name: cmd.Name(), At: time.Now()},
	})
	m.redo = m.redo[:0]
	m.trim()
	m.publish(TopicCommandExecuted)
	return nil
}

// Undo reverts the most recent command. It is a no-op on an empty stack.
func (m *Manager) Undo() error {
	if len(m.undo) == 0 {
		return nil
	}
	r := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	if err := protect(r.cmd.Undo); err != nil {
		m.undo = append(m.undo, r)
		m.log.Error("undo failed", zap.String("command", r.entry.Name), zap.Error(err))
		return fmt.Errorf("undo %s: %w", r.entry.Name, err)
	}
	m.redo = append(m.redo, r)
	m.publish(TopicCommandUndone)
	return nil
}

// Redo re-executes the most recently undone command.
func (m *Manager) Redo() error {
	if len(m.redo) == 0 {
		return nil
	}
	r := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	if err := protect(r.cmd.Execute); err != nil {
		m.redo = append(m.redo, r)
		m.log.Error("redo failed", zap.String("command", r.entry.Name), zap.Error(err))
		return fmt.Errorf("redo %s: %w", r.entry.Name, err)
	}
	m.undo = append(m.undo, r)
	m.trim()
	m.publish(TopicCommandRedone)
	return nil
}

func (m *Manager) CanUndo() bool { return len(m.undo) > 0 }
func (m *Manager) CanRedo() bool { return len(m.redo) > 0 }
func (m *Manager) UndoLen() int { return len(m.undo) }
func (m *Manager) RedoLen() int { return len(m.redo) }

// History lists the undo stack, oldest first.
func (m *Manager) History() []Entry {
	out := make([]Entry, len(m.undo))
	for i, r := range m.undo {
		out[i] = r.entry
	}
	return out
}

// Clear drops both stacks, e.g. after loading a snapshot.
func (m *Manager) Clear() {
	m.undo = nil
	m.redo = nil
}

func (m *Manager) trim() {
	if m.maxDepth <= 0 || len(m.undo) <= m.maxDepth {
		return
	}
	drop := len(m.undo) - m.maxDepth
	m.undo = append(m.undo[:0], m.undo[drop:]...)
}

func (m *Manager) publish(topic string) {
	if m.bus != nil {
		m.bus.Publish(topic, nil)
	}
}

func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
