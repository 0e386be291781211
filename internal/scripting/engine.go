package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sceneforge/engine/internal/core/event"
	"github.com/sceneforge/engine/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// APIVersion is exposed to scripts as the API_VERSION global.
const APIVersion = 1

// ErrNoFunction is returned by Call when the global is missing or not a function.
var ErrNoFunction = errors.New("lua function not found")

// Engine wraps a single gopher-lua VM bound to one World. Scripts reach the
// world through the ecs and events tables.
// Single-goroutine access only (the frame goroutine).
type Engine struct {
	vm    *lua.LState
	world *world.World
	log   *zap.Logger

	subs       map[int]event.Subscription
	nextHandle int
}

// NewEngine creates a VM with the standard libraries and the world bindings
// installed. Load scripts with LoadDir or DoString.
func NewEngine(w *world.World, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(APIVersion))

	e := &Engine{
		vm:    vm,
		world: w,
		log:   log,
		subs:  make(map[int]event.Subscription),
	}
	e.openECS()
	e.openEvents()
	return e
}

// LoadDir runs every .lua file in dir in name order and returns how many
// were loaded. A missing directory loads nothing.
func (e *Engine) LoadDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read scripts %s: %w", dir, err)
	}
	n := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return n, fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
		n++
	}
	return n, nil
}

// DoString runs a chunk of Lua source.
func (e *Engine) DoString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("run lua chunk: %w", err)
	}
	return nil
}

// HasFunction reports whether a global Lua function is defined.
func (e *Engine) HasFunction(name string) bool {
	_, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	return ok
}

// Call invokes a global Lua function and returns its first result as a Go
// value (see fromLua).
func (e *Engine) Call(name string, args ...any) (any, error) {
	fn, ok := e.vm.GetGlobal(name).(*lua.LFunction)
	if !ok {
		return nil, fmt.Errorf("call %s: %w", name, ErrNoFunction)
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = toLua(e.vm, a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return fromLua(result), nil
}

// Subscriptions reports how many events.on handlers are live.
func (e *Engine) Subscriptions() int { return len(e.subs) }

// Close drops every script subscription and shuts down the Lua VM.
func (e *Engine) Close() {
	for h, sub := range e.subs {
		e.world.Bus().Unsubscribe(sub)
		delete(e.subs, h)
	}
	e.vm.Close()
}
