package scripting

import (
	"math"

	"github.com/sceneforge/engine/internal/core/ecs"
	"github.com/sceneforge/engine/internal/core/event"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// --- ecs table ---

func (e *Engine) openECS() {
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"create":  e.luaCreate,
		"destroy": e.luaDestroy,
		"alive":   e.luaAlive,
		"query":   e.luaQuery,
		"has":     e.luaHas,
		"get":     e.luaGet,
		"set":     e.luaSet,
		"add":     e.luaAdd,
		"remove":  e.luaRemove,
		"select":  e.luaSelect,
	})
	e.vm.SetGlobal("ecs", mod)
}

// checkEntity reads argument n as an entity id.
func checkEntity(L *lua.LState, n int) ecs.EntityID {
	v := float64(L.CheckNumber(n))
	if v < 0 || v != math.Trunc(v) {
		L.ArgError(n, "entity id expected")
		return 0
	}
	return ecs.EntityID(v)
}

// ecs.create() -> id
func (e *Engine) luaCreate(L *lua.LState) int {
	L.Push(lua.LNumber(e.world.CreateEntity()))
	return 1
}

// ecs.destroy(id) -> bool
func (e *Engine) luaDestroy(L *lua.LState) int {
	L.Push(lua.LBool(e.world.DestroyEntity(checkEntity(L, 1))))
	return 1
}

// ecs.alive(id) -> bool
func (e *Engine) luaAlive(L *lua.LState) int {
	L.Push(lua.LBool(e.world.Entities().Alive(checkEntity(L, 1))))
	return 1
}

// ecs.query(name, ...) -> {id, ...} in ascending id order
func (e *Engine) luaQuery(L *lua.LState) int {
	names := make([]string, 0, L.GetTop())
	for i := 1; i <= L.GetTop(); i++ {
		names = append(names, L.CheckString(i))
	}
	t := L.NewTable()
	for i, id := range e.world.Components().EntitiesWith(names...).Sorted() {
		t.RawSetInt(i+1, lua.LNumber(id))
	}
	L.Push(t)
	return 1
}

// ecs.has(id, component) -> bool
func (e *Engine) luaHas(L *lua.LState) int {
	L.Push(lua.LBool(e.world.Components().Has(checkEntity(L, 1), L.CheckString(2))))
	return 1
}

// ecs.get(id, component) -> table of fields, or nil
func (e *Engine) luaGet(L *lua.LState) int {
	d, ok := e.world.Components().Encode(checkEntity(L, 1), L.CheckString(2))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLua(L, d))
	return 1
}

// ecs.set(id, component, field, value) -> bool
func (e *Engine) luaSet(L *lua.LState) int {
	id := checkEntity(L, 1)
	name := L.CheckString(2)
	key := L.CheckString(3)
	L.Push(lua.LBool(e.world.UpdateComponentData(id, name, key, fromLua(L.CheckAny(4)))))
	return 1
}

// ecs.add(id, component [, fields]) -> bool
func (e *Engine) luaAdd(L *lua.LState) int {
	id := checkEntity(L, 1)
	name := L.CheckString(2)
	fields := L.OptTable(3, nil)

	ct, ok := e.world.ComponentType(name)
	if !ok || !e.world.Entities().Alive(id) {
		e.log.Warn("lua add rejected",
			zap.Uint64("entity", uint64(id)),
			zap.String("component", name))
		L.Push(lua.LFalse)
		return 1
	}
	c, err := e.world.Components().Add(id, ct)
	if err != nil {
		e.log.Error("lua add failed", zap.String("component", name), zap.Error(err))
		L.Push(lua.LFalse)
		return 1
	}
	if fields != nil {
		for _, k := range sortedTableKeys(fields) {
			if err := ct.Set(c, k, fromLua(fields.RawGetString(k))); err != nil {
				e.log.Warn("lua field rejected", zap.String("component", name), zap.Error(err))
			}
		}
	}
	L.Push(lua.LTrue)
	return 1
}

// ecs.remove(id, component) -> bool
func (e *Engine) luaRemove(L *lua.LState) int {
	L.Push(lua.LBool(e.world.Components().Remove(checkEntity(L, 1), L.CheckString(2))))
	return 1
}

// ecs.select(id) -> bool; ecs.select() clears the selection
func (e *Engine) luaSelect(L *lua.LState) int {
	if L.GetTop() == 0 || L.Get(1) == lua.LNil {
		e.world.Deselect()
		L.Push(lua.LTrue)
		return 1
	}
	L.Push(lua.LBool(e.world.SelectEntity(checkEntity(L, 1))))
	return 1
}

// --- events table ---

func (e *Engine) openEvents() {
	mod := e.vm.SetFuncs(e.vm.NewTable(), map[string]lua.LGFunction{
		"on":   e.luaOn,
		"off":  e.luaOff,
		"emit": e.luaEmit,
	})
	e.vm.SetGlobal("events", mod)
}

// events.on(topic, fn) -> handle. fn receives the payload converted to Lua.
func (e *Engine) luaOn(L *lua.LState) int {
	topic := L.CheckString(1)
	fn := L.CheckFunction(2)

	sub := e.world.Bus().Subscribe(topic, func(ev event.Event) error {
		return e.vm.CallByParam(lua.P{
			Fn:      fn,
			NRet:    0,
			Protect: true,
		}, toLua(e.vm, ev.Payload))
	})
	e.nextHandle++
	e.subs[e.nextHandle] = sub
	L.Push(lua.LNumber(e.nextHandle))
	return 1
}

// events.off(handle) -> bool
func (e *Engine) luaOff(L *lua.LState) int {
	h := L.CheckInt(1)
	sub, ok := e.subs[h]
	if !ok {
		L.Push(lua.LFalse)
		return 1
	}
	delete(e.subs, h)
	L.Push(lua.LBool(e.world.Bus().Unsubscribe(sub)))
	return 1
}

// events.emit(topic [, payload])
func (e *Engine) luaEmit(L *lua.LState) int {
	topic := L.CheckString(1)
	e.world.Bus().Publish(topic, fromLua(L.Get(2)))
	return 0
}
