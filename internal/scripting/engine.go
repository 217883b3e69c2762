package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/creaturepen/simcore/internal/core/event"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM that observes the simulation. Scripts
// see copies of events and tick numbers only; nothing flows back into the
// simulation. Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// handler names looked up per event kind.
var handlerNames = map[event.Kind]string{
	event.Spawned:      "on_spawned",
	event.Removed:      "on_removed",
	event.EmoteChanged: "on_emote_changed",
	event.EmoteCleared: "on_emote_cleared",
}

// NewEngine creates a Lua engine and loads every script in scriptsDir, in
// file name order. A missing directory yields an engine with no handlers.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	if err := e.loadDir(scriptsDir); err != nil {
		e.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	e := &Engine{vm: vm, log: log}
	vm.SetGlobal("log", vm.NewFunction(e.luaLog))
	return e
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source, typically to define handlers.
func (e *Engine) LoadString(src string) error {
	return e.vm.DoString(src)
}

// HandleEvent passes ev to the matching on_<kind> Lua function, if defined.
// Script errors are logged and swallowed.
func (e *Engine) HandleEvent(ev event.Event) {
	name, ok := handlerNames[ev.Kind]
	if !ok {
		return
	}
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		return
	}

	t := e.vm.NewTable()
	t.RawSetString("seq", lua.LNumber(ev.Seq))
	t.RawSetString("tick", lua.LNumber(ev.Tick))
	t.RawSetString("id", lua.LString(ev.EntityID.String()))
	t.RawSetString("kind", lua.LString(ev.Payload.EntityKind))
	t.RawSetString("x", lua.LNumber(ev.Payload.Position.X))
	t.RawSetString("y", lua.LNumber(ev.Payload.Position.Y))
	t.RawSetString("emote", lua.LString(ev.Payload.Emote))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua event handler failed", zap.String("handler", name), zap.Error(err))
	}
}

// HandleTick calls the Lua on_tick function, if defined.
func (e *Engine) HandleTick(tick uint64) {
	fn := e.vm.GetGlobal("on_tick")
	if fn == lua.LNil {
		return
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(tick)); err != nil {
		e.log.Error("lua tick handler failed", zap.Uint64("tick", tick), zap.Error(err))
	}
}

// HasTickHandler reports whether scripts defined on_tick.
func (e *Engine) HasTickHandler() bool {
	return e.vm.GetGlobal("on_tick") != lua.LNil
}

// Close releases the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("lua", zap.String("msg", L.CheckString(1)))
	return 0
}
