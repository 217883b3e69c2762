package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creaturepen/simcore/internal/core/ecs"
	"github.com/creaturepen/simcore/internal/core/event"
	"github.com/creaturepen/simcore/internal/world"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestHandleEventDispatchesByKind(t *testing.T) {
	e := newEngine(zap.NewNop())
	defer e.Close()
	if err := e.LoadString(`
spawned = 0
last_emote = ""
function on_spawned(ev) spawned = spawned + 1; last_kind = ev.kind end
function on_emote_changed(ev) last_emote = ev.emote; last_x = ev.x end
`); err != nil {
		t.Fatalf("LoadString: %v", err)
	}

	e.HandleEvent(event.Event{Kind: event.Spawned, EntityID: ecs.EntityID(1), Payload: event.Payload{EntityKind: "krip"}})
	e.HandleEvent(event.Event{Kind: event.Spawned, EntityID: ecs.EntityID(2)})
	e.HandleEvent(event.Event{Kind: event.EmoteChanged, Payload: event.Payload{Emote: "heart", Position: world.Vec2{X: 12.5}}})
	e.HandleEvent(event.Event{Kind: event.Removed}) // no handler defined

	if got := e.vm.GetGlobal("spawned"); got != lua.LNumber(2) {
		t.Fatalf("spawned = %v, want 2", got)
	}
	if got := e.vm.GetGlobal("last_emote"); got != lua.LString("heart") {
		t.Fatalf("last_emote = %v, want heart", got)
	}
	if got := e.vm.GetGlobal("last_x"); got != lua.LNumber(12.5) {
		t.Fatalf("last_x = %v, want 12.5", got)
	}
}

func TestHandlerErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	e := newEngine(zap.New(core))
	defer e.Close()
	if err := e.LoadString(`function on_removed(ev) error("boom") end`); err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	e.HandleEvent(event.Event{Kind: event.Removed})
	if logs.FilterMessage("lua event handler failed").Len() != 1 {
		t.Fatalf("expected one logged handler failure, got %d entries", logs.Len())
	}
}

func TestNewEngineLoadsScriptsAndTicks(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("01_state.lua", `ticks = 0`)
	write("02_tick.lua", `function on_tick(tick) ticks = ticks + 1; last_tick = tick; log("tick " .. tick) end`)
	write("notes.txt", `this is not lua`)

	core, logs := observer.New(zap.InfoLevel)
	e, err := NewEngine(dir, zap.New(core))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	if !e.HasTickHandler() {
		t.Fatal("on_tick not found")
	}
	e.HandleTick(7)
	e.HandleTick(8)
	if got := e.vm.GetGlobal("ticks"); got != lua.LNumber(2) {
		t.Fatalf("ticks = %v, want 2", got)
	}
	if got := e.vm.GetGlobal("last_tick"); got != lua.LNumber(8) {
		t.Fatalf("last_tick = %v, want 8", got)
	}
	if logs.FilterMessage("lua").Len() != 2 {
		t.Fatalf("lua log() calls recorded = %d, want 2", logs.FilterMessage("lua").Len())
	}
}

func TestNewEngineMissingDirAndBadScript(t *testing.T) {
	e, err := NewEngine(filepath.Join(t.TempDir(), "absent"), nil)
	if err != nil {
		t.Fatalf("missing dir: %v", err)
	}
	if e.HasTickHandler() {
		t.Fatal("empty engine reports a tick handler")
	}
	e.Close()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte(`function (`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, nil); err == nil {
		t.Fatal("syntax error not reported")
	}
}
