package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// CombatantInfo is a snapshot of a combatant's state passed to Lua hooks.
type CombatantInfo struct {
	ID       string
	Name     string
	HP       int
	MaxHP    int
	Enraged  bool
	Statuses []string
}

// Manager owns one sandboxed LState and dispatches named hooks into it.
//
// Manager is safe for concurrent CallHook after Load completes; the LState
// is single-threaded, so the mutex serializes hook execution.
type Manager struct {
	mu     sync.Mutex
	state  *lua.LState
	cancel func()
	log    *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetCombatant func(id string) *CombatantInfo
	ApplyStatus  func(targetID, kind string, stacks, duration int) error
	DealDamage   func(targetID string, amount int) error
	Heal         func(targetID string, amount int) error
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger must be non-nil.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{log: logger}
}

// Load creates a sandboxed VM, registers the engine.* modules, then executes
// every *.lua file in scriptDir in lexicographic order. Loading again
// replaces the previous VM.
//
// Precondition: scriptDir must be a readable directory.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}

	m.mu.Lock()
	m.replaceLocked(L, cancel)
	m.mu.Unlock()
	return nil
}

func (m *Manager) replaceLocked(L *lua.LState, cancel func()) {
	if m.state != nil {
		m.cancel()
		m.state.Close()
	}
	m.state = L
	m.cancel = cancel
}

// CallHook calls the named Lua global function. Returns (LNil, nil) when no
// VM is loaded or the hook is undefined. Lua runtime errors are logged at
// Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...lua.LValue) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == nil {
		m.log.Info("scripting: no VM loaded", zap.String("hook", hook))
		return lua.LNil, nil
	}
	fn := m.state.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	if err := m.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.log.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err))
		return lua.LNil, nil
	}

	ret := m.state.Get(-1)
	m.state.Pop(1)
	return ret, nil
}

// Hook adapts a named Lua hook into a plain callback taking a combatant id.
// Useful for wiring monster on_enrage hooks into the combat engine.
func (m *Manager) Hook(name string) func(id string) {
	return func(id string) {
		_, _ = m.CallHook(name, lua.LString(id))
	}
}

// Close tears down the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != nil {
		m.cancel()
		m.state.Close()
		m.state = nil
	}
}
