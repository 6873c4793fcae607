package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/game/state"
)

// interactHook is the Lua global the interpreter dispatches interaction
// verbs to. Scripts define:
//
//	function on_interact(item_id, verb, flags)
//	  return { handled = true, message = "...", effects = { lit = true } }
//	end
//
// Returning nil (or handled = false) falls through to the built-in verb
// behavior. A handled refusal ("it is already burning") sets success =
// false; success defaults to true when omitted.
const interactHook = "on_interact"

// Manager owns one sandboxed LState holding the world's interaction rules.
//
// The VM is single-threaded; the mutex serializes concurrent Interact calls.
type Manager struct {
	mu     sync.Mutex
	vm     *lua.LState
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: logger is non-nil.
func NewManager(logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Manager{logger: logger}, nil
}

// LoadDir creates a sandboxed VM and executes every *.lua file in scriptDir
// in lexicographic order. A previously loaded VM is replaced.
//
// Precondition: scriptDir must be a readable directory.
func (m *Manager) LoadDir(scriptDir string, instLimit int) error {
	L, cancel := NewSandboxedState(instLimit)

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
	if m.vm != nil {
		m.cancel()
		m.vm.Close()
	}
	m.vm = L
	m.cancel = cancel
	m.mu.Unlock()

	m.logger.Info("interaction scripts loaded",
		zap.String("dir", scriptDir),
		zap.Int("files", len(luaFiles)))
	return nil
}

// Close releases the VM. Safe to call with no scripts loaded.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vm != nil {
		m.cancel()
		m.vm.Close()
		m.vm = nil
		m.cancel = nil
	}
}

// Interact runs the on_interact hook for an item/verb pair. The script sees
// a copy of the item's runtime flags and may return effects that are applied
// to the state on success.
//
// Postcondition: handled=false when no VM is loaded, the hook is undefined,
// or the script declines the pair; success=false when the script handled
// the verb but refused it. Lua runtime errors are returned, never panicked.
func (m *Manager) Interact(itemID, verb string, s *state.State) (handled, success bool, message string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.vm == nil {
		return false, false, "", nil
	}
	L := m.vm

	fn := L.GetGlobal(interactHook)
	if fn == lua.LNil {
		return false, false, "", nil
	}

	flags := L.NewTable()
	for key, value := range s.ItemFlags(itemID) {
		flags.RawSetString(key, lua.LBool(value))
	}

	if callErr := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(itemID), lua.LString(verb), flags); callErr != nil {
		return false, false, "", fmt.Errorf("scripting: %s(%q, %q): %w", interactHook, itemID, verb, callErr)
	}

	ret := L.Get(-1)
	L.Pop(1)

	result, ok := ret.(*lua.LTable)
	if !ok {
		return false, false, "", nil
	}
	if h, ok := result.RawGetString("handled").(lua.LBool); !ok || !bool(h) {
		return false, false, "", nil
	}

	success = true
	if flag, ok := result.RawGetString("success").(lua.LBool); ok {
		success = bool(flag)
	}

	message = "Done."
	if msg, ok := result.RawGetString("message").(lua.LString); ok && msg != "" {
		message = string(msg)
	}

	var applyErr error
	if effects, ok := result.RawGetString("effects").(*lua.LTable); ok {
		effects.ForEach(func(key, value lua.LValue) {
			name, ok := key.(lua.LString)
			if !ok {
				return
			}
			flag, ok := value.(lua.LBool)
			if !ok {
				return
			}
			if err := s.SetItemFlag(itemID, string(name), bool(flag)); err != nil && applyErr == nil {
				applyErr = err
			}
		})
	}
	if applyErr != nil {
		return false, false, "", fmt.Errorf("scripting: applying effects for %q: %w", itemID, applyErr)
	}

	return true, success, message, nil
}
