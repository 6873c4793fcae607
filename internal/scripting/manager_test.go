package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lantern-engine/lantern/internal/game/state"
	"github.com/lantern-engine/lantern/internal/world"
)

const lampYAML = `
region:
  id: cellar
  name: "The Cellar"
  start_scene: stairs
  scenes:
    - id: stairs
      title: "Cellar Stairs"
      description: "Stone steps descend into gloom."
      items: [lantern]
  items:
    - id: lantern
      name: "brass lantern"
      description: "A battered brass lantern."
      portable: true
      weight: 3
      type: light
      initial_state:
        lit: false
`

const interactScript = `
function on_interact(item_id, verb, flags)
  if item_id == "lantern" and verb == "light" then
    if flags.lit then
      return { handled = true, success = false, message = "It is already burning." }
    end
    return { handled = true, message = "The wick catches at once.", effects = { lit = true } }
  end
  return nil
end
`

func testState(t *testing.T) *state.State {
	t.Helper()
	region, err := world.LoadRegionFromBytes([]byte(lampYAML))
	require.NoError(t, err)
	graph, err := world.NewGraph([]*world.Region{region})
	require.NoError(t, err)
	s, err := state.New(graph)
	require.NoError(t, err)
	return s
}

func writeScript(t *testing.T, name, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	return dir
}

func loadedManager(t *testing.T, script string) *Manager {
	t.Helper()
	m, err := NewManager(zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(m.Close)
	require.NoError(t, m.LoadDir(writeScript(t, "rules.lua", script), 0))
	return m
}

func TestInteract_NoScriptsLoaded(t *testing.T) {
	m, err := NewManager(zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	handled, _, _, err := m.Interact("lantern", "light", testState(t))
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestInteract_AppliesEffects(t *testing.T) {
	m := loadedManager(t, interactScript)
	s := testState(t)

	handled, success, message, err := m.Interact("lantern", "light", s)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.True(t, success)
	assert.Equal(t, "The wick catches at once.", message)
	assert.True(t, s.ItemFlag("lantern", "lit"))
}

func TestInteract_RefusalReportsFailure(t *testing.T) {
	m := loadedManager(t, interactScript)
	s := testState(t)
	require.NoError(t, s.SetItemFlag("lantern", "lit", true))

	handled, success, message, err := m.Interact("lantern", "light", s)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.False(t, success)
	assert.Equal(t, "It is already burning.", message)
	assert.True(t, s.ItemFlag("lantern", "lit"))
}

func TestInteract_SuccessDefaultsTrue(t *testing.T) {
	m := loadedManager(t, `
function on_interact(item_id, verb, flags)
  return { handled = true, message = "Done quietly." }
end
`)

	_, success, _, err := m.Interact("lantern", "light", testState(t))
	require.NoError(t, err)
	assert.True(t, success)
}

func TestInteract_DeclinesUnknownPair(t *testing.T) {
	m := loadedManager(t, interactScript)

	handled, _, _, err := m.Interact("lantern", "open", testState(t))
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestInteract_HookUndefined(t *testing.T) {
	m := loadedManager(t, `greeting = "no hooks here"`)

	handled, _, _, err := m.Interact("lantern", "light", testState(t))
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestInteract_RuntimeError(t *testing.T) {
	m := loadedManager(t, `
function on_interact(item_id, verb, flags)
  error("rule exploded")
end
`)

	_, _, _, err := m.Interact("lantern", "light", testState(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "on_interact")
}

func TestLoadDir_MissingDir(t *testing.T) {
	m, err := NewManager(zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	assert.Error(t, m.LoadDir(filepath.Join(t.TempDir(), "absent"), 0))
}

func TestLoadDir_BadLua(t *testing.T) {
	m, err := NewManager(zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	assert.Error(t, m.LoadDir(writeScript(t, "broken.lua", "function (("), 0))
}

func TestLoadDir_InstructionLimitStopsRunawayScript(t *testing.T) {
	m, err := NewManager(zap.NewNop())
	require.NoError(t, err)
	defer m.Close()

	err = m.LoadDir(writeScript(t, "spin.lua", "while true do end"), 10_000)
	assert.Error(t, err)
}

func TestLoadDir_LexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "10_second.lua"),
		[]byte(`loaded = loaded .. "b"`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "00_first.lua"),
		[]byte(`loaded = "a"`), 0o644))

	m, err := NewManager(zap.NewNop())
	require.NoError(t, err)
	defer m.Close()
	require.NoError(t, m.LoadDir(dir, 0))
}

func TestSandbox_StripsDangerousGlobals(t *testing.T) {
	L, cancel := NewSandboxedState(0)
	defer cancel()
	defer L.Close()

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		assert.Equal(t, "nil", L.GetGlobal(name).Type().String(), name)
	}
	assert.NotEqual(t, "nil", L.GetGlobal("pairs").Type().String())
}
