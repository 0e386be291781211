package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sceneforge/engine/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// writeConfig creates a config whose snapshots and scripts live under a
// temp dir.
func writeConfig(t *testing.T, extra string) (path, dir string) {
	t.Helper()
	dir = t.TempDir()
	scripts := filepath.Join(dir, "scripts")
	require.NoError(t, os.MkdirAll(scripts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(scripts, "tick.lua"), []byte(`
ticks = 0
function update(dt) ticks = ticks + 1 end
`), 0o644))

	body := fmt.Sprintf(`
[loop]
frame_interval = "1ms"

[scripting]
dir = %q

[snapshot]
driver = "file"
dir = %q

[logging]
level = "error"
%s`, scripts, filepath.Join(dir, "snapshots"), extra)
	path = filepath.Join(dir, "sceneforge.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path, dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "sceneforge", cmd.Use)

	for _, path := range [][]string{{"run"}, {"snapshot", "list"}, {"snapshot", "export"}, {"templates"}} {
		t.Run(strings.Join(path, " "), func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}

	flag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag)
	assert.Equal(t, "c", flag.Shorthand)
}

func TestRunCommand_SaveListExport(t *testing.T) {
	cfgPath, dir := writeConfig(t, "")

	out, err := execute(t, "--config", cfgPath, "run", "--frames", "3", "--spawn", "player,enemy,dragon", "--save", "demo")
	require.NoError(t, err)
	assert.Equal(t, "frames=3 entities=2\n", out)

	out, err = execute(t, "--config", cfgPath, "snapshot", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "demo")

	exported := filepath.Join(dir, "demo-export.yaml")
	_, err = execute(t, "--config", cfgPath, "snapshot", "export", "demo", "--out", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "PlayerControl:")

	out, err = execute(t, "--config", cfgPath, "run", "--frames", "1", "--load", "demo")
	require.NoError(t, err)
	assert.Equal(t, "frames=1 entities=2\n", out)
}

func TestRunCommand_MissingSnapshot(t *testing.T) {
	cfgPath, _ := writeConfig(t, "")
	_, err := execute(t, "--config", cfgPath, "run", "--frames", "1", "--load", "nowhere")
	assert.Error(t, err)
}

func TestTemplatesCommand(t *testing.T) {
	cfgPath, dir := writeConfig(t, "")
	out, err := execute(t, "--config", cfgPath, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "player: Position, Velocity")
	assert.Contains(t, out, "pickup: ")

	presets := filepath.Join(dir, "presets.yaml")
	require.NoError(t, os.WriteFile(presets, []byte(`
- name: turret
  components:
    - component: Position
    - component: Health
`), 0o644))
	cfgPath, _ = writeConfig(t, fmt.Sprintf("\n[templates]\nfile = %q\n", presets))
	out, err = execute(t, "--config", cfgPath, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "turret: Position, Health\n")
}

func TestNewLogger_Levels(t *testing.T) {
	log, err := newLogger(config.LoggingConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))

	log, err = newLogger(config.LoggingConfig{Level: "chatty", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLogger_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sceneforge.log")
	log, err := newLogger(config.LoggingConfig{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)
	log.Info("frame done")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(raw), &line))
	assert.Equal(t, "frame done", line["msg"])
	assert.Equal(t, "sceneforge", line["service"])
}
