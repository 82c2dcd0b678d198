package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draytht/lvsk-calendar-extended/internal/common"
)

var idPattern = regexp.MustCompile(`\(([0-9a-f-]{36})\)`)

// fixture holds one throwaway installation: a config file pointing every
// path into a temp directory, shared by the invocations of one test.
type fixture struct {
	configPath string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	// Ambient settings must not leak into the run.
	for _, k := range []string{
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
		"LVSK_DB_PATH", "LVSK_LOG_LEVEL", "LVSK_LOG_FILE",
	} {
		t.Setenv(k, "")
	}

	dir := t.TempDir()
	content := fmt.Sprintf(`db_path = %q

[sync]
auto_sync = false

[log]
level = "error"
file = %q
`, filepath.Join(dir, "lvsk.db"), filepath.Join(dir, "lvsk.log"))

	configPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return &fixture{configPath: configPath}
}

// run executes one lvsk invocation and returns what it printed.
func (f *fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	app := New()
	var out bytes.Buffer
	app.Writer = &out

	argv := append([]string{"lvsk", "--config", f.configPath}, args...)
	err := app.Run(argv)
	return out.String(), err
}

// extractID pulls the record id out of an "Added ..." confirmation.
func extractID(t *testing.T, out string) string {
	t.Helper()
	m := idPattern.FindStringSubmatch(out)
	require.NotNil(t, m, "no id in output: %q", out)
	return m[1]
}

func TestApp_EventAddListRemove(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "events", "add",
		"--date", "2026-03-10", "--start", "09:00", "--end", "09:15", "Standup")
	require.NoError(t, err)
	assert.Contains(t, out, `Added event "Standup"`)
	id := extractID(t, out)

	out, err = f.run(t, "events", "list", "--date", "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "09:00-09:15")
	assert.Contains(t, out, "Standup")
	assert.Contains(t, out, "*", "a never-synced event is marked dirty")

	out, err = f.run(t, "events", "list", "--date", "2026-03-11")
	require.NoError(t, err)
	assert.Contains(t, out, "No events on 2026-03-11.")

	_, err = f.run(t, "events", "rm", id)
	require.NoError(t, err)

	out, err = f.run(t, "events", "list", "--date", "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "No events on 2026-03-10.")
}

func TestApp_EventAddAllDay(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "events", "add", "--date", "2026-03-10", "--all-day", "Conference")
	require.NoError(t, err)

	out, err := f.run(t, "events", "list", "--date", "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "all day")
	assert.Contains(t, out, "Conference")
}

func TestApp_EventAddValidation(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "events", "add")
	assert.ErrorContains(t, err, "missing TITLE")

	_, err = f.run(t, "events", "add", "--date", "03/10/2026", "--start", "09:00", "x")
	assert.ErrorContains(t, err, "bad date")

	_, err = f.run(t, "events", "add", "--date", "2026-03-10", "x")
	assert.ErrorContains(t, err, "--start or --all-day")

	_, err = f.run(t, "events", "add",
		"--date", "2026-03-10", "--start", "10:00", "--end", "09:00", "x")
	assert.ErrorContains(t, err, "not after start")
}

func TestApp_EventRemoveMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "events", "rm", "no-such-id")
	assert.ErrorContains(t, err, "no event with id")
}

func TestApp_TaskLifecycle(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "tasks", "add", "--due", "2026-03-12", "--priority", "2", "Buy milk")
	require.NoError(t, err)
	assert.Contains(t, out, `Added task "Buy milk"`)
	id := extractID(t, out)

	out, err = f.run(t, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ] Buy milk")
	assert.Contains(t, out, "!2")
	assert.Contains(t, out, "due 2026-03-12")

	out, err = f.run(t, "tasks", "done", id)
	require.NoError(t, err)
	assert.Contains(t, out, "now done")

	out, err = f.run(t, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Buy milk")

	_, err = f.run(t, "tasks", "rm", id)
	require.NoError(t, err)

	out, err = f.run(t, "tasks", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No tasks.")
}

func TestApp_TaskOverdueFilter(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "tasks", "add", "--due", "2000-01-01", "late")
	require.NoError(t, err)
	_, err = f.run(t, "tasks", "add", "--due", "2999-01-01", "ahead")
	require.NoError(t, err)

	out, err := f.run(t, "tasks", "list", "--overdue")
	require.NoError(t, err)
	assert.Contains(t, out, "late")
	assert.NotContains(t, out, "ahead")
}

func TestApp_AuthNeedsClientCredentials(t *testing.T) {
	f := newFixture(t)

	_, err := f.run(t, "auth")
	assert.ErrorIs(t, err, common.ErrMissingClientCredentials)
}

func TestApp_SyncWithoutCredential(t *testing.T) {
	f := newFixture(t)

	out, err := f.run(t, "sync")
	assert.ErrorContains(t, err, "lvsk auth")
	assert.Contains(t, out, "Not authenticated")
}
