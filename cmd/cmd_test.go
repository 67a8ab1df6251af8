package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskgraph/internal/db"
	"taskgraph/internal/graph"
	"taskgraph/internal/manifest"
)

// resetFlags restores every flag to its default so runs don't leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// run executes tg with args and returns what it printed to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String(), runErr
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(prev) })
}

// newProject initializes taskgraph in a fresh working directory.
func newProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	chdir(t, dir)
	t.Cleanup(func() { db.CloseDB() })

	_, err := run(t, "init")
	require.NoError(t, err)
	return dir
}

type taskJSON struct {
	ID     string       `json:"id"`
	Title  string       `json:"title"`
	Status graph.Status `json:"status"`
}

func createTask(t *testing.T, args ...string) taskJSON {
	t.Helper()
	out, err := run(t, append([]string{"create", "--json"}, args...)...)
	require.NoError(t, err)

	var res struct {
		Task taskJSON `json:"task"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res.Task
}

func showTask(t *testing.T, id string) taskJSON {
	t.Helper()
	out, err := run(t, "show", "--json", id)
	require.NoError(t, err)

	var res struct {
		Task taskJSON `json:"task"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	return res.Task
}

func TestInitCreatesProject(t *testing.T) {
	dir := newProject(t)

	assert.FileExists(t, filepath.Join(dir, db.DataDir, db.DBFileName))
	assert.FileExists(t, filepath.Join(dir, db.DataDir, db.ConfigFileName))

	_, err := run(t, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}

func TestInitStealthAddsGitignore(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	t.Cleanup(func() { db.CloseDB() })
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("bin/"), 0644))

	_, err := run(t, "init", "--stealth")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "bin/\n.taskgraph\n", string(content))
}

func TestCommandsRequireInit(t *testing.T) {
	chdir(t, t.TempDir())
	t.Cleanup(func() { db.CloseDB() })

	_, err := run(t, "list")
	assert.True(t, errors.Is(err, db.ErrNotInitialized))
}

func TestCreateWithDependencyAndComplete(t *testing.T) {
	newProject(t)

	a := createTask(t, "Design API")
	assert.Equal(t, graph.StatusPending, a.Status)

	b := createTask(t, "Implement API", "--depends-on", a.ID)
	assert.Equal(t, graph.StatusPending, showTask(t, b.ID).Status)

	out, err := run(t, "complete", "--json", a.ID)
	require.NoError(t, err)
	assert.Contains(t, out, `"cascade"`)

	assert.Equal(t, graph.StatusCompleted, showTask(t, a.ID).Status)
	assert.Equal(t, graph.StatusInProgress, showTask(t, b.ID).Status)
}

func TestStatusBlockedCascades(t *testing.T) {
	newProject(t)

	a := createTask(t, "A")
	b := createTask(t, "B", "--depends-on", a.ID)
	c := createTask(t, "C", "--depends-on", b.ID)

	_, err := run(t, "status", "blocked", a.ID)
	require.NoError(t, err)
	assert.Equal(t, graph.StatusBlocked, showTask(t, b.ID).Status)
	assert.Equal(t, graph.StatusBlocked, showTask(t, c.ID).Status)

	_, err = run(t, "status", "done", a.ID)
	assert.True(t, errors.Is(err, graph.ErrInvalidStatus))
}

func TestBulkStatusReportsMissing(t *testing.T) {
	newProject(t)

	a := createTask(t, "A")
	b := createTask(t, "B")

	out, err := run(t, "status", "--json", "completed", a.ID, b.ID, "tg-00000000")
	require.NoError(t, err)

	var res struct {
		Success  bool     `json:"success"`
		NotFound []string `json:"not_found"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.False(t, res.Success)
	assert.Equal(t, []string{"tg-00000000"}, res.NotFound)
	assert.Equal(t, graph.StatusCompleted, showTask(t, b.ID).Status)
}

func TestDepAddRejectsCycle(t *testing.T) {
	newProject(t)

	a := createTask(t, "A")
	b := createTask(t, "B")

	_, err := run(t, "dep", "add", b.ID, a.ID)
	require.NoError(t, err)

	_, err = run(t, "dep", "add", a.ID, b.ID)
	var circ *graph.CircularDependencyError
	require.True(t, errors.As(err, &circ))
	assert.Equal(t, []string{a.ID, b.ID, a.ID}, circ.Path)

	_, err = run(t, "dep", "add", a.ID, a.ID)
	assert.True(t, errors.Is(err, graph.ErrSelfDependency))

	_, err = run(t, "dep", "add", b.ID, a.ID)
	assert.True(t, errors.Is(err, graph.ErrDuplicateDependency))
}

func TestDepCheck(t *testing.T) {
	newProject(t)

	a := createTask(t, "A")
	b := createTask(t, "B", "--depends-on", a.ID)

	out, err := run(t, "dep", "check", "--json", a.ID, b.ID)
	require.NoError(t, err)

	var check graph.CircularCheck
	require.NoError(t, json.Unmarshal([]byte(out), &check), out)
	assert.True(t, check.Circular)
	assert.Equal(t, []string{"A", "B", "A"}, check.PathTitles)
}

func TestDepRemoveRecomputes(t *testing.T) {
	newProject(t)

	a := createTask(t, "A")
	b := createTask(t, "B", "--depends-on", a.ID)

	_, err := run(t, "dep", "remove", b.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, graph.StatusInProgress, showTask(t, b.ID).Status)

	_, err = run(t, "dep", "remove", b.ID, a.ID)
	require.Error(t, err)
}

func TestDeleteRecomputesDependents(t *testing.T) {
	newProject(t)

	a := createTask(t, "A")
	b := createTask(t, "B", "--depends-on", a.ID)

	out, err := run(t, "delete", "--json", a.ID)
	require.NoError(t, err)
	assert.Contains(t, out, b.ID)

	assert.Equal(t, graph.StatusInProgress, showTask(t, b.ID).Status)

	_, err = run(t, "show", a.ID)
	assert.True(t, errors.Is(err, graph.ErrTaskNotFound))
}

func TestDeriveDoesNotWrite(t *testing.T) {
	newProject(t)

	a := createTask(t, "A")

	out, err := run(t, "derive", "--json", a.ID)
	require.NoError(t, err)

	var d struct {
		Current graph.Status `json:"current_status"`
		Derived graph.Status `json:"derived_status"`
		Changed bool         `json:"changed"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &d), out)
	assert.Equal(t, graph.StatusPending, d.Current)
	assert.Equal(t, graph.StatusInProgress, d.Derived)
	assert.True(t, d.Changed)
	assert.Equal(t, graph.StatusPending, showTask(t, a.ID).Status)
}

func TestImportExport(t *testing.T) {
	dir := newProject(t)

	src := filepath.Join(dir, "plan.toml")
	require.NoError(t, os.WriteFile(src, []byte(`
[[task]]
key = "api"
title = "Design API"
status = "completed"

[[task]]
key = "impl"
title = "Implement API"
depends_on = ["api"]
`), 0644))

	_, err := run(t, "import", src)
	require.NoError(t, err)

	dst := filepath.Join(dir, "export.toml")
	_, err = run(t, "export", "-o", dst)
	require.NoError(t, err)

	m, err := manifest.DecodeFile(dst)
	require.NoError(t, err)
	require.Len(t, m.Tasks, 2)
	byTitle := make(map[string]manifest.Task)
	for _, mt := range m.Tasks {
		byTitle[mt.Title] = mt
	}
	api, impl := byTitle["Design API"], byTitle["Implement API"]
	assert.Equal(t, "completed", api.Status)
	assert.Equal(t, "in_progress", impl.Status)
	assert.Equal(t, []string{api.Key}, impl.DependsOn)
}

func TestImportCycleRollsBack(t *testing.T) {
	dir := newProject(t)

	src := filepath.Join(dir, "cycle.toml")
	require.NoError(t, os.WriteFile(src, []byte(`
[[task]]
key = "a"
title = "A"
depends_on = ["b"]

[[task]]
key = "b"
title = "B"
depends_on = ["a"]
`), 0644))

	_, err := run(t, "import", src)
	assert.True(t, errors.Is(err, graph.ErrCircularDependency))

	out, err := run(t, "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 0`)
}

func TestListFiltersByStatus(t *testing.T) {
	newProject(t)

	a := createTask(t, "A")
	createTask(t, "B")
	_, err := run(t, "complete", a.ID)
	require.NoError(t, err)

	out, err := run(t, "list", "--json", "-s", "completed")
	require.NoError(t, err)

	var res struct {
		Count int        `json:"count"`
		Tasks []taskJSON `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, a.ID, res.Tasks[0].ID)
}

func TestConfigShowsEffectiveSettings(t *testing.T) {
	newProject(t)

	out, err := run(t, "config", "--json", "--log-level", "debug")
	require.NoError(t, err)

	var res struct {
		Settings struct {
			Log struct {
				Level string `json:"level"`
			} `json:"log"`
		} `json:"settings"`
		Project map[string]string `json:"project"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res), out)
	assert.Equal(t, "debug", res.Settings.Log.Level)
	assert.NotEmpty(t, res.Project["project_name"])
}

func TestBindConfigFlags(t *testing.T) {
	resetFlags(rootCmd)
	v := viper.New()
	require.NoError(t, bindConfigFlags(v, rootCmd.PersistentFlags()))

	require.NoError(t, rootCmd.PersistentFlags().Set("log-level", "error"))
	t.Cleanup(func() { resetFlags(rootCmd) })
	assert.Equal(t, "error", v.GetString("log.level"))

	err := bindConfigFlags(viper.New(), pflag.NewFlagSet("empty", pflag.ContinueOnError))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to bind")
}
