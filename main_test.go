package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"discord-warn-bot/model"
	"discord-warn-bot/utils/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func writeConfig(t *testing.T, dir, backend string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  backend: `+backend+`
  json_path: `+filepath.Join(dir, "warnings.json")+`
  sqlite_path: `+filepath.Join(dir, "warnings.db")+`
rules_file: `+filepath.Join(dir, "rules.json")+`
`), 0644))
	return path
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"warnbot"}, args...))
	return out.String(), err
}

func TestInspectJournal(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeConfig(t, dir, "sqlite")

	store, err := database.Open(model.StorageConfig{Backend: "sqlite", SQLitePath: filepath.Join(dir, "warnings.db")})
	require.NoError(t, err)
	doc := model.NewWarningData()
	require.NoError(t, store.Save(doc))
	require.NoError(t, store.Save(doc))
	require.NoError(t, store.Close())

	out, err := runApp(t, "-c", cfgPath, "inspect", "--journal", "1")
	require.NoError(t, err)

	var saves []database.PersistEntry
	require.NoError(t, json.Unmarshal([]byte(out), &saves))
	require.Len(t, saves, 1)
	assert.Equal(t, int64(2), saves[0].ID)
	assert.Len(t, saves[0].Checksum, 64)
}

func TestInspectJournalNeedsSQLite(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	cfgPath := writeConfig(t, dir, "json")

	_, err := runApp(t, "-c", cfgPath, "inspect", "--journal", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sqlite backend")
}
