package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"filmmate/internal/model"
	dbPkg "filmmate/pkg/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`database:
  driver: sqlite
  database: %s
log:
  level: error
  filename: %s
redis:
  enabled: false
`, filepath.Join(dir, "admin.db"), filepath.Join(dir, "admin.log"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestAdminCommands(t *testing.T) {
	cfgPath := writeConfig(t)

	assert.Contains(t, run(t, "", "migrate", "--config", cfgPath), "migration completed")

	// 写入测试数据
	gdb, err := openDB(loadConfig())
	require.NoError(t, err)
	u := &model.User{Username: "alice", PasswordHash: "-"}
	require.NoError(t, gdb.Create(u).Error)
	m := &model.Movie{Title: "Heat", Year: 1995, Rating: 9.9}
	require.NoError(t, gdb.Create(m).Error)
	require.NoError(t, gdb.Create(&model.Review{UserID: u.ID, MovieID: m.ID, Rating: 7, Text: "a"}).Error)
	require.NoError(t, gdb.Create(&model.Review{UserID: u.ID, MovieID: m.ID, Rating: 8, Text: "b"}).Error)
	require.NoError(t, dbPkg.CloseDB())

	out := run(t, "", "recalc-ratings", "--config", cfgPath)
	assert.Contains(t, out, fmt.Sprintf("movie %d: 7.5", m.ID))
	assert.Contains(t, out, "recalculated 1 movies")

	out = run(t, "no\n", "reset-db", "--config", cfgPath)
	assert.Contains(t, out, "Operation cancelled")

	out = run(t, "", "reset-db", "--yes", "--config", cfgPath)
	assert.Contains(t, out, "Database reset completed")

	gdb, err = openDB(loadConfig())
	require.NoError(t, err)
	defer dbPkg.CloseDB()
	var count int64
	require.NoError(t, gdb.Model(&model.Movie{}).Count(&count).Error)
	assert.Zero(t, count)
}
