package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fd0/wmconf/internal/config"
	"github.com/fd0/wmconf/internal/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile writes the content and moves the modification time forward, so
// changes are detected even on file systems with a coarse time resolution.
func writeFile(t testing.TB, name, content string, age time.Duration) {
	t.Helper()

	require.NoError(t, os.WriteFile(name, []byte(content), 0644))
	mtime := time.Now().Add(age)
	require.NoError(t, os.Chtimes(name, mtime, mtime))
}

func value(t testing.TB, root *tree.Entry, name string) string {
	t.Helper()

	e := root.FindEntry(name, false, "")
	require.NotNil(t, e, "entry %v not found", name)
	return e.Value()
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "config")
	writeFile(t, main, "Theme = \"dark\"\nINCLUDE = \"keys\"\n", -time.Hour)
	writeFile(t, filepath.Join(dir, "keys"), "Modifier = \"Mod4\"\n", -time.Hour)

	l := New(main)
	assert.True(t, l.NeedsReload())

	root, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "dark", value(t, root, "Theme"))
	assert.Equal(t, "Mod4", value(t, root, "Modifier"))
	assert.Len(t, l.Files(), 2)
	assert.Empty(t, l.Diagnostics())
	assert.False(t, l.IsDynamic())
	assert.False(t, l.NeedsReload())

	changed, err := l.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestLoadMissing(t *testing.T) {
	l := New(filepath.Join(t.TempDir(), "missing"))

	_, err := l.Load()
	assert.Error(t, err)
	assert.True(t, l.NeedsReload())
}

func TestReloadIncludedFile(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "config")
	keys := filepath.Join(dir, "keys")
	writeFile(t, main, "Theme = \"dark\"\nINCLUDE = \"keys\"\n", -time.Hour)
	writeFile(t, keys, "Modifier = \"Mod4\"\n", -time.Hour)

	l := New(main)
	_, err := l.Load()
	require.NoError(t, err)

	writeFile(t, keys, "Modifier = \"Mod1\"\n", 0)
	assert.True(t, l.NeedsReload())

	changed, err := l.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Mod1", value(t, l.Root(), "Modifier"))
	assert.Len(t, l.Root().Entries(), 2)
	assert.False(t, l.NeedsReload())

	// touching without changing the content is not a change
	writeFile(t, keys, "Modifier = \"Mod1\"\n", time.Hour)
	changed, err = l.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestReloadRemovedFile(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "config")
	writeFile(t, main, "Theme = \"dark\"\n", -time.Hour)

	l := New(main)
	_, err := l.Load()
	require.NoError(t, err)

	require.NoError(t, os.Remove(main))
	assert.True(t, l.NeedsReload())

	_, err = l.Reload()
	assert.Error(t, err)
}

func TestReloadDynamic(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "config")
	counter := filepath.Join(dir, "counter")
	writeFile(t, counter, "Count = \"1\"\n", -time.Hour)
	writeFile(t, main, "COMMAND = \"cat "+counter+"\"\n", -time.Hour)

	l := New(main)
	root, err := l.Load()
	require.NoError(t, err)
	require.Empty(t, l.Diagnostics())

	assert.True(t, l.IsDynamic())
	assert.Equal(t, "1", value(t, root, "Count"))

	// command sources are always reloaded, the tree only changes with the output
	assert.True(t, l.NeedsReload())
	changed, err := l.Reload()
	require.NoError(t, err)
	assert.False(t, changed)

	writeFile(t, counter, "Count = \"2\"\n", -time.Hour)
	changed, err = l.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "2", value(t, l.Root(), "Count"))
}

func TestLoadString(t *testing.T) {
	l := New("DEFINE = \"T\" { Border = \"1\" }\nFrame { @T }\n",
		WithSourceType(config.SourceString), WithOverwrite(false))

	root, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"T"}, l.Templates())
	require.NotNil(t, l.Template("T"))
	assert.NotNil(t, root.FindSection("Frame", ""))
	assert.Empty(t, l.Files())
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "config")
	writeFile(t, main, "Theme = \"dark\"\n", -time.Hour)

	l := New(main)
	_, err := l.Load()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- l.Watch(ctx, 50*time.Millisecond, func(root *tree.Entry) {
			reloaded <- root.FindEntry("Theme", false, "").Value()
		})
	}()

	// give the watcher time to start
	time.Sleep(100 * time.Millisecond)
	writeFile(t, main, "Theme = \"light\"\n", 0)

	select {
	case theme := <-reloaded:
		assert.Equal(t, "light", theme)
	case <-time.After(5 * time.Second):
		t.Fatal("configuration was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not return")
	}
}
