package config

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fd0/wmconf/internal/childsig"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, src Source) string {
	var buf []byte
	for {
		c, err := src.ReadByte()
		if err == io.EOF {
			return string(buf)
		}
		require.NoError(t, err)
		buf = append(buf, c)
	}
}

func TestSourceLineCounting(t *testing.T) {
	src := NewStringSource("", "a\nb\n")
	var _ io.ByteReader = src
	require.NoError(t, src.Open())
	assert.Equal(t, "<string>", src.Name())
	assert.Equal(t, 1, src.Line())

	c, err := src.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('a'), c)

	c, err = src.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), c)
	assert.Equal(t, 2, src.Line())

	src.Unread(c)
	assert.Equal(t, 1, src.Line())

	src.Unread('x')
	assert.Equal(t, "x\nb\n", readAll(t, src))
	assert.Equal(t, 3, src.Line())

	require.NoError(t, src.Close())
}

func TestFileSourceOpenClose(t *testing.T) {
	name := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(name, []byte("K = \"v\"\n"), 0600))

	src := NewFileSource(name)
	assert.Equal(t, ErrSourceClosed, errors.Cause(src.Close()))

	require.NoError(t, src.Open())
	assert.Equal(t, ErrSourceOpen, errors.Cause(src.Open()))
	assert.Equal(t, "K = \"v\"\n", readAll(t, src))

	require.NoError(t, src.Close())
	assert.Equal(t, ErrSourceClosed, errors.Cause(src.Close()))

	// a closed source can be opened again
	require.NoError(t, src.Open())
	assert.Equal(t, "K = \"v\"\n", readAll(t, src))
	require.NoError(t, src.Close())
}

func TestFileSourceMissing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing"))
	assert.True(t, os.IsNotExist(errors.Cause(src.Open())))
}

func TestNewSource(t *testing.T) {
	for _, typ := range []SourceType{SourceFile, SourceCommand, SourceString} {
		src, err := NewSource("x", typ)
		require.NoError(t, err)
		assert.Equal(t, typ, src.Type())
		assert.Equal(t, typ.String(), src.Type().String())
	}

	_, err := NewSource("x", SourceType(42))
	assert.Error(t, err)
}

func TestCommandSource(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("command sources are not supported on windows")
	}

	src := NewCommandSource("printf 'a\\nb'")
	require.NoError(t, src.Open())
	assert.Equal(t, ErrSourceOpen, errors.Cause(src.Open()))
	assert.Equal(t, 1, childsig.Default.Refs())

	assert.Equal(t, "a\nb", readAll(t, src))
	assert.Equal(t, 2, src.Line())

	require.NoError(t, src.Close())
	assert.Equal(t, 0, childsig.Default.Refs())
	assert.Equal(t, ErrSourceClosed, errors.Cause(src.Close()))
}

func TestCommandSourceExitStatus(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("command sources are not supported on windows")
	}

	src := NewCommandSource("echo 'K = \"1\"'; exit 3")
	require.NoError(t, src.Open())
	readAll(t, src)

	assert.Error(t, src.Close())
	assert.Equal(t, 0, childsig.Default.Refs())
}

func TestParseCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("command sources are not supported on windows")
	}

	p := NewParser()
	parseString(t, p, `
Before = "1"
S = "generated" {
	COMMAND = "echo 'K = \"v\"'; echo 'L = \"w\"'" }
COMMAND = "exit 3"
After = "2"
`, false)

	assert.Equal(t, `Before="1"; S="generated" {K="v"; L="w"}; After="2"`, render(p.Root()))
	assert.True(t, p.IsDynamic())
	assert.Contains(t, diagnostics(p), "exit status 3")
	assert.Equal(t, 0, childsig.Default.Refs())
}

func TestParseCommandSourceType(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("command sources are not supported on windows")
	}

	p := NewParser()
	require.NoError(t, p.Parse(`echo 'Generated = "yes"'`, SourceCommand, false))
	assert.Equal(t, `Generated="yes"`, render(p.Root()))
	assert.True(t, p.IsDynamic())
}
