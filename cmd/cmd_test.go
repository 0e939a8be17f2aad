package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"objectfs/core/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetFlags() {
	storageFlags.backend, storageFlags.endpoint = "", ""
	storageFlags.accessKey, storageFlags.secretKey, storageFlags.token = "", "", ""
	targetFlags.backend, targetFlags.endpoint = "", ""
	targetFlags.accessKey, targetFlags.secretKey, targetFlags.token = "", "", ""
	lsMarker, lsLimit, lsAll = "", storage.DefaultListLimit, false
	catOffset, catLimit = 0, -1
	syncDelete, syncDryRun, syncYes = false, false, false
	fixFlag, dirsFlag, prefixFlag, pageSizeFlag = false, nil, "", 0
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	t.Cleanup(resetFlags)

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetIn(strings.NewReader(stdin))
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

type closeTracker struct {
	io.Reader
	closed bool
}

func (c *closeTracker) Close() error {
	c.closed = true
	return nil
}

func TestPut_LeavesStdinOpen(t *testing.T) {
	resetFlags()
	t.Cleanup(resetFlags)
	stdin := &closeTracker{Reader: strings.NewReader("piped")}
	t.Cleanup(func() { RootCmd.SetIn(nil) })

	RootCmd.SetOut(io.Discard)
	RootCmd.SetErr(io.Discard)
	RootCmd.SetIn(stdin)
	RootCmd.SetArgs([]string{"put", "in.txt", "--backend", "file", "--endpoint", t.TempDir()})
	require.NoError(t, RootCmd.Execute())
	assert.False(t, stdin.closed)
}

func TestDescribe(t *testing.T) {
	out, err := runCLI(t, "", "describe", "--backend", "mem", "--endpoint", "cli")
	require.NoError(t, err)
	assert.Equal(t, "mem://cli/\n", out)
}

func TestDescribe_UnknownBackend(t *testing.T) {
	_, err := runCLI(t, "", "describe", "--backend", "tape")
	assert.ErrorIs(t, err, storage.ErrUnknownBackend)
}

func TestObjectCommands_FileBackend(t *testing.T) {
	root := filepath.Join(t.TempDir(), "root")
	src := filepath.Join(t.TempDir(), "src.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello objectfs"), 0o644))
	backend := []string{"--backend", "file", "--endpoint", root}
	run := func(stdin string, args ...string) (string, error) {
		return runCLI(t, stdin, append(args, backend...)...)
	}

	_, err := run("", "mb")
	require.NoError(t, err)

	_, err = run("", "put", "docs/a.txt", src)
	require.NoError(t, err)

	_, err = run("from stdin", "put", "b.txt")
	require.NoError(t, err)

	out, err := run("", "cat", "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello objectfs", out)

	out, err = run("", "cat", "docs/a.txt", "--offset", "6", "--limit", "3")
	require.NoError(t, err)
	assert.Equal(t, "obj", out)

	out, err = run("", "cat", "b.txt")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", out)

	out, err = run("", "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], " b.txt"))
	assert.True(t, strings.HasSuffix(lines[1], " docs/"))
	assert.True(t, strings.HasSuffix(lines[2], " docs/a.txt"))

	out, err = run("", "ls", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, `--marker "docs/"`)

	out, err = run("", "stat", "docs/a.txt")
	require.NoError(t, err)
	assert.Contains(t, out, `"size": 14`)

	_, err = run("", "cp", "docs/a.txt", "docs/copy.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(root, "docs", "copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello objectfs", string(data))

	_, err = run("", "rm", "docs/a.txt")
	require.NoError(t, err)
	_, err = run("", "stat", "docs/a.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSync_FileToFile(t *testing.T) {
	srcRoot := t.TempDir()
	dstRoot := filepath.Join(t.TempDir(), "backup")
	require.NoError(t, os.MkdirAll(filepath.Join(srcRoot, "a"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "a", "one.txt"), []byte("1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(srcRoot, "two.txt"), []byte("22"), 0o644))

	args := []string{"sync", "--backend", "file", "--endpoint", srcRoot,
		"--to-backend", "file", "--to-endpoint", dstRoot}

	// Dry run leaves the destination empty.
	_, err := runCLI(t, "", append(args, "--dry-run", "--yes")...)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dstRoot, "two.txt"))
	assert.True(t, os.IsNotExist(err))

	// Declined confirmation changes nothing.
	_, err = runCLI(t, "no\n", args...)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dstRoot, "two.txt"))
	assert.True(t, os.IsNotExist(err))

	_, err = runCLI(t, "", append(args, "--yes")...)
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dstRoot, "a", "one.txt"))
	require.NoError(t, err)
	assert.Equal(t, "1", string(data))
	data, err = os.ReadFile(filepath.Join(dstRoot, "two.txt"))
	require.NoError(t, err)
	assert.Equal(t, "22", string(data))
}

func TestSync_RequiresTarget(t *testing.T) {
	_, err := runCLI(t, "", "sync", "--backend", "mem")
	assert.ErrorContains(t, err, "--to-backend")
}

func TestIntegrity_Mem(t *testing.T) {
	out, err := runCLI(t, "", "integrity", "--backend", "mem", "--endpoint", "probe")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Structure ===")
	assert.Contains(t, out, "=== Roundtrip ===")
	assert.Contains(t, out, "=== Pagination ===")
	assert.NotContains(t, out, "=== Schema ===")
}
