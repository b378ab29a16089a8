package nufs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakulcr7/nufs"
	"github.com/nakulcr7/nufs/testutil"
)

func TestMkdirAndStat(t *testing.T) {
	fs := testutil.NewFS(t)

	st, err := fs.Mkdir("/docs", 0o755)
	require.NoError(t, err)
	assert.True(t, st.IsDir())

	got, err := fs.Stat("/docs")
	require.NoError(t, err)
	assert.Equal(t, st.Ino, got.Ino)
}

func TestMknodAndReaddir(t *testing.T) {
	fs := testutil.NewFS(t)

	_, err := fs.Mknod("/a.txt", 0o644, 0)
	require.NoError(t, err)
	_, err = fs.Mknod("/b.txt", 0o644, 0)
	require.NoError(t, err)

	entries, err := fs.Readdir("/")
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, e := range entries {
		names[e.Name] = true
	}
	assert.True(t, names["."])
	assert.True(t, names["a.txt"])
	assert.True(t, names["b.txt"])
}

func TestMknodInSubdirectory(t *testing.T) {
	fs := testutil.NewFS(t)

	_, err := fs.Mkdir("/sub", 0o755)
	require.NoError(t, err)
	_, err = fs.Mknod("/sub/file.txt", 0o644, 0)
	require.NoError(t, err)

	st, err := fs.Stat("/sub/file.txt")
	require.NoError(t, err)
	assert.True(t, st.IsFile())
}

func TestStatMissingReturnsNotFound(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Stat("/missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, nufs.ErrNotFound))
}

func TestUnlinkRemovesFile(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/f", 0o644, 0)
	require.NoError(t, err)

	require.NoError(t, fs.Unlink("/f"))

	_, err = fs.Stat("/f")
	require.Error(t, err)
	assert.True(t, errors.Is(err, nufs.ErrNotFound))
}

func TestRmdirRejectsNonEmptyDirectory(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mkdir("/d", 0o755)
	require.NoError(t, err)
	_, err = fs.Mknod("/d/f", 0o644, 0)
	require.NoError(t, err)

	err = fs.Rmdir("/d")
	require.Error(t, err)
	assert.True(t, errors.Is(err, nufs.ErrNotEmpty))
}

func TestRmdirRejectsFile(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/f", 0o644, 0)
	require.NoError(t, err)

	err = fs.Rmdir("/f")
	require.Error(t, err)
	assert.True(t, errors.Is(err, nufs.ErrNotADirectory))
}

func TestRmdirSucceedsOnEmptyDirectory(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mkdir("/d", 0o755)
	require.NoError(t, err)
	require.NoError(t, fs.Rmdir("/d"))

	_, err = fs.Stat("/d")
	require.Error(t, err)
}

func TestChmodPreservesKindBits(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mkdir("/d", 0o755)
	require.NoError(t, err)

	require.NoError(t, fs.Chmod("/d", 0o700))

	st, err := fs.Stat("/d")
	require.NoError(t, err)
	assert.True(t, st.IsDir())
	assert.Equal(t, uint32(0o700), st.Mode&0o777)
}

func TestLinkIncrementsLinkCount(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/orig", 0o644, 0)
	require.NoError(t, err)

	require.NoError(t, fs.Link("/orig", "/alias"))

	origSt, err := fs.Stat("/orig")
	require.NoError(t, err)
	assert.Equal(t, uint32(2), origSt.Nlink)

	aliasSt, err := fs.Stat("/alias")
	require.NoError(t, err)
	assert.Equal(t, origSt.Ino, aliasSt.Ino)
}

func TestUnlinkOneOfTwoLinksKeepsData(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/orig", 0o644, 0)
	require.NoError(t, err)
	require.NoError(t, fs.Link("/orig", "/alias"))

	_, err = fs.Write("/orig", []byte("hello"), 0)
	require.NoError(t, err)

	require.NoError(t, fs.Unlink("/orig"))

	buf := make([]byte, 5)
	n, err := fs.Read("/alias", buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestRenameMovesEntry(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/old", 0o644, 0)
	require.NoError(t, err)

	require.NoError(t, fs.Rename("/old", "/new"))

	_, err = fs.Stat("/old")
	require.Error(t, err)

	_, err = fs.Stat("/new")
	require.NoError(t, err)
}

func TestAccessChecksModeBits(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/f", 0o600, 0)
	require.NoError(t, err)

	assert.NoError(t, fs.Access("/f", 0o600))
	assert.Error(t, fs.Access("/f", 0o007))
}

// Name-length and inode-table-exhaustion boundaries (59/60-byte names, the
// 64th root entry) are covered by TestBoundaries, driven off
// testutil.Boundaries instead of hardcoded here.
