package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirEntryEncodeDecodeRoundTrip(t *testing.T) {
	want := DirEntry{Name: "hello.txt", Inum: 5, Active: true}
	buf := make([]byte, EntrySize)
	want.encode(buf)
	got := decodeDirEntry(buf)
	assert.Equal(t, want, got)
}

func TestDirEntryEncode_MaxNameLength(t *testing.T) {
	name := strings.Repeat("x", NameLength)
	want := DirEntry{Name: name, Inum: 9, Active: true}
	buf := make([]byte, EntrySize)
	want.encode(buf)
	got := decodeDirEntry(buf)
	assert.Equal(t, name, got.Name)
}

func TestDirEntryEncode_ZeroFillsStaleSuffix(t *testing.T) {
	buf := make([]byte, EntrySize)
	long := DirEntry{Name: strings.Repeat("a", NameLength), Inum: 1, Active: true}
	long.encode(buf)

	short := DirEntry{Name: "b", Inum: 2, Active: true}
	short.encode(buf)

	got := decodeDirEntry(buf)
	assert.Equal(t, "b", got.Name, "re-encoding a shorter name must not leave stale suffix bytes behind")
}

func newTestDirTable(t *testing.T) (*DirTable, *Inode) {
	t.Helper()
	img, err := NewInMemory(make([]byte, ImageSize))
	require.NoError(t, err)
	inodes := NewInodeStore(img)
	dirs := NewDirTable(img, inodes)

	ino := Inode{Kind: KindDirectory}
	return dirs, &ino
}

func TestDirTable_InsertAndFind(t *testing.T) {
	dirs, ino := newTestDirTable(t)

	require.NoError(t, dirs.Insert(ino, 3, "a"))
	require.NoError(t, dirs.Insert(ino, 4, "b"))

	_, entry, found := dirs.Find(ino, "b")
	require.True(t, found)
	assert.Equal(t, uint32(4), entry.Inum)
}

func TestDirTable_TombstoneReuse(t *testing.T) {
	dirs, ino := newTestDirTable(t)

	require.NoError(t, dirs.Insert(ino, 3, "a"))
	require.NoError(t, dirs.Insert(ino, 4, "b"))
	before := dirs.Count(ino)

	index, _, found := dirs.Find(ino, "a")
	require.True(t, found)
	dirs.Tombstone(ino, index)

	require.NoError(t, dirs.Insert(ino, 5, "c"))
	assert.Equal(t, before, dirs.Count(ino), "reusing a tombstoned slot must not grow the table")

	_, entry, found := dirs.Find(ino, "c")
	require.True(t, found)
	assert.Equal(t, uint32(5), entry.Inum)
}

func TestDirTable_IsEmpty(t *testing.T) {
	dirs, ino := newTestDirTable(t)
	assert.True(t, dirs.IsEmpty(ino))

	require.NoError(t, dirs.Insert(ino, 3, "a"))
	assert.False(t, dirs.IsEmpty(ino))

	index, _, found := dirs.Find(ino, "a")
	require.True(t, found)
	dirs.Tombstone(ino, index)
	assert.True(t, dirs.IsEmpty(ino))
}

func TestDirTable_InsertGrowsBlockWhenFull(t *testing.T) {
	dirs, ino := newTestDirTable(t)

	perBlock := BlockSize / EntrySize
	for i := 0; i < perBlock; i++ {
		require.NoError(t, dirs.Insert(ino, uint32(i+1), string(rune('a'+i%26))+string(rune('0'+i/26))))
	}
	assert.Equal(t, uint32(1), ino.BlockCount)

	require.NoError(t, dirs.Insert(ino, 999, "overflow"))
	assert.Equal(t, uint32(2), ino.BlockCount)
}
