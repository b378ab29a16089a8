package store

import "encoding/binary"

// DirEntry is the in-memory, decoded form of one directory entry: an
// explicit {Tombstone, Active{Inum, Name}} variant, per spec.md §9's
// redesign note, serialized to the flag-on-disk form at write time.
type DirEntry struct {
	Name   string
	Inum   uint32
	Active bool
}

// encode serializes e into exactly EntrySize bytes. The name field is
// always zero-filled first: spec.md §4.4 only SHOULDs this to avoid
// stale-suffix bugs when a tombstoned slot is reused with a shorter name,
// but this implementation makes it a MUST, per the decision in spec.md §9.
func (e *DirEntry) encode(dst []byte) {
	_ = dst[:EntrySize]
	for i := 0; i < NameLength; i++ {
		dst[i] = 0
	}
	copy(dst[:NameLength], e.Name)

	binary.LittleEndian.PutUint32(dst[NameLength:NameLength+4], e.Inum)
	if e.Active {
		dst[NameLength+4] = 1
	} else {
		dst[NameLength+4] = 0
	}
}

// decodeDirEntry deserializes a directory entry record. The name is read up
// to the first NUL byte (or the full NameLength bytes, if there is none),
// which is safe because encode always zero-fills the name buffer first.
func decodeDirEntry(src []byte) DirEntry {
	_ = src[:EntrySize]
	nameLen := NameLength
	for i := 0; i < NameLength; i++ {
		if src[i] == 0 {
			nameLen = i
			break
		}
	}
	return DirEntry{
		Name:   string(src[:nameLen]),
		Inum:   binary.LittleEndian.Uint32(src[NameLength : NameLength+4]),
		Active: src[NameLength+4] == 1,
	}
}

// DirTable reads and mutates the entry sequence stored in a directory
// inode's data region, per spec.md §4.4.
type DirTable struct {
	img    *Image
	inodes *InodeStore
}

// NewDirTable builds a DirTable bound to the given image and inode store.
func NewDirTable(img *Image, inodes *InodeStore) *DirTable {
	return &DirTable{img: img, inodes: inodes}
}

// Count returns the number of entry slots, including tombstones.
func (t *DirTable) Count(ino *Inode) uint32 {
	return uint32(ino.Size) / EntrySize
}

func (t *DirTable) entryBytes(ino *Inode, index uint32) []byte {
	offset := index * EntrySize
	logicalBlock := offset / BlockSize
	intra := offset % BlockSize
	dnum := t.inodes.BlockAt(ino, logicalBlock)
	blk := t.img.Block(dnum)
	return blk[intra : intra+EntrySize]
}

// Get decodes the entry at the given slot index.
func (t *DirTable) Get(ino *Inode, index uint32) DirEntry {
	return decodeDirEntry(t.entryBytes(ino, index))
}

func (t *DirTable) put(ino *Inode, index uint32, e DirEntry) {
	e.encode(t.entryBytes(ino, index))
}

// Find scans for the first active entry with the given name, in slot order.
func (t *DirTable) Find(ino *Inode, name string) (index uint32, entry DirEntry, found bool) {
	n := t.Count(ino)
	for i := uint32(0); i < n; i++ {
		e := t.Get(ino, i)
		if e.Active && e.Name == name {
			return i, e, true
		}
	}
	return 0, DirEntry{}, false
}

// Active returns every active entry, in slot order, for use by Readdir.
func (t *DirTable) Active(ino *Inode) []DirEntry {
	n := t.Count(ino)
	out := make([]DirEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		e := t.Get(ino, i)
		if e.Active {
			out = append(out, e)
		}
	}
	return out
}

// IsEmpty reports whether every entry in the table is a tombstone.
func (t *DirTable) IsEmpty(ino *Inode) bool {
	n := t.Count(ino)
	for i := uint32(0); i < n; i++ {
		if t.Get(ino, i).Active {
			return false
		}
	}
	return true
}

// Insert adds an active entry (inum, name) to the table: it reuses the
// first tombstoned slot it finds, or appends at the tail, growing the
// inode's data region by one block first if the new entry wouldn't fit,
// per spec.md §4.4.
func (t *DirTable) Insert(ino *Inode, inum uint32, name string) error {
	n := t.Count(ino)
	for i := uint32(0); i < n; i++ {
		if !t.Get(ino, i).Active {
			t.put(ino, i, DirEntry{Name: name, Inum: inum, Active: true})
			return nil
		}
	}

	needed := uint64(n+1) * EntrySize
	capacity := uint64(ino.BlockCount) * BlockSize
	if needed > capacity {
		if err := t.inodes.AppendBlock(ino); err != nil {
			return err
		}
	}
	t.put(ino, n, DirEntry{Name: name, Inum: inum, Active: true})
	ino.Size += EntrySize
	return nil
}

// Tombstone marks the entry at index deleted and zeroes its contents,
// freeing the slot for the next Insert to reuse.
func (t *DirTable) Tombstone(ino *Inode, index uint32) {
	t.put(ino, index, DirEntry{})
}
