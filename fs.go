package nufs

import (
	"time"

	"github.com/google/uuid"

	"github.com/nakulcr7/nufs/internal/store"
)

// Fs is the operation surface: it composes the image mapper, bitmap
// allocators, inode store, and directory table into the externally visible
// POSIX-shaped operations of spec.md §4.8. It assumes single-threaded,
// cooperative use -- the host driver serializes operations, and Fs does no
// internal locking, per spec.md §5.
type Fs struct {
	img    *store.Image
	inodes *store.InodeStore
	dirs   *store.DirTable

	// MountID identifies this particular mount for log correlation. It is
	// generated fresh on every Mount and never persisted to the image.
	MountID uuid.UUID
}

// Mount opens (creating if absent) the backing image file at path and
// returns a ready-to-use Fs. Any failure here is fatal, per spec.md §4.1/4.9:
// no partially-initialized Fs is ever returned.
func Mount(path string) (*Fs, error) {
	img, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	return MountImage(img), nil
}

// MountImage wires an already-open image into a new Fs directly, bypassing
// the file-backed Open path. It exists for testutil, which builds images
// with store.NewInMemory instead of a real mmap.
func MountImage(img *store.Image) *Fs {
	inodes := store.NewInodeStore(img)
	return &Fs{
		img:     img,
		inodes:  inodes,
		dirs:    store.NewDirTable(img, inodes),
		MountID: uuid.New(),
	}
}

// Unmount flushes the mapping to disk and releases it. A clean unmount is
// the only durability guarantee this filesystem offers, per spec.md §5.
func (fs *Fs) Unmount() error {
	if err := fs.img.Sync(); err != nil {
		return err
	}
	return fs.img.Close()
}

func toStat(inum uint32, ino store.Inode) Stat {
	mode := ino.Mode
	if ino.Kind == store.KindFile && mode&S_IFMT == 0 {
		// Mknod stores a file's mode as given, which may carry no type bits;
		// the stat record always reports a file inode as S_IFREG.
		mode |= S_IFREG
	}
	return Stat{
		Ino:        uint64(inum),
		Mode:       mode,
		Nlink:      ino.LinkCount,
		Uid:        ino.UID,
		Gid:        ino.GID,
		Rdev:       uint64(ino.RDev),
		Size:       ino.Size,
		BlockSize:  store.BlockSize,
		Blocks:     int64(ino.BlockCount),
		AccessedAt: ino.Atime,
		ModifiedAt: ino.Mtime,
		ChangedAt:  ino.Ctime,
	}
}

// Stat resolves path and returns its metadata, per spec.md §4.8.
func (fs *Fs) Stat(path string) (Stat, error) {
	inum, ino, err := fs.resolve(path)
	if err != nil {
		return Stat{}, err
	}
	return toStat(inum, ino), nil
}

// DirEntry is one entry returned by Readdir: a name plus its stat record.
type DirEntry struct {
	Name string
	Stat Stat
}

// Readdir resolves path and lists it: "." for the directory itself,
// followed by every active entry, per spec.md §4.8.
func (fs *Fs) Readdir(path string) ([]DirEntry, error) {
	inum, ino, err := fs.resolve(path)
	if err != nil {
		return nil, err
	}
	if !ino.IsDir() {
		return nil, store.NewDriverError(store.ErrNotADirectory)
	}

	entries := []DirEntry{{Name: ".", Stat: toStat(inum, ino)}}
	for _, e := range fs.dirs.Active(&ino) {
		childIno := fs.inodes.Get(e.Inum)
		entries = append(entries, DirEntry{Name: e.Name, Stat: toStat(e.Inum, childIno)})
	}
	return entries, nil
}

// addChild allocates a fresh inode of the given kind and links it into
// parent under name, the shared core of Mknod and Mkdir (spec.md §4.8).
func (fs *Fs) addChild(path string, mode uint32, rdev uint32, kind store.Kind) (Stat, error) {
	parentInum, parentIno, name, err := fs.resolveParent(path)
	if err != nil {
		return Stat{}, err
	}

	childMode := mode
	if kind == store.KindDirectory {
		childMode |= S_IFDIR
	}

	inum, err := fs.inodes.AllocateInode()
	if err != nil {
		return Stat{}, err
	}

	now := time.Now()
	child := store.Inode{
		Mode:      childMode,
		LinkCount: 1,
		RDev:      rdev,
		Kind:      kind,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
	}
	fs.inodes.Put(inum, child)

	if err := fs.dirs.Insert(&parentIno, inum, name); err != nil {
		// Roll back the inode we just allocated; nothing references it yet.
		fs.inodes.FreeInode(inum)
		return Stat{}, err
	}
	parentIno.Mtime = now
	parentIno.Ctime = now
	fs.inodes.Put(parentInum, parentIno)

	return toStat(inum, child), nil
}

// Mknod creates a regular file at path with the given mode and device id,
// per spec.md §4.8.
func (fs *Fs) Mknod(path string, mode uint32, rdev uint32) (Stat, error) {
	return fs.addChild(path, mode, rdev, store.KindFile)
}

// Mkdir creates an empty directory at path with the given mode, per
// spec.md §4.8. A fresh directory has size 0 and no allocated blocks.
func (fs *Fs) Mkdir(path string, mode uint32) (Stat, error) {
	return fs.addChild(path, mode, 0, store.KindDirectory)
}

// removeEntry tombstones the directory entry at path (resolved via its
// parent) and decrements the target inode's link count, freeing the inode
// and its blocks once the last link disappears. Shared by Unlink and Rmdir.
func (fs *Fs) removeEntry(path string) error {
	parentInum, parentIno, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}

	index, entry, found := fs.dirs.Find(&parentIno, name)
	if !found {
		return store.NewDriverError(store.ErrNotFound)
	}

	fs.dirs.Tombstone(&parentIno, index)
	now := time.Now()
	parentIno.Mtime = now
	parentIno.Ctime = now
	fs.inodes.Put(parentInum, parentIno)

	child := fs.inodes.Get(entry.Inum)
	child.LinkCount--
	if child.LinkCount == 0 {
		fs.inodes.FreeAllBlocks(&child)
		fs.inodes.Put(entry.Inum, store.Inode{})
		fs.inodes.FreeInode(entry.Inum)
	} else {
		child.Ctime = now
		fs.inodes.Put(entry.Inum, child)
	}
	return nil
}

// Unlink removes a directory entry and, once its last link is gone, the
// file it names, per spec.md §4.8. Unlink does not itself reject
// directories -- that precondition belongs to Rmdir -- so it shares
// removeEntry's path with Rmdir unconditionally.
func (fs *Fs) Unlink(path string) error {
	return fs.removeEntry(path)
}

// Rmdir removes an empty directory, per spec.md §4.8: fails with ENOTDIR
// against a file, ENOTEMPTY against a non-empty directory.
func (fs *Fs) Rmdir(path string) error {
	_, ino, name, err := fs.resolveParent(path)
	if err != nil {
		return err
	}
	_, entry, found := fs.dirs.Find(&ino, name)
	if !found {
		return store.NewDriverError(store.ErrNotFound)
	}

	target := fs.inodes.Get(entry.Inum)
	if !target.IsDir() {
		return store.NewDriverError(store.ErrNotADirectory)
	}
	if !fs.dirs.IsEmpty(&target) {
		return store.NewDriverError(store.ErrNotEmpty)
	}
	return fs.removeEntry(path)
}

// Chmod replaces path's mode bits, per spec.md §4.8.
func (fs *Fs) Chmod(path string, mode uint32) error {
	inum, ino, err := fs.resolve(path)
	if err != nil {
		return err
	}
	kindBits := ino.Mode & S_IFMT
	ino.Mode = (mode &^ S_IFMT) | kindBits
	ino.Ctime = time.Now()
	fs.inodes.Put(inum, ino)
	return nil
}

// SetTime writes path's access and modification timestamps, per spec.md
// §4.8. Sub-second precision is silently truncated, per spec.md §9.
func (fs *Fs) SetTime(path string, atime, mtime time.Time) error {
	inum, ino, err := fs.resolve(path)
	if err != nil {
		return err
	}
	ino.Atime = atime.Truncate(time.Second)
	ino.Mtime = mtime.Truncate(time.Second)
	ino.Ctime = time.Now().Truncate(time.Second)
	fs.inodes.Put(inum, ino)
	return nil
}

// Link resolves from and adds an active entry (from's inode, basename(to))
// to to's parent directory, incrementing the link count, per spec.md §4.8.
func (fs *Fs) Link(from, to string) error {
	fromInum, _, err := fs.resolve(from)
	if err != nil {
		return err
	}

	toParentInum, toParentIno, toName, err := fs.resolveParent(to)
	if err != nil {
		return err
	}

	if err := fs.dirs.Insert(&toParentIno, fromInum, toName); err != nil {
		return err
	}
	now := time.Now()
	toParentIno.Mtime = now
	toParentIno.Ctime = now
	fs.inodes.Put(toParentInum, toParentIno)

	fromIno := fs.inodes.Get(fromInum)
	fromIno.LinkCount++
	fromIno.Ctime = now
	fs.inodes.Put(fromInum, fromIno)
	return nil
}

// Rename is implemented as Link(from, to) followed by Unlink(from), per
// spec.md §4.8. This degrades gracefully rather than atomically: if Link
// fails, from is untouched; if the subsequent Unlink fails, both names
// remain -- acceptable given this filesystem has no journaling (spec.md §1).
func (fs *Fs) Rename(from, to string) error {
	if err := fs.Link(from, to); err != nil {
		return err
	}
	return fs.Unlink(from)
}

// Access resolves path and checks that every bit in mask is already present
// in its mode. This is a coarse stub, per spec.md §4.8 -- it does not
// consult uid/gid.
func (fs *Fs) Access(path string, mask uint32) error {
	_, ino, err := fs.resolve(path)
	if err != nil {
		return err
	}
	if ino.Mode&mask != mask {
		return store.NewDriverError(store.ErrPermissionDenied)
	}
	return nil
}
