// Package fuseadapter bridges the path-based operation surface of
// github.com/nakulcr7/nufs onto github.com/jacobsa/fuse's inode-ID-based
// fuseutil.FileSystem interface, the same role samples/memfs plays for an
// in-memory file system in the jacobsa/fuse tree.
package fuseadapter

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jacobsa/fuse"
	"github.com/jacobsa/fuse/fuseops"
	"github.com/jacobsa/fuse/fuseutil"

	"github.com/nakulcr7/nufs"
)

// adapter adapts an *nufs.Fs to fuseutil.FileSystem. Every method takes the
// single lock before touching the underlying Fs, which does no locking of
// its own (spec.md §5): unlike the core library, a mounted file system must
// be safe for concurrent dispatch from the kernel.
type adapter struct {
	fuseutil.NotImplementedFileSystem

	mu sync.Mutex
	fs *nufs.Fs

	// paths maps a live FUSE inode ID back to the absolute path nufs.Fs
	// addresses it by. Entries are added on every lookup/creation and
	// dropped on ForgetInode; the root's entry is seeded once and never
	// removed.
	paths map[fuseops.InodeID]string
}

// Serve mounts fs at mountPoint and blocks until the mount is unmounted.
func Serve(fs *nufs.Fs, mountPoint string) error {
	a := &adapter{
		fs:    fs,
		paths: map[fuseops.InodeID]string{fuseops.RootInodeID: "/"},
	}

	cfg := &fuse.MountConfig{
		FSName:  "nufs",
		Subtype: "nufs",
	}

	mfs, err := fuse.Mount(mountPoint, fuseutil.NewFileSystemServer(a), cfg)
	if err != nil {
		return fmt.Errorf("nufs: mount %s: %w", mountPoint, err)
	}
	return mfs.Join(nil)
}

func toInodeID(inum uint64) fuseops.InodeID {
	return fuseops.InodeID(inum + 1)
}

func (a *adapter) pathOf(id fuseops.InodeID) (string, error) {
	p, ok := a.paths[id]
	if !ok {
		// The kernel is referencing an inode we never told it about --
		// treat it the way a real driver treats a stale handle.
		return "", fuse.EIO
	}
	return p, nil
}

func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func toErrno(err error) error {
	if err == nil {
		return nil
	}
	errno, ok := nufs.AsErrno(err)
	if !ok {
		return err
	}
	return errno
}

func toAttributes(st nufs.Stat) fuseops.InodeAttributes {
	mode := os.FileMode(st.Mode & 0o777)
	if st.IsDir() {
		mode |= os.ModeDir
	}
	return fuseops.InodeAttributes{
		Size:   uint64(st.Size),
		Nlink:  uint32(st.Nlink),
		Mode:   mode,
		Uid:    st.Uid,
		Gid:    st.Gid,
		Atime:  st.AccessedAt,
		Mtime:  st.ModifiedAt,
		Ctime:  st.ChangedAt,
		Crtime: st.ChangedAt,
	}
}

// attrCacheTTL is zero: the image can be mutated outside this adapter
// (another process, a concurrent CLI invocation), so attributes are never
// cached by the kernel.
const attrCacheTTL = 0

func (a *adapter) entryFor(id fuseops.InodeID, st nufs.Stat) fuseops.ChildInodeEntry {
	return fuseops.ChildInodeEntry{
		Child:                id,
		Attributes:           toAttributes(st),
		AttributesExpiration: time.Now().Add(attrCacheTTL),
		EntryExpiration:      time.Now().Add(attrCacheTTL),
	}
}

func (a *adapter) Init(op *fuseops.InitOp) error {
	return nil
}

func (a *adapter) LookUpInode(op *fuseops.LookUpInodeOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	parentPath, err := a.pathOf(op.Parent)
	if err != nil {
		return err
	}
	p := childPath(parentPath, op.Name)

	st, err := a.fs.Stat(p)
	if err != nil {
		return toErrno(err)
	}

	id := toInodeID(st.Ino)
	a.paths[id] = p
	op.Entry = a.entryFor(id, st)
	return nil
}

func (a *adapter) GetInodeAttributes(op *fuseops.GetInodeAttributesOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.pathOf(op.Inode)
	if err != nil {
		return err
	}
	st, err := a.fs.Stat(p)
	if err != nil {
		return toErrno(err)
	}

	op.Attributes = toAttributes(st)
	op.AttributesExpiration = time.Now().Add(attrCacheTTL)
	return nil
}

func (a *adapter) SetInodeAttributes(op *fuseops.SetInodeAttributesOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.pathOf(op.Inode)
	if err != nil {
		return err
	}

	if op.Mode != nil {
		if err := a.fs.Chmod(p, uint32(*op.Mode&0o777)); err != nil {
			return toErrno(err)
		}
	}
	if op.Size != nil {
		if err := a.fs.Truncate(p, int64(*op.Size)); err != nil {
			return toErrno(err)
		}
	}
	if op.Atime != nil || op.Mtime != nil {
		st, err := a.fs.Stat(p)
		if err != nil {
			return toErrno(err)
		}
		atime, mtime := st.AccessedAt, st.ModifiedAt
		if op.Atime != nil {
			atime = *op.Atime
		}
		if op.Mtime != nil {
			mtime = *op.Mtime
		}
		if err := a.fs.SetTime(p, atime, mtime); err != nil {
			return toErrno(err)
		}
	}

	st, err := a.fs.Stat(p)
	if err != nil {
		return toErrno(err)
	}
	op.Attributes = toAttributes(st)
	op.AttributesExpiration = time.Now().Add(attrCacheTTL)
	return nil
}

func (a *adapter) ForgetInode(op *fuseops.ForgetInodeOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if op.ID != fuseops.RootInodeID {
		delete(a.paths, op.ID)
	}
	return nil
}

func (a *adapter) MkDir(op *fuseops.MkDirOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	parentPath, err := a.pathOf(op.Parent)
	if err != nil {
		return err
	}
	p := childPath(parentPath, op.Name)

	st, err := a.fs.Mkdir(p, uint32(op.Mode&0o777))
	if err != nil {
		return toErrno(err)
	}

	id := toInodeID(st.Ino)
	a.paths[id] = p
	op.Entry = a.entryFor(id, st)
	return nil
}

func (a *adapter) CreateFile(op *fuseops.CreateFileOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	parentPath, err := a.pathOf(op.Parent)
	if err != nil {
		return err
	}
	p := childPath(parentPath, op.Name)

	st, err := a.fs.Mknod(p, uint32(op.Mode&0o777), 0)
	if err != nil {
		return toErrno(err)
	}

	id := toInodeID(st.Ino)
	a.paths[id] = p
	op.Entry = a.entryFor(id, st)
	return nil
}

func (a *adapter) RmDir(op *fuseops.RmDirOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	parentPath, err := a.pathOf(op.Parent)
	if err != nil {
		return err
	}
	return toErrno(a.fs.Rmdir(childPath(parentPath, op.Name)))
}

func (a *adapter) Unlink(op *fuseops.UnlinkOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	parentPath, err := a.pathOf(op.Parent)
	if err != nil {
		return err
	}
	return toErrno(a.fs.Unlink(childPath(parentPath, op.Name)))
}

func (a *adapter) Rename(op *fuseops.RenameOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	oldParentPath, err := a.pathOf(op.OldParent)
	if err != nil {
		return err
	}
	newParentPath, err := a.pathOf(op.NewParent)
	if err != nil {
		return err
	}

	oldPath := childPath(oldParentPath, op.OldName)
	newPath := childPath(newParentPath, op.NewName)
	if err := a.fs.Rename(oldPath, newPath); err != nil {
		return toErrno(err)
	}

	// Any cached path under the old name is now stale; rewrite the prefix
	// for the renamed node itself and everything the kernel thinks lives
	// beneath it.
	for id, p := range a.paths {
		if p == oldPath {
			a.paths[id] = newPath
		} else if strings.HasPrefix(p, oldPath+"/") {
			a.paths[id] = newPath + strings.TrimPrefix(p, oldPath)
		}
	}
	return nil
}

func (a *adapter) OpenDir(op *fuseops.OpenDirOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.pathOf(op.Inode)
	if err != nil {
		return err
	}
	st, err := a.fs.Stat(p)
	if err != nil {
		return toErrno(err)
	}
	if !st.IsDir() {
		return fuse.ENOTDIR
	}
	return nil
}

func (a *adapter) ReadDir(op *fuseops.ReadDirOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.pathOf(op.Inode)
	if err != nil {
		return err
	}
	entries, err := a.fs.Readdir(p)
	if err != nil {
		return toErrno(err)
	}

	var buf []byte
	for i := int(op.Offset); i < len(entries); i++ {
		e := entries[i]
		de := fuseutil.Dirent{
			Offset: fuseops.DirOffset(i + 1),
			Inode:  toInodeID(e.Stat.Ino),
			Name:   e.Name,
			Type:   direntType(e.Stat),
		}
		grown := fuseutil.AppendDirent(buf, de)
		if len(grown) > op.Size {
			break
		}
		buf = grown
	}
	op.Data = buf
	return nil
}

func direntType(st nufs.Stat) fuseutil.DirentType {
	if st.IsDir() {
		return fuseutil.DT_Directory
	}
	return fuseutil.DT_File
}

func (a *adapter) OpenFile(op *fuseops.OpenFileOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.pathOf(op.Inode)
	if err != nil {
		return err
	}
	st, err := a.fs.Stat(p)
	if err != nil {
		return toErrno(err)
	}
	if st.IsDir() {
		return fuse.EISDIR
	}
	return nil
}

func (a *adapter) ReadFile(op *fuseops.ReadFileOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.pathOf(op.Inode)
	if err != nil {
		return err
	}
	buf := make([]byte, op.Size)
	n, err := a.fs.Read(p, buf, op.Offset)
	if err != nil {
		return toErrno(err)
	}
	op.Data = buf[:n]
	return nil
}

func (a *adapter) WriteFile(op *fuseops.WriteFileOp) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, err := a.pathOf(op.Inode)
	if err != nil {
		return err
	}
	_, err = a.fs.Write(p, op.Data, op.Offset)
	return toErrno(err)
}

func (a *adapter) SyncFile(op *fuseops.SyncFileOp) error {
	return nil
}

func (a *adapter) FlushFile(op *fuseops.FlushFileOp) error {
	return nil
}

func (a *adapter) ReleaseDirHandle(op *fuseops.ReleaseDirHandleOp) error {
	return nil
}

func (a *adapter) ReleaseFileHandle(op *fuseops.ReleaseFileHandleOp) error {
	return nil
}
