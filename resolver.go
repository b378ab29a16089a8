package nufs

import (
	"github.com/nakulcr7/nufs/internal/store"
)

// resolve walks path from the root through directory tables to the target
// entry, per spec.md §4.5. It is purely read-only; mutating operations
// compose it with a parent-directory lookup themselves.
func (fs *Fs) resolve(path string) (inum uint32, ino store.Inode, err error) {
	components, err := store.SplitPath(path)
	if err != nil {
		return 0, store.Inode{}, err
	}

	inum = store.RootInum
	ino = fs.inodes.Get(inum)

	for _, name := range components {
		if !ino.IsDir() {
			return 0, store.Inode{}, store.NewDriverError(store.ErrNotFound)
		}

		_, entry, found := fs.dirs.Find(&ino, name)
		if !found {
			return 0, store.Inode{}, store.NewDriverError(store.ErrNotFound)
		}

		inum = entry.Inum
		ino = fs.inodes.Get(inum)
	}

	return inum, ino, nil
}

// resolveParent resolves path's parent directory and returns it alongside
// path's basename, failing with ENOTDIR if the parent isn't a directory.
func (fs *Fs) resolveParent(path string) (parentInum uint32, parentIno store.Inode, name string, err error) {
	parentPath, name, err := store.SplitParentAndName(path)
	if err != nil {
		return 0, store.Inode{}, "", err
	}
	if len(name) > store.NameLength {
		return 0, store.Inode{}, "", store.NewDriverErrorWithMessage(store.ErrNameTooLong, name)
	}

	parentInum, parentIno, err = fs.resolve(parentPath)
	if err != nil {
		return 0, store.Inode{}, "", err
	}
	if !parentIno.IsDir() {
		return 0, store.Inode{}, "", store.NewDriverError(store.ErrNotADirectory)
	}
	return parentInum, parentIno, name, nil
}
