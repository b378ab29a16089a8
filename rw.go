package nufs

import (
	"time"

	"github.com/nakulcr7/nufs/internal/store"
)

// Read reads up to len(buf) bytes from path starting at offset, per
// spec.md §4.6. It returns the number of bytes copied, which is 0 once
// offset reaches or passes the file's size.
func (fs *Fs) Read(path string, buf []byte, offset int64) (int, error) {
	inum, ino, err := fs.resolve(path)
	if err != nil {
		return 0, err
	}

	n := fs.readInode(&ino, buf, offset)

	ino.Atime = time.Now()
	fs.inodes.Put(inum, ino)
	return n, nil
}

// readInode is the block-walking core of Read, operating on an
// already-resolved inode; writeInode is its counterpart for Write.
func (fs *Fs) readInode(ino *store.Inode, buf []byte, offset int64) int {
	if offset < 0 || offset >= ino.Size || ino.Size == 0 {
		return 0
	}

	size := len(buf)
	if remaining := ino.Size - offset; int64(size) > remaining {
		size = int(remaining)
	}
	if size <= 0 {
		return 0
	}

	startBlock := uint32(offset / store.BlockSize)
	intra := int(offset % store.BlockSize)

	copied := 0
	k := startBlock
	for copied < size {
		dnum := fs.inodes.BlockAt(ino, k)
		blk := fs.img.Block(dnum)

		n := store.BlockSize - intra
		if remaining := size - copied; n > remaining {
			n = remaining
		}
		copy(buf[copied:copied+n], blk[intra:intra+n])

		copied += n
		intra = 0
		k++
	}
	return copied
}

// Write writes len(buf) bytes to path at offset, creating the file first
// (as a regular file, mode 0o755) if it doesn't exist, per spec.md §4.6.
// Capacity is ensured via Truncate, which zero-fills any gap between the
// file's old end and offset.
func (fs *Fs) Write(path string, buf []byte, offset int64) (int, error) {
	inum, ino, err := fs.resolve(path)
	if err != nil {
		if !isNotFound(err) {
			return 0, err
		}
		if _, cerr := fs.Mknod(path, DefaultFileMode, 0); cerr != nil {
			return 0, cerr
		}
		inum, ino, err = fs.resolve(path)
		if err != nil {
			return 0, err
		}
	}

	newSize := offset + int64(len(buf))
	if newSize < ino.Size {
		newSize = ino.Size
	}
	if err := fs.truncateInode(inum, &ino, newSize); err != nil {
		return 0, err
	}

	n := fs.writeInode(&ino, buf, offset)

	now := time.Now()
	ino.Mtime = now
	ino.Ctime = now
	fs.inodes.Put(inum, ino)
	return n, nil
}

func (fs *Fs) writeInode(ino *store.Inode, buf []byte, offset int64) int {
	size := len(buf)
	if size == 0 {
		return 0
	}

	startBlock := uint32(offset / store.BlockSize)
	intra := int(offset % store.BlockSize)

	copied := 0
	k := startBlock
	for copied < size {
		dnum := fs.inodes.BlockAt(ino, k)
		blk := fs.img.Block(dnum)

		n := store.BlockSize - intra
		if remaining := size - copied; n > remaining {
			n = remaining
		}
		copy(blk[intra:intra+n], buf[copied:copied+n])

		copied += n
		intra = 0
		k++
	}
	return copied
}

func isNotFound(err error) bool {
	de, ok := err.(*store.DriverError)
	return ok && de.Errno == store.ErrNotFound
}
