package nufs

import "github.com/nakulcr7/nufs/internal/store"

func ceilBlocks(size int64) uint32 {
	if size <= 0 {
		return 0
	}
	return uint32((size + store.BlockSize - 1) / store.BlockSize)
}

// truncateInode is the shrink/grow algorithm of spec.md §4.7, operating on
// an already-resolved inode. It persists ino itself; callers don't need to.
func (fs *Fs) truncateInode(inum uint32, ino *store.Inode, newSize int64) error {
	switch {
	case newSize == ino.Size:
		return nil

	case newSize < ino.Size:
		newBlockCount := ceilBlocks(newSize)
		for ino.BlockCount > newBlockCount {
			fs.inodes.FreeLastBlock(ino)
		}
		ino.Size = newSize
		fs.inodes.Put(inum, *ino)
		return nil

	default: // grow
		if ino.BlockCount > 0 {
			tailStart := int(ino.Size % store.BlockSize)
			dnum := fs.inodes.BlockAt(ino, ino.BlockCount-1)
			blk := fs.img.Block(dnum)
			for i := tailStart; i < store.BlockSize; i++ {
				blk[i] = 0
			}
		}

		newBlockCount := ceilBlocks(newSize)
		for ino.BlockCount < newBlockCount {
			if err := fs.inodes.AppendBlock(ino); err != nil {
				// Persist what succeeded before the failure: Allocate already
				// flipped the bitmap for these blocks, so the inode's own
				// BlockCount/Blocks must be durable too, or they'd leak.
				fs.inodes.Put(inum, *ino)
				return err
			}
			dnum := fs.inodes.BlockAt(ino, ino.BlockCount-1)
			fs.img.ZeroBlock(dnum)
			fs.inodes.Put(inum, *ino)
		}

		ino.Size = newSize
		fs.inodes.Put(inum, *ino)
		return nil
	}
}

// Truncate resolves path and grows or shrinks it to exactly size bytes, per
// spec.md §4.7.
func (fs *Fs) Truncate(path string, size int64) error {
	inum, ino, err := fs.resolve(path)
	if err != nil {
		return err
	}
	return fs.truncateInode(inum, &ino, size)
}
