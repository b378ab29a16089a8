package nufs

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/nakulcr7/nufs/internal/store"
)

// CheckInvariants verifies every universal invariant listed in spec.md §8
// against the current state of the image, returning every violation it
// finds (not just the first) aggregated via go-multierror. A nil return
// means the image is internally consistent.
func (fs *Fs) CheckInvariants() error {
	var result *multierror.Error

	inodeBitmap := fs.img.InodeBitmap()
	blockBitmap := fs.img.BlockBitmap()

	if inodeBitmap[store.RootInum] != 1 {
		result = multierror.Append(result, fmt.Errorf("root inode %d is not marked occupied", store.RootInum))
	}

	refCounts := make(map[uint32]uint32)

	for inum := uint32(0); inum < store.NumInodes; inum++ {
		if inodeBitmap[inum] == 0 {
			continue
		}

		ino := fs.inodes.Get(inum)
		if ino.LinkCount < 1 {
			result = multierror.Append(result, fmt.Errorf("inode %d is occupied but has link count %d", inum, ino.LinkCount))
		}

		for k := uint32(0); k < ino.BlockCount; k++ {
			dnum := fs.inodes.BlockAt(&ino, k)
			if dnum == 0 || dnum >= store.NumBlocks || blockBitmap[dnum] == 0 {
				result = multierror.Append(result, fmt.Errorf("inode %d block %d (dnum %d) is not marked occupied", inum, k, dnum))
			}
		}
		if ino.BlockCount > store.DirectBlocks && ino.IndirBlock != 0 && blockBitmap[ino.IndirBlock] == 0 {
			result = multierror.Append(result, fmt.Errorf("inode %d indirect block %d is not marked occupied", inum, ino.IndirBlock))
		}

		if ino.IsDir() {
			if ino.Size%store.EntrySize != 0 {
				result = multierror.Append(result, fmt.Errorf("directory inode %d has size %d, not a multiple of the entry size %d", inum, ino.Size, store.EntrySize))
			}
			if ino.Size > int64(ino.BlockCount)*store.BlockSize {
				result = multierror.Append(result, fmt.Errorf("directory inode %d has size %d exceeding its %d allocated blocks", inum, ino.Size, ino.BlockCount))
			}

			for _, e := range fs.dirs.Active(&ino) {
				refCounts[e.Inum]++
			}
		}
	}

	for inum := uint32(0); inum < store.NumInodes; inum++ {
		if inodeBitmap[inum] == 0 {
			continue
		}
		ino := fs.inodes.Get(inum)
		want := ino.LinkCount
		if inum == store.RootInum {
			// The root is never referenced by a directory entry of its own;
			// its link count is fixed at mount time and isn't tallied here.
			continue
		}
		if refCounts[inum] != want {
			result = multierror.Append(result, fmt.Errorf("inode %d has link count %d but %d active directory entries reference it", inum, want, refCounts[inum]))
		}
	}

	return result.ErrorOrNil()
}
