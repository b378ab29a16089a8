package store

import "encoding/binary"

// InodeStore reads and mutates inode records and resolves the logical block
// addressing scheme (direct blocks plus a single indirect block), per
// spec.md §4.3. Callers address blocks purely by logical index k; the
// direct/indirect split is encapsulated here, per the redesign note in
// spec.md §9.
type InodeStore struct {
	img    *Image
	inodes *Allocator
	blocks *Allocator
}

// NewInodeStore builds an InodeStore bound to the given image.
func NewInodeStore(img *Image) *InodeStore {
	return &InodeStore{
		img:    img,
		inodes: NewInodeAllocator(img),
		blocks: NewBlockAllocator(img),
	}
}

// Get decodes the inode at inum.
func (s *InodeStore) Get(inum uint32) Inode {
	return s.img.GetInode(inum)
}

// Put encodes ino back to inum's record.
func (s *InodeStore) Put(inum uint32, ino Inode) {
	s.img.PutInode(inum, ino)
}

// AllocateInode reserves a free inode slot, zeroes its record, and returns
// its number.
func (s *InodeStore) AllocateInode() (uint32, error) {
	inum, err := s.inodes.Allocate()
	if err != nil {
		return 0, err
	}
	s.Put(inum, Inode{})
	return inum, nil
}

// FreeInode releases an inode slot back to the free list. The caller is
// responsible for having already freed every block the inode owned.
func (s *InodeStore) FreeInode(inum uint32) {
	s.inodes.Free(inum)
}

// BlockAt resolves the k'th logical block of an inode (k must be <
// ino.BlockCount) to its physical data block number, per spec.md §4.3: the
// first DirectBlocks come from the inode's own array, the rest come from
// the indirect block's array of 4-byte indices.
func (s *InodeStore) BlockAt(ino *Inode, k uint32) uint32 {
	if k < DirectBlocks {
		return ino.Blocks[k]
	}
	indir := s.img.Block(ino.IndirBlock)
	off := (k - DirectBlocks) * 4
	return binary.LittleEndian.Uint32(indir[off : off+4])
}

func (s *InodeStore) setIndirectEntry(ino *Inode, k uint32, dnum uint32) {
	indir := s.img.Block(ino.IndirBlock)
	off := (k - DirectBlocks) * 4
	binary.LittleEndian.PutUint32(indir[off:off+4], dnum)
}

// AppendBlock grows ino by one block, allocating a data block (and, on the
// 11th block, the indirect block that holds the rest) per spec.md §4.3.
// Fails with ENOSPC if the inode is already at MaxBlocksPerInode or the
// block pool is exhausted.
func (s *InodeStore) AppendBlock(ino *Inode) error {
	if ino.BlockCount >= MaxBlocksPerInode {
		return NewDriverError(ErrNoSpace)
	}

	switch {
	case ino.BlockCount < DirectBlocks:
		dnum, err := s.blocks.Allocate()
		if err != nil {
			return err
		}
		ino.Blocks[ino.BlockCount] = dnum

	case ino.BlockCount == DirectBlocks:
		indirDnum, err := s.blocks.Allocate()
		if err != nil {
			return err
		}
		s.img.ZeroBlock(indirDnum)

		dataDnum, err := s.blocks.Allocate()
		if err != nil {
			s.blocks.Free(indirDnum)
			return err
		}
		ino.IndirBlock = indirDnum
		s.setIndirectEntry(ino, DirectBlocks, dataDnum)

	default:
		dataDnum, err := s.blocks.Allocate()
		if err != nil {
			return err
		}
		s.setIndirectEntry(ino, ino.BlockCount, dataDnum)
	}

	ino.BlockCount++
	return nil
}

// FreeLastBlock releases the inode's last logical block, zeroing it first.
// If that leaves BlockCount at or below DirectBlocks and the inode still
// has an indirect block on record, the indirect block itself is released
// too -- the fix for the leak spec.md §9 flags in the original design.
func (s *InodeStore) FreeLastBlock(ino *Inode) {
	last := ino.BlockCount - 1
	dnum := s.BlockAt(ino, last)
	s.img.ZeroBlock(dnum)
	s.blocks.Free(dnum)
	ino.BlockCount = last

	if ino.BlockCount <= DirectBlocks && ino.IndirBlock != 0 {
		s.img.ZeroBlock(ino.IndirBlock)
		s.blocks.Free(ino.IndirBlock)
		ino.IndirBlock = 0
	}
}

// FreeAllBlocks releases every block an inode owns, used when an inode's
// link count drops to zero.
func (s *InodeStore) FreeAllBlocks(ino *Inode) {
	for ino.BlockCount > 0 {
		s.FreeLastBlock(ino)
	}
}
