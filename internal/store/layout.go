// Package store holds the generic, reusable building blocks of the on-disk
// layout: the mapped image, the byte-map allocators, the inode table, and
// the directory entry table. It plays the role dargueta-disko/drivers/common
// plays for disko's pluggable drivers, specialized to the one fixed layout
// this filesystem uses.
package store

// ImageSize is the fixed size of the backing file, in bytes. Not
// configurable: this filesystem never grows or shrinks the image itself.
const ImageSize = 1024 * 1024

// NumInodes is the size of the fixed inode table. Inode 0 is reserved for
// the root directory, so only [1, NumInodes) is available to allocate.
const NumInodes = 64

// NumBlocks is the size of the fixed data block pool. Block 0 is never
// allocated; it is the allocator's sentinel for "no block".
const NumBlocks = 250

// BlockSize is the size of one data block, in bytes.
const BlockSize = 4096

// DirectBlocks is the number of block indices stored directly in an inode.
const DirectBlocks = 10

// IndirectEntries is the number of 4-byte block indices that fit in a
// single indirect block.
const IndirectEntries = BlockSize / 4

// MaxBlocksPerInode is the largest block count an inode can reach: the
// direct blocks plus everything addressable through the indirect block.
const MaxBlocksPerInode = DirectBlocks + IndirectEntries

// RootInum is the inode number of the filesystem root. It is never freed.
const RootInum = 0

// Region byte offsets and sizes within the image, per the fixed layout:
// inode bitmap, block bitmap, inode table, then data blocks.
const (
	InodeBitmapOffset = 0
	InodeBitmapSize   = NumInodes

	BlockBitmapOffset = InodeBitmapOffset + InodeBitmapSize
	BlockBitmapSize   = NumBlocks

	InodeTableOffset = BlockBitmapOffset + BlockBitmapSize
)

// EntrySize is the fixed on-disk size of one directory entry record.
const EntrySize = NameLength + 4 + 1

// NameLength is the maximum number of bytes a directory entry name can
// occupy: 64 total bytes, minus a 4-byte inum and a 1-byte flag.
const NameLength = 64 - 4 - 1
