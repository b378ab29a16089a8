package store

import "fmt"

// byteMapFree and byteMapOccupied are the two values a byte-map slot can
// hold. The on-disk layout reserves one full byte per inode/block slot
// (spec.md §3), so this can't be backed by a packed bit-vector library like
// the teacher's boljen/go-bitmap -- see DESIGN.md for why that dependency
// was dropped.
const (
	byteMapFree     byte = 0
	byteMapOccupied byte = 1
)

// Allocator scans a byte-map region linearly for the lowest free slot, the
// same first-fit algorithm dargueta-disko/drivers/common's Allocator and
// BlockManager use, adapted to operate directly over a mapped byte-map
// region instead of a bit-packed in-memory copy.
type Allocator struct {
	region   []byte
	reserved uint32 // slot 0 is never handed out (root inode / sentinel block)
}

// NewInodeAllocator wraps the inode bitmap region. Inode 0 is reserved for
// the root directory.
func NewInodeAllocator(img *Image) *Allocator {
	return &Allocator{region: img.InodeBitmap(), reserved: 1}
}

// NewBlockAllocator wraps the block bitmap region. Block 0 is never
// allocated; it's the sentinel for "no block".
func NewBlockAllocator(img *Image) *Allocator {
	return &Allocator{region: img.BlockBitmap(), reserved: 1}
}

// Allocate returns the lowest free slot index, marking it occupied. Returns
// ENOSPC if the region is exhausted.
func (a *Allocator) Allocate() (uint32, error) {
	for i := int(a.reserved); i < len(a.region); i++ {
		if a.region[i] == byteMapFree {
			a.region[i] = byteMapOccupied
			return uint32(i), nil
		}
	}
	return 0, NewDriverError(ErrNoSpace)
}

// Free clears a previously allocated slot. Freeing slot 0 or an
// already-free slot is a programmer error (an assertion failure), matching
// spec.md §4.9's treatment of invariant breaks.
func (a *Allocator) Free(index uint32) {
	if index < a.reserved || int(index) >= len(a.region) {
		panic(fmt.Sprintf("nufs: free of reserved/out-of-range slot %d", index))
	}
	if a.region[index] == byteMapFree {
		panic(fmt.Sprintf("nufs: double free of slot %d", index))
	}
	a.region[index] = byteMapFree
}

// IsOccupied reports whether a slot is currently allocated.
func (a *Allocator) IsOccupied(index uint32) bool {
	return a.region[index] == byteMapOccupied
}
