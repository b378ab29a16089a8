package store

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Image is the mapped backing container: one owned byte slice plus typed
// region views computed from fixed offsets. No region is ever addressed
// through raw pointer arithmetic outside this file, per spec.md §9's
// redesign note.
type Image struct {
	data []byte
	file *os.File
	// mapped is true when data is a real MAP_SHARED mapping that must be
	// unmapped (not just garbage collected) on Close.
	mapped bool
}

// Open opens (creating if absent) the backing file at path, resizes it to
// exactly ImageSize, and maps it read-write/shared into the process. If the
// file was empty (newly created, or existing with length 0), the root
// directory inode is forced into existence; a file of any other length is
// mapped as it stands.
//
// Any failure here is fatal to the mount: no partial state is exposed.
func Open(path string) (*Image, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("nufs: open image %q: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nufs: stat image %q: %w", path, err)
	}

	fresh := info.Size() == 0
	if info.Size() != ImageSize {
		if err := f.Truncate(ImageSize); err != nil {
			f.Close()
			return nil, fmt.Errorf("nufs: resize image %q to %d bytes: %w", path, ImageSize, err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, ImageSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("nufs: mmap image %q: %w", path, err)
	}

	img := &Image{data: data, file: f, mapped: true}
	if fresh {
		img.initRoot()
	}
	return img, nil
}

// NewInMemory builds an Image over an already-sized, caller-owned byte
// slice, bypassing mmap entirely. Used by testutil for disk-free tests; not
// used by the production Open path, which always wants a real mapping.
func NewInMemory(data []byte) (*Image, error) {
	if len(data) != ImageSize {
		return nil, fmt.Errorf("nufs: in-memory image must be exactly %d bytes, got %d", ImageSize, len(data))
	}
	img := &Image{data: data}
	if isZero(data) {
		img.initRoot()
	}
	return img, nil
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// initRoot forces inode 0 into existence as the root directory: bitmap bit
// set, directory kind, mode 0o40755, link count 1, timestamps set to now,
// size 0. Per spec.md §3, root's bitmap bit is always 1 after init and is
// never cleared.
func (img *Image) initRoot() {
	img.InodeBitmap()[RootInum] = 1

	now := time.Now()
	root := Inode{
		Mode:      rootDirMode,
		LinkCount: 1,
		Kind:      KindDirectory,
		Atime:     now,
		Mtime:     now,
		Ctime:     now,
	}
	root.encode(img.InodeRecord(RootInum))
}

// rootDirMode is 0o40755: directory type bits plus rwxr-xr-x, applied to
// the root inode at init time (spec.md §4.1). The root package's exported
// mode constants mirror these same bit patterns for user-facing use.
const rootDirMode = 0o040000 | 0o755

// Sync flushes the mapping to the backing file. A no-op for in-memory images.
func (img *Image) Sync() error {
	if !img.mapped {
		return nil
	}
	return unix.Msync(img.data, unix.MS_SYNC)
}

// Close unmaps the image (if real) and closes the backing file.
func (img *Image) Close() error {
	if img.mapped {
		if err := unix.Munmap(img.data); err != nil {
			return err
		}
	}
	if img.file != nil {
		return img.file.Close()
	}
	return nil
}

// Bytes exposes the whole backing region, primarily so tests and
// CheckInvariants can compare images byte-for-byte.
func (img *Image) Bytes() []byte {
	return img.data
}

// InodeBitmap returns the typed view over the inode occupancy byte-map.
func (img *Image) InodeBitmap() []byte {
	return img.data[InodeBitmapOffset : InodeBitmapOffset+InodeBitmapSize]
}

// BlockBitmap returns the typed view over the data block occupancy byte-map.
func (img *Image) BlockBitmap() []byte {
	return img.data[BlockBitmapOffset : BlockBitmapOffset+BlockBitmapSize]
}

// InodeRecord returns the typed view over one inode's fixed-size record.
func (img *Image) InodeRecord(inum uint32) []byte {
	start := InodeTableOffset + int(inum)*InodeRecordSize
	return img.data[start : start+InodeRecordSize]
}

// Block returns the typed view over one data block.
func (img *Image) Block(dnum uint32) []byte {
	start := DataBlocksOffset + int(dnum)*BlockSize
	return img.data[start : start+BlockSize]
}

// GetInode decodes the inode record at inum.
func (img *Image) GetInode(inum uint32) Inode {
	return decodeInode(img.InodeRecord(inum))
}

// PutInode encodes ino into the inode record at inum.
func (img *Image) PutInode(inum uint32, ino Inode) {
	ino.encode(img.InodeRecord(inum))
}

// ZeroBlock clears a data block, e.g. before returning it to the free list.
func (img *Image) ZeroBlock(dnum uint32) {
	b := img.Block(dnum)
	for i := range b {
		b[i] = 0
	}
}
