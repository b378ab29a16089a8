package store

import (
	"encoding/binary"
	"time"
)

// InodeRecordSize is the fixed on-disk size of one inode record, in bytes:
// device id, mode, link count, owner uid, group gid, special device id, size,
// block count, three timestamps, kind flag, 10 direct blocks, 1 indirect
// block -- in that order, per the on-disk layout.
const InodeRecordSize = 4*6 + 8 + 4 + 8*3 + 1 + 4*DirectBlocks + 4

// DataBlocksOffset is where the fixed-size data block region begins, right
// after the fixed inode table.
const DataBlocksOffset = InodeTableOffset + NumInodes*InodeRecordSize

// Kind distinguishes directories from regular files, stored as a single
// on-disk byte.
type Kind uint8

const (
	KindDirectory Kind = 0
	KindFile      Kind = 1
)

// Inode is the in-memory, decoded form of one inode record. It plays the
// role of an explicit union over "does this slot use direct blocks or has it
// grown an indirect block", per the redesign note in spec.md §9: callers
// never see blocks/indirect split directly, they go through BlockAt/AppendBlock.
type Inode struct {
	DeviceID   uint32
	Mode       uint32
	LinkCount  uint32
	UID        uint32
	GID        uint32
	RDev       uint32
	Size       int64
	BlockCount uint32
	Atime      time.Time
	Mtime      time.Time
	Ctime      time.Time
	Kind       Kind
	Blocks     [DirectBlocks]uint32
	IndirBlock uint32
}

// IsDir reports whether this inode is a directory.
func (ino *Inode) IsDir() bool { return ino.Kind == KindDirectory }

// encode serializes the inode into exactly InodeRecordSize bytes.
func (ino *Inode) encode(dst []byte) {
	_ = dst[:InodeRecordSize]
	binary.LittleEndian.PutUint32(dst[0:4], ino.DeviceID)
	binary.LittleEndian.PutUint32(dst[4:8], ino.Mode)
	binary.LittleEndian.PutUint32(dst[8:12], ino.LinkCount)
	binary.LittleEndian.PutUint32(dst[12:16], ino.UID)
	binary.LittleEndian.PutUint32(dst[16:20], ino.GID)
	binary.LittleEndian.PutUint32(dst[20:24], ino.RDev)
	binary.LittleEndian.PutUint64(dst[24:32], uint64(ino.Size))
	binary.LittleEndian.PutUint32(dst[32:36], ino.BlockCount)
	binary.LittleEndian.PutUint64(dst[36:44], uint64(ino.Atime.Unix()))
	binary.LittleEndian.PutUint64(dst[44:52], uint64(ino.Mtime.Unix()))
	binary.LittleEndian.PutUint64(dst[52:60], uint64(ino.Ctime.Unix()))
	dst[60] = byte(ino.Kind)
	off := 61
	for i := 0; i < DirectBlocks; i++ {
		binary.LittleEndian.PutUint32(dst[off:off+4], ino.Blocks[i])
		off += 4
	}
	binary.LittleEndian.PutUint32(dst[off:off+4], ino.IndirBlock)
}

// decodeInode deserializes an inode record from exactly InodeRecordSize bytes.
func decodeInode(src []byte) Inode {
	_ = src[:InodeRecordSize]
	var ino Inode
	ino.DeviceID = binary.LittleEndian.Uint32(src[0:4])
	ino.Mode = binary.LittleEndian.Uint32(src[4:8])
	ino.LinkCount = binary.LittleEndian.Uint32(src[8:12])
	ino.UID = binary.LittleEndian.Uint32(src[12:16])
	ino.GID = binary.LittleEndian.Uint32(src[16:20])
	ino.RDev = binary.LittleEndian.Uint32(src[20:24])
	ino.Size = int64(binary.LittleEndian.Uint64(src[24:32]))
	ino.BlockCount = binary.LittleEndian.Uint32(src[32:36])
	ino.Atime = time.Unix(int64(binary.LittleEndian.Uint64(src[36:44])), 0).UTC()
	ino.Mtime = time.Unix(int64(binary.LittleEndian.Uint64(src[44:52])), 0).UTC()
	ino.Ctime = time.Unix(int64(binary.LittleEndian.Uint64(src[52:60])), 0).UTC()
	ino.Kind = Kind(src[60])
	off := 61
	for i := 0; i < DirectBlocks; i++ {
		ino.Blocks[i] = binary.LittleEndian.Uint32(src[off : off+4])
		off += 4
	}
	ino.IndirBlock = binary.LittleEndian.Uint32(src[off : off+4])
	return ino
}
