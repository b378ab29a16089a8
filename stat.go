package nufs

import "time"

// Stat is the platform-independent stat record returned by the operation
// surface, modeled on [syscall.Stat_t] the way dargueta-disko's FileStat
// models it, but trimmed to the fields this filesystem actually tracks.
type Stat struct {
	Ino        uint64
	Mode       uint32
	Nlink      uint32
	Uid        uint32
	Gid        uint32
	Rdev       uint64
	Size       int64
	BlockSize  int64
	Blocks     int64
	AccessedAt time.Time
	ModifiedAt time.Time
	ChangedAt  time.Time
}

// IsDir reports whether the stat record describes a directory.
func (s *Stat) IsDir() bool {
	return s.Mode&S_IFMT == S_IFDIR
}

// IsFile reports whether the stat record describes a regular file.
func (s *Stat) IsFile() bool {
	return s.Mode&S_IFMT == S_IFREG
}
