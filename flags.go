package nufs

// File type and permission bits, the subset of the POSIX mode bits this
// filesystem actually interprets. Adapted from dargueta-disko's flags.go,
// trimmed to the bits the operation surface reads or writes: nufs has no
// mount-option semantics (no remount, no bind mounts, one mount for the
// image's lifetime), so those constants are not carried over.
const (
	S_IXOTH = 1 << iota
	S_IWOTH = 1 << iota
	S_IROTH = 1 << iota
	S_IXGRP = 1 << iota
	S_IWGRP = 1 << iota
	S_IRGRP = 1 << iota
	S_IXUSR = 1 << iota
	S_IWUSR = 1 << iota
	S_IRUSR = 1 << iota
	S_ISVTX = 1 << iota
	S_ISGID = 1 << iota
	S_ISUID = 1 << iota
)

const (
	S_IFDIR = 0o040000
	S_IFREG = 0o100000
	S_IFMT  = 0o170000
)

const S_IRWXO = S_IXOTH | S_IWOTH | S_IROTH
const S_IRWXG = S_IXGRP | S_IWGRP | S_IRGRP
const S_IRWXU = S_IXUSR | S_IWUSR | S_IRUSR

// DefaultDirMode and DefaultFileMode are the permission bits the operation
// surface applies when a caller doesn't otherwise constrain them (spec.md
// §4.1 for the root directory, §4.6 for files created by Write).
const DefaultDirMode = S_IFDIR | 0o755
const DefaultFileMode = S_IFREG | 0o755
