package zosfs

// On-disk constants. These are part of the authoritative wire format and
// must not change independently of a format version bump.
const (
	// ClusterSize is the fixed on-disk allocation unit.
	ClusterSize = 4096

	// SignatureSize is the width of the superblock's identity signature.
	SignatureSize = 16

	// InodeSize is the fixed size of a single inode record.
	InodeSize = 64

	// DirectPointers is the number of direct data-cluster pointers per inode.
	DirectPointers = 5

	// IndirectPointers is the number of indirect pointers per inode: index 0
	// is single-indirect, index 1 is double-indirect.
	IndirectPointers = 2

	// pointersPerIndexCluster is how many 4-byte cluster-id slots fit in one
	// index cluster.
	pointersPerIndexCluster = ClusterSize / 4

	// DirEntrySize is the fixed size of one directory entry record.
	DirEntrySize = 16

	// MaxNameLength is the usable length of a directory entry's name field
	// (NUL-padded to DirEntrySize - 4).
	MaxNameLength = DirEntrySize - 4

	// minClusterCount is the smallest image format() will accept.
	minClusterCount = 5

	// MaxFileSize is the largest file-data engine address space reachable
	// through direct + single-indirect + double-indirect pointers.
	MaxFileSize = DirectPointers*ClusterSize +
		pointersPerIndexCluster*ClusterSize +
		pointersPerIndexCluster*pointersPerIndexCluster*ClusterSize
)

// fileType identifies what kind of object an inode describes.
type fileType uint8

const (
	typeUnknown fileType = iota
	typeRegular
	typeDirectory
)

// noID is the "nothing here" sentinel for both inode ids and data cluster
// ids; both id spaces are defined to never reuse 0 for a valid record.
const noID uint32 = 0
