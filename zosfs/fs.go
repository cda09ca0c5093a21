// Package zosfs implements the on-disk filesystem engine: superblock,
// bitmap allocators, inode table, file-data engine, directory service and
// path resolver, layered against a backend.Storage-backed image.
package zosfs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/go-zosfs/zosfs/backend"
	"github.com/go-zosfs/zosfs/util/bitmap"
	"github.com/go-zosfs/zosfs/zoserr"
)

// FileSystem is the runtime context for one open image: the backing
// storage, the parsed superblock, the two cached allocation bitmaps, and
// the cached root/cwd inode ids. Every engine operation hangs off this.
type FileSystem struct {
	storage backend.Storage
	sb      *superblock

	inodeBitmap *bitmap.Bitmap
	dataBitmap  *bitmap.Bitmap

	rootID uint32
	cwdID  uint32
	// cwdPath is a human-readable reconstruction of the path to cwdID,
	// rebuilt by Cd from the ".." chain; it is a convenience cache, never
	// consulted for correctness.
	cwdPath string

	formatted bool

	log *logrus.Logger
}

// New wraps storage in a FileSystem context without assuming it is
// formatted yet. Callers must call Open (if the image may already hold a
// filesystem) or Format before issuing any other operation.
func New(storage backend.Storage, log *logrus.Logger) *FileSystem {
	if log == nil {
		log = logrus.New()
	}
	return &FileSystem{storage: storage, log: log}
}

// Open loads an existing superblock and its bitmaps from storage. Returns
// zoserr.ErrNotFormatted if the image does not look like a formatted
// image (the most common cause: a freshly truncated, all-zero file).
func (fs *FileSystem) Open() error {
	w, err := fs.storage.Writable()
	if err != nil {
		return zoserr.New(zoserr.IO, "open", err)
	}
	buf := make([]byte, ClusterSize)
	if _, err := w.ReadAt(buf, 0); err != nil {
		return zoserr.New(zoserr.IO, "open", err)
	}
	sb, err := superblockFromBytes(buf)
	if err != nil {
		fs.log.WithError(err).Debug("superblock parse failed, treating image as unformatted")
		return zoserr.New(zoserr.NotFormatted, "open", nil)
	}
	fs.sb = sb
	if err := fs.loadBitmaps(); err != nil {
		return err
	}
	root, err := fs.resolveRootID()
	if err != nil {
		return err
	}
	fs.rootID = root
	fs.cwdID = root
	fs.cwdPath = "/"
	fs.formatted = true
	fs.log.WithFields(logrus.Fields{
		"inode_count":   sb.inodeCount,
		"cluster_count": sb.clusterCount,
	}).Info("opened image")
	return nil
}

// resolveRootID scans the inode table for the one DIRECTORY inode whose
// ".." entry points to itself. Format always creates the root at inode 1,
// but this is derived rather than hardcoded so a corrupted or foreign
// image fails loudly instead of silently assuming slot 1.
func (fs *FileSystem) resolveRootID() (uint32, error) {
	for id := uint32(1); id <= fs.sb.inodeCount; id++ {
		set, err := fs.inodeBitmap.IsSet(int(id - 1))
		if err != nil || !set {
			continue
		}
		in, err := fs.inodeRead(id)
		if err != nil {
			continue
		}
		if in.fileType != typeDirectory {
			continue
		}
		entries, err := fs.getDirEntries(in)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if e.name == ".." && e.inodeID == id {
				return id, nil
			}
		}
	}
	return 0, zoserr.New(zoserr.NotFormatted, "open", fmt.Errorf("no root directory found"))
}

// Format lays a fresh filesystem over storage, discarding whatever content
// was there before. sizeBytes is rounded down to a whole cluster.
func (fs *FileSystem) Format(sizeBytes int64) error {
	if sizeBytes <= 0 {
		return zoserr.New(zoserr.CannotCreateFile, "format", fmt.Errorf("size must be positive"))
	}
	clusterCount := uint32(sizeBytes / ClusterSize)
	if clusterCount < minClusterCount {
		return zoserr.New(zoserr.CannotCreateFile, "format", fmt.Errorf("need at least %d clusters (%d bytes)", minClusterCount, minClusterCount*ClusterSize))
	}
	diskSize := int64(clusterCount) * ClusterSize

	if err := fs.truncateStorage(diskSize); err != nil {
		return zoserr.New(zoserr.CannotCreateFile, "format", err)
	}

	inodeCount := (clusterCount + 3) / 4
	// Round the inode count up so the inode table fills whole clusters.
	inodesPerCluster := uint32(ClusterSize / InodeSize)
	inodeCount = ceilDiv(inodeCount, inodesPerCluster) * inodesPerCluster
	inodeBmBytes := roundUpToCluster(ceilDiv(inodeCount, 8))
	dataBmBytes := roundUpToCluster(ceilDiv(clusterCount, 8))
	inodeTableBytes := inodeCount * InodeSize
	inodeTableBytes = roundUpToCluster(inodeTableBytes)

	dataBitmapStart := uint32(ClusterSize)
	inodeBitmapStart := dataBitmapStart + dataBmBytes
	inodeTableStart := inodeBitmapStart + inodeBmBytes
	dataRegionStart := inodeTableStart + inodeTableBytes

	if dataRegionStart >= clusterCount*ClusterSize {
		return zoserr.New(zoserr.CannotCreateFile, "format", fmt.Errorf("image too small to hold metadata regions"))
	}

	sig, err := uuid.NewRandom()
	if err != nil {
		return zoserr.New(zoserr.CannotCreateFile, "format", err)
	}
	sb := &superblock{
		clusterCount:     clusterCount,
		inodeCount:       inodeCount,
		freeInodeCount:   inodeCount,
		freeClusterCount: (clusterCount*ClusterSize - dataRegionStart) / ClusterSize,
		diskSize:         uint64(diskSize),
		clusterSize:      ClusterSize,
		inodeBitmapStart: inodeBitmapStart,
		dataBitmapStart:  dataBitmapStart,
		inodeTableStart:  inodeTableStart,
		dataRegionStart:  dataRegionStart,
		inodeSize:        InodeSize,
	}
	copy(sb.signature[:], sig[:])
	fs.sb = sb
	fs.inodeBitmap = bitmap.NewBytes(int(inodeBmBytes))
	fs.dataBitmap = bitmap.NewBytes(int(dataBmBytes))

	if err := fs.flushBitmaps(); err != nil {
		return err
	}
	if err := fs.flushSuperblock(); err != nil {
		return err
	}

	fs.formatted = true
	rootID, err := fs.createRootDir()
	if err != nil {
		return err
	}
	fs.rootID = rootID
	fs.cwdID = rootID
	fs.cwdPath = "/"

	if err := fs.storage.Sync(); err != nil {
		return zoserr.New(zoserr.CannotCreateFile, "format", err)
	}
	fs.log.WithFields(logrus.Fields{
		"clusters": clusterCount,
		"inodes":   inodeCount,
	}).Info("formatted image")
	return nil
}

// truncateStorage resizes the backing storage to size bytes. Real files
// are truncated through the OS handle; test doubles that don't expose one
// via Sys() can implement Truncate directly instead.
func (fs *FileSystem) truncateStorage(size int64) error {
	if t, ok := fs.storage.(interface{ Truncate(int64) error }); ok {
		return t.Truncate(size)
	}
	osFile, err := fs.storage.Sys()
	if err != nil {
		return err
	}
	return osFile.Truncate(size)
}

func (fs *FileSystem) requireFormatted() error {
	if !fs.formatted {
		return zoserr.New(zoserr.NotFormatted, "", nil)
	}
	return nil
}

func roundUpToCluster(n uint32) uint32 {
	return ((n + ClusterSize - 1) / ClusterSize) * ClusterSize
}

func ceilDiv(a, b uint32) uint32 {
	return (a + b - 1) / b
}
