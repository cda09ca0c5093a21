package zosfs

import (
	"sort"
	"strings"

	"github.com/go-zosfs/zosfs/zoserr"
)

// dirEntry is the fixed 16-byte on-disk directory entry: a 4-byte inode id
// followed by a 12-byte NUL-padded name.
type dirEntry struct {
	inodeID uint32
	name    string
}

func (e dirEntry) toBytes() []byte {
	b := make([]byte, DirEntrySize)
	putUint32LE(b, e.inodeID)
	copy(b[4:], []byte(e.name))
	return b
}

func dirEntryFromBytes(b []byte) dirEntry {
	id := getUint32LE(b)
	nameBytes := b[4:DirEntrySize]
	end := 0
	for end < len(nameBytes) && nameBytes[end] != 0 {
		end++
	}
	return dirEntry{inodeID: id, name: string(nameBytes[:end])}
}

// createRootDir allocates the root directory inode: its "." and ".."
// entries both point to itself, since the root has no parent.
func (fs *FileSystem) createRootDir() (uint32, error) {
	in, err := fs.inodeCreate(typeDirectory)
	if err != nil {
		return 0, err
	}
	in.hardLinks = 2
	entries := []dirEntry{
		{inodeID: in.id, name: "."},
		{inodeID: in.id, name: ".."},
	}
	if err := fs.writeEntries(in, entries); err != nil {
		return 0, err
	}
	if err := fs.inodeWrite(in); err != nil {
		return 0, err
	}
	return in.id, nil
}

// createEmptyDir allocates a child directory inode under parent, wires up
// its "." and ".." entries, and (unless isRoot) links it into parent's
// entry list under name.
func (fs *FileSystem) createEmptyDir(parent *inode, name string, isRoot bool) (*inode, error) {
	child, err := fs.inodeCreate(typeDirectory)
	if err != nil {
		return nil, err
	}
	child.hardLinks = 2
	entries := []dirEntry{
		{inodeID: child.id, name: "."},
		{inodeID: parent.id, name: ".."},
	}
	if isRoot {
		entries[1].inodeID = child.id
	}
	if err := fs.writeEntries(child, entries); err != nil {
		return nil, err
	}
	if err := fs.inodeWrite(child); err != nil {
		return nil, err
	}

	if !isRoot {
		if err := fs.addEntry(parent, dirEntry{inodeID: child.id, name: name}); err != nil {
			return nil, err
		}
		parent.hardLinks++
		if err := fs.inodeWrite(parent); err != nil {
			return nil, err
		}
	}
	return child, nil
}

// createEmptyFile allocates a REGULAR inode under parent and links it in
// under name.
func (fs *FileSystem) createEmptyFile(parent *inode, name string) (*inode, error) {
	if parent.fileType != typeDirectory {
		return nil, zoserr.New(zoserr.NotDirectory, "createEmptyFile", nil)
	}
	if _, found := fs.findEntryByName(parent, name); found {
		return nil, zoserr.New(zoserr.Exists, "createEmptyFile", nil)
	}
	child, err := fs.inodeCreate(typeRegular)
	if err != nil {
		return nil, err
	}
	child.hardLinks = 1
	if err := fs.inodeWrite(child); err != nil {
		return nil, err
	}
	if err := fs.addEntry(parent, dirEntry{inodeID: child.id, name: name}); err != nil {
		return nil, err
	}
	return child, nil
}

// addEntry appends entry to dir's content after validating the name.
func (fs *FileSystem) addEntry(dir *inode, entry dirEntry) error {
	if strings.Contains(entry.name, "/") {
		return zoserr.New(zoserr.InvalidArgs, "addEntry", nil)
	}
	if entry.name == "" {
		return zoserr.New(zoserr.InvalidArgs, "addEntry", nil)
	}
	if _, found := fs.findEntryByName(dir, entry.name); found {
		return zoserr.New(zoserr.Exists, "addEntry", nil)
	}
	if err := fs.writeData(dir, entry.toBytes(), true); err != nil {
		return err
	}
	return fs.inodeWrite(dir)
}

// removeEntry removes the entry named name from dir, decrementing the
// target's hard link count, freeing it if the count reaches zero for a
// regular file. Rejects the reserved names.
func (fs *FileSystem) removeEntry(dir *inode, name string) error {
	if name == "." || name == ".." || name == "/" {
		return zoserr.New(zoserr.InvalidArgs, "removeEntry", nil)
	}
	entries, err := fs.getDirEntries(dir)
	if err != nil {
		return err
	}
	idx := -1
	for i, e := range entries {
		if e.name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return zoserr.New(zoserr.FileNotFound, "removeEntry", nil)
	}
	target := entries[idx]

	last := len(entries) - 1
	entries[idx] = entries[last]
	entries = entries[:last]

	if err := fs.writeEntries(dir, entries); err != nil {
		return err
	}
	if err := fs.inodeWrite(dir); err != nil {
		return err
	}

	targetInode, err := fs.inodeRead(target.inodeID)
	if err != nil {
		return err
	}
	if targetInode.hardLinks > 0 {
		targetInode.hardLinks--
	}
	if targetInode.fileType == typeRegular && targetInode.hardLinks == 0 {
		return fs.inodeFree(targetInode.id)
	}
	return fs.inodeWrite(targetInode)
}

// removeDir removes the empty subdirectory named name from parent.
// Succeeds only if the subdirectory holds exactly its two reserved
// entries.
func (fs *FileSystem) removeDir(parent *inode, name string) error {
	entry, found := fs.findEntryByName(parent, name)
	if !found {
		return zoserr.New(zoserr.FileNotFound, "removeDir", nil)
	}
	child, err := fs.inodeRead(entry.inodeID)
	if err != nil {
		return err
	}
	if child.fileType != typeDirectory {
		return zoserr.New(zoserr.NotDirectory, "removeDir", nil)
	}
	if child.size != 2*DirEntrySize {
		return zoserr.New(zoserr.NotEmpty, "removeDir", nil)
	}
	if err := fs.removeEntry(parent, name); err != nil {
		return err
	}
	parent.hardLinks--
	if err := fs.inodeWrite(parent); err != nil {
		return err
	}
	return fs.inodeFree(child.id)
}

// getDirEntries reads and decodes the full entry array from dir's content.
func (fs *FileSystem) getDirEntries(dir *inode) ([]dirEntry, error) {
	buf := make([]byte, dir.size)
	if _, err := fs.readData(dir, buf); err != nil {
		return nil, err
	}
	count := len(buf) / DirEntrySize
	entries := make([]dirEntry, count)
	for i := 0; i < count; i++ {
		entries[i] = dirEntryFromBytes(buf[i*DirEntrySize : (i+1)*DirEntrySize])
	}
	return entries, nil
}

// writeEntries replaces dir's full content with the encoding of entries.
func (fs *FileSystem) writeEntries(dir *inode, entries []dirEntry) error {
	buf := make([]byte, len(entries)*DirEntrySize)
	for i, e := range entries {
		copy(buf[i*DirEntrySize:], e.toBytes())
	}
	return fs.writeData(dir, buf, false)
}

func (fs *FileSystem) findEntryByName(dir *inode, name string) (dirEntry, bool) {
	entries, err := fs.getDirEntries(dir)
	if err != nil {
		return dirEntry{}, false
	}
	for _, e := range entries {
		if e.name == name {
			return e, true
		}
	}
	return dirEntry{}, false
}

func (fs *FileSystem) findEntryByID(dir *inode, id uint32) (dirEntry, bool) {
	entries, err := fs.getDirEntries(dir)
	if err != nil {
		return dirEntry{}, false
	}
	for _, e := range entries {
		if e.inodeID == id {
			return e, true
		}
	}
	return dirEntry{}, false
}

// sortEntries orders entries per the shell's ls contract: "." first,
// ".." second, then directories before regular files, then lexicographic
// by name.
func (fs *FileSystem) sortEntries(entries []dirEntry) {
	rank := func(e dirEntry) int {
		switch e.name {
		case ".":
			return 0
		case "..":
			return 1
		}
		return 2
	}
	isDir := func(e dirEntry) bool {
		in, err := fs.inodeRead(e.inodeID)
		return err == nil && in.fileType == typeDirectory
	}
	sort.SliceStable(entries, func(i, j int) bool {
		ri, rj := rank(entries[i]), rank(entries[j])
		if ri != rj {
			return ri < rj
		}
		if ri != 2 {
			return false
		}
		di, dj := isDir(entries[i]), isDir(entries[j])
		if di != dj {
			return di
		}
		return entries[i].name < entries[j].name
	})
}
