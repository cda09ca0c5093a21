package zosfs

import "strings"

// pathEntry is the entry-shaped result of path resolution: inodeID == 0
// means "does not exist".
type pathEntry struct {
	inodeID uint32
	name    string
}

// parseDir resolves path into its (parent, leaf) entries. An empty leaf
// inodeID legitimately signals "parent exists, leaf does not" (the shape
// mkdir and cp need for a new name). If any intermediate segment fails to
// resolve, both parent and leaf come back as the zero sentinel, which
// callers interpret as "path not found".
func (fs *FileSystem) parseDir(path string) (parent, leaf pathEntry) {
	notFound := pathEntry{}

	var current pathEntry
	var segments []string
	if strings.HasPrefix(path, "/") {
		current = pathEntry{inodeID: fs.rootID, name: "/"}
		segments = splitPath(path)
		if path == "/" {
			return current, current
		}
	} else {
		current = pathEntry{inodeID: fs.cwdID, name: "."}
		segments = splitPath(path)
	}

	if len(segments) == 0 {
		return current, current
	}

	parent = current
	for i, seg := range segments {
		parent = current
		childID := fs.lookupInCurrent(current.inodeID, seg)
		current = pathEntry{inodeID: childID, name: seg}
		if childID == 0 && i != len(segments)-1 {
			return notFound, notFound
		}
	}
	return parent, current
}

// lookupInCurrent returns the inode id bound to name inside the directory
// whose inode id is dirID, or 0 if dirID isn't a directory or name isn't
// found.
func (fs *FileSystem) lookupInCurrent(dirID uint32, name string) uint32 {
	if dirID == 0 {
		return 0
	}
	dir, err := fs.inodeRead(dirID)
	if err != nil || dir.fileType != typeDirectory {
		return 0
	}
	entry, found := fs.findEntryByName(dir, name)
	if !found {
		return 0
	}
	return entry.inodeID
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
