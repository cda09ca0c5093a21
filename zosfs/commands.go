package zosfs

import (
	"io"
	"strings"

	"github.com/go-zosfs/zosfs/zoserr"
)

// Mkdir creates an empty directory at path. Fails with PATH_NOT_FOUND if the
// parent path doesn't exist, EXISTS if the leaf already exists.
func (fs *FileSystem) Mkdir(path string) error {
	if err := fs.requireFormatted(); err != nil {
		return err
	}
	parent, leaf := fs.parseDir(path)
	if parent.inodeID == 0 {
		return zoserr.New(zoserr.PathNotFound, "mkdir", nil)
	}
	if leaf.inodeID != 0 {
		return zoserr.New(zoserr.Exists, "mkdir", nil)
	}
	parentInode, err := fs.inodeRead(parent.inodeID)
	if err != nil {
		return err
	}
	if parentInode.fileType != typeDirectory {
		return zoserr.New(zoserr.NotDirectory, "mkdir", nil)
	}
	_, err = fs.createEmptyDir(parentInode, leaf.name, false)
	if err != nil {
		return err
	}
	return fs.storage.Sync()
}

// Rmdir removes the empty directory at path.
func (fs *FileSystem) Rmdir(path string) error {
	if err := fs.requireFormatted(); err != nil {
		return err
	}
	parent, leaf := fs.parseDir(path)
	if parent.inodeID == 0 || leaf.inodeID == 0 {
		return zoserr.New(zoserr.FileNotFound, "rmdir", nil)
	}
	parentInode, err := fs.inodeRead(parent.inodeID)
	if err != nil {
		return err
	}
	if err := fs.removeDir(parentInode, leaf.name); err != nil {
		return err
	}
	return fs.storage.Sync()
}

// Cd changes the cached working directory to path.
func (fs *FileSystem) Cd(path string) error {
	if err := fs.requireFormatted(); err != nil {
		return err
	}
	_, leaf := fs.parseDir(path)
	if leaf.inodeID == 0 {
		return zoserr.New(zoserr.PathNotFound, "cd", nil)
	}
	target, err := fs.inodeRead(leaf.inodeID)
	if err != nil {
		return err
	}
	if target.fileType != typeDirectory {
		return zoserr.New(zoserr.NotDirectory, "cd", nil)
	}
	fs.cwdID = leaf.inodeID
	fs.cwdPath = fs.reconstructPath(leaf.inodeID)
	return nil
}

// Pwd returns the cached working directory path.
func (fs *FileSystem) Pwd() (string, error) {
	if err := fs.requireFormatted(); err != nil {
		return "", err
	}
	return fs.cwdPath, nil
}

// reconstructPath walks "..". entries from id back to root, building the
// absolute path string. Used only to keep Pwd's cache human-readable;
// never consulted by any other operation.
func (fs *FileSystem) reconstructPath(id uint32) string {
	if id == fs.rootID {
		return "/"
	}
	var segs []string
	cur := id
	for cur != fs.rootID {
		dir, err := fs.inodeRead(cur)
		if err != nil {
			return "/"
		}
		parentEntry, found := fs.findEntryByName(dir, "..")
		if !found {
			return "/"
		}
		parent, err := fs.inodeRead(parentEntry.inodeID)
		if err != nil {
			return "/"
		}
		selfEntry, found := fs.findEntryByID(parent, cur)
		if !found {
			return "/"
		}
		segs = append([]string{selfEntry.name}, segs...)
		cur = parentEntry.inodeID
	}
	return "/" + strings.Join(segs, "/")
}

// LsEntry is one formatted listing line: "-" prefix for a file, "+" for a
// directory.
type LsEntry struct {
	Name  string
	IsDir bool
}

// Ls enumerates the entries of the directory at path in sort order.
func (fs *FileSystem) Ls(path string) ([]LsEntry, error) {
	if err := fs.requireFormatted(); err != nil {
		return nil, err
	}
	_, leaf := fs.parseDir(path)
	if leaf.inodeID == 0 {
		return nil, zoserr.New(zoserr.FileNotFound, "ls", nil)
	}
	dir, err := fs.inodeRead(leaf.inodeID)
	if err != nil {
		return nil, err
	}
	if dir.fileType != typeDirectory {
		return nil, zoserr.New(zoserr.NotDirectory, "ls", nil)
	}
	entries, err := fs.getDirEntries(dir)
	if err != nil {
		return nil, err
	}
	fs.sortEntries(entries)
	out := make([]LsEntry, len(entries))
	for i, e := range entries {
		in, err := fs.inodeRead(e.inodeID)
		isDir := err == nil && in.fileType == typeDirectory
		out[i] = LsEntry{Name: e.name, IsDir: isDir}
	}
	return out, nil
}

// Cat returns the raw bytes of the regular file at path.
func (fs *FileSystem) Cat(path string) ([]byte, error) {
	if err := fs.requireFormatted(); err != nil {
		return nil, err
	}
	_, leaf := fs.parseDir(path)
	if leaf.inodeID == 0 {
		return nil, zoserr.New(zoserr.FileNotFound, "cat", nil)
	}
	in, err := fs.inodeRead(leaf.inodeID)
	if err != nil {
		return nil, err
	}
	if in.fileType != typeRegular {
		return nil, zoserr.New(zoserr.NotDirectory, "cat", nil)
	}
	buf := make([]byte, in.size)
	if _, err := fs.readData(in, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// resolveDestination implements the shared cp/mv destination rule: if dst
// names an existing directory, the source keeps its own name under it; if
// dst's leaf doesn't exist but its parent is a directory, that leaf name
// is used; if dst is an existing regular file, EXISTS.
func (fs *FileSystem) resolveDestination(dst, srcName string) (parentInode *inode, name string, err error) {
	parent, leaf := fs.parseDir(dst)
	if parent.inodeID == 0 {
		return nil, "", zoserr.New(zoserr.PathNotFound, "resolveDestination", nil)
	}
	if leaf.inodeID != 0 {
		leafInode, err := fs.inodeRead(leaf.inodeID)
		if err != nil {
			return nil, "", err
		}
		if leafInode.fileType == typeDirectory {
			return leafInode, srcName, nil
		}
		return nil, "", zoserr.New(zoserr.Exists, "resolveDestination", nil)
	}
	parentInode, err = fs.inodeRead(parent.inodeID)
	if err != nil {
		return nil, "", err
	}
	if parentInode.fileType != typeDirectory {
		return nil, "", zoserr.New(zoserr.NotDirectory, "resolveDestination", nil)
	}
	return parentInode, leaf.name, nil
}

// Cp copies the regular file at src to dst.
func (fs *FileSystem) Cp(src, dst string) error {
	if err := fs.requireFormatted(); err != nil {
		return err
	}
	_, srcLeaf := fs.parseDir(src)
	if srcLeaf.inodeID == 0 {
		return zoserr.New(zoserr.FileNotFound, "cp", nil)
	}
	srcInode, err := fs.inodeRead(srcLeaf.inodeID)
	if err != nil {
		return err
	}
	if srcInode.fileType != typeRegular {
		return zoserr.New(zoserr.NotDirectory, "cp", nil)
	}
	data := make([]byte, srcInode.size)
	if _, err := fs.readData(srcInode, data); err != nil {
		return err
	}

	destParent, destName, err := fs.resolveDestination(dst, srcLeaf.name)
	if err != nil {
		return err
	}
	child, err := fs.createEmptyFile(destParent, destName)
	if err != nil {
		return err
	}
	if err := fs.writeData(child, data, false); err != nil {
		return err
	}
	if err := fs.inodeWrite(child); err != nil {
		return err
	}
	return fs.storage.Sync()
}

// Mv moves the regular file at src to dst.
func (fs *FileSystem) Mv(src, dst string) error {
	if err := fs.Cp(src, dst); err != nil {
		return err
	}
	if err := fs.Rm(src); err != nil {
		return err
	}
	return fs.storage.Sync()
}

// Rm removes the regular file at path.
func (fs *FileSystem) Rm(path string) error {
	if err := fs.requireFormatted(); err != nil {
		return err
	}
	parent, leaf := fs.parseDir(path)
	if parent.inodeID == 0 || leaf.inodeID == 0 {
		return zoserr.New(zoserr.FileNotFound, "rm", nil)
	}
	target, err := fs.inodeRead(leaf.inodeID)
	if err != nil {
		return err
	}
	if target.fileType != typeRegular {
		return zoserr.New(zoserr.NotDirectory, "rm", nil)
	}
	parentInode, err := fs.inodeRead(parent.inodeID)
	if err != nil {
		return err
	}
	if err := fs.removeEntry(parentInode, leaf.name); err != nil {
		return err
	}
	return fs.storage.Sync()
}

// InodeInfo is the reporting shape for Info: the pointer dump the info
// command surfaces.
type InodeInfo struct {
	ID       uint32
	Size     uint32
	Direct   [DirectPointers]uint32
	Indirect [IndirectPointers]uint32
}

// Info reports the inode id, size, and pointer list for path.
func (fs *FileSystem) Info(path string) (InodeInfo, error) {
	if err := fs.requireFormatted(); err != nil {
		return InodeInfo{}, err
	}
	_, leaf := fs.parseDir(path)
	if leaf.inodeID == 0 {
		return InodeInfo{}, zoserr.New(zoserr.FileNotFound, "info", nil)
	}
	in, err := fs.inodeRead(leaf.inodeID)
	if err != nil {
		return InodeInfo{}, err
	}
	return InodeInfo{ID: in.id, Size: in.size, Direct: in.direct, Indirect: in.indirect}, nil
}

// Incp copies a host file into the image at fsPath.
func (fs *FileSystem) Incp(hostPath, fsPath string) error {
	if err := fs.requireFormatted(); err != nil {
		return err
	}
	data, err := fs.hostRead(hostPath)
	if err != nil {
		return zoserr.New(zoserr.FileNotFound, "incp", err)
	}
	parent, leaf := fs.parseDir(fsPath)
	if parent.inodeID == 0 {
		return zoserr.New(zoserr.PathNotFound, "incp", nil)
	}
	if leaf.inodeID != 0 {
		return zoserr.New(zoserr.Exists, "incp", nil)
	}
	parentInode, err := fs.inodeRead(parent.inodeID)
	if err != nil {
		return err
	}
	child, err := fs.createEmptyFile(parentInode, leaf.name)
	if err != nil {
		return err
	}
	if err := fs.writeData(child, data, false); err != nil {
		return err
	}
	if err := fs.inodeWrite(child); err != nil {
		return err
	}
	return fs.storage.Sync()
}

// Outcp copies a file from the image to the host filesystem.
func (fs *FileSystem) Outcp(fsPath, hostPath string) error {
	data, err := fs.Cat(fsPath)
	if err != nil {
		return err
	}
	return fs.hostWrite(hostPath, data)
}

// Xcp creates dst as the concatenation of src1 and src2's contents.
func (fs *FileSystem) Xcp(src1, src2, dst string) error {
	if err := fs.requireFormatted(); err != nil {
		return err
	}
	a, err := fs.Cat(src1)
	if err != nil {
		return err
	}
	b, err := fs.Cat(src2)
	if err != nil {
		return err
	}
	parent, leaf := fs.parseDir(dst)
	if parent.inodeID == 0 {
		return zoserr.New(zoserr.PathNotFound, "xcp", nil)
	}
	if leaf.inodeID != 0 {
		return zoserr.New(zoserr.Exists, "xcp", nil)
	}
	parentInode, err := fs.inodeRead(parent.inodeID)
	if err != nil {
		return err
	}
	child, err := fs.createEmptyFile(parentInode, leaf.name)
	if err != nil {
		return err
	}
	combined := make([]byte, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)
	if err := fs.writeData(child, combined, false); err != nil {
		return err
	}
	if err := fs.inodeWrite(child); err != nil {
		return err
	}
	return fs.storage.Sync()
}

const shortMaxSize = 5000

// Short truncates the file at path to shortMaxSize bytes if it exceeds
// that size; otherwise it is a no-op.
func (fs *FileSystem) Short(path string) error {
	if err := fs.requireFormatted(); err != nil {
		return err
	}
	_, leaf := fs.parseDir(path)
	if leaf.inodeID == 0 {
		return zoserr.New(zoserr.FileNotFound, "short", nil)
	}
	in, err := fs.inodeRead(leaf.inodeID)
	if err != nil {
		return err
	}
	if in.fileType != typeRegular {
		return zoserr.New(zoserr.NotDirectory, "short", nil)
	}
	if in.size <= shortMaxSize {
		return nil
	}
	buf := make([]byte, shortMaxSize)
	if _, err := fs.readData(in, buf); err != nil {
		return err
	}
	if err := fs.writeData(in, buf, false); err != nil {
		return err
	}
	if err := fs.inodeWrite(in); err != nil {
		return err
	}
	return fs.storage.Sync()
}

func (fs *FileSystem) hostRead(path string) ([]byte, error) {
	f, err := fs.hostOpen(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func (fs *FileSystem) hostWrite(path string, data []byte) error {
	return fs.hostCreate(path, data)
}

