package zosfs

import "os"

// hostOpen and hostCreate give the engine's incp/outcp commands access to
// the surrounding host filesystem, as opposed to the managed image. They
// are the only place zosfs touches os directly for file content.
func (fs *FileSystem) hostOpen(path string) (*os.File, error) {
	return os.Open(path)
}

func (fs *FileSystem) hostCreate(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
