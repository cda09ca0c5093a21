package zosfs_test

import "os"

func writeHostFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func readHostFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
