package shell

import "os"

// openHostScript opens a host-side command script for the load command.
func openHostScript(path string) (*os.File, error) {
	return os.Open(path)
}
