// Command zosfs opens (or waits to format) a single-image filesystem and
// drives it from a line-oriented shell reading stdin.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/go-zosfs/zosfs/backend"
	"github.com/go-zosfs/zosfs/backend/file"
	"github.com/go-zosfs/zosfs/shell"
	"github.com/go-zosfs/zosfs/zosfs"
)

func main() {
	filePath := flag.String("file", "", "path to the backing image file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: zosfs --file <path>")
		os.Exit(1)
	}

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	storage, err := openOrCreate(*filePath)
	if err != nil {
		log.WithError(err).Fatal("could not open backing file")
	}

	fsys := zosfs.New(storage, log)
	if err := fsys.Open(); err != nil {
		log.WithError(err).Debug("image not yet formatted")
	}

	interp := shell.New(fsys, os.Stdout, os.Stderr, log)
	if err := interp.Run(os.Stdin); err != nil {
		log.WithError(err).Fatal("error reading commands")
	}
}

func openOrCreate(path string) (backend.Storage, error) {
	if _, err := os.Stat(path); err == nil {
		return file.OpenFromPath(path, false)
	}
	// format will truncate this to its real size; CreateFromPath needs a
	// positive size, so seed a minimal file and take the advisory lock on it.
	return file.CreateFromPath(path, zosfs.ClusterSize*5)
}
