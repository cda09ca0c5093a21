// Package shell implements the line-oriented command dispatcher that sits
// in front of a zosfs.FileSystem: it parses command lines, calls the
// matching engine method, and prints taxonomy-mapped results.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/go-zosfs/zosfs/zosfs"
	"github.com/go-zosfs/zosfs/zoserr"
)

// Interpreter reads command lines from an input stream and drives a
// zosfs.FileSystem accordingly. Normal command results (ls listings, cat
// bytes, pwd paths, info fields) go to out; OK and the taxonomy-mapped
// failure strings go to errOut.
type Interpreter struct {
	fs     *zosfs.FileSystem
	out    io.Writer
	errOut io.Writer
	log    *logrus.Logger
}

// New builds an Interpreter around an already-constructed filesystem
// context, with separate streams for normal results and for OK/taxonomy
// status lines.
func New(fs *zosfs.FileSystem, out, errOut io.Writer, log *logrus.Logger) *Interpreter {
	if log == nil {
		log = logrus.New()
	}
	return &Interpreter{fs: fs, out: out, errOut: errOut, log: log}
}

// readOnlyCommands produce their own output on success and get no trailing
// OK status line; they still go through report on failure.
var readOnlyCommands = map[string]bool{
	"ls":   true,
	"cat":  true,
	"pwd":  true,
	"info": true,
}

// Run reads lines from in until EOF, dispatching each as a command.
// Returns only on a read error; EOF is not an error.
func (in *Interpreter) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		in.Dispatch(scanner.Text())
	}
	return scanner.Err()
}

// Dispatch parses and executes a single command line, printing its
// results to out and its OK or failure status line to errOut.
func (in *Interpreter) Dispatch(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]

	if cmd == "load" {
		in.runLoad(args)
		return
	}

	err := in.execute(cmd, args)
	if err == nil && readOnlyCommands[cmd] {
		return
	}
	in.report(cmd, err)
}

func (in *Interpreter) execute(cmd string, args []string) error {
	switch cmd {
	case "format":
		return in.cmdFormat(args)
	case "mkdir":
		return in.cmdOneArg(args, in.fs.Mkdir)
	case "rmdir":
		return in.cmdOneArg(args, in.fs.Rmdir)
	case "cd":
		return in.cmdOneArg(args, in.fs.Cd)
	case "pwd":
		return in.cmdPwd(args)
	case "ls":
		return in.cmdLs(args)
	case "cat":
		return in.cmdCat(args)
	case "cp":
		return in.cmdTwoArgs(args, in.fs.Cp)
	case "mv":
		return in.cmdTwoArgs(args, in.fs.Mv)
	case "rm":
		return in.cmdOneArg(args, in.fs.Rm)
	case "info":
		return in.cmdInfo(args)
	case "incp":
		return in.cmdTwoArgs(args, in.fs.Incp)
	case "outcp":
		return in.cmdTwoArgs(args, in.fs.Outcp)
	case "xcp":
		return in.cmdXcp(args)
	case "short":
		return in.cmdOneArg(args, in.fs.Short)
	default:
		return zoserr.New(zoserr.CmdNotFound, cmd, nil)
	}
}

func (in *Interpreter) cmdOneArg(args []string, fn func(string) error) error {
	if len(args) != 1 {
		return zoserr.New(zoserr.InvalidArgs, "", nil)
	}
	return fn(args[0])
}

func (in *Interpreter) cmdTwoArgs(args []string, fn func(string, string) error) error {
	if len(args) != 2 {
		return zoserr.New(zoserr.InvalidArgs, "", nil)
	}
	return fn(args[0], args[1])
}

func (in *Interpreter) cmdFormat(args []string) error {
	if len(args) != 1 {
		return zoserr.New(zoserr.InvalidArgs, "", nil)
	}
	size, err := zosfs.ParseSizeSpec(args[0])
	if err != nil {
		return zoserr.New(zoserr.CannotCreateFile, "format", err)
	}
	return in.fs.Format(size)
}

func (in *Interpreter) cmdPwd(args []string) error {
	if len(args) != 0 {
		return zoserr.New(zoserr.InvalidArgs, "", nil)
	}
	p, err := in.fs.Pwd()
	if err != nil {
		return err
	}
	fmt.Fprintln(in.out, p)
	return nil
}

func (in *Interpreter) cmdLs(args []string) error {
	path := "."
	if len(args) == 1 {
		path = args[0]
	} else if len(args) > 1 {
		return zoserr.New(zoserr.InvalidArgs, "", nil)
	}
	entries, err := in.fs.Ls(path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		prefix := "-"
		if e.IsDir {
			prefix = "+"
		}
		fmt.Fprintf(in.out, "%s%s\n", prefix, e.Name)
	}
	return nil
}

func (in *Interpreter) cmdCat(args []string) error {
	if len(args) != 1 {
		return zoserr.New(zoserr.InvalidArgs, "", nil)
	}
	data, err := in.fs.Cat(args[0])
	if err != nil {
		return err
	}
	_, werr := in.out.Write(data)
	return werr
}

func (in *Interpreter) cmdInfo(args []string) error {
	if len(args) != 1 {
		return zoserr.New(zoserr.InvalidArgs, "", nil)
	}
	info, err := in.fs.Info(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(in.out, "id: %d\n", info.ID)
	fmt.Fprintf(in.out, "size: %d\n", info.Size)
	for i, p := range info.Direct {
		fmt.Fprintf(in.out, "direct[%d]: %d\n", i, p)
	}
	for i, p := range info.Indirect {
		fmt.Fprintf(in.out, "indirect[%d]: %d\n", i, p)
	}
	return nil
}

func (in *Interpreter) cmdXcp(args []string) error {
	if len(args) != 3 {
		return zoserr.New(zoserr.InvalidArgs, "", nil)
	}
	return in.fs.Xcp(args[0], args[1], args[2])
}

// runLoad executes host file hostPath line by line, printing a banner
// before and after, and echoing each line as it runs.
func (in *Interpreter) runLoad(args []string) {
	if len(args) != 1 {
		in.report("load", zoserr.New(zoserr.InvalidArgs, "", nil))
		return
	}
	hostPath := args[0]
	f, err := openHostScript(hostPath)
	if err != nil {
		in.report("load", zoserr.New(zoserr.FileNotFound, "load", err))
		return
	}
	defer f.Close()

	fmt.Fprintf(in.out, "--- load %s ---\n", hostPath)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Fprintf(in.out, "%s\n", line)
		in.Dispatch(line)
	}
	fmt.Fprintf(in.out, "--- done %s ---\n", hostPath)
}

// report prints the taxonomy-mapped outcome of a command to errOut: OK on
// success, the exact surfaced string on a known engine error.
func (in *Interpreter) report(cmd string, err error) {
	if err == nil {
		fmt.Fprintln(in.errOut, "OK")
		return
	}
	kind, ok := zoserr.KindOf(err)
	if !ok {
		in.log.WithError(err).Fatal("unhandled engine failure")
		return
	}
	switch kind {
	case zoserr.OutOfSpace, zoserr.IO:
		in.log.WithFields(logrus.Fields{"cmd": cmd}).WithError(err).Fatal("fatal engine failure, image assumed corrupt")
		return
	}
	fmt.Fprintln(in.errOut, kind.String())
}
