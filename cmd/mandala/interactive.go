package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/mandala/internal/export"
)

// commandList collects repeated -e flags.
type commandList []string

func (c *commandList) String() string { return strings.Join(*c, "; ") }

func (c *commandList) Set(v string) error {
	*c = append(*c, v)
	return nil
}

// interactiveCmd drives a headless session from a prompt.
type interactiveCmd struct {
	*root
	fs      *flag.FlagSet
	session sessionFlags
	execs   commandList
	output  string
	hold    bool
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := flag.NewFlagSet("interactive", flag.ExitOnError)
	i := &interactiveCmd{root: r, fs: fs, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	fs.Usage = usageFunc(i)
	i.session.register(fs, r)
	fs.Var(&i.execs, "e", "execute a command and exit instead of prompting (may be specified multiple times)")
	output := r.exportName()
	if output == "" {
		output = export.DefaultFileName
	}
	fs.StringVar(&i.output, "output", output, "path used by save without an argument")
	fs.BoolVar(&i.hold, "hold", false, "after a copy, keep running until another program takes the clipboard")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, &UsageError{of: i}
	}
	return i, nil
}

func (i *interactiveCmd) Run() error {
	sess, err := i.session.newSession(i.root)
	if err != nil {
		return err
	}
	in := newInterpreter(sess, i.stdout)
	in.stdout = i.stdout
	in.saveDir = i.saveDir()
	in.output = i.output
	in.notifier = i.notifier

	if len(i.execs) > 0 {
		for _, line := range i.execs {
			done, err := in.execute(line)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		in.finishCopy(i.hold, i.stderr)
		return nil
	}

	fmt.Fprintln(i.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := in.execute(scanner.Text())
		if err != nil {
			fmt.Fprintln(i.stderr, err)
			continue
		}
		if done {
			break
		}
	}
	sess.PointerUp()
	if err := scanner.Err(); err != nil {
		return err
	}
	in.finishCopy(i.hold, i.stderr)
	return nil
}
