package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Generate(ctx context.Context, args []string) error
	Insert(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Copy(ctx context.Context, args []string) error
	Refresh(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error
	Devices(ctx context.Context, args []string) error
	Disconnect(ctx context.Context, args []string) error
	Archive(ctx context.Context, args []string) error
	Unseal(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  generate -tail T [-scopes S] [-length N] [-numbers] [-upper] [-special]
  insert   -tail T [-scopes S] [-length N -numbers -upper -special]
  list     [-type GENERATED,INSERTED] [-page N] [-size N] [-secrets] [keyword ...]
  show ID | copy ID | refresh ID | history ID | delete ID
  edit ID  [-tail T] [-scopes S] [-secret]
  devices | disconnect DEVICE_ID | archive [-save]
  unseal   [-secrets] FILE
  help | exit`

// runREPL starts a read-eval-print loop for the Glider CLI.
//
// It reads a line from reader, takes the first token as the command and the
// rest as its arguments, and dispatches to a. Errors returned by commands are
// printed and the loop goes on. The loop exits on EOF or on "exit"/"quit".
func runREPL(ctx context.Context, a execIface, reader *bufio.Reader) {
	commands := map[string]func(context.Context, []string) error{
		"generate":   a.Generate,
		"gen":        a.Generate,
		"insert":     a.Insert,
		"list":       a.List,
		"l":          a.List,
		"show":       a.Show,
		"copy":       a.Copy,
		"refresh":    a.Refresh,
		"edit":       a.Edit,
		"delete":     a.Delete,
		"history":    a.History,
		"devices":    a.Devices,
		"disconnect": a.Disconnect,
		"archive":    a.Archive,
		"unseal":     a.Unseal,
	}

	for {
		printlnFn("glider> ")
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn(helpText)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		run, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if err := run(ctx, parts[1:]); err != nil {
			printlnFn("Error:", describeError(err))
		}
	}
}
