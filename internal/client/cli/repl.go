package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	Mine(ctx context.Context, args []string) error
	Register(ctx context.Context, args []string) error
	Verify(ctx context.Context, args []string) error
	Lookup(ctx context.Context, args []string) error
	Whoami(ctx context.Context) error
}

const helpText = "Available commands: mine, register, verify, lookup, whoami, exit"

// runREPL reads commands from reader until EOF, "exit" or "quit". Command
// errors are printed and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("anonid %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "mine":
			report(a.Mine(ctx, args))

		case "register":
			report(a.Register(ctx, args))

		case "verify":
			report(a.Verify(ctx, args))

		case "lookup":
			report(a.Lookup(ctx, args))

		case "whoami":
			report(a.Whoami(ctx))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if ctx.Err() != nil {
			return
		}
	}
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err)
	}
}
