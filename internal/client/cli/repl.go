package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	ForgetDevice(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	SetPersist(ctx context.Context, persist bool) error
	Open(ctx context.Context, view string) error
}

// runREPL starts a simple read-eval-print loop for the pharmsim shell.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Commands
//
//	help                 show available commands
//	login                authenticate
//	open <view>          open a view (home, scenarios, transcripts, ...)
//	whoami               show the current session
//	persist on|off       trust or untrust this device
//	logout               log out of this session
//	logout-all           log out of every session
//	forget               log out and forget this device
//	exit | quit          leave the program
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pharmsim%s> ", prefixSpace(statusFn())))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: open <view>, whoami, persist on|off, logout, logout-all, forget, exit")
				printlnFn("Views:", strings.Join(viewNames(), ", "))
			} else {
				printlnFn("Available commands: login, open <view>, persist on|off, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "open", "o":
			if len(args) != 1 {
				printlnFn("Usage: open <view>")
				continue
			}
			err = a.Open(ctx, args[0])

		case "whoami":
			err = a.WhoAmI(ctx)

		case "persist":
			if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
				printlnFn("Usage: persist on|off")
				continue
			}
			err = a.SetPersist(ctx, args[0] == "on")

		case "logout":
			err = a.Logout(ctx)

		case "logout-all":
			err = a.LogoutAll(ctx)

		case "forget":
			err = a.ForgetDevice(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

func prefixSpace(s string) string {
	if s == "" {
		return ""
	}
	return " " + s
}
