package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/careercompass/internal/client/guard"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	access(ctx context.Context, destination string) guard.Decision
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	GoogleLogin(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Chat(ctx context.Context, text string) error
	History(ctx context.Context) error
	Jobs(ctx context.Context, title string) error
	Colleges(ctx context.Context, field string) error
}

// protectedCommands need a stored access token.
var protectedCommands = map[string]struct{}{
	"chat":    {},
	"history": {},
	"whoami":  {},
}

// runREPL starts the read–eval–print loop of the CareerCompass client.
//
// It reads a line, takes the first word as the command and the rest as its
// argument. The loop exits on EOF or when the user types "exit" or "quit".
//
//	help                 show available commands
//	register             create an account
//	login                log in with username and password
//	google               log in with a Google account
//	logout               log out
//	whoami               show the logged-in user        (protected)
//	chat [question]      ask the career assistant       (protected)
//	history              show previous questions        (protected)
//	jobs [title]         search job openings
//	colleges [field]     search colleges
//	exit | quit          leave the program
//
// A protected command without a session asks for a login first and then
// runs the command it was given. Errors returned by handlers are not printed
// here; handlers and the session notifier report them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cc (%s)> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}

		cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
		if cmd == "" {
			continue
		}
		arg = strings.TrimSpace(arg)

		if _, ok := protectedCommands[cmd]; ok && !ensureAccess(ctx, a, cmd) {
			continue
		}
		if quit := dispatch(ctx, a, cmd, arg); quit {
			return
		}
	}
}

// ensureAccess runs the guard for cmd. On a redirect it runs the login and
// reports whether cmd may continue afterwards.
func ensureAccess(ctx context.Context, a execIface, cmd string) bool {
	d := a.access(ctx, cmd)
	if d.Allowed {
		return true
	}

	printlnFn(d.Redirect.Message)
	if err := a.Login(ctx); err != nil {
		return false
	}
	return a.access(ctx, d.Redirect.Next).Allowed
}

func dispatch(ctx context.Context, a execIface, cmd, arg string) (quit bool) {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn("Available commands: chat, history, jobs, colleges, whoami, logout, exit")
		} else {
			printlnFn("Available commands: register, login, google, jobs, colleges, exit")
		}

	case "register":
		_ = a.Register(ctx)

	case "login":
		_ = a.Login(ctx)

	case "google":
		_ = a.GoogleLogin(ctx)

	case "logout":
		_ = a.Logout(ctx)

	case "whoami":
		_ = a.WhoAmI(ctx)

	case "chat":
		_ = a.Chat(ctx, arg)

	case "history":
		_ = a.History(ctx)

	case "jobs":
		_ = a.Jobs(ctx, arg)

	case "colleges":
		_ = a.Colleges(ctx, arg)

	case "exit", "quit":
		printlnFn("Bye!")
		return true

	default:
		printlnFn("Unknown command:", cmd)
	}
	return false
}
