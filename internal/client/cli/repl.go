package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/rentfinder/internal/client/api"
)

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Home(ctx context.Context) error
	Browse(ctx context.Context) error
	Search(ctx context.Context) error
	Mine(ctx context.Context) error
	Profile(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: register, login, forgot, reset, home, show <id>, help, exit"
	helpLoggedIn  = "Available commands: home, browse, search, show <id>, mine, profile, add, edit <id>, " +
		"status <id> [available|rented], delete <id>, logout, help, exit"
)

// runREPL reads commands from in until EOF or "exit"/"quit" and dispatches
// them to a. The first word is the command, the rest are its arguments.
// Command errors are reported to w and never stop the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "rf %s> ", statusFn())
		line, err := readLine(in)
		if err != nil {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpLoggedIn)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}
		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "forgot":
			err = a.Forgot(ctx)
		case "reset":
			err = a.Reset(ctx)
		case "home":
			err = a.Home(ctx)
		case "browse":
			err = a.Browse(ctx)
		case "search":
			err = a.Search(ctx)
		case "mine":
			err = a.Mine(ctx)
		case "profile":
			err = a.Profile(ctx)
		case "show":
			err = a.Show(ctx, args)
		case "add":
			err = a.Add(ctx)
		case "edit":
			err = a.Edit(ctx, args)
		case "status":
			err = a.Status(ctx, args)
		case "delete":
			err = a.Delete(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			fmt.Fprintln(w, "Error:", describe(err))
		}
	}
}

// describe turns a command error into a line for the user.
func describe(err error) string {
	var re *api.RedirectError
	switch {
	case errors.As(err, &re):
		switch re.Location {
		case "/login":
			return "please log in first"
		case "/":
			return "this is only available to the listing owner"
		}
		return "not available here, go to " + re.Location
	case errors.Is(err, api.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	return err.Error()
}
