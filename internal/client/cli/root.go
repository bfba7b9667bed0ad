package cli

import (
	"context"
	"fmt"
	"strings"
)

func (a *App) getStatus() string {
	if a.userName != "" {
		return fmt.Sprintf("(%s)", a.userName)
	}
	if a.isLoggedIn() {
		return "(token)"
	}
	return ""
}

// Exec runs a single command.
func (a *App) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "register":
		return a.register(ctx)
	case "login":
		return a.login(ctx)
	case "me":
		return a.me(ctx)
	case "update":
		return a.update(ctx)
	case "list", "l":
		return a.list(ctx, args)
	case "avatar":
		return a.avatar(ctx, args)
	case "ping":
		return a.ping(ctx)
	case "logout":
		a.logout(ctx)
		return nil
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// Root runs the REPL until "exit", EOF or ctx cancellation.
func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to visitorhub CLI (type 'help' for commands)")

	for ctx.Err() == nil {
		fmt.Fprintf(a.out, "vh %s> ", a.getStatus())

		line, err := a.reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}

		cmd := parts[0]
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: me, update, avatar <file>, (l)ist [skip] [limit] [status], ping, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: register, login, ping, exit")
			}
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			if execErr := a.Exec(ctx, cmd, parts[1:]); execErr != nil {
				fmt.Fprintf(a.out, "error: %v\n", execErr)
			}
		}

		if err != nil {
			return
		}
	}

}
