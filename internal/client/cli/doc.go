// Package cli provides the visitorhub command-line client.
//
// Without a command it runs a REPL: register, login, me, update, avatar,
// list, ping and logout operate on one gRPC session. With a command (for
// example "client login") it runs that one command and exits.
//
// A successful login is remembered in the session store, so later one-shot
// commands such as "me" or "list" reuse its token. A token from the config
// takes precedence over the saved one.
//
// Passwords are read from the terminal without echo.
package cli
