package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/MrEthical07/backoffice"
	"github.com/MrEthical07/backoffice/stores"
)

type command struct {
	summary string
	run     func(ctx context.Context, c *backoffice.Client, args []string, out io.Writer) error
}

var commandOrder = []string{"login", "guest", "logout", "whoami", "nav", "roles", "register", "accounts", "po"}

var commands = map[string]command{
	"login":    {summary: "sign in: login <username> [--password p]", run: runLogin},
	"guest":    {summary: "continue as guest", run: runGuest},
	"logout":   {summary: "sign out", run: runLogout},
	"whoami":   {summary: "print the stored session", run: runWhoami},
	"nav":      {summary: "navigate: nav <path> [path...]", run: runNav},
	"roles":    {summary: "list roles known to the backend", run: runRoles},
	"register": {summary: "create a user: register --name n --username u --role r --password p", run: runRegister},
	"accounts": {summary: "list bank accounts", run: runAccounts},
	"po":       {summary: "purchase orders: po list | po download <id> [--out dir]", run: runPurchaseOrders},
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func subFlags(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func runLogin(ctx context.Context, c *backoffice.Client, args []string, _ io.Writer) error {
	fs := subFlags("login")
	password := fs.String("password", "", "password (default: BACKOFFICE_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: login <username>", errUsage)
	}
	pw := *password
	if pw == "" {
		pw = os.Getenv("BACKOFFICE_PASSWORD")
	}
	if pw == "" {
		return fmt.Errorf("%w: password required", errUsage)
	}
	return c.Login(ctx, fs.Arg(0), pw)
}

func runGuest(ctx context.Context, c *backoffice.Client, _ []string, _ io.Writer) error {
	return c.Auth().LoginAsGuest(ctx)
}

func runLogout(ctx context.Context, c *backoffice.Client, _ []string, _ io.Writer) error {
	return c.Logout(ctx)
}

type whoami struct {
	Authenticated bool   `json:"authenticated"`
	Guest         bool   `json:"guest"`
	Name          string `json:"name,omitempty"`
	Username      string `json:"username,omitempty"`
	Role          string `json:"role,omitempty"`
}

func runWhoami(ctx context.Context, c *backoffice.Client, _ []string, out io.Writer) error {
	s := c.Session(ctx)
	w := whoami{Authenticated: s.Authenticated(), Guest: s.Guest(), Role: s.Role()}
	if s.User != nil {
		w.Name = s.User.Name
		w.Username = s.User.Username
	}
	return printJSON(out, w)
}

type navStep struct {
	Action string `json:"action"`
	Path   string `json:"path,omitempty"`
	Reason string `json:"reason"`
}

type navResult struct {
	Target    string    `json:"target"`
	Path      string    `json:"path"`
	Redirects []navStep `json:"redirects,omitempty"`
	Error     string    `json:"error,omitempty"`
}

func runNav(ctx context.Context, c *backoffice.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: nav <path>", errUsage)
	}
	var failed error
	for _, target := range args {
		res, err := c.Navigate(ctx, target)
		r := navResult{Target: target, Path: res.Path}
		for _, a := range res.Redirects {
			r.Redirects = append(r.Redirects, navStep{Action: a.Kind.String(), Path: a.Path, Reason: string(a.Reason)})
		}
		if err != nil {
			r.Error = err.Error()
			failed = errors.Join(failed, err)
		}
		if err := printJSON(out, r); err != nil {
			return err
		}
	}
	return failed
}

func runRoles(ctx context.Context, c *backoffice.Client, _ []string, out io.Writer) error {
	roles, err := c.Auth().Roles(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, roles)
}

func runRegister(ctx context.Context, c *backoffice.Client, args []string, _ io.Writer) error {
	fs := subFlags("register")
	var u stores.NewUser
	fs.StringVar(&u.Name, "name", "", "display name")
	fs.StringVar(&u.Username, "username", "", "login name")
	fs.StringVar(&u.Role, "role", "", "role")
	fs.StringVar(&u.Password, "password", "", "initial password")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if u.Username == "" || u.Password == "" || u.Role == "" {
		return fmt.Errorf("%w: register needs --username, --password and --role", errUsage)
	}
	if u.Name == "" {
		u.Name = u.Username
	}
	return c.Auth().Register(ctx, u)
}

func runAccounts(ctx context.Context, c *backoffice.Client, _ []string, out io.Writer) error {
	accounts, err := c.Accounts().List(ctx)
	if err != nil {
		return err
	}
	return printJSON(out, accounts)
}

func runPurchaseOrders(ctx context.Context, c *backoffice.Client, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: po list | po download <id>", errUsage)
	}
	switch args[0] {
	case "list":
		orders, err := c.PurchaseOrders().List(ctx)
		if err != nil {
			return err
		}
		return printJSON(out, orders)
	case "download":
		fs := subFlags("po download")
		dir := fs.String("out", ".", "directory to write the PDF to")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("%w: po download <id>", errUsage)
		}
		id, err := strconv.ParseInt(fs.Arg(0), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid id %q", errUsage, fs.Arg(0))
		}
		doc, err := c.PurchaseOrders().Download(ctx, id)
		if err != nil {
			return err
		}
		path, err := doc.WriteTo(*dir)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, path)
		return err
	default:
		return fmt.Errorf("%w: unknown po subcommand %q", errUsage, args[0])
	}
}
