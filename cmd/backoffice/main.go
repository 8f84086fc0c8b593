// backoffice is a command-line front end for the back-office client. It keeps
// the signed-in session in a snapshot between invocations, so
//
//	backoffice login admin --password ...
//	backoffice nav /finance
//	backoffice accounts
//
// behave like successive views of one signed-in console.
//
// Configuration comes from BACKOFFICE_* environment variables, overridden by
// flags. With --dev-backend the command talks to an in-process fake backend
// instead of BACKOFFICE_API_URL; its signing key is fixed so tokens issued in one
// run are accepted by the next.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/MrEthical07/backoffice"
	"github.com/MrEthical07/backoffice/internal/backendtest"
	"github.com/MrEthical07/backoffice/notify"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

const devSecret = "backoffice-dev-backend-signing-key"

// errUsage marks errors that should print the command summary.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

type options struct {
	apiURL      string
	storage     string
	sessionFile string
	redisAddr   string
	policyFile  string
	devBackend  bool
	logLevel    string
	quiet       bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options

	flagSet := pflag.NewFlagSet("backoffice", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.SetInterspersed(false)
	flagSet.StringVar(&opts.apiURL, "api-url", "", "backend base URL (default: BACKOFFICE_API_URL or http://localhost:8080)")
	flagSet.StringVar(&opts.storage, "storage", "", "session storage: memory, file or redis (default: file)")
	flagSet.StringVar(&opts.sessionFile, "session-file", "", "session snapshot path for file storage")
	flagSet.StringVar(&opts.redisAddr, "redis-addr", "", "redis address; with --storage redis and no address an in-process miniredis is used")
	flagSet.StringVar(&opts.policyFile, "policy", "", "YAML navigation policy")
	flagSet.BoolVar(&opts.devBackend, "dev-backend", false, "serve requests from an in-process fake backend")
	flagSet.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn or error")
	flagSet.BoolVarP(&opts.quiet, "quiet", "q", false, "do not print notices")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stderr, flagSet)
			return nil
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stderr, flagSet)
		return nil
	}

	rest := flagSet.Args()
	if len(rest) == 0 {
		printHelp(stderr, flagSet)
		return fmt.Errorf("%w: missing command", errUsage)
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, rest[0])
	}

	logger, err := newLogger(stderr, opts.logLevel)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	cfg, err := opts.config(flagSet)
	if err != nil {
		return err
	}

	builder := backoffice.New().WithConfig(cfg).WithLogger(logger)
	if opts.quiet {
		builder.WithNotifySink(notify.NoOpSink{})
	} else {
		builder.WithNotifySink(notify.NewJSONWriterSink(stdout))
	}

	cleanup, err := opts.attach(builder, &cfg, logger, stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	client, err := builder.WithConfig(cfg).Build()
	if err != nil {
		return err
	}
	defer client.Close()

	return cmd.run(ctx, client, rest[1:], stdout)
}

// config layers flags over the environment. Only flags the user set win.
func (o options) config(flags *pflag.FlagSet) (backoffice.Config, error) {
	cfg := backoffice.LoadConfigFromEnv()
	if os.Getenv("BACKOFFICE_SESSION_STORAGE") == "" {
		cfg.Session.Storage = backoffice.StorageFile
	}

	if flags.Changed("api-url") {
		cfg.API.BaseURL = o.apiURL
	}
	if flags.Changed("storage") {
		cfg.Session.Storage = backoffice.StorageKind(strings.ToLower(o.storage))
	}
	if flags.Changed("session-file") {
		cfg.Session.FilePath = o.sessionFile
	}
	if flags.Changed("redis-addr") {
		cfg.Session.RedisAddr = o.redisAddr
	}
	if flags.Changed("policy") {
		cfg.Navigation.PolicyFile = o.policyFile
	}

	if cfg.Session.Storage == backoffice.StorageFile && cfg.Session.FilePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return backoffice.Config{}, fmt.Errorf("locate session file: %w", err)
		}
		cfg.Session.FilePath = filepath.Join(dir, "backoffice", "session.json")
	}
	return cfg, nil
}

// attach starts the development services the options ask for and points cfg
// and the builder at them.
func (o options) attach(b *backoffice.Builder, cfg *backoffice.Config, logger *slog.Logger, stderr io.Writer) (func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if o.devBackend {
		backend, err := backendtest.New(
			backendtest.WithLogger(logger),
			backendtest.WithSecret([]byte(devSecret)),
		)
		if err != nil {
			return nil, fmt.Errorf("start dev backend: %w", err)
		}
		srv := backend.Start()
		closers = append(closers, srv.Close)
		cfg.API.BaseURL = srv.URL
		logger.Info("dev backend started", "url", srv.URL)
	}

	if cfg.Session.Storage == backoffice.StorageRedis && cfg.Session.RedisAddr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("start miniredis: %w", err)
		}
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		closers = append(closers, mr.Close, func() { _ = rdb.Close() })
		b.WithRedis(rdb)
		fmt.Fprintf(stderr, "using miniredis at %s; the session ends with this process\n", mr.Addr())
	}

	return cleanup, nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `backoffice: sign in to the back office and check where you may go.

Usage:
  backoffice [flags] <command> [args]

Commands:
`)
	for _, name := range commandOrder {
		fmt.Fprintf(w, "  %-10s %s\n", name, commands[name].summary)
	}
	fmt.Fprintf(w, "\nFlags:\n")
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
