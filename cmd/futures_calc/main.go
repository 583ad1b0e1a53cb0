package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"frizo/futures_calculator/internal/cache"
	"frizo/futures_calculator/internal/calculator"
	"frizo/futures_calculator/internal/config"
	"frizo/futures_calculator/internal/history"
	"frizo/futures_calculator/internal/logger"
	"frizo/futures_calculator/internal/validation"
	"frizo/futures_calculator/internal/version"
	"frizo/futures_calculator/pkg/utils"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses global flags, wires the service and dispatches one command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet(version.Name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		showVersion = fs.Bool("version", false, "Show version information")
		showHelp    = fs.Bool("help", false, "Show help information")
		healthCheck = fs.Bool("health-check", false, "Perform health check")
		configFile  = fs.String("config", "", "Path to TOML configuration file")
		logLevel    = fs.String("log-level", "", "Log level (debug, info, warn, error)")
		jsonOut     = fs.Bool("json", false, "Print results as JSON")
	)
	fs.Usage = func() { usage(stderr, fs) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.String())
		return exitOK
	}
	if *showHelp || fs.NArg() == 0 {
		usage(stdout, fs)
		return exitOK
	}
	if *healthCheck {
		fmt.Fprintln(stdout, "OK")
		return exitOK
	}

	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", fs.Arg(0))
		usage(stderr, fs)
		return exitUsage
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitError
	}
	if *logLevel != "" {
		cfg.App.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return exitError
	}

	log, err := logger.NewWithOptions(logger.Options{
		Level:  cfg.App.LogLevel,
		File:   cfg.App.LogFile,
		Output: stderr,
	})
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return exitError
	}
	defer log.Close()
	logger.SetDefault(log)

	log.Debug("starting", "version", version.Banner(), "environment", cfg.App.Environment, "history", cfg.History.Backend)

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Error("open history store failed", "backend", cfg.History.Backend, "error", err)
		return exitError
	}
	defer closeStore(store, log)

	svc, err := calculator.New(cfg.Calculator, store, log)
	if err != nil {
		log.Error("init calculator failed", "error", err)
		return exitError
	}
	defer cleanup(svc, log)

	a := &app{
		svc:    svc,
		cfg:    cfg,
		out:    stdout,
		json:   *jsonOut,
		stderr: stderr,
	}
	if err := cmd.run(ctx, a, fs.Args()[1:]); err != nil {
		return report(stderr, err)
	}
	return exitOK
}

// openStore history backend named by the config
func openStore(ctx context.Context, cfg *config.Config) (history.Store, error) {
	switch cfg.History.Backend {
	case config.HistoryNone:
		return history.NopStore{}, nil
	case config.HistoryRedis:
		return history.NewRedisStore(ctx, history.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, cfg.History.Limit)
	default:
		return history.NewMemoryStore(cfg.History.Limit), nil
	}
}

func closeStore(store history.Store, log *logger.Logger) {
	if c, ok := store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Warn("close history store failed", "error", err)
		}
	}
}

// cleanup waits for pending history saves
func cleanup(svc *calculator.Service, log *logger.Logger) {
	_ = svc.Close()
	used := utils.Filter(svc.CacheStats(), func(st cache.Stats) bool { return st.Hits+st.Misses > 0 })
	for _, st := range used {
		log.Debug("cache", "name", st.Name, "size", st.Size, "hits", st.Hits, "misses", st.Misses)
	}
	log.Debug("cleanup completed")
}

// report prints validation failures field by field
func report(w io.Writer, err error) int {
	var errs validation.Errors
	if errors.As(err, &errs) {
		fmt.Fprintln(w, "invalid input:")
		for _, e := range errs {
			fmt.Fprintf(w, "  %s: %s\n", e.Field, e.Message)
		}
		return exitUsage
	}
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	fmt.Fprintf(w, "error: %v\n", err)
	return exitError
}

func usage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintf(w, "Futures Calculator %s\n\n", version.Short())
	fmt.Fprintf(w, "Usage: %s [flags] <command> [command flags]\n\nCommands:\n", version.Name)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
	fmt.Fprintln(w, "\nFlags:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
