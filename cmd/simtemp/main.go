// cmd/simtemp/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/tamzrod/simtemp/internal/config"
)

const usage = `usage:
  simtemp run  [config.yaml] [-log-level LEVEL]
  simtemp read [config.yaml] [-n N] [-format table|json|csv] [-stats] [-nonblock] [-poll-timeout D] [-i D]

The config path may also be given in SIMTEMP_CONFIG. Without one, defaults apply.`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(ctx, os.Args[2:])
	case "read":
		err = readCmd(ctx, os.Args[2:])
	case "-h", "-help", "--help", "help":
		fmt.Fprintln(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", os.Args[1], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "simtemp %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

// splitArgs separates a leading positional config path from flags.
func splitArgs(args []string) (path string, rest []string) {
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		return args[0], args[1:]
	}
	return os.Getenv("SIMTEMP_CONFIG"), args
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Parse(nil)
	}
	return config.Load(path)
}

func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
	})), nil
}
