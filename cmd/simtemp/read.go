// cmd/simtemp/read.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/tamzrod/simtemp/internal/device"
	"github.com/tamzrod/simtemp/internal/report"
	"github.com/tamzrod/simtemp/internal/sample"
)

// pollBackoff is the pause after a poll timeout in non-blocking mode.
const pollBackoff = 200 * time.Millisecond

type readOptions struct {
	count       uint64
	format      string
	stats       bool
	nonBlock    bool
	pollTimeout time.Duration
	interval    time.Duration
}

// readCmd attaches a device locally and prints what one session consumes.
func readCmd(ctx context.Context, args []string) error {
	path, rest := splitArgs(args)

	var opts readOptions
	fs := flag.NewFlagSet("read", flag.ContinueOnError)
	fs.Uint64Var(&opts.count, "n", 10, "number of samples to read (0 = until interrupted)")
	fs.StringVar(&opts.format, "format", report.FormatTable, "output format: table, json or csv")
	fs.BoolVar(&opts.stats, "stats", false, "print a summary when done")
	fs.BoolVar(&opts.nonBlock, "nonblock", false, "open non-blocking and wait with poll")
	fs.DurationVar(&opts.pollTimeout, "poll-timeout", time.Second, "poll timeout in -nonblock mode")
	fs.DurationVar(&opts.interval, "i", 0, "pause between reads")
	fs.DurationVar(&opts.interval, "interval", 0, "pause between reads (same as -i)")
	logLevel := fs.String("log-level", "warn", "debug, info, warn or error")
	if err := fs.Parse(rest); err != nil {
		return err
	}

	log, err := newLogger(*logLevel)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	fmtr, err := report.NewFormatter(opts.format, out, report.IsTerminal(os.Stdout))
	if err != nil {
		return err
	}

	dev, err := device.Attach(cfg.Device, device.WithLogger(log))
	if err != nil {
		return err
	}
	defer dev.Detach()

	sess, err := dev.Open(device.OpenOptions{NonBlocking: opts.nonBlock})
	if err != nil {
		return err
	}
	defer sess.Close()

	stats := report.NewStats()
	err = consume(ctx, sess, opts, log, func(i uint64, s sample.Sample) error {
		stats.Add(s, time.Duration(dev.Now()-s.Timestamp))
		if err := fmtr.Write(i, s); err != nil {
			return err
		}
		if err := fmtr.Flush(); err != nil {
			return err
		}
		return out.Flush()
	})
	if err != nil {
		return err
	}

	if opts.stats {
		fmt.Fprintln(out)
		return report.WriteSummary(out, stats.Summary())
	}
	return nil
}

// consume reads records until opts.count samples were handled or ctx ends.
// An interrupt is a normal way to stop and is not reported as an error.
func consume(
	ctx context.Context,
	sess *device.Session,
	opts readOptions,
	log *slog.Logger,
	handle func(uint64, sample.Sample) error,
) error {
	buf := make([]byte, sample.RecordSize)

	for i := uint64(0); opts.count == 0 || i < opts.count; {
		_, err := sess.ReadRecord(ctx, buf)
		switch {
		case err == nil:
			s, err := sample.ParseRecord(buf)
			if err != nil {
				return err
			}
			if err := handle(i, s); err != nil {
				return err
			}
			i++

			if opts.interval > 0 && (opts.count == 0 || i < opts.count) {
				select {
				case <-time.After(opts.interval):
				case <-ctx.Done():
					return nil
				}
			}

		case errors.Is(err, device.ErrWouldBlock):
			if !opts.nonBlock {
				// lost the race for a sample; read again
				continue
			}
			ready, err := sess.WaitReadable(ctx, opts.pollTimeout)
			if err != nil {
				return stopped(err, log)
			}
			if !ready {
				log.Debug("poll timeout, backing off", "timeout", opts.pollTimeout)
				select {
				case <-time.After(pollBackoff):
				case <-ctx.Done():
					return nil
				}
			}

		default:
			return stopped(err, log)
		}
	}
	return nil
}

func stopped(err error, log *slog.Logger) error {
	if errors.Is(err, device.ErrInterrupted) {
		log.Info("read interrupted")
		return nil
	}
	return err
}
