// Package main provides the entry point for bpsim, a trace-driven
// perceptron branch predictor and data cache miss simulator.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/bpsim/loader"
	"github.com/sarchlab/bpsim/report"
	"github.com/sarchlab/bpsim/timing/bp"
	"github.com/sarchlab/bpsim/timing/core"
	"github.com/sarchlab/bpsim/timing/stats"
)

var (
	configPath = flag.String("config", "", "Path to simulation configuration JSON file")
	verbose    = flag.Bool("v", false, "Trace every prediction and update")
	logPath    = flag.String("log", "", "Write JSON logs to this file instead of stderr")
	workers    = flag.Int("workers", 0, "Max cores replayed at once (0: one per core)")
	ntpServer  = flag.String("ntp", "", "NTP server used to timestamp runs")
	dsn        = flag.String("dsn", "", "MySQL DSN to record runs to")
	dumpPath   = flag.String("dump", "", "Write the default configuration to this file and exit")
)

func main() {
	flag.Parse()

	if *dumpPath != "" {
		if err := core.DefaultSimConfig().SaveConfig(*dumpPath); err != nil {
			fail(err)
		}
		atexit.Exit(0)
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: bpsim [options] <trace>...\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		atexit.Exit(1)
	}

	setupLogging()

	config := core.DefaultSimConfig()
	if *configPath != "" {
		var err error
		config, err = core.LoadConfig(*configPath)
		if err != nil {
			fail(err)
		}
	}

	for _, path := range flag.Args() {
		if err := runTrace(config, path); err != nil {
			fail(err)
		}
	}

	atexit.Exit(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	atexit.Exit(1)
}

func setupLogging() {
	out := os.Stderr
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fail(fmt.Errorf("failed to create log file: %w", err))
		}
		atexit.Register(func() {
			_ = f.Close()
		})
		out = f
	}

	level := slog.LevelInfo
	if *verbose {
		level = bp.LevelTrace
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	})))
}

// runTrace replays one trace file on a fresh system and prints its results.
func runTrace(config *core.SimConfig, path string) error {
	records, err := loader.Load(path)
	if err != nil {
		return err
	}

	counters := stats.NewCounters()
	system, err := core.NewSystem(config, counters)
	if err != nil {
		return err
	}

	clock := report.NewClock(*ntpServer)
	started := clock.Now()

	slog.Info("replaying trace",
		"trace", path,
		"records", len(records),
		"cores", len(system.Cores),
	)

	if err := system.Run(records, *workers); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	finished := clock.Now()

	fmt.Printf("\nTrace: %s\n", path)
	printPredictorStats(system)
	counters.Render(os.Stdout)

	if *dsn == "" {
		return nil
	}

	return record(system, filepath.Base(path), started, finished)
}

func printPredictorStats(system *core.System) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Predictor")
	t.AppendHeader(table.Row{
		"Core", "Branches", "Conditional", "Mispredicts", "Trainings", "Accuracy %", "Cycles",
	})

	for _, c := range system.Cores {
		cs := c.Stats()
		ps := system.Predictor.CoreStats(c.ID())
		t.AppendRow(table.Row{
			c.ID(),
			cs.Branches,
			cs.CondBranches,
			ps.Mispredictions,
			ps.Trainings,
			fmt.Sprintf("%.2f", ps.Accuracy()),
			cs.Cycles,
		})
	}

	total := system.Predictor.Stats()
	t.AppendFooter(table.Row{
		"Total", "", "", total.Mispredictions, total.Trainings,
		fmt.Sprintf("%.2f", total.Accuracy()), "",
	})
	t.Render()
}

// runRecorder is the part of report.Recorder used to persist runs.
type runRecorder interface {
	CreateTable(ctx context.Context) error
	Insert(ctx context.Context, run report.Run) error
	Table() string
	Close() error
}

func record(system *core.System, name string, started, finished time.Time) error {
	rec, err := report.Open(*dsn)
	if err != nil {
		return err
	}

	return recordTo(rec, system, name, started, finished)
}

// recordTo writes one run per core and closes rec. A close failure is
// returned when nothing else failed.
func recordTo(
	rec runRecorder,
	system *core.System,
	name string,
	started, finished time.Time,
) (err error) {
	defer func() {
		if cerr := rec.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close database: %w", cerr)
		}
	}()

	ctx := context.Background()
	if err := rec.CreateTable(ctx); err != nil {
		return err
	}

	for _, c := range system.Cores {
		ps := system.Predictor.CoreStats(c.ID())
		err := rec.Insert(ctx, report.Run{
			Name:           name,
			Core:           c.ID(),
			Branches:       c.Stats().CondBranches,
			Mispredictions: ps.Mispredictions,
			Accuracy:       ps.Accuracy(),
			Started:        started,
			Finished:       finished,
		})
		if err != nil {
			return err
		}
	}

	slog.Info("recorded runs", "table", rec.Table(), "cores", len(system.Cores))

	return nil
}
