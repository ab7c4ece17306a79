// Command benchmark runs the synthetic workload harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv        Output results in CSV format (default: table)
//	-config     Path to a simulation configuration JSON file
//	-no-dcache  Disable data cache simulation
//
// Example:
//
//	# Output CSV for spreadsheet comparison
//	go run ./cmd/benchmark -csv > results.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/bpsim/benchmarks"
	"github.com/sarchlab/bpsim/timing/core"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	configPath := flag.String("config", "", "Path to simulation configuration JSON file")
	noDCache := flag.Bool("no-dcache", false, "Disable data cache simulation")
	flag.Parse()

	setFlags := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	sim, err := simConfig(*configPath, *noDCache, setFlags["no-dcache"])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		atexit.Exit(1)
	}

	config := benchmarks.DefaultConfig()
	config.Sim = sim
	config.Output = os.Stdout

	harness := benchmarks.NewHarness(config)
	harness.AddWorkloads(benchmarks.GetWorkloads())

	if !*csvOutput {
		p := config.Sim.Predictor.WithDefaults()
		fmt.Println("Perceptron Predictor Workload Harness")
		fmt.Println("=====================================")
		fmt.Printf("Table size: %d\n", p.TableSize)
		fmt.Printf("History:    %d\n", p.HistoryLength)
		fmt.Printf("Weight bits: %d\n", p.WeightBits)
		fmt.Printf("D-Cache:    %v\n", config.Sim.EnableDCache)
		fmt.Println("")
	}

	results, err := harness.RunAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(1)
	}

	if *csvOutput {
		harness.PrintCSV(results)
	} else {
		harness.PrintResults(results)
	}

	atexit.Exit(0)
}

// simConfig loads the simulation config from path, or the defaults when
// path is empty. -no-dcache overrides the file only when it was given.
func simConfig(path string, noDCache, noDCacheSet bool) (*core.SimConfig, error) {
	sim := core.DefaultSimConfig()
	if path != "" {
		var err error
		sim, err = core.LoadConfig(path)
		if err != nil {
			return nil, err
		}
	}

	if noDCacheSet {
		sim.EnableDCache = !noDCache
	}

	return sim, nil
}
