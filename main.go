// Package main points at the bpsim command-line tools.
package main

import "fmt"

const usage = "bpsim: run 'go run ./cmd/bpsim <trace>...' to replay traces, " +
	"or 'go run ./cmd/benchmark' for the workload harness"

func main() {
	fmt.Println(usage)
}
