// Package loader reads and writes branch and memory traces.
//
// A trace is line oriented. Blank lines and lines starting with '#' are
// ignored. Every other line is one record:
//
//	B <core> <addr> <T|N> [U]   branch, U marks an unconditional branch
//	L <core> <addr>             load
//	S <core> <addr>             store
//
// Addresses are hexadecimal with a 0x prefix, or decimal.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Kind is the type of a trace record.
type Kind uint8

// Record kinds.
const (
	KindBranch Kind = iota
	KindLoad
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindBranch:
		return "B"
	case KindLoad:
		return "L"
	case KindStore:
		return "S"
	default:
		return "?"
	}
}

// Record is one dynamic instruction of interest.
type Record struct {
	Kind   Kind
	CoreID int
	Addr   uint64
	// Taken is the resolved direction of a branch.
	Taken bool
	// Unconditional marks branches that never train the predictor.
	Unconditional bool
}

// Load reads a trace file.
func Load(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer func() { _ = f.Close() }()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads all records from r.
func Parse(r io.Reader) ([]Record, error) {
	var records []Record

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		records = append(records, rec)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	return records, nil
}

func parseLine(line string) (Record, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Record{}, fmt.Errorf("expected at least 3 fields, got %d", len(fields))
	}

	var rec Record
	switch fields[0] {
	case "B":
		rec.Kind = KindBranch
	case "L":
		rec.Kind = KindLoad
	case "S":
		rec.Kind = KindStore
	default:
		return Record{}, fmt.Errorf("unknown record kind %q", fields[0])
	}

	core, err := strconv.Atoi(fields[1])
	if err != nil || core < 0 {
		return Record{}, fmt.Errorf("invalid core id %q", fields[1])
	}
	rec.CoreID = core

	addr, err := strconv.ParseUint(fields[2], 0, 64)
	if err != nil {
		return Record{}, fmt.Errorf("invalid address %q: %w", fields[2], err)
	}
	rec.Addr = addr

	if rec.Kind != KindBranch {
		if len(fields) != 3 {
			return Record{}, fmt.Errorf("unexpected fields after address")
		}
		return rec, nil
	}

	if len(fields) < 4 || len(fields) > 5 {
		return Record{}, fmt.Errorf("branch needs a direction and an optional U flag")
	}

	switch fields[3] {
	case "T":
		rec.Taken = true
	case "N":
	default:
		return Record{}, fmt.Errorf("invalid direction %q", fields[3])
	}

	if len(fields) == 5 {
		if fields[4] != "U" {
			return Record{}, fmt.Errorf("invalid branch flag %q", fields[4])
		}
		rec.Unconditional = true
	}

	return rec, nil
}

// Write writes records in the trace format.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		var err error
		switch rec.Kind {
		case KindBranch:
			dir := "N"
			if rec.Taken {
				dir = "T"
			}
			if rec.Unconditional {
				_, err = fmt.Fprintf(bw, "B %d 0x%x %s U\n", rec.CoreID, rec.Addr, dir)
			} else {
				_, err = fmt.Fprintf(bw, "B %d 0x%x %s\n", rec.CoreID, rec.Addr, dir)
			}
		default:
			_, err = fmt.Fprintf(bw, "%s %d 0x%x\n", rec.Kind, rec.CoreID, rec.Addr)
		}
		if err != nil {
			return fmt.Errorf("failed to write trace: %w", err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return nil
}

// SplitByCore groups records by core id, keeping their order.
func SplitByCore(records []Record) map[int][]Record {
	out := make(map[int][]Record)
	for _, rec := range records {
		out[rec.CoreID] = append(out[rec.CoreID], rec)
	}
	return out
}

// CoreIDs returns the sorted core ids present in a split trace.
func CoreIDs(split map[int][]Record) []int {
	ids := make([]int, 0, len(split))
	for id := range split {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
