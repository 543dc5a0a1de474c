// Command validate lints ENTLN pulse CSV files through the real ingest
// mapping before they are uploaded. It reports per-file accepted and
// rejected row counts, prints every rejection reason, and exits nonzero
// when any file has rejections (or cannot be mapped at all).
//
// Usage:
//
//	go run ./cmd/validate data/mock/pulses_240426.csv [more.csv ...]
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	"github.com/couchcryptid/lightning-pulse-api/internal/ingest"
)

func main() {
	maxErrors := flag.Int("max-errors", 20, "rejection reasons to print per file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: validate [-max-errors n] file.csv [file.csv ...]")
		os.Exit(2)
	}

	schema := ingest.SchemaV1()
	failed := false
	for _, path := range flag.Args() {
		if !validateFile(schema, path, *maxErrors) {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func validateFile(schema *ingest.Schema, path string, maxErrors int) bool {
	tbl, err := loadCSV(path)
	if err != nil {
		fmt.Printf("%-40s FAIL: %v\n", path, err)
		return false
	}

	pulses, rowErrs, err := ingest.MapTable(schema, tbl, "validate")
	if err != nil {
		fmt.Printf("%-40s FAIL: %v\n", path, err)
		return false
	}

	if len(rowErrs) == 0 {
		fmt.Printf("%-40s OK: %d rows\n", path, len(pulses))
		return true
	}

	fmt.Printf("%-40s FAIL: %d accepted, %d rejected\n", path, len(pulses), len(rowErrs))
	for i, re := range rowErrs {
		if i >= maxErrors {
			fmt.Printf("  ... and %d more\n", len(rowErrs)-maxErrors)
			break
		}
		fmt.Printf("  row %d: %s\n", re.Row, re.Reason)
	}
	return false
}

func loadCSV(path string) (ingest.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return ingest.RawTable{}, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return ingest.RawTable{}, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) == 0 {
		return ingest.RawTable{}, fmt.Errorf("empty file")
	}

	return ingest.RawTable{Name: path, Header: rows[0], Rows: rows[1:]}, nil
}
