// Command genpulses writes a synthetic ENTLN pulse CSV for local testing
// and demos. Output is deterministic for a given seed, and the generated
// file is round-tripped through the real ingest mapping so the printed
// stats match what the server would report after an upload.
//
// Usage:
//
//	go run ./cmd/genpulses -out data/mock/pulses_240426.csv -rows 5000 -seed 42
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/lightning-pulse-api/internal/ingest"
	"github.com/couchcryptid/lightning-pulse-api/internal/model"
)

var header = []string{"timestamp", "latitude", "longitude", "peakcurrent", "icheight", "type"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output CSV path")
	rows := flag.Int("rows", 5000, "number of data rows to generate")
	seed := flag.Int64("seed", 42, "PRNG seed")
	start := flag.String("start", "2024-04-26T00:00:00Z", "window start (RFC3339)")
	hours := flag.Int("hours", 24, "window length in hours")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	startTime, err := time.Parse(time.RFC3339, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	records := generate(rand.New(rand.NewSource(*seed)), startTime, *hours, *rows)

	if err := writeCSV(*out, records); err != nil {
		return fmt.Errorf("writing %s: %w", *out, err)
	}
	log.Printf("wrote %d rows: %s", len(records), *out)

	printStats(*out, records)
	return nil
}

// generate produces rows clustered around a storm cell over Oklahoma,
// with a low-rate background of rows scattered across the hemisphere.
// A handful of rows are deliberately malformed to exercise rejection.
func generate(rng *rand.Rand, start time.Time, hours, n int) [][]string {
	window := time.Duration(hours) * time.Hour
	records := make([][]string, 0, n)

	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(rng.Int63n(int64(window))))

		var lat, lon float64
		if rng.Float64() < 0.8 {
			// Storm cell near Moore, OK.
			lat = 35.3 + rng.NormFloat64()*0.6
			lon = -97.5 + rng.NormFloat64()*0.8
		} else {
			lat = rng.Float64()*120 - 60
			lon = rng.Float64()*360 - 180
		}

		// ENTLN reports peak current in amperes; negative CG dominates.
		peakA := rng.NormFloat64() * 18000
		if rng.Float64() < 0.7 && peakA > 0 {
			peakA = -peakA
		}

		strokeType := "0"
		icheightM := ""
		if rng.Float64() < 0.35 {
			strokeType = "1"
			icheightM = strconv.FormatFloat(3000+rng.Float64()*12000, 'f', 1, 64)
		}

		records = append(records, []string{
			ts.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			strconv.FormatFloat(lat, 'f', 6, 64),
			strconv.FormatFloat(lon, 'f', 6, 64),
			strconv.FormatFloat(peakA, 'f', 1, 64),
			icheightM,
			strokeType,
		})
	}

	// Sprinkle in malformed rows so rejection paths get exercised.
	if n >= 100 {
		records[n/4][0] = "not-a-timestamp"
		records[n/2][1] = "95.0" // latitude out of range
		records[3*n/4][2] = ""   // missing longitude
	}

	return records
}

func writeCSV(path string, records [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// printStats runs the generated rows through the real ingest mapping and
// prints the numbers test assertions would care about.
func printStats(name string, records [][]string) {
	tbl := ingest.RawTable{Name: name, Header: header, Rows: records}
	pulses, rowErrs, err := ingest.MapTable(ingest.SchemaV1(), tbl, "genpulses")
	if err != nil {
		log.Printf("ingest mapping failed: %v", err)
		return
	}

	var pos, neg, cg, ic int
	for i := range pulses {
		switch pulses[i].Polarity {
		case model.PolarityPositive:
			pos++
		case model.PolarityNegative:
			neg++
		}
		switch pulses[i].Class {
		case model.ClassCloudToGround:
			cg++
		case model.ClassIntracloud:
			ic++
		}
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Mapped: %d, rejected: %d\n", len(pulses), len(rowErrs))
	fmt.Printf("Polarity: positive=%d, negative=%d\n", pos, neg)
	fmt.Printf("Class: CG=%d, IC=%d\n", cg, ic)
	for _, re := range rowErrs {
		fmt.Printf("  row %d rejected: %s\n", re.Row, re.Reason)
	}
}
