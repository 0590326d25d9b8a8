package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"lakeetl/internal/lake"
)

// main is the entrypoint for the lake probing CLI. It walks a lake output
// root and prints per-table row counts, file counts, and partition layout,
// which is the quickest way to sanity-check a finished run without a query
// engine.
func main() {
	var (
		flagRoot = flag.String(
			"root",
			"",
			"Lake output root (the directory holding the table directories)",
		)
		flagTable = flag.String(
			"table",
			"",
			"Only report this table (default: all tables)",
		)
		flagPretty = flag.Bool(
			"pretty",
			true,
			"Pretty-print JSON output",
		)
	)
	flag.Parse()

	if *flagRoot == "" {
		fmt.Fprintln(os.Stderr, "missing -root")
		flag.Usage()
		os.Exit(2)
	}

	reports, err := lake.Inspect(*flagRoot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lakeprobe: %v\n", err)
		os.Exit(1)
	}

	if *flagTable != "" {
		filtered := reports[:0]
		for _, r := range reports {
			if r.Table == *flagTable {
				filtered = append(filtered, r)
			}
		}
		reports = filtered
		if len(reports) == 0 {
			fmt.Fprintf(os.Stderr, "lakeprobe: table %q not found under %s\n", *flagTable, *flagRoot)
			os.Exit(1)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	if *flagPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(reports); err != nil {
		fmt.Fprintf(os.Stderr, "lakeprobe: encode: %v\n", err)
		os.Exit(1)
	}
}
