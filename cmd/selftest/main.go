package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"expertbook-backend/internal/selftest"
)

func main() {
	asJSON := flag.Bool("json", false, "print the report as JSON")
	flag.Parse()

	report := selftest.Run(time.Now())

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal(err)
		}
	} else {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, res := range report.Results {
			status := "PASS"
			if !res.OK {
				status = "FAIL"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", status, res.Name, res.Detail)
		}
		_ = tw.Flush()
		fmt.Printf("%d/%d checks passed\n", report.Passed, report.Total)
	}

	if !report.OK() {
		os.Exit(1)
	}
}
