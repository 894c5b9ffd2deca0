// Command validator checks a scraped bill dataset against the input
// contract. It prints a per-bill error report and exits nonzero when the
// dataset is invalid, so scraper runs can gate on it.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/peachstatelabs/gabills/internal/config"
	"github.com/peachstatelabs/gabills/internal/logger"
	"github.com/peachstatelabs/gabills/internal/schema"
)

func main() {
	_ = godotenv.Load()

	log := logger.New("validator")
	cfg := config.LoadValidator()

	path := cfg.DatasetPath
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Error("read dataset", slog.String("path", path), slog.Any("err", err))
		os.Exit(1)
	}

	report := schema.ValidateData(data)

	fmt.Printf("Validating %s\n", path)
	fmt.Printf("Total bills:   %d\n", report.TotalBills)
	fmt.Printf("Valid bills:   %d\n", report.ValidBills)
	fmt.Printf("Invalid bills: %d\n", report.InvalidBills)

	if report.Valid() {
		fmt.Println("OK: dataset passes validation")
		return
	}

	fmt.Printf("\n%d error(s):\n", len(report.Errors))
	for _, msg := range report.Errors {
		fmt.Println("  " + msg)
	}
	os.Exit(1)
}
