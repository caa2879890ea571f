package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/inkarsa/kwitansi/internal"
)

const (
	formatPNG  = "png"
	formatPDF  = "pdf"
	formatBoth = "both"
)

type Flag struct {
	Draft         string
	Drafts        []string
	BatchFile     string
	OutputDir     string
	Format        string
	MaxConcurrent int
	Verbose       bool
}

func parseFlag() *Flag {
	help := flag.Bool("h", false, "Display this help message and exit")
	flag.BoolVar(help, "help", false, "Alias for -h")
	draft := flag.String("d", "", `Path to a receipt draft file (e.g. "drafts/budi.json")`)
	batchFile := flag.String("b", "", `Path to file containing multiple draft paths (one per line)`)
	outputDir := flag.String("o", "kwitansi", `Directory where exported receipts are written`)
	format := flag.String("f", formatPNG, `Export format: "png", "pdf" or "both"`)
	maxConcurrent := flag.Int("x", 4, `Maximum active goroutines for batch mode`)
	verbose := flag.Bool("v", false, `Enable debug logging`)

	flag.Parse()

	if *help {
		fmt.Println("Kwitansi - Render payment receipts from draft files")
		fmt.Println("Usage: `kwitansi -d <draft>` or `kwitansi -b <file>`")
		flag.PrintDefaults()
		fmt.Println("\nExamples:")
		fmt.Println("  Export one draft as PNG: -d drafts/budi.json")
		fmt.Println("  Export one draft as PDF: -d drafts/budi.json -f pdf")
		fmt.Println("  Process multiple drafts from file: -b drafts.txt -f both -o out")
		os.Exit(0)
	}

	if *draft == "" && *batchFile == "" {
		fmt.Println("Either a draft or a batch file is required. Use -d or -b flag")
		os.Exit(1)
	}

	if *draft != "" && *batchFile != "" {
		internal.ErrorLog("Cannot use both -d and -b at the same time")
		os.Exit(1)
	}

	// Read draft paths from batch file if specified
	var drafts []string
	if *batchFile != "" {
		file, err := os.Open(*batchFile)
		if err != nil {
			internal.ErrorLog("Failed to open batch file: %v", err)
			os.Exit(1)
		}
		defer file.Close()

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				drafts = append(drafts, line)
			}
		}

		if err := scanner.Err(); err != nil {
			internal.ErrorLog("Error reading batch file: %v", err)
			os.Exit(1)
		}

		if len(drafts) == 0 {
			internal.ErrorLog("Batch file is empty or contains no draft paths")
			os.Exit(1)
		}
	}

	switch *format {
	case formatPNG, formatPDF, formatBoth:
	default:
		internal.ErrorLog("Format (-f) must be png, pdf or both")
		os.Exit(1)
	}

	if *maxConcurrent < 1 {
		internal.ErrorLog("Concurrency value (-x) must be >= 1")
		os.Exit(1)
	}

	return &Flag{
		Draft:         *draft,
		Drafts:        drafts,
		BatchFile:     *batchFile,
		OutputDir:     *outputDir,
		Format:        *format,
		MaxConcurrent: *maxConcurrent,
		Verbose:       *verbose,
	}
}
