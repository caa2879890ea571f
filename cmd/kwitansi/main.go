package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/inkarsa/kwitansi/internal"
)

func init() {
	internal.InitDefaultLogger(internal.INFO)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: kwitansi -d <draft>")
		fmt.Fprintln(os.Stderr, "Options:")
		flag.PrintDefaults()
	}

	startTime := time.Now()
	customFlag := parseFlag()
	if customFlag.Verbose {
		internal.GetDefaultLogger().SetLevel(internal.DEBUG)
	}

	process := NewGenerateReceipt(customFlag)
	err := process.processGenerateReceipt()
	if err != nil {
		internal.ErrorLog("Something went wrong : %s", err.Error())
		return
	}
	internal.SuccessLog("Program completed in %v\n", time.Since(startTime))
}
