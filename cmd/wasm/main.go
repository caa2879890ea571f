//go:build js && wasm

package main

import (
	"github.com/inkarsa/kwitansi/internal"
	"github.com/inkarsa/kwitansi/internal/ui"
)

func init() {
	internal.InitDefaultLogger(internal.INFO)
}

func main() {
	ui.Run()
}
